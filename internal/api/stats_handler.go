package api

import (
	"net/http"
	"strconv"

	"SNCatalog/internal/repository"
	"SNCatalog/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// StatsHandler 跨事件统计接口
type StatsHandler struct {
	statsService *service.StatsService
	logger       *logrus.Logger
}

// NewStatsHandler 创建 StatsHandler
func NewStatsHandler(db *gorm.DB, logger *logrus.Logger) *StatsHandler {
	svc := service.NewStatsService(repository.NewStatsRepository(db), repository.NewEventRepository(db), logger)
	return &StatsHandler{statsService: svc, logger: logger}
}

// SupernovaUncertainty GET /api/events/supernova-uncertainty
func (h *StatsHandler) SupernovaUncertainty(c *gin.Context) {
	items, err := h.statsService.Uncertainty(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, "SupernovaUncertainty", err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// SubtypeUncertainty GET /api/events/subtype-uncertainty
func (h *StatsHandler) SubtypeUncertainty(c *gin.Context) {
	items, err := h.statsService.Conflicts(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, "SubtypeUncertainty", err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// GalaxySNCount GET /api/events/galaxy-sn-count?top=5
func (h *StatsHandler) GalaxySNCount(c *gin.Context) {
	items, err := h.statsService.GalaxyCounts(c.Request.Context(), topParam(c))
	if err != nil {
		writeError(c, h.logger, "GalaxySNCount", err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// GalaxySNDiversity GET /api/events/galaxy-sn-diversity?top=5
func (h *StatsHandler) GalaxySNDiversity(c *gin.Context) {
	items, err := h.statsService.GalaxyDiversity(c.Request.Context(), topParam(c))
	if err != nil {
		writeError(c, h.logger, "GalaxySNDiversity", err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// topParam 缺省或非法时为 0，表示不限制
func topParam(c *gin.Context) int {
	top, err := strconv.Atoi(c.DefaultQuery("top", "0"))
	if err != nil || top < 0 {
		return 0
	}
	return top
}
