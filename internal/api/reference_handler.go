package api

import (
	"context"
	"net/http"
	"strconv"

	"SNCatalog/internal/model"
	"SNCatalog/internal/repository"
	"SNCatalog/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ReferenceHandler 来源、分类、星系三类参考数据的增删查
type ReferenceHandler struct {
	refService *service.ReferenceService
	logger     *logrus.Logger
}

// NewReferenceHandler 创建 ReferenceHandler
func NewReferenceHandler(db *gorm.DB, logger *logrus.Logger) *ReferenceHandler {
	return &ReferenceHandler{
		refService: service.NewReferenceService(repository.NewReferenceRepository(db), logger),
		logger:     logger,
	}
}

// resource 一类参考数据的四个操作
type resource[T any, In any] struct {
	name   string
	list   func(ctx context.Context, page, pageSize int) (*service.Page[T], error)
	get    func(ctx context.Context, id uint64) (*T, error)
	create func(ctx context.Context, in In) (*T, error)
	delete func(ctx context.Context, id uint64) error
}

// Register 挂载 /sources /subtypes /galaxies
func (h *ReferenceHandler) Register(g *gin.RouterGroup) {
	registerResource(g.Group("/sources"), h.logger, resource[model.Source, service.SourceInput]{
		name:   "Source",
		list:   h.refService.ListSources,
		get:    h.refService.GetSource,
		create: h.refService.CreateSource,
		delete: h.refService.DeleteSource,
	})
	registerResource(g.Group("/subtypes"), h.logger, resource[model.SubType, service.NameInput]{
		name:   "SubType",
		list:   h.refService.ListSubTypes,
		get:    h.refService.GetSubType,
		create: h.refService.CreateSubType,
		delete: h.refService.DeleteSubType,
	})
	registerResource(g.Group("/galaxies"), h.logger, resource[model.Galaxy, service.GalaxyInput]{
		name:   "Galaxy",
		list:   h.refService.ListGalaxies,
		get:    h.refService.GetGalaxy,
		create: h.refService.CreateGalaxy,
		delete: h.refService.DeleteGalaxy,
	})
}

func registerResource[T any, In any](g *gin.RouterGroup, logger *logrus.Logger, r resource[T, In]) {
	g.GET("", func(c *gin.Context) {
		page, pageSize, ok := pageParams(c)
		if !ok || page <= 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Invalid page."})
			return
		}
		if pageSize <= 0 {
			pageSize = 10
		}
		result, err := r.list(c.Request.Context(), page, pageSize)
		if err != nil {
			writeError(c, logger, "List"+r.name, err)
			return
		}
		hasNext := int64(page*pageSize) < result.Count
		c.JSON(http.StatusOK, newPageResponse(c.Request, result.Count, page, hasNext, page > 1, result.Results))
	})

	g.GET("/:id", func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		row, err := r.get(c.Request.Context(), id)
		if err != nil {
			writeError(c, logger, "Get"+r.name, err)
			return
		}
		c.JSON(http.StatusOK, row)
	})

	g.POST("", func(c *gin.Context) {
		var in In
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		row, err := r.create(c.Request.Context(), in)
		if err != nil {
			writeError(c, logger, "Create"+r.name, err)
			return
		}
		c.JSON(http.StatusCreated, row)
	})

	g.DELETE("/:id", func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		if err := r.delete(c.Request.Context(), id); err != nil {
			writeError(c, logger, "Delete"+r.name, err)
			return
		}
		c.Status(http.StatusNoContent)
	})
}

func idParam(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found."})
		return 0, false
	}
	return id, true
}
