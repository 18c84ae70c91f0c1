package api

import (
	"net/http"
	"strconv"

	"SNCatalog/internal/config"
	"SNCatalog/internal/repository"
	"SNCatalog/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// EventHandler 事件列表、OSC 文档查询与手动录入
type EventHandler struct {
	catalogService *service.CatalogService
	logger         *logrus.Logger
}

// NewEventHandler 创建 EventHandler
func NewEventHandler(db *gorm.DB, logger *logrus.Logger, cfg config.ServerConfig) *EventHandler {
	svc := service.NewCatalogService(
		repository.NewEventRepository(db),
		repository.NewReferenceRepository(db),
		logger,
		cfg.DefaultPageSize,
		cfg.MaxPageSize,
	)
	return &EventHandler{catalogService: svc, logger: logger}
}

// ListEvents 事件分页列表
// GET /api/events?page=1&page_size=10
func (h *EventHandler) ListEvents(c *gin.Context) {
	page, pageSize, ok := pageParams(c)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Invalid page."})
		return
	}
	result, err := h.catalogService.ListEvents(c.Request.Context(), page, pageSize)
	if err != nil {
		writeError(c, h.logger, "ListEvents", err)
		return
	}
	c.JSON(http.StatusOK, newPageResponse(c.Request, result.Count, result.Page, result.HasNext, result.HasPrevious, result.Results))
}

// GetEvent 按主键返回 OSC 文档
// GET /api/events/:id
func (h *EventHandler) GetEvent(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found."})
		return
	}
	doc, err := h.catalogService.GetEventByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.logger, "GetEvent", err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

// SearchEvent 按名称返回 OSC 文档
// GET /api/events/search?name=SN2011fe
func (h *EventHandler) SearchEvent(c *gin.Context) {
	name := c.Query("name")
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}
	doc, err := h.catalogService.GetEvent(c.Request.Context(), name)
	if err != nil {
		writeError(c, h.logger, "SearchEvent", err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

// CreateEvent 录入事件及其声明
// POST /api/events
func (h *EventHandler) CreateEvent(c *gin.Context) {
	var req service.CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	doc, err := h.catalogService.CreateEvent(c.Request.Context(), req)
	if err != nil {
		writeError(c, h.logger, "CreateEvent", err)
		return
	}
	c.JSON(http.StatusCreated, doc)
}

// DeleteEvent 按名称删除事件
// DELETE /api/events/:name
func (h *EventHandler) DeleteEvent(c *gin.Context) {
	if err := h.catalogService.DeleteEvent(c.Request.Context(), c.Param("name")); err != nil {
		writeError(c, h.logger, "DeleteEvent", err)
		return
	}
	c.Status(http.StatusNoContent)
}
