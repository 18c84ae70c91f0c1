package api

import (
	"net/http"

	"SNCatalog/internal/config"
	"SNCatalog/internal/metrics"
	"SNCatalog/internal/repository"
	"SNCatalog/internal/service"
	"SNCatalog/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ExportHandler 把全部事件导出为 OSC 文档
type ExportHandler struct {
	exporter *service.Exporter
	cfg      config.ExportConfig
	logger   *logrus.Logger
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(db *gorm.DB, logger *logrus.Logger, cfg config.ExportConfig, m *metrics.Metrics) *ExportHandler {
	return &ExportHandler{
		exporter: service.NewExporter(repository.NewEventRepository(db), m, logger, cfg.PageSize),
		cfg:      cfg,
		logger:   logger,
	}
}

// RunExport 同步导出到 export.output_dir；target=s3 时写入配置的桶
// POST /api/export?target=dir|s3
func (h *ExportHandler) RunExport(c *gin.Context) {
	target := c.DefaultQuery("target", "dir")
	if target != "dir" && target != "s3" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "target 只能是 dir 或 s3"})
		return
	}
	sink, err := storage.NewSink(c.Request.Context(), h.cfg, target == "s3", "")
	if err != nil {
		h.logger.WithError(err).Warn("创建导出目标失败")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	n, err := h.exporter.Export(c.Request.Context(), sink)
	if err != nil {
		h.logger.WithError(err).WithField("sink", sink.Name()).Error("导出失败")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "exported": n, "sink": sink.Name()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"exported": n, "sink": sink.Name()})
}
