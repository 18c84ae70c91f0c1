package api

import (
	"net/http"
	"strconv"

	"SNCatalog/internal/config"
	"SNCatalog/internal/metrics"
	"SNCatalog/internal/model"
	"SNCatalog/internal/repository"
	"SNCatalog/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ImportHandler 触发导入并查询导入记录
type ImportHandler struct {
	importer *service.Importer
	runs     repository.ImportRunRepository
	dataDir  string
	oscDir   string
	logger   *logrus.Logger
}

// NewImportHandler 创建 ImportHandler。OSC 格式从 export.output_dir 读取，与导出目录对应
func NewImportHandler(db *gorm.DB, logger *logrus.Logger, cfg *config.Config, m *metrics.Metrics) *ImportHandler {
	runs := repository.NewImportRunRepository(db)
	return &ImportHandler{
		importer: service.NewImporter(repository.NewImportRepository(db), runs, m, logger, cfg.Import.BatchSize),
		runs:     runs,
		dataDir:  cfg.Import.DataDir,
		oscDir:   cfg.Export.OutputDir,
		logger:   logger,
	}
}

// RunImport 同步导入（假定无其他写入方）。
// format=dataset（默认）清空后从 data 目录全量导入；format=osc 读取导出目录中的 <name>.json
// POST /api/import?format=dataset|osc
func (h *ImportHandler) RunImport(c *gin.Context) {
	var (
		run *model.ImportRun
		err error
	)
	switch c.DefaultQuery("format", model.ImportFormatDataset) {
	case model.ImportFormatDataset:
		run, err = h.importer.Run(c.Request.Context(), h.dataDir)
	case model.ImportFormatOSC:
		run, err = h.importer.RunOSC(c.Request.Context(), h.oscDir)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "format 只能是 dataset 或 osc"})
		return
	}
	if err != nil {
		h.logger.WithError(err).Error("导入失败")
		body := gin.H{"error": err.Error()}
		if run != nil {
			body["run"] = run
		}
		c.JSON(http.StatusInternalServerError, body)
		return
	}
	c.JSON(http.StatusOK, run)
}

// ListRuns 最近的导入记录
// GET /api/import/runs?limit=10
func (h *ImportHandler) ListRuns(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	runs, err := h.runs.Latest(c.Request.Context(), limit)
	if err != nil {
		writeError(c, h.logger, "ListRuns", err)
		return
	}
	c.JSON(http.StatusOK, runs)
}

// GetRun 单条导入记录
// GET /api/import/runs/:run_uuid
func (h *ImportHandler) GetRun(c *gin.Context) {
	run, err := h.runs.GetByUUID(c.Request.Context(), c.Param("run_uuid"))
	if err != nil {
		writeError(c, h.logger, "GetRun", err)
		return
	}
	c.JSON(http.StatusOK, run)
}
