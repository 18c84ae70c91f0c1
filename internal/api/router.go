package api

import (
	"net/http"

	"SNCatalog/internal/config"
	"SNCatalog/internal/metrics"

	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// NewRouter 注册全部路由。gatherer 为 nil 时不挂载 /metrics
func NewRouter(db *gorm.DB, logger *logrus.Logger, cfg *config.Config, m *metrics.Metrics, gatherer prometheus.Gatherer) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(logger))

	if cfg.Server.EnablePprof {
		// 注册ppof 方便调试和监测性能问题
		pprof.Register(r)
	}
	if gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}
	r.GET("/healthz", func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "down", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")

	eventHandler := NewEventHandler(db, logger, cfg.Server)
	statsHandler := NewStatsHandler(db, logger)
	events := api.Group("/events")
	events.GET("", eventHandler.ListEvents)
	events.POST("", eventHandler.CreateEvent)
	events.GET("/search", eventHandler.SearchEvent)
	events.GET("/supernova-uncertainty", statsHandler.SupernovaUncertainty)
	events.GET("/subtype-uncertainty", statsHandler.SubtypeUncertainty)
	events.GET("/galaxy-sn-count", statsHandler.GalaxySNCount)
	events.GET("/galaxy-sn-diversity", statsHandler.GalaxySNDiversity)
	events.GET("/:id", eventHandler.GetEvent)
	events.DELETE("/:name", eventHandler.DeleteEvent)

	NewReferenceHandler(db, logger).Register(api)

	importHandler := NewImportHandler(db, logger, cfg, m)
	api.POST("/import", importHandler.RunImport)
	api.GET("/import/runs", importHandler.ListRuns)
	api.GET("/import/runs/:run_uuid", importHandler.GetRun)

	exportHandler := NewExportHandler(db, logger, cfg.Export, m)
	api.POST("/export", exportHandler.RunExport)

	return r
}

// requestLogger 用 logrus 记录每个请求
func requestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		entry := logger.WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
			"status": c.Writer.Status(),
		})
		if c.Writer.Status() >= http.StatusInternalServerError {
			entry.Warn("request failed")
			return
		}
		entry.Debug("request")
	}
}
