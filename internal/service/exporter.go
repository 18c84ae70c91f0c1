package service

import (
	"context"
	"encoding/json"
	"fmt"

	"SNCatalog/internal/interfaces"
	"SNCatalog/internal/metrics"
	"SNCatalog/internal/osc"
	"SNCatalog/internal/repository"

	"github.com/sirupsen/logrus"
)

// Exporter 分页读取全部事件，序列化为 OSC 文档，每个事件写出一个 <name>.json
type Exporter struct {
	eventRepo repository.EventRepository
	metrics   *metrics.Metrics
	logger    *logrus.Logger
	pageSize  int
}

// NewExporter 创建 Exporter
func NewExporter(eventRepo repository.EventRepository, m *metrics.Metrics, logger *logrus.Logger, pageSize int) *Exporter {
	if pageSize <= 0 {
		pageSize = 200
	}
	return &Exporter{eventRepo: eventRepo, metrics: m, logger: logger, pageSize: pageSize}
}

// Export 写出全部事件，返回写出的文档数
func (x *Exporter) Export(ctx context.Context, sink interfaces.ExportSink) (int, error) {
	written := 0
	for page := 1; ; page++ {
		events, total, err := x.eventRepo.ListWithRelations(ctx, page, x.pageSize)
		if err != nil {
			return written, err
		}
		for _, event := range events {
			catalog, err := osc.Serialize(event)
			if err != nil {
				return written, fmt.Errorf("序列化事件 %s 失败: %w", event.Name, err)
			}
			body, err := json.MarshalIndent(catalog, "", "  ")
			if err != nil {
				return written, fmt.Errorf("编码事件 %s 失败: %w", event.Name, err)
			}
			if err := sink.Put(ctx, event.Name+".json", body); err != nil {
				return written, err
			}
			written++
		}
		if len(events) == 0 || int64(page*x.pageSize) >= total {
			break
		}
	}
	x.metrics.ObserveExport(written)
	x.logger.WithFields(logrus.Fields{"sink": sink.Name(), "events": written}).Info("OSC 导出完成")
	return written, nil
}
