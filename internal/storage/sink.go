package storage

import (
	"context"
	"fmt"

	"SNCatalog/internal/config"
	"SNCatalog/internal/interfaces"
)

// NewSink 按导出配置选择写出目标：toS3 时写入配置的桶，否则写入 outDir（为空时用 output_dir）
func NewSink(ctx context.Context, cfg config.ExportConfig, toS3 bool, outDir string, opts ...S3Option) (interfaces.ExportSink, error) {
	if toS3 {
		if !cfg.S3.Enabled() {
			return nil, fmt.Errorf("export.s3.bucket 未配置")
		}
		return NewS3Sink(ctx, cfg.S3, opts...)
	}
	if outDir == "" {
		outDir = cfg.OutputDir
	}
	return NewDirSink(outDir)
}
