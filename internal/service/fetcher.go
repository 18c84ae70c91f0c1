package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"SNCatalog/internal/interfaces"

	"github.com/sirupsen/logrus"
)

// FetchService 按事件名抓取原始 OSC 文件写入目录，作为 Extractor 的输入
type FetchService struct {
	source interfaces.RawEventSource
	logger *logrus.Logger
}

// NewFetchService 创建 FetchService
func NewFetchService(source interfaces.RawEventSource, logger *logrus.Logger) *FetchService {
	return &FetchService{source: source, logger: logger}
}

// FetchAll 逐个抓取；单个失败只记日志并继续，最后返回成功数与汇总错误
func (s *FetchService) FetchAll(ctx context.Context, names []string, outDir string) (int, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return 0, fmt.Errorf("创建目录失败: %w", err)
	}
	var errs []error
	fetched := 0
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		body, err := s.source.FetchEvent(ctx, name)
		if err != nil {
			s.logger.WithError(err).WithField("event", name).Warnf("%s抓取失败", s.source.GetName())
			errs = append(errs, err)
			continue
		}
		path := filepath.Join(outDir, safeFileName(name)+".json")
		if err := os.WriteFile(path, body, 0o644); err != nil {
			errs = append(errs, fmt.Errorf("写入 %s 失败: %w", path, err))
			continue
		}
		fetched++
	}
	s.logger.WithFields(logrus.Fields{"fetched": fetched, "requested": len(names)}).Infof("%s抓取完成", s.source.GetName())
	return fetched, errors.Join(errs...)
}

func safeFileName(name string) string {
	return strings.NewReplacer("/", "_", "\\", "_", "..", "_").Replace(name)
}
