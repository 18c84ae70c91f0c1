// Package storage 提供导出文档的写出目标：本地目录与 S3 兼容对象存储
package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DirSink 写入本地目录
type DirSink struct {
	root string
}

// NewDirSink 创建目录（若不存在）
func NewDirSink(root string) (*DirSink, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("创建导出目录失败: %w", err)
	}
	return &DirSink{root: root}, nil
}

func (d *DirSink) Name() string { return "dir:" + d.root }

// Put key 中的路径分隔符会建立子目录；不允许逃逸出 root
func (d *DirSink) Put(ctx context.Context, key string, body []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	clean := filepath.Clean(filepath.FromSlash(key))
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return fmt.Errorf("非法的导出路径: %s", key)
	}
	path := filepath.Join(d.root, clean)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("创建目录失败: %w", err)
	}
	if err := os.WriteFile(path, body, 0o644); err != nil {
		return fmt.Errorf("写入 %s 失败: %w", path, err)
	}
	return nil
}
