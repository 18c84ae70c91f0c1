package interfaces

import "context"

// ExportSink OSC 文档的写出目标（本地目录或对象存储）
type ExportSink interface {
	// Name 目标描述，用于日志
	Name() string
	// Put 写入一个对象，key 为相对路径，如 SN2011fe.json
	Put(ctx context.Context, key string, body []byte) error
}
