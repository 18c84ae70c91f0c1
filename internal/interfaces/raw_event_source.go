package interfaces

import "context"

// RawEventSource 原始 OSC 事件文件的来源
type RawEventSource interface {
	GetName() string
	// FetchEvent 返回 {"<name>": {...}} 形式的原始文件内容
	FetchEvent(ctx context.Context, name string) ([]byte, error)
}
