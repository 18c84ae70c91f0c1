package interfaces

import (
	"context"

	"SNCatalog/internal/model"
)

// ImportStore 批量导入使用的存储操作（清空 + 参考数据查找 + 分批写入）
type ImportStore interface {
	// Clear 清空全部目录数据：先删声明与属性、事件，再删星系、分类、来源
	Clear(ctx context.Context) error

	CreateSources(ctx context.Context, sources []*model.Source, batchSize int) error
	CreateSubTypes(ctx context.Context, subTypes []*model.SubType, batchSize int) error
	CreateGalaxies(ctx context.Context, galaxies []*model.Galaxy, batchSize int) error

	// FindSource 按 (name, url) 精确匹配来源，url 为 nil 时匹配空值
	FindSource(ctx context.Context, name string, url *string) (*model.Source, error)
	FindGalaxyByName(ctx context.Context, name string) (*model.Galaxy, error)
	FindSubTypeByName(ctx context.Context, name string) (*model.SubType, error)

	CreateEvent(ctx context.Context, event *model.Event) error
	CreateAttributes(ctx context.Context, attrs []*model.Attribute, batchSize int) error
	CreateHostGalaxies(ctx context.Context, hosts []*model.HostGalaxy, batchSize int) error
	CreateClaimedTypes(ctx context.Context, claims []*model.ClaimedType, batchSize int) error
}
