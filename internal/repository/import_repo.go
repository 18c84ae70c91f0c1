package repository

import (
	"context"
	"errors"
	"fmt"

	"SNCatalog/internal/interfaces"
	"SNCatalog/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type importRepository struct {
	db *gorm.DB
}

// NewImportRepository 创建批量导入使用的存储
func NewImportRepository(db *gorm.DB) interfaces.ImportStore {
	return &importRepository{db: db}
}

// clearOrder 先删依赖方再删被引用方
var clearOrder = []interface{}{
	&model.Attribute{},
	&model.ClaimedType{},
	&model.HostGalaxy{},
	&model.Event{},
	&model.Galaxy{},
	&model.SubType{},
	&model.Source{},
}

func (r *importRepository) Clear(ctx context.Context) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, m := range clearOrder {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(m).Error; err != nil {
				return fmt.Errorf("清空 %T 失败: %w", m, err)
			}
		}
		return nil
	})
}

func (r *importRepository) CreateSources(ctx context.Context, sources []*model.Source, batchSize int) error {
	return createInBatches(r.db.WithContext(ctx), sources, batchSize)
}

func (r *importRepository) CreateSubTypes(ctx context.Context, subTypes []*model.SubType, batchSize int) error {
	return createInBatches(r.db.WithContext(ctx), subTypes, batchSize)
}

func (r *importRepository) CreateGalaxies(ctx context.Context, galaxies []*model.Galaxy, batchSize int) error {
	return createInBatches(r.db.WithContext(ctx), galaxies, batchSize)
}

func (r *importRepository) FindSource(ctx context.Context, name string, url *string) (*model.Source, error) {
	db := r.db.WithContext(ctx).Where("name = ?", name)
	if url == nil {
		db = db.Where("url IS NULL")
	} else {
		db = db.Where("url = ?", *url)
	}
	var source model.Source
	if err := db.Order("id ASC").First(&source).Error; err != nil {
		return nil, lookupErr(err)
	}
	return &source, nil
}

func (r *importRepository) FindGalaxyByName(ctx context.Context, name string) (*model.Galaxy, error) {
	var galaxy model.Galaxy
	if err := r.db.WithContext(ctx).Where("name = ?", name).Order("id ASC").First(&galaxy).Error; err != nil {
		return nil, lookupErr(err)
	}
	return &galaxy, nil
}

func (r *importRepository) FindSubTypeByName(ctx context.Context, name string) (*model.SubType, error) {
	var subType model.SubType
	if err := r.db.WithContext(ctx).Where("name = ?", name).Order("id ASC").First(&subType).Error; err != nil {
		return nil, lookupErr(err)
	}
	return &subType, nil
}

func (r *importRepository) CreateEvent(ctx context.Context, event *model.Event) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(event).Error; err != nil {
		return fmt.Errorf("保存Event失败: %w, name: %s", err, event.Name)
	}
	return nil
}

func (r *importRepository) CreateAttributes(ctx context.Context, attrs []*model.Attribute, batchSize int) error {
	return createInBatches(r.db.WithContext(ctx), attrs, batchSize)
}

func (r *importRepository) CreateHostGalaxies(ctx context.Context, hosts []*model.HostGalaxy, batchSize int) error {
	return createInBatches(r.db.WithContext(ctx), hosts, batchSize)
}

func (r *importRepository) CreateClaimedTypes(ctx context.Context, claims []*model.ClaimedType, batchSize int) error {
	return createInBatches(r.db.WithContext(ctx), claims, batchSize)
}

// createInBatches 空切片直接返回；唯一约束等错误原样向上抛出
func createInBatches[T any](db *gorm.DB, rows []*T, batchSize int) error {
	if len(rows) == 0 {
		return nil
	}
	if err := db.Omit(clause.Associations).CreateInBatches(rows, batchSize).Error; err != nil {
		return fmt.Errorf("批量写入 %T 失败: %w", rows[0], err)
	}
	return nil
}

func lookupErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf("查询参考数据失败: %w", err)
}
