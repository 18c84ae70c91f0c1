package repository

import (
	"context"
	"errors"
	"fmt"

	"SNCatalog/internal/model"

	"gorm.io/gorm"
)

// ReferenceRepository 来源、分类、星系三类参考数据的增删查
type ReferenceRepository interface {
	ListSources(ctx context.Context, page, pageSize int) ([]*model.Source, int64, error)
	GetSource(ctx context.Context, id uint64) (*model.Source, error)
	CreateSource(ctx context.Context, source *model.Source) error
	DeleteSource(ctx context.Context, id uint64) error

	ListSubTypes(ctx context.Context, page, pageSize int) ([]*model.SubType, int64, error)
	GetSubType(ctx context.Context, id uint64) (*model.SubType, error)
	CreateSubType(ctx context.Context, subType *model.SubType) error
	DeleteSubType(ctx context.Context, id uint64) error

	ListGalaxies(ctx context.Context, page, pageSize int) ([]*model.Galaxy, int64, error)
	GetGalaxy(ctx context.Context, id uint64) (*model.Galaxy, error)
	CreateGalaxy(ctx context.Context, galaxy *model.Galaxy) error
	DeleteGalaxy(ctx context.Context, id uint64) error
}

type referenceRepository struct {
	db *gorm.DB
}

// NewReferenceRepository 创建 ReferenceRepository 实例
func NewReferenceRepository(db *gorm.DB) ReferenceRepository {
	return &referenceRepository{db: db}
}

// reference 被引用检查：表名 + 外键列
type reference struct {
	table  string
	column string
}

var (
	sourceRefs  = []reference{{"claimed_types", "source_id"}, {"host_galaxies", "source_id"}, {"attributes", "source_id"}}
	subTypeRefs = []reference{{"claimed_types", "sub_type_id"}}
	galaxyRefs  = []reference{{"host_galaxies", "galaxy_id"}}
)

func (r *referenceRepository) ListSources(ctx context.Context, page, pageSize int) ([]*model.Source, int64, error) {
	return listPage[model.Source](r.db.WithContext(ctx), page, pageSize)
}

func (r *referenceRepository) GetSource(ctx context.Context, id uint64) (*model.Source, error) {
	return getByID[model.Source](r.db.WithContext(ctx), id)
}

func (r *referenceRepository) CreateSource(ctx context.Context, source *model.Source) error {
	if err := r.db.WithContext(ctx).Create(source).Error; err != nil {
		return wrapWrite("保存来源", err)
	}
	return nil
}

func (r *referenceRepository) DeleteSource(ctx context.Context, id uint64) error {
	return deleteProtected[model.Source](r.db.WithContext(ctx), id, sourceRefs)
}

func (r *referenceRepository) ListSubTypes(ctx context.Context, page, pageSize int) ([]*model.SubType, int64, error) {
	return listPage[model.SubType](r.db.WithContext(ctx), page, pageSize)
}

func (r *referenceRepository) GetSubType(ctx context.Context, id uint64) (*model.SubType, error) {
	return getByID[model.SubType](r.db.WithContext(ctx), id)
}

func (r *referenceRepository) CreateSubType(ctx context.Context, subType *model.SubType) error {
	if err := r.db.WithContext(ctx).Create(subType).Error; err != nil {
		return wrapWrite("保存分类", err)
	}
	return nil
}

func (r *referenceRepository) DeleteSubType(ctx context.Context, id uint64) error {
	return deleteProtected[model.SubType](r.db.WithContext(ctx), id, subTypeRefs)
}

func (r *referenceRepository) ListGalaxies(ctx context.Context, page, pageSize int) ([]*model.Galaxy, int64, error) {
	return listPage[model.Galaxy](r.db.WithContext(ctx), page, pageSize)
}

func (r *referenceRepository) GetGalaxy(ctx context.Context, id uint64) (*model.Galaxy, error) {
	return getByID[model.Galaxy](r.db.WithContext(ctx), id)
}

func (r *referenceRepository) CreateGalaxy(ctx context.Context, galaxy *model.Galaxy) error {
	if err := r.db.WithContext(ctx).Create(galaxy).Error; err != nil {
		return wrapWrite("保存星系", err)
	}
	return nil
}

func (r *referenceRepository) DeleteGalaxy(ctx context.Context, id uint64) error {
	return deleteProtected[model.Galaxy](r.db.WithContext(ctx), id, galaxyRefs)
}

func listPage[T any](db *gorm.DB, page, pageSize int) ([]*T, int64, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 10
	}
	var total int64
	if err := db.Model(new(T)).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("统计记录失败: %w", err)
	}
	var rows []*T
	if err := db.Order("id ASC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&rows).Error; err != nil {
		return nil, 0, fmt.Errorf("查询记录失败: %w", err)
	}
	return rows, total, nil
}

func getByID[T any](db *gorm.DB, id uint64) (*T, error) {
	var row T
	err := db.Where("id = ?", id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("查询记录失败: %w", err)
	}
	return &row, nil
}

// deleteProtected 在事务内检查引用，仍被引用返回 ErrProtected
func deleteProtected[T any](db *gorm.DB, id uint64, refs []reference) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var row T
		err := tx.Where("id = ?", id).First(&row).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("查询记录失败: %w", err)
		}
		for _, ref := range refs {
			var n int64
			if err := tx.Table(ref.table).Where(ref.column+" = ?", id).Count(&n).Error; err != nil {
				return fmt.Errorf("检查引用失败: %w", err)
			}
			if n > 0 {
				return fmt.Errorf("%w: %s 中有 %d 条引用", ErrProtected, ref.table, n)
			}
		}
		if err := tx.Delete(&row).Error; err != nil {
			return fmt.Errorf("删除记录失败: %w", err)
		}
		return nil
	})
}
