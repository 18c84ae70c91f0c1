package repository

import (
	"context"
	"errors"
	"fmt"

	"SNCatalog/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EventRepository 事件及其声明、属性的读写
type EventRepository interface {
	// GetByName 按名称获取事件并预加载全部关联（来源、分类、星系）
	GetByName(ctx context.Context, name string) (*model.Event, error)
	// GetByID 按主键获取事件并预加载全部关联
	GetByID(ctx context.Context, id uint64) (*model.Event, error)
	// List 分页列出事件（仅基础字段），按 id 升序
	List(ctx context.Context, page, pageSize int) ([]*model.Event, int64, error)
	// ListWithRelations 分页列出事件并预加载全部关联（导出用）
	ListWithRelations(ctx context.Context, page, pageSize int) ([]*model.Event, int64, error)
	// Create 在一个事务内创建事件及其声明与属性
	Create(ctx context.Context, event *model.Event) error
	// DeleteByName 删除事件，级联删除其声明与属性
	DeleteByName(ctx context.Context, name string) error
	// Count 事件总数
	Count(ctx context.Context) (int64, error)
}

type eventRepository struct {
	db *gorm.DB
}

// NewEventRepository 创建 EventRepository 实例
func NewEventRepository(db *gorm.DB) EventRepository {
	return &eventRepository{db: db}
}

func byID(db *gorm.DB) *gorm.DB {
	return db.Order("id ASC")
}

// withRelations 关联行按 id 排序，保证别名分配顺序与写入顺序一致
func withRelations(db *gorm.DB) *gorm.DB {
	return db.
		Preload("HostGalaxies", byID).
		Preload("HostGalaxies.Galaxy").
		Preload("HostGalaxies.Source").
		Preload("ClaimedTypes", byID).
		Preload("ClaimedTypes.SubType").
		Preload("ClaimedTypes.Source").
		Preload("Attributes", byID).
		Preload("Attributes.Source")
}

func (r *eventRepository) GetByName(ctx context.Context, name string) (*model.Event, error) {
	var event model.Event
	err := withRelations(r.db.WithContext(ctx)).Where("name = ?", name).First(&event).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &EventNotFoundError{Name: name}
	}
	if err != nil {
		return nil, fmt.Errorf("查询事件失败: %w", err)
	}
	return &event, nil
}

func (r *eventRepository) GetByID(ctx context.Context, id uint64) (*model.Event, error) {
	var event model.Event
	err := withRelations(r.db.WithContext(ctx)).Where("id = ?", id).First(&event).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("查询事件失败: %w", err)
	}
	return &event, nil
}

func (r *eventRepository) List(ctx context.Context, page, pageSize int) ([]*model.Event, int64, error) {
	return r.list(ctx, page, pageSize, false)
}

func (r *eventRepository) ListWithRelations(ctx context.Context, page, pageSize int) ([]*model.Event, int64, error) {
	return r.list(ctx, page, pageSize, true)
}

func (r *eventRepository) list(ctx context.Context, page, pageSize int, preload bool) ([]*model.Event, int64, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 10
	}

	total, err := r.Count(ctx)
	if err != nil {
		return nil, 0, err
	}

	db := r.db.WithContext(ctx)
	if preload {
		db = withRelations(db)
	}
	var events []*model.Event
	if err := db.
		Order("id ASC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&events).Error; err != nil {
		return nil, 0, fmt.Errorf("查询事件列表失败: %w", err)
	}
	return events, total, nil
}

func (r *eventRepository) Create(ctx context.Context, event *model.Event) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(event).Error; err != nil {
			return wrapWrite("保存Event "+event.Name, err)
		}
		for i := range event.ClaimedTypes {
			event.ClaimedTypes[i].EventID = event.ID
		}
		for i := range event.HostGalaxies {
			event.HostGalaxies[i].EventID = event.ID
		}
		for i := range event.Attributes {
			event.Attributes[i].EventID = event.ID
		}
		if len(event.HostGalaxies) > 0 {
			if err := tx.Omit(clause.Associations).Create(&event.HostGalaxies).Error; err != nil {
				return wrapWrite("保存HostGalaxy", err)
			}
		}
		if len(event.ClaimedTypes) > 0 {
			if err := tx.Omit(clause.Associations).Create(&event.ClaimedTypes).Error; err != nil {
				return wrapWrite("保存ClaimedType", err)
			}
		}
		if len(event.Attributes) > 0 {
			if err := tx.Omit(clause.Associations).Create(&event.Attributes).Error; err != nil {
				return wrapWrite("保存Attribute", err)
			}
		}
		return nil
	})
}

func (r *eventRepository) DeleteByName(ctx context.Context, name string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var event model.Event
		err := tx.Where("name = ?", name).First(&event).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &EventNotFoundError{Name: name}
		}
		if err != nil {
			return fmt.Errorf("查询事件失败: %w", err)
		}
		for _, owned := range []interface{}{&model.Attribute{}, &model.ClaimedType{}, &model.HostGalaxy{}} {
			if err := tx.Where("event_id = ?", event.ID).Delete(owned).Error; err != nil {
				return fmt.Errorf("级联删除失败: %w", err)
			}
		}
		if err := tx.Delete(&event).Error; err != nil {
			return fmt.Errorf("删除事件失败: %w", err)
		}
		return nil
	})
}

func (r *eventRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&model.Event{}).Count(&total).Error; err != nil {
		return 0, fmt.Errorf("统计事件失败: %w", err)
	}
	return total, nil
}
