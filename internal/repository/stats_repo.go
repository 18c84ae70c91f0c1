package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// StatsRepository 跨事件统计所需的扁平查询
type StatsRepository interface {
	// SourceCounts 每个事件在分类声明与宿主声明中各自的去重来源数（无声明的事件为 0）
	SourceCounts(ctx context.Context) ([]EventSourceCountView, error)
	// ClaimPairs 去重后的 (事件, 分类) 对
	ClaimPairs(ctx context.Context) ([]EventSubTypeView, error)
	// GalaxyEvents 去重后的 (星系, 事件) 对
	GalaxyEvents(ctx context.Context) ([]GalaxyEventView, error)
	// GalaxySubTypes 去重后的 (星系, 分类) 对：星系所宿主事件上声明过的分类
	GalaxySubTypes(ctx context.Context) ([]GalaxySubTypeView, error)
}

type statsRepository struct {
	db *gorm.DB
}

// EventSourceCountView 只暴露给 service 的轻量视图结构，避免在 service 中依赖 gorm 标签
type EventSourceCountView struct {
	EventID        uint64
	EventName      string
	SubTypeSources int
	HostSources    int
}

// EventSubTypeView (事件, 分类) 视图
type EventSubTypeView struct {
	EventID     uint64
	SubTypeID   uint64
	SubTypeName string
}

// GalaxyEventView (星系, 事件) 视图
type GalaxyEventView struct {
	GalaxyID   uint64
	GalaxyName string
	EventName  string
}

// GalaxySubTypeView (星系, 分类) 视图
type GalaxySubTypeView struct {
	GalaxyID    uint64
	GalaxyName  string
	SubTypeName string
}

// NewStatsRepository 创建 StatsRepository 实例
func NewStatsRepository(db *gorm.DB) StatsRepository {
	return &statsRepository{db: db}
}

func (r *statsRepository) SourceCounts(ctx context.Context) ([]EventSourceCountView, error) {
	var rows []EventSourceCountView
	err := r.db.WithContext(ctx).Raw(`
SELECT e.id AS event_id,
       e.name AS event_name,
       (SELECT COUNT(DISTINCT c.source_id) FROM claimed_types c WHERE c.event_id = e.id) AS sub_type_sources,
       (SELECT COUNT(DISTINCT h.source_id) FROM host_galaxies h WHERE h.event_id = e.id) AS host_sources
FROM events e
ORDER BY e.id`).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("统计事件来源数失败: %w", err)
	}
	return rows, nil
}

func (r *statsRepository) ClaimPairs(ctx context.Context) ([]EventSubTypeView, error) {
	var rows []EventSubTypeView
	err := r.db.WithContext(ctx).Table("claimed_types c").
		Distinct("c.event_id AS event_id", "s.id AS sub_type_id", "s.name AS sub_type_name").
		Joins("JOIN subtypes s ON s.id = c.sub_type_id").
		Order("c.event_id, s.id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("查询分类声明失败: %w", err)
	}
	return rows, nil
}

func (r *statsRepository) GalaxyEvents(ctx context.Context) ([]GalaxyEventView, error) {
	var rows []GalaxyEventView
	err := r.db.WithContext(ctx).Table("host_galaxies h").
		Distinct("g.id AS galaxy_id", "g.name AS galaxy_name", "e.name AS event_name").
		Joins("JOIN galaxies g ON g.id = h.galaxy_id").
		Joins("JOIN events e ON e.id = h.event_id").
		Order("g.id, e.name").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("查询星系事件失败: %w", err)
	}
	return rows, nil
}

func (r *statsRepository) GalaxySubTypes(ctx context.Context) ([]GalaxySubTypeView, error) {
	var rows []GalaxySubTypeView
	err := r.db.WithContext(ctx).Table("host_galaxies h").
		Distinct("g.id AS galaxy_id", "g.name AS galaxy_name", "s.name AS sub_type_name").
		Joins("JOIN galaxies g ON g.id = h.galaxy_id").
		Joins("JOIN claimed_types c ON c.event_id = h.event_id").
		Joins("JOIN subtypes s ON s.id = c.sub_type_id").
		Order("g.id, s.name").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("查询星系分类失败: %w", err)
	}
	return rows, nil
}
