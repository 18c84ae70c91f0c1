package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"SNCatalog/internal/metrics"
	"SNCatalog/internal/repository"

	"github.com/sirupsen/logrus"
)

// StatsService 跨事件的不确定性、分类冲突与星系统计
type StatsService struct {
	repo   repository.StatsRepository
	events repository.EventRepository
	logger *logrus.Logger
}

// NewStatsService 创建 StatsService
func NewStatsService(repo repository.StatsRepository, events repository.EventRepository, logger *logrus.Logger) *StatsService {
	return &StatsService{repo: repo, events: events, logger: logger}
}

// UncertaintyItem 单个事件的来源计数。同一来源同时出现在分类和宿主声明中时两边各计一次
type UncertaintyItem struct {
	Name           string `json:"name"`
	SubTypeSources int    `json:"subtype_sources"`
	HostSources    int    `json:"host_sources"`
	TotalSources   int    `json:"total_sources"`
}

// ConflictItem 某分类出现在多少个冲突事件中
type ConflictItem struct {
	SubTypeName          string `json:"subtype_name"`
	ConflictedEventCount int    `json:"conflicted_event_count"`
}

// GalaxyCountItem 星系宿主的事件（去重、按字母序）
type GalaxyCountItem struct {
	GalaxyID       uint64   `json:"galaxy_id"`
	GalaxyName     string   `json:"galaxy_name"`
	SupernovaCount int      `json:"supernova_count"`
	Events         []string `json:"events"`
}

// GalaxyDiversityItem 星系宿主事件上声明过的分类（去重、按字母序）
type GalaxyDiversityItem struct {
	GalaxyID           uint64   `json:"galaxy_id"`
	GalaxyName         string   `json:"galaxy_name"`
	SupernovaTypeCount int      `json:"supernova_type_count"`
	SubTypes           []string `json:"subtypes"`
}

// Uncertainty 每个事件的去重来源数，按 total_sources 降序，同值按名称升序
func (s *StatsService) Uncertainty(ctx context.Context) ([]UncertaintyItem, error) {
	rows, err := s.repo.SourceCounts(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]UncertaintyItem, 0, len(rows))
	for _, r := range rows {
		items = append(items, UncertaintyItem{
			Name:           r.EventName,
			SubTypeSources: r.SubTypeSources,
			HostSources:    r.HostSources,
			TotalSources:   r.SubTypeSources + r.HostSources,
		})
	}
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].TotalSources != items[j].TotalSources {
			return items[i].TotalSources > items[j].TotalSources
		}
		return items[i].Name < items[j].Name
	})
	return items, nil
}

// Conflicts 冲突事件（分类声明涉及多于一个不同分类名）中每个分类出现的事件数，降序。
// 按分类名分组，同名的多条 SubType 记录视为同一分类；只有一个分类的事件不贡献任何计数
func (s *StatsService) Conflicts(ctx context.Context) ([]ConflictItem, error) {
	pairs, err := s.repo.ClaimPairs(ctx)
	if err != nil {
		return nil, err
	}

	countByType := make(map[string]int)
	for _, subTypes := range subTypeNamesByEvent(pairs) {
		if len(subTypes) < 2 {
			continue
		}
		for name := range subTypes {
			countByType[name]++
		}
	}

	items := make([]ConflictItem, 0, len(countByType))
	for name, n := range countByType {
		items = append(items, ConflictItem{SubTypeName: name, ConflictedEventCount: n})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].ConflictedEventCount != items[j].ConflictedEventCount {
			return items[i].ConflictedEventCount > items[j].ConflictedEventCount
		}
		return items[i].SubTypeName < items[j].SubTypeName
	})
	return items, nil
}

// ConflictedEventCount 冲突事件总数
func (s *StatsService) ConflictedEventCount(ctx context.Context) (int, error) {
	pairs, err := s.repo.ClaimPairs(ctx)
	if err != nil {
		return 0, err
	}
	distinct := subTypeNamesByEvent(pairs)
	n := 0
	for _, subTypes := range distinct {
		if len(subTypes) > 1 {
			n++
		}
	}
	return n, nil
}

func subTypeNamesByEvent(pairs []repository.EventSubTypeView) map[uint64]map[string]struct{} {
	byEvent := make(map[uint64]map[string]struct{})
	for _, p := range pairs {
		if byEvent[p.EventID] == nil {
			byEvent[p.EventID] = make(map[string]struct{})
		}
		byEvent[p.EventID][p.SubTypeName] = struct{}{}
	}
	return byEvent
}

// GalaxyCounts 每个星系宿主的不同事件，按事件数降序；top > 0 时只取前 top 个
func (s *StatsService) GalaxyCounts(ctx context.Context, top int) ([]GalaxyCountItem, error) {
	rows, err := s.repo.GalaxyEvents(ctx)
	if err != nil {
		return nil, err
	}
	groups := newGalaxyGroups()
	for _, r := range rows {
		groups.add(r.GalaxyID, r.GalaxyName, r.EventName)
	}
	items := make([]GalaxyCountItem, 0, len(groups.order))
	for _, g := range groups.sorted(top) {
		items = append(items, GalaxyCountItem{
			GalaxyID:       g.id,
			GalaxyName:     g.name,
			SupernovaCount: len(g.values),
			Events:         g.values,
		})
	}
	return items, nil
}

// GalaxyDiversity 每个星系宿主事件上的不同分类，按分类数降序；top > 0 时只取前 top 个
func (s *StatsService) GalaxyDiversity(ctx context.Context, top int) ([]GalaxyDiversityItem, error) {
	rows, err := s.repo.GalaxySubTypes(ctx)
	if err != nil {
		return nil, err
	}
	groups := newGalaxyGroups()
	for _, r := range rows {
		groups.add(r.GalaxyID, r.GalaxyName, r.SubTypeName)
	}
	items := make([]GalaxyDiversityItem, 0, len(groups.order))
	for _, g := range groups.sorted(top) {
		items = append(items, GalaxyDiversityItem{
			GalaxyID:           g.id,
			GalaxyName:         g.name,
			SupernovaTypeCount: len(g.values),
			SubTypes:           g.values,
		})
	}
	return items, nil
}

// RefreshGauges 刷新目录规模与冲突指标，由定时任务调用
func (s *StatsService) RefreshGauges(ctx context.Context, m *metrics.Metrics) error {
	if m == nil {
		return nil
	}
	total, err := s.events.Count(ctx)
	if err != nil {
		return fmt.Errorf("统计事件数失败: %w", err)
	}
	conflicted, err := s.ConflictedEventCount(ctx)
	if err != nil {
		return fmt.Errorf("统计冲突事件失败: %w", err)
	}
	byType, err := s.Conflicts(ctx)
	if err != nil {
		return fmt.Errorf("统计分类冲突失败: %w", err)
	}

	m.CatalogEvents.Set(float64(total))
	m.ConflictedEvents.Set(float64(conflicted))
	m.ConflictedByType.Reset()
	for _, item := range byType {
		m.ConflictedByType.WithLabelValues(item.SubTypeName).Set(float64(item.ConflictedEventCount))
	}
	m.LastRefreshUnixTS.Set(float64(time.Now().Unix()))

	s.logger.WithFields(logrus.Fields{
		"events":     total,
		"conflicted": conflicted,
	}).Debug("目录统计指标已刷新")
	return nil
}

type galaxyGroup struct {
	id     uint64
	name   string
	values []string
	seen   map[string]struct{}
}

// galaxyGroups 按星系分组去重，保持首次出现顺序
type galaxyGroups struct {
	byID  map[uint64]*galaxyGroup
	order []*galaxyGroup
}

func newGalaxyGroups() *galaxyGroups {
	return &galaxyGroups{byID: make(map[uint64]*galaxyGroup)}
}

func (gs *galaxyGroups) add(id uint64, name, value string) {
	g, ok := gs.byID[id]
	if !ok {
		g = &galaxyGroup{id: id, name: name, values: []string{}, seen: make(map[string]struct{})}
		gs.byID[id] = g
		gs.order = append(gs.order, g)
	}
	if _, dup := g.seen[value]; dup {
		return
	}
	g.seen[value] = struct{}{}
	g.values = append(g.values, value)
}

// sorted 组内值按字母序；组按值个数降序、同值按星系名升序
func (gs *galaxyGroups) sorted(top int) []*galaxyGroup {
	out := append([]*galaxyGroup(nil), gs.order...)
	for _, g := range out {
		sort.Strings(g.values)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if len(out[i].values) != len(out[j].values) {
			return len(out[i].values) > len(out[j].values)
		}
		return out[i].name < out[j].name
	})
	if top > 0 && len(out) > top {
		out = out[:top]
	}
	return out
}
