package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"SNCatalog/internal/model"
	"SNCatalog/internal/osc"
	"SNCatalog/internal/repository"

	"github.com/sirupsen/logrus"
)

// CatalogService 事件查询、分页、创建与删除，对外输出 OSC 文档
type CatalogService struct {
	eventRepo       repository.EventRepository
	refRepo         repository.ReferenceRepository
	logger          *logrus.Logger
	defaultPageSize int
	maxPageSize     int
}

// NewCatalogService 创建 CatalogService；分页参数非法时回落到 10/50
func NewCatalogService(eventRepo repository.EventRepository, refRepo repository.ReferenceRepository, logger *logrus.Logger, defaultPageSize, maxPageSize int) *CatalogService {
	if defaultPageSize <= 0 {
		defaultPageSize = 10
	}
	if maxPageSize <= 0 {
		maxPageSize = 50
	}
	// 上限不小于默认页大小
	if maxPageSize < defaultPageSize {
		maxPageSize = defaultPageSize
	}
	return &CatalogService{
		eventRepo:       eventRepo,
		refRepo:         refRepo,
		logger:          logger,
		defaultPageSize: defaultPageSize,
		maxPageSize:     maxPageSize,
	}
}

// EventSummary 列表项，仅 id 与 name
type EventSummary struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
}

// EventPage 一页事件及翻页信息
type EventPage struct {
	Count       int64
	Page        int
	PageSize    int
	Results     []EventSummary
	HasNext     bool
	HasPrevious bool
}

// GetEvent 按名称查询事件并序列化为 OSC 文档；不存在时返回 repository.ErrEventNotFound
func (s *CatalogService) GetEvent(ctx context.Context, name string) (model.OSCCatalog, error) {
	event, err := s.eventRepo.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	return osc.Serialize(event)
}

// GetEventByID 按主键查询事件并序列化为 OSC 文档
func (s *CatalogService) GetEventByID(ctx context.Context, id uint64) (model.OSCCatalog, error) {
	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return osc.Serialize(event)
}

// PageSize pageSize<=0 取默认值，超过上限截断到上限
func (s *CatalogService) PageSize(pageSize int) int {
	if pageSize <= 0 {
		return s.defaultPageSize
	}
	if pageSize > s.maxPageSize {
		return s.maxPageSize
	}
	return pageSize
}

// ListEvents 按 id 升序分页。page 从 1 开始；超出最后一页返回 ErrInvalidPage（空目录的第 1 页除外）
func (s *CatalogService) ListEvents(ctx context.Context, page, pageSize int) (*EventPage, error) {
	if page <= 0 {
		return nil, ErrInvalidPage
	}
	pageSize = s.PageSize(pageSize)

	events, total, err := s.eventRepo.List(ctx, page, pageSize)
	if err != nil {
		return nil, err
	}
	lastPage := int((total + int64(pageSize) - 1) / int64(pageSize))
	if lastPage == 0 {
		lastPage = 1
	}
	if page > lastPage {
		return nil, ErrInvalidPage
	}

	results := make([]EventSummary, 0, len(events))
	for _, e := range events {
		results = append(results, EventSummary{ID: e.ID, Name: e.Name})
	}
	return &EventPage{
		Count:       total,
		Page:        page,
		PageSize:    pageSize,
		Results:     results,
		HasNext:     page < lastPage,
		HasPrevious: page > 1,
	}, nil
}

// ClaimInput 分类声明输入
type ClaimInput struct {
	SubTypeID uint64 `json:"subtype_id" binding:"required"`
	SourceID  uint64 `json:"source_id" binding:"required"`
}

// HostInput 宿主星系声明输入
type HostInput struct {
	GalaxyID uint64 `json:"galaxy_id" binding:"required"`
	SourceID uint64 `json:"source_id" binding:"required"`
}

// AttributeInput 属性测量输入
type AttributeInput struct {
	Name     model.AttributeName `json:"name" binding:"required"`
	Value    float64             `json:"value"`
	Unit     string              `json:"unit"`
	SourceID uint64              `json:"source_id" binding:"required"`
}

// CreateEventRequest 手动录入一个事件及其声明
type CreateEventRequest struct {
	Name         string           `json:"name" binding:"required"`
	ClaimedTypes []ClaimInput     `json:"claimed_types"`
	HostGalaxies []HostInput      `json:"host_galaxies"`
	Attributes   []AttributeInput `json:"attributes"`
}

// CreateEvent 校验引用与属性名后在一个事务内写入，返回新事件的 OSC 文档
func (s *CatalogService) CreateEvent(ctx context.Context, req CreateEventRequest) (model.OSCCatalog, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name 不能为空", ErrInvalidInput)
	}

	event := &model.Event{Name: name}
	for _, c := range req.ClaimedTypes {
		if err := s.checkRef(ctx, "subtype", c.SubTypeID, s.subTypeExists); err != nil {
			return nil, err
		}
		if err := s.checkRef(ctx, "source", c.SourceID, s.sourceExists); err != nil {
			return nil, err
		}
		event.ClaimedTypes = append(event.ClaimedTypes, model.ClaimedType{SubTypeID: c.SubTypeID, SourceID: c.SourceID})
	}
	for _, h := range req.HostGalaxies {
		if err := s.checkRef(ctx, "galaxy", h.GalaxyID, s.galaxyExists); err != nil {
			return nil, err
		}
		if err := s.checkRef(ctx, "source", h.SourceID, s.sourceExists); err != nil {
			return nil, err
		}
		event.HostGalaxies = append(event.HostGalaxies, model.HostGalaxy{GalaxyID: h.GalaxyID, SourceID: h.SourceID})
	}
	for _, a := range req.Attributes {
		if !a.Name.Valid() {
			return nil, fmt.Errorf("%w: %q", ErrInvalidAttribute, a.Name)
		}
		if err := s.checkRef(ctx, "source", a.SourceID, s.sourceExists); err != nil {
			return nil, err
		}
		event.Attributes = append(event.Attributes, model.Attribute{
			Name:     a.Name,
			Value:    a.Value,
			Unit:     a.Unit,
			SourceID: a.SourceID,
		})
	}

	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, err
	}
	s.logger.WithFields(logrus.Fields{
		"event":      event.Name,
		"claims":     len(event.ClaimedTypes),
		"hosts":      len(event.HostGalaxies),
		"attributes": len(event.Attributes),
	}).Info("事件创建成功")
	return s.GetEvent(ctx, event.Name)
}

// DeleteEvent 删除事件，声明与属性随之删除
func (s *CatalogService) DeleteEvent(ctx context.Context, name string) error {
	if err := s.eventRepo.DeleteByName(ctx, name); err != nil {
		return err
	}
	s.logger.WithField("event", name).Info("事件已删除")
	return nil
}

func (s *CatalogService) checkRef(ctx context.Context, kind string, id uint64, exists func(context.Context, uint64) error) error {
	err := exists(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%w: %s %d 不存在", ErrInvalidInput, kind, id)
	}
	return err
}

func (s *CatalogService) sourceExists(ctx context.Context, id uint64) error {
	_, err := s.refRepo.GetSource(ctx, id)
	return err
}

func (s *CatalogService) subTypeExists(ctx context.Context, id uint64) error {
	_, err := s.refRepo.GetSubType(ctx, id)
	return err
}

func (s *CatalogService) galaxyExists(ctx context.Context, id uint64) error {
	_, err := s.refRepo.GetGalaxy(ctx, id)
	return err
}
