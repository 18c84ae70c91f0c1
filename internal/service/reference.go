package service

import (
	"context"
	"fmt"
	"strings"

	"SNCatalog/internal/model"
	"SNCatalog/internal/repository"

	"github.com/sirupsen/logrus"
)

// ReferenceService 来源、分类、星系的增删查
type ReferenceService struct {
	repo   repository.ReferenceRepository
	logger *logrus.Logger
}

// NewReferenceService 创建 ReferenceService
func NewReferenceService(repo repository.ReferenceRepository, logger *logrus.Logger) *ReferenceService {
	return &ReferenceService{repo: repo, logger: logger}
}

// Page 通用分页结果
type Page[T any] struct {
	Count   int64
	Results []*T
}

// SourceInput 新建来源；bibcode/doi 为空串时按 null 存储，避免唯一索引冲突
type SourceInput struct {
	Name      string  `json:"name" binding:"required"`
	URL       *string `json:"url"`
	Bibcode   *string `json:"bibcode"`
	DOI       *string `json:"doi"`
	Secondary bool    `json:"secondary"`
}

// GalaxyInput 新建星系
type GalaxyInput struct {
	Name    string   `json:"name" binding:"required"`
	HostRA  *string  `json:"hostra"`
	HostDec *float64 `json:"hostdec"`
}

// NameInput 新建分类
type NameInput struct {
	Name string `json:"name" binding:"required"`
}

func (s *ReferenceService) ListSources(ctx context.Context, page, pageSize int) (*Page[model.Source], error) {
	rows, total, err := s.repo.ListSources(ctx, page, pageSize)
	if err != nil {
		return nil, err
	}
	return &Page[model.Source]{Count: total, Results: rows}, nil
}

func (s *ReferenceService) GetSource(ctx context.Context, id uint64) (*model.Source, error) {
	return s.repo.GetSource(ctx, id)
}

func (s *ReferenceService) CreateSource(ctx context.Context, in SourceInput) (*model.Source, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, fmt.Errorf("%w: name 不能为空", ErrInvalidInput)
	}
	if in.Bibcode != nil && len(*in.Bibcode) > 19 {
		return nil, fmt.Errorf("%w: bibcode 最长 19 个字符", ErrInvalidInput)
	}
	source := &model.Source{
		Name:      in.Name,
		URL:       nullIfEmpty(in.URL),
		Bibcode:   nullIfEmpty(in.Bibcode),
		DOI:       nullIfEmpty(in.DOI),
		Secondary: in.Secondary,
	}
	if err := s.repo.CreateSource(ctx, source); err != nil {
		return nil, err
	}
	s.logger.WithField("source_id", source.ID).Info("来源已创建")
	return source, nil
}

func (s *ReferenceService) DeleteSource(ctx context.Context, id uint64) error {
	return s.repo.DeleteSource(ctx, id)
}

func (s *ReferenceService) ListSubTypes(ctx context.Context, page, pageSize int) (*Page[model.SubType], error) {
	rows, total, err := s.repo.ListSubTypes(ctx, page, pageSize)
	if err != nil {
		return nil, err
	}
	return &Page[model.SubType]{Count: total, Results: rows}, nil
}

func (s *ReferenceService) GetSubType(ctx context.Context, id uint64) (*model.SubType, error) {
	return s.repo.GetSubType(ctx, id)
}

func (s *ReferenceService) CreateSubType(ctx context.Context, in NameInput) (*model.SubType, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, fmt.Errorf("%w: name 不能为空", ErrInvalidInput)
	}
	subType := &model.SubType{Name: in.Name}
	if err := s.repo.CreateSubType(ctx, subType); err != nil {
		return nil, err
	}
	return subType, nil
}

func (s *ReferenceService) DeleteSubType(ctx context.Context, id uint64) error {
	return s.repo.DeleteSubType(ctx, id)
}

func (s *ReferenceService) ListGalaxies(ctx context.Context, page, pageSize int) (*Page[model.Galaxy], error) {
	rows, total, err := s.repo.ListGalaxies(ctx, page, pageSize)
	if err != nil {
		return nil, err
	}
	return &Page[model.Galaxy]{Count: total, Results: rows}, nil
}

func (s *ReferenceService) GetGalaxy(ctx context.Context, id uint64) (*model.Galaxy, error) {
	return s.repo.GetGalaxy(ctx, id)
}

func (s *ReferenceService) CreateGalaxy(ctx context.Context, in GalaxyInput) (*model.Galaxy, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, fmt.Errorf("%w: name 不能为空", ErrInvalidInput)
	}
	galaxy := &model.Galaxy{Name: in.Name, HostRA: nullIfEmpty(in.HostRA), HostDec: in.HostDec}
	if err := s.repo.CreateGalaxy(ctx, galaxy); err != nil {
		return nil, err
	}
	return galaxy, nil
}

func (s *ReferenceService) DeleteGalaxy(ctx context.Context, id uint64) error {
	return s.repo.DeleteGalaxy(ctx, id)
}

func nullIfEmpty(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	return s
}
