package repository

import (
	"context"
	"errors"
	"time"

	"SNCatalog/internal/model"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ImportRunRepository 导入任务审计记录
type ImportRunRepository interface {
	Create(ctx context.Context, run *model.ImportRun) error
	Finish(ctx context.Context, runUUID, status string, stats datatypes.JSON, errMsg *string) error
	GetByUUID(ctx context.Context, runUUID string) (*model.ImportRun, error)
	Latest(ctx context.Context, limit int) ([]*model.ImportRun, error)
}

type importRunRepository struct {
	db *gorm.DB
}

// NewImportRunRepository 创建导入任务仓储
func NewImportRunRepository(db *gorm.DB) ImportRunRepository {
	return &importRunRepository{db: db}
}

func (r *importRunRepository) Create(ctx context.Context, run *model.ImportRun) error {
	return r.db.WithContext(ctx).Create(run).Error
}

func (r *importRunRepository) Finish(ctx context.Context, runUUID, status string, stats datatypes.JSON, errMsg *string) error {
	now := time.Now()
	return r.db.WithContext(ctx).Model(&model.ImportRun{}).
		Where("run_uuid = ?", runUUID).
		Updates(map[string]interface{}{
			"status":      status,
			"stats":       stats,
			"error":       errMsg,
			"finished_at": &now,
		}).Error
}

func (r *importRunRepository) GetByUUID(ctx context.Context, runUUID string) (*model.ImportRun, error) {
	var run model.ImportRun
	err := r.db.WithContext(ctx).Where("run_uuid = ?", runUUID).First(&run).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

func (r *importRunRepository) Latest(ctx context.Context, limit int) ([]*model.ImportRun, error) {
	if limit <= 0 {
		limit = 10
	}
	var runs []*model.ImportRun
	if err := r.db.WithContext(ctx).Order("id DESC").Limit(limit).Find(&runs).Error; err != nil {
		return nil, err
	}
	return runs, nil
}
