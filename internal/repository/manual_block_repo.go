package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/MeloticZ/CourseX/internal/model"
)

// ManualBlockRepository 手工时间块数据访问接口
type ManualBlockRepository interface {
	Create(ctx context.Context, block *model.ManualBlock) error
	GetByID(ctx context.Context, id string) (*model.ManualBlock, error)
	ListByUserTerm(ctx context.Context, userID, termID string) ([]model.ManualBlock, error)
	Update(ctx context.Context, block *model.ManualBlock) error
	Delete(ctx context.Context, userID, blockID string) (int64, error)
	DeleteByUserTerm(ctx context.Context, userID, termID string) (int64, error)
}

type manualBlockRepo struct {
	db *gorm.DB
}

// NewManualBlockRepo 创建 ManualBlockRepository 实例
func NewManualBlockRepo(db *gorm.DB) ManualBlockRepository {
	return &manualBlockRepo{db: db}
}

func (r *manualBlockRepo) Create(ctx context.Context, block *model.ManualBlock) error {
	return r.db.WithContext(ctx).Create(block).Error
}

func (r *manualBlockRepo) GetByID(ctx context.Context, id string) (*model.ManualBlock, error) {
	var block model.ManualBlock
	err := r.db.WithContext(ctx).
		Where("block_id = ?", id).
		First(&block).Error
	if err != nil {
		return nil, err
	}
	return &block, nil
}

func (r *manualBlockRepo) ListByUserTerm(ctx context.Context, userID, termID string) ([]model.ManualBlock, error) {
	var blocks []model.ManualBlock
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND term_id = ?", userID, termID).
		Order("day_index ASC, start_minutes ASC").
		Find(&blocks).Error
	return blocks, err
}

func (r *manualBlockRepo) Update(ctx context.Context, block *model.ManualBlock) error {
	return r.db.WithContext(ctx).Save(block).Error
}

func (r *manualBlockRepo) Delete(ctx context.Context, userID, blockID string) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND block_id = ?", userID, blockID).
		Delete(&model.ManualBlock{})
	return result.RowsAffected, result.Error
}

func (r *manualBlockRepo) DeleteByUserTerm(ctx context.Context, userID, termID string) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND term_id = ?", userID, termID).
		Delete(&model.ManualBlock{})
	return result.RowsAffected, result.Error
}
