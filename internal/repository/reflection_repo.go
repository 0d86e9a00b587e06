package repository

import (
	"context"
	"fmt"

	"github.com/yuqie6/reme/internal/schema"
	"gorm.io/gorm"
)

// ReflectionRepository 反思仓储
type ReflectionRepository struct {
	db *gorm.DB
}

// NewReflectionRepository 创建仓储
func NewReflectionRepository(db *gorm.DB) *ReflectionRepository {
	return &ReflectionRepository{db: db}
}

// Create 写入反思
func (r *ReflectionRepository) Create(ctx context.Context, reflection *schema.Reflection) error {
	if err := r.db.WithContext(ctx).Create(reflection).Error; err != nil {
		return fmt.Errorf("写入反思失败: %w", err)
	}
	return nil
}

// ListRecent 最近 N 条反思
func (r *ReflectionRepository) ListRecent(ctx context.Context, userID string, limit int) ([]schema.Reflection, error) {
	var items []schema.Reflection
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("查询反思失败: %w", err)
	}
	return items, nil
}

// CountByUser 用户反思总数
func (r *ReflectionRepository) CountByUser(ctx context.Context, userID string) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&schema.Reflection{}).Where("user_id = ?", userID).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("统计反思失败: %w", err)
	}
	return n, nil
}

// MomentRepository 开心时刻仓储
type MomentRepository struct {
	db *gorm.DB
}

// NewMomentRepository 创建仓储
func NewMomentRepository(db *gorm.DB) *MomentRepository {
	return &MomentRepository{db: db}
}

// Create 写入时刻
func (r *MomentRepository) Create(ctx context.Context, moment *schema.Moment) error {
	if err := r.db.WithContext(ctx).Create(moment).Error; err != nil {
		return fmt.Errorf("写入开心时刻失败: %w", err)
	}
	return nil
}

// ListRecent 最近 N 条时刻
func (r *MomentRepository) ListRecent(ctx context.Context, userID string, limit int) ([]schema.Moment, error) {
	var items []schema.Moment
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("查询开心时刻失败: %w", err)
	}
	return items, nil
}

// CountByUser 用户开心时刻总数
func (r *MomentRepository) CountByUser(ctx context.Context, userID string) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&schema.Moment{}).Where("user_id = ?", userID).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("统计开心时刻失败: %w", err)
	}
	return n, nil
}
