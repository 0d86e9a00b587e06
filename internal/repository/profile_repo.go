package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/yuqie6/reme/internal/schema"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProfileRepository 用户资料与每日语录仓储
type ProfileRepository struct {
	db *gorm.DB
}

// NewProfileRepository 创建仓储
func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// Get 获取资料，不存在返回 nil
func (r *ProfileRepository) Get(ctx context.Context, userID string) (*schema.Profile, error) {
	var p schema.Profile
	err := r.db.WithContext(ctx).Where("id = ?", userID).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("查询资料失败: %w", err)
	}
	return &p, nil
}

// Upsert 插入或更新资料
func (r *ProfileRepository) Upsert(ctx context.Context, p *schema.Profile) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"display_name", "mbti", "age", "reminder_time", "updated_at"}),
	}).Create(p).Error
	if err != nil {
		return fmt.Errorf("保存资料失败: %w", err)
	}
	return nil
}

// GetQuote 获取某天的语录，不存在返回 nil
func (r *ProfileRepository) GetQuote(ctx context.Context, userID, date string) (*schema.DailyQuote, error) {
	var q schema.DailyQuote
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND date = ?", userID, date).
		First(&q).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("查询语录失败: %w", err)
	}
	return &q, nil
}

// UpsertQuote 按 (user_id, date) 插入或覆盖语录
func (r *ProfileRepository) UpsertQuote(ctx context.Context, q *schema.DailyQuote) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{"text", "attribution", "updated_at"}),
	}).Create(q).Error
	if err != nil {
		return fmt.Errorf("保存语录失败: %w", err)
	}
	return nil
}
