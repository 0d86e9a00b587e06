package repository

import (
	"context"
	"fmt"

	"github.com/yuqie6/reme/internal/schema"
	"gorm.io/gorm"
)

// ActivityRepository 活动记录仓储（只读；写入统一走 HobbyRepository.ApplyActivities）
type ActivityRepository struct {
	db *gorm.DB
}

// NewActivityRepository 创建仓储
func NewActivityRepository(db *gorm.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// ListByHobby 获取爱好的活动时间线（最新在前）
func (r *ActivityRepository) ListByHobby(ctx context.Context, hobbyID string, limit int) ([]schema.ActivityLog, error) {
	var logs []schema.ActivityLog
	q := r.db.WithContext(ctx).
		Where("hobby_id = ?", hobbyID).
		Order("created_at DESC, id")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("查询活动记录失败: %w", err)
	}
	return logs, nil
}

// ListByUser 获取用户全部活动（最新在前）
func (r *ActivityRepository) ListByUser(ctx context.Context, userID string, limit int) ([]schema.ActivityLog, error) {
	var logs []schema.ActivityLog
	q := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("查询活动记录失败: %w", err)
	}
	return logs, nil
}

// ActivityStats 用户活动汇总
type ActivityStats struct {
	Count    int64
	TotalExp int64
}

// StatsByUser 统计用户活动条数与经验总和
func (r *ActivityRepository) StatsByUser(ctx context.Context, userID string) (ActivityStats, error) {
	var out ActivityStats
	err := r.db.WithContext(ctx).
		Model(&schema.ActivityLog{}).
		Where("user_id = ?", userID).
		Select("COUNT(*) AS count, COALESCE(SUM(exp_gained), 0) AS total_exp").
		Scan(&out).Error
	if err != nil {
		return ActivityStats{}, fmt.Errorf("统计活动失败: %w", err)
	}
	return out, nil
}
