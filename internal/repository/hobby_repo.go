package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/yuqie6/reme/internal/pkg/leveling"
	"github.com/yuqie6/reme/internal/schema"
	"gorm.io/gorm"
)

// HobbyRepository 爱好仓储（同时承载经验账本）
type HobbyRepository struct {
	db *gorm.DB
}

// NewHobbyRepository 创建仓储
func NewHobbyRepository(db *gorm.DB) *HobbyRepository {
	return &HobbyRepository{db: db}
}

// LedgerUpdate 一次账本更新的前后状态
type LedgerUpdate struct {
	Hobby     schema.Hobby
	PrevExp   int64
	PrevLevel int
}

// LeveledUp 本次更新是否升级
func (u LedgerUpdate) LeveledUp() bool {
	return u.Hobby.Level > u.PrevLevel
}

// Create 创建爱好，(user_id, name) 冲突返回 ErrDuplicate
func (r *HobbyRepository) Create(ctx context.Context, hobby *schema.Hobby) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&schema.Hobby{}).
			Where("user_id = ? AND name = ?", hobby.UserID, hobby.Name).
			Count(&n).Error; err != nil {
			return fmt.Errorf("查询爱好失败: %w", err)
		}
		if n > 0 {
			return ErrDuplicate
		}
		if err := tx.Create(hobby).Error; err != nil {
			if isUniqueViolation(err) {
				return ErrDuplicate
			}
			return fmt.Errorf("创建爱好失败: %w", err)
		}
		return nil
	})
}

// GetByID 根据 ID 获取爱好，不存在返回 nil
func (r *HobbyRepository) GetByID(ctx context.Context, id string) (*schema.Hobby, error) {
	var hobby schema.Hobby
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&hobby).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("查询爱好失败: %w", err)
	}
	return &hobby, nil
}

// ListByUser 获取用户全部爱好（等级优先）
func (r *HobbyRepository) ListByUser(ctx context.Context, userID string) ([]schema.Hobby, error) {
	var hobbies []schema.Hobby
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("level DESC, exp DESC, created_at ASC").
		Find(&hobbies).Error
	if err != nil {
		return nil, fmt.Errorf("查询爱好失败: %w", err)
	}
	return hobbies, nil
}

// ListUserIDs 列出拥有爱好的用户（定时任务使用）
func (r *HobbyRepository) ListUserIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&schema.Hobby{}).
		Distinct("user_id").
		Order("user_id").
		Pluck("user_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("查询用户失败: %w", err)
	}
	return ids, nil
}

// ApplyActivities 在单个事务内写入活动记录并原子累加经验、重算等级。
// delta 为本次提交的总经验；exp 使用 exp + ? 更新，避免读改写丢失并发提交。
func (r *HobbyRepository) ApplyActivities(ctx context.Context, hobbyID string, logs []schema.ActivityLog, delta int64) (*LedgerUpdate, error) {
	if delta < 0 {
		return nil, fmt.Errorf("经验增量不能为负: %d", delta)
	}

	var out LedgerUpdate
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 先写锁（UPDATE），再读，保证读到的是本事务内的最新值
		res := tx.Model(&schema.Hobby{}).
			Where("id = ?", hobbyID).
			UpdateColumn("exp", gorm.Expr("exp + ?", delta))
		if res.Error != nil {
			return fmt.Errorf("累加经验失败: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}

		if len(logs) > 0 {
			if err := tx.Create(&logs).Error; err != nil {
				return fmt.Errorf("写入活动记录失败: %w", err)
			}
		}

		var hobby schema.Hobby
		if err := tx.Where("id = ?", hobbyID).First(&hobby).Error; err != nil {
			return fmt.Errorf("读取爱好失败: %w", err)
		}

		prevExp := hobby.Exp - delta
		prevLevel, err := leveling.LevelFromExp(prevExp, hobby.Meta.LevelThresholds)
		if err != nil {
			return fmt.Errorf("计算等级失败: %w", err)
		}
		level, err := leveling.LevelFromExp(hobby.Exp, hobby.Meta.LevelThresholds)
		if err != nil {
			return fmt.Errorf("计算等级失败: %w", err)
		}
		if level != hobby.Level {
			if err := tx.Model(&schema.Hobby{}).
				Where("id = ?", hobbyID).
				UpdateColumn("level", level).Error; err != nil {
				return fmt.Errorf("更新等级失败: %w", err)
			}
			hobby.Level = level
		}

		out = LedgerUpdate{Hobby: hobby, PrevExp: prevExp, PrevLevel: prevLevel}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}
