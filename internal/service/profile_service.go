package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/yuqie6/reme/internal/schema"
)

var (
	mbtiPattern     = regexp.MustCompile(`^[EI][NS][TF][JP]$`)
	reminderPattern = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)
)

// ProfileService 用户资料
type ProfileService struct {
	profiles ProfileRepository
}

func NewProfileService(profiles ProfileRepository) *ProfileService {
	return &ProfileService{profiles: profiles}
}

// Get 获取资料；不存在返回 ErrNotFound
func (s *ProfileService) Get(ctx context.Context, userID string) (*schema.Profile, error) {
	p, err := s.profiles.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if p == nil {
		return nil, fmt.Errorf("%w: profile %s", ErrNotFound, userID)
	}
	return p, nil
}

// Upsert 创建或更新资料
func (s *ProfileService) Upsert(ctx context.Context, p *schema.Profile) (*schema.Profile, error) {
	if p == nil || strings.TrimSpace(p.ID) == "" {
		return nil, fmt.Errorf("%w: 缺少用户 ID", ErrValidation)
	}
	p.MBTI = strings.ToUpper(strings.TrimSpace(p.MBTI))
	if p.MBTI != "" && !mbtiPattern.MatchString(p.MBTI) {
		return nil, fmt.Errorf("%w: mbti 格式不正确: %s", ErrValidation, p.MBTI)
	}
	if p.ReminderTime != "" && !reminderPattern.MatchString(p.ReminderTime) {
		return nil, fmt.Errorf("%w: reminder_time 需要 HH:MM", ErrValidation)
	}
	if p.Age < 0 || p.Age > 150 {
		return nil, fmt.Errorf("%w: age 超出范围", ErrValidation)
	}
	if err := s.profiles.Upsert(ctx, p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return s.Get(ctx, p.ID)
}
