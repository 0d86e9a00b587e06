package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/yuqie6/reme/internal/eventbus"
	"github.com/yuqie6/reme/internal/pkg/leveling"
	"github.com/yuqie6/reme/internal/repository"
	"github.com/yuqie6/reme/internal/schema"
)

const defaultTimelineLimit = 50

var hobbyCategories = map[string]string{
	"creative":     "Creative",
	"physical":     "Physical",
	"intellectual": "Intellectual",
	"social":       "Social",
}

// HobbyService 爱好管理
type HobbyService struct {
	hobbies    HobbyRepository
	activities ActivityRepository
	describer  HobbyDescriber
	pipeline   *ActivityService
	events     EventPublisher
}

// NewHobbyService 创建爱好服务；pipeline 为 nil 时不做过往经历回填
func NewHobbyService(
	hobbies HobbyRepository,
	activities ActivityRepository,
	describer HobbyDescriber,
	pipeline *ActivityService,
	events EventPublisher,
) *HobbyService {
	return &HobbyService{
		hobbies:    hobbies,
		activities: activities,
		describer:  describer,
		pipeline:   pipeline,
		events:     events,
	}
}

// CreateHobbyRequest 创建爱好请求
type CreateHobbyRequest struct {
	UserID         string
	Name           string
	PastExperience string
	InitialLevel   int // 已有水平；经验取该等级阈值
}

// CreateHobbyResult 创建结果
type CreateHobbyResult struct {
	Hobby      HobbyDetail
	Backfilled []ScoredActivity
}

// HobbyDetail 爱好 + 进度条
type HobbyDetail struct {
	schema.Hobby
	Progress leveling.Progress `json:"progress"`
}

// Create 创建爱好
func (s *HobbyService) Create(ctx context.Context, req CreateHobbyRequest) (*CreateHobbyResult, error) {
	req.UserID = strings.TrimSpace(req.UserID)
	req.Name = strings.TrimSpace(req.Name)
	if req.UserID == "" || req.Name == "" {
		return nil, fmt.Errorf("%w: 缺少 user_id 或爱好名称", ErrValidation)
	}
	if req.InitialLevel < 0 || req.InitialLevel > leveling.MaxLevel {
		return nil, fmt.Errorf("%w: initial_level 需在 0-%d 之间", ErrValidation, leveling.MaxLevel)
	}

	profile, err := s.describer.DescribeHobby(ctx, req.Name)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamAnalysis, err)
	}

	thresholds, err := leveling.GenerateThresholds(leveling.DefaultTableSize)
	if err != nil {
		return nil, err
	}
	initialExp, err := leveling.ThresholdForLevel(req.InitialLevel)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	// 等级始终由经验推导
	initialLevel, err := leveling.LevelFromExp(initialExp, thresholds)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	name := strings.TrimSpace(profile.FormattedName)
	if name == "" {
		name = req.Name
	}

	hobby := &schema.Hobby{
		ID:          uuid.NewString(),
		UserID:      req.UserID,
		Name:        name,
		Category:    normalizeCategory(profile.Category),
		Description: profile.Description,
		Level:       initialLevel,
		Exp:         initialExp,
		Meta: schema.HobbyMeta{
			Subskills:       normalizeSkills(profile.Subskills),
			LevelThresholds: thresholds,
		},
	}
	if err := s.hobbies.Create(ctx, hobby); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, fmt.Errorf("%w: %s", ErrConflict, name)
		}
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	slog.Info("爱好已创建", "hobby", hobby.ID, "name", hobby.Name, "level", hobby.Level)

	if s.events != nil {
		s.events.Publish(eventbus.Event{
			Type:   eventbus.TypeHobbyCreated,
			UserID: hobby.UserID,
			Data:   map[string]any{"hobby_id": hobby.ID, "name": hobby.Name},
		})
	}

	out := &CreateHobbyResult{}
	if s.pipeline != nil && strings.TrimSpace(req.PastExperience) != "" {
		// 回填失败不影响爱好本身
		backfilled, err := s.pipeline.BackfillPastExperience(ctx, hobby, req.PastExperience)
		if err != nil {
			slog.Warn("过往经历回填失败", "hobby", hobby.ID, "error", err)
		}
		out.Backfilled = backfilled
	}

	detail, err := toDetail(*hobby)
	if err != nil {
		return nil, err
	}
	out.Hobby = detail
	return out, nil
}

// Get 获取单个爱好；只能读取自己的爱好
func (s *HobbyService) Get(ctx context.Context, userID, hobbyID string) (*HobbyDetail, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" || strings.TrimSpace(hobbyID) == "" {
		return nil, fmt.Errorf("%w: 缺少 user_id 或 hobby_id", ErrValidation)
	}
	hobby, err := s.hobbies.GetByID(ctx, hobbyID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if hobby == nil || hobby.UserID != userID {
		return nil, fmt.Errorf("%w: hobby %s", ErrNotFound, hobbyID)
	}
	detail, err := toDetail(*hobby)
	if err != nil {
		return nil, err
	}
	return &detail, nil
}

// List 列出用户的爱好
func (s *HobbyService) List(ctx context.Context, userID string) ([]HobbyDetail, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("%w: 缺少 user_id", ErrValidation)
	}
	hobbies, err := s.hobbies.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	out := make([]HobbyDetail, 0, len(hobbies))
	for _, h := range hobbies {
		d, err := toDetail(h)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

// Timeline 爱好的活动时间线（新到旧）
func (s *HobbyService) Timeline(ctx context.Context, userID, hobbyID string, limit int) ([]schema.ActivityLog, error) {
	if _, err := s.Get(ctx, userID, hobbyID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultTimelineLimit
	}
	logs, err := s.activities.ListByHobby(ctx, hobbyID, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return logs, nil
}

func toDetail(h schema.Hobby) (HobbyDetail, error) {
	p, err := leveling.ProgressOf(h.Exp, h.Meta.LevelThresholds)
	if err != nil {
		return HobbyDetail{}, fmt.Errorf("计算进度失败: %w", err)
	}
	return HobbyDetail{Hobby: h, Progress: p}, nil
}

func normalizeCategory(c string) string {
	if v, ok := hobbyCategories[strings.ToLower(strings.TrimSpace(c))]; ok {
		return v
	}
	return "Other"
}
