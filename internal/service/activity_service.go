package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/yuqie6/reme/internal/ai"
	"github.com/yuqie6/reme/internal/eventbus"
	"github.com/yuqie6/reme/internal/repository"
	"github.com/yuqie6/reme/internal/schema"
)

const (
	defaultSplitConfidence = 0.75
	defaultFragmentWorkers = 3
)

// ActivityServiceConfig 流水线参数
type ActivityServiceConfig struct {
	SplitConfidence float64 // 拆分建议的置信度下限（严格大于）
	DepthBonusChars int
	FragmentWorkers int
	Policy          ExpPolicy // 为空时使用 DefaultExpPolicy
}

// ActivityService 活动经验流水线：拆分判断 → 片段打分 → 账本原子更新
type ActivityService struct {
	hobbies  HobbyRepository
	analyzer ActivityAnalyzer
	memory   MemoryIndexer
	events   EventPublisher

	policy          ExpPolicy
	splitConfidence float64
	workers         int
}

// NewActivityService 创建活动服务；memory/events 可为 nil
func NewActivityService(
	hobbies HobbyRepository,
	analyzer ActivityAnalyzer,
	memory MemoryIndexer,
	events EventPublisher,
	cfg *ActivityServiceConfig,
) *ActivityService {
	if cfg == nil {
		cfg = &ActivityServiceConfig{}
	}
	s := &ActivityService{
		hobbies:         hobbies,
		analyzer:        analyzer,
		memory:          memory,
		events:          events,
		policy:          DefaultExpPolicy{DepthBonusChars: cfg.DepthBonusChars},
		splitConfidence: cfg.SplitConfidence,
		workers:         cfg.FragmentWorkers,
	}
	if s.splitConfidence <= 0 {
		s.splitConfidence = defaultSplitConfidence
	}
	if s.workers <= 0 {
		s.workers = defaultFragmentWorkers
	}
	if cfg.Policy != nil {
		s.policy = cfg.Policy
	}
	return s
}

// SubmitActivityRequest 一次活动提交
type SubmitActivityRequest struct {
	HobbyID    string
	UserID     string
	Text       string
	ImagePath  string
	SplitTexts []string // 用户确认后的拆分片段
	KeepWhole  bool     // 用户拒绝拆分
}

// ScoredActivity 已打分并写入的活动
type ScoredActivity struct {
	ID            string   `json:"id"`
	Text          string   `json:"text"`
	Summary       string   `json:"summary"`
	Skills        []string `json:"skills"`
	ExpGained     int64    `json:"exp_gained"`
	SuggestedNext []string `json:"suggested_next,omitempty"`
}

// SplitProposal 拆分建议，等待用户确认，不落库
type SplitProposal struct {
	ShouldSplit bool     `json:"should_split"`
	Activities  []string `json:"activities"`
	Confidence  float64  `json:"confidence"`
}

// SubmitActivityResult 提交结果；Proposal 非空时其余字段为零值
type SubmitActivityResult struct {
	Proposal *SplitProposal

	Split          bool
	Activities     []ScoredActivity
	TotalExpGained int64
	PrevLevel      int
	NewLevel       int
	TotalExp       int64
}

// LeveledUp 本次提交是否升级
func (r *SubmitActivityResult) LeveledUp() bool {
	return r != nil && r.Proposal == nil && r.NewLevel > r.PrevLevel
}

// Submit 处理一次活动提交
func (s *ActivityService) Submit(ctx context.Context, req SubmitActivityRequest) (*SubmitActivityResult, error) {
	req.HobbyID = strings.TrimSpace(req.HobbyID)
	req.UserID = strings.TrimSpace(req.UserID)
	if req.HobbyID == "" || req.UserID == "" {
		return nil, fmt.Errorf("%w: 缺少 hobby_id 或 user_id", ErrValidation)
	}
	if strings.TrimSpace(req.Text) == "" {
		return nil, fmt.Errorf("%w: 活动内容为空", ErrValidation)
	}

	hobby, err := s.loadHobby(ctx, req.HobbyID, req.UserID)
	if err != nil {
		return nil, err
	}

	fragments := compactFragments(req.SplitTexts)
	if len(fragments) == 0 {
		fragments = []string{req.Text}
		if !req.KeepWhole {
			if proposal := s.checkSplit(ctx, hobby.Name, req.Text); proposal != nil {
				return &SubmitActivityResult{Proposal: proposal}, nil
			}
		}
	}

	scored, err := s.scoreFragments(ctx, hobby.Name, fragments, s.policy)
	if err != nil {
		return nil, err
	}

	logs, delta := buildLogs(req.UserID, hobby.ID, req.ImagePath, schema.ActivitySourceLog, fragments, scored)
	upd, err := s.hobbies.ApplyActivities(ctx, hobby.ID, logs, delta)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: hobby %s", ErrNotFound, hobby.ID)
		}
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	s.afterCommit(ctx, &upd.Hobby, scored, upd)

	slog.Info("活动已记录",
		"hobby", hobby.ID,
		"fragments", len(scored),
		"exp_gained", delta,
		"level", upd.Hobby.Level,
		"total_exp", upd.Hobby.Exp,
	)

	return &SubmitActivityResult{
		Split:          len(scored) > 1,
		Activities:     scored,
		TotalExpGained: delta,
		PrevLevel:      upd.PrevLevel,
		NewLevel:       upd.Hobby.Level,
		TotalExp:       upd.Hobby.Exp,
	}, nil
}

// BackfillPastExperience 创建爱好时回填过往经历：照常分析与记录，但经验恒为 0
func (s *ActivityService) BackfillPastExperience(ctx context.Context, hobby *schema.Hobby, text string) ([]ScoredActivity, error) {
	if hobby == nil {
		return nil, fmt.Errorf("%w: hobby 为空", ErrValidation)
	}
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	fragments := []string{text}
	if proposal := s.checkSplit(ctx, hobby.Name, text); proposal != nil {
		fragments = proposal.Activities
	}

	scored, err := s.scoreFragments(ctx, hobby.Name, fragments, BackfillExpPolicy{})
	if err != nil {
		return nil, err
	}

	logs, _ := buildLogs(hobby.UserID, hobby.ID, "", schema.ActivitySourceBackfill, fragments, scored)
	upd, err := s.hobbies.ApplyActivities(ctx, hobby.ID, logs, 0)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: hobby %s", ErrNotFound, hobby.ID)
		}
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	for _, a := range scored {
		s.index(ctx, &upd.Hobby, a)
	}
	slog.Info("过往经历已回填", "hobby", hobby.ID, "fragments", len(scored))
	return scored, nil
}

func (s *ActivityService) loadHobby(ctx context.Context, hobbyID, userID string) (*schema.Hobby, error) {
	hobby, err := s.hobbies.GetByID(ctx, hobbyID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	// 他人的爱好按不存在处理
	if hobby == nil || hobby.UserID != userID {
		return nil, fmt.Errorf("%w: hobby %s", ErrNotFound, hobbyID)
	}
	return hobby, nil
}

// checkSplit 返回满足条件的拆分建议；判断失败时降级为整体记录
func (s *ActivityService) checkSplit(ctx context.Context, hobbyName, text string) *SplitProposal {
	res, err := s.analyzer.CheckSplit(ctx, hobbyName, text)
	if err != nil {
		slog.Warn("拆分判断失败，按单条活动处理", "hobby", hobbyName, "error", err)
		return nil
	}
	if res == nil || !res.ShouldSplit || res.Confidence <= s.splitConfidence {
		return nil
	}
	activities := compactFragments(res.Activities)
	if len(activities) <= 1 {
		return nil
	}
	return &SplitProposal{ShouldSplit: true, Activities: activities, Confidence: res.Confidence}
}

// scoreFragments 并发分析片段，结果顺序与输入一致；任一失败整体失败
func (s *ActivityService) scoreFragments(ctx context.Context, hobbyName string, fragments []string, policy ExpPolicy) ([]ScoredActivity, error) {
	insights := make([]*ai.ActivityInsight, len(fragments))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, text := range fragments {
		g.Go(func() error {
			insight, err := s.analyzer.AnalyzeActivity(gctx, hobbyName, text)
			if err != nil {
				return fmt.Errorf("片段 %d: %w", i+1, err)
			}
			if insight == nil {
				return fmt.Errorf("片段 %d: 分析结果为空", i+1)
			}
			insights[i] = insight
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamAnalysis, err)
	}

	out := make([]ScoredActivity, len(fragments))
	for i, text := range fragments {
		in := insights[i]
		out[i] = ScoredActivity{
			ID:            uuid.NewString(),
			Text:          text,
			Summary:       in.Summary,
			Skills:        normalizeSkills(in.Skills),
			ExpGained:     policy.CalcActivityExp(text, in.Skills),
			SuggestedNext: in.SuggestedNext,
		}
	}
	return out, nil
}

func buildLogs(userID, hobbyID, imagePath, source string, fragments []string, scored []ScoredActivity) ([]schema.ActivityLog, int64) {
	logs := make([]schema.ActivityLog, len(scored))
	var delta int64
	for i, a := range scored {
		logs[i] = schema.ActivityLog{
			ID:        a.ID,
			UserID:    userID,
			HobbyID:   hobbyID,
			Text:      fragments[i],
			AISummary: a.Summary,
			AISkills:  schema.JSONArray(a.Skills),
			ExpGained: a.ExpGained,
			Source:    source,
		}
		// 图片只挂在第一条
		if i == 0 {
			logs[i].ImagePath = imagePath
		}
		delta += a.ExpGained
	}
	return logs, delta
}

func (s *ActivityService) afterCommit(ctx context.Context, hobby *schema.Hobby, scored []ScoredActivity, upd *repository.LedgerUpdate) {
	for _, a := range scored {
		s.index(ctx, hobby, a)
	}

	if s.events == nil {
		return
	}
	s.events.Publish(eventbus.Event{
		Type:   eventbus.TypeActivityLogged,
		UserID: hobby.UserID,
		Data: map[string]any{
			"hobby_id":   hobby.ID,
			"activities": len(scored),
			"exp_gained": upd.Hobby.Exp - upd.PrevExp,
			"total_exp":  upd.Hobby.Exp,
		},
	})
	if upd.LeveledUp() {
		s.events.Publish(eventbus.Event{
			Type:   eventbus.TypeHobbyLevelUp,
			UserID: hobby.UserID,
			Data: map[string]any{
				"hobby_id":   hobby.ID,
				"hobby_name": hobby.Name,
				"from":       upd.PrevLevel,
				"to":         upd.Hobby.Level,
			},
		})
	}
}

func (s *ActivityService) index(ctx context.Context, hobby *schema.Hobby, a ScoredActivity) {
	if s.memory == nil || a.Summary == "" {
		return
	}
	doc := MemoryDoc{
		ID:      "activity_" + a.ID,
		UserID:  hobby.UserID,
		Kind:    MemoryKindActivity,
		Content: fmt.Sprintf("%s: %s", hobby.Name, a.Summary),
	}
	if err := s.memory.Index(ctx, doc); err != nil {
		slog.Warn("活动记忆索引失败", "activity", a.ID, "error", err)
	}
}
