package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"

	"golang.org/x/sync/errgroup"

	"github.com/yuqie6/reme/internal/ai"
	"github.com/yuqie6/reme/internal/repository"
	"github.com/yuqie6/reme/internal/schema"
)

const (
	summaryActivityLimit   = 10
	summaryMomentLimit     = 5
	summaryReflectionLimit = 5

	companionHobbyLimit      = 5
	companionActivityLimit   = 5
	companionMomentLimit     = 3
	companionReflectionLimit = 3
	companionHistoryLimit    = 20
	companionMessageMaxRunes = 4000

	hobbySuggestionLimit = 5
	dateLayout           = "2006-01-02"
)

var suggestionDifficulties = map[string]string{
	"easy":   "Easy",
	"medium": "Medium",
	"hard":   "Hard",
}

// JourneyService 成长旅程总结、新爱好推荐与陪伴对话
type JourneyService struct {
	profiles    ProfileRepository
	hobbies     HobbyRepository
	activities  ActivityRepository
	reflections ReflectionRepository
	moments     MomentRepository
	advisor     JourneyAdvisor
}

func NewJourneyService(
	profiles ProfileRepository,
	hobbies HobbyRepository,
	activities ActivityRepository,
	reflections ReflectionRepository,
	moments MomentRepository,
	advisor JourneyAdvisor,
) *JourneyService {
	return &JourneyService{
		profiles:    profiles,
		hobbies:     hobbies,
		activities:  activities,
		reflections: reflections,
		moments:     moments,
		advisor:     advisor,
	}
}

// JourneyStats 旅程统计
type JourneyStats struct {
	TotalHobbies     int     `json:"total_hobbies"`
	TotalActivities  int64   `json:"total_activities"`
	TotalMoments     int64   `json:"total_moments"`
	TotalReflections int64   `json:"total_reflections"`
	TotalLevel       int     `json:"total_level"`
	TotalExp         int64   `json:"total_exp"`
	AvgSentiment     float64 `json:"avg_sentiment"` // 最近开心时刻的平均情绪
}

// JourneySummary 旅程总结
type JourneySummary struct {
	Summary string       `json:"summary"`
	Stats   JourneyStats `json:"stats"`
}

// CompanionRequest 陪伴对话请求；历史由客户端保存
type CompanionRequest struct {
	UserID  string
	Message string
	History []ai.ChatTurn
}

// userSnapshot 一次性读出的用户数据
type userSnapshot struct {
	profile     *schema.Profile
	hobbies     []schema.Hobby
	activities  []schema.ActivityLog // 最新在前
	moments     []schema.Moment
	reflections []schema.Reflection
	actStats    repository.ActivityStats
	momentN     int64
	reflectionN int64
}

// load 并发读取画像所需数据
func (s *JourneyService) load(ctx context.Context, userID string, momentLimit, reflectionLimit int) (*userSnapshot, error) {
	snap := &userSnapshot{}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		snap.profile, err = s.profiles.Get(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		snap.hobbies, err = s.hobbies.ListByUser(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		snap.activities, err = s.activities.ListByUser(gctx, userID, characteristicsActivityLimit)
		return err
	})
	g.Go(func() (err error) {
		snap.actStats, err = s.activities.StatsByUser(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		snap.moments, err = s.moments.ListRecent(gctx, userID, momentLimit)
		return err
	})
	g.Go(func() (err error) {
		snap.momentN, err = s.moments.CountByUser(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		snap.reflections, err = s.reflections.ListRecent(gctx, userID, reflectionLimit)
		return err
	})
	g.Go(func() (err error) {
		snap.reflectionN, err = s.reflections.CountByUser(gctx, userID)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return snap, nil
}

func (snap *userSnapshot) stats() JourneyStats {
	st := JourneyStats{
		TotalHobbies:     len(snap.hobbies),
		TotalActivities:  snap.actStats.Count,
		TotalMoments:     snap.momentN,
		TotalReflections: snap.reflectionN,
		TotalExp:         snap.actStats.TotalExp,
	}
	for _, h := range snap.hobbies {
		st.TotalLevel += h.Level
	}
	if len(snap.moments) > 0 {
		var sum float64
		for _, m := range snap.moments {
			sum += m.SentimentScore
		}
		st.AvgSentiment = sum / float64(len(snap.moments))
	}
	return st
}

// userContext 组装提示词上下文；limit <= 0 表示不截断
func (snap *userSnapshot) userContext(hobbyLimit, activityLimit int) *ai.UserContext {
	st := snap.stats()
	uc := &ai.UserContext{
		HobbyCount:      st.TotalHobbies,
		ActivityCount:   int(st.TotalActivities),
		MomentCount:     int(st.TotalMoments),
		ReflectionCount: int(st.TotalReflections),
		TotalLevel:      st.TotalLevel,
		AvgSentiment:    st.AvgSentiment,
	}
	if snap.profile != nil {
		uc.DisplayName = snap.profile.DisplayName
	}

	for i, h := range snap.hobbies {
		if hobbyLimit > 0 && i >= hobbyLimit {
			break
		}
		uc.Hobbies = append(uc.Hobbies, ai.HobbyLine{Name: h.Name, Category: h.Category, Level: h.Level, Description: h.Description})
	}
	for i, a := range snap.activities {
		if activityLimit > 0 && i >= activityLimit {
			break
		}
		uc.Activities = append(uc.Activities, ai.DatedText{Text: truncateRunes(a.Text, 300), Date: dateOf(a.CreatedAt)})
	}
	for _, m := range snap.moments {
		uc.Moments = append(uc.Moments, ai.DatedText{Text: truncateRunes(m.Text, 300), Date: dateOf(m.CreatedAt)})
	}
	for _, r := range snap.reflections {
		uc.Reflections = append(uc.Reflections, ai.DatedText{Text: truncateRunes(r.Text, 300), Date: dateOf(r.CreatedAt)})
	}

	c := AnalyzeCharacteristics(snap.hobbies, snap.activities)
	for _, t := range c.PersonalityTraits {
		uc.Traits = append(uc.Traits, ai.TraitLine{Trait: t.Trait, Value: t.Value, Description: t.Description})
	}
	uc.DominantTraits = c.DominantTraits
	for _, p := range c.ActivityPreferences {
		uc.ActivityFocus = append(uc.ActivityFocus, ai.FocusLine{Name: p.Name, Value: p.Value})
	}
	return uc
}

func dateOf(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}

// Summary 生成旅程总结与统计
func (s *JourneyService) Summary(ctx context.Context, userID string) (*JourneySummary, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("%w: 缺少 user_id", ErrValidation)
	}
	snap, err := s.load(ctx, userID, summaryMomentLimit, summaryReflectionLimit)
	if err != nil {
		return nil, err
	}

	text, err := s.advisor.SummarizeJourney(ctx, snap.userContext(0, summaryActivityLimit))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamAnalysis, err)
	}
	return &JourneySummary{Summary: text, Stats: snap.stats()}, nil
}

// SuggestHobbies 推荐至多 5 个用户尚未拥有的新爱好
func (s *JourneyService) SuggestHobbies(ctx context.Context, userID string) ([]ai.HobbySuggestion, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("%w: 缺少 user_id", ErrValidation)
	}
	snap, err := s.load(ctx, userID, summaryMomentLimit, summaryReflectionLimit)
	if err != nil {
		return nil, err
	}

	raw, err := s.advisor.SuggestHobbies(ctx, snap.userContext(0, summaryActivityLimit))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamAnalysis, err)
	}

	seen := make(map[string]struct{}, len(snap.hobbies)+len(raw))
	for _, h := range snap.hobbies {
		seen[hobbyKey(h.Name)] = struct{}{}
	}
	out := make([]ai.HobbySuggestion, 0, hobbySuggestionLimit)
	for _, sg := range raw {
		sg.Name = strings.TrimSpace(sg.Name)
		k := hobbyKey(sg.Name)
		if k == "" {
			continue
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}

		sg.Category = normalizeCategory(sg.Category)
		sg.Difficulty = normalizeDifficulty(sg.Difficulty)
		sg.Reason = strings.TrimSpace(sg.Reason)
		sg.Benefits = normalizeSkills(sg.Benefits)
		out = append(out, sg)
		if len(out) == hobbySuggestionLimit {
			break
		}
	}
	return out, nil
}

// hobbyKey 忽略大小写与 emoji 前缀比较爱好名
func hobbyKey(name string) string {
	name = strings.TrimLeftFunc(name, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	return strings.ToLower(strings.TrimSpace(name))
}

func normalizeDifficulty(d string) string {
	if v, ok := suggestionDifficulties[strings.ToLower(strings.TrimSpace(d))]; ok {
		return v
	}
	return "Medium"
}

// Chat 陪伴对话；上下文在服务端按 user_id 组装
func (s *JourneyService) Chat(ctx context.Context, req CompanionRequest) (string, error) {
	req.UserID = strings.TrimSpace(req.UserID)
	req.Message = strings.TrimSpace(req.Message)
	if req.UserID == "" || req.Message == "" {
		return "", fmt.Errorf("%w: 缺少 user_id 或 message", ErrValidation)
	}
	if runeLen(req.Message) > companionMessageMaxRunes {
		return "", fmt.Errorf("%w: message 过长（上限 %d 字）", ErrValidation, companionMessageMaxRunes)
	}

	history := make([]ai.ChatTurn, 0, len(req.History))
	for _, turn := range req.History {
		if turn.Role != "user" && turn.Role != "assistant" {
			return "", fmt.Errorf("%w: 对话历史角色只能是 user 或 assistant", ErrValidation)
		}
		if strings.TrimSpace(turn.Content) == "" {
			continue
		}
		history = append(history, turn)
	}
	// 只保留最近若干轮
	if len(history) > companionHistoryLimit {
		history = history[len(history)-companionHistoryLimit:]
	}

	snap, err := s.load(ctx, req.UserID, companionMomentLimit, companionReflectionLimit)
	if err != nil {
		return "", err
	}
	reply, err := s.advisor.Companion(ctx, snap.userContext(companionHobbyLimit, companionActivityLimit), history, req.Message)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstreamAnalysis, err)
	}
	return reply, nil
}
