package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/yuqie6/reme/internal/ai"
	"github.com/yuqie6/reme/internal/schema"
)

const (
	fallbackQuote     = "Keep going!"
	quoteContextLimit = 5
	quoteMemoryLimit  = 10
	quoteDateLayout   = "2006-01-02"
)

// QuoteService 每日语录，按 (用户, 日期) 缓存
type QuoteService struct {
	profiles    ProfileRepository
	hobbies     HobbyRepository
	activities  ActivityRepository
	reflections ReflectionRepository
	advisor     Advisor
	now         func() time.Time
}

func NewQuoteService(
	profiles ProfileRepository,
	hobbies HobbyRepository,
	activities ActivityRepository,
	reflections ReflectionRepository,
	advisor Advisor,
) *QuoteService {
	return &QuoteService{
		profiles:    profiles,
		hobbies:     hobbies,
		activities:  activities,
		reflections: reflections,
		advisor:     advisor,
		now:         time.Now,
	}
}

// Daily 获取今日语录；refresh 为 true 时强制重新生成
func (s *QuoteService) Daily(ctx context.Context, userID string, refresh bool) (*schema.DailyQuote, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("%w: 缺少 user_id", ErrValidation)
	}
	date := s.now().Format(quoteDateLayout)

	if !refresh {
		cached, err := s.profiles.GetQuote(ctx, userID, date)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
		}
		if cached != nil {
			return cached, nil
		}
	}

	req, err := s.buildRequest(ctx, userID)
	if err != nil {
		return nil, err
	}

	q := &schema.DailyQuote{UserID: userID, Date: date}
	quote, err := s.advisor.GenerateQuote(ctx, req)
	switch {
	case err == nil && quote != nil && strings.TrimSpace(quote.Text) != "":
		q.Text = strings.TrimSpace(quote.Text)
		q.Attribution = strings.TrimSpace(quote.Attribution)
	case err == nil || errors.Is(err, ai.ErrInvalidResponse):
		slog.Warn("语录解析失败，使用默认语录", "user", userID, "error", err)
		q.Text = fallbackQuote
	default:
		return nil, fmt.Errorf("%w: %v", ErrUpstreamAnalysis, err)
	}

	if err := s.profiles.UpsertQuote(ctx, q); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return q, nil
}

// buildRequest 汇总画像、爱好、近期情绪与活动
func (s *QuoteService) buildRequest(ctx context.Context, userID string) (*ai.QuoteRequest, error) {
	req := &ai.QuoteRequest{}

	profile, err := s.profiles.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if profile != nil {
		req.DisplayName = profile.DisplayName
		req.MBTI = profile.MBTI
	}

	hobbies, err := s.hobbies.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	for _, h := range hobbies {
		req.Hobbies = append(req.Hobbies, fmt.Sprintf("%s (%s, Lv %d)", h.Name, h.Category, h.Level))
	}

	reflections, err := s.reflections.ListRecent(ctx, userID, quoteContextLimit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if len(reflections) > 0 {
		var sum float64
		for _, r := range reflections {
			if r.Emotion != "" {
				req.RecentEmotions = append(req.RecentEmotions, r.Emotion)
			}
			sum += r.SentimentScore
		}
		req.AvgSentiment = sum / float64(len(reflections))
	}

	logs, err := s.activities.ListByUser(ctx, userID, quoteMemoryLimit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	for _, l := range logs {
		if l.AISummary != "" {
			req.RecentMemories = append(req.RecentMemories, truncateRunes(l.AISummary, 120))
		}
	}
	return req, nil
}

// WarmAll 为所有有爱好的用户预生成今日语录，返回成功数
func (s *QuoteService) WarmAll(ctx context.Context) (int, error) {
	users, err := s.hobbies.ListUserIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	ok := 0
	for _, u := range users {
		if ctx.Err() != nil {
			return ok, ctx.Err()
		}
		if _, err := s.Daily(ctx, u, false); err != nil {
			slog.Warn("预生成语录失败", "user", u, "error", err)
			continue
		}
		ok++
	}
	return ok, nil
}
