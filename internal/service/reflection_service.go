package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/yuqie6/reme/internal/eventbus"
	"github.com/yuqie6/reme/internal/schema"
)

// ReflectionService 反思与开心时刻
type ReflectionService struct {
	reflections ReflectionRepository
	moments     MomentRepository
	analyzer    MoodAnalyzer
	memory      MemoryIndexer
	events      EventPublisher
}

// NewReflectionService 创建服务；memory/events 可为 nil
func NewReflectionService(
	reflections ReflectionRepository,
	moments MomentRepository,
	analyzer MoodAnalyzer,
	memory MemoryIndexer,
	events EventPublisher,
) *ReflectionService {
	return &ReflectionService{
		reflections: reflections,
		moments:     moments,
		analyzer:    analyzer,
		memory:      memory,
		events:      events,
	}
}

// Analyze 分析并保存一条反思
func (s *ReflectionService) Analyze(ctx context.Context, userID, text string) (*schema.Reflection, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" || strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: 缺少 user_id 或反思内容", ErrValidation)
	}

	insight, err := s.analyzer.AnalyzeReflection(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamAnalysis, err)
	}

	r := &schema.Reflection{
		ID:             uuid.NewString(),
		UserID:         userID,
		Text:           text,
		AISummary:      insight.AISummary,
		Emotion:        strings.TrimSpace(insight.Emotion),
		SentimentScore: clampSentiment(insight.SentimentScore),
	}
	if err := s.reflections.Create(ctx, r); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	s.index(ctx, MemoryDoc{
		ID:      "reflection_" + r.ID,
		UserID:  userID,
		Kind:    MemoryKindReflection,
		Content: fmt.Sprintf("Reflection (%s): %s", r.Emotion, r.Text),
	})
	s.publish(eventbus.TypeReflection, userID, map[string]any{"id": r.ID, "emotion": r.Emotion})
	return r, nil
}

// CreateMomentRequest 开心时刻
type CreateMomentRequest struct {
	UserID        string
	Text          string
	ImagePath     string
	ManualEmotion *float64 // 用户手动打分（-1~1），非空时跳过 AI
}

// CreateMoment 保存一条开心时刻
func (s *ReflectionService) CreateMoment(ctx context.Context, req CreateMomentRequest) (*schema.Moment, error) {
	req.UserID = strings.TrimSpace(req.UserID)
	if req.UserID == "" {
		return nil, fmt.Errorf("%w: 缺少 user_id", ErrValidation)
	}
	if strings.TrimSpace(req.Text) == "" && req.ImagePath == "" {
		return nil, fmt.Errorf("%w: 内容与图片不能同时为空", ErrValidation)
	}

	m := &schema.Moment{
		ID:        uuid.NewString(),
		UserID:    req.UserID,
		Text:      req.Text,
		ImagePath: req.ImagePath,
	}
	switch {
	case req.ManualEmotion != nil:
		m.SentimentScore = clampSentiment(*req.ManualEmotion)
		m.Emotion = emotionLabel(m.SentimentScore)
	case strings.TrimSpace(req.Text) != "":
		insight, err := s.analyzer.AnalyzeMoment(ctx, req.Text)
		if err != nil {
			// 时刻本身比情绪标签重要，分析失败按中性保存
			slog.Warn("时刻情绪分析失败", "error", err)
			m.Emotion = emotionLabel(0)
		} else {
			m.Emotion = strings.TrimSpace(insight.Emotion)
			m.SentimentScore = clampSentiment(insight.SentimentScore)
		}
	default:
		m.Emotion = emotionLabel(0)
	}

	if err := s.moments.Create(ctx, m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	if strings.TrimSpace(m.Text) != "" {
		s.index(ctx, MemoryDoc{
			ID:      "moment_" + m.ID,
			UserID:  m.UserID,
			Kind:    MemoryKindMoment,
			Content: fmt.Sprintf("Happy moment (%s): %s", m.Emotion, m.Text),
		})
	}
	s.publish(eventbus.TypeMoment, m.UserID, map[string]any{"id": m.ID, "emotion": m.Emotion})
	return m, nil
}

func (s *ReflectionService) index(ctx context.Context, doc MemoryDoc) {
	if s.memory == nil {
		return
	}
	if err := s.memory.Index(ctx, doc); err != nil {
		slog.Warn("记忆索引失败", "id", doc.ID, "error", err)
	}
}

func (s *ReflectionService) publish(typ, userID string, data map[string]any) {
	if s.events == nil {
		return
	}
	s.events.Publish(eventbus.Event{Type: typ, UserID: userID, Data: data})
}

func clampSentiment(v float64) float64 {
	if v < -1 {
		return -1
	}
	if v > 1 {
		return 1
	}
	return v
}

// emotionLabel 手动打分映射为情绪标签
func emotionLabel(score float64) string {
	switch {
	case score < -0.6:
		return "very sad"
	case score < -0.2:
		return "sad"
	case score < 0.2:
		return "neutral"
	case score < 0.6:
		return "happy"
	default:
		return "very happy"
	}
}
