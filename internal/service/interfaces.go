package service

import (
	"context"

	"github.com/yuqie6/reme/internal/ai"
	"github.com/yuqie6/reme/internal/eventbus"
	"github.com/yuqie6/reme/internal/repository"
	"github.com/yuqie6/reme/internal/schema"
)

// 仓储/外部依赖的最小接口集合（ISP）

type HobbyRepository interface {
	Create(ctx context.Context, hobby *schema.Hobby) error
	GetByID(ctx context.Context, id string) (*schema.Hobby, error)
	ListByUser(ctx context.Context, userID string) ([]schema.Hobby, error)
	ListUserIDs(ctx context.Context) ([]string, error)
	ApplyActivities(ctx context.Context, hobbyID string, logs []schema.ActivityLog, delta int64) (*repository.LedgerUpdate, error)
}

type ActivityRepository interface {
	ListByHobby(ctx context.Context, hobbyID string, limit int) ([]schema.ActivityLog, error)
	ListByUser(ctx context.Context, userID string, limit int) ([]schema.ActivityLog, error)
	StatsByUser(ctx context.Context, userID string) (repository.ActivityStats, error)
}

type ReflectionRepository interface {
	Create(ctx context.Context, reflection *schema.Reflection) error
	ListRecent(ctx context.Context, userID string, limit int) ([]schema.Reflection, error)
	CountByUser(ctx context.Context, userID string) (int64, error)
}

type MomentRepository interface {
	Create(ctx context.Context, moment *schema.Moment) error
	ListRecent(ctx context.Context, userID string, limit int) ([]schema.Moment, error)
	CountByUser(ctx context.Context, userID string) (int64, error)
}

type ProfileRepository interface {
	Get(ctx context.Context, userID string) (*schema.Profile, error)
	Upsert(ctx context.Context, p *schema.Profile) error
	GetQuote(ctx context.Context, userID, date string) (*schema.DailyQuote, error)
	UpsertQuote(ctx context.Context, q *schema.DailyQuote) error
}

// ActivityAnalyzer 活动文本分析 + 拆分判断
type ActivityAnalyzer interface {
	AnalyzeActivity(ctx context.Context, hobbyName, text string) (*ai.ActivityInsight, error)
	CheckSplit(ctx context.Context, hobbyName, text string) (*ai.SplitCheck, error)
}

type HobbyDescriber interface {
	DescribeHobby(ctx context.Context, name string) (*ai.HobbyProfile, error)
}

type MoodAnalyzer interface {
	AnalyzeReflection(ctx context.Context, text string) (*ai.ReflectionInsight, error)
	AnalyzeMoment(ctx context.Context, text string) (*ai.MomentInsight, error)
}

type Advisor interface {
	Recommend(ctx context.Context, memories []string, question string) (*ai.Recommendation, error)
	GenerateQuote(ctx context.Context, req *ai.QuoteRequest) (*ai.Quote, error)
}

// JourneyAdvisor 旅程总结、爱好推荐与陪伴对话
type JourneyAdvisor interface {
	SummarizeJourney(ctx context.Context, uc *ai.UserContext) (string, error)
	SuggestHobbies(ctx context.Context, uc *ai.UserContext) ([]ai.HobbySuggestion, error)
	Companion(ctx context.Context, uc *ai.UserContext, history []ai.ChatTurn, message string) (string, error)
}

type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	IsConfigured() bool
}

// MemoryIndexer 写入长期记忆（失败不影响主流程）
type MemoryIndexer interface {
	Index(ctx context.Context, doc MemoryDoc) error
}

type MemorySearcher interface {
	Query(ctx context.Context, userID, query string, topK int) ([]MemoryResult, error)
}

type EventPublisher interface {
	Publish(evt eventbus.Event)
}
