package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

const defaultRecommendPrompt = "What should I focus on next in my growth journey?"

// RecommendService 基于长期记忆的成长建议
type RecommendService struct {
	memory  MemorySearcher
	advisor Advisor
}

func NewRecommendService(memory MemorySearcher, advisor Advisor) *RecommendService {
	return &RecommendService{memory: memory, advisor: advisor}
}

// RecommendResult 建议结果
type RecommendResult struct {
	Recommendations   []string       `json:"recommendations"`
	MotivationalQuote string         `json:"motivational_quote"`
	Memories          []MemoryResult `json:"memories"`
}

// Recommend 检索相关记忆后生成建议；检索失败时不带记忆继续
func (s *RecommendService) Recommend(ctx context.Context, userID, prompt string) (*RecommendResult, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("%w: 缺少 user_id", ErrValidation)
	}
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		prompt = defaultRecommendPrompt
	}

	var memories []MemoryResult
	if s.memory != nil {
		found, err := s.memory.Query(ctx, userID, prompt, defaultMemoryTopK)
		if err != nil {
			slog.Warn("记忆检索失败，不带历史生成建议", "user", userID, "error", err)
		} else {
			memories = found
		}
	}

	contents := make([]string, 0, len(memories))
	for _, m := range memories {
		contents = append(contents, m.Content)
	}

	rec, err := s.advisor.Recommend(ctx, contents, prompt)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamAnalysis, err)
	}
	return &RecommendResult{
		Recommendations:   rec.Recommendations,
		MotivationalQuote: rec.MotivationalQuote,
		Memories:          memories,
	}, nil
}
