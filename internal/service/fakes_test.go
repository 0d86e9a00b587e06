package service

import (
	"context"
	"errors"
	"sync"

	"github.com/yuqie6/reme/internal/ai"
	"github.com/yuqie6/reme/internal/eventbus"
	"github.com/yuqie6/reme/internal/repository"
	"github.com/yuqie6/reme/internal/schema"
)

var errFake = errors.New("fake failure")

// fakeAnalyzer 按文本返回预设结果；可并发调用
type fakeAnalyzer struct {
	mu         sync.Mutex
	insights   map[string]*ai.ActivityInsight
	failText   string
	split      *ai.SplitCheck
	splitErr   error
	analyzed   []string
	splitCalls int

	hobby    *ai.HobbyProfile
	hobbyErr error
}

func newFakeAnalyzer() *fakeAnalyzer {
	return &fakeAnalyzer{insights: make(map[string]*ai.ActivityInsight)}
}

func (f *fakeAnalyzer) on(text string, skills ...string) *fakeAnalyzer {
	f.insights[text] = &ai.ActivityInsight{
		Summary:       "summary of " + text,
		Skills:        skills,
		SuggestedNext: []string{"keep practicing"},
	}
	return f
}

func (f *fakeAnalyzer) AnalyzeActivity(ctx context.Context, hobbyName, text string) (*ai.ActivityInsight, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.analyzed = append(f.analyzed, text)
	if f.failText != "" && text == f.failText {
		return nil, errFake
	}
	if in, ok := f.insights[text]; ok {
		copy := *in
		return &copy, nil
	}
	return &ai.ActivityInsight{Summary: "ok"}, nil
}

func (f *fakeAnalyzer) CheckSplit(ctx context.Context, hobbyName, text string) (*ai.SplitCheck, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.splitCalls++
	if f.splitErr != nil {
		return nil, f.splitErr
	}
	if f.split == nil {
		return &ai.SplitCheck{ShouldSplit: false, Activities: []string{text}, Confidence: 0.9}, nil
	}
	return f.split, nil
}

func (f *fakeAnalyzer) DescribeHobby(ctx context.Context, name string) (*ai.HobbyProfile, error) {
	if f.hobbyErr != nil {
		return nil, f.hobbyErr
	}
	if f.hobby != nil {
		return f.hobby, nil
	}
	return &ai.HobbyProfile{FormattedName: name, Category: "Creative"}, nil
}

func (f *fakeAnalyzer) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.analyzed) + f.splitCalls
}

type fakeMemory struct {
	mu   sync.Mutex
	docs []MemoryDoc
	err  error

	results  []MemoryResult
	queryErr error
}

func (m *fakeMemory) Index(ctx context.Context, doc MemoryDoc) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.docs = append(m.docs, doc)
	return nil
}

func (m *fakeMemory) Query(ctx context.Context, userID, query string, topK int) ([]MemoryResult, error) {
	return m.results, m.queryErr
}

type fakeEvents struct {
	mu     sync.Mutex
	events []eventbus.Event
}

func (e *fakeEvents) Publish(evt eventbus.Event) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, evt)
}

func (e *fakeEvents) types() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, len(e.events))
	for i, evt := range e.events {
		out[i] = evt.Type
	}
	return out
}

// failingHobbyRepo 包装真实仓储，让 ApplyActivities 失败
type failingHobbyRepo struct {
	HobbyRepository
	applyErr error
	applied  int
}

func (r *failingHobbyRepo) ApplyActivities(ctx context.Context, hobbyID string, logs []schema.ActivityLog, delta int64) (*repository.LedgerUpdate, error) {
	r.applied++
	return nil, r.applyErr
}
