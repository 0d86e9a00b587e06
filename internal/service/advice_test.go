package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yuqie6/reme/internal/ai"
	"github.com/yuqie6/reme/internal/repository"
	"github.com/yuqie6/reme/internal/schema"
	"github.com/yuqie6/reme/internal/testutil"
)

type fakeAdvisor struct {
	rec       *ai.Recommendation
	quote     *ai.Quote
	err       error
	memories  []string
	quoteReqs []*ai.QuoteRequest
}

func (f *fakeAdvisor) Recommend(ctx context.Context, memories []string, question string) (*ai.Recommendation, error) {
	f.memories = memories
	return f.rec, f.err
}

func (f *fakeAdvisor) GenerateQuote(ctx context.Context, req *ai.QuoteRequest) (*ai.Quote, error) {
	f.quoteReqs = append(f.quoteReqs, req)
	return f.quote, f.err
}

func TestRecommend_UsesMemories(t *testing.T) {
	mem := &fakeMemory{results: []MemoryResult{{Content: "🎸 Guitar: learned a song", Similarity: 0.9}}}
	adv := &fakeAdvisor{rec: &ai.Recommendation{Recommendations: []string{"try a duet"}, MotivationalQuote: "go"}}
	svc := NewRecommendService(mem, adv)

	res, err := svc.Recommend(context.Background(), "u1", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"try a duet"}, res.Recommendations)
	assert.Equal(t, []string{"🎸 Guitar: learned a song"}, adv.memories)
	assert.Len(t, res.Memories, 1)
}

func TestRecommend_MemoryFailureTolerated(t *testing.T) {
	mem := &fakeMemory{queryErr: errFake}
	adv := &fakeAdvisor{rec: &ai.Recommendation{Recommendations: []string{"rest"}}}
	svc := NewRecommendService(mem, adv)

	res, err := svc.Recommend(context.Background(), "u1", "what next?")
	require.NoError(t, err)
	assert.Empty(t, adv.memories)
	assert.Equal(t, []string{"rest"}, res.Recommendations)

	adv.err = errFake
	_, err = svc.Recommend(context.Background(), "u1", "what next?")
	assert.ErrorIs(t, err, ErrUpstreamAnalysis)

	_, err = svc.Recommend(context.Background(), "", "x")
	assert.ErrorIs(t, err, ErrValidation)
}

func newQuoteFixture(t *testing.T, adv *fakeAdvisor) (*QuoteService, *repository.HobbyRepository, *repository.ProfileRepository) {
	t.Helper()
	db := testutil.OpenTestDB(t)
	hobbies := repository.NewHobbyRepository(db)
	profiles := repository.NewProfileRepository(db)
	svc := NewQuoteService(profiles, hobbies, repository.NewActivityRepository(db), repository.NewReflectionRepository(db), adv)
	svc.now = func() time.Time { return time.Date(2026, 3, 1, 9, 0, 0, 0, time.Local) }
	return svc, hobbies, profiles
}

func TestQuoteDaily_CachedPerDay(t *testing.T) {
	adv := &fakeAdvisor{quote: &ai.Quote{Text: "Stay hungry", Attribution: "Steve Jobs"}}
	svc, hobbies, profiles := newQuoteFixture(t, adv)
	ctx := context.Background()

	require.NoError(t, profiles.Upsert(ctx, &schema.Profile{ID: "u1", DisplayName: "Mina", MBTI: "INFP"}))
	require.NoError(t, hobbies.Create(ctx, &schema.Hobby{ID: "h1", UserID: "u1", Name: "🎸 Guitar", Category: "Creative", Level: 2}))

	q, err := svc.Daily(ctx, "u1", false)
	require.NoError(t, err)
	assert.Equal(t, "Stay hungry", q.Text)
	assert.Equal(t, "2026-03-01", q.Date)

	require.Len(t, adv.quoteReqs, 1)
	assert.Equal(t, "Mina", adv.quoteReqs[0].DisplayName)
	assert.Equal(t, []string{"🎸 Guitar (Creative, Lv 2)"}, adv.quoteReqs[0].Hobbies)

	adv.quote = &ai.Quote{Text: "Different"}
	q, err = svc.Daily(ctx, "u1", false)
	require.NoError(t, err)
	assert.Equal(t, "Stay hungry", q.Text)
	assert.Len(t, adv.quoteReqs, 1)

	q, err = svc.Daily(ctx, "u1", true)
	require.NoError(t, err)
	assert.Equal(t, "Different", q.Text)

	cached, err := profiles.GetQuote(ctx, "u1", "2026-03-01")
	require.NoError(t, err)
	assert.Equal(t, "Different", cached.Text)
}

func TestQuoteDaily_Fallback(t *testing.T) {
	adv := &fakeAdvisor{err: fmt.Errorf("wrap: %w", ai.ErrInvalidResponse)}
	svc, _, _ := newQuoteFixture(t, adv)

	q, err := svc.Daily(context.Background(), "u1", false)
	require.NoError(t, err)
	assert.Equal(t, "Keep going!", q.Text)
	assert.Empty(t, q.Attribution)

	adv.err = errFake
	_, err = svc.Daily(context.Background(), "u1", true)
	assert.ErrorIs(t, err, ErrUpstreamAnalysis)
}

func TestQuoteWarmAll(t *testing.T) {
	adv := &fakeAdvisor{quote: &ai.Quote{Text: "Onward"}}
	svc, hobbies, _ := newQuoteFixture(t, adv)
	ctx := context.Background()

	require.NoError(t, hobbies.Create(ctx, &schema.Hobby{ID: "h1", UserID: "u1", Name: "A"}))
	require.NoError(t, hobbies.Create(ctx, &schema.Hobby{ID: "h2", UserID: "u2", Name: "B"}))
	require.NoError(t, hobbies.Create(ctx, &schema.Hobby{ID: "h3", UserID: "u2", Name: "C"}))

	n, err := svc.WarmAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Len(t, adv.quoteReqs, 2)
}

func TestProfileUpsert(t *testing.T) {
	db := testutil.OpenTestDB(t)
	svc := NewProfileService(repository.NewProfileRepository(db))
	ctx := context.Background()

	_, err := svc.Get(ctx, "u1")
	assert.ErrorIs(t, err, ErrNotFound)

	p, err := svc.Upsert(ctx, &schema.Profile{ID: "u1", DisplayName: "Mina", MBTI: "enfj", ReminderTime: "08:30", Age: 30})
	require.NoError(t, err)
	assert.Equal(t, "ENFJ", p.MBTI)

	_, err = svc.Upsert(ctx, &schema.Profile{ID: "u1", MBTI: "ABCD"})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.Upsert(ctx, &schema.Profile{ID: "u1", ReminderTime: "25:00"})
	assert.ErrorIs(t, err, ErrValidation)
}
