package repository

import (
	"context"
	"testing"

	"github.com/yuqie6/reme/internal/schema"
	"github.com/yuqie6/reme/internal/testutil"
)

func TestProfileRepositoryQuoteUpsert(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := NewProfileRepository(db)
	ctx := context.Background()

	if q, err := repo.GetQuote(ctx, "u1", "2026-10-19"); err != nil || q != nil {
		t.Fatalf("q=%v err=%v, want nil nil", q, err)
	}

	if err := repo.UpsertQuote(ctx, &schema.DailyQuote{UserID: "u1", Date: "2026-10-19", Text: "a", Attribution: "RE:ME"}); err != nil {
		t.Fatalf("UpsertQuote error: %v", err)
	}
	if err := repo.UpsertQuote(ctx, &schema.DailyQuote{UserID: "u1", Date: "2026-10-19", Text: "b", Attribution: "Seneca"}); err != nil {
		t.Fatalf("UpsertQuote overwrite error: %v", err)
	}

	got, err := repo.GetQuote(ctx, "u1", "2026-10-19")
	if err != nil || got == nil {
		t.Fatalf("GetQuote got=%v err=%v", got, err)
	}
	if got.Text != "b" || got.Attribution != "Seneca" {
		t.Fatalf("got=%+v, want overwritten quote", got)
	}
}

func TestProfileRepositoryUpsert(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := NewProfileRepository(db)
	ctx := context.Background()

	if err := repo.Upsert(ctx, &schema.Profile{ID: "u1", DisplayName: "Ari", MBTI: "INFP"}); err != nil {
		t.Fatalf("Upsert error: %v", err)
	}
	if err := repo.Upsert(ctx, &schema.Profile{ID: "u1", DisplayName: "Ari", MBTI: "ENFP", Age: 30}); err != nil {
		t.Fatalf("Upsert update error: %v", err)
	}
	got, err := repo.Get(ctx, "u1")
	if err != nil || got == nil || got.MBTI != "ENFP" || got.Age != 30 {
		t.Fatalf("got=%+v err=%v", got, err)
	}
}
