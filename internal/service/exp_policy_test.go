package service

import (
	"strings"
	"testing"
)

func TestDefaultExpPolicy_NoSkills(t *testing.T) {
	p := DefaultExpPolicy{}
	if exp := p.CalcActivityExp("short", nil); exp != 0 {
		t.Fatalf("no skills should give 0, got %d", exp)
	}
}

func TestDefaultExpPolicy_DistinctSkills(t *testing.T) {
	p := DefaultExpPolicy{}
	exp := p.CalcActivityExp("Practiced chords", []string{"chords", "Chords ", "rhythm", ""})
	if exp != 20 {
		t.Fatalf("exp=%d, want 20", exp)
	}
}

func TestDefaultExpPolicy_DepthBonusBoundary(t *testing.T) {
	p := DefaultExpPolicy{}
	skills := []string{"a", "b", "c"}

	exactly := strings.Repeat("x", 100)
	if exp := p.CalcActivityExp(exactly, skills); exp != 30 {
		t.Fatalf("100 chars should not get bonus, got %d", exp)
	}

	over := strings.Repeat("x", 101)
	if exp := p.CalcActivityExp(over, skills); exp != 35 {
		t.Fatalf("101 chars should get bonus, got %d", exp)
	}

	// 首尾空白不计入长度
	padded := "   " + exactly + "\n\n"
	if exp := p.CalcActivityExp(padded, skills); exp != 30 {
		t.Fatalf("padding should be trimmed, got %d", exp)
	}
}

func TestDefaultExpPolicy_CountsRunes(t *testing.T) {
	p := DefaultExpPolicy{}
	// 60 个汉字 = 180 字节，但只有 60 个字符
	text := strings.Repeat("练", 60)
	if exp := p.CalcActivityExp(text, []string{"书法"}); exp != 10 {
		t.Fatalf("exp=%d, want 10", exp)
	}
}

func TestDefaultExpPolicy_CustomThreshold(t *testing.T) {
	p := DefaultExpPolicy{DepthBonusChars: 10}
	if exp := p.CalcActivityExp(strings.Repeat("y", 11), []string{"s"}); exp != 15 {
		t.Fatalf("exp=%d, want 15", exp)
	}
}

func TestBackfillExpPolicy(t *testing.T) {
	p := BackfillExpPolicy{}
	if exp := p.CalcActivityExp(strings.Repeat("z", 500), []string{"a", "b"}); exp != 0 {
		t.Fatalf("backfill should give 0, got %d", exp)
	}
}

func TestNormalizeSkills(t *testing.T) {
	got := normalizeSkills([]string{" Composition", "composition", "", "Lighting"})
	if len(got) != 2 || got[0] != "Composition" || got[1] != "Lighting" {
		t.Fatalf("normalizeSkills=%v", got)
	}
}
