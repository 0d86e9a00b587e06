package service

import (
	"strings"
	"unicode/utf8"
)

// truncateRunes 超过 max 个字符时截断并追加省略号
func truncateRunes(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	n := 0
	for i := range s {
		if n == max {
			return s[:i] + "..."
		}
		n++
	}
	return s
}

// runeLen 去掉首尾空白后的字符数（深度奖励按此计算）
func runeLen(s string) int {
	return utf8.RuneCountInString(strings.TrimSpace(s))
}

// compactFragments 去掉空白片段
func compactFragments(texts []string) []string {
	out := make([]string, 0, len(texts))
	for _, t := range texts {
		if strings.TrimSpace(t) == "" {
			continue
		}
		out = append(out, t)
	}
	return out
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
