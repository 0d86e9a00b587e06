package service

import "strings"

// ExpPolicy 经验计算策略（可替换）
type ExpPolicy interface {
	CalcActivityExp(text string, skills []string) int64
}

const (
	expPerSkill     = 10
	depthBonusExp   = 5
	depthBonusChars = 100
)

// DefaultExpPolicy 默认经验策略：每个不同技能 10 点，描述超过阈值字数再加 5 点
type DefaultExpPolicy struct {
	DepthBonusChars int // 0 表示使用默认 100
}

// CalcActivityExp 计算单个活动片段的经验值
func (p DefaultExpPolicy) CalcActivityExp(text string, skills []string) int64 {
	exp := int64(countDistinctSkills(skills)) * expPerSkill

	limit := p.DepthBonusChars
	if limit <= 0 {
		limit = depthBonusChars
	}
	if runeLen(text) > limit {
		exp += depthBonusExp
	}
	return exp
}

// BackfillExpPolicy 过往经历回填：只记录历史，不给经验
type BackfillExpPolicy struct{}

func (BackfillExpPolicy) CalcActivityExp(string, []string) int64 { return 0 }

// countDistinctSkills 忽略大小写与首尾空白，空标签不计
func countDistinctSkills(skills []string) int {
	seen := make(map[string]struct{}, len(skills))
	for _, s := range skills {
		k := strings.ToLower(strings.TrimSpace(s))
		if k == "" {
			continue
		}
		seen[k] = struct{}{}
	}
	return len(seen)
}

// normalizeSkills 去重并保留首次出现的写法
func normalizeSkills(skills []string) []string {
	out := make([]string, 0, len(skills))
	seen := make(map[string]struct{}, len(skills))
	for _, s := range skills {
		s = strings.TrimSpace(s)
		k := strings.ToLower(s)
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, s)
	}
	return out
}
