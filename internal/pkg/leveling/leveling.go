// Package leveling 爱好等级曲线：阈值计算与经验值→等级换算。
//
// 等级 1 需要累计 12 EXP，之后每级增量为 14, 16, 18 …（线性递增）。
// 爱好创建时可以固化一段阈值表，超出表的部分继续按公式动态计算。
package leveling

import (
	"errors"
	"fmt"
)

const (
	firstLevelExp int64 = 12
	baseIncrement int64 = 14
	incrementStep int64 = 2
)

// MaxLevel 等级上限；LevelFromExp 最多搜索到此级
const MaxLevel = 1000

// DefaultTableSize 新爱好默认固化的阈值数量
const DefaultTableSize = 10

// ErrInvalidArgument 负数等级/经验等非法输入
var ErrInvalidArgument = errors.New("leveling: invalid argument")

// ThresholdForLevel 返回达到 level 所需的最小累计经验值，level=0 时为 0
func ThresholdForLevel(level int) (int64, error) {
	if level < 0 || level > MaxLevel {
		return 0, fmt.Errorf("%w: level=%d", ErrInvalidArgument, level)
	}
	return threshold(level), nil
}

// threshold 闭式解：12 + 14(n-1) + (n-1)(n-2)
func threshold(level int) int64 {
	if level <= 0 {
		return 0
	}
	n := int64(level) - 1
	return firstLevelExp + baseIncrement*n + (incrementStep/2)*n*(n-1)
}

// LevelFromExp 根据累计经验值计算等级
// explicit 非空时优先按表计算；经验值达到表中最后一项后按公式继续向上查找。
func LevelFromExp(exp int64, explicit []int64) (int, error) {
	if exp < 0 {
		return 0, fmt.Errorf("%w: exp=%d", ErrInvalidArgument, exp)
	}

	level := 0
	next := 1
	if len(explicit) > 0 {
		for i, t := range explicit {
			if exp >= t {
				level = i + 1
			}
		}
		if exp < explicit[len(explicit)-1] {
			return level, nil
		}
		next = len(explicit) + 1
	}

	for check := next; check <= MaxLevel; check++ {
		if exp < threshold(check) {
			break
		}
		level = check
	}
	return level, nil
}

// GenerateThresholds 生成 [1, maxLevel] 的阈值表，用于新爱好固化
func GenerateThresholds(maxLevel int) ([]int64, error) {
	if maxLevel < 1 || maxLevel > MaxLevel {
		return nil, fmt.Errorf("%w: maxLevel=%d", ErrInvalidArgument, maxLevel)
	}
	out := make([]int64, 0, maxLevel)
	for lv := 1; lv <= maxLevel; lv++ {
		out = append(out, threshold(lv))
	}
	return out, nil
}

// Progress 当前等级进度（用于进度条）
type Progress struct {
	Level           int     `json:"level"`
	CurrentLevelExp int64   `json:"current_level_exp"` // 当前等级起点
	NextLevelExp    int64   `json:"next_level_exp"`    // 下一级阈值
	Percent         float64 `json:"percent"`           // 0-100
}

// ProgressOf 计算经验值在当前等级区间内的进度
func ProgressOf(exp int64, explicit []int64) (Progress, error) {
	level, err := LevelFromExp(exp, explicit)
	if err != nil {
		return Progress{}, err
	}
	cur := thresholdWithTable(level, explicit)
	next := thresholdWithTable(level+1, explicit)

	p := Progress{Level: level, CurrentLevelExp: cur, NextLevelExp: next}
	if span := next - cur; span > 0 {
		p.Percent = float64(exp-cur) / float64(span) * 100
	}
	if p.Percent > 100 {
		p.Percent = 100
	}
	return p, nil
}

// thresholdWithTable 表内等级取表值，表外按公式
func thresholdWithTable(level int, explicit []int64) int64 {
	if level <= 0 {
		return 0
	}
	if level <= len(explicit) {
		return explicit[level-1]
	}
	return threshold(level)
}
