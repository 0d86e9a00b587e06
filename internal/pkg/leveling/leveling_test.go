package leveling

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThresholdForLevel(t *testing.T) {
	cases := map[int]int64{0: 0, 1: 12, 2: 26, 3: 42, 4: 60, 5: 80, 6: 102}
	for lv, want := range cases {
		got, err := ThresholdForLevel(lv)
		require.NoError(t, err)
		assert.Equalf(t, want, got, "level=%d", lv)
	}
}

func TestThresholdForLevel_Negative(t *testing.T) {
	_, err := ThresholdForLevel(-1)
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestThresholdMatchesRecursiveDefinition(t *testing.T) {
	prev := int64(12)
	for lv := 2; lv <= 200; lv++ {
		want := prev + 14 + int64(lv-2)*2
		got, _ := ThresholdForLevel(lv)
		require.Equalf(t, want, got, "level=%d", lv)
		prev = got
	}
}

func TestLevelFromExp_Dynamic(t *testing.T) {
	cases := []struct {
		exp  int64
		want int
	}{
		{0, 0}, {11, 0}, {12, 1}, {25, 1}, {26, 2}, {40, 2}, {42, 3}, {59, 3}, {60, 4},
	}
	for _, tc := range cases {
		got, err := LevelFromExp(tc.exp, nil)
		require.NoError(t, err)
		assert.Equalf(t, tc.want, got, "exp=%d", tc.exp)
	}
}

func TestLevelFromExp_Negative(t *testing.T) {
	_, err := LevelFromExp(-5, nil)
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestLevelFromExp_Monotonic(t *testing.T) {
	table, _ := GenerateThresholds(4)
	for _, explicit := range [][]int64{nil, table, {100, 250, 500, 1000}} {
		prev := 0
		for exp := int64(0); exp <= 3000; exp++ {
			lv, err := LevelFromExp(exp, explicit)
			require.NoError(t, err)
			require.GreaterOrEqualf(t, lv, prev, "exp=%d table=%v", exp, explicit)
			prev = lv
		}
	}
}

func TestLevelFromExp_ThresholdConsistency(t *testing.T) {
	for lv := 1; lv <= 300; lv++ {
		th, _ := ThresholdForLevel(lv)
		at, _ := LevelFromExp(th, nil)
		below, _ := LevelFromExp(th-1, nil)
		assert.GreaterOrEqualf(t, at, lv, "level=%d", lv)
		assert.Lessf(t, below, lv, "level=%d", lv)
	}
}

func TestLevelFromExp_ExplicitTableContinuation(t *testing.T) {
	table, err := GenerateThresholds(4)
	require.NoError(t, err)
	require.Equal(t, []int64{12, 26, 42, 60}, table)

	t4, _ := ThresholdForLevel(4)
	t5, _ := ThresholdForLevel(5)
	lv, err := LevelFromExp(table[3]+t5-t4, table)
	require.NoError(t, err)
	assert.Equal(t, 5, lv)
}

func TestLevelFromExp_CustomTable(t *testing.T) {
	table := []int64{100, 250, 500, 1000}

	lv, _ := LevelFromExp(99, table)
	assert.Equal(t, 0, lv)
	lv, _ = LevelFromExp(300, table)
	assert.Equal(t, 2, lv)
	// 超出表后按公式继续：level 5 阈值 80 < 1000，直接升到公式能覆盖的最高等级
	lv, _ = LevelFromExp(1000, table)
	want, _ := LevelFromExp(1000, nil)
	assert.Equal(t, want, lv)
}

func TestLevelFromExp_SearchCap(t *testing.T) {
	lv, err := LevelFromExp(1<<62, nil)
	require.NoError(t, err)
	assert.Equal(t, MaxLevel, lv)
}

func TestGenerateThresholds_Invalid(t *testing.T) {
	_, err := GenerateThresholds(0)
	require.ErrorIs(t, err, ErrInvalidArgument)
	_, err = GenerateThresholds(MaxLevel + 1)
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestThresholdForLevel_AboveCap(t *testing.T) {
	_, err := ThresholdForLevel(MaxLevel + 1)
	require.ErrorIs(t, err, ErrInvalidArgument)
	_, err = ThresholdForLevel(5_000_000_000)
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestThresholdAtCapRoundTrips(t *testing.T) {
	exp, err := ThresholdForLevel(MaxLevel)
	require.NoError(t, err)
	lv, err := LevelFromExp(exp, nil)
	require.NoError(t, err)
	assert.Equal(t, MaxLevel, lv)

	table, _ := GenerateThresholds(DefaultTableSize)
	lv, _ = LevelFromExp(exp, table)
	assert.Equal(t, MaxLevel, lv)
}

func TestProgressOf(t *testing.T) {
	p, err := ProgressOf(19, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, p.Level)
	assert.Equal(t, int64(12), p.CurrentLevelExp)
	assert.Equal(t, int64(26), p.NextLevelExp)
	assert.InDelta(t, 50.0, p.Percent, 0.001)

	p, _ = ProgressOf(0, nil)
	assert.Equal(t, 0, p.Level)
	assert.Equal(t, int64(12), p.NextLevelExp)
}
