package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "", truncateRunes("abc", 0))
	assert.Equal(t, "abc", truncateRunes("abc", 3))
	assert.Equal(t, "ab...", truncateRunes("abc", 2))
	assert.Equal(t, "吉他...", truncateRunes("吉他练习", 2))
}

func TestCompactFragments(t *testing.T) {
	assert.Equal(t, []string{"a", " b "}, compactFragments([]string{"a", "  ", "", " b "}))
	assert.Empty(t, compactFragments(nil))
}

func TestRuneLen(t *testing.T) {
	assert.Equal(t, 2, runeLen("  吉他 \n"))
}
