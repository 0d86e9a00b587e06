package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yuqie6/reme/internal/schema"
)

func TestAnalyzeCharacteristics_Empty(t *testing.T) {
	c := AnalyzeCharacteristics(nil, nil)
	assert.Equal(t, []string{"Balanced Explorer"}, c.DominantTraits)
	require.Len(t, c.PersonalityTraits, 6)
	for _, tr := range c.PersonalityTraits {
		assert.Equal(t, 50.0, tr.Value)
	}
	for _, p := range c.ActivityPreferences {
		assert.Equal(t, 25.0, p.Value)
	}
}

func TestAnalyzeCharacteristics_Physical(t *testing.T) {
	hobbies := []schema.Hobby{{ID: "h1", Category: "Physical", Level: 3}}
	activities := []schema.ActivityLog{{HobbyID: "h1"}, {HobbyID: "h1"}}

	c := AnalyzeCharacteristics(hobbies, activities)
	require.Len(t, c.PersonalityTraits, 6)

	// outdoor = 50 + 0.8*100 → 100
	assert.Equal(t, "Outdoor Explorer", c.PersonalityTraits[0].Trait)
	assert.Equal(t, 100.0, c.PersonalityTraits[0].Value)
	assert.Equal(t, "Active Mover", c.PersonalityTraits[3].Trait)

	assert.Equal(t, "Physical", c.ActivityPreferences[0].Name)
	assert.Equal(t, 100.0, c.ActivityPreferences[0].Value)
	assert.Len(t, c.DominantTraits, 3)
	assert.Contains(t, c.Insights, "You're strongly drawn to physical pursuits")
}

func TestAnalyzeCharacteristics_IntellectualIsIndoor(t *testing.T) {
	hobbies := []schema.Hobby{{ID: "h1", Category: "Intellectual", Level: 1}}
	c := AnalyzeCharacteristics(hobbies, nil)

	assert.Equal(t, "Indoor Enthusiast", c.PersonalityTraits[0].Trait)
	assert.InDelta(t, 30.0, c.PersonalityTraits[0].Value, 1e-9)
	assert.Equal(t, "Theoretical Thinker", c.PersonalityTraits[4].Trait)
	assert.InDelta(t, 10.0, c.PersonalityTraits[4].Value, 1e-9)
	assert.Equal(t, 100.0, c.ActivityPreferences[1].Value)
}

func TestAnalyzeCharacteristics_OtherSpreadsEvenly(t *testing.T) {
	hobbies := []schema.Hobby{{ID: "h1", Category: ""}}
	c := AnalyzeCharacteristics(hobbies, nil)
	for _, p := range c.ActivityPreferences {
		assert.Equal(t, 25.0, p.Value)
	}
}
