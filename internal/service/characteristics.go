package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/yuqie6/reme/internal/schema"
)

const characteristicsActivityLimit = 1000

// PersonalityTrait 性格维度（0-100，50 为中性）
type PersonalityTrait struct {
	Trait       string  `json:"trait"`
	Value       float64 `json:"value"`
	Description string  `json:"description"`
}

// ActivityPreference 活动偏好占比
type ActivityPreference struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
	Color string  `json:"color"`
}

// UserCharacteristics 用户画像
type UserCharacteristics struct {
	PersonalityTraits   []PersonalityTrait   `json:"personality_traits"`
	ActivityPreferences []ActivityPreference `json:"activity_preferences"`
	DominantTraits      []string             `json:"dominant_traits"`
	Insights            []string             `json:"insights"`
}

// traitAxis 一个维度：类别权重 + 高/低两端文案
type traitAxis struct {
	key               string
	weights           map[string]float64
	high, low         string
	highDesc, lowDesc string
	neutralDesc       string
}

var traitAxes = []traitAxis{
	{
		key:         "outdoor",
		weights:     map[string]float64{"Physical": 0.8, "Creative": 0.3, "Intellectual": -0.2, "Social": 0.4, "Other": 0},
		high:        "Outdoor Explorer",
		highDesc:    "You thrive in nature and outdoor settings",
		low:         "Indoor Enthusiast",
		lowDesc:     "You prefer cozy indoor environments",
		neutralDesc: "Balance of indoor and outdoor activities",
	},
	{
		key:         "social",
		weights:     map[string]float64{"Physical": 0.5, "Creative": 0.3, "Intellectual": 0.2, "Social": 0.9, "Other": 0.3},
		high:        "Social Butterfly",
		highDesc:    "You energize through social connections",
		low:         "Solo Thinker",
		lowDesc:     "You recharge with solitary activities",
		neutralDesc: "Mix of social and solo time",
	},
	{
		key:         "creative",
		weights:     map[string]float64{"Physical": 0.2, "Creative": 0.9, "Intellectual": 0.4, "Social": 0.3, "Other": 0.2},
		high:        "Creative Spirit",
		highDesc:    "You express yourself through creative pursuits",
		low:         "Analytical Mind",
		lowDesc:     "You excel at logical problem-solving",
		neutralDesc: "Blend of creative and analytical thinking",
	},
	{
		key:         "active",
		weights:     map[string]float64{"Physical": 0.9, "Creative": 0.4, "Intellectual": -0.3, "Social": 0.5, "Other": 0.2},
		high:        "Active Mover",
		highDesc:    "You love physical movement and energy",
		low:         "Calm Observer",
		lowDesc:     "You appreciate stillness and contemplation",
		neutralDesc: "Balance of active and calm pursuits",
	},
	{
		key:         "practical",
		weights:     map[string]float64{"Physical": 0.6, "Creative": 0.3, "Intellectual": -0.4, "Social": 0.2, "Other": 0.5},
		high:        "Practical Doer",
		highDesc:    "You focus on hands-on, tangible outcomes",
		low:         "Theoretical Thinker",
		lowDesc:     "You enjoy abstract concepts and ideas",
		neutralDesc: "Mix of hands-on and theoretical interests",
	},
	{
		key:         "adventurous",
		weights:     map[string]float64{"Physical": 0.7, "Creative": 0.5, "Intellectual": 0.3, "Social": 0.4, "Other": 0.2},
		high:        "Adventure Seeker",
		highDesc:    "You crave new experiences and challenges",
		low:         "Routine Lover",
		lowDesc:     "You find comfort in familiar patterns",
		neutralDesc: "Balance of new experiences and routines",
	},
}

var preferenceColors = []struct{ name, color string }{
	{"Physical", "#f97316"},
	{"Mental", "#8b5cf6"},
	{"Social", "#06b6d4"},
	{"Creative", "#ec4899"},
}

// AnalyzeCharacteristics 根据爱好类别、等级与活动数推断画像
func AnalyzeCharacteristics(hobbies []schema.Hobby, activities []schema.ActivityLog) UserCharacteristics {
	if len(hobbies) == 0 {
		return defaultCharacteristics()
	}

	perHobby := make(map[string]int, len(hobbies))
	for _, a := range activities {
		perHobby[a.HobbyID]++
	}

	scores := make([]float64, len(traitAxes))
	var totalWeight float64
	for _, h := range hobbies {
		weight := float64(max(h.Level, 1) * max(perHobby[h.ID], 1))
		cat := categoryOrOther(h.Category)
		for i, axis := range traitAxes {
			scores[i] += axis.weights[cat] * weight
		}
		totalWeight += weight
	}

	traits := make([]PersonalityTrait, len(traitAxes))
	for i, axis := range traitAxes {
		v := math.Max(0, math.Min(100, 50+scores[i]/totalWeight*100))
		if v > 50 {
			traits[i] = PersonalityTrait{Trait: axis.high, Value: v, Description: axis.highDesc}
		} else {
			traits[i] = PersonalityTrait{Trait: axis.low, Value: v, Description: axis.lowDesc}
		}
	}

	prefs := activityPreferences(hobbies)

	// 偏离中性越远越突出
	ranked := append([]PersonalityTrait(nil), traits...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return math.Abs(ranked[i].Value-50) > math.Abs(ranked[j].Value-50)
	})
	dominant := make([]string, 0, 3)
	for _, t := range ranked[:min(3, len(ranked))] {
		dominant = append(dominant, t.Trait)
	}

	var insights []string
	top := prefs[0]
	for _, p := range prefs[1:] {
		if p.Value > top.Value {
			top = p
		}
	}
	if top.Value > 40 {
		insights = append(insights, fmt.Sprintf("You're strongly drawn to %s pursuits", strings.ToLower(top.Name)))
	}
	for _, t := range ranked {
		if t.Value > 70 || t.Value < 30 {
			insights = append(insights, fmt.Sprintf("You have a clear preference for %s activities", strings.ToLower(t.Trait)))
			break
		}
	}
	if len(hobbies) >= 5 {
		insights = append(insights, "You have a diverse range of interests!")
	}
	if len(activities) >= 20 {
		insights = append(insights, "Your dedication to your hobbies is remarkable!")
	}
	if len(insights) == 0 {
		insights = append(insights, "Keep exploring to discover more about yourself!")
	}

	return UserCharacteristics{
		PersonalityTraits:   traits,
		ActivityPreferences: prefs,
		DominantTraits:      dominant,
		Insights:            insights,
	}
}

func activityPreferences(hobbies []schema.Hobby) []ActivityPreference {
	scores := map[string]float64{}
	var total float64
	for _, h := range hobbies {
		w := float64(max(h.Level, 1))
		switch categoryOrOther(h.Category) {
		case "Physical":
			scores["Physical"] += w
		case "Intellectual":
			scores["Mental"] += w
		case "Social":
			scores["Social"] += w
		case "Creative":
			scores["Creative"] += w
		default:
			for _, p := range preferenceColors {
				scores[p.name] += w * 0.25
			}
		}
		total += w
	}

	out := make([]ActivityPreference, len(preferenceColors))
	for i, p := range preferenceColors {
		v := 25.0
		if total > 0 {
			v = scores[p.name] / total * 100
		}
		out[i] = ActivityPreference{Name: p.name, Value: v, Color: p.color}
	}
	return out
}

func defaultCharacteristics() UserCharacteristics {
	traits := make([]PersonalityTrait, len(traitAxes))
	for i, axis := range traitAxes {
		traits[i] = PersonalityTrait{Trait: axis.high, Value: 50, Description: axis.neutralDesc}
	}
	prefs := make([]ActivityPreference, len(preferenceColors))
	for i, p := range preferenceColors {
		prefs[i] = ActivityPreference{Name: p.name, Value: 25, Color: p.color}
	}
	return UserCharacteristics{
		PersonalityTraits:   traits,
		ActivityPreferences: prefs,
		DominantTraits:      []string{"Balanced Explorer"},
		Insights:            []string{"Start adding hobbies to discover your unique personality profile!"},
	}
}

func categoryOrOther(c string) string {
	if c == "" {
		return "Other"
	}
	return c
}

// CharacteristicsService 从仓储读取数据并生成画像
type CharacteristicsService struct {
	hobbies    HobbyRepository
	activities ActivityRepository
}

func NewCharacteristicsService(hobbies HobbyRepository, activities ActivityRepository) *CharacteristicsService {
	return &CharacteristicsService{hobbies: hobbies, activities: activities}
}

func (s *CharacteristicsService) Analyze(ctx context.Context, userID string) (*UserCharacteristics, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("%w: 缺少 user_id", ErrValidation)
	}
	hobbies, err := s.hobbies.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	activities, err := s.activities.ListByUser(ctx, userID, characteristicsActivityLimit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	c := AnalyzeCharacteristics(hobbies, activities)
	return &c, nil
}
