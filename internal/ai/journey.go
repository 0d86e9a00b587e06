package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// UserContext 汇总用户画像，供旅程总结、爱好推荐与陪伴对话共用
type UserContext struct {
	DisplayName string

	HobbyCount      int
	ActivityCount   int
	MomentCount     int
	ReflectionCount int
	TotalLevel      int
	AvgSentiment    float64

	Hobbies     []HobbyLine
	Activities  []DatedText
	Moments     []DatedText
	Reflections []DatedText

	Traits         []TraitLine
	DominantTraits []string
	ActivityFocus  []FocusLine
}

// HobbyLine 单个爱好的摘要
type HobbyLine struct {
	Name        string
	Category    string
	Level       int
	Description string
}

// DatedText 带日期的一条记录（日期为 YYYY-MM-DD，可为空）
type DatedText struct {
	Text string
	Date string
}

// TraitLine 性格维度
type TraitLine struct {
	Trait       string
	Value       float64
	Description string
}

// FocusLine 活动偏好占比
type FocusLine struct {
	Name  string
	Value float64
}

func (u *UserContext) name() string {
	return orDefault(u.DisplayName, "Friend")
}

func joinTexts(items []DatedText, sep string) string {
	parts := make([]string, 0, len(items))
	for _, it := range items {
		if t := strings.TrimSpace(it.Text); t != "" {
			parts = append(parts, t)
		}
	}
	return orDefault(strings.Join(parts, sep), "None yet")
}

func datedList(items []DatedText) string {
	if len(items) == 0 {
		return "- None yet"
	}
	lines := make([]string, 0, len(items))
	for _, it := range items {
		if it.Date != "" {
			lines = append(lines, fmt.Sprintf("- %s (%s)", it.Text, it.Date))
		} else {
			lines = append(lines, "- "+it.Text)
		}
	}
	return strings.Join(lines, "\n")
}

func traitList(traits []TraitLine, withDesc bool) string {
	lines := make([]string, 0, len(traits))
	for _, t := range traits {
		if withDesc {
			lines = append(lines, fmt.Sprintf("- %s: %.0f/100 - %s", t.Trait, t.Value, t.Description))
		} else {
			lines = append(lines, fmt.Sprintf("- %s: %.0f/100", t.Trait, t.Value))
		}
	}
	return strings.Join(lines, "\n")
}

func focusList(focus []FocusLine) string {
	lines := make([]string, 0, len(focus))
	for _, f := range focus {
		lines = append(lines, fmt.Sprintf("- %s: %.1f%%", f.Name, f.Value))
	}
	return strings.Join(lines, "\n")
}

// SummarizeJourney 生成 2-3 句成长旅程总结（纯文本）
func (a *Analyzer) SummarizeJourney(ctx context.Context, uc *UserContext) (string, error) {
	hobbies := make([]string, 0, len(uc.Hobbies))
	for _, h := range uc.Hobbies {
		hobbies = append(hobbies, fmt.Sprintf("%s (Lv %d, %s)", h.Name, h.Level, h.Category))
	}

	messages := []Message{
		{Role: "system", Content: `You are a supportive life coach analyzing a user's personal growth journey. Generate a warm, encouraging, and personalized summary (2-3 sentences) based on their data. Focus on:
- Their hobby diversity and progress
- Patterns in their activities
- Emotional growth (based on reflections and moments)
- Meaningful insights and encouragement for continued growth

Be specific, warm, and genuine. Avoid generic platitudes.`},
		{Role: "user", Content: fmt.Sprintf(`User: %s

Hobbies (%d): %s
Total Level: %d
Recent Activities: %s
Recent Happy Moments: %s
Recent Reflections: %s
Average Sentiment: %.2f

Generate a personalized journey summary for this user.`,
			uc.name(), uc.HobbyCount, orDefault(strings.Join(hobbies, ", "), "None yet"), uc.TotalLevel,
			joinTexts(uc.Activities, "; "), joinTexts(uc.Moments, "; "), joinTexts(uc.Reflections, "; "), uc.AvgSentiment)},
	}

	resp, err := a.client.Chat(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("生成旅程总结失败: %w", err)
	}
	summary := strings.TrimSpace(resp)
	if summary == "" {
		return "", fmt.Errorf("%w: 空响应", ErrInvalidResponse)
	}
	return summary, nil
}

// HobbySuggestion 新爱好推荐
type HobbySuggestion struct {
	Name       string   `json:"name"`
	Category   string   `json:"category"`
	Difficulty string   `json:"difficulty"`
	Reason     string   `json:"reason"`
	Benefits   []string `json:"benefits"`
}

type hobbySuggestionList struct {
	Hobbies []HobbySuggestion `json:"hobbies"`
}

// SuggestHobbies 根据画像推荐用户尚未拥有的新爱好
func (a *Analyzer) SuggestHobbies(ctx context.Context, uc *UserContext) ([]HobbySuggestion, error) {
	current := make([]string, 0, len(uc.Hobbies))
	for _, h := range uc.Hobbies {
		current = append(current, fmt.Sprintf("%s (%s)", h.Name, h.Category))
	}

	messages := []Message{
		{Role: "system", Content: `You are an expert hobby advisor who helps people discover new hobbies that match their personality and interests.

Analyze the user's current hobbies, activities, and personality traits to recommend 5 NEW hobbies they would enjoy.

Return ONLY a valid JSON object with this structure:
{"hobbies": [
  {
    "name": "Hobby Name",
    "category": "Creative|Physical|Intellectual|Social|Other",
    "difficulty": "Easy|Medium|Hard",
    "reason": "2-3 sentences explaining why this hobby fits the user based on their personality and current interests",
    "benefits": ["benefit 1", "benefit 2", "benefit 3"]
  }
]}

Guidelines:
- Recommend hobbies they DON'T already have
- Match their personality traits and dominant characteristics
- Vary difficulty levels (mix of easy, medium, hard)
- Mix categories to provide diverse options
- Make reasons personal and specific to their profile
- Benefits should be concrete and relevant

Return ONLY the JSON, no markdown or explanations.`},
		{Role: "user", Content: fmt.Sprintf(`User Profile:
Name: %s

Current Hobbies: %s

Personality Traits:
%s

Dominant Characteristics: %s

Activity Focus:
%s

Recent Activities: %s

What brings them joy: %s

Recommend 5 NEW hobbies that would be perfect for this person.`,
			uc.name(), orDefault(strings.Join(current, ", "), "None yet"),
			traitList(uc.Traits, false), strings.Join(uc.DominantTraits, ", "), focusList(uc.ActivityFocus),
			joinTexts(uc.Activities, "; "), joinTexts(uc.Moments, "; "))},
	}

	resp, err := a.client.ChatWithOptions(ctx, messages, 0.8, 2000)
	if err != nil {
		return nil, fmt.Errorf("生成爱好推荐失败: %w", err)
	}
	return parseHobbySuggestions(resp)
}

// parseHobbySuggestions 兼容 {"hobbies": [...]} 与裸数组两种输出
func parseHobbySuggestions(resp string) ([]HobbySuggestion, error) {
	list, err := ParseStructuredResponse[hobbySuggestionList](resp)
	if err == nil && len(list.Hobbies) > 0 {
		return list.Hobbies, nil
	}

	start := strings.Index(resp, "[")
	end := strings.LastIndex(resp, "]")
	if start != -1 && end > start {
		var arr []HobbySuggestion
		if jerr := json.Unmarshal([]byte(resp[start:end+1]), &arr); jerr == nil && len(arr) > 0 {
			return arr, nil
		}
	}
	if err == nil {
		err = fmt.Errorf("%w: 推荐列表为空", ErrInvalidResponse)
	}
	return nil, err
}

// ChatTurn 陪伴对话的一轮历史
type ChatTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ErrInvalidTurn 历史消息角色非法
var ErrInvalidTurn = errors.New("对话历史角色只能是 user 或 assistant")

// Companion 以“灵魂伴侣”口吻回复用户
func (a *Analyzer) Companion(ctx context.Context, uc *UserContext, history []ChatTurn, message string) (string, error) {
	hobbies := make([]string, 0, len(uc.Hobbies))
	for _, h := range uc.Hobbies {
		hobbies = append(hobbies, fmt.Sprintf("- %s (%s, Level %d): %s", h.Name, h.Category, h.Level, orDefault(h.Description, "No description")))
	}

	userContext := fmt.Sprintf(`User Profile:
- Name: %s
- Total Hobbies: %d
- Total Activities: %d
- Happy Moments Recorded: %d
- Reflections Written: %d

Personality Traits:
%s

Dominant Characteristics:
%s

Activity Focus:
%s

Recent Hobbies:
%s

Recent Activities:
%s

Recent Happy Moments:
%s

Recent Reflections:
%s`,
		uc.name(), uc.HobbyCount, uc.ActivityCount, uc.MomentCount, uc.ReflectionCount,
		traitList(uc.Traits, true), strings.Join(uc.DominantTraits, ", "), focusList(uc.ActivityFocus),
		orDefault(strings.Join(hobbies, "\n"), "- None yet"),
		datedList(uc.Activities), datedList(uc.Moments), datedList(uc.Reflections))

	system := `You are a warm, empathetic, and supportive AI companion, a "soulmate" who truly knows and cares about the user. You have deep knowledge of the user's hobbies, interests, personality traits, and recent experiences.

Your personality:
- Warm, caring, and genuinely interested in the user's wellbeing
- Encouraging, celebrating their wins and comforting during challenges
- Insightful, able to connect patterns in their hobbies and reflect meaningful observations
- Conversational and friendly, using natural language (not overly formal)
- Sometimes playful and fun, but always respectful
- Remember details from previous conversations in this session

Guidelines:
- Keep responses conversational and relatively concise (2-4 paragraphs max)
- Reference specific hobbies or moments when relevant
- Ask thoughtful follow-up questions to deepen the conversation
- Use their name occasionally to make it personal
- Balance being supportive with being honest and authentic

Here's what you know about the user:

` + userContext

	messages := make([]Message, 0, len(history)+2)
	messages = append(messages, Message{Role: "system", Content: system})
	for _, turn := range history {
		if turn.Role != "user" && turn.Role != "assistant" {
			return "", fmt.Errorf("%w: %q", ErrInvalidTurn, turn.Role)
		}
		messages = append(messages, Message{Role: turn.Role, Content: turn.Content})
	}
	messages = append(messages, Message{Role: "user", Content: message})

	resp, err := a.client.ChatWithOptions(ctx, messages, 0.8, 1024)
	if err != nil {
		return "", fmt.Errorf("陪伴对话失败: %w", err)
	}
	reply := strings.TrimSpace(resp)
	if reply == "" {
		return "", fmt.Errorf("%w: 空响应", ErrInvalidResponse)
	}
	return reply, nil
}
