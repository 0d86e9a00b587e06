package ai

import (
	"context"
	"fmt"
	"strings"
)

// Analyzer 封装 RE:ME 各类分析提示词
type Analyzer struct {
	client *Client
}

// NewAnalyzer 创建分析器
func NewAnalyzer(client *Client) *Analyzer {
	return &Analyzer{client: client}
}

// IsConfigured 底层客户端是否可用
func (a *Analyzer) IsConfigured() bool {
	return a != nil && a.client.IsConfigured()
}

// ActivityInsight 单条活动解读
type ActivityInsight struct {
	Summary       string   `json:"summary"`
	Skills        []string `json:"skills"`
	SuggestedNext []string `json:"suggested_next"`
}

// AnalyzeActivity 分析单条爱好活动
func (a *Analyzer) AnalyzeActivity(ctx context.Context, hobbyName, text string) (*ActivityInsight, error) {
	messages := []Message{
		{Role: "system", Content: `You are an expert at analyzing hobby activities and providing encouraging feedback.
Analyze the user's activity and return a JSON object with:
- summary: A brief, encouraging summary (1-2 sentences)
- skills: Array of specific skills demonstrated (e.g., ["composition", "lighting"] for photography)
- suggested_next: Array of 2-3 suggestions for next activities

Return ONLY valid JSON, no markdown.`},
		{Role: "user", Content: fmt.Sprintf("Hobby: %s\nActivity: %s\n\nPlease analyze this activity.", hobbyName, text)},
	}

	resp, err := a.client.Chat(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("活动分析失败: %w", err)
	}
	insight, err := ParseStructuredResponse[ActivityInsight](resp)
	if err != nil {
		return nil, err
	}
	return &insight, nil
}

// SplitCheck 复合活动拆分建议
type SplitCheck struct {
	ShouldSplit bool     `json:"should_split"`
	Activities  []string `json:"activities"`
	Confidence  float64  `json:"confidence"`
}

// CheckSplit 判断一段文本是否描述了多个独立活动
func (a *Analyzer) CheckSplit(ctx context.Context, hobbyName, text string) (*SplitCheck, error) {
	messages := []Message{
		{Role: "system", Content: `You decide whether a hobby log entry describes several distinct activities.
Return a JSON object with:
- should_split: true only if the text clearly contains two or more separate activities
- activities: Array of the separate activity descriptions, each rewritten as a standalone sentence (empty if should_split is false)
- confidence: Float from 0 to 1

Return ONLY valid JSON, no markdown.`},
		{Role: "user", Content: fmt.Sprintf("Hobby: %s\nEntry: %s", hobbyName, text)},
	}

	resp, err := a.client.ChatWithOptions(ctx, messages, 0.2, 600)
	if err != nil {
		return nil, fmt.Errorf("拆分检测失败: %w", err)
	}
	check, err := ParseStructuredResponse[SplitCheck](resp)
	if err != nil {
		return nil, err
	}
	return &check, nil
}

// HobbyProfile 新爱好的元信息
type HobbyProfile struct {
	FormattedName string   `json:"formatted_name"`
	Category      string   `json:"category"`
	Description   string   `json:"description"`
	Subskills     []string `json:"subskills"`
}

// DescribeHobby 生成爱好分类、描述与子技能
func (a *Analyzer) DescribeHobby(ctx context.Context, name string) (*HobbyProfile, error) {
	messages := []Message{
		{Role: "system", Content: `You are an expert at categorizing hobbies and defining skill progression.
Return a JSON object with:
- formatted_name: Properly capitalized hobby name with suitable emoji prefix (e.g., "🎸 Guitar", "📸 Photography", "🍳 Cooking")
- category: One of "Creative", "Physical", "Intellectual", "Social", "Other"
- description: A brief, encouraging description (1-2 sentences)
- subskills: Array of 5-7 specific subskills to develop

Return ONLY valid JSON, no markdown.`},
		{Role: "user", Content: "Hobby name: " + name},
	}

	resp, err := a.client.Chat(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("生成爱好信息失败: %w", err)
	}
	profile, err := ParseStructuredResponse[HobbyProfile](resp)
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// ReflectionInsight 反思解读
type ReflectionInsight struct {
	AISummary      string  `json:"ai_summary"`
	Emotion        string  `json:"emotion"`
	SentimentScore float64 `json:"sentiment_score"`
}

// AnalyzeReflection 分析反思的情绪与倾向
func (a *Analyzer) AnalyzeReflection(ctx context.Context, text string) (*ReflectionInsight, error) {
	messages := []Message{
		{Role: "system", Content: `You are a compassionate reflection analyzer. Analyze the user's reflection and return JSON with:
- ai_summary: A warm, empathetic summary (2-3 sentences)
- emotion: Primary emotion detected (e.g., "calm", "joyful", "contemplative", "grateful")
- sentiment_score: Float from -1 (negative) to 1 (positive)

Return ONLY valid JSON, no markdown.`},
		{Role: "user", Content: text},
	}

	resp, err := a.client.Chat(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("反思分析失败: %w", err)
	}
	insight, err := ParseStructuredResponse[ReflectionInsight](resp)
	if err != nil {
		return nil, err
	}
	return &insight, nil
}

// MomentInsight 开心时刻情绪
type MomentInsight struct {
	Emotion        string  `json:"emotion"`
	SentimentScore float64 `json:"sentiment_score"`
}

// AnalyzeMoment 分析开心时刻的情绪
func (a *Analyzer) AnalyzeMoment(ctx context.Context, text string) (*MomentInsight, error) {
	messages := []Message{
		{Role: "system", Content: `Analyze this happy moment and return JSON with:
- emotion: Primary emotion (e.g., "joyful", "grateful", "peaceful", "excited")
- sentiment_score: Float from -1 (negative) to 1 (positive)

Return ONLY valid JSON, no markdown.`},
		{Role: "user", Content: text},
	}

	resp, err := a.client.ChatWithOptions(ctx, messages, 0.3, 200)
	if err != nil {
		return nil, fmt.Errorf("时刻分析失败: %w", err)
	}
	insight, err := ParseStructuredResponse[MomentInsight](resp)
	if err != nil {
		return nil, err
	}
	return &insight, nil
}

// Recommendation 成长建议
type Recommendation struct {
	Recommendations   []string `json:"recommendations"`
	MotivationalQuote string   `json:"motivational_quote"`
}

// Recommend 基于历史记忆给出建议
func (a *Analyzer) Recommend(ctx context.Context, memories []string, question string) (*Recommendation, error) {
	journey := "No previous activities found."
	if len(memories) > 0 {
		var b strings.Builder
		for _, m := range memories {
			b.WriteString("- " + strings.TrimSpace(m) + "\n")
		}
		journey = b.String()
	}

	messages := []Message{
		{Role: "system", Content: "You are a supportive growth coach. Return JSON with: recommendations (array of 3-5 specific suggestions), motivational_quote (encouraging message). Return ONLY valid JSON."},
		{Role: "user", Content: fmt.Sprintf("Recent journey:\n%s\nQuestion: %s", journey, question)},
	}

	resp, err := a.client.Chat(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("生成建议失败: %w", err)
	}
	rec, err := ParseStructuredResponse[Recommendation](resp)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// QuoteRequest 每日语录上下文
type QuoteRequest struct {
	DisplayName    string
	MBTI           string
	Hobbies        []string // "🎸 Guitar (Creative, Lv 3)"
	RecentEmotions []string
	AvgSentiment   float64
	RecentMemories []string
}

// Quote 每日语录
type Quote struct {
	Text        string `json:"text"`
	Attribution string `json:"attribution"`
}

// GenerateQuote 生成个性化每日语录
func (a *Analyzer) GenerateQuote(ctx context.Context, req *QuoteRequest) (*Quote, error) {
	name := orDefault(req.DisplayName, "Friend")
	mbti := orDefault(req.MBTI, "Unknown")
	hobbies := orDefault(strings.Join(req.Hobbies, ", "), "exploring new interests")
	emotions := orDefault(strings.Join(req.RecentEmotions, ", "), "calm")
	memories := orDefault(strings.Join(req.RecentMemories, "; "), "beginning their journey")

	mood := "balanced and steady"
	switch {
	case req.AvgSentiment > 0.3:
		mood = "positive and growing"
	case req.AvgSentiment < -0.3:
		mood = "reflective and resilient"
	}

	messages := []Message{
		{Role: "system", Content: `You are a wise and encouraging mentor.
Create ONE short inspirational quote (1-2 sentences) that resonates with the user's journey, interests, and emotional state.
- Prefer quotes from famous people, authors, or movies.
- Only if no suitable existing quote is found, you may generate a new one. In that case, set "attribution" to "RE:ME".
- Return ONLY a valid JSON object: {"text": "The quote here", "attribution": "Author, movie, or RE:ME"}`},
		{Role: "user", Content: fmt.Sprintf(`User Profile:
- Name: %s
- MBTI: %s
- Hobbies: %s
- Recent emotions: %s
- Overall sentiment: %s
- Recent activities: %s

Generate a unique personalized quote for this person in JSON format.`, name, mbti, hobbies, emotions, mood, memories)},
	}

	resp, err := a.client.ChatWithOptions(ctx, messages, 0.8, 300)
	if err != nil {
		return nil, fmt.Errorf("生成语录失败: %w", err)
	}
	quote, err := ParseStructuredResponse[Quote](resp)
	if err != nil {
		return nil, err
	}
	return &quote, nil
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
