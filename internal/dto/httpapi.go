package dto

// 注意：本包用于承载“对外契约”的 DTO（与前端/HTTP API 保持稳定）。
// 不要在这里放 GORM/持久化细节；内部持久化 schema 请见 internal/schema；业务逻辑收敛在 internal/service。

// ========== 爱好 ==========

type CreateHobbyRequestDTO struct {
	UserID         string `json:"user_id"`
	Name           string `json:"name"`
	PastExperience string `json:"past_experience,omitempty"`
	InitialLevel   int    `json:"initial_level,omitempty"`
}

type ProgressDTO struct {
	Level           int     `json:"level"`
	CurrentLevelExp int64   `json:"current_level_exp"`
	NextLevelExp    int64   `json:"next_level_exp"`
	Percent         float64 `json:"percent"`
}

type HobbyDTO struct {
	ID              string      `json:"id"`
	UserID          string      `json:"user_id"`
	Name            string      `json:"name"`
	Category        string      `json:"category"`
	Description     string      `json:"description"`
	Level           int         `json:"level"`
	Exp             int64       `json:"exp"`
	Subskills       []string    `json:"subskills"`
	LevelThresholds []int64     `json:"level_thresholds"`
	Progress        ProgressDTO `json:"progress"`
	CreatedAt       int64       `json:"created_at"` // ms
}

type CreateHobbyResponseDTO struct {
	Hobby      HobbyDTO           `json:"hobby"`
	Backfilled []ActivityBriefDTO `json:"backfilled,omitempty"`
}

// ========== 活动 ==========

type AnalyzeActivityRequestDTO struct {
	HobbyID    string   `json:"hobby_id"`
	UserID     string   `json:"user_id"`
	Text       string   `json:"text"`
	ImagePath  string   `json:"image_path,omitempty"`
	SplitTexts []string `json:"split_texts,omitempty"` // 用户确认后的拆分片段
	KeepWhole  bool     `json:"keep_whole,omitempty"`  // 用户拒绝拆分
}

type ActivityBriefDTO struct {
	Summary   string   `json:"summary"`
	Skills    []string `json:"skills"`
	ExpGained int64    `json:"exp_gained"`
}

// ActivityResultDTO 单条记录的返回
type ActivityResultDTO struct {
	Summary       string   `json:"summary"`
	Skills        []string `json:"skills"`
	ExpGained     int64    `json:"exp_gained"`
	NewLevel      int      `json:"new_level"`
	TotalExp      int64    `json:"total_exp"`
	SuggestedNext []string `json:"suggested_next"`
	LeveledUp     bool     `json:"leveled_up"`
}

// SplitResultDTO 已确认拆分的返回
type SplitResultDTO struct {
	Split          bool               `json:"split"`
	Activities     []ActivityBriefDTO `json:"activities"`
	TotalExpGained int64              `json:"total_exp_gained"`
	NewLevel       int                `json:"new_level"`
	TotalExp       int64              `json:"total_exp"`
	LeveledUp      bool               `json:"leveled_up"`
}

// SplitProposalDTO 拆分建议，前端确认后带 split_texts 重新提交
type SplitProposalDTO struct {
	ShouldSplit    bool     `json:"should_split"`
	CandidateTexts []string `json:"candidate_texts"`
	Activities     []string `json:"activities"` // 同 candidate_texts，兼容旧前端
	Confidence     float64  `json:"confidence"`
}

type ActivityLogDTO struct {
	ID        string   `json:"id"`
	HobbyID   string   `json:"hobby_id"`
	Text      string   `json:"text"`
	ImagePath string   `json:"image_path,omitempty"`
	Summary   string   `json:"summary"`
	Skills    []string `json:"skills"`
	ExpGained int64    `json:"exp_gained"`
	Source    string   `json:"source"`
	CreatedAt int64    `json:"created_at"`
}

// ========== 反思 / 时刻 ==========

type ReflectionRequestDTO struct {
	UserID string `json:"user_id"`
	Text   string `json:"text"`
}

type ReflectionDTO struct {
	ID             string  `json:"id"`
	AISummary      string  `json:"ai_summary"`
	Emotion        string  `json:"emotion"`
	SentimentScore float64 `json:"sentiment_score"`
	CreatedAt      int64   `json:"created_at"`
}

type MomentRequestDTO struct {
	UserID        string   `json:"user_id"`
	Text          string   `json:"text"`
	ImagePath     string   `json:"image_path,omitempty"`
	ManualEmotion *float64 `json:"manual_emotion,omitempty"` // -1 ~ 1
}

type MomentDTO struct {
	ID             string  `json:"id"`
	Text           string  `json:"text"`
	ImagePath      string  `json:"image_path,omitempty"`
	Emotion        string  `json:"emotion"`
	SentimentScore float64 `json:"sentiment_score"`
	CreatedAt      int64   `json:"created_at"`
}

// ========== 建议 / 语录 / 资料 ==========

type RecommendRequestDTO struct {
	UserID string `json:"user_id"`
	Prompt string `json:"prompt,omitempty"`
}

type RecommendResponseDTO struct {
	Recommendations   []string `json:"recommendations"`
	MotivationalQuote string   `json:"motivational_quote"`
	MemoriesUsed      int      `json:"memories_used"`
}

type QuoteRequestDTO struct {
	UserID  string `json:"user_id"`
	Refresh bool   `json:"refresh,omitempty"`
}

type QuoteDTO struct {
	Quote       string `json:"quote"`
	Attribution string `json:"attribution"`
	Date        string `json:"date"`
}

// ========== 旅程 / 新爱好推荐 / 陪伴 ==========

type UserRequestDTO struct {
	UserID string `json:"user_id"`
}

type JourneyStatsDTO struct {
	TotalHobbies     int     `json:"total_hobbies"`
	TotalActivities  int64   `json:"total_activities"`
	TotalMoments     int64   `json:"total_moments"`
	TotalReflections int64   `json:"total_reflections"`
	TotalLevel       int     `json:"total_level"`
	TotalExp         int64   `json:"total_exp"`
	AvgSentiment     float64 `json:"avg_sentiment"`
}

type ProfileSummaryDTO struct {
	Summary string          `json:"summary"`
	Stats   JourneyStatsDTO `json:"stats"`
}

type HobbySuggestionDTO struct {
	Name       string   `json:"name"`
	Category   string   `json:"category"`
	Difficulty string   `json:"difficulty"`
	Reason     string   `json:"reason"`
	Benefits   []string `json:"benefits"`
}

type HobbySuggestionsDTO struct {
	Recommendations []HobbySuggestionDTO `json:"recommendations"`
}

type ChatTurnDTO struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type CompanionChatRequestDTO struct {
	UserID              string        `json:"user_id"`
	Message             string        `json:"message"`
	ConversationHistory []ChatTurnDTO `json:"conversation_history,omitempty"`
}

type CompanionChatResponseDTO struct {
	Reply string `json:"reply"`
}

type ProfileDTO struct {
	ID           string `json:"id"`
	DisplayName  string `json:"display_name"`
	MBTI         string `json:"mbti"`
	Age          int    `json:"age"`
	ReminderTime string `json:"reminder_time"`
}

// ========== 等级表 ==========

type LevelThresholdDTO struct {
	Level int   `json:"level"`
	Exp   int64 `json:"exp"`
	Delta int64 `json:"delta"` // 与上一级的差值
}
