package schema

import "time"

// Reflection 用户反思记录
type Reflection struct {
	ID             string    `gorm:"primaryKey;size:36" json:"id"`
	UserID         string    `gorm:"size:64;not null;index" json:"user_id"`
	Text           string    `gorm:"type:text;not null" json:"text"`
	AISummary      string    `gorm:"type:text" json:"ai_summary"`
	Emotion        string    `gorm:"size:50" json:"emotion"`
	SentimentScore float64   `json:"sentiment_score"` // -1 ~ 1
	CreatedAt      time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

// TableName 指定表名
func (Reflection) TableName() string {
	return "reflections"
}

// Moment 开心时刻
type Moment struct {
	ID             string    `gorm:"primaryKey;size:36" json:"id"`
	UserID         string    `gorm:"size:64;not null;index" json:"user_id"`
	Text           string    `gorm:"type:text" json:"text"`
	ImagePath      string    `gorm:"size:500" json:"image_path,omitempty"`
	Emotion        string    `gorm:"size:50" json:"emotion"`
	SentimentScore float64   `json:"sentiment_score"`
	CreatedAt      time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

// TableName 指定表名
func (Moment) TableName() string {
	return "moments"
}
