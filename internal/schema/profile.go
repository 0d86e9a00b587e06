package schema

import "time"

// Profile 用户资料（ID 即用户 ID）
type Profile struct {
	ID           string    `gorm:"primaryKey;size:64" json:"id"`
	DisplayName  string    `gorm:"size:100" json:"display_name"`
	MBTI         string    `gorm:"size:8" json:"mbti"`
	Age          int       `json:"age"`
	ReminderTime string    `gorm:"size:8" json:"reminder_time"` // HH:MM
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 指定表名
func (Profile) TableName() string {
	return "profiles"
}

// DailyQuote 每日语录缓存，(user_id, date) 唯一
type DailyQuote struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID      string    `gorm:"size:64;not null;uniqueIndex:uniq_user_date,priority:1" json:"user_id"`
	Date        string    `gorm:"size:10;not null;uniqueIndex:uniq_user_date,priority:2" json:"date"` // YYYY-MM-DD
	Text        string    `gorm:"type:text" json:"text"`
	Attribution string    `gorm:"size:200" json:"attribution"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 指定表名
func (DailyQuote) TableName() string {
	return "daily_quotes"
}
