package schema

import "time"

// 活动来源
const (
	ActivitySourceLog      = "log"      // 用户日常记录
	ActivitySourceBackfill = "backfill" // 创建爱好时回填的过往经历（不计经验）
)

// ActivityLog 一条已记录的爱好活动
// 创建后不可变；拆分提交时每个片段一条。
type ActivityLog struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	UserID    string    `gorm:"size:64;not null;index" json:"user_id"`
	HobbyID   string    `gorm:"size:36;not null;index" json:"hobby_id"`
	Text      string    `gorm:"type:text;not null" json:"text"`
	ImagePath string    `gorm:"size:500" json:"image_path,omitempty"`
	AISummary string    `gorm:"type:text" json:"ai_summary"`
	AISkills  JSONArray `gorm:"type:text" json:"ai_skills"`
	ExpGained int64     `gorm:"not null;default:0" json:"exp_gained"`
	Source    string    `gorm:"size:16;not null;default:log" json:"source"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

// TableName 指定表名
func (ActivityLog) TableName() string {
	return "activity_logs"
}
