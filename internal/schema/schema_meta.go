package schema

import "time"

// SchemaMeta 单行表（ID=1），记录已执行到的迁移版本
type SchemaMeta struct {
	ID            int       `gorm:"primaryKey"`
	SchemaVersion int       `gorm:"not null"`
	LastStep      string    `gorm:"size:128"` // 最近一次执行的迁移说明
	CreatedAt     time.Time `gorm:"autoCreateTime"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime"`
}

func (SchemaMeta) TableName() string {
	return "schema_meta"
}

// AllModels 业务表，迁移与测试共用
func AllModels() []any {
	return []any{
		&Hobby{},
		&ActivityLog{},
		&Reflection{},
		&Moment{},
		&Profile{},
		&DailyQuote{},
	}
}
