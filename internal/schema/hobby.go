package schema

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

// Hobby 用户追踪的爱好（经验账本的宿主）
// 数据量级：每用户数十条
type Hobby struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	UserID      string    `gorm:"size:64;not null;index;uniqueIndex:uniq_user_hobby,priority:1" json:"user_id"`
	Name        string    `gorm:"size:200;not null;uniqueIndex:uniq_user_hobby,priority:2" json:"name"` // AI 格式化后的名称（含 emoji）
	Category    string    `gorm:"size:50;index" json:"category"`                                        // Creative/Physical/Intellectual/Social/Other
	Description string    `gorm:"type:text" json:"description"`
	Level       int       `gorm:"not null;default:0" json:"level"` // 派生字段：只随 Exp 重算
	Exp         int64     `gorm:"not null;default:0" json:"exp"`   // 累计经验，只增不减
	Meta        HobbyMeta `gorm:"type:text" json:"meta"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 指定表名
func (Hobby) TableName() string {
	return "hobbies"
}

// HobbyMeta 爱好元信息
type HobbyMeta struct {
	Subskills       []string `json:"subskills,omitempty"`
	LevelThresholds []int64  `json:"level_thresholds,omitempty"` // 创建时固化的阈值表，可为空
}

// Value 实现 driver.Valuer 接口
func (m HobbyMeta) Value() (driver.Value, error) {
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan 实现 sql.Scanner 接口
func (m *HobbyMeta) Scan(value interface{}) error {
	*m = HobbyMeta{}
	return scanJSON(value, m)
}
