package entity

import (
	"time"

	"gorm.io/datatypes"
)

// Scan 扫描记录表实体
type Scan struct {
	ID         int64          `gorm:"primaryKey;column:id"`
	OwnerID    string         `gorm:"column:owner_id;index;size:64"`
	ImageURL   string         `gorm:"column:image_url;size:512"`
	Plant      string         `gorm:"column:plant;size:64"`
	Condition  string         `gorm:"column:condition;size:128"`
	Status     string         `gorm:"column:status;size:16;index"`
	Confidence float64        `gorm:"column:confidence"`
	FullReport datatypes.JSON `gorm:"column:full_report"`
	CreatedAt  time.Time      `gorm:"column:created_at"`
	UpdatedAt  time.Time      `gorm:"column:updated_at"`
}

// TableName 指定表名
func (Scan) TableName() string {
	return "scan_records"
}
