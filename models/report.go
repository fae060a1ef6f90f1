package models

import (
	"time"

	"gorm.io/gorm"
)

// Report 报表记录，指向落盘的 CSV 文件
type Report struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	UserID    uint           `json:"user_id" gorm:"index;not null"`
	Type      string         `json:"type" gorm:"size:50;not null"`
	Range     string         `json:"range" gorm:"size:50"`
	FilePath  string         `json:"file_path" gorm:"size:255"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
	User      User           `json:"-" gorm:"foreignKey:UserID"`
}

func (Report) TableName() string {
	return "reports"
}
