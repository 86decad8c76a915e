package models

import (
	"time"
)

// CompletionReport 资料完整度定时报告快照
type CompletionReport struct {
	ID                 string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Total              int64     `json:"total" gorm:"not null"`
	WithPhotos         float64   `json:"with_photos" gorm:"not null"`
	WithAdditionalInfo float64   `json:"with_additional_info" gorm:"not null"`
	AverageScore       float64   `json:"average_score" gorm:"not null"`
	Distribution       JSONB     `json:"distribution" gorm:"type:jsonb"`
	Publisher          string    `json:"publisher" gorm:"size:20"`
	CreatedAt          time.Time `json:"created_at" gorm:"not null;index"`
}

// TableName 表名
func (CompletionReport) TableName() string {
	return "completion_reports"
}
