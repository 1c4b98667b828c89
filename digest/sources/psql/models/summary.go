package models

import "time"

const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// TextSummary is a summarized article. Summary stays empty while Status is pending.
type TextSummary struct {
	ID           int       `json:"id" gorm:"primaryKey;autoIncrement"`
	URL          string    `json:"url" gorm:"type:text;not null"`
	Summary      string    `json:"summary" gorm:"type:text;not null;default:''"`
	Status       string    `json:"status" gorm:"type:varchar(16);not null;default:'pending';index"`
	ErrorMessage *string   `json:"error,omitempty" gorm:"type:text"`
	CreatedAt    time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time `json:"-" gorm:"autoUpdateTime"`
}

func (TextSummary) TableName() string {
	return "text_summaries"
}
