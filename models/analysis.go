package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Analysis stores one already-computed sentiment analysis for a post. The
// three sentiment components are fractions that callers are expected to
// deliver normalized; no scoring happens in this service.
type Analysis struct {
	ID                string    `json:"id" gorm:"primaryKey;size:36"`
	PostID            string    `json:"post_id" gorm:"not null;size:36;index"`
	UserID            uint      `json:"user_id" gorm:"not null;index"`
	SentimentPositive float64   `json:"sentiment_positive"`
	SentimentNegative float64   `json:"sentiment_negative"`
	SentimentNeutral  float64   `json:"sentiment_neutral"`
	ConfidenceScore   float64   `json:"confidence_score"`
	Keywords          []string  `json:"keywords" gorm:"type:jsonb;serializer:json"`
	AnalysisModel     string    `json:"analysis_model" gorm:"size:255"`
	Summary           string    `json:"summary" gorm:"size:4096"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func (a *Analysis) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}
