package models

import "time"

// Progress is the per-card learning state. It is created lazily on the
// first review and mutated only by the scheduler's update step.
type Progress struct {
	CardID         string    `json:"card_id"`
	LastReviewedAt time.Time `json:"last_reviewed_at"`
	ReviewCount    int       `json:"review_count"`
	CorrectCount   int       `json:"correct_count"`
	IntervalDays   int       `json:"interval_days"`
	EaseFactor     float64   `json:"ease_factor"`
	NextReviewDate time.Time `json:"next_review_date"`
	LastQuality    int       `json:"last_quality"`
}

// Mastery buckets a card's learning state for reporting.
type Mastery string

const (
	MasteryBeginner Mastery = "beginner"
	MasteryLearning Mastery = "learning"
	MasteryMastered Mastery = "mastered"
)
