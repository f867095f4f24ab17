package models

import "time"

// ReviewEvent records a single answered card. Immutable once appended to a
// session.
type ReviewEvent struct {
	CardID              string    `json:"card_id"`
	Quality             int       `json:"quality"`
	IsCorrect           bool      `json:"is_correct"`
	ReviewedAt          time.Time `json:"reviewed_at"`
	ResponseTimeSeconds float64   `json:"response_time_seconds"`
	HintsShown          int       `json:"hints_shown"`
}

// NewReviewEvent builds an event from a learner's answer. Correctness is
// derived from the raw quality score: 3 and above counts as correct.
func NewReviewEvent(cardID string, quality int, responseTimeSeconds float64, hintsShown int, reviewedAt time.Time) ReviewEvent {
	return ReviewEvent{
		CardID:              cardID,
		Quality:             quality,
		IsCorrect:           quality >= 3,
		ReviewedAt:          reviewedAt,
		ResponseTimeSeconds: responseTimeSeconds,
		HintsShown:          hintsShown,
	}
}

// Session is one bounded sequence of card reviews. The counters are derived
// from the event list and recomputed on every append.
type Session struct {
	ID                  string        `json:"id"`
	StartedAt           time.Time     `json:"started_at"`
	EndedAt             *time.Time    `json:"ended_at,omitempty"`
	Reviewed            []ReviewEvent `json:"reviewed"`
	CorrectAnswers      int           `json:"correct_answers"`
	TotalAnswers        int           `json:"total_answers"`
	AverageResponseTime float64       `json:"average_response_time"`
}

// Ended reports whether the session has been closed. An abandoned session
// simply never ends and is excluded from ended-only aggregations.
func (s *Session) Ended() bool {
	return s.EndedAt != nil
}
