// Package sm2 implements the SuperMemo-2 scheduling variant used for card
// reviews. Every function is pure: the current time is always an explicit
// parameter and malformed numeric inputs are clamped, never rejected.
package sm2

import (
	"math"
	"time"

	"github.com/ymatsuda/studycards/internal/models"
)

const (
	// MinEaseFactor is the lower bound the ease factor can never drop below.
	MinEaseFactor = 1.3
	// InitialEaseFactor is the ease assigned to a card before its first review.
	InitialEaseFactor = 2.5
	// PassThreshold is the adjusted quality required to keep repetition
	// progress; below it the interval and review count reset.
	PassThreshold = 3

	firstInterval  = 1
	secondInterval = 6
)

// Result is the scheduling outcome of a single review.
type Result struct {
	IntervalDays   int
	EaseFactor     float64
	ReviewCount    int
	NextReviewDate time.Time
}

// AdjustQuality penalizes perceived recall quality by one point per hint
// shown. Quality is clamped to [0,5] and hints to >=0 first.
func AdjustQuality(quality, hintsShown int) int {
	quality = clampQuality(quality)
	if hintsShown < 0 {
		hintsShown = 0
	}
	adjusted := quality - hintsShown
	if adjusted < 0 {
		return 0
	}
	return adjusted
}

// NextEaseFactor applies the SM-2 ease update
// EF' = EF + (0.1 - (5-q)*(0.08 + (5-q)*0.02)), floored at MinEaseFactor.
func NextEaseFactor(quality int, previousEase float64) float64 {
	q := float64(clampQuality(quality))
	ease := previousEase + (0.1 - (5-q)*(0.08+(5-q)*0.02))
	if ease < MinEaseFactor {
		return MinEaseFactor
	}
	return ease
}

// NextInterval returns the review interval in days for the given review
// count: 1 day for the first review, 6 for the second, then the previous
// interval scaled by the ease factor.
func NextInterval(reviewCount, previousInterval int, easeFactor float64) int {
	switch reviewCount {
	case 1:
		return firstInterval
	case 2:
		return secondInterval
	default:
		return int(math.Round(float64(previousInterval) * easeFactor))
	}
}

// Schedule computes the full outcome of one review. A failed review
// (adjusted quality below PassThreshold) resets the interval and review
// count to 1; the ease factor still follows the formula.
func Schedule(quality, hintsShown, previousInterval int, previousEase float64, reviewCount int, now time.Time) Result {
	adjusted := AdjustQuality(quality, hintsShown)
	ease := NextEaseFactor(adjusted, previousEase)

	count := reviewCount + 1
	interval := firstInterval
	if adjusted < PassThreshold {
		count = 1
	} else {
		interval = NextInterval(count, previousInterval, ease)
	}

	return Result{
		IntervalDays:   interval,
		EaseFactor:     ease,
		ReviewCount:    count,
		NextReviewDate: DayStart(now).AddDate(0, 0, interval),
	}
}

// CreateInitialProgress returns the default-constructed state for a card
// that has never been reviewed.
func CreateInitialProgress(cardID string, now time.Time) models.Progress {
	return models.Progress{
		CardID:         cardID,
		LastReviewedAt: now,
		ReviewCount:    0,
		CorrectCount:   0,
		IntervalDays:   firstInterval,
		EaseFactor:     InitialEaseFactor,
		NextReviewDate: DayStart(now).AddDate(0, 0, firstInterval),
		LastQuality:    0,
	}
}

// ApplyReview advances a card's learning state after one review.
func ApplyReview(p models.Progress, quality int, isCorrect bool, hintsShown int, now time.Time) models.Progress {
	r := Schedule(quality, hintsShown, p.IntervalDays, p.EaseFactor, p.ReviewCount, now)

	p.ReviewCount = r.ReviewCount
	if isCorrect {
		p.CorrectCount++
	}
	p.IntervalDays = r.IntervalDays
	p.EaseFactor = r.EaseFactor
	p.NextReviewDate = r.NextReviewDate
	p.LastReviewedAt = now
	p.LastQuality = clampQuality(quality)
	return p
}

// IsDue reports whether the card's next review date has arrived, comparing
// at day granularity.
func IsDue(p models.Progress, now time.Time) bool {
	return !DayStart(p.NextReviewDate).After(DayStart(now))
}

// IsNew reports whether the card has never been reviewed. A missing
// progress record counts as new.
func IsNew(p *models.Progress) bool {
	return p == nil || p.ReviewCount == 0
}

// MasteryLevel buckets a card's state. A single failed review resets the
// review count and therefore demotes a mastered card back to learning even
// when its ease factor stays above 2.0.
func MasteryLevel(p models.Progress) models.Mastery {
	if p.ReviewCount == 0 {
		return models.MasteryBeginner
	}
	if p.EaseFactor >= 2.0 && p.ReviewCount >= 3 {
		return models.MasteryMastered
	}
	return models.MasteryLearning
}

// DayStart normalizes a timestamp to midnight in its own location.
func DayStart(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func clampQuality(q int) int {
	if q < 0 {
		return 0
	}
	if q > 5 {
		return 5
	}
	return q
}
