package sm2_test

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ymatsuda/studycards/internal/models"
	"github.com/ymatsuda/studycards/internal/sm2"
)

var now = time.Date(2026, time.March, 10, 14, 30, 0, 0, time.UTC)

func TestAdjustQuality(t *testing.T) {
	assert.Equal(t, 5, sm2.AdjustQuality(5, 0))
	assert.Equal(t, 3, sm2.AdjustQuality(5, 2))
	assert.Equal(t, 0, sm2.AdjustQuality(2, 4), "penalty floors at zero")
	assert.Equal(t, 5, sm2.AdjustQuality(9, 0), "quality clamps to 5")
	assert.Equal(t, 0, sm2.AdjustQuality(-3, 0), "quality clamps to 0")
	assert.Equal(t, 4, sm2.AdjustQuality(4, -2), "negative hints clamp to 0")
}

func TestNextEaseFactor_Floor(t *testing.T) {
	ease := 1.35
	for q := 0; q <= 2; q++ {
		ease = sm2.NextEaseFactor(q, ease)
		assert.GreaterOrEqual(t, ease, sm2.MinEaseFactor)
	}
	assert.Equal(t, sm2.MinEaseFactor, sm2.NextEaseFactor(0, 1.3))
}

func TestNextInterval(t *testing.T) {
	assert.Equal(t, 1, sm2.NextInterval(1, 10, 2.5))
	assert.Equal(t, 6, sm2.NextInterval(2, 1, 2.5))
	assert.Equal(t, 16, sm2.NextInterval(3, 6, 2.7), "round(6*2.7)=16")
	assert.Equal(t, 15, sm2.NextInterval(4, 6, 2.5))
}

func TestCreateInitialProgress(t *testing.T) {
	p := sm2.CreateInitialProgress("card-1", now)

	assert.Equal(t, "card-1", p.CardID)
	assert.Equal(t, 0, p.ReviewCount)
	assert.Equal(t, 0, p.CorrectCount)
	assert.Equal(t, 1, p.IntervalDays)
	assert.Equal(t, 2.5, p.EaseFactor)
	assert.Equal(t, 0, p.LastQuality)
	assert.Equal(t, time.Date(2026, time.March, 11, 0, 0, 0, 0, time.UTC), p.NextReviewDate,
		"next review is day-normalized now + 1 day")
	assert.True(t, sm2.IsNew(&p))
	assert.Equal(t, models.MasteryBeginner, sm2.MasteryLevel(p))
}

// The five-step scenario walks one card through perfect recalls, a failure,
// and a hint-penalized pass, checking the exact numbers at each step.
func TestApplyReview_Scenario(t *testing.T) {
	p := sm2.CreateInitialProgress("card-1", now)

	// A: first review, quality 5
	p = sm2.ApplyReview(p, 5, true, 0, now)
	require.InDelta(t, 2.6, p.EaseFactor, 1e-9)
	require.Equal(t, 1, p.ReviewCount)
	require.Equal(t, 1, p.IntervalDays)
	require.Equal(t, 1, p.CorrectCount)

	// B: quality 4 leaves the ease unchanged, second interval is 6 days
	p = sm2.ApplyReview(p, 4, true, 0, now)
	require.InDelta(t, 2.6, p.EaseFactor, 1e-9)
	require.Equal(t, 2, p.ReviewCount)
	require.Equal(t, 6, p.IntervalDays)

	// C: quality 5 grows the interval by the new ease factor
	p = sm2.ApplyReview(p, 5, true, 0, now)
	require.InDelta(t, 2.7, p.EaseFactor, 1e-9)
	require.Equal(t, 3, p.ReviewCount)
	require.Equal(t, 16, p.IntervalDays)
	require.Equal(t, models.MasteryMastered, sm2.MasteryLevel(p))

	// D: a failed review resets interval and count but the ease follows the
	// formula, and the card drops back to learning
	p = sm2.ApplyReview(p, 2, false, 0, now)
	require.InDelta(t, 2.38, p.EaseFactor, 1e-9)
	require.Equal(t, 1, p.ReviewCount)
	require.Equal(t, 1, p.IntervalDays)
	require.Equal(t, 3, p.CorrectCount, "correct count never decreases")
	require.Equal(t, models.MasteryLearning, sm2.MasteryLevel(p))

	// E: quality 5 with two hints adjusts to 3, which still passes
	p = sm2.ApplyReview(p, 5, true, 2, now)
	require.Equal(t, 2, p.ReviewCount)
	require.Equal(t, 6, p.IntervalDays, "second successful review gets the 6-day interval")
	require.Equal(t, 5, p.LastQuality, "raw quality is recorded, not the adjusted one")
}

func TestApplyReview_HintPenaltyCanFail(t *testing.T) {
	p := sm2.CreateInitialProgress("card-1", now)
	p = sm2.ApplyReview(p, 5, true, 0, now)
	p = sm2.ApplyReview(p, 4, true, 0, now)

	// quality 4 with 2 hints adjusts to 2, below the pass threshold
	p = sm2.ApplyReview(p, 4, true, 2, now)
	assert.Equal(t, 1, p.ReviewCount)
	assert.Equal(t, 1, p.IntervalDays)
}

func TestApplyReview_Invariants(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	p := sm2.CreateInitialProgress("card-1", now)
	at := now

	for i := 0; i < 500; i++ {
		quality := rng.Intn(6)
		hints := rng.Intn(4)
		prevCorrect := p.CorrectCount
		p = sm2.ApplyReview(p, quality, quality >= 3, hints, at)

		require.GreaterOrEqual(t, p.EaseFactor, sm2.MinEaseFactor)
		require.GreaterOrEqual(t, p.IntervalDays, 1)
		require.GreaterOrEqual(t, p.ReviewCount, 1)
		require.GreaterOrEqual(t, p.CorrectCount, prevCorrect)
		require.LessOrEqual(t, p.CorrectCount, 500)
		require.Equal(t, sm2.DayStart(at).AddDate(0, 0, p.IntervalDays), p.NextReviewDate)

		at = at.Add(time.Duration(rng.Intn(48)) * time.Hour)
	}
}

func TestIsDue_DayBoundary(t *testing.T) {
	p := sm2.CreateInitialProgress("card-1", now)
	// next review: March 11 at midnight

	lateTonight := time.Date(2026, time.March, 10, 23, 59, 0, 0, time.UTC)
	assert.False(t, sm2.IsDue(p, lateTonight), "not due before midnight")

	justPastMidnight := time.Date(2026, time.March, 11, 0, 0, 1, 0, time.UTC)
	assert.True(t, sm2.IsDue(p, justPastMidnight), "due right after midnight")

	nextWeek := now.AddDate(0, 0, 7)
	assert.True(t, sm2.IsDue(p, nextWeek))
}

func TestIsNew(t *testing.T) {
	assert.True(t, sm2.IsNew(nil), "missing progress counts as new")

	p := sm2.CreateInitialProgress("card-1", now)
	assert.True(t, sm2.IsNew(&p))

	p = sm2.ApplyReview(p, 5, true, 0, now)
	assert.False(t, sm2.IsNew(&p))
}

func TestMasteryLevel_RequiresBothConditions(t *testing.T) {
	p := models.Progress{ReviewCount: 5, EaseFactor: 1.9}
	assert.Equal(t, models.MasteryLearning, sm2.MasteryLevel(p), "low ease stays learning")

	p = models.Progress{ReviewCount: 2, EaseFactor: 2.6}
	assert.Equal(t, models.MasteryLearning, sm2.MasteryLevel(p), "too few reviews stays learning")

	p = models.Progress{ReviewCount: 3, EaseFactor: 2.0}
	assert.Equal(t, models.MasteryMastered, sm2.MasteryLevel(p))
}
