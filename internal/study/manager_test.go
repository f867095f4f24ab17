package study_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apperrors "github.com/ymatsuda/studycards/internal/errors"
	"github.com/ymatsuda/studycards/internal/models"
	"github.com/ymatsuda/studycards/internal/repository"
	"github.com/ymatsuda/studycards/internal/repository/memory"
	"github.com/ymatsuda/studycards/internal/study"
)

func newManager() (*study.Manager, repository.ProgressRepository, repository.SessionRepository) {
	progress := memory.NewProgressStore()
	sessions := memory.NewSessionStore()
	return study.NewManager(progress, sessions), progress, sessions
}

func startSession(t *testing.T, sessions repository.SessionRepository, startedAt time.Time) models.Session {
	t.Helper()
	s := models.Session{ID: "session-1", StartedAt: startedAt, Reviewed: []models.ReviewEvent{}}
	require.NoError(t, sessions.Append(context.Background(), s))
	return s
}

func TestRecordReview_AppendsAndRecomputes(t *testing.T) {
	ctx := context.Background()
	manager, _, sessions := newManager()
	startSession(t, sessions, now)

	first := models.NewReviewEvent("card-1", 5, 12.0, 0, now)
	updated, _, err := manager.RecordReview(ctx, "session-1", first, now)
	require.NoError(t, err)
	assert.Equal(t, 1, updated.TotalAnswers)
	assert.Equal(t, 1, updated.CorrectAnswers)
	assert.Equal(t, 12.0, updated.AverageResponseTime)

	second := models.NewReviewEvent("card-2", 1, 4.0, 0, now)
	updated, _, err = manager.RecordReview(ctx, "session-1", second, now)
	require.NoError(t, err)
	assert.Equal(t, 2, updated.TotalAnswers)
	assert.Equal(t, 1, updated.CorrectAnswers, "quality 1 is incorrect")
	assert.Equal(t, 8.0, updated.AverageResponseTime)

	require.Len(t, updated.Reviewed, 2)
	assert.Equal(t, "card-1", updated.Reviewed[0].CardID, "event order is append-only")
	assert.Equal(t, "card-2", updated.Reviewed[1].CardID)
}

func TestRecordReview_CreatesProgressLazily(t *testing.T) {
	ctx := context.Background()
	manager, progress, sessions := newManager()
	startSession(t, sessions, now)

	ev := models.NewReviewEvent("card-1", 5, 3.0, 0, now)
	_, p, err := manager.RecordReview(ctx, "session-1", ev, now)
	require.NoError(t, err)

	require.NotNil(t, p)
	assert.Equal(t, 1, p.ReviewCount)
	assert.Equal(t, 1, p.CorrectCount)
	assert.InDelta(t, 2.6, p.EaseFactor, 1e-9)
	assert.Equal(t, 1, p.IntervalDays)

	stored, err := progress.Get(ctx, "card-1")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, *p, *stored, "session log and progress advance together")
}

func TestRecordReview_AdvancesExistingProgress(t *testing.T) {
	ctx := context.Background()
	manager, progress, sessions := newManager()
	startSession(t, sessions, now)

	require.NoError(t, progress.Put(ctx, models.Progress{
		CardID:         "card-1",
		ReviewCount:    1,
		CorrectCount:   1,
		IntervalDays:   1,
		EaseFactor:     2.6,
		NextReviewDate: now,
		LastQuality:    5,
	}))

	ev := models.NewReviewEvent("card-1", 4, 3.0, 0, now)
	_, p, err := manager.RecordReview(ctx, "session-1", ev, now)
	require.NoError(t, err)
	assert.Equal(t, 2, p.ReviewCount)
	assert.Equal(t, 6, p.IntervalDays)
}

func TestRecordReview_UnknownSession(t *testing.T) {
	manager, _, _ := newManager()

	_, _, err := manager.RecordReview(context.Background(), "missing", models.NewReviewEvent("card-1", 5, 1.0, 0, now), now)
	require.Error(t, err)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrCodeNotFound, appErr.Code)
}

func TestRecordReview_AcceptedOnEndedSession(t *testing.T) {
	ctx := context.Background()
	manager, _, sessions := newManager()
	startSession(t, sessions, now)

	_, err := manager.EndSession(ctx, "session-1", now.Add(10*time.Minute))
	require.NoError(t, err)

	// Matches the reference behavior: late events are still appended.
	updated, _, err := manager.RecordReview(ctx, "session-1", models.NewReviewEvent("card-1", 3, 2.0, 0, now), now)
	require.NoError(t, err)
	assert.Equal(t, 1, updated.TotalAnswers)
	assert.NotNil(t, updated.EndedAt)
}

func TestEndSession_Idempotent(t *testing.T) {
	ctx := context.Background()
	manager, _, sessions := newManager()
	startSession(t, sessions, now)

	endedAt := now.Add(25 * time.Minute)
	first, err := manager.EndSession(ctx, "session-1", endedAt)
	require.NoError(t, err)
	require.NotNil(t, first.EndedAt)
	assert.True(t, first.EndedAt.Equal(endedAt))

	// A later call must not overwrite the original end time.
	again, err := manager.EndSession(ctx, "session-1", endedAt.Add(time.Hour))
	require.NoError(t, err)
	require.NotNil(t, again.EndedAt)
	assert.True(t, again.EndedAt.Equal(endedAt))
}

func TestEndSession_UnknownSession(t *testing.T) {
	manager, _, _ := newManager()

	_, err := manager.EndSession(context.Background(), "missing", now)
	require.Error(t, err)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrCodeNotFound, appErr.Code)
}

func TestSessionStatsFor(t *testing.T) {
	endedAt := now.Add(10 * time.Minute)
	session := models.Session{
		ID:        "session-1",
		StartedAt: now,
		EndedAt:   &endedAt,
		Reviewed: []models.ReviewEvent{
			models.NewReviewEvent("card-1", 5, 10.0, 0, now),
			models.NewReviewEvent("card-2", 2, 20.0, 1, now),
			models.NewReviewEvent("card-3", 5, 30.0, 2, now),
		},
	}

	stats := study.SessionStatsFor(session)
	assert.Equal(t, 600.0, stats.TotalTime)
	assert.Equal(t, 3, stats.TotalCards)
	assert.Equal(t, 2, stats.CorrectCount)
	assert.Equal(t, 20.0, stats.AverageResponseTime)
	assert.Equal(t, 3, stats.HintsUsed)
	assert.Equal(t, map[int]int{5: 2, 2: 1}, stats.QualityDistribution)
}

func TestSessionStatsFor_OpenSession(t *testing.T) {
	stats := study.SessionStatsFor(models.Session{ID: "session-1", StartedAt: now})
	assert.Zero(t, stats.TotalTime, "open sessions have no duration yet")
	assert.Zero(t, stats.TotalCards)
}
