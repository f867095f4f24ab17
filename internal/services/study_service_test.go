package services_test

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	apperrors "github.com/ymatsuda/studycards/internal/errors"
	"github.com/ymatsuda/studycards/internal/models"
	"github.com/ymatsuda/studycards/internal/repository/memory"
	"github.com/ymatsuda/studycards/internal/services"
	"github.com/ymatsuda/studycards/internal/study"
	"github.com/ymatsuda/studycards/internal/testutil/mocks"
)

var now = time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)

func testCards(n int) []models.Card {
	cards := make([]models.Card, 0, n)
	for i := 0; i < n; i++ {
		cards = append(cards, models.Card{
			ID:         string(rune('a' + i)),
			Question:   "q",
			Answer:     "a",
			Category:   models.CategoryFundamentals,
			Difficulty: models.DifficultyBeginner,
		})
	}
	return cards
}

func TestStartSession_StoreError(t *testing.T) {
	progress := new(mocks.MockProgressRepository)
	sessions := new(mocks.MockSessionRepository)
	progress.On("GetAll", mock.Anything).Return(nil, errors.New("disk gone"))

	svc := services.NewStudyService(testCards(3), progress, sessions, rand.New(rand.NewSource(1)))

	_, _, err := svc.StartSession(context.Background(), study.DefaultSessionConfig(), now)
	require.Error(t, err)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrCodeInternal, appErr.Code)
	progress.AssertExpectations(t)
}

func TestStats_ListError(t *testing.T) {
	progress := new(mocks.MockProgressRepository)
	sessions := new(mocks.MockSessionRepository)
	progress.On("GetAll", mock.Anything).Return(map[string]models.Progress{}, nil)
	sessions.On("List", mock.Anything, mock.Anything).Return(nil, errors.New("disk gone"))

	svc := services.NewStudyService(testCards(3), progress, sessions, rand.New(rand.NewSource(1)))

	_, err := svc.Stats(context.Background(), now)
	require.Error(t, err)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrCodeInternal, appErr.Code)
	sessions.AssertExpectations(t)
}

func TestSessionStats_NotFound(t *testing.T) {
	progress := new(mocks.MockProgressRepository)
	sessions := new(mocks.MockSessionRepository)
	sessions.On("Get", mock.Anything, "missing").Return(nil, nil)

	svc := services.NewStudyService(nil, progress, sessions, rand.New(rand.NewSource(1)))

	_, err := svc.SessionStats(context.Background(), "missing")
	require.Error(t, err)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrCodeNotFound, appErr.Code)
}

func TestStudyService_FullFlow(t *testing.T) {
	ctx := context.Background()
	progress := memory.NewProgressStore()
	sessions := memory.NewSessionStore()
	svc := services.NewStudyService(testCards(5), progress, sessions, rand.New(rand.NewSource(42)))

	cfg := study.DefaultSessionConfig()
	cfg.MaxCards = 3

	session, selected, err := svc.StartSession(ctx, cfg, now)
	require.NoError(t, err)
	require.NotNil(t, session)
	require.Len(t, selected, 3, "all cards are new, capped by max")

	for _, card := range selected {
		_, p, err := svc.RecordReview(ctx, session.ID, models.NewReviewEvent(card.ID, 4, 5.0, 0, now), now)
		require.NoError(t, err)
		require.NotNil(t, p)
		assert.Equal(t, 1, p.ReviewCount)
	}

	ended, err := svc.EndSession(ctx, session.ID, now.Add(15*time.Minute))
	require.NoError(t, err)
	require.NotNil(t, ended.EndedAt)
	assert.Equal(t, 3, ended.TotalAnswers)
	assert.Equal(t, 3, ended.CorrectAnswers)

	stats, err := svc.Stats(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 5, stats.TotalCards)
	assert.Equal(t, 3, stats.StudiedToday)
	assert.Equal(t, 2, stats.NewToday)
	assert.Equal(t, 1, stats.Streak)
	assert.InDelta(t, 100.0, stats.AverageAccuracy, 1e-9)

	sessionStats, err := svc.SessionStats(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, sessionStats.TotalCards)
	assert.Equal(t, 3, sessionStats.CorrectCount)
	assert.Equal(t, 900.0, sessionStats.TotalTime)

	available, err := svc.AvailableCards(ctx, cfg, now)
	require.NoError(t, err)
	assert.Equal(t, 2, available, "reviewed cards are scheduled for tomorrow")
}
