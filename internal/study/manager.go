package study

import (
	"context"
	"time"

	apperrors "github.com/ymatsuda/studycards/internal/errors"
	"github.com/ymatsuda/studycards/internal/logger"
	"github.com/ymatsuda/studycards/internal/models"
	"github.com/ymatsuda/studycards/internal/repository"
	"github.com/ymatsuda/studycards/internal/sm2"
)

// Manager drives a session's lifecycle: Active on creation, Ended after
// EndSession. Each recorded review also advances the reviewed card's
// spaced-repetition state.
type Manager struct {
	progress repository.ProgressRepository
	sessions repository.SessionRepository
}

// NewManager creates a Manager over the given repositories.
func NewManager(progress repository.ProgressRepository, sessions repository.SessionRepository) *Manager {
	return &Manager{progress: progress, sessions: sessions}
}

// RecordReview appends the event to the session, recomputes the derived
// counters, and upserts the card's progress (creating it lazily on first
// review). Events against an already-ended session are accepted; the
// session log stays append-only either way.
func (m *Manager) RecordReview(ctx context.Context, sessionID string, ev models.ReviewEvent, now time.Time) (*models.Session, *models.Progress, error) {
	log := logger.FromContext(ctx)

	session, err := m.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}
	if session == nil {
		return nil, nil, apperrors.NewNotFoundError("session", sessionID)
	}
	if session.Ended() {
		log.Debug("recording review on ended session: id=%s", sessionID)
	}

	session.Reviewed = append(session.Reviewed, ev)
	recount(session)

	updated, err := m.sessions.Update(ctx, sessionID, *session)
	if err != nil {
		return nil, nil, err
	}
	if updated == nil {
		return nil, nil, apperrors.NewNotFoundError("session", sessionID)
	}

	current, err := m.progress.Get(ctx, ev.CardID)
	if err != nil {
		return nil, nil, err
	}
	var p models.Progress
	if current == nil {
		p = sm2.CreateInitialProgress(ev.CardID, now)
	} else {
		p = *current
	}
	p = sm2.ApplyReview(p, ev.Quality, ev.IsCorrect, ev.HintsShown, now)

	if err := m.progress.Put(ctx, p); err != nil {
		return nil, nil, err
	}

	log.Debug("review recorded: session=%s, card=%s, quality=%d, interval=%d", sessionID, ev.CardID, ev.Quality, p.IntervalDays)
	return updated, &p, nil
}

// EndSession closes the session. Ending an already-ended session is a
// no-op that returns the stored record unchanged.
func (m *Manager) EndSession(ctx context.Context, sessionID string, now time.Time) (*models.Session, error) {
	log := logger.FromContext(ctx)

	session, err := m.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, apperrors.NewNotFoundError("session", sessionID)
	}
	if session.Ended() {
		log.Debug("session already ended: id=%s", sessionID)
		return session, nil
	}

	session.EndedAt = &now
	updated, err := m.sessions.Update(ctx, sessionID, *session)
	if err != nil {
		return nil, err
	}
	log.Debug("session ended: id=%s, answers=%d", sessionID, session.TotalAnswers)
	return updated, nil
}

// recount recomputes the counters derived from the event list.
func recount(s *models.Session) {
	correct := 0
	var totalResponse float64
	for _, ev := range s.Reviewed {
		if ev.IsCorrect {
			correct++
		}
		totalResponse += ev.ResponseTimeSeconds
	}
	s.CorrectAnswers = correct
	s.TotalAnswers = len(s.Reviewed)
	if s.TotalAnswers > 0 {
		s.AverageResponseTime = totalResponse / float64(s.TotalAnswers)
	} else {
		s.AverageResponseTime = 0
	}
}

// SessionStatsFor summarizes one session. TotalTime is zero while the
// session is still open.
func SessionStatsFor(s models.Session) models.SessionStats {
	stats := models.SessionStats{
		TotalCards:          len(s.Reviewed),
		QualityDistribution: make(map[int]int),
	}
	if s.EndedAt != nil {
		stats.TotalTime = s.EndedAt.Sub(s.StartedAt).Seconds()
	}
	var totalResponse float64
	for _, ev := range s.Reviewed {
		if ev.IsCorrect {
			stats.CorrectCount++
		}
		totalResponse += ev.ResponseTimeSeconds
		stats.HintsUsed += ev.HintsShown
		stats.QualityDistribution[ev.Quality]++
	}
	if stats.TotalCards > 0 {
		stats.AverageResponseTime = totalResponse / float64(stats.TotalCards)
	}
	return stats
}
