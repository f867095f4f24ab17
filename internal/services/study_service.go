package services

import (
	"context"
	"math/rand"
	"time"

	"github.com/ymatsuda/studycards/internal/errors"
	"github.com/ymatsuda/studycards/internal/logger"
	"github.com/ymatsuda/studycards/internal/models"
	"github.com/ymatsuda/studycards/internal/repository"
	"github.com/ymatsuda/studycards/internal/study"
)

// StudyService handles study-related business logic over the card pool and
// the persistent store.
type StudyService interface {
	StartSession(ctx context.Context, cfg study.SessionConfig, now time.Time) (*models.Session, []models.Card, error)
	RecordReview(ctx context.Context, sessionID string, event models.ReviewEvent, now time.Time) (*models.Session, *models.Progress, error)
	EndSession(ctx context.Context, sessionID string, now time.Time) (*models.Session, error)
	AvailableCards(ctx context.Context, cfg study.SessionConfig, now time.Time) (int, error)
	Stats(ctx context.Context, now time.Time) (*models.StudyStats, error)
	SessionStats(ctx context.Context, sessionID string) (*models.SessionStats, error)
}

type studyService struct {
	cards    []models.Card
	progress repository.ProgressRepository
	sessions repository.SessionRepository
	builder  *study.Builder
	manager  *study.Manager
	rng      *rand.Rand
}

// NewStudyService creates a StudyService. The RNG drives card selection and
// is injected so sessions are reproducible under test.
func NewStudyService(cards []models.Card, progress repository.ProgressRepository, sessions repository.SessionRepository, rng *rand.Rand) StudyService {
	return &studyService{
		cards:    cards,
		progress: progress,
		sessions: sessions,
		builder:  study.NewBuilder(sessions),
		manager:  study.NewManager(progress, sessions),
		rng:      rng,
	}
}

func (s *studyService) StartSession(ctx context.Context, cfg study.SessionConfig, now time.Time) (*models.Session, []models.Card, error) {
	log := logger.FromContext(ctx)
	log.Debug("starting session: max_cards=%d, new=%v, review=%v", cfg.MaxCards, cfg.IncludeNew, cfg.IncludeReview)

	snapshot, err := s.progress.GetAll(ctx)
	if err != nil {
		log.Error("failed to load progress snapshot: %v", err)
		return nil, nil, errors.NewInternalError(err)
	}

	session, selected, err := s.builder.BuildSession(ctx, s.cards, cfg, snapshot, now, s.rng)
	if err != nil {
		return nil, nil, errors.NewInternalError(err)
	}
	return session, selected, nil
}

func (s *studyService) RecordReview(ctx context.Context, sessionID string, event models.ReviewEvent, now time.Time) (*models.Session, *models.Progress, error) {
	return s.manager.RecordReview(ctx, sessionID, event, now)
}

func (s *studyService) EndSession(ctx context.Context, sessionID string, now time.Time) (*models.Session, error) {
	return s.manager.EndSession(ctx, sessionID, now)
}

func (s *studyService) AvailableCards(ctx context.Context, cfg study.SessionConfig, now time.Time) (int, error) {
	log := logger.FromContext(ctx)

	snapshot, err := s.progress.GetAll(ctx)
	if err != nil {
		log.Error("failed to load progress snapshot: %v", err)
		return 0, errors.NewInternalError(err)
	}
	return study.AvailableCardsCount(s.cards, cfg, snapshot, now), nil
}

func (s *studyService) Stats(ctx context.Context, now time.Time) (*models.StudyStats, error) {
	log := logger.FromContext(ctx)

	snapshot, err := s.progress.GetAll(ctx)
	if err != nil {
		log.Error("failed to load progress snapshot: %v", err)
		return nil, errors.NewInternalError(err)
	}
	sessions, err := s.sessions.List(ctx, repository.SessionFilter{})
	if err != nil {
		log.Error("failed to list sessions: %v", err)
		return nil, errors.NewInternalError(err)
	}

	stats := study.ComputeStats(s.cards, snapshot, sessions, now)
	return &stats, nil
}

func (s *studyService) SessionStats(ctx context.Context, sessionID string) (*models.SessionStats, error) {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, errors.NewInternalError(err)
	}
	if session == nil {
		return nil, errors.NewNotFoundError("session", sessionID)
	}
	stats := study.SessionStatsFor(*session)
	return &stats, nil
}
