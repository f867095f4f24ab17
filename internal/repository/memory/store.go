// Package memory provides mutex-guarded in-memory implementations of the
// repository interfaces. They back tests and storage-free setups; the
// sqlite package is the durable counterpart.
package memory

import (
	"context"
	"sync"

	"github.com/ymatsuda/studycards/internal/models"
	"github.com/ymatsuda/studycards/internal/repository"
)

type progressStore struct {
	mu      sync.RWMutex
	records map[string]models.Progress
}

// NewProgressStore creates an empty in-memory ProgressRepository.
func NewProgressStore() repository.ProgressRepository {
	return &progressStore{records: make(map[string]models.Progress)}
}

func (s *progressStore) GetAll(_ context.Context) (map[string]models.Progress, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]models.Progress, len(s.records))
	for id, p := range s.records {
		out[id] = p
	}
	return out, nil
}

func (s *progressStore) Get(_ context.Context, cardID string) (*models.Progress, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.records[cardID]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (s *progressStore) Put(_ context.Context, progress models.Progress) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[progress.CardID] = progress
	return nil
}

type sessionStore struct {
	mu       sync.RWMutex
	sessions []models.Session
}

// NewSessionStore creates an empty in-memory SessionRepository.
func NewSessionStore() repository.SessionRepository {
	return &sessionStore{}
}

func (s *sessionStore) Append(_ context.Context, session models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions = append(s.sessions, cloneSession(session))
	return nil
}

func (s *sessionStore) Get(_ context.Context, id string) (*models.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.sessions {
		if s.sessions[i].ID == id {
			c := cloneSession(s.sessions[i])
			return &c, nil
		}
	}
	return nil, nil
}

func (s *sessionStore) Update(_ context.Context, id string, session models.Session) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.sessions {
		if s.sessions[i].ID == id {
			session.ID = id
			s.sessions[i] = cloneSession(session)
			c := cloneSession(session)
			return &c, nil
		}
	}
	return nil, nil
}

func (s *sessionStore) List(_ context.Context, filter repository.SessionFilter) ([]models.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Session, 0, len(s.sessions))
	for i := range s.sessions {
		sess := s.sessions[i]
		if filter.EndedOnly && sess.EndedAt == nil {
			continue
		}
		if filter.StartedAfter != nil && sess.StartedAt.Before(*filter.StartedAfter) {
			continue
		}
		out = append(out, cloneSession(sess))
	}
	return out, nil
}

// cloneSession deep-copies the event slice so callers never alias stored
// state.
func cloneSession(s models.Session) models.Session {
	c := s
	if s.EndedAt != nil {
		t := *s.EndedAt
		c.EndedAt = &t
	}
	c.Reviewed = make([]models.ReviewEvent, len(s.Reviewed))
	copy(c.Reviewed, s.Reviewed)
	return c
}
