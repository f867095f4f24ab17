package repository

import (
	"context"
	"time"

	"github.com/ymatsuda/studycards/internal/models"
)

// ProgressRepository handles per-card learning state access. Absent records
// are reported as nil, not as errors; callers treat such cards as new.
type ProgressRepository interface {
	GetAll(ctx context.Context) (map[string]models.Progress, error)
	Get(ctx context.Context, cardID string) (*models.Progress, error)
	// Put upserts the record. It must be atomic per card.
	Put(ctx context.Context, progress models.Progress) error
}

// SessionFilter narrows List results. The zero value matches everything.
type SessionFilter struct {
	EndedOnly    bool
	StartedAfter *time.Time
}

// SessionRepository handles study session access.
type SessionRepository interface {
	Append(ctx context.Context, session models.Session) error
	Get(ctx context.Context, id string) (*models.Session, error)
	// Update replaces the stored session. An unknown id fails silently:
	// it returns (nil, nil) without writing anything.
	Update(ctx context.Context, id string, session models.Session) (*models.Session, error)
	List(ctx context.Context, filter SessionFilter) ([]models.Session, error)
}
