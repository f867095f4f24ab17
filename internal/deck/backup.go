package deck

import (
	"context"
	"encoding/json"
	"io"
	"time"

	apperrors "github.com/ymatsuda/studycards/internal/errors"
	"github.com/ymatsuda/studycards/internal/logger"
	"github.com/ymatsuda/studycards/internal/models"
	"github.com/ymatsuda/studycards/internal/repository"
)

// Backup is the portable snapshot of all learning data.
type Backup struct {
	Version    string                     `json:"version"`
	ExportedAt time.Time                  `json:"exported_at"`
	Progress   map[string]models.Progress `json:"progress"`
	Sessions   []models.Session           `json:"sessions"`
}

// Export writes a backup of every progress record and session to w.
func Export(ctx context.Context, progress repository.ProgressRepository, sessions repository.SessionRepository, now time.Time, w io.Writer) error {
	log := logger.FromContext(ctx).WithPrefix("backup")

	allProgress, err := progress.GetAll(ctx)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	allSessions, err := sessions.List(ctx, repository.SessionFilter{})
	if err != nil {
		return apperrors.NewInternalError(err)
	}

	b := Backup{
		Version:    FormatVersion,
		ExportedAt: now,
		Progress:   allProgress,
		Sessions:   allSessions,
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(b); err != nil {
		log.Error("failed to encode backup: %v", err)
		return apperrors.NewInternalError(err)
	}
	log.Info("exported %d progress records, %d sessions", len(allProgress), len(allSessions))
	return nil
}

// Import restores a backup into the repositories. Only the version tag is
// checked; record contents pass through untouched.
func Import(ctx context.Context, r io.Reader, progress repository.ProgressRepository, sessions repository.SessionRepository) error {
	log := logger.FromContext(ctx).WithPrefix("backup")

	var b Backup
	if err := json.NewDecoder(r).Decode(&b); err != nil {
		log.Error("failed to decode backup: %v", err)
		return apperrors.NewInternalError(err)
	}
	if b.Version != FormatVersion {
		return apperrors.NewValidationError("version", "unsupported backup version "+b.Version)
	}

	for _, p := range b.Progress {
		if err := progress.Put(ctx, p); err != nil {
			return apperrors.NewInternalError(err)
		}
	}
	for _, s := range b.Sessions {
		existing, err := sessions.Get(ctx, s.ID)
		if err != nil {
			return apperrors.NewInternalError(err)
		}
		if existing != nil {
			if _, err := sessions.Update(ctx, s.ID, s); err != nil {
				return apperrors.NewInternalError(err)
			}
			continue
		}
		if err := sessions.Append(ctx, s); err != nil {
			return apperrors.NewInternalError(err)
		}
	}
	log.Info("imported %d progress records, %d sessions", len(b.Progress), len(b.Sessions))
	return nil
}
