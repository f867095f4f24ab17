package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/ymatsuda/studycards/internal/logger"
	"github.com/ymatsuda/studycards/internal/models"
	"github.com/ymatsuda/studycards/internal/repository"
)

type progressRepository struct {
	db *sql.DB
}

// NewProgressRepository creates a sqlite-backed ProgressRepository.
func NewProgressRepository(db *sql.DB) repository.ProgressRepository {
	return &progressRepository{db: db}
}

func (r *progressRepository) GetAll(ctx context.Context) (map[string]models.Progress, error) {
	log := logger.FromContext(ctx).WithPrefix("progress_repo")

	rows, err := r.db.QueryContext(ctx, `
SELECT card_id, last_reviewed_at, review_count, correct_count, interval_days, ease_factor, next_review_date, last_quality
FROM progress
`)
	if err != nil {
		log.Error("failed to query progress: %v", err)
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]models.Progress)
	for rows.Next() {
		var p models.Progress
		if err := rows.Scan(&p.CardID, &p.LastReviewedAt, &p.ReviewCount, &p.CorrectCount, &p.IntervalDays, &p.EaseFactor, &p.NextReviewDate, &p.LastQuality); err != nil {
			log.Error("failed to scan progress row: %v", err)
			return nil, err
		}
		out[p.CardID] = p
	}
	log.Debug("loaded %d progress records", len(out))
	return out, rows.Err()
}

func (r *progressRepository) Get(ctx context.Context, cardID string) (*models.Progress, error) {
	log := logger.FromContext(ctx).WithPrefix("progress_repo")

	var p models.Progress
	err := r.db.QueryRowContext(ctx, `
SELECT card_id, last_reviewed_at, review_count, correct_count, interval_days, ease_factor, next_review_date, last_quality
FROM progress
WHERE card_id = ?
`, cardID).Scan(&p.CardID, &p.LastReviewedAt, &p.ReviewCount, &p.CorrectCount, &p.IntervalDays, &p.EaseFactor, &p.NextReviewDate, &p.LastQuality)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get progress: card_id=%s: %v", cardID, err)
		return nil, err
	}
	return &p, nil
}

func (r *progressRepository) Put(ctx context.Context, p models.Progress) error {
	log := logger.FromContext(ctx).WithPrefix("progress_repo")
	log.Debug("upserting progress: card_id=%s, interval=%d, ease=%.2f", p.CardID, p.IntervalDays, p.EaseFactor)

	_, err := r.db.ExecContext(ctx, `
INSERT INTO progress (card_id, last_reviewed_at, review_count, correct_count, interval_days, ease_factor, next_review_date, last_quality, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
ON CONFLICT (card_id) DO UPDATE SET
    last_reviewed_at = excluded.last_reviewed_at,
    review_count = excluded.review_count,
    correct_count = excluded.correct_count,
    interval_days = excluded.interval_days,
    ease_factor = excluded.ease_factor,
    next_review_date = excluded.next_review_date,
    last_quality = excluded.last_quality,
    updated_at = CURRENT_TIMESTAMP
`, p.CardID, p.LastReviewedAt, p.ReviewCount, p.CorrectCount, p.IntervalDays, p.EaseFactor, p.NextReviewDate, p.LastQuality)
	if err != nil {
		log.Error("failed to upsert progress: %v", err)
	}
	return err
}
