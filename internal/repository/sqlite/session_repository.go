package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/ymatsuda/studycards/internal/logger"
	"github.com/ymatsuda/studycards/internal/models"
	"github.com/ymatsuda/studycards/internal/repository"
)

type sessionRepository struct {
	db *sql.DB
}

// NewSessionRepository creates a sqlite-backed SessionRepository. Review
// events live in a child table and are rewritten together with their
// session row inside one transaction.
func NewSessionRepository(db *sql.DB) repository.SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) Append(ctx context.Context, s models.Session) error {
	log := logger.FromContext(ctx).WithPrefix("session_repo")
	log.Debug("appending session: id=%s", s.ID)

	return tx(ctx, r.db, func(t *sql.Tx) error {
		_, err := t.ExecContext(ctx, `
INSERT INTO sessions (id, started_at, ended_at, correct_answers, total_answers, average_response_time)
VALUES (?, ?, ?, ?, ?, ?)
`, s.ID, s.StartedAt, nullableTime(s.EndedAt), s.CorrectAnswers, s.TotalAnswers, s.AverageResponseTime)
		if err != nil {
			log.Error("failed to insert session: %v", err)
			return err
		}
		return insertEvents(ctx, t, s.ID, s.Reviewed)
	})
}

func (r *sessionRepository) Get(ctx context.Context, id string) (*models.Session, error) {
	log := logger.FromContext(ctx).WithPrefix("session_repo")

	var s models.Session
	var endedAt sql.NullTime
	err := r.db.QueryRowContext(ctx, `
SELECT id, started_at, ended_at, correct_answers, total_answers, average_response_time
FROM sessions
WHERE id = ?
`, id).Scan(&s.ID, &s.StartedAt, &endedAt, &s.CorrectAnswers, &s.TotalAnswers, &s.AverageResponseTime)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("session not found: id=%s", id)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get session: %v", err)
		return nil, err
	}
	if endedAt.Valid {
		t := endedAt.Time
		s.EndedAt = &t
	}

	s.Reviewed, err = r.eventsFor(ctx, id)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *sessionRepository) Update(ctx context.Context, id string, s models.Session) (*models.Session, error) {
	log := logger.FromContext(ctx).WithPrefix("session_repo")
	log.Debug("updating session: id=%s, answers=%d", id, s.TotalAnswers)

	s.ID = id
	var found bool
	err := tx(ctx, r.db, func(t *sql.Tx) error {
		res, err := t.ExecContext(ctx, `
UPDATE sessions
SET started_at = ?, ended_at = ?, correct_answers = ?, total_answers = ?, average_response_time = ?
WHERE id = ?
`, s.StartedAt, nullableTime(s.EndedAt), s.CorrectAnswers, s.TotalAnswers, s.AverageResponseTime, id)
		if err != nil {
			log.Error("failed to update session: %v", err)
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return nil
		}
		found = true

		if _, err := t.ExecContext(ctx, `DELETE FROM review_events WHERE session_id = ?`, id); err != nil {
			log.Error("failed to clear review events: %v", err)
			return err
		}
		return insertEvents(ctx, t, id, s.Reviewed)
	})
	if err != nil {
		return nil, err
	}
	if !found {
		log.Debug("update skipped, unknown session: id=%s", id)
		return nil, nil
	}
	return &s, nil
}

func (r *sessionRepository) List(ctx context.Context, filter repository.SessionFilter) ([]models.Session, error) {
	log := logger.FromContext(ctx).WithPrefix("session_repo")

	query := sqlBuilder.
		Select("id", "started_at", "ended_at", "correct_answers", "total_answers", "average_response_time").
		From("sessions").
		OrderBy("started_at ASC, id ASC")
	if filter.EndedOnly {
		query = query.Where(squirrel.NotEq{"ended_at": nil})
	}
	if filter.StartedAfter != nil {
		query = query.Where(squirrel.GtOrEq{"started_at": *filter.StartedAfter})
	}

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		log.Error("failed to list sessions: %v", err)
		return nil, err
	}
	defer rows.Close()

	var sessions []models.Session
	for rows.Next() {
		var s models.Session
		var endedAt sql.NullTime
		if err := rows.Scan(&s.ID, &s.StartedAt, &endedAt, &s.CorrectAnswers, &s.TotalAnswers, &s.AverageResponseTime); err != nil {
			log.Error("failed to scan session row: %v", err)
			return nil, err
		}
		if endedAt.Valid {
			t := endedAt.Time
			s.EndedAt = &t
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range sessions {
		sessions[i].Reviewed, err = r.eventsFor(ctx, sessions[i].ID)
		if err != nil {
			return nil, err
		}
	}
	log.Debug("listed %d sessions", len(sessions))
	return sessions, nil
}

func (r *sessionRepository) eventsFor(ctx context.Context, sessionID string) ([]models.ReviewEvent, error) {
	log := logger.FromContext(ctx).WithPrefix("session_repo")

	rows, err := r.db.QueryContext(ctx, `
SELECT card_id, quality, is_correct, reviewed_at, response_time_seconds, hints_shown
FROM review_events
WHERE session_id = ?
ORDER BY seq ASC
`, sessionID)
	if err != nil {
		log.Error("failed to query review events: %v", err)
		return nil, err
	}
	defer rows.Close()

	events := []models.ReviewEvent{}
	for rows.Next() {
		var ev models.ReviewEvent
		if err := rows.Scan(&ev.CardID, &ev.Quality, &ev.IsCorrect, &ev.ReviewedAt, &ev.ResponseTimeSeconds, &ev.HintsShown); err != nil {
			log.Error("failed to scan review event: %v", err)
			return nil, err
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

func insertEvents(ctx context.Context, t *sql.Tx, sessionID string, events []models.ReviewEvent) error {
	for i, ev := range events {
		_, err := t.ExecContext(ctx, `
INSERT INTO review_events (session_id, seq, card_id, quality, is_correct, reviewed_at, response_time_seconds, hints_shown)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
`, sessionID, i, ev.CardID, ev.Quality, ev.IsCorrect, ev.ReviewedAt, ev.ResponseTimeSeconds, ev.HintsShown)
		if err != nil {
			return err
		}
	}
	return nil
}

func nullableTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return *t
}
