// Package study holds the session-building, session-lifecycle, and
// statistics logic on top of the sm2 scheduler. All time and randomness is
// injected so selection is reproducible under test.
package study

import (
	"context"
	"math/rand"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/ymatsuda/studycards/internal/logger"
	"github.com/ymatsuda/studycards/internal/models"
	"github.com/ymatsuda/studycards/internal/repository"
	"github.com/ymatsuda/studycards/internal/sm2"
)

const (
	// DefaultMaxCards is the session size used when a config leaves
	// MaxCards unset.
	DefaultMaxCards = 20

	reviewShare = 0.7
	newShare    = 0.3
)

// SessionConfig controls card selection. Empty category/difficulty sets
// mean no filter.
type SessionConfig struct {
	MaxCards      int
	IncludeNew    bool
	IncludeReview bool
	Categories    []models.Category
	Difficulties  []models.Difficulty
}

// DefaultSessionConfig returns the documented defaults: 20 cards, both new
// and review cards, no filters.
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		MaxCards:      DefaultMaxCards,
		IncludeNew:    true,
		IncludeReview: true,
	}
}

func (c SessionConfig) normalized() SessionConfig {
	if c.MaxCards < 0 {
		c.MaxCards = 0
	}
	return c
}

func (c SessionConfig) matches(card models.Card) bool {
	if len(c.Categories) > 0 && !containsCategory(c.Categories, card.Category) {
		return false
	}
	if len(c.Difficulties) > 0 && !containsDifficulty(c.Difficulties, card.Difficulty) {
		return false
	}
	return true
}

// Builder selects session cards and materializes new session records.
type Builder struct {
	sessions repository.SessionRepository
}

// NewBuilder creates a Builder persisting sessions to the given repository.
func NewBuilder(sessions repository.SessionRepository) *Builder {
	return &Builder{sessions: sessions}
}

// BuildSession picks a bounded, filtered, quota-mixed selection of cards,
// persists a fresh session record, and returns both. The selection may be
// smaller than MaxCards when supply is short; that is not an error.
func (b *Builder) BuildSession(ctx context.Context, cards []models.Card, cfg SessionConfig, progress map[string]models.Progress, now time.Time, rng *rand.Rand) (*models.Session, []models.Card, error) {
	log := logger.FromContext(ctx)
	cfg = cfg.normalized()

	review := reviewCandidates(cards, cfg, progress, now)
	fresh := newCandidates(cards, cfg, progress)
	rng.Shuffle(len(fresh), func(i, j int) {
		fresh[i], fresh[j] = fresh[j], fresh[i]
	})

	selected := make([]models.Card, 0, cfg.MaxCards)
	taken := make(map[string]bool, cfg.MaxCards)

	if cfg.IncludeReview {
		limit := min(int(float64(cfg.MaxCards)*reviewShare), len(review))
		for _, card := range review[:limit] {
			selected = append(selected, card)
			taken[card.ID] = true
		}
	}
	if cfg.IncludeNew {
		limit := min(cfg.MaxCards-len(selected), int(float64(cfg.MaxCards)*newShare))
		if limit > len(fresh) {
			limit = len(fresh)
		}
		for _, card := range fresh[:limit] {
			selected = append(selected, card)
			taken[card.ID] = true
		}
	}

	// Top up from the remaining pool in priority order when the quotas left
	// slots unused.
	if len(selected) < cfg.MaxCards {
		for _, card := range append(append([]models.Card{}, review...), fresh...) {
			if len(selected) == cfg.MaxCards {
				break
			}
			if taken[card.ID] {
				continue
			}
			selected = append(selected, card)
			taken[card.ID] = true
		}
	}

	// Presentation order is independent of priority order.
	rng.Shuffle(len(selected), func(i, j int) {
		selected[i], selected[j] = selected[j], selected[i]
	})

	session := models.Session{
		ID:        uuid.NewString(),
		StartedAt: now,
		Reviewed:  []models.ReviewEvent{},
	}
	if err := b.sessions.Append(ctx, session); err != nil {
		log.Error("failed to persist session: %v", err)
		return nil, nil, err
	}

	log.Debug("session built: id=%s, cards=%d (review=%d, new=%d available)", session.ID, len(selected), len(review), len(fresh))
	return &session, selected, nil
}

// AvailableCardsCount reports how many cards the config could draw from,
// letting callers validate a configuration without allocating a session.
func AvailableCardsCount(cards []models.Card, cfg SessionConfig, progress map[string]models.Progress, now time.Time) int {
	cfg = cfg.normalized()
	count := 0
	for _, card := range cards {
		if !cfg.matches(card) {
			continue
		}
		p := progressFor(progress, card.ID)
		if cfg.IncludeNew && sm2.IsNew(p) {
			count++
			continue
		}
		if cfg.IncludeReview && p != nil && sm2.IsDue(*p, now) {
			count++
		}
	}
	return count
}

// DueCardsCount counts cards with progress whose review date has arrived.
func DueCardsCount(cards []models.Card, progress map[string]models.Progress, now time.Time) int {
	count := 0
	for _, card := range cards {
		if p, ok := progress[card.ID]; ok && sm2.IsDue(p, now) {
			count++
		}
	}
	return count
}

// NewCardsCount counts cards never reviewed.
func NewCardsCount(cards []models.Card, progress map[string]models.Progress) int {
	count := 0
	for _, card := range cards {
		if sm2.IsNew(progressFor(progress, card.ID)) {
			count++
		}
	}
	return count
}

// reviewCandidates are filtered cards with due progress, earliest review
// date first. The order is a strict priority, not FIFO by pool order.
func reviewCandidates(cards []models.Card, cfg SessionConfig, progress map[string]models.Progress, now time.Time) []models.Card {
	var out []models.Card
	for _, card := range cards {
		if !cfg.matches(card) {
			continue
		}
		p, ok := progress[card.ID]
		if !ok || !sm2.IsDue(p, now) {
			continue
		}
		out = append(out, card)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return progress[out[i].ID].NextReviewDate.Before(progress[out[j].ID].NextReviewDate)
	})
	return out
}

func newCandidates(cards []models.Card, cfg SessionConfig, progress map[string]models.Progress) []models.Card {
	var out []models.Card
	for _, card := range cards {
		if !cfg.matches(card) {
			continue
		}
		if sm2.IsNew(progressFor(progress, card.ID)) {
			out = append(out, card)
		}
	}
	return out
}

func progressFor(progress map[string]models.Progress, cardID string) *models.Progress {
	if p, ok := progress[cardID]; ok {
		return &p
	}
	return nil
}

func containsCategory(set []models.Category, c models.Category) bool {
	for _, v := range set {
		if v == c {
			return true
		}
	}
	return false
}

func containsDifficulty(set []models.Difficulty, d models.Difficulty) bool {
	for _, v := range set {
		if v == d {
			return true
		}
	}
	return false
}
