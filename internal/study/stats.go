package study

import (
	"math"
	"sort"
	"time"

	"github.com/ymatsuda/studycards/internal/models"
	"github.com/ymatsuda/studycards/internal/sm2"
)

// ComputeStats aggregates global learning statistics from in-memory
// snapshots. It is pure: `now` fixes every day-boundary decision.
//
// Sessions without an end time are treated as abandoned and excluded from
// the ended-only aggregations (studiedToday, streak, totalStudyTime) but
// their events still count toward averageAccuracy.
func ComputeStats(cards []models.Card, progress map[string]models.Progress, sessions []models.Session, now time.Time) models.StudyStats {
	today := sm2.DayStart(now)

	stats := models.StudyStats{
		TotalCards: len(cards),
	}

	for _, p := range progress {
		if sm2.IsDue(p, now) {
			stats.DueToday++
		}
	}
	stats.NewToday = NewCardsCount(cards, progress)

	// Distinct cards across ended sessions whose *start* fell on today.
	// A session crossing midnight still groups under its start day.
	studied := make(map[string]bool)
	for _, s := range sessions {
		if !s.Ended() || !sm2.DayStart(s.StartedAt).Equal(today) {
			continue
		}
		for _, ev := range s.Reviewed {
			studied[ev.CardID] = true
		}
	}
	stats.StudiedToday = len(studied)

	stats.Streak = streak(sessions, today)

	var correct, total int
	for _, s := range sessions {
		for _, ev := range s.Reviewed {
			total++
			if ev.IsCorrect {
				correct++
			}
		}
	}
	if total > 0 {
		stats.AverageAccuracy = float64(correct) / float64(total) * 100
	}

	for _, s := range sessions {
		if s.Ended() {
			stats.TotalStudyTime += s.EndedAt.Sub(s.StartedAt).Minutes()
		}
	}

	stats.CategoryProgress = categoryProgress(cards, progress)
	return stats
}

// streak counts consecutive calendar days with at least one ended session,
// walking backward from today and breaking on the first gap.
func streak(sessions []models.Session, today time.Time) int {
	seen := make(map[time.Time]bool)
	for _, s := range sessions {
		if s.Ended() {
			seen[sm2.DayStart(s.StartedAt)] = true
		}
	}
	if len(seen) == 0 {
		return 0
	}

	days := make([]time.Time, 0, len(seen))
	for d := range seen {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].After(days[j]) })

	count := 0
	for _, d := range days {
		if daysBetween(d, today) == count {
			count++
		} else {
			break
		}
	}
	return count
}

// daysBetween counts calendar days from a to b, both day-normalized.
// Rounding absorbs DST shifts.
func daysBetween(a, b time.Time) int {
	return int(math.Round(b.Sub(a).Hours() / 24))
}

func categoryProgress(cards []models.Card, progress map[string]models.Progress) []models.CategoryProgress {
	var out []models.CategoryProgress
	for _, category := range models.Categories() {
		var total, mastered, reviewed int
		var accuracySum float64
		for _, card := range cards {
			if card.Category != category {
				continue
			}
			total++
			p, ok := progress[card.ID]
			if !ok {
				continue
			}
			if sm2.MasteryLevel(p) == models.MasteryMastered {
				mastered++
			}
			if p.ReviewCount > 0 {
				reviewed++
				accuracySum += float64(p.CorrectCount) / float64(p.ReviewCount)
			}
		}
		if total == 0 {
			continue
		}
		cp := models.CategoryProgress{
			Category:      category,
			TotalCards:    total,
			MasteredCards: mastered,
		}
		if reviewed > 0 {
			cp.AverageAccuracy = accuracySum / float64(reviewed) * 100
		}
		out = append(out, cp)
	}
	return out
}
