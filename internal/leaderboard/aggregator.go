// Package leaderboard ranks high-score records per quiz mode.
package leaderboard

import (
	"context"
	"sort"
	"time"

	"cemap-quiz-service/internal/domain"
)

// ScoreRepository is the read side of the append-only score log.
type ScoreRepository interface {
	// ScoresSince returns records for a mode with Timestamp >= since.
	ScoresSince(ctx context.Context, mode domain.Mode, since time.Time) ([]domain.HighScoreRecord, error)
	// Scores returns every record for a mode.
	Scores(ctx context.Context, mode domain.Mode) ([]domain.HighScoreRecord, error)
}

// Aggregator computes weekly and all-time rankings. The weekly window is the
// current ISO calendar week: Monday 00:00 UTC to now.
type Aggregator struct {
	scores ScoreRepository
	now    func() time.Time
}

func NewAggregator(scores ScoreRepository) *Aggregator {
	return NewAggregatorWithClock(scores, time.Now)
}

// NewAggregatorWithClock allows deterministic week windows in tests.
func NewAggregatorWithClock(scores ScoreRepository, now func() time.Time) *Aggregator {
	return &Aggregator{scores: scores, now: now}
}

// TopN returns up to n records for the current week, ranked by percentage
// descending with earliest-timestamp tie-break. The record returned by
// AllTimeBest is excluded so callers can show both lists without a duplicate.
func (a *Aggregator) TopN(ctx context.Context, mode domain.Mode, n int) ([]domain.HighScoreRecord, error) {
	if n <= 0 {
		return []domain.HighScoreRecord{}, nil
	}

	best, err := a.AllTimeBest(ctx, mode)
	if err != nil {
		return nil, err
	}

	records, err := a.scores.ScoresSince(ctx, mode, weekStart(a.now()))
	if err != nil {
		return nil, err
	}

	rank(records)

	top := make([]domain.HighScoreRecord, 0, n)
	for _, rec := range records {
		if best != nil && rec.ID == best.ID {
			continue
		}
		top = append(top, rec)
		if len(top) == n {
			break
		}
	}
	return top, nil
}

// AllTimeBest returns the single highest-percentage record across all time,
// or nil when the mode has no records.
func (a *Aggregator) AllTimeBest(ctx context.Context, mode domain.Mode) (*domain.HighScoreRecord, error) {
	records, err := a.scores.Scores(ctx, mode)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	rank(records)
	best := records[0]
	return &best, nil
}

// rank sorts by percentage descending, earliest achievement first on ties.
func rank(records []domain.HighScoreRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		pi, pj := records[i].Percent(), records[j].Percent()
		if pi != pj {
			return pi > pj
		}
		return records[i].Timestamp.Before(records[j].Timestamp)
	})
}

// weekStart truncates to Monday 00:00 UTC of the week containing now.
func weekStart(now time.Time) time.Time {
	now = now.UTC()
	weekday := int(now.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday belongs to the week that started the previous Monday
	}
	day := now.AddDate(0, 0, -(weekday - 1))
	return time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
}
