package postgres

import (
	"context"
	"fmt"
	"time"

	"cemap-quiz-service/internal/domain"

	"github.com/jackc/pgx/v4/pgxpool"
)

// ScoreStore persists the append-only high-score log.
type ScoreStore struct {
	pool *pgxpool.Pool
}

func NewScoreStore(pool *pgxpool.Pool) *ScoreStore {
	return &ScoreStore{pool: pool}
}

func (s *ScoreStore) Append(ctx context.Context, record domain.HighScoreRecord) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO high_scores (id, name, score, total, mode, achieved_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		record.ID, record.Name, record.Score, record.Total, string(record.Mode), record.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("append high score: %w", err)
	}
	return nil
}

func (s *ScoreStore) ScoresSince(ctx context.Context, mode domain.Mode, since time.Time) ([]domain.HighScoreRecord, error) {
	return s.query(ctx,
		`SELECT id, name, score, total, mode, achieved_at FROM high_scores WHERE mode=$1 AND achieved_at >= $2 ORDER BY achieved_at`,
		string(mode), since,
	)
}

func (s *ScoreStore) Scores(ctx context.Context, mode domain.Mode) ([]domain.HighScoreRecord, error) {
	return s.query(ctx,
		`SELECT id, name, score, total, mode, achieved_at FROM high_scores WHERE mode=$1 ORDER BY achieved_at`,
		string(mode),
	)
}

func (s *ScoreStore) query(ctx context.Context, query string, args ...interface{}) ([]domain.HighScoreRecord, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("load high scores: %w", err)
	}
	defer rows.Close()

	var records []domain.HighScoreRecord
	for rows.Next() {
		var (
			rec  domain.HighScoreRecord
			mode string
		)
		if err := rows.Scan(&rec.ID, &rec.Name, &rec.Score, &rec.Total, &mode, &rec.Timestamp); err != nil {
			return nil, fmt.Errorf("scan high score: %w", err)
		}
		rec.Mode = domain.Mode(mode)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read high scores: %w", err)
	}
	return records, nil
}
