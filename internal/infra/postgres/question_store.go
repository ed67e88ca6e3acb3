package postgres

import (
	"context"
	"fmt"

	"cemap-quiz-service/internal/domain"

	"github.com/jackc/pgx/v4/pgxpool"
)

// QuestionStore reads the question bank from Postgres. Rows come back in
// declared order (position), which scenario grouping relies on.
type QuestionStore struct {
	pool *pgxpool.Pool
}

func NewQuestionStore(pool *pgxpool.Pool) *QuestionStore {
	return &QuestionStore{pool: pool}
}

const questionColumns = `id, topic, question_text, option_a, option_b, option_c, option_d, correct_option, scenario_text, scenario_group_id`

func (s *QuestionStore) Questions(ctx context.Context, topic string) ([]domain.Question, error) {
	query := `SELECT ` + questionColumns + ` FROM questions ORDER BY position`
	args := []interface{}{}
	if topic != "" {
		query = `SELECT ` + questionColumns + ` FROM questions WHERE topic=$1 ORDER BY position`
		args = append(args, topic)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	defer rows.Close()

	var questions []domain.Question
	for rows.Next() {
		var (
			q                      domain.Question
			optA, optB, optC, optD string
			scenarioText, groupID  *string
		)
		if err := rows.Scan(&q.ID, &q.Topic, &q.Text, &optA, &optB, &optC, &optD, &q.CorrectOption, &scenarioText, &groupID); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		q.Options = []string{optA, optB, optC, optD}
		if scenarioText != nil {
			q.ScenarioText = *scenarioText
		}
		if groupID != nil {
			q.ScenarioGroupID = *groupID
		}
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read questions: %w", err)
	}
	return questions, nil
}

func (s *QuestionStore) Topics(ctx context.Context) ([]string, error) {
	return s.topicQuery(ctx, `SELECT DISTINCT topic FROM questions WHERE scenario_group_id IS NULL ORDER BY topic`)
}

func (s *QuestionStore) AllTopics(ctx context.Context) ([]string, error) {
	return s.topicQuery(ctx, `SELECT DISTINCT topic FROM questions ORDER BY topic`)
}

func (s *QuestionStore) topicQuery(ctx context.Context, query string) ([]string, error) {
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("load topics: %w", err)
	}
	defer rows.Close()

	var topics []string
	for rows.Next() {
		var topic string
		if err := rows.Scan(&topic); err != nil {
			return nil, fmt.Errorf("scan topic: %w", err)
		}
		topics = append(topics, topic)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read topics: %w", err)
	}
	return topics, nil
}
