package migrations

import (
	_ "embed"

	"github.com/uptrace/bun/migrate"
)

//go:embed 0001_create_questions.sql
var createQuestionsSQL string

//go:embed 0002_create_high_scores.sql
var createHighScoresSQL string

//go:embed 0003_create_users.sql
var createUsersSQL string

var Migrations = migrate.NewMigrations()
