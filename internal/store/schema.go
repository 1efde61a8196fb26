package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// schema is portable between SQLite and Postgres. Timestamps are unix
// nanoseconds and booleans are 0/1 integers.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS learners (
		id            TEXT PRIMARY KEY,
		learning_goal TEXT NOT NULL DEFAULT '',
		created_at    BIGINT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS mastery_records (
		learner_id        TEXT NOT NULL REFERENCES learners(id),
		topic             TEXT NOT NULL,
		total_questions   INTEGER NOT NULL,
		correct_answers   INTEGER NOT NULL,
		mastery_score     INTEGER NOT NULL,
		difficulty        TEXT NOT NULL,
		last_attempted_at BIGINT NOT NULL,
		seq               BIGINT NOT NULL,
		PRIMARY KEY (learner_id, topic)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_mastery_records_learner_seq ON mastery_records (learner_id, seq)`,
	`CREATE TABLE IF NOT EXISTS quiz_attempts (
		id             TEXT PRIMARY KEY,
		learner_id     TEXT NOT NULL REFERENCES learners(id),
		topic          TEXT NOT NULL,
		difficulty     TEXT NOT NULL,
		questions_json TEXT NOT NULL,
		answers_json   TEXT NOT NULL,
		score          INTEGER NOT NULL,
		created_at     BIGINT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_quiz_attempts_learner ON quiz_attempts (learner_id, created_at)`,
	`CREATE TABLE IF NOT EXISTS study_plans (
		id               TEXT PRIMARY KEY,
		learner_id       TEXT NOT NULL REFERENCES learners(id),
		plan             TEXT NOT NULL,
		weak_topics_json TEXT NOT NULL,
		created_at       BIGINT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_study_plans_learner ON study_plans (learner_id, created_at)`,
	`CREATE TABLE IF NOT EXISTS llm_request_events (
		seq           BIGINT PRIMARY KEY,
		timestamp     BIGINT NOT NULL,
		provider      TEXT NOT NULL,
		model         TEXT NOT NULL,
		purpose       TEXT NOT NULL,
		input_tokens  INTEGER NOT NULL,
		output_tokens INTEGER NOT NULL,
		latency_ms    BIGINT NOT NULL,
		success       INTEGER NOT NULL,
		error_message TEXT NOT NULL DEFAULT '',
		request_body  TEXT NOT NULL DEFAULT '',
		response_body TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS idx_llm_request_events_timestamp ON llm_request_events (timestamp)`,
}

func migrate(ctx context.Context, db *sqlx.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	return nil
}
