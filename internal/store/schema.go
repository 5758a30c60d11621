package store

import (
	"context"
	"database/sql"
	"fmt"
)

// Tables are append-only event logs. Every row carries a sequence from the
// shared counter so rows of different tables can be ordered against each
// other.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS session_events (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		sequence      INTEGER NOT NULL UNIQUE,
		timestamp     INTEGER NOT NULL,
		session_id    TEXT    NOT NULL,
		action        TEXT    NOT NULL,
		mode          TEXT    NOT NULL DEFAULT '',
		subject_ids   TEXT    NOT NULL DEFAULT '[]',
		topic_id      TEXT    NOT NULL DEFAULT '',
		questions     INTEGER NOT NULL DEFAULT 0,
		answered      INTEGER NOT NULL DEFAULT 0,
		duration_secs INTEGER NOT NULL DEFAULT 0,
		reason        TEXT    NOT NULL DEFAULT '',
		error_message TEXT    NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS session_events_session_id ON session_events (session_id)`,
	`CREATE TABLE IF NOT EXISTS results (
		id              INTEGER PRIMARY KEY AUTOINCREMENT,
		sequence        INTEGER NOT NULL UNIQUE,
		timestamp       INTEGER NOT NULL,
		session_id      TEXT    NOT NULL,
		total_questions INTEGER NOT NULL,
		correct_answers INTEGER NOT NULL,
		wrong_answers   INTEGER NOT NULL,
		score           REAL    NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS results_session_id ON results (session_id)`,
	`CREATE TABLE IF NOT EXISTS llm_requests (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		sequence      INTEGER NOT NULL UNIQUE,
		timestamp     INTEGER NOT NULL,
		provider      TEXT    NOT NULL,
		model         TEXT    NOT NULL,
		purpose       TEXT    NOT NULL,
		input_tokens  INTEGER NOT NULL,
		output_tokens INTEGER NOT NULL,
		latency_ms    INTEGER NOT NULL,
		success       INTEGER NOT NULL,
		error_message TEXT    NOT NULL DEFAULT '',
		request_body  TEXT    NOT NULL DEFAULT '',
		response_body TEXT    NOT NULL DEFAULT ''
	)`,
}

func migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	return nil
}
