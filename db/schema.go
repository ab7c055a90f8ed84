// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// The schema sticks to types and defaults that both PostgreSQL and SQLite accept.
const schema = `
-- Juries
CREATE TABLE IF NOT EXISTS jury (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL UNIQUE,
    has_submitted BOOLEAN NOT NULL DEFAULT FALSE,
    paused BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

-- Teams
CREATE TABLE IF NOT EXISTS team (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL UNIQUE,
    project TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

-- Criteria, in insertion order
CREATE TABLE IF NOT EXISTS criterion (
    id TEXT PRIMARY KEY,
    label TEXT NOT NULL,
    seq BIGINT NOT NULL
);

DROP INDEX IF EXISTS idx_criterion_seq;
CREATE UNIQUE INDEX IF NOT EXISTS idx_criterion_seq_unique ON criterion(seq);

-- Marks
CREATE TABLE IF NOT EXISTS mark (
    jury_id TEXT NOT NULL REFERENCES jury(id) ON DELETE CASCADE,
    team_id TEXT NOT NULL REFERENCES team(id) ON DELETE CASCADE,
    criterion TEXT NOT NULL,
    score REAL NOT NULL CHECK (score >= 0),
    PRIMARY KEY (jury_id, team_id, criterion)
);

CREATE INDEX IF NOT EXISTS idx_mark_team_id ON mark(team_id);

-- Config
CREATE TABLE IF NOT EXISTS app_config (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

-- Revoked sessions
CREATE TABLE IF NOT EXISTS revoked_session (
    jti TEXT PRIMARY KEY,
    expires_at BIGINT NOT NULL
);
`
