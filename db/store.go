// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/danielhkuo/markboard/auth"
	"github.com/danielhkuo/markboard/models"
)

var ErrNotFound = errors.New("not found")

// Store wraps the queries shared by the API handlers and the HTML pages.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// DB exposes the underlying connection for handler-level statements.
func (s *Store) DB() *sql.DB {
	return s.db
}

func (s *Store) ListJuries(ctx context.Context) ([]models.Jury, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, has_submitted, paused
		FROM jury
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query juries: %w", err)
	}
	defer rows.Close()

	juries := []models.Jury{}
	for rows.Next() {
		var j models.Jury
		if err := rows.Scan(&j.ID, &j.Name, &j.HasSubmitted, &j.Paused); err != nil {
			return nil, fmt.Errorf("failed to scan jury: %w", err)
		}
		juries = append(juries, j)
	}
	return juries, rows.Err()
}

// GetJury looks a jury up by ID.
func (s *Store) GetJury(ctx context.Context, id string) (models.Jury, error) {
	return s.getJury(ctx, "id", id)
}

// GetJuryByName looks a jury up by its exact stored name.
func (s *Store) GetJuryByName(ctx context.Context, name string) (models.Jury, error) {
	return s.getJury(ctx, "name", name)
}

func (s *Store) getJury(ctx context.Context, column, value string) (models.Jury, error) {
	var j models.Jury
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, has_submitted, paused
		FROM jury
		WHERE `+column+` = $1
	`, value).Scan(&j.ID, &j.Name, &j.HasSubmitted, &j.Paused)
	if err == sql.ErrNoRows {
		return models.Jury{}, ErrNotFound
	}
	if err != nil {
		return models.Jury{}, fmt.Errorf("failed to query jury: %w", err)
	}
	return j, nil
}

func (s *Store) ListTeams(ctx context.Context) ([]models.Team, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, project
		FROM team
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query teams: %w", err)
	}
	defer rows.Close()

	teams := []models.Team{}
	for rows.Next() {
		var t models.Team
		if err := rows.Scan(&t.ID, &t.Name, &t.Project); err != nil {
			return nil, fmt.Errorf("failed to scan team: %w", err)
		}
		teams = append(teams, t)
	}
	return teams, rows.Err()
}

func (s *Store) GetConfig(ctx context.Context) (models.Config, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM app_config`)
	if err != nil {
		return nil, fmt.Errorf("failed to query config: %w", err)
	}
	defer rows.Close()

	cfg := models.Config{}
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("failed to scan config: %w", err)
		}
		cfg[k] = v
	}
	return cfg, rows.Err()
}

// SetConfig upserts every key in values. An empty value deletes the key.
func (s *Store) SetConfig(ctx context.Context, values map[string]string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for k, v := range values {
		if v == "" {
			_, err = tx.ExecContext(ctx, `DELETE FROM app_config WHERE key = $1`, k)
		} else {
			_, err = tx.ExecContext(ctx, `
				INSERT INTO app_config (key, value)
				VALUES ($1, $2)
				ON CONFLICT (key) DO UPDATE SET value = excluded.value
			`, k, v)
		}
		if err != nil {
			return fmt.Errorf("failed to set config %q: %w", k, err)
		}
	}

	return tx.Commit()
}

// ListCriteria returns criteria labels in insertion order.
func (s *Store) ListCriteria(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT label FROM criterion ORDER BY seq, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query criteria: %w", err)
	}
	defer rows.Close()

	criteria := []string{}
	for rows.Next() {
		var label string
		if err := rows.Scan(&label); err != nil {
			return nil, fmt.Errorf("failed to scan criterion: %w", err)
		}
		criteria = append(criteria, label)
	}
	return criteria, rows.Err()
}

// addCriterionAttempts bounds retries when concurrent appends pick the same seq.
const addCriterionAttempts = 5

// AddCriterion appends label after the last criterion. The label is stored as given.
func (s *Store) AddCriterion(ctx context.Context, label string) error {
	var err error
	for attempt := 0; attempt < addCriterionAttempts; attempt++ {
		err = s.addCriterion(ctx, label)
		if !IsUniqueViolation(err) {
			return err
		}
	}
	return err
}

func (s *Store) addCriterion(ctx context.Context, label string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var last int64
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) FROM criterion`).Scan(&last); err != nil {
		return fmt.Errorf("failed to query criteria order: %w", err)
	}

	// seq is unique, so a concurrent append that read the same MAX fails here
	_, err = tx.ExecContext(ctx, `
		INSERT INTO criterion (id, label, seq)
		VALUES ($1, $2, $3)
	`, auth.GenerateID(), label, last+1)
	if err != nil {
		return fmt.Errorf("failed to insert criterion: %w", err)
	}

	return tx.Commit()
}

// RemoveCriterion deletes the criterion at the zero-based index of ListCriteria.
func (s *Store) RemoveCriterion(ctx context.Context, index int) error {
	if index < 0 {
		return ErrNotFound
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var id string
	err = tx.QueryRowContext(ctx, `
		SELECT id FROM criterion ORDER BY seq, id LIMIT 1 OFFSET $1
	`, index).Scan(&id)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to find criterion: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM criterion WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete criterion: %w", err)
	}

	return tx.Commit()
}

// Reset wipes juries, teams, marks and config, then records when it happened.
// Criteria are kept.
func (s *Store) Reset(ctx context.Context, at time.Time) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range []string{
		`DELETE FROM mark`,
		`DELETE FROM jury`,
		`DELETE FROM team`,
		`DELETE FROM app_config`,
	} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to reset data: %w", err)
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO app_config (key, value) VALUES ($1, $2)
	`, models.ConfigLastResetAt, at.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to record reset time: %w", err)
	}

	return tx.Commit()
}

// RevokeSession records a session ID as logged out until it would have expired anyway.
func (s *Store) RevokeSession(ctx context.Context, jti string, expiresAt time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO revoked_session (jti, expires_at)
		VALUES ($1, $2)
		ON CONFLICT (jti) DO NOTHING
	`, jti, expiresAt.Unix())
	if err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}

	// Entries past their expiry can never match a valid token again.
	if _, err := s.db.ExecContext(ctx, `
		DELETE FROM revoked_session WHERE expires_at < $1
	`, time.Now().Unix()); err != nil {
		return fmt.Errorf("failed to prune revoked sessions: %w", err)
	}
	return nil
}

func (s *Store) IsRevoked(ctx context.Context, jti string) (bool, error) {
	var revoked bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM revoked_session WHERE jti = $1)
	`, jti).Scan(&revoked)
	if err != nil {
		return false, fmt.Errorf("failed to check session: %w", err)
	}
	return revoked, nil
}

// ListMarks returns every mark recorded by a jury.
func (s *Store) ListMarks(ctx context.Context, juryID string) ([]models.Mark, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT team_id, criterion, score
		FROM mark
		WHERE jury_id = $1
		ORDER BY team_id, criterion
	`, juryID)
	if err != nil {
		return nil, fmt.Errorf("failed to query marks: %w", err)
	}
	defer rows.Close()

	marks := []models.Mark{}
	for rows.Next() {
		var m models.Mark
		if err := rows.Scan(&m.TeamID, &m.Criterion, &m.Score); err != nil {
			return nil, fmt.Errorf("failed to scan mark: %w", err)
		}
		marks = append(marks, m)
	}
	return marks, rows.Err()
}
