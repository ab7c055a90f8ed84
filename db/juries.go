// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/danielhkuo/markboard/auth"
	"github.com/danielhkuo/markboard/models"
)

var (
	ErrDuplicate = errors.New("already exists")
	ErrSubmitted = errors.New("marks already submitted")
)

// CreateJury inserts a jury with both flags cleared and returns its ID.
func (s *Store) CreateJury(ctx context.Context, name string) (string, error) {
	id := auth.GenerateID()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO jury (id, name, has_submitted, paused)
		VALUES ($1, $2, $3, $4)
	`, id, name, false, false)
	if IsUniqueViolation(err) {
		return "", ErrDuplicate
	}
	if err != nil {
		return "", fmt.Errorf("failed to insert jury: %w", err)
	}
	return id, nil
}

// DeleteJury removes a jury and, through the foreign key, its marks.
func (s *Store) DeleteJury(ctx context.Context, id string) error {
	return s.deleteByID(ctx, `DELETE FROM jury WHERE id = $1`, id)
}

// ReopenJury clears the submitted flag so the jury can change its marks again.
func (s *Store) ReopenJury(ctx context.Context, id string) error {
	return s.updateJury(ctx, id, `UPDATE jury SET has_submitted = $1 WHERE id = $2`, false, id)
}

// SetPaused changes the pause flag of a jury that has not submitted yet.
func (s *Store) SetPaused(ctx context.Context, id string, paused bool) error {
	return s.updateJury(ctx, id, `
		UPDATE jury SET paused = $1 WHERE id = $2 AND has_submitted = $3
	`, paused, id, false)
}

// SubmitJury marks a jury submitted and clears its pause, so it lands in
// exactly one dashboard bucket.
func (s *Store) SubmitJury(ctx context.Context, id string) error {
	return s.updateJury(ctx, id, `
		UPDATE jury SET has_submitted = $1, paused = $2 WHERE id = $3 AND has_submitted = $4
	`, true, false, id, false)
}

// updateJury runs a guarded update. When nothing changed it tells a missing
// jury apart from one that has already submitted.
func (s *Store) updateJury(ctx context.Context, id, query string, args ...any) error {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update jury: %w", err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return nil
	}

	var submitted bool
	err = s.db.QueryRowContext(ctx, `SELECT has_submitted FROM jury WHERE id = $1`, id).Scan(&submitted)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to query jury: %w", err)
	}
	if submitted {
		return ErrSubmitted
	}
	return nil
}

func (s *Store) CreateTeam(ctx context.Context, name, project string) (string, error) {
	id := auth.GenerateID()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO team (id, name, project)
		VALUES ($1, $2, $3)
	`, id, name, project)
	if IsUniqueViolation(err) {
		return "", ErrDuplicate
	}
	if err != nil {
		return "", fmt.Errorf("failed to insert team: %w", err)
	}
	return id, nil
}

func (s *Store) DeleteTeam(ctx context.Context, id string) error {
	return s.deleteByID(ctx, `DELETE FROM team WHERE id = $1`, id)
}

func (s *Store) deleteByID(ctx context.Context, query, id string) error {
	res, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// SaveMarks upserts marks for a jury in one transaction. It refuses once the
// jury has submitted.
func (s *Store) SaveMarks(ctx context.Context, juryID string, marks []models.Mark) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var submitted bool
	err = tx.QueryRowContext(ctx, `SELECT has_submitted FROM jury WHERE id = $1`, juryID).Scan(&submitted)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to query jury: %w", err)
	}
	if submitted {
		return ErrSubmitted
	}

	for _, m := range marks {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO mark (jury_id, team_id, criterion, score)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (jury_id, team_id, criterion) DO UPDATE SET score = excluded.score
		`, juryID, m.TeamID, m.Criterion, m.Score)
		if err != nil {
			return fmt.Errorf("failed to save mark: %w", err)
		}
	}

	return tx.Commit()
}
