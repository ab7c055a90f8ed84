// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package dashboard

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/danielhkuo/markboard/models"
)

// Source is the read side of the store the dashboard needs.
type Source interface {
	ListJuries(ctx context.Context) ([]models.Jury, error)
	ListTeams(ctx context.Context) ([]models.Team, error)
	GetConfig(ctx context.Context) (models.Config, error)
}

// Snapshot is one consistent read of everything the admin views display.
type Snapshot struct {
	Juries []models.Jury
	Teams  []models.Team
	Config models.Config
}

// Stats derives the dashboard counters for this snapshot.
func (s Snapshot) Stats() models.DashboardStats {
	return ComputeStats(s.Juries, len(s.Teams))
}

// Load fetches juries, teams and config concurrently. Either all three
// succeed or the zero Snapshot is returned with the first error.
func Load(ctx context.Context, src Source) (Snapshot, error) {
	var snap Snapshot
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		juries, err := src.ListJuries(ctx)
		if err != nil {
			return fmt.Errorf("juries: %w", err)
		}
		snap.Juries = juries
		return nil
	})
	g.Go(func() error {
		teams, err := src.ListTeams(ctx)
		if err != nil {
			return fmt.Errorf("teams: %w", err)
		}
		snap.Teams = teams
		return nil
	})
	g.Go(func() error {
		cfg, err := src.GetConfig(ctx)
		if err != nil {
			return fmt.Errorf("config: %w", err)
		}
		snap.Config = cfg
		return nil
	})

	if err := g.Wait(); err != nil {
		return Snapshot{}, fmt.Errorf("failed to load dashboard: %w", err)
	}
	return snap, nil
}
