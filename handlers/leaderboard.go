// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"github.com/danielhkuo/markboard/models"
)

// ComputeLeaderboard totals the marks of submitted juries per team.
// Marks for criteria that have since been removed do not count.
func ComputeLeaderboard(ctx context.Context, db *sql.DB) ([]models.LeaderboardEntry, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT t.id, t.name, COALESCE(SUM(m.score), 0), COUNT(DISTINCT m.jury_id)
		FROM team t
		LEFT JOIN mark m
			ON m.team_id = t.id
			AND m.jury_id IN (SELECT id FROM jury WHERE has_submitted = $1)
			AND m.criterion IN (SELECT label FROM criterion)
		GROUP BY t.id, t.name
	`, true)
	if err != nil {
		return nil, fmt.Errorf("failed to query totals: %w", err)
	}
	defer rows.Close()

	entries := []models.LeaderboardEntry{}
	for rows.Next() {
		var e models.LeaderboardEntry
		if err := rows.Scan(&e.TeamID, &e.TeamName, &e.Total, &e.Juries); err != nil {
			return nil, fmt.Errorf("failed to scan totals: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read totals: %w", err)
	}

	RankLeaderboard(entries)
	return entries, nil
}

// RankLeaderboard sorts by total descending, then team name, and assigns
// competition ranks: equal totals share a rank and the next rank skips.
func RankLeaderboard(entries []models.LeaderboardEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Total != entries[j].Total {
			return entries[i].Total > entries[j].Total
		}
		return entries[i].TeamName < entries[j].TeamName
	})

	for i := range entries {
		if i > 0 && entries[i].Total == entries[i-1].Total {
			entries[i].Rank = entries[i-1].Rank
		} else {
			entries[i].Rank = i + 1
		}
	}
}
