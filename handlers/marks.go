// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"strconv"

	"github.com/danielhkuo/markboard/db"
	"github.com/danielhkuo/markboard/models"
)

// checkMarks returns a client-facing message for the first invalid mark.
// Marks must reference an existing team and criterion and stay within the
// configured score range.
func checkMarks(ctx context.Context, store *db.Store, marks []models.Mark) (string, error) {
	teams, err := store.ListTeams(ctx)
	if err != nil {
		return "", err
	}
	criteriaList, err := store.ListCriteria(ctx)
	if err != nil {
		return "", err
	}
	cfg, err := store.GetConfig(ctx)
	if err != nil {
		return "", err
	}

	teamIDs := make(map[string]bool, len(teams))
	for _, t := range teams {
		teamIDs[t.ID] = true
	}
	known := make(map[string]bool, len(criteriaList))
	for _, c := range criteriaList {
		known[c] = true
	}
	maxScore := MaxScore(cfg)

	for _, m := range marks {
		if !teamIDs[m.TeamID] {
			return "unknown team " + m.TeamID, nil
		}
		if !known[m.Criterion] {
			return "unknown criterion " + m.Criterion, nil
		}
		if m.Score < 0 || m.Score > maxScore {
			return "score for " + m.Criterion + " must be between 0 and " + strconv.FormatFloat(maxScore, 'f', -1, 64), nil
		}
	}
	return "", nil
}

// MaxScore reads max_score from config, falling back to the default
func MaxScore(cfg models.Config) float64 {
	if v, err := strconv.ParseFloat(cfg[models.ConfigMaxScore], 64); err == nil && v > 0 {
		return v
	}
	return models.DefaultMaxScore
}
