// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package dashboard

import "github.com/danielhkuo/markboard/models"

// ComputeStats derives the dashboard counters from a jury snapshot.
// Submission takes precedence over pause, and pending is whatever is left,
// so the three buckets always sum to the total.
func ComputeStats(juries []models.Jury, totalTeams int) models.DashboardStats {
	var submitted, paused int
	for _, j := range juries {
		switch {
		case j.HasSubmitted:
			submitted++
		case j.Paused:
			paused++
		}
	}

	total := len(juries)
	return models.DashboardStats{
		TotalJuries:    total,
		TotalTeams:     totalTeams,
		Submitted:      submitted,
		Paused:         paused,
		Pending:        total - submitted - paused,
		CompletionRate: completionRate(submitted, total),
	}
}

// completionRate is submitted/total as a percentage, rounded half up.
func completionRate(submitted, total int) int {
	if total <= 0 {
		return 0
	}
	return (submitted*200 + total) / (total * 2)
}

// Conflicting returns the names of juries flagged both submitted and paused.
// They are counted as submitted.
func Conflicting(juries []models.Jury) []string {
	var names []string
	for _, j := range juries {
		if j.HasSubmitted && j.Paused {
			names = append(names, j.Name)
		}
	}
	return names
}
