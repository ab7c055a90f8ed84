// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

Domain types:

  - Jury: a marking panel; HasSubmitted and Paused drive the dashboard
  - Team: a team being judged
  - Mark: one score by one jury for one team and criterion
  - Config: free-form admin key-value settings
  - DashboardStats: counters derived from the jury list
  - LeaderboardEntry: a ranked team total

Config keys with meaning to the server are ConfigMaxScore and
ConfigLastResetAt.
*/
package models
