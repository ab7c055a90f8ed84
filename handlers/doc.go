// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains the JSON API and page handlers.

Each handler is a struct holding the store and, where needed, the config:

  - JuryHandler: jury listing, access, marks, pause and submit
  - TeamHandler: team listing and admin maintenance
  - CriteriaHandler: criteria list, add and remove by position
  - AdminHandler: login, logout, dashboard, config and reset
  - ExportHandler: leaderboard JSON and spreadsheet downloads
  - PageHandler: the landing page, marking page and admin panel

Marks are validated before they reach the store: the team and criterion must
exist and the score must lie in [0, max_score]. Once a jury has submitted,
its marks are frozen until an admin reopens it.

The leaderboard sums marks from submitted juries only. Equal totals share a
rank and the next rank is skipped.
*/
package handlers
