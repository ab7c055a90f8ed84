// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db opens the database and holds every SQL statement.

	conn, err := db.Open(db.TypeSQLite, "markboard.db")
	err = db.CreateSchema(conn)
	store := db.NewStore(conn)

Both SQLite (modernc.org/sqlite) and PostgreSQL (lib/pq) are supported. The
schema sticks to the common subset and uses $n placeholders, which both
drivers accept.

# Tables

  - jury: name is unique; has_submitted and paused flags
  - team: name is unique
  - criterion: labels ordered by a unique seq; duplicate labels allowed
  - mark: one score per (jury, team, criterion)
  - app_config: admin key-value settings
  - revoked_session: logged-out session IDs until they expire

Marks cascade with their jury and team. Reset clears everything but the
criteria.
*/
package db
