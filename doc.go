// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the Markboard server.

Markboard collects jury marks for a judged event. An admin sets up juries,
teams and scoring criteria; each jury unlocks its marking sheet from the
landing page, records scores and submits them; the admin dashboard tracks
progress and exports the leaderboard as a spreadsheet.

# Starting the Server

Configuration comes from the environment (a .env file is loaded if present)
and may be overridden with flags:

	DATABASE_URL=markboard.db SESSION_SECRET=... ADMIN_PASSWORD=... go run .

	go run . -p 3318 -t postgres -d "postgres://..."

# Configuration

Required settings:

  - DATABASE_URL (-d): SQLite file or PostgreSQL connection string
  - SESSION_SECRET (--session-secret): signs session tokens
  - ADMIN_PASSWORD or ADMIN_PASSWORD_HASH: the admin login

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)
  - MASTER_KEY (--master-key): unlocks every jury (default: CDD123)
  - SESSION_TTL (--session-ttl): session lifetime (default: 12h)

# Architecture

  - handlers: JSON API and server-rendered pages
  - router: chi routes and session groups
  - middleware: logging, CORS, sessions, JSON helpers
  - views: admin panel model, jury gate, templates
  - dashboard: statistics and the concurrent snapshot load
  - criteria: label normalization
  - export: spreadsheet reports
  - auth: passwords, jury access and session tokens
  - db: schema and store
  - cliparse: configuration parsing
*/
package main
