// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package views holds the state behind the server-rendered pages and the
// templates that draw them.
package views
