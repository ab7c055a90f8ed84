// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package dashboard derives the admin statistics and loads the snapshot they
// are computed from.
package dashboard
