// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package router wires every handler into a chi router, grouping the API and
// page routes by the session scope they require.
package router
