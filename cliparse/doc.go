// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles configuration from the environment and CLI flags.

	cfg, err := cliparse.ParseFlags(os.Args[1:])

Environment variables are read first through struct tags, then flags
override them:

	PORT                -p
	DATABASE_URL        -d
	DATABASE_TYPE       -t
	SESSION_SECRET      --session-secret
	ADMIN_PASSWORD      --admin-password
	ADMIN_PASSWORD_HASH (environment only)
	MASTER_KEY          --master-key
	SESSION_TTL         --session-ttl

DATABASE_URL and SESSION_SECRET are required, as is one of ADMIN_PASSWORD or
ADMIN_PASSWORD_HASH. A plain password is hashed on startup and dropped from
the returned Config.
*/
package cliparse
