// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# CLI Flags

	-p          Server port
	-d          Database URL
	-t          Database type (sqlite, postgres)
	-base-url   Origin for share links
	-env-file   Dotenv file to load (default .env)
	-admin-salt Admin key salt
	-slug-salt  Election slug salt

# Environment Variables

Flags fall back to environment variables:

	PORT               → -p
	DATABASE_URL       → -d
	DATABASE_TYPE      → -t
	BASE_URL           → -base-url
	ADMIN_KEY_SALT     → -admin-salt
	ELECTION_SLUG_SALT → -slug-salt

Variables from the env file never override ones already set. CLI flags take
precedence over both.

# Validation

ParseFlags returns an error if DATABASE_URL, ADMIN_KEY_SALT or
ELECTION_SLUG_SALT is missing, or if the database type is unknown.
*/
package cliparse
