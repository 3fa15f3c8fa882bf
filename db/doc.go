// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles database connections and schema creation.

# Connecting

Open picks the driver from the configured database type:

	conn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)

"sqlite" uses modernc.org/sqlite (pure Go), "postgres" uses lib/pq.

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.

# Tables

  - election: Election metadata and lifecycle state
  - valid_key: Roster of voter keys per election
  - ballot: Ranked submissions, append-only, ordered by seq
  - used_key: Keys counted by the latest tally (rewritten each tally)
  - result_snapshot: Frozen IRV results

# Relationships

	election 1──* valid_key
	election 1──* ballot
	election 1──* used_key
	election 1──* result_snapshot

All foreign keys use ON DELETE CASCADE.
*/
package db
