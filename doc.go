// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the Quickly Rank API server.

Quickly Rank runs ranked-choice elections. Voters rank candidates in order of
preference and the winner is found by instant-runoff counting: the candidates
with the fewest first preferences are eliminated round by round until one
holds a majority of the ballots still in play.

# Starting the Server

The server requires environment variables or CLI flags for configuration:

	DATABASE_URL=quickly-rank.db go run main.go

Or with flags:

	go run main.go -p 3318 -t postgres -d "postgres://..."

A .env file in the working directory is read first when present.

# Configuration

Required settings:

  - DATABASE_URL (-d): SQLite file or PostgreSQL connection string
  - ADMIN_KEY_SALT (-admin-salt): Secret for admin key HMAC
  - ELECTION_SLUG_SALT (-slug-salt): Secret for share slug generation

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)
  - BASE_URL (-base-url): Origin used in share links

# Architecture

  - irv: Instant-runoff counting, free of I/O
  - handlers: HTTP request handlers (elections, ballots, results, tally)
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, JSON helpers
  - models: Request/response types
  - auth: Key generation and validation
  - db: Connection and schema creation
  - cliparse: Configuration parsing

The irvtally command in cmd/irvtally counts a ballot file offline.
*/
package main
