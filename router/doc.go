// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the Quickly Rank API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(db, cfg)

# Endpoints

Health:

	GET /health

Election management (admin, requires X-Admin-Key):

	POST /elections              - Create election
	GET  /elections/{id}/admin   - Get election details
	POST /elections/{id}/keys    - Add or generate roster keys
	GET  /elections/{id}/keys    - List roster keys
	POST /elections/{id}/publish - Open for voting
	GET  /elections/{id}/tally   - Count the ballots so far
	POST /elections/{id}/close   - Count and seal results

Voting (public, uses share slug):

	POST /elections/{slug}/ballots - Submit a ranked ballot

Results (public):

	GET /elections/{slug}              - Election info
	GET /elections/{slug}/results      - Final results (closed only)
	GET /elections/{slug}/ballot-count - Ballot count
	GET /elections/{slug}/preview      - Compact preview data

Counting without storage:

	POST /tally

All handlers receive the database connection and configuration.
*/
package router
