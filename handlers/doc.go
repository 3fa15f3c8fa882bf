// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the Quickly Rank API.

# Handler Types

Each handler is a struct with database and config dependencies:

  - ElectionHandler: Election lifecycle, key roster, tally and close
  - BallotHandler: Ranked ballot submission
  - ResultsHandler: Election info and sealed results
  - TallyHandler: Counting ballots supplied in the request

Handlers are created via constructor functions that accept *sql.DB and Config:

	electionHandler := handlers.NewElectionHandler(db, cfg)

# Election Lifecycle

Elections progress through three states: draft → open → closed

	POST /elections               → CreateElection (returns admin_key)
	POST /elections/{id}/keys     → AddKeys (keyed elections, until closed)
	POST /elections/{id}/publish  → PublishElection (generates share_slug)
	POST /elections/{id}/close    → CloseElection (counts and freezes results)

Admin operations require the X-Admin-Key header.

# Voting

Voters rank candidates through the share slug:

	POST /elections/{slug}/ballots → SubmitBallot

Ballots are never updated in place. In a keyed election a voter changes
their vote by submitting again with the same key, and only the latest
ballot per key is counted.

# Counting

ComputeIRVResult loads an election's ballots in submission order and runs
irv.Run over them:

	tally, err := ComputeIRVResult(ctx, db, electionID, useKeys)

It returns ErrNoBallots or ErrNoKeyRoster when the election cannot be
counted. Closing records the keys that were counted; if that fails the
result is still saved and carries the WarnUnrecordedKeys warning.
*/
package handlers
