// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

Types for parsing incoming JSON:

  - CreateElectionRequest: title, description, creator_name, use_keys
  - AddKeysRequest: keys, generate
  - SubmitBallotRequest: rankings, key
  - TallyRequest: ballots, keys, valid_keys

# Response Types

Types for JSON responses:

  - CreateElectionResponse: election_id, admin_key
  - AddKeysResponse / ListKeysResponse: roster keys
  - PublishElectionResponse: share_slug, share_url
  - SubmitBallotResponse: ballot_id, sequence, message
  - CloseElectionResponse: closed_at, snapshot
  - TallyResponse: result, summary
  - ErrorResponse: error, message

# Domain Types

  - Election: election metadata and lifecycle state
  - Ballot: one ranked submission, in submission order
  - ResultSnapshot: frozen irv.Result plus summary and warnings

# Constants

Status values:

	StatusDraft  = "draft"
	StatusOpen   = "open"
	StatusClosed = "closed"

Voting method:

	MethodIRV = "irv"
*/
package models
