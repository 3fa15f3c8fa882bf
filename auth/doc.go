// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides authentication and token generation utilities.

# Admin Keys

Admin keys use HMAC-SHA256 to create deterministic, verifiable keys:

	adminKey := auth.GenerateAdminKey(electionID, salt)
	err := auth.ValidateAdminKey(electionID, adminKey, salt)

The key is URL-safe base64 encoded without padding and is never stored.

# Voter Keys

Roster keys handed to entitled voters are random UUIDs:

	keys, err := auth.GenerateVoterKeys(25)

Keys are opaque to the tally; they only decide which ballot of a voter counts.

# Share Slugs

Share slugs create URL-friendly identifiers for published elections:

	slug := auth.GenerateShareSlug(electionID, salt)

Slugs are base62 encoded and deterministic from the election ID and salt.

# ID Generation

	id, err := auth.GenerateID(16)  // 32 hex characters

# IP Hashing

	hash := auth.HashIP(ipAddress, salt)
*/
package auth
