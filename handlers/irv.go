// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"

	"github.com/danielhkuo/quickly-rank/irv"
)

// Host-side preconditions checked before the tally runs.
var (
	ErrNoBallots   = errors.New("no ballots submitted")
	ErrNoKeyRoster = errors.New("election uses keys but has no valid keys")
)

// WarnUnrecordedKeys accompanies a result whose used keys could not be saved.
const WarnUnrecordedKeys = "unable to record keys used"

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Tally is a computed result with the digest of the ballots it was built from.
type Tally struct {
	Result     irv.Result
	InputsHash string
}

// ComputeIRVResult loads an election's ballots in submission order and runs
// the instant-runoff tally over them. useKeys selects key deduplication
// against the election's roster.
func ComputeIRVResult(ctx context.Context, q querier, electionID string, useKeys bool) (Tally, error) {
	ids, rows, keys, err := getBallotRows(ctx, q, electionID)
	if err != nil {
		return Tally{}, fmt.Errorf("failed to get ballots: %w", err)
	}
	if len(rows) == 0 {
		return Tally{}, ErrNoBallots
	}

	var table *irv.KeyTable
	if useKeys {
		roster, err := getRoster(ctx, q, electionID)
		if err != nil {
			return Tally{}, fmt.Errorf("failed to get key roster: %w", err)
		}
		if len(roster) == 0 {
			return Tally{}, ErrNoKeyRoster
		}
		table = &irv.KeyTable{Submitted: keys, Valid: roster}
	}

	return Tally{
		Result:     irv.Run(rows, table),
		InputsHash: computeInputsHash(ids),
	}, nil
}

// getBallotRows returns ballot IDs, ranking rows and submitted keys,
// index-aligned and ordered oldest submission first.
func getBallotRows(ctx context.Context, q querier, electionID string) ([]string, [][]string, []string, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, voter_key, rankings
		FROM ballot
		WHERE election_id = $1
		ORDER BY seq
	`, electionID)
	if err != nil {
		return nil, nil, nil, err
	}
	defer rows.Close()

	var ids []string
	var rankings [][]string
	var keys []string
	for rows.Next() {
		var id string
		var key sql.NullString
		var raw string
		if err := rows.Scan(&id, &key, &raw); err != nil {
			return nil, nil, nil, err
		}
		var cells []string
		if err := json.Unmarshal([]byte(raw), &cells); err != nil {
			return nil, nil, nil, fmt.Errorf("ballot %s: %w", id, err)
		}
		ids = append(ids, id)
		rankings = append(rankings, cells)
		keys = append(keys, key.String)
	}

	return ids, rankings, keys, rows.Err()
}

// getRoster retrieves the valid keys for an election
func getRoster(ctx context.Context, q querier, electionID string) ([]string, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT voter_key FROM valid_key WHERE election_id = $1
	`, electionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}

	return keys, rows.Err()
}

// endSavepoint releases a savepoint, first rolling back to it when rollback
// is set. A failed rollback is only logged since the caller already has an
// error to report.
func endSavepoint(ctx context.Context, tx *sql.Tx, name string, rollback bool) error {
	if rollback {
		if _, err := tx.ExecContext(ctx, `ROLLBACK TO SAVEPOINT `+name); err != nil {
			slog.Warn("failed to roll back savepoint", "savepoint", name, "error", err)
		}
	}
	if _, err := tx.ExecContext(ctx, `RELEASE SAVEPOINT `+name); err != nil {
		slog.Warn("failed to release savepoint", "savepoint", name, "error", err)
		return fmt.Errorf("failed to release savepoint %s: %w", name, err)
	}
	return nil
}

// recordUsedKeys replaces the election's used-key list. It runs under a
// savepoint so a failure leaves the surrounding transaction usable.
func recordUsedKeys(ctx context.Context, tx *sql.Tx, electionID string, keys []string, at time.Time) (err error) {
	if _, err := tx.ExecContext(ctx, `SAVEPOINT record_used_keys`); err != nil {
		return err
	}
	defer func() {
		if relErr := endSavepoint(ctx, tx, "record_used_keys", err != nil); relErr != nil && err == nil {
			err = relErr
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM used_key WHERE election_id = $1`, electionID); err != nil {
		return fmt.Errorf("failed to clear used keys: %w", err)
	}
	for _, key := range keys {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO used_key (election_id, voter_key, recorded_at)
			VALUES ($1, $2, $3)
		`, electionID, key, at)
		if err != nil {
			return fmt.Errorf("failed to record used key: %w", err)
		}
	}
	return nil
}

// Summarize renders a one-line description of a result.
func Summarize(res irv.Result) string {
	if len(res.Rounds) == 0 {
		return "No rounds were counted"
	}
	last := res.Rounds[len(res.Rounds)-1]

	if res.Outcome == irv.OutcomeWinner {
		votes := 0
		for _, cv := range last.Tally {
			if cv.Candidate == res.Winner {
				votes = cv.Votes
			}
		}
		return fmt.Sprintf("%s wins in the %s round with %s of %s votes",
			res.Winner,
			humanize.Ordinal(last.Number),
			humanize.Comma(int64(votes)),
			humanize.Comma(int64(last.Total)),
		)
	}

	if len(last.Eliminated) == 0 {
		return "Tie: no ballots were counted"
	}
	return fmt.Sprintf("Tie after %s: %s eliminated together",
		english.Plural(last.Number, "round", "rounds"),
		strings.Join(last.Eliminated, ", "),
	)
}

// computeInputsHash digests the ordered ballot IDs so a snapshot can be
// checked against the ballots it was computed from.
func computeInputsHash(ballotIDs []string) string {
	if len(ballotIDs) == 0 {
		return "no-ballots"
	}
	h := sha256.New()
	for _, id := range ballotIDs {
		h.Write([]byte(id))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
