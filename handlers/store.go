// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"errors"

	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/danielhkuo/quickly-rank/models"
)

const electionColumns = `
	id, title, description, creator_name, method, status, use_keys,
	share_slug, closed_at, final_snapshot_id, created_at
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanElection(row rowScanner) (models.Election, error) {
	var e models.Election
	err := row.Scan(
		&e.ID, &e.Title, &e.Description, &e.CreatorName, &e.Method, &e.Status, &e.UseKeys,
		&e.ShareSlug, &e.ClosedAt, &e.FinalSnapshotID, &e.CreatedAt,
	)
	return e, err
}

// getElectionByID returns sql.ErrNoRows when the election does not exist.
func getElectionByID(ctx context.Context, q querier, electionID string) (models.Election, error) {
	return scanElection(q.QueryRowContext(ctx,
		`SELECT `+electionColumns+` FROM election WHERE id = $1`, electionID))
}

// getElectionBySlug returns sql.ErrNoRows when no published election has the slug.
func getElectionBySlug(ctx context.Context, q querier, slug string) (models.Election, error) {
	return scanElection(q.QueryRowContext(ctx,
		`SELECT `+electionColumns+` FROM election WHERE share_slug = $1`, slug))
}

// isUniqueViolation reports whether err is a unique constraint failure from
// either supported driver.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE ||
			liteErr.Code() == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}
	return false
}
