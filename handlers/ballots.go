// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/danielhkuo/quickly-rank/auth"
	"github.com/danielhkuo/quickly-rank/cliparse"
	"github.com/danielhkuo/quickly-rank/irv"
	"github.com/danielhkuo/quickly-rank/middleware"
	"github.com/danielhkuo/quickly-rank/models"
)

// MaxRankings bounds the number of ranking cells on one ballot.
const MaxRankings = 64

// sequence allocation retries when concurrent submissions collide
const maxSubmitAttempts = 3

type BallotHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewBallotHandler(db *sql.DB, cfg cliparse.Config) *BallotHandler {
	return &BallotHandler{db: db, cfg: cfg}
}

// SubmitBallot handles POST /elections/:slug/ballots
// Ballots are append-only. A voter changes their vote by submitting again
// with the same key; the tally counts the latest one.
func (h *BallotHandler) SubmitBallot(w http.ResponseWriter, r *http.Request) {
	shareSlug := r.PathValue("slug")
	if shareSlug == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "slug is required")
		return
	}

	var req models.SubmitBallotRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if len(req.Rankings) > MaxRankings {
		middleware.ErrorResponse(w, http.StatusBadRequest, fmt.Sprintf("at most %d rankings allowed", MaxRankings))
		return
	}
	if len(irv.NewBallot(req.Rankings)) == 0 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "rankings must start with a candidate")
		return
	}

	election, err := getElectionBySlug(r.Context(), h.db, shareSlug)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Election not found")
		return
	}
	if err != nil {
		slog.Error("failed to query election", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if election.Status != models.StatusOpen {
		middleware.ErrorResponse(w, http.StatusConflict, "Election is not open for voting")
		return
	}

	// The roster is checked at tally time so that rejected rows are still
	// reported back to the organiser.
	var voterKey *string
	if election.UseKeys {
		if strings.TrimSpace(req.Key) == "" {
			middleware.ErrorResponse(w, http.StatusBadRequest, "key is required")
			return
		}
		voterKey = &req.Key
	}

	rankings, err := json.Marshal(req.Rankings)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid rankings")
		return
	}

	ipHash := auth.HashIP(middleware.GetClientIP(r), h.cfg.AdminKeySalt)
	userAgent := r.UserAgent()

	ballotID, err := auth.GenerateID(16)
	if err != nil {
		slog.Error("failed to generate ballot ID", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to submit ballot")
		return
	}

	var seq int
	for attempt := 1; ; attempt++ {
		seq, err = h.insertBallot(r, ballotID, election.ID, voterKey, string(rankings), ipHash, userAgent)
		if err == nil || !isUniqueViolation(err) || attempt == maxSubmitAttempts {
			break
		}
		slog.Warn("ballot sequence collision, retrying", "election_id", election.ID, "attempt", attempt)
	}
	if err != nil {
		slog.Error("failed to insert ballot", "error", err, "election_id", election.ID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to submit ballot")
		return
	}

	slog.Info("ballot submitted", "election_id", election.ID, "ballot_id", ballotID, "sequence", seq)

	middleware.JSONResponse(w, http.StatusCreated, models.SubmitBallotResponse{
		BallotID: ballotID,
		Sequence: seq,
		Message:  "Ballot submitted successfully",
	})
}

// insertBallot appends a ballot with the next sequence number.
func (h *BallotHandler) insertBallot(r *http.Request, ballotID, electionID string, voterKey *string, rankings, ipHash, userAgent string) (int, error) {
	ctx := r.Context()
	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var seq int
	err = tx.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(seq), 0) + 1 FROM ballot WHERE election_id = $1
	`, electionID).Scan(&seq)
	if err != nil {
		return 0, err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO ballot (id, election_id, seq, voter_key, rankings, submitted_at, ip_hash, user_agent)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, ballotID, electionID, seq, voterKey, rankings, time.Now().UTC(), ipHash, userAgent)
	if err != nil {
		return 0, err
	}

	return seq, tx.Commit()
}
