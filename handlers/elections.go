// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/danielhkuo/quickly-rank/auth"
	"github.com/danielhkuo/quickly-rank/cliparse"
	"github.com/danielhkuo/quickly-rank/middleware"
	"github.com/danielhkuo/quickly-rank/models"
)

type ElectionHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewElectionHandler(db *sql.DB, cfg cliparse.Config) *ElectionHandler {
	return &ElectionHandler{db: db, cfg: cfg}
}

// requireAdmin validates the X-Admin-Key header for the {id} path value and
// returns the election ID, writing an error response when it fails.
func (h *ElectionHandler) requireAdmin(w http.ResponseWriter, r *http.Request) (string, bool) {
	electionID := r.PathValue("id")
	if electionID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "election_id is required")
		return "", false
	}

	adminKey := r.Header.Get("X-Admin-Key")
	if err := auth.ValidateAdminKey(electionID, adminKey, h.cfg.AdminKeySalt); err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid admin key")
		return "", false
	}
	return electionID, true
}

// CreateElection handles POST /elections
func (h *ElectionHandler) CreateElection(w http.ResponseWriter, r *http.Request) {
	var req models.CreateElectionRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Title == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "title is required")
		return
	}
	if req.CreatorName == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "creator_name is required")
		return
	}

	electionID, err := auth.GenerateID(16)
	if err != nil {
		slog.Error("failed to generate election ID", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create election")
		return
	}

	adminKey := auth.GenerateAdminKey(electionID, h.cfg.AdminKeySalt)

	_, err = h.db.ExecContext(r.Context(), `
		INSERT INTO election (id, title, description, creator_name, method, status, use_keys, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, electionID, req.Title, req.Description, req.CreatorName, models.MethodIRV, models.StatusDraft, req.UseKeys, time.Now().UTC())

	if err != nil {
		slog.Error("failed to insert election", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create election")
		return
	}

	slog.Info("election created", "election_id", electionID, "creator", req.CreatorName, "use_keys", req.UseKeys)

	middleware.JSONResponse(w, http.StatusCreated, models.CreateElectionResponse{
		ElectionID: electionID,
		AdminKey:   adminKey,
	})
}

// AddKeys handles POST /elections/:id/keys
// Keys already on the roster are skipped. Closed elections are frozen.
func (h *ElectionHandler) AddKeys(w http.ResponseWriter, r *http.Request) {
	electionID, ok := h.requireAdmin(w, r)
	if !ok {
		return
	}

	var req models.AddKeysRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	var keys []string
	for _, k := range req.Keys {
		if strings.TrimSpace(k) == "" {
			middleware.ErrorResponse(w, http.StatusBadRequest, "keys cannot be blank")
			return
		}
		keys = append(keys, k)
	}
	if req.Generate != 0 {
		generated, err := auth.GenerateVoterKeys(req.Generate)
		if errors.Is(err, auth.ErrKeyCount) {
			middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
			return
		}
		if err != nil {
			slog.Error("failed to generate voter keys", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to generate keys")
			return
		}
		keys = append(keys, generated...)
	}
	if len(keys) == 0 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "keys or generate is required")
		return
	}

	election, err := getElectionByID(r.Context(), h.db, electionID)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Election not found")
		return
	}
	if err != nil {
		slog.Error("failed to query election", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if !election.UseKeys {
		middleware.ErrorResponse(w, http.StatusConflict, "Election does not use voter keys")
		return
	}
	if election.Status == models.StatusClosed {
		middleware.ErrorResponse(w, http.StatusConflict, "Cannot add keys to a closed election")
		return
	}

	tx, err := h.db.BeginTx(r.Context(), nil)
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	added := []string{}
	for _, key := range keys {
		res, err := tx.ExecContext(r.Context(), `
			INSERT INTO valid_key (election_id, voter_key, added_at)
			VALUES ($1, $2, $3)
			ON CONFLICT (election_id, voter_key) DO NOTHING
		`, electionID, key, now)
		if err != nil {
			slog.Error("failed to insert key", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to add keys")
			return
		}
		if n, _ := res.RowsAffected(); n > 0 {
			added = append(added, key)
		}
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to add keys")
		return
	}

	slog.Info("keys added", "election_id", electionID, "added", len(added), "requested", len(keys))

	middleware.JSONResponse(w, http.StatusCreated, models.AddKeysResponse{
		Added: len(added),
		Keys:  added,
	})
}

// ListKeys handles GET /elections/:id/keys
// Used marks keys counted by the most recent tally.
func (h *ElectionHandler) ListKeys(w http.ResponseWriter, r *http.Request) {
	electionID, ok := h.requireAdmin(w, r)
	if !ok {
		return
	}

	rows, err := h.db.QueryContext(r.Context(), `
		SELECT v.voter_key, v.added_at, u.voter_key IS NOT NULL
		FROM valid_key v
		LEFT JOIN used_key u ON u.election_id = v.election_id AND u.voter_key = v.voter_key
		WHERE v.election_id = $1
		ORDER BY v.added_at, v.voter_key
	`, electionID)
	if err != nil {
		slog.Error("failed to query keys", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	keys := []models.RosterKey{}
	for rows.Next() {
		var k models.RosterKey
		if err := rows.Scan(&k.Key, &k.AddedAt, &k.Used); err != nil {
			slog.Error("failed to scan key", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		slog.Error("failed to iterate keys", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.ListKeysResponse{Keys: keys})
}

// PublishElection handles POST /elections/:id/publish
func (h *ElectionHandler) PublishElection(w http.ResponseWriter, r *http.Request) {
	electionID, ok := h.requireAdmin(w, r)
	if !ok {
		return
	}

	var status string
	err := h.db.QueryRowContext(r.Context(), "SELECT status FROM election WHERE id = $1", electionID).Scan(&status)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Election not found")
		return
	}
	if err != nil {
		slog.Error("failed to query election", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if status != models.StatusDraft {
		middleware.ErrorResponse(w, http.StatusConflict, "Election is not in draft status")
		return
	}

	shareSlug := auth.GenerateShareSlug(electionID, h.cfg.ElectionSlugSalt)

	_, err = h.db.ExecContext(r.Context(), `
		UPDATE election
		SET status = $1, share_slug = $2
		WHERE id = $3
	`, models.StatusOpen, shareSlug, electionID)

	if err != nil {
		slog.Error("failed to publish election", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to publish election")
		return
	}

	slog.Info("election published", "election_id", electionID, "share_slug", shareSlug)

	middleware.JSONResponse(w, http.StatusOK, models.PublishElectionResponse{
		ShareSlug: shareSlug,
		ShareURL:  strings.TrimRight(h.cfg.BaseURL, "/") + "/elections/" + shareSlug,
	})
}

// GetElectionAdmin handles GET /elections/:id/admin
func (h *ElectionHandler) GetElectionAdmin(w http.ResponseWriter, r *http.Request) {
	electionID, ok := h.requireAdmin(w, r)
	if !ok {
		return
	}

	election, err := getElectionByID(r.Context(), h.db, electionID)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Election not found")
		return
	}
	if err != nil {
		slog.Error("failed to query election", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, election)
}

// PreviewTally handles GET /elections/:id/tally
// Runs the count over the ballots so far without recording anything.
func (h *ElectionHandler) PreviewTally(w http.ResponseWriter, r *http.Request) {
	electionID, ok := h.requireAdmin(w, r)
	if !ok {
		return
	}

	election, err := getElectionByID(r.Context(), h.db, electionID)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Election not found")
		return
	}
	if err != nil {
		slog.Error("failed to query election", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	tally, err := ComputeIRVResult(r.Context(), h.db, electionID, election.UseKeys)
	if writeTallyError(w, err) {
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.TallyResponse{
		Result:  tally.Result,
		Summary: Summarize(tally.Result),
	})
}

// CloseElection handles POST /elections/:id/close
// Closing counts the ballots, records the used keys and freezes the result.
func (h *ElectionHandler) CloseElection(w http.ResponseWriter, r *http.Request) {
	electionID, ok := h.requireAdmin(w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer tx.Rollback()

	election, err := getElectionByID(ctx, tx, electionID)
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
		middleware.ErrorResponse(w, http.StatusConflict, "Election is not open")
		return
	}

	tally, err := ComputeIRVResult(ctx, tx, electionID, election.UseKeys)
	if writeTallyError(w, err) {
		return
	}

	snapshotID, err := auth.GenerateID(16)
	if err != nil {
		slog.Error("failed to generate snapshot ID", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to close election")
		return
	}
	closedAt := time.Now().UTC()

	snapshot := models.ResultSnapshot{
		ID:         snapshotID,
		ElectionID: electionID,
		Method:     models.MethodIRV,
		ComputedAt: closedAt,
		Result:     tally.Result,
		Summary:    Summarize(tally.Result),
		InputsHash: tally.InputsHash,
	}

	if election.UseKeys {
		if err := recordUsedKeys(ctx, tx, electionID, tally.Result.UsedKeys, closedAt); err != nil {
			slog.Warn(WarnUnrecordedKeys, "election_id", electionID, "error", err)
			snapshot.Warnings = append(snapshot.Warnings, WarnUnrecordedKeys)
		}
	}

	payload, err := json.Marshal(snapshot)
	if err != nil {
		slog.Error("failed to encode snapshot", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to save results")
		return
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO result_snapshot (id, election_id, method, computed_at, payload)
		VALUES ($1, $2, $3, $4, $5)
	`, snapshotID, electionID, models.MethodIRV, closedAt, string(payload))

	if err != nil {
		slog.Error("failed to insert snapshot", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to save results")
		return
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE election
		SET status = $1, closed_at = $2, final_snapshot_id = $3
		WHERE id = $4
	`, models.StatusClosed, closedAt, snapshotID, electionID)

	if err != nil {
		slog.Error("failed to close election", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to close election")
		return
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to close election")
		return
	}

	slog.Info("election closed",
		"election_id", electionID,
		"snapshot_id", snapshotID,
		"outcome", tally.Result.Outcome,
		"winner", tally.Result.Winner,
		"rounds", len(tally.Result.Rounds),
	)

	middleware.JSONResponse(w, http.StatusOK, models.CloseElectionResponse{
		ClosedAt: closedAt,
		Snapshot: snapshot,
	})
}

// writeTallyError maps ComputeIRVResult errors to responses. It reports
// whether a response was written.
func writeTallyError(w http.ResponseWriter, err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, ErrNoBallots):
		middleware.ErrorResponse(w, http.StatusUnprocessableEntity, "No ballots have been submitted")
	case errors.Is(err, ErrNoKeyRoster):
		middleware.ErrorResponse(w, http.StatusUnprocessableEntity, "Election uses voter keys but no valid keys were added")
	default:
		slog.Error("failed to compute tally", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to compute results")
	}
	return true
}
