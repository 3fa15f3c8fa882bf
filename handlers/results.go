// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/quickly-rank/cliparse"
	"github.com/danielhkuo/quickly-rank/middleware"
	"github.com/danielhkuo/quickly-rank/models"
)

type ResultsHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewResultsHandler(db *sql.DB, cfg cliparse.Config) *ResultsHandler {
	return &ResultsHandler{db: db, cfg: cfg}
}

// lookup resolves the {slug} path value, writing an error response when it
// cannot.
func (h *ResultsHandler) lookup(w http.ResponseWriter, r *http.Request) (models.Election, bool) {
	shareSlug := r.PathValue("slug")
	if shareSlug == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "slug is required")
		return models.Election{}, false
	}

	election, err := getElectionBySlug(r.Context(), h.db, shareSlug)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Election not found")
		return models.Election{}, false
	}
	if err != nil {
		slog.Error("failed to query election", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return models.Election{}, false
	}
	return election, true
}

func (h *ResultsHandler) countBallots(r *http.Request, electionID string) (int, error) {
	var count int
	err := h.db.QueryRowContext(r.Context(), `
		SELECT COUNT(*) FROM ballot WHERE election_id = $1
	`, electionID).Scan(&count)
	return count, err
}

// GetElection handles GET /elections/:slug
// Returns election details but NOT results (results are sealed until closed)
func (h *ResultsHandler) GetElection(w http.ResponseWriter, r *http.Request) {
	election, ok := h.lookup(w, r)
	if !ok {
		return
	}
	middleware.JSONResponse(w, http.StatusOK, election)
}

// GetResults handles GET /elections/:slug/results
// Returns 403 while the election is open, the frozen snapshot once closed
func (h *ResultsHandler) GetResults(w http.ResponseWriter, r *http.Request) {
	election, ok := h.lookup(w, r)
	if !ok {
		return
	}

	if election.Status != models.StatusClosed {
		middleware.ErrorResponse(w, http.StatusForbidden, "Results are hidden until the election is closed")
		return
	}

	if election.FinalSnapshotID == nil {
		slog.Error("closed election has no snapshot", "election_id", election.ID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Results not available")
		return
	}

	var payload string
	err := h.db.QueryRowContext(r.Context(), `
		SELECT payload FROM result_snapshot WHERE id = $1
	`, *election.FinalSnapshotID).Scan(&payload)
	if err != nil {
		slog.Error("failed to query snapshot", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	var snapshot models.ResultSnapshot
	if err := json.Unmarshal([]byte(payload), &snapshot); err != nil {
		slog.Error("failed to parse snapshot payload", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to parse results")
		return
	}

	// Which roster keys voted stays with the admin roster
	snapshot.Result.UsedKeys = nil

	ballotCount, err := h.countBallots(r, election.ID)
	if err != nil {
		slog.Error("failed to count ballots for results", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, map[string]interface{}{
		"election":     election,
		"snapshot":     snapshot,
		"ballot_count": ballotCount,
	})
}

// GetBallotCount handles GET /elections/:slug/ballot-count
// Counts submissions, including ones the tally may later reject
func (h *ResultsHandler) GetBallotCount(w http.ResponseWriter, r *http.Request) {
	election, ok := h.lookup(w, r)
	if !ok {
		return
	}

	count, err := h.countBallots(r, election.ID)
	if err != nil {
		slog.Error("failed to count ballots", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, map[string]int{
		"ballot_count": count,
	})
}

// GetPreview handles GET /elections/:slug/preview
// Returns compact data for link previews
func (h *ResultsHandler) GetPreview(w http.ResponseWriter, r *http.Request) {
	election, ok := h.lookup(w, r)
	if !ok {
		return
	}

	count, err := h.countBallots(r, election.ID)
	if err != nil {
		slog.Error("failed to count ballots", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.ElectionPreviewResponse{
		Title:       election.Title,
		Status:      election.Status,
		UseKeys:     election.UseKeys,
		BallotCount: count,
	})
}
