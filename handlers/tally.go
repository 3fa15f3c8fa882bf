// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/danielhkuo/quickly-rank/irv"
	"github.com/danielhkuo/quickly-rank/middleware"
	"github.com/danielhkuo/quickly-rank/models"
)

// TallyHandler counts ballots supplied in the request without storing them.
type TallyHandler struct{}

func NewTallyHandler() *TallyHandler {
	return &TallyHandler{}
}

// Tally handles POST /tally
func (h *TallyHandler) Tally(w http.ResponseWriter, r *http.Request) {
	var req models.TallyRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if len(req.Ballots) == 0 {
		middleware.ErrorResponse(w, http.StatusUnprocessableEntity, "No ballots supplied")
		return
	}

	// Supplying either key list turns on deduplication.
	var keys *irv.KeyTable
	if req.Keys != nil || req.ValidKeys != nil {
		if len(req.ValidKeys) == 0 {
			middleware.ErrorResponse(w, http.StatusUnprocessableEntity, "keys supplied without valid_keys")
			return
		}
		if req.Keys == nil {
			middleware.ErrorResponse(w, http.StatusUnprocessableEntity, "valid_keys supplied without keys")
			return
		}
		keys = &irv.KeyTable{Submitted: req.Keys, Valid: req.ValidKeys}
	}

	res := irv.Run(req.Ballots, keys)

	slog.Info("ad hoc tally",
		"ballots", len(req.Ballots),
		"keyed", keys != nil,
		"outcome", res.Outcome,
		"rounds", len(res.Rounds),
	)

	middleware.JSONResponse(w, http.StatusOK, models.TallyResponse{
		Result:  res,
		Summary: Summarize(res),
	})
}
