// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/danielhkuo/quickly-rank/models"
	"github.com/danielhkuo/quickly-rank/testutil"
)

func slugRequest(method, path, slug string) *http.Request {
	req := testutil.MakeRequest(method, path, nil, nil)
	req.SetPathValue("slug", slug)
	return req
}

func TestGetElection(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	cfg := testutil.GetTestConfig()
	handler := NewResultsHandler(db, cfg)

	electionID, _, slug := testutil.CreateTestElection(t, db, cfg, models.StatusOpen, true)

	tests := []struct {
		name           string
		slug           string
		expectedStatus int
	}{
		{"published election", slug, http.StatusOK},
		{"unknown slug", "missing", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			handler.GetElection(w, slugRequest("GET", "/elections/"+tt.slug, tt.slug))

			testutil.AssertStatus(t, w, tt.expectedStatus)

			if tt.expectedStatus == http.StatusOK {
				var election models.Election
				testutil.AssertJSON(t, w, &election)
				if election.ID != electionID {
					t.Errorf("Expected election %s, got %s", electionID, election.ID)
				}
				if !election.UseKeys {
					t.Error("Expected use_keys to be reported")
				}
			}
		})
	}
}

func TestGetResults_SealedUntilClosed(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	cfg := testutil.GetTestConfig()
	resultsHandler := NewResultsHandler(db, cfg)
	electionHandler := NewElectionHandler(db, cfg)

	electionID, adminKey, slug := testutil.CreateTestElection(t, db, cfg, models.StatusOpen, false)
	testutil.SubmitTestBallot(t, db, electionID, "", "Alice", "Bob")
	testutil.SubmitTestBallot(t, db, electionID, "", "Bob")
	testutil.SubmitTestBallot(t, db, electionID, "", "Alice")

	w := httptest.NewRecorder()
	resultsHandler.GetResults(w, slugRequest("GET", "/elections/"+slug+"/results", slug))
	testutil.AssertStatus(t, w, http.StatusForbidden)

	req := testutil.MakeRequest("POST", "/elections/"+electionID+"/close", nil,
		map[string]string{"X-Admin-Key": adminKey})
	req.SetPathValue("id", electionID)
	w = httptest.NewRecorder()
	electionHandler.CloseElection(w, req)
	testutil.AssertStatus(t, w, http.StatusOK)

	w = httptest.NewRecorder()
	resultsHandler.GetResults(w, slugRequest("GET", "/elections/"+slug+"/results", slug))
	testutil.AssertStatus(t, w, http.StatusOK)

	var resp struct {
		Election    models.Election       `json:"election"`
		Snapshot    models.ResultSnapshot `json:"snapshot"`
		BallotCount int                   `json:"ballot_count"`
	}
	testutil.AssertJSON(t, w, &resp)

	if resp.Election.Status != models.StatusClosed {
		t.Errorf("Expected closed election, got %s", resp.Election.Status)
	}
	if resp.Snapshot.Result.Winner != "Alice" {
		t.Errorf("Expected Alice to win, got %q", resp.Snapshot.Result.Winner)
	}
	if resp.Snapshot.Summary != "Alice wins in the 1st round with 2 of 3 votes" {
		t.Errorf("Unexpected summary %q", resp.Snapshot.Summary)
	}
	if resp.BallotCount != 3 {
		t.Errorf("Expected 3 ballots, got %d", resp.BallotCount)
	}
	if resp.Snapshot.InputsHash == "" || resp.Snapshot.InputsHash == "no-ballots" {
		t.Errorf("Expected an inputs hash, got %q", resp.Snapshot.InputsHash)
	}
}

func TestGetResults_HidesUsedKeys(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	cfg := testutil.GetTestConfig()
	resultsHandler := NewResultsHandler(db, cfg)
	electionHandler := NewElectionHandler(db, cfg)

	electionID, adminKey, slug := testutil.CreateTestElection(t, db, cfg, models.StatusOpen, true)
	testutil.AddTestKeys(t, db, electionID, "k1", "k2", "k3")
	testutil.SubmitTestBallot(t, db, electionID, "k1", "Alice")
	testutil.SubmitTestBallot(t, db, electionID, "k2", "Alice", "Bob")

	req := testutil.MakeRequest("POST", "/elections/"+electionID+"/close", nil,
		map[string]string{"X-Admin-Key": adminKey})
	req.SetPathValue("id", electionID)
	w := httptest.NewRecorder()
	electionHandler.CloseElection(w, req)
	testutil.AssertStatus(t, w, http.StatusOK)

	w = httptest.NewRecorder()
	resultsHandler.GetResults(w, slugRequest("GET", "/elections/"+slug+"/results", slug))
	testutil.AssertStatus(t, w, http.StatusOK)

	if strings.Contains(w.Body.String(), "used_keys") {
		t.Errorf("Expected public results without voter keys, got %s", w.Body.String())
	}

	var resp struct {
		Snapshot models.ResultSnapshot `json:"snapshot"`
	}
	testutil.AssertJSON(t, w, &resp)
	if resp.Snapshot.Result.Winner != "Alice" {
		t.Errorf("Expected Alice to win, got %q", resp.Snapshot.Result.Winner)
	}
}

func TestGetResults_UnknownSlug(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	handler := NewResultsHandler(db, testutil.GetTestConfig())

	w := httptest.NewRecorder()
	handler.GetResults(w, slugRequest("GET", "/elections/nope/results", "nope"))
	testutil.AssertStatus(t, w, http.StatusNotFound)
}

func TestGetBallotCount(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	cfg := testutil.GetTestConfig()
	handler := NewResultsHandler(db, cfg)

	electionID, _, slug := testutil.CreateTestElection(t, db, cfg, models.StatusOpen, true)
	testutil.SubmitTestBallot(t, db, electionID, "k1", "A")
	testutil.SubmitTestBallot(t, db, electionID, "k1", "B")
	testutil.SubmitTestBallot(t, db, electionID, "k2", "A")

	w := httptest.NewRecorder()
	handler.GetBallotCount(w, slugRequest("GET", "/elections/"+slug+"/ballot-count", slug))
	testutil.AssertStatus(t, w, http.StatusOK)

	var resp map[string]int
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	// Superseded submissions still count as received
	if resp["ballot_count"] != 3 {
		t.Errorf("Expected ballot_count 3, got %d", resp["ballot_count"])
	}
}

func TestGetPreview(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	cfg := testutil.GetTestConfig()
	handler := NewResultsHandler(db, cfg)

	electionID, _, slug := testutil.CreateTestElection(t, db, cfg, models.StatusOpen, false)
	testutil.SubmitTestBallot(t, db, electionID, "", "A")

	w := httptest.NewRecorder()
	handler.GetPreview(w, slugRequest("GET", "/elections/"+slug+"/preview", slug))
	testutil.AssertStatus(t, w, http.StatusOK)

	var resp models.ElectionPreviewResponse
	testutil.AssertJSON(t, w, &resp)

	if resp.Title != "Test Election" || resp.Status != models.StatusOpen || resp.BallotCount != 1 {
		t.Errorf("Unexpected preview %+v", resp)
	}
}
