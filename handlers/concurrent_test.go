// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/danielhkuo/quickly-rank/models"
	"github.com/danielhkuo/quickly-rank/testutil"
)

// TestConcurrentBallotSubmissions verifies that simultaneous submissions
// each get their own sequence number and none are lost
func TestConcurrentBallotSubmissions(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	cfg := testutil.GetTestConfig()
	ballotHandler := NewBallotHandler(db, cfg)

	electionID, _, shareSlug := testutil.CreateTestElection(t, db, cfg, models.StatusOpen, true)

	numVoters := 10
	candidates := []string{"Alice", "Bob", "Carol"}

	var successCount atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < numVoters; i++ {
		wg.Add(1)
		go func(voterIdx int) {
			defer wg.Done()

			ballotReq := models.SubmitBallotRequest{
				Rankings: []string{candidates[voterIdx%3], candidates[(voterIdx+1)%3]},
				Key:      fmt.Sprintf("voter-%d", voterIdx),
			}
			body, _ := json.Marshal(ballotReq)
			req := httptest.NewRequest("POST", "/elections/"+shareSlug+"/ballots", bytes.NewReader(body))
			req.SetPathValue("slug", shareSlug)
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			ballotHandler.SubmitBallot(w, req)

			if w.Code == http.StatusCreated {
				successCount.Add(1)
			}
		}(i)
	}

	wg.Wait()

	if int(successCount.Load()) != numVoters {
		t.Errorf("Expected %d successful submissions, got %d", numVoters, successCount.Load())
	}

	var ballotCount, distinctSeq, maxSeq int
	err := db.QueryRow(`
		SELECT COUNT(*), COUNT(DISTINCT seq), COALESCE(MAX(seq), 0)
		FROM ballot WHERE election_id = $1
	`, electionID).Scan(&ballotCount, &distinctSeq, &maxSeq)
	if err != nil {
		t.Fatalf("Failed to count ballots: %v", err)
	}

	if ballotCount != numVoters {
		t.Errorf("Expected %d ballots in database, got %d", numVoters, ballotCount)
	}
	if distinctSeq != numVoters || maxSeq != numVoters {
		t.Errorf("Expected sequences 1..%d, got %d distinct with max %d", numVoters, distinctSeq, maxSeq)
	}
}

// TestConcurrentElectionClose verifies that when several admins close the
// same election at once, exactly one snapshot is frozen
func TestConcurrentElectionClose(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	cfg := testutil.GetTestConfig()
	electionHandler := NewElectionHandler(db, cfg)

	electionID, adminKey, _ := testutil.CreateTestElection(t, db, cfg, models.StatusOpen, false)
	testutil.SubmitTestBallot(t, db, electionID, "", "A", "B")
	testutil.SubmitTestBallot(t, db, electionID, "", "B")
	testutil.SubmitTestBallot(t, db, electionID, "", "A")

	numAttempts := 5

	var successCount, conflictCount atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < numAttempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			req := testutil.MakeRequest("POST", "/elections/"+electionID+"/close", nil,
				map[string]string{"X-Admin-Key": adminKey})
			req.SetPathValue("id", electionID)
			w := httptest.NewRecorder()

			electionHandler.CloseElection(w, req)

			switch w.Code {
			case http.StatusOK:
				successCount.Add(1)
			case http.StatusConflict:
				conflictCount.Add(1)
			}
		}()
	}

	wg.Wait()

	if successCount.Load() != 1 {
		t.Errorf("Expected exactly 1 successful close, got %d", successCount.Load())
	}
	if conflictCount.Load() != int32(numAttempts-1) {
		t.Errorf("Expected %d conflicts, got %d", numAttempts-1, conflictCount.Load())
	}

	var snapshots int
	db.QueryRow("SELECT COUNT(*) FROM result_snapshot WHERE election_id = $1", electionID).Scan(&snapshots)
	if snapshots != 1 {
		t.Errorf("Expected 1 result snapshot, got %d", snapshots)
	}
}

// TestParallelStatelessTallies runs many ad hoc counts at once; each must
// see only its own ballots
func TestParallelStatelessTallies(t *testing.T) {
	handler := NewTallyHandler()

	numRequests := 20
	var wg sync.WaitGroup
	errs := make(chan string, numRequests)

	for i := 0; i < numRequests; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			winner := fmt.Sprintf("C%d", idx)
			req := testutil.MakeRequest("POST", "/tally", models.TallyRequest{
				Ballots: [][]string{{winner}, {winner}, {"other"}},
			}, nil)
			w := httptest.NewRecorder()

			handler.Tally(w, req)

			if w.Code != http.StatusOK {
				errs <- fmt.Sprintf("request %d: status %d", idx, w.Code)
				return
			}
			var resp models.TallyResponse
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				errs <- fmt.Sprintf("request %d: %v", idx, err)
				return
			}
			if resp.Result.Winner != winner {
				errs <- fmt.Sprintf("request %d: expected %s, got %s", idx, winner, resp.Result.Winner)
			}
		}(i)
	}

	wg.Wait()
	close(errs)

	for msg := range errs {
		t.Error(msg)
	}
}
