// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/danielhkuo/quickly-rank/auth"
	"github.com/danielhkuo/quickly-rank/cliparse"
	"github.com/danielhkuo/quickly-rank/db"
	"github.com/danielhkuo/quickly-rank/models"
)

// TestDBURL is an in-memory SQLite database private to one connection
const TestDBURL = ":memory:"

// SetupTestDB creates a fresh test database with the full schema
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := db.Open(cliparse.DatabaseSQLite, TestDBURL)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	if err := db.CreateSchema(conn); err != nil {
		conn.Close()
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:             3318,
		DatabaseURL:      TestDBURL,
		DatabaseType:     cliparse.DatabaseSQLite,
		AdminKeySalt:     "test-admin-salt",
		ElectionSlugSalt: "test-slug-salt",
		BaseURL:          "https://quickly-rank.test",
	}
}

// CreateTestElection creates an election in the database and returns its ID,
// admin key and share slug. status should be "draft", "open", or "closed".
func CreateTestElection(t *testing.T, db *sql.DB, cfg cliparse.Config, status string, useKeys bool) (electionID, adminKey, shareSlug string) {
	t.Helper()

	electionID, _ = auth.GenerateID(16)
	adminKey = auth.GenerateAdminKey(electionID, cfg.AdminKeySalt)

	var slug *string
	if status == models.StatusOpen || status == models.StatusClosed {
		s := auth.GenerateShareSlug(electionID, cfg.ElectionSlugSalt)
		slug = &s
		shareSlug = s
	}

	var closedAt *time.Time
	if status == models.StatusClosed {
		now := time.Now().UTC()
		closedAt = &now
	}

	_, err := db.Exec(`
		INSERT INTO election (id, title, description, creator_name, method, status, use_keys, share_slug, closed_at, created_at)
		VALUES ($1, 'Test Election', 'A test election', 'TestUser', $2, $3, $4, $5, $6, $7)
	`, electionID, models.MethodIRV, status, useKeys, slug, closedAt, time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to create test election: %v", err)
	}

	return electionID, adminKey, shareSlug
}

// AddTestKeys puts keys on an election's roster
func AddTestKeys(t *testing.T, db *sql.DB, electionID string, keys ...string) {
	t.Helper()

	for _, key := range keys {
		_, err := db.Exec(`
			INSERT INTO valid_key (election_id, voter_key, added_at)
			VALUES ($1, $2, $3)
		`, electionID, key, time.Now().UTC())
		if err != nil {
			t.Fatalf("Failed to add test key: %v", err)
		}
	}
}

// SubmitTestBallot appends a ballot with the next sequence number and
// returns its ID. An empty key is stored as NULL.
func SubmitTestBallot(t *testing.T, db *sql.DB, electionID, key string, rankings ...string) string {
	t.Helper()

	var seq int
	err := db.QueryRow(`
		SELECT COALESCE(MAX(seq), 0) + 1 FROM ballot WHERE election_id = $1
	`, electionID).Scan(&seq)
	if err != nil {
		t.Fatalf("Failed to allocate ballot sequence: %v", err)
	}

	payload, err := json.Marshal(rankings)
	if err != nil {
		t.Fatalf("Failed to encode rankings: %v", err)
	}

	var voterKey *string
	if key != "" {
		voterKey = &key
	}

	ballotID, _ := auth.GenerateID(16)
	_, err = db.Exec(`
		INSERT INTO ballot (id, election_id, seq, voter_key, rankings, submitted_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, ballotID, electionID, seq, voterKey, string(payload), time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to create test ballot: %v", err)
	}

	return ballotID
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
