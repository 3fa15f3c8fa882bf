package models

import (
	"time"

	"github.com/danielhkuo/quickly-rank/irv"
)

// Election status constants
const (
	StatusDraft  = "draft"
	StatusOpen   = "open"
	StatusClosed = "closed"
)

// Voting method constants
const (
	MethodIRV = "irv"
)

// Request types

type CreateElectionRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	CreatorName string `json:"creator_name"`
	UseKeys     bool   `json:"use_keys"`
}

// Keys are added verbatim; Generate asks the server to mint that many more.
type AddKeysRequest struct {
	Keys     []string `json:"keys"`
	Generate int      `json:"generate"`
}

// Rankings are most preferred first; the ballot ends at the first blank entry.
type SubmitBallotRequest struct {
	Rankings []string `json:"rankings"`
	Key      string   `json:"key,omitempty"`
}

// Keys and ValidKeys are both omitted for an unkeyed tally.
type TallyRequest struct {
	Ballots   [][]string `json:"ballots"`
	Keys      []string   `json:"keys,omitempty"`
	ValidKeys []string   `json:"valid_keys,omitempty"`
}

// Response types

type CreateElectionResponse struct {
	ElectionID string `json:"election_id"`
	AdminKey   string `json:"admin_key"`
}

type AddKeysResponse struct {
	Added int      `json:"added"`
	Keys  []string `json:"keys"`
}

type RosterKey struct {
	Key     string    `json:"key"`
	Used    bool      `json:"used"`
	AddedAt time.Time `json:"added_at"`
}

type ListKeysResponse struct {
	Keys []RosterKey `json:"keys"`
}

type PublishElectionResponse struct {
	ShareSlug string `json:"share_slug"`
	ShareURL  string `json:"share_url"`
}

type SubmitBallotResponse struct {
	BallotID string `json:"ballot_id"`
	Sequence int    `json:"sequence"`
	Message  string `json:"message"`
}

type CloseElectionResponse struct {
	ClosedAt time.Time      `json:"closed_at"`
	Snapshot ResultSnapshot `json:"snapshot"`
}

type ElectionPreviewResponse struct {
	Title       string `json:"title"`
	Status      string `json:"status"`
	UseKeys     bool   `json:"use_keys"`
	BallotCount int    `json:"ballot_count"`
}

type TallyResponse struct {
	Result  irv.Result `json:"result"`
	Summary string     `json:"summary"`
}

// Domain types

type Election struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	CreatorName     string     `json:"creator_name"`
	Method          string     `json:"method"`
	Status          string     `json:"status"`
	UseKeys         bool       `json:"use_keys"`
	ShareSlug       *string    `json:"share_slug,omitempty"`
	ClosedAt        *time.Time `json:"closed_at,omitempty"`
	FinalSnapshotID *string    `json:"final_snapshot_id,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

type Ballot struct {
	ID          string    `json:"id"`
	ElectionID  string    `json:"election_id"`
	Sequence    int       `json:"sequence"`
	VoterKey    *string   `json:"-"` // Never expose in JSON
	Rankings    []string  `json:"rankings"`
	SubmittedAt time.Time `json:"submitted_at"`
	IPHash      *string   `json:"-"` // Never expose in JSON
	UserAgent   *string   `json:"-"` // Never expose in JSON
}

// IRV result types

type ResultSnapshot struct {
	ID         string     `json:"id"`
	ElectionID string     `json:"election_id"`
	Method     string     `json:"method"`
	ComputedAt time.Time  `json:"computed_at"`
	Result     irv.Result `json:"result"`
	Summary    string     `json:"summary"`
	Warnings   []string   `json:"warnings,omitempty"`
	InputsHash string     `json:"inputs_hash"` // Hash of all ballot IDs for verification
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
