// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package irv

// Outcome is the terminal state of an election run.
type Outcome string

const (
	OutcomeWinner Outcome = "winner"
	OutcomeTie    Outcome = "tie"
)

// CandidateVotes is one line of a round's tally.
type CandidateVotes struct {
	Candidate string `json:"candidate"`
	Votes     int    `json:"votes"`
}

// Round records one counting pass.
type Round struct {
	Number int              `json:"number"`
	Tally  []CandidateVotes `json:"tally"`
	Total  int              `json:"total"`
	// Exhausted counts accepted ballots with no active choice left.
	Exhausted  int      `json:"exhausted"`
	Eliminated []string `json:"eliminated,omitempty"`
	Winner     string   `json:"winner,omitempty"`
	// Assignments has one entry per input row: the candidate the row's
	// ballot counted for, or "" when rejected or exhausted.
	Assignments []string `json:"assignments"`
}

// Result is everything a run produces for the host.
type Result struct {
	Outcome    Outcome     `json:"outcome"`
	Winner     string      `json:"winner,omitempty"`
	Candidates []string    `json:"candidates"`
	Rounds     []Round     `json:"rounds"`
	Rows       []RowStatus `json:"rows"`
	UsedKeys   []string    `json:"used_keys,omitempty"`
}

// Run tallies rows of raw ranking cells. keys is nil when the election does
// not use voter keys.
//
// Each round either finds a majority winner or eliminates at least one
// candidate, so a run ends after at most one round per candidate.
func Run(rows [][]string, keys *KeyTable) Result {
	v := Validate(NewBallots(rows), keys)
	universe := DiscoverCandidates(v.Counted)

	res := Result{
		Candidates: universe.Names(),
		Rows:       v.Statuses,
		UsedKeys:   v.UsedKeys,
	}

	active := universe
	for {
		t := Count(v.Counted, active)
		round := newRound(len(res.Rounds)+1, len(rows), t, active, v)

		if winner, ok := Winner(t, active); ok {
			round.Winner = winner
			res.Rounds = append(res.Rounds, round)
			res.Outcome = OutcomeWinner
			res.Winner = winner
			return res
		}

		next := EliminateLowest(t, active)
		for _, name := range active.names {
			if !next.Contains(name) {
				round.Eliminated = append(round.Eliminated, name)
			}
		}
		res.Rounds = append(res.Rounds, round)

		if next.Len() == 0 {
			res.Outcome = OutcomeTie
			return res
		}
		active = next
	}
}

func newRound(number, rowCount int, t Tally, active CandidateSet, v Validation) Round {
	r := Round{
		Number:      number,
		Tally:       make([]CandidateVotes, 0, active.Len()),
		Total:       t.Total(active),
		Assignments: make([]string, rowCount),
	}
	for _, name := range active.names {
		r.Tally = append(r.Tally, CandidateVotes{Candidate: name, Votes: t[name]})
	}
	for i, b := range v.Counted {
		name, ok := b.firstActive(active)
		if !ok {
			r.Exhausted++
			continue
		}
		r.Assignments[v.CountedRows[i]] = name
	}
	return r
}
