// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package irv

import "strings"

// Ballot is a voter's ranking, most preferred first. It never contains a
// blank choice.
type Ballot []string

// NewBallot builds a ballot from raw ranking cells, stopping at the first
// blank cell.
func NewBallot(cells []string) Ballot {
	n := 0
	for n < len(cells) && !isBlank(cells[n]) {
		n++
	}
	b := make(Ballot, n)
	copy(b, cells[:n])
	return b
}

// NewBallots builds one ballot per raw row.
func NewBallots(rows [][]string) []Ballot {
	ballots := make([]Ballot, len(rows))
	for i, row := range rows {
		ballots[i] = NewBallot(row)
	}
	return ballots
}

// firstActive returns the highest-ranked choice still in active.
func (b Ballot) firstActive(active CandidateSet) (string, bool) {
	for _, name := range b {
		if active.Contains(name) {
			return name, true
		}
	}
	return "", false
}

func isBlank(cell string) bool {
	return strings.TrimSpace(cell) == ""
}
