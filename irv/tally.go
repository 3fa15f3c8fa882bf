// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package irv

// Tally maps each active candidate to the ballots currently counting for it.
type Tally map[string]int

// Count gives each ballot's vote to its highest-ranked active candidate.
// Ballots with no active choice left are exhausted and count for nobody.
// Every active candidate is present in the result, possibly with zero.
func Count(ballots []Ballot, active CandidateSet) Tally {
	t := make(Tally, active.Len())
	for _, name := range active.names {
		t[name] = 0
	}
	for _, b := range ballots {
		if name, ok := b.firstActive(active); ok {
			t[name]++
		}
	}
	return t
}

// Total sums the votes of the active candidates.
func (t Tally) Total(active CandidateSet) int {
	total := 0
	for _, name := range active.names {
		total += t[name]
	}
	return total
}

// Winner returns the candidate holding a strict majority of this round's
// votes. The leader is the first candidate in set order to reach the
// highest count.
func Winner(t Tally, active CandidateSet) (string, bool) {
	total := 0
	max := 0
	leader := ""
	for _, name := range active.names {
		count := t[name]
		total += count
		if count > max {
			leader = name
			max = count
		}
	}

	if max*2 > total {
		return leader, true
	}
	return "", false
}

// EliminateLowest drops every candidate tied on the lowest count. The
// returned set is empty when all active candidates were tied.
func EliminateLowest(t Tally, active CandidateSet) CandidateSet {
	if active.Len() == 0 {
		return CandidateSet{}
	}

	min := t[active.names[0]]
	for _, name := range active.names[1:] {
		if t[name] < min {
			min = t[name]
		}
	}

	drop := make(map[string]struct{})
	for _, name := range active.names {
		if t[name] == min {
			drop[name] = struct{}{}
		}
	}
	return active.without(drop)
}
