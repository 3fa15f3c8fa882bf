// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package irv

// CandidateSet is an ordered set of candidate names. Order only affects
// reporting; membership is what the tally depends on. The zero value is an
// empty set.
type CandidateSet struct {
	names []string
	index map[string]struct{}
}

// NewCandidateSet returns a set holding names in first-seen order, skipping
// duplicates and blanks.
func NewCandidateSet(names ...string) CandidateSet {
	s := CandidateSet{index: make(map[string]struct{}, len(names))}
	for _, name := range names {
		s.add(name)
	}
	return s
}

// DiscoverCandidates returns every distinct choice appearing on any of the
// ballots. It is the full candidate universe for a run.
func DiscoverCandidates(ballots []Ballot) CandidateSet {
	s := CandidateSet{index: make(map[string]struct{})}
	for _, b := range ballots {
		for _, name := range b {
			s.add(name)
		}
	}
	return s
}

func (s *CandidateSet) add(name string) {
	if isBlank(name) {
		return
	}
	if _, ok := s.index[name]; ok {
		return
	}
	s.index[name] = struct{}{}
	s.names = append(s.names, name)
}

// Contains reports whether name is in the set.
func (s CandidateSet) Contains(name string) bool {
	_, ok := s.index[name]
	return ok
}

// Len returns the number of candidates.
func (s CandidateSet) Len() int {
	return len(s.names)
}

// Names returns a copy of the candidates in set order.
func (s CandidateSet) Names() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// without returns a new set lacking every name in drop.
func (s CandidateSet) without(drop map[string]struct{}) CandidateSet {
	out := CandidateSet{index: make(map[string]struct{}, len(s.names))}
	for _, name := range s.names {
		if _, gone := drop[name]; !gone {
			out.add(name)
		}
	}
	return out
}
