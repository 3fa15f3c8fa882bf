// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package irv tallies Instant-Runoff Voting elections.

The package is pure: it performs no I/O, keeps no state between calls and
never returns an error. Hosts load ballots, call Run, then render or persist
what comes back.

# Running an Election

	res := irv.Run(rows, nil) // no voter keys

	res := irv.Run(rows, &irv.KeyTable{
		Submitted: keys,  // one per row
		Valid:     roster,
	})

	switch res.Outcome {
	case irv.OutcomeWinner:
		fmt.Println("Winner:", res.Winner)
	case irv.OutcomeTie:
		fmt.Println("Tie")
	}

# Ballots

A raw row is a slice of ranking cells. NewBallot stops at the first blank
cell, so trailing blanks never produce empty candidates and anything after a
gap is ignored.

# Key Deduplication

With a KeyTable, rows are validated from the last submission to the first.
A key outside the roster marks the row RowInvalidKey; a key already accepted
marks it RowDuplicateKey. The latest submission for a key is the one counted,
which is how voters change their vote. Result.UsedKeys lists the accepted keys
for the host to record.

# Rounds

Each round counts every ballot for its highest-ranked candidate that is still
active. A candidate with strictly more than half of the round's votes wins.
Otherwise every candidate holding the lowest count is eliminated at once; if
that empties the field the election is a tie.
*/
package irv
