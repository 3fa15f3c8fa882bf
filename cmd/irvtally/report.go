// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"

	"github.com/danielhkuo/quickly-rank/irv"
)

var (
	counted  = color.New(color.FgGreen)
	rejected = color.New(color.FgRed)
	muted    = color.New(color.FgHiBlack)
	heading  = color.New(color.Bold)
	warn     = color.New(color.FgYellow, color.Bold)
	winner   = color.New(color.FgGreen, color.Bold)
)

// printRows lists every input row with its classification and the choice
// it counted for in the final round.
func printRows(w io.Writer, t Table, res irv.Result) {
	heading.Fprintln(w, "Ballots")

	var final []string
	if len(res.Rounds) > 0 {
		final = res.Rounds[len(res.Rounds)-1].Assignments
	}

	for i, row := range t.Rows {
		label := fmt.Sprintf("%4d", i+1)
		if t.Keys != nil {
			key := ""
			if i < len(t.Keys) {
				key = t.Keys[i]
			}
			label += fmt.Sprintf("  %-12s", key)
		}

		status := res.Rows[i]
		c := counted
		if status != irv.RowCounted {
			c = rejected
		}
		c.Fprintf(w, "%s  %-13s", label, status)

		b := irv.NewBallot(row)
		fmt.Fprintf(w, "  %s", strings.Join(b, " > "))
		if status == irv.RowCounted && final != nil {
			if final[i] == "" {
				muted.Fprint(w, "  (exhausted)")
			} else {
				muted.Fprintf(w, "  -> %s", final[i])
			}
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintln(w)
}

func printRounds(w io.Writer, res irv.Result) {
	for _, r := range res.Rounds {
		heading.Fprintf(w, "Round %d", r.Number)
		fmt.Fprintf(w, "  (%s counted, %s exhausted)\n", humanize.Comma(int64(r.Total)), humanize.Comma(int64(r.Exhausted)))

		out := make(map[string]bool, len(r.Eliminated))
		for _, name := range r.Eliminated {
			out[name] = true
		}
		for _, cv := range r.Tally {
			line := fmt.Sprintf("  %-20s %6s", cv.Candidate, humanize.Comma(int64(cv.Votes)))
			switch {
			case cv.Candidate == r.Winner:
				counted.Fprintln(w, line+"  majority")
			case out[cv.Candidate]:
				rejected.Fprintln(w, line+"  eliminated")
			default:
				fmt.Fprintln(w, line)
			}
		}
		fmt.Fprintln(w)
	}
}

func printResult(w io.Writer, res irv.Result) {
	if res.Outcome == irv.OutcomeWinner {
		last := res.Rounds[len(res.Rounds)-1]
		winner.Fprintf(w, "Winner: %s", res.Winner)
		fmt.Fprintf(w, " in the %s round\n", humanize.Ordinal(last.Number))
		return
	}

	last := res.Rounds[len(res.Rounds)-1]
	if len(last.Eliminated) == 0 {
		warn.Fprintln(w, "Tie: no ballots were counted")
		return
	}
	warn.Fprintf(w, "Tie: %s\n", strings.Join(last.Eliminated, ", "))
}
