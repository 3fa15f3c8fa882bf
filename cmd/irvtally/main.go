// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Command irvtally counts a ballot file by instant runoff and prints every
// round.
//
//	irvtally [flags] ballots.csv
//	irvtally -roster keys.txt -keyed -used-out used.txt ballots.csv
//	irvtally ballots.yaml
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/danielhkuo/quickly-rank/irv"
)

const (
	exitOK     = 0
	exitUsage  = 2
	exitConfig = 3
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("irvtally", flag.ContinueOnError)
	fs.SetOutput(stderr)

	format := fs.String("format", "", "Input format: csv or yaml (default from extension)")
	keyed := fs.Bool("keyed", false, "CSV first column holds the voter key")
	header := fs.Bool("header", false, "CSV first row is a header")
	rosterPath := fs.String("roster", "", "File of valid keys, one per line")
	usedOut := fs.String("used-out", "", "Write the keys counted to this file")
	noColor := fs.Bool("no-color", false, "Disable colored output")

	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: irvtally [flags] BALLOTS")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return exitUsage
	}

	if *noColor {
		color.NoColor = true
	} else if f, ok := stdout.(*os.File); !ok || !isatty.IsTerminal(f.Fd()) {
		color.NoColor = true
	}

	t, err := loadTable(fs.Arg(0), *format, *rosterPath, *keyed, *header)
	if errors.Is(err, ErrNoBallots) || errors.Is(err, ErrNoKeyRoster) || errors.Is(err, ErrNoKeyColumn) {
		fmt.Fprintf(stderr, "irvtally: %v\n", err)
		return exitConfig
	}
	if err != nil {
		fmt.Fprintf(stderr, "irvtally: %v\n", err)
		return exitUsage
	}

	var keys *irv.KeyTable
	if t.Keys != nil {
		keys = &irv.KeyTable{Submitted: t.Keys, Valid: t.Valid}
	}
	res := irv.Run(t.Rows, keys)

	printRows(stdout, t, res)
	printRounds(stdout, res)
	printResult(stdout, res)

	// The result stands even when the used keys cannot be saved.
	if *usedOut != "" && keys != nil {
		if err := writeUsedKeys(*usedOut, res.UsedKeys); err != nil {
			warn.Fprintf(stdout, "Warning: unable to record keys used: %v\n", err)
		}
	}

	return exitOK
}
