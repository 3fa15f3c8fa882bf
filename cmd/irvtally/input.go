// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	ErrNoBallots   = errors.New("no ballots in input")
	ErrNoKeyRoster = errors.New("ballots carry keys but no roster was given")
	ErrNoKeyColumn = errors.New("roster given but ballots carry no keys")
)

// Table is a ballot table ready for counting. Keys is nil when the input
// has no key column; Valid is nil when no roster was supplied.
type Table struct {
	Rows  [][]string
	Keys  []string
	Valid []string
}

// yamlBallots is the YAML input document.
type yamlBallots struct {
	Ballots []struct {
		Key      string   `yaml:"key"`
		Rankings []string `yaml:"rankings"`
	} `yaml:"ballots"`
	ValidKeys []string `yaml:"valid_keys"`
}

// detectFormat picks csv or yaml from the file extension when format is empty.
func detectFormat(path, format string) (string, error) {
	if format == "" {
		switch strings.ToLower(filepath.Ext(path)) {
		case ".yaml", ".yml":
			format = "yaml"
		default:
			format = "csv"
		}
	}
	if format != "csv" && format != "yaml" {
		return "", fmt.Errorf("unknown format %q (want csv or yaml)", format)
	}
	return format, nil
}

// readCSV reads one ballot per record. With keyed set the first column is
// the voter key. Records may have different lengths.
func readCSV(r io.Reader, keyed, header bool) (Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return Table{}, fmt.Errorf("failed to read csv: %w", err)
	}
	if header && len(records) > 0 {
		records = records[1:]
	}

	var t Table
	if keyed {
		t.Keys = make([]string, 0, len(records))
	}
	for _, rec := range records {
		if keyed {
			if len(rec) == 0 {
				t.Keys = append(t.Keys, "")
				t.Rows = append(t.Rows, nil)
				continue
			}
			t.Keys = append(t.Keys, rec[0])
			rec = rec[1:]
		}
		t.Rows = append(t.Rows, rec)
	}
	return t, nil
}

func readYAML(r io.Reader) (Table, error) {
	var doc yamlBallots
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return Table{}, fmt.Errorf("failed to read yaml: %w", err)
	}

	t := Table{Valid: doc.ValidKeys}
	keyed := false
	for _, b := range doc.Ballots {
		if b.Key != "" {
			keyed = true
		}
	}
	if keyed {
		t.Keys = make([]string, 0, len(doc.Ballots))
	}
	for _, b := range doc.Ballots {
		t.Rows = append(t.Rows, b.Rankings)
		if keyed {
			t.Keys = append(t.Keys, b.Key)
		}
	}
	return t, nil
}

// readRoster reads one key per line, skipping blank lines.
func readRoster(r io.Reader) ([]string, error) {
	keys := []string{}
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if key := strings.TrimSpace(sc.Text()); key != "" {
			keys = append(keys, key)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read roster: %w", err)
	}
	return keys, nil
}

// loadTable reads the ballot file and optional roster file.
func loadTable(path, format, rosterPath string, keyed, header bool) (Table, error) {
	format, err := detectFormat(path, format)
	if err != nil {
		return Table{}, err
	}

	f, err := os.Open(path)
	if err != nil {
		return Table{}, fmt.Errorf("failed to open ballots: %w", err)
	}
	defer f.Close()

	var t Table
	if format == "yaml" {
		t, err = readYAML(f)
	} else {
		t, err = readCSV(f, keyed, header)
	}
	if err != nil {
		return Table{}, err
	}

	if rosterPath != "" {
		rf, err := os.Open(rosterPath)
		if err != nil {
			return Table{}, fmt.Errorf("failed to open roster: %w", err)
		}
		defer rf.Close()

		roster, err := readRoster(rf)
		if err != nil {
			return Table{}, err
		}
		if t.Valid == nil {
			t.Valid = []string{}
		}
		t.Valid = append(t.Valid, roster...)
	}

	return t, t.check()
}

// check applies the preconditions a count needs.
func (t Table) check() error {
	if len(t.Rows) == 0 {
		return ErrNoBallots
	}
	if t.Keys != nil && len(t.Valid) == 0 {
		return ErrNoKeyRoster
	}
	if t.Keys == nil && t.Valid != nil {
		return ErrNoKeyColumn
	}
	return nil
}

// writeUsedKeys writes one key per line.
func writeUsedKeys(path string, keys []string) error {
	var b strings.Builder
	for _, k := range keys {
		b.WriteString(k)
		b.WriteByte('\n')
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("failed to write used keys: %w", err)
	}
	return nil
}
