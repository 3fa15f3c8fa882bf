// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package irv

// RowStatus classifies a submitted row after key validation.
type RowStatus string

const (
	RowCounted      RowStatus = "counted"
	RowInvalidKey   RowStatus = "invalid_key"
	RowDuplicateKey RowStatus = "duplicate_key"
)

// KeyTable carries the voter keys for a keyed election.
// Submitted is index-aligned with the ballot rows; a row past the end of
// Submitted carries the blank key. Valid is the roster of entitled keys.
type KeyTable struct {
	Submitted []string
	Valid     []string
}

// Validation is the outcome of one validation pass.
type Validation struct {
	// Statuses has one entry per input row.
	Statuses []RowStatus
	// Counted holds the accepted ballots in their original order and
	// CountedRows their row indexes.
	Counted     []Ballot
	CountedRows []int
	// UsedKeys lists accepted keys in acceptance order (latest row first).
	UsedKeys []string
}

// Validate decides which ballots count. Without a KeyTable every ballot
// counts. With one, rows are walked from last to first and only the latest
// row for each valid key is accepted.
func Validate(ballots []Ballot, keys *KeyTable) Validation {
	v := Validation{Statuses: make([]RowStatus, len(ballots))}

	if keys == nil {
		for i := range ballots {
			v.Statuses[i] = RowCounted
		}
	} else {
		valid := make(map[string]struct{}, len(keys.Valid))
		for _, k := range keys.Valid {
			valid[k] = struct{}{}
		}

		used := make(map[string]struct{})
		for i := len(ballots) - 1; i >= 0; i-- {
			key := keys.keyAt(i)
			if _, ok := valid[key]; !ok {
				v.Statuses[i] = RowInvalidKey
				continue
			}
			if _, dup := used[key]; dup {
				v.Statuses[i] = RowDuplicateKey
				continue
			}
			used[key] = struct{}{}
			v.UsedKeys = append(v.UsedKeys, key)
			v.Statuses[i] = RowCounted
		}
	}

	for i, status := range v.Statuses {
		if status == RowCounted {
			v.Counted = append(v.Counted, ballots[i])
			v.CountedRows = append(v.CountedRows, i)
		}
	}
	return v
}

func (k *KeyTable) keyAt(row int) string {
	if row < len(k.Submitted) {
		return k.Submitted[row]
	}
	return ""
}
