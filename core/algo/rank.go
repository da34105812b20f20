// Package algo holds the ordering rules shared by ranked reports.
package algo

import (
	"sort"

	"github.com/huangsam/pmpulse/schema"
)

// RankEntries sorts entries by value in descending order and returns the top
// 'limit' entries with 1-based ranks assigned. Equal values are ordered by
// label, then by key, so the result never depends on input order.
// If limit is not positive, no entries are returned.
func RankEntries(entries []schema.RankedEntry, limit int) []schema.RankedEntry {
	if limit <= 0 {
		return []schema.RankedEntry{}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return lessEntry(entries[i], entries[j])
	})
	if len(entries) > limit {
		entries = entries[:limit]
	}
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}

// lessEntry reports whether a ranks ahead of b.
func lessEntry(a, b schema.RankedEntry) bool {
	if a.Amount != nil && b.Amount != nil {
		if c := a.Amount.Cmp(*b.Amount); c != 0 {
			return c > 0
		}
	} else if a.Value != b.Value {
		return a.Value > b.Value
	}
	if a.Label != b.Label {
		return a.Label < b.Label
	}
	return a.Key < b.Key
}
