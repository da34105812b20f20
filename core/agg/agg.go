// Package agg has the categorical and ranking aggregations over snapshot records.
package agg

import (
	"slices"

	"github.com/huangsam/pmpulse/core/algo"
	"github.com/huangsam/pmpulse/internal/contract"
	"github.com/huangsam/pmpulse/schema"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// CountBy counts records by a discrete field. Every known category is present,
// in the given order, even when its count is zero. Values outside the known set
// follow in alphabetical order. The counts always sum to len(records).
func CountBy[R any, K ~string](records []R, field func(R) K, known []K) []schema.CategoryCount {
	counts := lo.CountValuesBy(records, field)

	out := make([]schema.CategoryCount, 0, len(known)+len(counts))
	for _, k := range lo.Uniq(known) {
		out = append(out, schema.CategoryCount{Category: string(k), Count: counts[k]})
		delete(counts, k)
	}

	extra := lo.Keys(counts)
	slices.Sort(extra)
	for _, k := range extra {
		out = append(out, schema.CategoryCount{Category: string(k), Count: counts[k]})
	}
	return out
}

// TopN sums value per group and returns the top n groups by descending total.
// The group function yields a unique key and a display label; the label of the
// first record seen for a key wins and is truncated for display.
func TopN[R any](records []R, group func(R) (key, label string), value func(R) decimal.Decimal, n int) []schema.RankedEntry {
	return top(records, group, value, n, false)
}

// TopAmount is TopN for money: totals are summed exactly and every entry
// carries its Amount.
func TopAmount[R any](records []R, group func(R) (key, label string), value func(R) decimal.Decimal, n int) []schema.RankedEntry {
	return top(records, group, value, n, true)
}

// TopCount counts records per group and returns the top n groups.
func TopCount[R any](records []R, group func(R) (key, label string), n int) []schema.RankedEntry {
	return TopN(records, group, func(R) decimal.Decimal { return one }, n)
}

var one = decimal.NewFromInt(1)

func top[R any](records []R, group func(R) (key, label string), value func(R) decimal.Decimal, n int, amounts bool) []schema.RankedEntry {
	keyOf := func(r R) string {
		key, _ := group(r)
		return key
	}
	groups := lo.GroupBy(records, keyOf)

	entries := lo.MapToSlice(groups, func(key string, items []R) schema.RankedEntry {
		_, label := group(items[0])
		total := lo.Reduce(items, func(sum decimal.Decimal, r R, _ int) decimal.Decimal {
			return sum.Add(value(r))
		}, decimal.Zero)
		entry := schema.RankedEntry{
			Key:   key,
			Label: contract.TruncateLabel(label, contract.LabelMaxRunes),
			Value: total.InexactFloat64(),
		}
		if amounts {
			entry.Amount = &total
		}
		return entry
	})
	return algo.RankEntries(entries, n)
}
