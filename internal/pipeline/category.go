package pipeline

import (
	"math/rand/v2"
	"slices"
)

// spreadThreshold is the usage count from which selection spreads over the
// least used categories instead of always taking the minimum.
const (
	spreadThreshold = 3
	spreadWidth     = 3
)

// SelectCategory picks the least used of categories according to counts.
// Categories missing from counts count as zero and ties are broken at random.
// Once even the least used category has spreadThreshold entries, the pick is
// random among the spreadWidth least used. Returns "" for no categories.
func SelectCategory(counts map[string]int, categories []string, rng *rand.Rand) string {
	if len(categories) == 0 {
		return ""
	}

	type usage struct {
		name  string
		count int
	}
	seen := make(map[string]bool, len(categories))
	list := make([]usage, 0, len(categories))
	for _, c := range categories {
		if seen[c] {
			continue
		}
		seen[c] = true
		list = append(list, usage{name: c, count: counts[c]})
	}
	slices.SortStableFunc(list, func(a, b usage) int { return a.count - b.count })

	least := list[0].count
	if least >= spreadThreshold {
		return list[rng.IntN(min(spreadWidth, len(list)))].name
	}

	ties := 1
	for ties < len(list) && list[ties].count == least {
		ties++
	}
	return list[rng.IntN(ties)].name
}
