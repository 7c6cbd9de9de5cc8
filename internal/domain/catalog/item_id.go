package catalog

import (
	"fmt"
	"regexp"
	"strconv"
)

// Item identifiers look like ITM10042. New identifiers are allocated from
// the highest numeric suffix observed across two orderings of the items
// table: the lexicographic maximum (which can lag behind, e.g. ITM9999 vs
// ITM10000) and the most recently added row (which can lag when rows are
// backfilled). Taking the max of both keeps allocation monotonic.
const (
	// ItemIDSeed is the numeric base used when the table is empty or no
	// identifier parses; the first allocated ID is then ITM10001.
	ItemIDSeed = 10000

	// MaxIDAttempts bounds the insert retry loop on duplicate-key conflicts.
	MaxIDAttempts = 5
)

var itemIDPattern = regexp.MustCompile(`ITM(\d+)`)

// ParseItemID extracts the numeric suffix of an item identifier.
// Returns 0 for empty or unparseable identifiers.
func ParseItemID(id string) int {
	m := itemIDPattern.FindStringSubmatch(id)
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return n
}

// FormatItemID renders a numeric suffix as an item identifier
func FormatItemID(n int) string {
	return fmt.Sprintf("ITM%d", n)
}

// MaxIDNumber returns the highest numeric suffix among the given
// identifiers, or ItemIDSeed when none of them parse.
func MaxIDNumber(ids ...string) int {
	maxNum := 0
	for _, id := range ids {
		if n := ParseItemID(id); n > maxNum {
			maxNum = n
		}
	}
	if maxNum == 0 {
		return ItemIDSeed
	}
	return maxNum
}
