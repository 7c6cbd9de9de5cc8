package demand

import (
	"math"
	"time"

	"github.com/stocksense/backend/internal/domain/catalog"
)

// stdDevWindowDays is the number of calendar days the standard deviation
// is computed over. Days without a sale count as zero quantity.
const stdDevWindowDays = 30

// DefaultPopularityScore is assigned to items that have never sold and
// have no prior score, when no other item has a score to average.
const DefaultPopularityScore = 0.5

// ComputeFeature derives the rolling demand statistics for one item from
// its sales history. The history may be empty; the result is then a fully
// zeroed row, so every item always has feature coverage.
//
// The daily demand estimate prefers the 30-day average and falls back to
// the 7-day average when the longer window sums to zero.
func ComputeFeature(itemID string, history []catalog.SaleRecord, today time.Time) Feature {
	rolling7 := rollingSum(history, cutoff(today, 7))
	rolling30 := rollingSum(history, cutoff(today, 30))
	rolling60 := rollingSum(history, cutoff(today, 60))

	var daily float64
	switch {
	case rolling30 > 0:
		daily = float64(rolling30) / 30
	case rolling7 > 0:
		// With positive quantities the 7-day sum is contained in the
		// 30-day sum, so this arm only fires when the longer window
		// misses rows the short one has (negative adjustments zeroing
		// out the 30-day total).
		daily = float64(rolling7) / 7
	}

	return Feature{
		ItemID:           itemID,
		Rolling7d:        rolling7,
		Rolling30d:       rolling30,
		Rolling60d:       rolling60,
		DailyDemandFinal: daily,
		DemandStdDev:     stdDev(history, daily, today),
		UpdatedAt:        today,
	}
}

// cutoff formats the inclusive lower bound of an N-day window
func cutoff(today time.Time, days int) string {
	return today.AddDate(0, 0, -days).Format(catalog.DayFormat)
}

// rollingSum sums sold quantities on or after the cutoff day
func rollingSum(history []catalog.SaleRecord, cutoff string) int {
	sum := 0
	for _, r := range history {
		if r.Date >= cutoff {
			sum += r.QtySold
		}
	}
	return sum
}

// stdDev computes the population standard deviation of the daily sold
// quantity around the daily demand estimate, over the trailing 30 calendar
// days. Days with no sale record contribute a zero quantity.
func stdDev(history []catalog.SaleRecord, daily float64, today time.Time) float64 {
	byDay := make(map[string]int, len(history))
	for _, r := range history {
		byDay[r.Date] = r.QtySold
	}

	var sumSq float64
	for i := 0; i < stdDevWindowDays; i++ {
		day := today.AddDate(0, 0, -i).Format(catalog.DayFormat)
		diff := float64(byDay[day]) - daily
		sumSq += diff * diff
	}
	return math.Sqrt(sumSq / stdDevWindowDays)
}

// PopularityScores maps each item's demand onto a 0..1 popularity score.
//
// Items with recent demand are scored relative to the busiest item
// (divisor floored at 1 so a uniformly quiet catalog does not divide by
// zero). Items with no demand in either window keep their existing score;
// if they never had one they receive the mean of all previously set
// scores, defaulting to 0.5 on a fresh catalog.
func PopularityScores(features []Feature, existing map[string]*float64) map[string]float64 {
	maxDemand := 1.0
	for _, f := range features {
		if f.DailyDemandFinal > maxDemand {
			maxDemand = f.DailyDemandFinal
		}
	}

	var sum float64
	var n int
	for _, score := range existing {
		if score != nil {
			sum += *score
			n++
		}
	}
	globalMean := DefaultPopularityScore
	if n > 0 {
		globalMean = sum / float64(n)
	}

	scores := make(map[string]float64, len(features))
	for _, f := range features {
		switch {
		case f.Rolling30d > 0 || f.Rolling7d > 0:
			scores[f.ItemID] = f.DailyDemandFinal / maxDemand
		case existing[f.ItemID] != nil:
			scores[f.ItemID] = *existing[f.ItemID]
		default:
			scores[f.ItemID] = globalMean
		}
	}
	return scores
}
