package ledger

import (
	"math"
	"sort"

	"github.com/avries/Asset-Ledger-Backend/internal/model"
)

// RoundingPrecision rounds monetary aggregates to two decimal places.
const RoundingPrecision = 100

// normalizeEpsilon is the tolerance under which a percentage sum is
// considered to already be exactly 100.
const normalizeEpsilon = 1e-9

// Recompute derives portfolio totals from the given positions. It is a
// pure function: it holds no state and persists nothing.
//
// Total investment uses the weighted-average cost basis where one is
// known and falls back to the current market price where it is not;
// unknown cost is never treated as zero. Totals that drift slightly
// negative from floating-point error clamp to zero.
func Recompute(positions []model.Position) model.AggregateSummary {
	var totalValue, totalInvestment float64
	count := 0

	for _, p := range positions {
		if p.Quantity <= 0 {
			continue
		}
		totalValue += p.MarketValue()
		totalInvestment += p.Invested()
		count++
	}

	totalValue = max(0, totalValue)
	totalInvestment = max(0, totalInvestment)

	profitLoss := totalValue - totalInvestment
	profitLossPercent := 0.0
	if totalInvestment > 0 {
		profitLossPercent = profitLoss / totalInvestment * 100
	}

	return model.AggregateSummary{
		TotalValue:        math.Round(totalValue*RoundingPrecision) / RoundingPrecision,
		TotalInvestment:   math.Round(totalInvestment*RoundingPrecision) / RoundingPrecision,
		ProfitLoss:        math.Round(profitLoss*RoundingPrecision) / RoundingPrecision,
		ProfitLossPercent: math.Round(profitLossPercent*RoundingPrecision) / RoundingPrecision,
		PositionCount:     count,
	}
}

// Distribution derives the value distribution over positions with
// positive value, sorted descending by value, with percentages normalized
// to sum to exactly 100.
func Distribution(positions []model.Position) []model.DistributionEntry {
	var entries []model.DistributionEntry
	var total float64

	for _, p := range positions {
		value := p.MarketValue()
		if value <= 0 {
			continue
		}
		entries = append(entries, model.DistributionEntry{Asset: p.Asset, Value: value})
		total += value
	}
	if len(entries) == 0 {
		return nil
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Value > entries[j].Value
	})

	for i := range entries {
		entries[i].RawPercent = entries[i].Value * 100 / total
	}
	normalizePercentages(entries, total)
	return entries
}

// normalizePercentages fills in the Percent field so the entries sum to
// exactly 100 despite floating-point rounding. Independent rounding of N
// shares can sum to 99.98 or 100.02, which reads as a bug when a UI lists
// exactly the visible items.
//
// One entry takes 100 outright. With two entries the smaller share is
// computed and the larger gets its exact complement, so the sum is exact
// through a single subtraction. With three or more, every share is scaled
// by 100/T when the raw sum T has drifted, preserving relative
// proportions while forcing the sum to 100.
func normalizePercentages(entries []model.DistributionEntry, total float64) {
	switch len(entries) {
	case 1:
		entries[0].RawPercent = 100
		entries[0].Percent = 100

	case 2:
		// Entries are sorted descending, so the smaller one is last.
		smaller := entries[1].Value * 100 / total
		entries[1].Percent = smaller
		entries[0].Percent = 100 - smaller

	default:
		var sum float64
		for i := range entries {
			entries[i].Percent = entries[i].RawPercent
			sum += entries[i].RawPercent
		}
		if math.Abs(sum-100) > normalizeEpsilon {
			scale := 100 / sum
			for i := range entries {
				entries[i].Percent *= scale
			}
		}
	}
}
