package pnl

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"
)

// MarketPriceSource resolves current prices. Pairs missing from the result
// are treated as unavailable.
type MarketPriceSource interface {
	FetchPrices(ctx context.Context, pairs []string) (map[string]decimal.Decimal, error)
}

// UnrealizedResult holds the marked-to-market PnL of open long positions.
type UnrealizedResult struct {
	PerPair map[string]decimal.Decimal
	Total   decimal.Decimal
	Skipped map[string]error
}

// For returns the unrealized PnL of a single pair.
func (u *UnrealizedResult) For(pair string) (decimal.Decimal, bool) {
	if u == nil {
		return decimal.Zero, false
	}
	d, ok := u.PerPair[pair]
	return d, ok
}

// Unrealized marks each requested long position to its current price.
// Pairs that are unknown, flat or short, or have no usable price are
// skipped with the reason recorded. An empty pairs list means every pair
// in positions.
func Unrealized(positions map[string]Position, prices map[string]decimal.Decimal, pairs []string) *UnrealizedResult {
	if len(pairs) == 0 {
		pairs = make([]string, 0, len(positions))
		for p := range positions {
			pairs = append(pairs, p)
		}
		sort.Strings(pairs)
	}

	out := &UnrealizedResult{
		PerPair: make(map[string]decimal.Decimal),
		Skipped: make(map[string]error),
	}
	total := decimal.Zero
	for _, pair := range uniq(pairs) {
		pos, ok := positions[pair]
		if !ok {
			out.Skipped[pair] = ErrDataUnavailable
			continue
		}
		if !pos.IsLong() {
			out.Skipped[pair] = ErrNoHoldings
			continue
		}
		price, ok := prices[pair]
		if !ok || !price.IsPositive() {
			out.Skipped[pair] = ErrPriceUnavailable
			continue
		}

		// (price - cost/vol) * vol, without the intermediate division
		pnl := price.Mul(pos.NetVolume).Sub(pos.NetCost)
		out.PerPair[pair] = pnl
		total = total.Add(pnl)
	}
	out.Total = round(total)
	return out
}

// LongPairs lists the pairs among candidates (all positions when empty)
// that hold a net long position, sorted.
func LongPairs(positions map[string]Position, candidates []string) []string {
	if len(candidates) == 0 {
		all := make([]string, 0, len(positions))
		for p := range positions {
			all = append(all, p)
		}
		candidates = all
	}
	var out []string
	for _, p := range uniq(candidates) {
		if pos, ok := positions[p]; ok && pos.IsLong() {
			out = append(out, p)
		}
	}
	sort.Strings(out)
	return out
}
