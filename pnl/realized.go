package pnl

import (
	"github.com/rustyeddy/tradepnl/ledger"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// RealizedResult holds realized PnL for the requested pairs.
type RealizedResult struct {
	PerPair map[string]decimal.Decimal
	Total   decimal.Decimal
	Details map[string]FIFOResult
	Skipped map[string]error
}

func newRealizedResult() *RealizedResult {
	return &RealizedResult{
		PerPair: make(map[string]decimal.Decimal),
		Details: make(map[string]FIFOResult),
		Skipped: make(map[string]error),
	}
}

// For returns the realized PnL of a single pair.
func (r *RealizedResult) For(pair string) (decimal.Decimal, bool) {
	if r == nil {
		return decimal.Zero, false
	}
	d, ok := r.PerPair[pair]
	return d, ok
}

// Realized runs the FIFO engine for each requested pair (all ledger pairs
// when pairs is empty). Pairs have no shared state, so up to concurrency
// of them are matched at once; concurrency <= 1 runs them in sequence.
func Realized(l *ledger.Ledger, pairs []string, concurrency int) *RealizedResult {
	if len(pairs) == 0 {
		pairs = l.Pairs()
	}
	pairs = uniq(pairs)

	out := newRealizedResult()
	results := make([]FIFOResult, len(pairs))
	found := make([]bool, len(pairs))

	var g errgroup.Group
	if concurrency < 1 {
		concurrency = 1
	}
	g.SetLimit(concurrency)
	for i, pair := range pairs {
		i, pair := i, pair
		if !l.HasPair(pair) {
			continue
		}
		g.Go(func() error {
			results[i], found[i] = MatchFIFO(l.ForPair(pair))
			return nil
		})
	}
	_ = g.Wait()

	total := decimal.Zero
	for i, pair := range pairs {
		if !found[i] {
			out.Skipped[pair] = ErrDataUnavailable
			continue
		}
		out.PerPair[pair] = results[i].Realized
		out.Details[pair] = results[i]
		total = total.Add(results[i].Realized)
	}
	out.Total = round(total)
	return out
}

func uniq(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
