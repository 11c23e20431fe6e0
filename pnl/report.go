package pnl

import (
	"sort"
	"time"

	"github.com/rustyeddy/tradepnl/pkg/id"
	"github.com/shopspring/decimal"
)

// Report merges realized and unrealized figures.
type Report struct {
	ID          string
	GeneratedAt time.Time

	Realized   map[string]decimal.Decimal
	Unrealized map[string]decimal.Decimal

	TotalRealized   decimal.Decimal
	TotalUnrealized decimal.Decimal
	TotalCombined   decimal.Decimal
}

// Line is one pair's row in a report.
type Line struct {
	Pair          string
	Realized      decimal.Decimal
	Unrealized    decimal.Decimal
	Combined      decimal.Decimal
	HasRealized   bool
	HasUnrealized bool
}

// Compose builds a report. A nil side contributes zero, so the combined
// total is always a number.
func Compose(realized *RealizedResult, unrealized *UnrealizedResult) *Report {
	rid := id.New()
	// GeneratedAt is the instant encoded in the ID.
	at, err := id.Time(rid)
	if err != nil {
		at = time.Now().UTC()
	}
	r := &Report{
		ID:              rid,
		GeneratedAt:     at,
		Realized:        make(map[string]decimal.Decimal),
		Unrealized:      make(map[string]decimal.Decimal),
		TotalRealized:   decimal.Zero,
		TotalUnrealized: decimal.Zero,
	}
	if realized != nil {
		for p, v := range realized.PerPair {
			r.Realized[p] = v
		}
		r.TotalRealized = realized.Total
	}
	if unrealized != nil {
		for p, v := range unrealized.PerPair {
			r.Unrealized[p] = v
		}
		r.TotalUnrealized = unrealized.Total
	}
	r.TotalCombined = r.TotalRealized.Add(r.TotalUnrealized)
	return r
}

// Pairs lists every pair with a realized or unrealized figure, sorted.
func (r *Report) Pairs() []string {
	seen := make(map[string]bool)
	for p := range r.Realized {
		seen[p] = true
	}
	for p := range r.Unrealized {
		seen[p] = true
	}
	out := make([]string, 0, len(seen))
	for p := range seen {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// For returns the line for pair; ok is false if the pair has no figures.
func (r *Report) For(pair string) (Line, bool) {
	l := Line{Pair: pair}
	l.Realized, l.HasRealized = r.Realized[pair]
	l.Unrealized, l.HasUnrealized = r.Unrealized[pair]
	l.Combined = l.Realized.Add(l.Unrealized)
	return l, l.HasRealized || l.HasUnrealized
}

func (r *Report) Lines() []Line {
	pairs := r.Pairs()
	out := make([]Line, 0, len(pairs))
	for _, p := range pairs {
		l, _ := r.For(p)
		out = append(out, l)
	}
	return out
}
