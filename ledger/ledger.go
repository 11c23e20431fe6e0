package ledger

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Ledger is the deduplicated set of trades keyed by trade ID. Inserting an
// ID that is already present is a no-op, so overlapping pages never
// double-count.
type Ledger struct {
	trades map[string]Trade
	pairs  map[string]int

	minTS  decimal.Decimal
	hasMin bool
}

func New() *Ledger {
	return &Ledger{
		trades: make(map[string]Trade),
		pairs:  make(map[string]int),
	}
}

// Insert adds t and reports whether it was new.
func (l *Ledger) Insert(t Trade) bool {
	if _, ok := l.trades[t.ID]; ok {
		return false
	}
	l.trades[t.ID] = t
	l.pairs[t.Pair]++
	if !l.hasMin || t.Timestamp.LessThan(l.minTS) {
		l.minTS = t.Timestamp
		l.hasMin = true
	}
	return true
}

// Merge validates the whole batch before inserting anything. A single
// malformed record rejects the batch, since a dropped trade would silently
// shift every later FIFO match.
func (l *Ledger) Merge(b Batch) (int, error) {
	ids := make([]string, 0, len(b))
	for id := range b {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	parsed := make([]Trade, 0, len(ids))
	for _, id := range ids {
		t, err := ParseTrade(id, b[id])
		if err != nil {
			return 0, err
		}
		parsed = append(parsed, t)
	}

	added := 0
	for _, t := range parsed {
		if l.Insert(t) {
			added++
		}
	}
	return added, nil
}

func (l *Ledger) Len() int { return len(l.trades) }

func (l *Ledger) Get(id string) (Trade, bool) {
	t, ok := l.trades[id]
	return t, ok
}

// HasPair reports whether at least one trade for pair was observed.
func (l *Ledger) HasPair(pair string) bool {
	return l.pairs[pair] > 0
}

// Pairs returns the distinct pairs observed, sorted.
func (l *Ledger) Pairs() []string {
	out := make([]string, 0, len(l.pairs))
	for p := range l.pairs {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// MinTimestamp is the oldest trade time seen so far.
func (l *Ledger) MinTimestamp() (decimal.Decimal, bool) {
	return l.minTS, l.hasMin
}

// Trades returns every trade ordered by ID.
func (l *Ledger) Trades() []Trade {
	out := make([]Trade, 0, len(l.trades))
	for _, t := range l.trades {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ForPair returns the trades of one pair ordered by ID. The slice is empty
// when the pair was never traded.
func (l *Ledger) ForPair(pair string) []Trade {
	out := make([]Trade, 0, l.pairs[pair])
	for _, t := range l.trades {
		if t.Pair == pair {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ByPair groups the ledger by pair.
func (l *Ledger) ByPair() map[string][]Trade {
	out := make(map[string][]Trade, len(l.pairs))
	for _, t := range l.Trades() {
		out[t.Pair] = append(out[t.Pair], t)
	}
	return out
}
