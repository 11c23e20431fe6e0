package ledger

import (
	"context"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultPageSize matches the exchange's trade history page.
const DefaultPageSize = 50

// MemorySource serves a fixed set of raw trades newest-first, one page at a
// time, strictly older than the cursor.
type MemorySource struct {
	PageSize int

	entries []memEntry
}

type memEntry struct {
	id  string
	ts  decimal.Decimal
	raw RawTrade
}

// NewMemorySource copies b. Records with an unparseable time sort as the
// oldest so they still get served (and rejected) by the builder.
func NewMemorySource(b Batch) *MemorySource {
	entries := make([]memEntry, 0, len(b))
	for id, raw := range b {
		ts, err := decimal.NewFromString(strings.TrimSpace(raw.Time.String()))
		if err != nil {
			ts = decimal.Zero
		}
		entries = append(entries, memEntry{id: id, ts: ts, raw: raw})
	}
	sort.Slice(entries, func(i, j int) bool {
		if c := entries[i].ts.Cmp(entries[j].ts); c != 0 {
			return c > 0
		}
		return entries[i].id > entries[j].id
	})
	return &MemorySource{PageSize: DefaultPageSize, entries: entries}
}

func (m *MemorySource) Len() int { return len(m.entries) }

func (m *MemorySource) FetchBatch(ctx context.Context, before *decimal.Decimal) (Batch, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	size := m.PageSize
	if size <= 0 {
		size = DefaultPageSize
	}

	out := make(Batch, size)
	for _, e := range m.entries {
		if before != nil && !e.ts.LessThan(*before) {
			continue
		}
		out[e.id] = e.raw
		if len(out) == size {
			break
		}
	}
	return out, nil
}
