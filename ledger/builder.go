package ledger

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// TradeHistorySource returns one page of trade history older than before
// (nil means "most recent"). A page may repeat trades at the before
// timestamp itself. An empty page means history is exhausted.
// Implementations own authentication and rate limiting.
type TradeHistorySource interface {
	FetchBatch(ctx context.Context, before *decimal.Decimal) (Batch, error)
}

// Builder walks a TradeHistorySource backwards in time until it runs dry.
type Builder struct {
	Source   TradeHistorySource
	Logger   *zap.Logger
	MaxPages int // 0 means unlimited
}

func NewBuilder(src TradeHistorySource, logger *zap.Logger) *Builder {
	return &Builder{Source: src, Logger: logger}
}

// Build fetches pages one at a time, using the oldest timestamp seen so far
// as the upper bound of the next request. History ends on an empty page or
// on a page that only repeats trades already merged at the cursor.
func (b *Builder) Build(ctx context.Context) (*Ledger, error) {
	log := b.Logger
	if log == nil {
		log = zap.NewNop()
	}

	l := New()
	done := func(pages int) (*Ledger, error) {
		log.Info("trade history complete",
			zap.Int("pages", pages),
			zap.Int("trades", l.Len()),
			zap.Strings("pairs", l.Pairs()))
		return l, nil
	}

	var cursor *decimal.Decimal
	for page := 1; ; page++ {
		if b.MaxPages > 0 && page > b.MaxPages {
			return nil, fmt.Errorf("%w: %d pages", ErrPageLimit, b.MaxPages)
		}

		batch, err := b.Source.FetchBatch(ctx, cursor)
		if err != nil {
			return nil, fmt.Errorf("fetch page %d: %w", page, err)
		}
		if len(batch) == 0 {
			return done(page - 1)
		}

		added, err := l.Merge(batch)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", page, err)
		}

		next, _ := l.MinTimestamp()
		if cursor != nil && !next.LessThan(*cursor) {
			if added == 0 {
				return done(page)
			}
			return nil, fmt.Errorf("%w: page %d still at %s", ErrCursorStalled, page, cursor.String())
		}
		cursor = &next

		log.Debug("merged trade page",
			zap.Int("page", page),
			zap.Int("received", len(batch)),
			zap.Int("added", added),
			zap.String("cursor", next.String()))
	}
}
