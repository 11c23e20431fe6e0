package pnl

import (
	"context"
	"errors"

	"github.com/rustyeddy/tradepnl/ledger"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Calculator wires the engines to their data sources. Every call rebuilds
// the ledger from History; nothing is cached between calls.
type Calculator struct {
	History     ledger.TradeHistorySource
	Prices      MarketPriceSource
	Logger      *zap.Logger
	Concurrency int
	MaxPages    int
}

func (c *Calculator) log() *zap.Logger {
	if c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}

// Ledger fetches the full trade history.
func (c *Calculator) Ledger(ctx context.Context) (*ledger.Ledger, error) {
	b := ledger.NewBuilder(c.History, c.log())
	b.MaxPages = c.MaxPages
	l, err := b.Build(ctx)
	if err != nil {
		return nil, err
	}
	if l.Len() == 0 {
		c.log().Warn("no trade history found")
	}
	return l, nil
}

// Realized computes realized PnL for pairs (all pairs when empty).
func (c *Calculator) Realized(ctx context.Context, pairs []string) (*RealizedResult, error) {
	l, err := c.Ledger(ctx)
	if err != nil {
		return nil, err
	}
	return c.RealizedFrom(l, pairs), nil
}

// Unrealized computes unrealized PnL for pairs (all pairs when empty).
func (c *Calculator) Unrealized(ctx context.Context, pairs []string) (*UnrealizedResult, error) {
	l, err := c.Ledger(ctx)
	if err != nil {
		return nil, err
	}
	return c.UnrealizedFrom(ctx, l, pairs), nil
}

// Report computes both sides from a single ledger snapshot.
func (c *Calculator) Report(ctx context.Context, pairs []string) (*Report, error) {
	l, err := c.Ledger(ctx)
	if err != nil {
		return nil, err
	}
	return c.ReportFrom(ctx, l, pairs), nil
}

// ReportFrom computes a report from an already built ledger.
func (c *Calculator) ReportFrom(ctx context.Context, l *ledger.Ledger, pairs []string) *Report {
	if l.Len() == 0 {
		return Compose(nil, nil)
	}
	return Compose(c.RealizedFrom(l, pairs), c.UnrealizedFrom(ctx, l, pairs))
}

// RealizedFrom runs the FIFO engine over an already built ledger.
func (c *Calculator) RealizedFrom(l *ledger.Ledger, pairs []string) *RealizedResult {
	if l.Len() == 0 {
		return newRealizedResult()
	}
	res := Realized(l, pairs, c.Concurrency)
	for pair, reason := range res.Skipped {
		c.log().Info("skipping pair", zap.String("pair", pair), zap.String("reason", reason.Error()))
	}
	for pair, d := range res.Details {
		if d.Unmatched.IsPositive() {
			c.log().Warn("sell volume exceeded open lots",
				zap.String("pair", pair),
				zap.String("ignored", d.Unmatched.String()))
		}
	}
	return res
}

// UnrealizedFrom prices the open positions of an already built ledger.
func (c *Calculator) UnrealizedFrom(ctx context.Context, l *ledger.Ledger, pairs []string) *UnrealizedResult {
	if l.Len() == 0 {
		return Unrealized(nil, nil, nil)
	}

	positions := Aggregate(l)
	prices := c.prices(ctx, LongPairs(positions, pairs))

	res := Unrealized(positions, prices, pairs)
	for pair, reason := range res.Skipped {
		lvl := c.log().Info
		if errors.Is(reason, ErrPriceUnavailable) {
			lvl = c.log().Warn
		}
		lvl("skipping pair", zap.String("pair", pair), zap.String("reason", reason.Error()))
	}
	return res
}

// prices never fails: a source error leaves every pair without a price.
func (c *Calculator) prices(ctx context.Context, pairs []string) map[string]decimal.Decimal {
	if len(pairs) == 0 || c.Prices == nil {
		return map[string]decimal.Decimal{}
	}
	prices, err := c.Prices.FetchPrices(ctx, pairs)
	if err != nil {
		c.log().Warn("fetch market prices", zap.Strings("pairs", pairs), zap.Error(err))
		return map[string]decimal.Decimal{}
	}
	return prices
}
