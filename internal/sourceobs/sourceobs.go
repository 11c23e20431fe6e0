// Package sourceobs wraps data sources with call logging.
package sourceobs

import (
	"context"
	"time"

	"github.com/rustyeddy/tradepnl/ledger"
	"github.com/rustyeddy/tradepnl/pnl"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type observableHistory struct {
	src ledger.TradeHistorySource
	log *zap.Logger
}

var _ ledger.TradeHistorySource = (*observableHistory)(nil)

// WrapHistory logs every page request made to src.
func WrapHistory(src ledger.TradeHistorySource, log *zap.Logger) ledger.TradeHistorySource {
	if log == nil {
		log = zap.NewNop()
	}
	return &observableHistory{src: src, log: log.Named("history")}
}

func (o *observableHistory) FetchBatch(ctx context.Context, before *decimal.Decimal) (ledger.Batch, error) {
	cursor := "latest"
	if before != nil {
		cursor = before.String()
	}
	o.log.Debug("fetching trade page", zap.String("before", cursor))

	start := time.Now()
	batch, err := o.src.FetchBatch(ctx, before)
	if err != nil {
		o.log.Error("trade page failed",
			zap.String("before", cursor),
			zap.Duration("took", time.Since(start)),
			zap.Error(err))
		return nil, err
	}

	o.log.Debug("trade page fetched",
		zap.String("before", cursor),
		zap.Int("trades", len(batch)),
		zap.Duration("took", time.Since(start)))
	return batch, nil
}

type observablePrices struct {
	src pnl.MarketPriceSource
	log *zap.Logger
}

var _ pnl.MarketPriceSource = (*observablePrices)(nil)

// WrapPrices logs every price lookup made to src.
func WrapPrices(src pnl.MarketPriceSource, log *zap.Logger) pnl.MarketPriceSource {
	if log == nil {
		log = zap.NewNop()
	}
	return &observablePrices{src: src, log: log.Named("prices")}
}

func (o *observablePrices) FetchPrices(ctx context.Context, pairs []string) (map[string]decimal.Decimal, error) {
	o.log.Debug("fetching prices", zap.Strings("pairs", pairs))

	start := time.Now()
	prices, err := o.src.FetchPrices(ctx, pairs)
	if err != nil {
		o.log.Error("price lookup failed",
			zap.Strings("pairs", pairs),
			zap.Duration("took", time.Since(start)),
			zap.Error(err))
		return nil, err
	}

	for _, p := range pairs {
		if _, ok := prices[p]; !ok {
			o.log.Warn("no price returned", zap.String("pair", p))
		}
	}
	o.log.Debug("prices fetched",
		zap.Int("count", len(prices)),
		zap.Duration("took", time.Since(start)))
	return prices, nil
}
