package sourceobs

import (
	"context"
	"errors"
	"testing"

	"github.com/rustyeddy/tradepnl/ledger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type fakeHistory struct {
	batch ledger.Batch
	err   error
}

func (f fakeHistory) FetchBatch(context.Context, *decimal.Decimal) (ledger.Batch, error) {
	return f.batch, f.err
}

type fakePrices struct {
	prices map[string]decimal.Decimal
	err    error
}

func (f fakePrices) FetchPrices(context.Context, []string) (map[string]decimal.Decimal, error) {
	return f.prices, f.err
}

func TestWrapHistory(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.DebugLevel)
	src := WrapHistory(fakeHistory{batch: ledger.Batch{"T1": {}}}, zap.New(core))

	before := decimal.RequireFromString("1688667000.5")
	b, err := src.FetchBatch(context.Background(), &before)
	require.NoError(t, err)
	assert.Len(t, b, 1)

	entries := logs.FilterMessage("trade page fetched").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "history", entries[0].LoggerName)
	assert.Equal(t, "1688667000.5", entries[0].ContextMap()["before"])
	assert.EqualValues(t, 1, entries[0].ContextMap()["trades"])
}

func TestWrapHistoryError(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.DebugLevel)
	boom := errors.New("boom")
	src := WrapHistory(fakeHistory{err: boom}, zap.New(core))

	_, err := src.FetchBatch(context.Background(), nil)
	assert.ErrorIs(t, err, boom)

	entries := logs.FilterLevelExact(zapcore.ErrorLevel).All()
	require.Len(t, entries, 1)
	assert.Equal(t, "latest", entries[0].ContextMap()["before"])
}

func TestWrapPrices(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.DebugLevel)
	src := WrapPrices(fakePrices{prices: map[string]decimal.Decimal{
		"XXBTZUSD": decimal.NewFromInt(30000),
	}}, zap.New(core))

	got, err := src.FetchPrices(context.Background(), []string{"XXBTZUSD", "NOPE"})
	require.NoError(t, err)
	assert.Len(t, got, 1)

	missing := logs.FilterMessage("no price returned").All()
	require.Len(t, missing, 1)
	assert.Equal(t, "NOPE", missing[0].ContextMap()["pair"])
}

func TestWrapPricesError(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.DebugLevel)
	src := WrapPrices(fakePrices{err: errors.New("down")}, zap.New(core))

	_, err := src.FetchPrices(context.Background(), []string{"XXBTZUSD"})
	assert.Error(t, err)
	assert.Equal(t, 1, logs.FilterMessage("price lookup failed").Len())
}

func TestWrapNilLogger(t *testing.T) {
	t.Parallel()

	src := WrapHistory(fakeHistory{}, nil)
	_, err := src.FetchBatch(context.Background(), nil)
	assert.NoError(t, err)
}
