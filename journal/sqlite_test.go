package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rustyeddy/tradepnl/ledger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func raw(pair, side, vol, price, ts string) ledger.RawTrade {
	cost := decimal.RequireFromString(vol).Mul(decimal.RequireFromString(price))
	return ledger.RawTrade{
		Pair:  pair,
		Type:  side,
		Vol:   vol,
		Price: price,
		Cost:  cost.String(),
		Time:  json.Number(ts),
	}
}

func testLedger(t *testing.T) *ledger.Ledger {
	t.Helper()
	l := ledger.New()
	_, err := l.Merge(ledger.Batch{
		"TA-1": raw("XXBTZUSD", "buy", "0.5", "30000.1", "1688667000.1234"),
		"TA-2": raw("XXBTZUSD", "sell", "0.25", "31000", "1688668000.5"),
		"TB-1": raw("XETHZUSD", "buy", "2", "1900.25", "1688669000"),
	})
	require.NoError(t, err)
	return l
}

func newTestSQLite(t *testing.T) (*SQLite, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	j, err := NewSQLite(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = j.Close() })

	return j, path
}

func TestSQLiteSchemaCreated(t *testing.T) {
	t.Parallel()

	j, path := newTestSQLite(t)
	assert.NoError(t, j.Close())

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	var name string
	err = db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name='trades'`).Scan(&name)
	require.NoError(t, err)
	assert.Equal(t, "trades", name)
}

func TestSQLiteSaveLedgerIsIdempotent(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	ctx := context.Background()
	l := testLedger(t)

	added, err := j.SaveLedger(ctx, l)
	require.NoError(t, err)
	assert.Equal(t, 3, added)

	added, err = j.SaveLedger(ctx, l)
	require.NoError(t, err)
	assert.Equal(t, 0, added)

	n, err := j.CountTrades(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestSQLiteGetTrade(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	ctx := context.Background()
	_, err := j.SaveLedger(ctx, testLedger(t))
	require.NoError(t, err)

	got, err := j.GetTrade(ctx, "TA-1")
	require.NoError(t, err)
	assert.Equal(t, "XXBTZUSD", got.Pair)
	assert.Equal(t, ledger.Buy, got.Side)
	assert.Equal(t, "30000.1", got.Price.String())
	assert.Equal(t, "1688667000.1234", got.Timestamp.String())

	_, err = j.GetTrade(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteListTradesBetween(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	ctx := context.Background()
	_, err := j.SaveLedger(ctx, testLedger(t))
	require.NoError(t, err)

	start := time.Unix(1688667500, 0)
	end := time.Unix(1688669000, 0)

	got, err := j.ListTradesBetween(ctx, start, end)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "TA-2", got[0].ID)

	all, err := j.ListTradesBetween(ctx, time.Unix(0, 0), time.Unix(1700000000, 0))
	require.NoError(t, err)
	assert.Equal(t, []string{"TA-1", "TA-2", "TB-1"}, []string{all[0].ID, all[1].ID, all[2].ID})
}

func TestSQLiteReplaysThroughBuilder(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	j.PageSize = 2
	ctx := context.Background()

	orig := testLedger(t)
	_, err := j.SaveLedger(ctx, orig)
	require.NoError(t, err)

	first, err := j.FetchBatch(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, first, 2)
	assert.Contains(t, first, "TB-1")

	rebuilt, err := ledger.NewBuilder(j, nil).Build(ctx)
	require.NoError(t, err)
	assert.Equal(t, orig.Len(), rebuilt.Len())
	assert.Equal(t, orig.Pairs(), rebuilt.Pairs())
	for _, tr := range orig.Trades() {
		got, ok := rebuilt.Get(tr.ID)
		require.True(t, ok, tr.ID)
		assert.True(t, tr.Volume.Equal(got.Volume))
		assert.True(t, tr.Timestamp.Equal(got.Timestamp))
	}
}
