package pnl

import (
	"encoding/json"
	"testing"

	"github.com/rustyeddy/tradepnl/ledger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func trade(t *testing.T, id, pair, side, vol, price, ts string) ledger.Trade {
	t.Helper()
	cost := decimal.RequireFromString(vol).Mul(decimal.RequireFromString(price))
	tr, err := ledger.ParseTrade(id, ledger.RawTrade{
		Pair:  pair,
		Type:  side,
		Vol:   vol,
		Price: price,
		Cost:  cost.String(),
		Time:  json.Number(ts),
	})
	require.NoError(t, err)
	return tr
}

func TestMatchFIFOPartialLot(t *testing.T) {
	t.Parallel()

	trades := []ledger.Trade{
		trade(t, "S", "XBTUSD", "sell", "1.5", "300", "3"),
		trade(t, "B2", "XBTUSD", "buy", "1", "200", "2"),
		trade(t, "B1", "XBTUSD", "buy", "1", "100", "1"),
	}

	res, ok := MatchFIFO(trades)
	require.True(t, ok)

	assert.Equal(t, "XBTUSD", res.Pair)
	assert.Equal(t, "250", res.Realized.String())
	require.Len(t, res.Open, 1)
	assert.Equal(t, "B2", res.Open[0].TradeID)
	assert.Equal(t, "200", res.Open[0].Price.String())
	assert.Equal(t, "0.5", res.Open[0].Volume.String())
	assert.True(t, res.Unmatched.IsZero())

	require.Len(t, res.Matches, 2)
	assert.Equal(t, "B1", res.Matches[0].BuyID)
	assert.Equal(t, "200", res.Matches[0].PnL.String())
	assert.Equal(t, "B2", res.Matches[1].BuyID)
	assert.Equal(t, "0.5", res.Matches[1].Volume.String())
	assert.Equal(t, "50", res.Matches[1].PnL.String())
}

func TestMatchFIFOPartialLotKeepsItsPlace(t *testing.T) {
	t.Parallel()

	// After the first sell, B1's remainder must still be matched before B2.
	trades := []ledger.Trade{
		trade(t, "B1", "XBTUSD", "buy", "2", "100", "1"),
		trade(t, "B2", "XBTUSD", "buy", "1", "150", "2"),
		trade(t, "S1", "XBTUSD", "sell", "1", "200", "3"),
		trade(t, "S2", "XBTUSD", "sell", "1", "200", "4"),
	}

	res, ok := MatchFIFO(trades)
	require.True(t, ok)
	assert.Equal(t, "200", res.Realized.String())
	require.Len(t, res.Open, 1)
	assert.Equal(t, "B2", res.Open[0].TradeID)
}

func TestMatchFIFOOversold(t *testing.T) {
	t.Parallel()

	trades := []ledger.Trade{
		trade(t, "B1", "XBTUSD", "buy", "1", "100", "1"),
		trade(t, "S1", "XBTUSD", "sell", "3", "110", "2"),
		trade(t, "B2", "XBTUSD", "buy", "1", "120", "3"),
	}

	res, ok := MatchFIFO(trades)
	require.True(t, ok)
	assert.Equal(t, "10", res.Realized.String())
	assert.Equal(t, "2", res.Unmatched.String())

	// The later buy is a fresh lot; the excess sell never becomes a short.
	require.Len(t, res.Open, 1)
	assert.Equal(t, "B2", res.Open[0].TradeID)
	assert.Equal(t, "1", res.Open[0].Volume.String())
}

func TestMatchFIFOSellOnly(t *testing.T) {
	t.Parallel()

	res, ok := MatchFIFO([]ledger.Trade{trade(t, "S", "XBTUSD", "sell", "1", "100", "1")})
	require.True(t, ok)
	assert.True(t, res.Realized.IsZero())
	assert.Empty(t, res.Open)
	assert.Empty(t, res.Matches)
}

func TestMatchFIFOEmpty(t *testing.T) {
	t.Parallel()

	_, ok := MatchFIFO(nil)
	assert.False(t, ok)

	_, ok = RealizedPnL([]ledger.Trade{})
	assert.False(t, ok)
}

func TestMatchFIFOTimestampTieBreaksOnID(t *testing.T) {
	t.Parallel()

	// Same timestamp: "A" sorts before "B", so the buy is seen first.
	trades := []ledger.Trade{
		trade(t, "B", "XBTUSD", "sell", "1", "150", "5"),
		trade(t, "A", "XBTUSD", "buy", "1", "100", "5"),
	}
	got, ok := RealizedPnL(trades)
	require.True(t, ok)
	assert.Equal(t, "50", got.String())

	// Flip the IDs and the sell precedes the buy: nothing to match.
	trades = []ledger.Trade{
		trade(t, "A", "XBTUSD", "sell", "1", "150", "5"),
		trade(t, "B", "XBTUSD", "buy", "1", "100", "5"),
	}
	got, ok = RealizedPnL(trades)
	require.True(t, ok)
	assert.True(t, got.IsZero())
}

func TestMatchFIFORoundsEachMatch(t *testing.T) {
	t.Parallel()

	// Each match is (0.000000015 * 1) = 0.000000015 -> 0.00000002 (half to even).
	// Rounding once at the end would give 0.00000003.
	trades := []ledger.Trade{
		trade(t, "B1", "XBTUSD", "buy", "1", "1", "1"),
		trade(t, "B2", "XBTUSD", "buy", "1", "1", "2"),
		trade(t, "S1", "XBTUSD", "sell", "2", "1.000000015", "3"),
	}
	got, ok := RealizedPnL(trades)
	require.True(t, ok)
	assert.Equal(t, "0.00000004", got.String())
}

func TestMatchFIFODeterministic(t *testing.T) {
	t.Parallel()

	trades := []ledger.Trade{
		trade(t, "B1", "XBTUSD", "buy", "0.3", "101.123456789", "1"),
		trade(t, "B2", "XBTUSD", "buy", "0.7", "99.87654321", "1"),
		trade(t, "S1", "XBTUSD", "sell", "0.45", "105.5", "2"),
		trade(t, "S2", "XBTUSD", "sell", "0.33", "98.1", "2"),
		trade(t, "B3", "XBTUSD", "buy", "1.1", "97", "3"),
		trade(t, "S3", "XBTUSD", "sell", "0.9", "110", "4"),
	}

	first, _ := RealizedPnL(trades)
	for i := 0; i < 20; i++ {
		shuffled := append([]ledger.Trade(nil), trades...)
		shuffled[0], shuffled[len(shuffled)-1] = shuffled[len(shuffled)-1], shuffled[0]
		got, _ := RealizedPnL(shuffled)
		assert.Equal(t, first.String(), got.String())
	}
}

func TestChronologicalDoesNotMutate(t *testing.T) {
	t.Parallel()

	trades := []ledger.Trade{
		trade(t, "B", "XBTUSD", "buy", "1", "1", "2"),
		trade(t, "A", "XBTUSD", "buy", "1", "1", "1"),
	}
	ordered := Chronological(trades)
	assert.Equal(t, "A", ordered[0].ID)
	assert.Equal(t, "B", trades[0].ID)
}
