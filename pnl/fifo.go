package pnl

import (
	"sort"

	"github.com/rustyeddy/tradepnl/ledger"
	"github.com/shopspring/decimal"
)

// Places is the precision every realized figure is rounded to.
const Places = 8

func round(d decimal.Decimal) decimal.Decimal {
	return d.RoundBank(Places)
}

// Match is one sell slice closed against one buy lot.
type Match struct {
	BuyID     string
	SellID    string
	BuyPrice  decimal.Decimal
	SellPrice decimal.Decimal
	Volume    decimal.Decimal
	PnL       decimal.Decimal
}

// FIFOResult is the outcome of replaying one pair's trades.
type FIFOResult struct {
	Pair      string
	Realized  decimal.Decimal
	Matches   []Match
	Open      []Lot
	Unmatched decimal.Decimal // sell volume that found no open lot
}

// Chronological returns a copy of trades ordered by timestamp, then by
// trade ID when timestamps are equal.
func Chronological(trades []ledger.Trade) []ledger.Trade {
	out := make([]ledger.Trade, len(trades))
	copy(out, trades)
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Timestamp.Cmp(out[j].Timestamp); c != 0 {
			return c < 0
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// MatchFIFO replays trades of a single pair, matching each sell against
// the oldest open buys. Each match is rounded to Places before it is
// accumulated. Sell volume beyond the open lots is dropped, not shorted.
// ok is false iff trades is empty.
func MatchFIFO(trades []ledger.Trade) (res FIFOResult, ok bool) {
	if len(trades) == 0 {
		return FIFOResult{}, false
	}

	ordered := Chronological(trades)
	res.Pair = ordered[0].Pair

	var q LotQueue
	realized := decimal.Zero
	for _, t := range ordered {
		if t.Side == ledger.Buy {
			q.PushBack(Lot{TradeID: t.ID, Price: t.Price, Volume: t.Volume})
			continue
		}

		remaining := t.Volume
		for remaining.IsPositive() {
			lot, more := q.PopFront()
			if !more {
				break
			}
			matched := decimal.Min(remaining, lot.Volume)
			pnl := round(t.Price.Sub(lot.Price).Mul(matched))
			realized = realized.Add(pnl)
			remaining = remaining.Sub(matched)

			res.Matches = append(res.Matches, Match{
				BuyID:     lot.TradeID,
				SellID:    t.ID,
				BuyPrice:  lot.Price,
				SellPrice: t.Price,
				Volume:    matched,
				PnL:       pnl,
			})

			if lot.Volume.GreaterThan(matched) {
				lot.Volume = lot.Volume.Sub(matched)
				q.PushFront(lot)
			}
		}
		if remaining.IsPositive() {
			res.Unmatched = res.Unmatched.Add(remaining)
		}
	}

	res.Realized = round(realized)
	res.Open = q.Lots()
	return res, true
}

// RealizedPnL is the realized profit of one pair's trades; ok is false when
// there are no trades.
func RealizedPnL(trades []ledger.Trade) (decimal.Decimal, bool) {
	res, ok := MatchFIFO(trades)
	if !ok {
		return decimal.Zero, false
	}
	return res.Realized, true
}
