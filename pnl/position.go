package pnl

import (
	"github.com/rustyeddy/tradepnl/ledger"
	"github.com/shopspring/decimal"
)

// Position is the signed net holding of one pair.
type Position struct {
	Pair      string
	NetVolume decimal.Decimal // positive is net long
	NetCost   decimal.Decimal
}

func (p Position) IsLong() bool { return p.NetVolume.IsPositive() }

// AvgEntryPrice is NetCost/NetVolume, defined only for a long position.
func (p Position) AvgEntryPrice() (decimal.Decimal, bool) {
	if !p.IsLong() {
		return decimal.Zero, false
	}
	return p.NetCost.Div(p.NetVolume), true
}

// Aggregate folds the ledger into per-pair positions. Buys add volume and
// cost, sells subtract them; the order of trades does not matter.
func Aggregate(l *ledger.Ledger) map[string]Position {
	out := make(map[string]Position)
	for _, t := range l.Trades() {
		p := out[t.Pair]
		p.Pair = t.Pair
		switch t.Side {
		case ledger.Buy:
			p.NetVolume = p.NetVolume.Add(t.Volume)
			p.NetCost = p.NetCost.Add(t.Cost)
		case ledger.Sell:
			p.NetVolume = p.NetVolume.Sub(t.Volume)
			p.NetCost = p.NetCost.Sub(t.Cost)
		}
		out[t.Pair] = p
	}
	return out
}
