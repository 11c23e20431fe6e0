package ledger

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Side is the direction of a fill.
type Side int

const (
	Buy Side = iota + 1
	Sell
)

func (s Side) String() string {
	switch s {
	case Buy:
		return "buy"
	case Sell:
		return "sell"
	default:
		return "unknown"
	}
}

// ParseSide accepts the exchange's "buy"/"sell" in any case.
func ParseSide(s string) (Side, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "buy":
		return Buy, nil
	case "sell":
		return Sell, nil
	default:
		return 0, fmt.Errorf("unknown side %q", s)
	}
}

// RawTrade is a trade as the exchange reports it. Numeric fields are
// strings on the wire except time, which is a JSON number.
type RawTrade struct {
	OrderTxID string      `json:"ordertxid,omitempty"`
	Pair      string      `json:"pair"`
	Time      json.Number `json:"time"`
	Type      string      `json:"type"`
	OrderType string      `json:"ordertype,omitempty"`
	Price     string      `json:"price"`
	Cost      string      `json:"cost"`
	Fee       string      `json:"fee,omitempty"`
	Vol       string      `json:"vol"`
}

// Batch is one page of trade history keyed by trade ID.
type Batch map[string]RawTrade

// Trade is a validated, immutable fill.
type Trade struct {
	ID        string
	Pair      string
	Side      Side
	Volume    decimal.Decimal
	Price     decimal.Decimal
	Cost      decimal.Decimal
	Timestamp decimal.Decimal // seconds since epoch, fractional
}

// Time converts the fractional epoch timestamp to a time.Time in UTC.
func (t Trade) Time() time.Time {
	secs := t.Timestamp.IntPart()
	nanos := t.Timestamp.Sub(decimal.NewFromInt(secs)).Shift(9).IntPart()
	return time.Unix(secs, nanos).UTC()
}

// Raw converts the trade back to its wire form.
func (t Trade) Raw() RawTrade {
	return RawTrade{
		Pair:  t.Pair,
		Time:  json.Number(t.Timestamp.String()),
		Type:  t.Side.String(),
		Price: t.Price.String(),
		Cost:  t.Cost.String(),
		Vol:   t.Volume.String(),
	}
}

// ParseTrade validates a raw record. Every required field must be present
// and parseable; volume and price must be positive.
func ParseTrade(id string, raw RawTrade) (Trade, error) {
	if strings.TrimSpace(id) == "" {
		return Trade{}, malformed(id, "id", "missing", nil)
	}
	pair := strings.TrimSpace(raw.Pair)
	if pair == "" {
		return Trade{}, malformed(id, "pair", "missing", nil)
	}
	side, err := ParseSide(raw.Type)
	if err != nil {
		return Trade{}, malformed(id, "type", "invalid", err)
	}
	vol, err := parseField(id, "vol", raw.Vol)
	if err != nil {
		return Trade{}, err
	}
	if !vol.IsPositive() {
		return Trade{}, malformed(id, "vol", "must be positive", nil)
	}
	price, err := parseField(id, "price", raw.Price)
	if err != nil {
		return Trade{}, err
	}
	if !price.IsPositive() {
		return Trade{}, malformed(id, "price", "must be positive", nil)
	}
	cost, err := parseField(id, "cost", raw.Cost)
	if err != nil {
		return Trade{}, err
	}
	ts, err := parseField(id, "time", raw.Time.String())
	if err != nil {
		return Trade{}, err
	}

	return Trade{
		ID:        id,
		Pair:      pair,
		Side:      side,
		Volume:    vol,
		Price:     price,
		Cost:      cost,
		Timestamp: ts,
	}, nil
}

func parseField(id, field, s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, malformed(id, field, "missing", nil)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, malformed(id, field, "not a number", err)
	}
	return d, nil
}
