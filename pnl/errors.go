package pnl

import "errors"

// Skip reasons. None of them abort a computation; the pair is simply left
// out of the result and the reason recorded.
var (
	ErrDataUnavailable  = errors.New("no trades found")
	ErrNoHoldings       = errors.New("no remaining holdings")
	ErrPriceUnavailable = errors.New("market price unavailable")
)
