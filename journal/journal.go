// Package journal keeps fetched trade history on disk and renders reports
// for a plain-text journal.
package journal

import (
	"context"
	"errors"

	"github.com/rustyeddy/tradepnl/ledger"
)

// ErrNotFound is returned when a trade ID is not stored.
var ErrNotFound = errors.New("trade not found")

// Store persists a ledger snapshot. Saving trades that are already
// stored is a no-op, so repeated fetches can be saved blindly.
type Store interface {
	SaveLedger(ctx context.Context, l *ledger.Ledger) (int, error)
	Close() error
}
