package journal

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rustyeddy/tradepnl/ledger"
)

// SQLite stores trades in a local database. It also serves them back as a
// ledger.TradeHistorySource so a saved history can be replayed offline.
type SQLite struct {
	db *sql.DB

	// PageSize is the number of trades FetchBatch returns per call.
	PageSize int

	now func() time.Time
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &SQLite{db: db, PageSize: ledger.DefaultPageSize, now: time.Now}, nil
}

const insertTrade = `
	INSERT OR IGNORE INTO trades
	(trade_id, pair, side, volume, price, cost, time, epoch, saved_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

// SaveLedger writes every trade in l inside one transaction and returns the
// number of trades that were not already stored.
func (j *SQLite) SaveLedger(ctx context.Context, l *ledger.Ledger) (int, error) {
	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, insertTrade)
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	savedAt := j.now().UTC()
	added := 0
	for _, t := range l.Trades() {
		res, err := stmt.ExecContext(ctx,
			t.ID, t.Pair, t.Side.String(),
			t.Volume.String(), t.Price.String(), t.Cost.String(),
			t.Timestamp.String(), t.Timestamp.InexactFloat64(), savedAt,
		)
		if err != nil {
			return 0, fmt.Errorf("insert trade %s: %w", t.ID, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			added += int(n)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return added, nil
}

func (j *SQLite) Close() error {
	return j.db.Close()
}
