package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rustyeddy/tradepnl/ledger"
	"github.com/shopspring/decimal"
)

const tradeColumns = `trade_id, pair, side, volume, price, cost, time`

type scanner interface {
	Scan(dest ...any) error
}

// scanTrade reads one row and validates it the same way fetched trades
// are validated.
func scanTrade(s scanner) (string, ledger.RawTrade, error) {
	var (
		id  string
		raw ledger.RawTrade
		ts  string
	)
	if err := s.Scan(&id, &raw.Pair, &raw.Type, &raw.Vol, &raw.Price, &raw.Cost, &ts); err != nil {
		return "", ledger.RawTrade{}, err
	}
	raw.Time = json.Number(ts)
	return id, raw, nil
}

// GetTrade returns a single trade by ID.
func (j *SQLite) GetTrade(ctx context.Context, tradeID string) (ledger.Trade, error) {
	row := j.db.QueryRowContext(ctx, `
		SELECT `+tradeColumns+`
		FROM trades
		WHERE trade_id = ?`, tradeID)

	id, raw, err := scanTrade(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ledger.Trade{}, fmt.Errorf("trade %q: %w", tradeID, ErrNotFound)
		}
		return ledger.Trade{}, err
	}
	return ledger.ParseTrade(id, raw)
}

func (j *SQLite) CountTrades(ctx context.Context) (int, error) {
	var n int
	err := j.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM trades`).Scan(&n)
	return n, err
}

// ListTradesBetween returns trades executed within [start, end), oldest
// first.
func (j *SQLite) ListTradesBetween(ctx context.Context, start, end time.Time) ([]ledger.Trade, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT `+tradeColumns+`
		FROM trades
		WHERE epoch >= ? AND epoch < ?
		ORDER BY epoch ASC, trade_id ASC`, epoch(start), epoch(end))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ledger.Trade
	for rows.Next() {
		id, raw, err := scanTrade(rows)
		if err != nil {
			return nil, err
		}
		t, err := ledger.ParseTrade(id, raw)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// FetchBatch serves stored trades newest first, strictly older than before
// when it is set. Rows come back in their stored form and are validated by
// the ledger builder.
func (j *SQLite) FetchBatch(ctx context.Context, before *decimal.Decimal) (ledger.Batch, error) {
	size := j.PageSize
	if size <= 0 {
		size = ledger.DefaultPageSize
	}

	var (
		rows *sql.Rows
		err  error
	)
	if before == nil {
		rows, err = j.db.QueryContext(ctx, `
			SELECT `+tradeColumns+`
			FROM trades
			ORDER BY epoch DESC, trade_id DESC
			LIMIT ?`, size)
	} else {
		rows, err = j.db.QueryContext(ctx, `
			SELECT `+tradeColumns+`
			FROM trades
			WHERE epoch < ?
			ORDER BY epoch DESC, trade_id DESC
			LIMIT ?`, before.InexactFloat64(), size)
	}
	if err != nil {
		return nil, fmt.Errorf("query trades: %w", err)
	}
	defer rows.Close()

	out := make(ledger.Batch, size)
	for rows.Next() {
		id, raw, err := scanTrade(rows)
		if err != nil {
			return nil, err
		}
		out[id] = raw
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func epoch(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}
