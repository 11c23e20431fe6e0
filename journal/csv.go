package journal

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rustyeddy/tradepnl/ledger"
	"github.com/rustyeddy/tradepnl/pnl"
	"github.com/shopspring/decimal"
)

// CSVHeader matches the columns of the exchange's trade export.
var CSVHeader = []string{"txid", "pair", "time", "type", "price", "cost", "vol"}

// exportTimeLayout is the time format used by the exchange's CSV export.
const exportTimeLayout = "2006-01-02 15:04:05.9999"

// WriteLedgerCSV writes l oldest first. Times are written as decimal epoch
// seconds so they read back exactly.
func WriteLedgerCSV(w io.Writer, l *ledger.Ledger) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return err
	}
	for _, t := range pnl.Chronological(l.Trades()) {
		if err := cw.Write([]string{
			t.ID,
			t.Pair,
			t.Timestamp.String(),
			t.Side.String(),
			t.Price.String(),
			t.Cost.String(),
			t.Volume.String(),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV parses a trade export. Columns are located by header name, so
// extra columns (ordertxid, fee, margin, ...) are ignored. The time column
// may hold epoch seconds or the export's "2006-01-02 15:04:05.9999" UTC
// format.
func ReadCSV(r io.Reader) (ledger.Batch, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return ledger.Batch{}, nil
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, name := range CSVHeader {
		if _, ok := col[name]; !ok {
			return nil, fmt.Errorf("missing column %q", name)
		}
	}
	field := func(rec []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	out := ledger.Batch{}
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		txid := field(rec, "txid")
		if _, dup := out[txid]; dup {
			return nil, fmt.Errorf("line %d: duplicate txid %q", line, txid)
		}
		ts, err := parseCSVTime(field(rec, "time"))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		out[txid] = ledger.RawTrade{
			OrderTxID: field(rec, "ordertxid"),
			Pair:      field(rec, "pair"),
			Time:      json.Number(ts),
			Type:      field(rec, "type"),
			OrderType: field(rec, "ordertype"),
			Price:     field(rec, "price"),
			Cost:      field(rec, "cost"),
			Fee:       field(rec, "fee"),
			Vol:       field(rec, "vol"),
		}
	}
	return out, nil
}

func parseCSVTime(s string) (string, error) {
	if s == "" {
		return "", nil
	}
	if d, err := decimal.NewFromString(s); err == nil {
		return d.String(), nil
	}
	t, err := time.ParseInLocation(exportTimeLayout, s, time.UTC)
	if err != nil {
		return "", fmt.Errorf("time %q: %w", s, err)
	}
	d := decimal.NewFromInt(t.Unix()).Add(decimal.New(int64(t.Nanosecond()), -9))
	return d.String(), nil
}

// LoadCSV reads a trade export into a source the ledger builder can page
// through like the live history.
func LoadCSV(path string) (*ledger.MemorySource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	b, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ledger.NewMemorySource(b), nil
}

// CSV is a Store that rewrites a single export file on every save.
type CSV struct {
	path string
}

func NewCSV(path string) *CSV {
	return &CSV{path: path}
}

// SaveLedger merges l with whatever the file already holds and rewrites
// it. The count is the number of trades that were not in the file.
func (c *CSV) SaveLedger(ctx context.Context, l *ledger.Ledger) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	merged := ledger.New()
	if existing, err := c.read(); err != nil {
		return 0, err
	} else if _, err := merged.Merge(existing); err != nil {
		return 0, fmt.Errorf("%s: %w", c.path, err)
	}

	added := 0
	for _, t := range l.Trades() {
		if merged.Insert(t) {
			added++
		}
	}

	f, err := os.Create(c.path)
	if err != nil {
		return 0, err
	}
	if err := WriteLedgerCSV(f, merged); err != nil {
		_ = f.Close()
		return 0, err
	}
	return added, f.Close()
}

func (c *CSV) read() (ledger.Batch, error) {
	f, err := os.Open(c.path)
	if errors.Is(err, os.ErrNotExist) {
		return ledger.Batch{}, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadCSV(f)
}

func (c *CSV) Close() error { return nil }
