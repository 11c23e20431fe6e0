package journal

import (
	"bytes"
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rustyeddy/tradepnl/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteLedgerCSV(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, WriteLedgerCSV(&buf, testLedger(t)))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)

	assert.Equal(t, CSVHeader, records[0])
	assert.Equal(t, []string{"TA-1", "XXBTZUSD", "1688667000.1234", "buy", "30000.1", "15000.05", "0.5"}, records[1])
	assert.Equal(t, "TA-2", records[2][0])
	assert.Equal(t, "TB-1", records[3][0])
}

func TestWriteLedgerCSVOrdersByTime(t *testing.T) {
	t.Parallel()

	l := ledger.New()
	_, err := l.Merge(ledger.Batch{
		"A-LATE":  raw("XXBTZUSD", "sell", "1", "200", "300"),
		"Z-EARLY": raw("XXBTZUSD", "buy", "1", "100", "100"),
		"M-TIE":   raw("XXBTZUSD", "buy", "1", "150", "100"),
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteLedgerCSV(&buf, l))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, "M-TIE", records[1][0])
	assert.Equal(t, "Z-EARLY", records[2][0])
	assert.Equal(t, "A-LATE", records[3][0])
}

func TestReadCSVExportFormat(t *testing.T) {
	t.Parallel()

	in := strings.Join([]string{
		`"txid","ordertxid","pair","time","type","ordertype","price","cost","fee","vol","margin","misc","ledgers"`,
		`"TX1","O1","XXBTZUSD","2023-07-06 18:10:00.1234","buy","limit",30000.0,300.0,0.48,0.01,0.0,"",""`,
		`"TX2","O2","XXBTZUSD","2023-07-06 18:20:00","sell","market",31000.0,155.0,0.25,0.005,0.0,"",""`,
	}, "\n")

	b, err := ReadCSV(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, b, 2)

	assert.Equal(t, "O1", b["TX1"].OrderTxID)
	assert.Equal(t, "0.48", b["TX1"].Fee)

	tr, err := ledger.ParseTrade("TX1", b["TX1"])
	require.NoError(t, err)
	assert.Equal(t, "1688667000.1234", tr.Timestamp.String())
	assert.Equal(t, "0.01", tr.Volume.String())

	tr, err = ledger.ParseTrade("TX2", b["TX2"])
	require.NoError(t, err)
	assert.Equal(t, "1688667600", tr.Timestamp.String())
	assert.Equal(t, ledger.Sell, tr.Side)
}

func TestReadCSVErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "missing column",
			in:   "txid,pair,time,type,price,cost\nT1,XBTUSD,1,buy,1,1\n",
			want: `missing column "vol"`,
		},
		{
			name: "duplicate txid",
			in:   "txid,pair,time,type,price,cost,vol\nT1,XBTUSD,1,buy,1,1,1\nT1,XBTUSD,2,buy,1,1,1\n",
			want: "line 3: duplicate txid",
		},
		{
			name: "bad time",
			in:   "txid,pair,time,type,price,cost,vol\nT1,XBTUSD,yesterday,buy,1,1,1\n",
			want: "line 2: time",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := ReadCSV(strings.NewReader(tt.in))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	b, err := ReadCSV(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, b)
}

func TestCSVStoreRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "trades.csv")
	ctx := context.Background()
	store := NewCSV(path)

	orig := testLedger(t)
	added, err := store.SaveLedger(ctx, orig)
	require.NoError(t, err)
	assert.Equal(t, 3, added)

	added, err = store.SaveLedger(ctx, orig)
	require.NoError(t, err)
	assert.Equal(t, 0, added)

	extra := ledger.New()
	_, err = extra.Merge(ledger.Batch{"TC-1": raw("DOTUSD", "buy", "10", "5", "1688670000")})
	require.NoError(t, err)
	added, err = store.SaveLedger(ctx, extra)
	require.NoError(t, err)
	assert.Equal(t, 1, added)
	require.NoError(t, store.Close())

	src, err := LoadCSV(path)
	require.NoError(t, err)
	assert.Equal(t, 4, src.Len())

	src.PageSize = 3
	rebuilt, err := ledger.NewBuilder(src, nil).Build(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"DOTUSD", "XETHZUSD", "XXBTZUSD"}, rebuilt.Pairs())

	got, ok := rebuilt.Get("TA-1")
	require.True(t, ok)
	assert.Equal(t, "1688667000.1234", got.Timestamp.String())
}

func TestLoadCSVMissingFile(t *testing.T) {
	t.Parallel()

	_, err := LoadCSV(filepath.Join(t.TempDir(), "nope.csv"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
