package pnl

import (
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lot(id string) Lot {
	return Lot{TradeID: id, Price: decimal.NewFromInt(1), Volume: decimal.NewFromInt(1)}
}

func ids(lots []Lot) []string {
	out := make([]string, len(lots))
	for i, l := range lots {
		out[i] = l.TradeID
	}
	return out
}

func TestLotQueueOrder(t *testing.T) {
	t.Parallel()

	var q LotQueue
	_, ok := q.PopFront()
	assert.False(t, ok)
	_, ok = q.Front()
	assert.False(t, ok)

	q.PushBack(lot("a"))
	q.PushBack(lot("b"))
	q.PushFront(lot("z"))
	assert.Equal(t, []string{"z", "a", "b"}, ids(q.Lots()))

	front, ok := q.Front()
	require.True(t, ok)
	assert.Equal(t, "z", front.TradeID)

	l, ok := q.PopFront()
	require.True(t, ok)
	assert.Equal(t, "z", l.TradeID)
	assert.Equal(t, 2, q.Len())
}

func TestLotQueueGrowsAcrossWrap(t *testing.T) {
	t.Parallel()

	var q LotQueue
	var want []string
	for i := 0; i < 6; i++ {
		q.PushBack(lot(fmt.Sprint(i)))
		want = append(want, fmt.Sprint(i))
	}
	// move head forward so the ring wraps before growing
	for i := 0; i < 4; i++ {
		_, _ = q.PopFront()
	}
	want = want[4:]
	for i := 6; i < 30; i++ {
		q.PushBack(lot(fmt.Sprint(i)))
		want = append(want, fmt.Sprint(i))
	}
	q.PushFront(lot("head"))
	want = append([]string{"head"}, want...)

	assert.Equal(t, len(want), q.Len())
	assert.Equal(t, want, ids(q.Lots()))
}
