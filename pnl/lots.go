package pnl

import "github.com/shopspring/decimal"

// Lot is an open buy waiting to be matched.
type Lot struct {
	TradeID string
	Price   decimal.Decimal
	Volume  decimal.Decimal // remaining
}

// LotQueue is a ring-buffer deque of open lots, oldest at the front.
// Both ends are O(1) amortized.
type LotQueue struct {
	buf  []Lot
	head int
	n    int
}

func (q *LotQueue) Len() int { return q.n }

func (q *LotQueue) PushBack(l Lot) {
	if q.n == len(q.buf) {
		q.grow()
	}
	q.buf[(q.head+q.n)%len(q.buf)] = l
	q.n++
}

// PushFront returns a partially consumed lot to the head so it keeps its
// place ahead of newer lots.
func (q *LotQueue) PushFront(l Lot) {
	if q.n == len(q.buf) {
		q.grow()
	}
	q.head = (q.head - 1 + len(q.buf)) % len(q.buf)
	q.buf[q.head] = l
	q.n++
}

func (q *LotQueue) PopFront() (Lot, bool) {
	if q.n == 0 {
		return Lot{}, false
	}
	l := q.buf[q.head]
	q.buf[q.head] = Lot{}
	q.head = (q.head + 1) % len(q.buf)
	q.n--
	return l, true
}

func (q *LotQueue) Front() (Lot, bool) {
	if q.n == 0 {
		return Lot{}, false
	}
	return q.buf[q.head], true
}

// Lots returns a copy of the queue, oldest first.
func (q *LotQueue) Lots() []Lot {
	out := make([]Lot, q.n)
	for i := 0; i < q.n; i++ {
		out[i] = q.buf[(q.head+i)%len(q.buf)]
	}
	return out
}

func (q *LotQueue) grow() {
	size := 2 * len(q.buf)
	if size < 8 {
		size = 8
	}
	buf := make([]Lot, size)
	copy(buf, q.Lots())
	q.buf = buf
	q.head = 0
}
