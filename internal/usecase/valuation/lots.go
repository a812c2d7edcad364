package valuation

import (
	"github.com/shopspring/decimal"
)

// lot is a chunk of previously purchased shares with a fixed effective unit
// cost (execution price plus the buy's fees spread over its shares). Lots are
// tracked until fully sold.
type lot struct {
	remaining decimal.Decimal
	unitCost  decimal.Decimal
}

// lotQueue is a FIFO queue of open cost-basis lots for one instrument.
// The head cursor gives O(1) removal of consumed lots and in-place decrement
// of a partially consumed head; FIFO order is never re-sorted.
type lotQueue struct {
	lots []lot
	head int
}

// push appends a new lot to the tail of the queue.
func (q *lotQueue) push(amount, unitCost decimal.Decimal) {
	q.lots = append(q.lots, lot{remaining: amount, unitCost: unitCost})
}

// consume removes amount shares from the head of the queue in FIFO order and
// returns the cost basis of the shares consumed. If amount exceeds the total
// held, the queue simply drains and the remainder is ignored (oversell is not
// validated here; see design notes).
func (q *lotQueue) consume(amount decimal.Decimal) decimal.Decimal {
	costBasis := decimal.Zero
	remaining := amount

	for q.head < len(q.lots) && remaining.IsPositive() {
		head := &q.lots[q.head]
		used := decimal.Min(head.remaining, remaining)
		costBasis = costBasis.Add(used.Mul(head.unitCost))
		remaining = remaining.Sub(used)

		if used.Equal(head.remaining) {
			q.head++
		} else {
			head.remaining = head.remaining.Sub(used)
		}
	}

	q.compact()
	return costBasis
}

// compact reclaims consumed slots once they dominate the backing slice.
func (q *lotQueue) compact() {
	if q.head > 0 && q.head*2 >= len(q.lots) {
		n := copy(q.lots, q.lots[q.head:])
		q.lots = q.lots[:n]
		q.head = 0
	}
}

// totalAmount returns the number of shares currently held across all open lots.
func (q *lotQueue) totalAmount() decimal.Decimal {
	total := decimal.Zero
	for i := q.head; i < len(q.lots); i++ {
		total = total.Add(q.lots[i].remaining)
	}
	return total
}

// investedCost returns the cost basis of the shares still held, i.e. the sum
// of remaining * unitCost over all open lots.
func (q *lotQueue) investedCost() decimal.Decimal {
	total := decimal.Zero
	for i := q.head; i < len(q.lots); i++ {
		total = total.Add(q.lots[i].remaining.Mul(q.lots[i].unitCost))
	}
	return total
}
