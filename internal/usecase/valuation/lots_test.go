package valuation

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestLotQueue_ConsumeFollowsFIFOOrder(t *testing.T) {
	q := &lotQueue{}
	q.push(d("100"), d("30.05"))
	q.push(d("150"), d("35.05"))

	// 120 shares: the whole first lot plus 20 from the second.
	costBasis := q.consume(d("120"))

	assert.True(t, costBasis.Equal(d("3706")), "cost basis = %s", costBasis)
	assert.True(t, q.totalAmount().Equal(d("130")), "remaining = %s", q.totalAmount())
	assert.True(t, q.investedCost().Equal(d("4556.5")), "invested = %s", q.investedCost())
}

func TestLotQueue_PartialConsumeDecrementsHeadInPlace(t *testing.T) {
	q := &lotQueue{}
	q.push(d("100"), d("10"))

	costBasis := q.consume(d("40"))

	assert.True(t, costBasis.Equal(d("400")), "cost basis = %s", costBasis)
	assert.True(t, q.totalAmount().Equal(d("60")))

	// The same lot keeps being consumed first.
	costBasis = q.consume(d("60"))
	assert.True(t, costBasis.Equal(d("600")))
	assert.True(t, q.totalAmount().IsZero())
}

func TestLotQueue_OversellDrainsQueueAndIgnoresRemainder(t *testing.T) {
	q := &lotQueue{}
	q.push(d("50"), d("20"))

	// Selling more than held: the queue drains, the extra 30 shares are
	// ignored and contribute no cost basis.
	costBasis := q.consume(d("80"))

	assert.True(t, costBasis.Equal(d("1000")), "cost basis = %s", costBasis)
	assert.True(t, q.totalAmount().IsZero())
	assert.True(t, q.investedCost().IsZero())
}

func TestLotQueue_ConsumeOnEmptyQueueIsZero(t *testing.T) {
	q := &lotQueue{}

	costBasis := q.consume(d("10"))

	assert.True(t, costBasis.IsZero())
	assert.True(t, q.totalAmount().IsZero())
}

func TestLotQueue_CompactionPreservesOrderAndTotals(t *testing.T) {
	q := &lotQueue{}
	for i := 1; i <= 8; i++ {
		q.push(decimal.NewFromInt(10), decimal.NewFromInt(int64(i)))
	}

	// Consume five full lots one by one; compaction kicks in along the way.
	for i := 1; i <= 5; i++ {
		costBasis := q.consume(d("10"))
		assert.True(t, costBasis.Equal(decimal.NewFromInt(int64(10*i))), "lot %d", i)
	}

	assert.True(t, q.totalAmount().Equal(d("30")))
	// 10*6 + 10*7 + 10*8
	assert.True(t, q.investedCost().Equal(d("210")))
}
