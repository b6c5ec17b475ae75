package totals

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func line(qty, price, discount, tax string) Line {
	return Line{
		Quantity:        decimal.RequireFromString(qty),
		UnitPrice:       decimal.RequireFromString(price),
		DiscountPercent: decimal.RequireFromString(discount),
		TaxRate:         decimal.RequireFromString(tax),
	}
}

func TestDiscountThenTaxOrdering(t *testing.T) {
	l := line("2", "100", "10", "15")

	assert.True(t, LineTotal(l).Equal(decimal.RequireFromString("200")))
	assert.True(t, LineDiscount(l).Equal(decimal.RequireFromString("20")))
	// tax on 180, not on 200
	assert.True(t, LineTax(l).Equal(decimal.RequireFromString("27")))
	assert.True(t, LineAmount(l).Equal(decimal.RequireFromString("207")))
}

func TestComputeEndToEnd(t *testing.T) {
	lines := []Line{
		line("1", "500", "0", "0"),
		line("3", "50", "20", "10"),
	}

	summary := Compute(lines)
	assert.True(t, summary.Subtotal.Equal(decimal.RequireFromString("650")), "subtotal: %s", summary.Subtotal)
	assert.True(t, summary.DiscountAmount.Equal(decimal.RequireFromString("30")), "discount: %s", summary.DiscountAmount)
	assert.True(t, summary.TaxAmount.Equal(decimal.RequireFromString("12")), "tax: %s", summary.TaxAmount)
	assert.True(t, summary.Total.Equal(decimal.RequireFromString("632")), "total: %s", summary.Total)
}

func TestTotalEqualsSumOfLineAmounts(t *testing.T) {
	lines := []Line{
		line("1", "19.99", "0", "21"),
		line("7", "3.5", "12.5", "6"),
		line("0.25", "1000", "50", "19"),
		line("2", "0", "100", "100"),
	}

	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(LineAmount(l))
	}

	require.True(t, Total(lines).Equal(sum), "total %s != per-line sum %s", Total(lines), sum)
}

func TestIdempotence(t *testing.T) {
	lines := []Line{
		line("4", "12.75", "5", "8"),
		line("1", "99", "0", "20"),
	}

	first := Compute(lines)
	second := Compute(lines)

	assert.True(t, first.Subtotal.Equal(second.Subtotal))
	assert.True(t, first.DiscountAmount.Equal(second.DiscountAmount))
	assert.True(t, first.TaxAmount.Equal(second.TaxAmount))
	assert.True(t, first.Total.Equal(second.Total))
}

func TestEmptySequence(t *testing.T) {
	summary := Compute(nil)
	assert.True(t, summary.Subtotal.IsZero())
	assert.True(t, summary.DiscountAmount.IsZero())
	assert.True(t, summary.TaxAmount.IsZero())
	assert.True(t, summary.Total.IsZero())
}

func TestNegativeQuantityFlowsThrough(t *testing.T) {
	// Credit-note style lines are allowed; the calculator does not clamp.
	l := line("-1", "100", "0", "10")
	assert.True(t, LineAmount(l).Equal(decimal.RequireFromString("-110")))
}
