// Package totals derives aggregate monetary figures from an ordered
// sequence of invoice or bill line items. Discounts apply before tax:
// tax is always computed on the post-discount line amount.
package totals

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Line is the value type the calculator consumes. Quantities and prices
// are plain decimals; TaxRate and DiscountPercent are percentages in
// the range [0,100].
type Line struct {
	Quantity        decimal.Decimal
	UnitPrice       decimal.Decimal
	TaxRate         decimal.Decimal
	DiscountPercent decimal.Decimal
}

// Summary holds the aggregate figures for a sequence of lines.
type Summary struct {
	Subtotal       decimal.Decimal `json:"subtotal"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	TaxAmount      decimal.Decimal `json:"tax_amount"`
	Total          decimal.Decimal `json:"total"`
}

// LineTotal returns quantity × unit price for a single line, before
// discount and tax.
func LineTotal(line Line) decimal.Decimal {
	return line.Quantity.Mul(line.UnitPrice)
}

// LineDiscount returns the discount portion of a single line.
func LineDiscount(line Line) decimal.Decimal {
	return LineTotal(line).Mul(line.DiscountPercent.Div(hundred))
}

// LineTax returns the tax portion of a single line. Tax is computed on
// the post-discount amount, never the gross amount.
func LineTax(line Line) decimal.Decimal {
	afterDiscount := LineTotal(line).Sub(LineDiscount(line))
	return afterDiscount.Mul(line.TaxRate.Div(hundred))
}

// LineAmount returns the displayed amount for a single line:
// (quantity × unitPrice) less discount, plus tax on the discounted value.
func LineAmount(line Line) decimal.Decimal {
	return LineTotal(line).Sub(LineDiscount(line)).Add(LineTax(line))
}

// Subtotal sums quantity × unit price across all lines.
func Subtotal(lines []Line) decimal.Decimal {
	sum := decimal.Zero
	for _, line := range lines {
		sum = sum.Add(LineTotal(line))
	}
	return sum
}

// DiscountAmount sums the discount portion across all lines.
func DiscountAmount(lines []Line) decimal.Decimal {
	sum := decimal.Zero
	for _, line := range lines {
		sum = sum.Add(LineDiscount(line))
	}
	return sum
}

// TaxAmount sums the tax portion across all lines.
func TaxAmount(lines []Line) decimal.Decimal {
	sum := decimal.Zero
	for _, line := range lines {
		sum = sum.Add(LineTax(line))
	}
	return sum
}

// Total returns subtotal − discount + tax. It always equals the sum of
// LineAmount across the same lines.
func Total(lines []Line) decimal.Decimal {
	return Subtotal(lines).Sub(DiscountAmount(lines)).Add(TaxAmount(lines))
}

// Compute returns all aggregate figures in one pass.
func Compute(lines []Line) Summary {
	return Summary{
		Subtotal:       Subtotal(lines),
		DiscountAmount: DiscountAmount(lines),
		TaxAmount:      TaxAmount(lines),
		Total:          Total(lines),
	}
}
