package domain

import (
	"github.com/shopspring/decimal"
	"github.com/soupfinance/soupfinance/internal/totals"
)

// Item row fields accepted by ItemList.Update.
const (
	ItemFieldDescription     = "description"
	ItemFieldQuantity        = "quantity"
	ItemFieldUnitPrice       = "unitPrice"
	ItemFieldTaxRate         = "taxRate"
	ItemFieldDiscountPercent = "discountPercent"
)

// ItemRow is one editable line in an item list. Key is a local
// identifier that stays stable while rows are added and removed; ID is
// the backend identifier and is empty for rows not yet persisted.
type ItemRow struct {
	Key             int64           `json:"key"`
	ID              string          `json:"id,omitempty"`
	Description     string          `json:"description"`
	Quantity        decimal.Decimal `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	TaxRate         decimal.Decimal `json:"tax_rate"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
}

// ItemList holds an ordered, editable collection of line items. The
// list never shrinks below one row: removing the last remaining row is
// a no-op.
type ItemList struct {
	rows    []ItemRow
	nextKey int64
}

// NewItemList returns a list holding a single blank row.
func NewItemList() *ItemList {
	l := &ItemList{}
	l.Add()
	return l
}

// ItemListFrom builds a list from existing rows, assigning fresh keys.
// An empty input behaves like NewItemList.
func ItemListFrom(rows []ItemRow) *ItemList {
	l := &ItemList{}
	for _, row := range rows {
		key := l.Add()
		stored := &l.rows[len(l.rows)-1]
		*stored = row
		stored.Key = key
	}
	if len(l.rows) == 0 {
		l.Add()
	}
	return l
}

// Rows returns a copy of the current rows in order.
func (l *ItemList) Rows() []ItemRow {
	out := make([]ItemRow, len(l.rows))
	copy(out, l.rows)
	return out
}

// Len returns the number of rows.
func (l *ItemList) Len() int { return len(l.rows) }

// Add appends a blank row and returns its key.
func (l *ItemList) Add() int64 {
	l.nextKey++
	l.rows = append(l.rows, ItemRow{Key: l.nextKey})
	return l.nextKey
}

// Update sets one field on the row with the given key. Numeric fields
// take decimal values; unknown keys and unknown fields report false.
func (l *ItemList) Update(key int64, field string, value any) bool {
	row := l.find(key)
	if row == nil {
		return false
	}

	switch field {
	case ItemFieldDescription:
		text, ok := value.(string)
		if !ok {
			return false
		}
		row.Description = text
	case ItemFieldQuantity:
		amount, ok := value.(decimal.Decimal)
		if !ok {
			return false
		}
		row.Quantity = amount
	case ItemFieldUnitPrice:
		amount, ok := value.(decimal.Decimal)
		if !ok {
			return false
		}
		row.UnitPrice = amount
	case ItemFieldTaxRate:
		amount, ok := value.(decimal.Decimal)
		if !ok {
			return false
		}
		row.TaxRate = amount
	case ItemFieldDiscountPercent:
		amount, ok := value.(decimal.Decimal)
		if !ok {
			return false
		}
		row.DiscountPercent = amount
	default:
		return false
	}
	return true
}

// Remove deletes the row with the given key. Removing the only row is
// a no-op and reports false, keeping the one-row floor.
func (l *ItemList) Remove(key int64) bool {
	if len(l.rows) <= 1 {
		return false
	}
	for i := range l.rows {
		if l.rows[i].Key == key {
			l.rows = append(l.rows[:i], l.rows[i+1:]...)
			return true
		}
	}
	return false
}

// Lines converts the rows into calculator input, preserving order.
func (l *ItemList) Lines() []totals.Line {
	lines := make([]totals.Line, 0, len(l.rows))
	for _, row := range l.rows {
		lines = append(lines, totals.Line{
			Quantity:        row.Quantity,
			UnitPrice:       row.UnitPrice,
			TaxRate:         row.TaxRate,
			DiscountPercent: row.DiscountPercent,
		})
	}
	return lines
}

// Summary computes aggregate figures for the current rows.
func (l *ItemList) Summary() totals.Summary {
	return totals.Compute(l.Lines())
}

func (l *ItemList) find(key int64) *ItemRow {
	for i := range l.rows {
		if l.rows[i].Key == key {
			return &l.rows[i]
		}
	}
	return nil
}
