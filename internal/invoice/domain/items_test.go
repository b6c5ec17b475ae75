package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewItemListStartsWithOneRow(t *testing.T) {
	list := NewItemList()
	require.Equal(t, 1, list.Len())
	assert.Empty(t, list.Rows()[0].Description)
}

func TestRemoveLastRowIsNoOp(t *testing.T) {
	list := NewItemList()
	key := list.Rows()[0].Key

	assert.False(t, list.Remove(key))
	assert.Equal(t, 1, list.Len())
}

func TestAddAndRemoveKeepStableKeys(t *testing.T) {
	list := NewItemList()
	first := list.Rows()[0].Key
	second := list.Add()
	third := list.Add()

	require.True(t, list.Update(second, ItemFieldDescription, "middle"))
	require.True(t, list.Remove(first))

	rows := list.Rows()
	require.Len(t, rows, 2)
	assert.Equal(t, second, rows[0].Key)
	assert.Equal(t, third, rows[1].Key)
	assert.Equal(t, "middle", rows[0].Description)

	// keys are never reused
	fourth := list.Add()
	assert.Greater(t, fourth, third)
}

func TestUpdateUnknownKeyOrField(t *testing.T) {
	list := NewItemList()
	key := list.Rows()[0].Key

	assert.False(t, list.Update(999, ItemFieldDescription, "x"))
	assert.False(t, list.Update(key, "sku", "x"))
	assert.False(t, list.Update(key, ItemFieldQuantity, "not a decimal"))
}

func TestSummaryUsesDiscountBeforeTax(t *testing.T) {
	list := NewItemList()
	key := list.Rows()[0].Key
	require.True(t, list.Update(key, ItemFieldQuantity, decimal.NewFromInt(2)))
	require.True(t, list.Update(key, ItemFieldUnitPrice, decimal.NewFromInt(100)))
	require.True(t, list.Update(key, ItemFieldDiscountPercent, decimal.NewFromInt(10)))
	require.True(t, list.Update(key, ItemFieldTaxRate, decimal.NewFromInt(15)))

	summary := list.Summary()
	assert.True(t, summary.Subtotal.Equal(decimal.NewFromInt(200)))
	assert.True(t, summary.DiscountAmount.Equal(decimal.NewFromInt(20)))
	assert.True(t, summary.TaxAmount.Equal(decimal.NewFromInt(27)))
	assert.True(t, summary.Total.Equal(decimal.NewFromInt(207)))
}

func TestItemListFromAssignsFreshKeys(t *testing.T) {
	rows := []ItemRow{
		{ID: "101", Description: "a"},
		{ID: "102", Description: "b"},
	}
	list := ItemListFrom(rows)
	require.Equal(t, 2, list.Len())

	got := list.Rows()
	assert.Equal(t, "101", got[0].ID)
	assert.Equal(t, "b", got[1].Description)
	assert.NotEqual(t, got[0].Key, got[1].Key)
	assert.NotZero(t, got[0].Key)
}

func TestItemListFromEmptyBehavesLikeNew(t *testing.T) {
	list := ItemListFrom(nil)
	assert.Equal(t, 1, list.Len())
}
