package formbind

import (
	"net/url"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeItems(t *testing.T) {
	values := url.Values{}
	values.Set("invoiceItemList[0].description", "Consulting")
	values.Set("invoiceItemList[0].quantity", "2")
	values.Set("invoiceItemList[0].unitPrice", "100")
	values.Set("invoiceItemList[0].taxRate", "15")
	values.Set("invoiceItemList[0].discountPercent", "10")
	values.Set("invoiceItemList[1].id", "1987654321")
	values.Set("invoiceItemList[1].description", "Hosting")
	values.Set("invoiceItemList[1].quantity", "1")
	values.Set("invoiceItemList[1].unitPrice", "49.99")
	// header fields share the payload and must not interfere
	values.Set("accountServices.id", "42")
	values.Set("invoiceDate", "2026-08-01")

	items, err := DecodeItems(values, "invoiceItemList")
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, "Consulting", items[0].Description)
	assert.Empty(t, items[0].ID)
	assert.True(t, items[0].Quantity.Equal(decimal.NewFromInt(2)))
	assert.True(t, items[0].UnitPrice.Equal(decimal.NewFromInt(100)))
	assert.True(t, items[0].TaxRate.Equal(decimal.NewFromInt(15)))
	assert.True(t, items[0].DiscountPercent.Equal(decimal.NewFromInt(10)))

	assert.Equal(t, "1987654321", items[1].ID)
	assert.Equal(t, "Hosting", items[1].Description)
	assert.True(t, items[1].UnitPrice.Equal(decimal.RequireFromString("49.99")))
	assert.True(t, items[1].TaxRate.IsZero())
}

func TestDecodeItemsSparseIndices(t *testing.T) {
	values := url.Values{}
	values.Set("billItemList[3].description", "third")
	values.Set("billItemList[0].description", "first")
	values.Set("billItemList[7].description", "fourth")
	values.Set("billItemList[1].description", "second")

	items, err := DecodeItems(values, "billItemList")
	require.NoError(t, err)
	require.Len(t, items, 4)
	assert.Equal(t, "first", items[0].Description)
	assert.Equal(t, "second", items[1].Description)
	assert.Equal(t, "third", items[2].Description)
	assert.Equal(t, "fourth", items[3].Description)
}

func TestDecodeItemsRejectsBadNumber(t *testing.T) {
	values := url.Values{}
	values.Set("invoiceItemList[0].description", "Consulting")
	values.Set("invoiceItemList[0].quantity", "two")

	_, err := DecodeItems(values, "invoiceItemList")
	require.Error(t, err)

	var fieldErr *FieldError
	require.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, "invoiceItemList[0].quantity", fieldErr.Key)
	assert.Equal(t, "two", fieldErr.Value)
}

func TestDecodeItemsRejectsUnknownField(t *testing.T) {
	values := url.Values{}
	values.Set("invoiceItemList[0].sku", "ABC-1")

	_, err := DecodeItems(values, "invoiceItemList")
	assert.ErrorIs(t, err, ErrUnknownField)
}

func TestDecodeItemsEmptyNumericIsZero(t *testing.T) {
	values := url.Values{}
	values.Set("invoiceItemList[0].description", "Support")
	values.Set("invoiceItemList[0].quantity", "")

	items, err := DecodeItems(values, "invoiceItemList")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.True(t, items[0].Quantity.IsZero())
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	items := []ItemInput{
		{
			ID:          "123",
			Description: "Consulting",
			Quantity:    decimal.NewFromInt(2),
			UnitPrice:   decimal.RequireFromString("99.50"),
			TaxRate:     decimal.NewFromInt(21),
		},
		{
			Description:     "Design",
			Quantity:        decimal.NewFromInt(1),
			UnitPrice:       decimal.NewFromInt(500),
			DiscountPercent: decimal.NewFromInt(5),
		},
	}

	decoded, err := DecodeItems(EncodeItems(items, "invoiceItemList"), "invoiceItemList")
	require.NoError(t, err)
	require.Len(t, decoded, 2)
	assert.Equal(t, "123", decoded[0].ID)
	assert.Equal(t, "Design", decoded[1].Description)
	assert.True(t, decoded[1].DiscountPercent.Equal(decimal.NewFromInt(5)))
}
