// Package formbind decodes the indexed form encoding used by invoice and
// bill forms, where line items arrive as flat keys of the shape
//
//	invoiceItemList[0].description=Consulting
//	invoiceItemList[0].quantity=2
//	invoiceItemList[0].unitPrice=100
//
// Indices may be sparse; decoded items are returned in ascending index
// order. Numeric fields are parsed strictly: a non-empty value that is
// not a valid decimal is a decode error, never a silent zero.
package formbind

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strconv"

	"github.com/shopspring/decimal"
)

// Field names accepted under an indexed key.
const (
	FieldID              = "id"
	FieldDescription     = "description"
	FieldQuantity        = "quantity"
	FieldUnitPrice       = "unitPrice"
	FieldTaxRate         = "taxRate"
	FieldDiscountPercent = "discountPercent"
)

var ErrUnknownField = errors.New("unknown_field")

// FieldError reports a single key that failed to decode.
type FieldError struct {
	Key   string
	Value string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("formbind: %s=%q: %v", e.Key, e.Value, e.Err)
}

func (e *FieldError) Unwrap() error { return e.Err }

// ItemInput is one decoded line item. ID carries the backend identifier
// when the row already exists; a blank ID means the row is new.
type ItemInput struct {
	Index           int
	ID              string
	Description     string
	Quantity        decimal.Decimal
	UnitPrice       decimal.Decimal
	TaxRate         decimal.Decimal
	DiscountPercent decimal.Decimal
}

var indexedKey = regexp.MustCompile(`^([a-zA-Z]+)\[(\d+)\]\.([a-zA-Z]+)$`)

// DecodeItems extracts all items under the given list prefix, for
// example "invoiceItemList" or "billItemList". Keys that do not match
// the prefix are ignored so header fields can share the same payload.
func DecodeItems(values url.Values, prefix string) ([]ItemInput, error) {
	byIndex := map[int]*ItemInput{}

	for key, vals := range values {
		match := indexedKey.FindStringSubmatch(key)
		if match == nil || match[1] != prefix {
			continue
		}

		index, err := strconv.Atoi(match[2])
		if err != nil {
			return nil, &FieldError{Key: key, Value: match[2], Err: err}
		}

		item, ok := byIndex[index]
		if !ok {
			item = &ItemInput{Index: index}
			byIndex[index] = item
		}

		value := ""
		if len(vals) > 0 {
			value = vals[0]
		}

		if err := assignField(item, match[3], key, value); err != nil {
			return nil, err
		}
	}

	items := make([]ItemInput, 0, len(byIndex))
	for _, item := range byIndex {
		items = append(items, *item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Index < items[j].Index })

	return items, nil
}

func assignField(item *ItemInput, field, key, value string) error {
	switch field {
	case FieldID:
		item.ID = value
	case FieldDescription:
		item.Description = value
	case FieldQuantity:
		return assignDecimal(&item.Quantity, key, value)
	case FieldUnitPrice:
		return assignDecimal(&item.UnitPrice, key, value)
	case FieldTaxRate:
		return assignDecimal(&item.TaxRate, key, value)
	case FieldDiscountPercent:
		return assignDecimal(&item.DiscountPercent, key, value)
	default:
		return &FieldError{Key: key, Value: value, Err: ErrUnknownField}
	}
	return nil
}

func assignDecimal(dst *decimal.Decimal, key, value string) error {
	if value == "" {
		*dst = decimal.Zero
		return nil
	}

	parsed, err := decimal.NewFromString(value)
	if err != nil {
		return &FieldError{Key: key, Value: value, Err: err}
	}

	*dst = parsed
	return nil
}

// EncodeItems renders items back into the indexed form encoding. Items
// are written with consecutive indices starting at zero regardless of
// their Index field, matching what a re-rendered form would submit.
func EncodeItems(items []ItemInput, prefix string) url.Values {
	values := url.Values{}
	for i, item := range items {
		set := func(field, value string) {
			values.Set(fmt.Sprintf("%s[%d].%s", prefix, i, field), value)
		}
		if item.ID != "" {
			set(FieldID, item.ID)
		}
		set(FieldDescription, item.Description)
		set(FieldQuantity, item.Quantity.String())
		set(FieldUnitPrice, item.UnitPrice.String())
		set(FieldTaxRate, item.TaxRate.String())
		set(FieldDiscountPercent, item.DiscountPercent.String())
	}
	return values
}
