package domain

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/soupfinance/soupfinance/pkg/db/pagination"
)

type LineItemInput struct {
	ID              string
	Description     string
	Quantity        decimal.Decimal
	UnitPrice       decimal.Decimal
	TaxRate         decimal.Decimal
	DiscountPercent decimal.Decimal
}

// SaveBillRequest carries a full bill form submission. An empty bill ID
// creates a new draft; a populated ID replaces the named bill's header
// and line items.
type SaveBillRequest struct {
	ID        string
	VendorID  string
	Currency  string
	Reference string
	BillDate  *time.Time
	DueDate   *time.Time
	Notes     string
	Items     []LineItemInput
}

type GetBillRequest struct {
	ID string
}

type ListBillRequest struct {
	PageToken   string
	PageSize    int32
	Status      string
	VendorID    string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

type ListBillFilter struct {
	Status      BillStatus
	VendorID    string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

type BillResponse struct {
	Bill
	Items []BillItem `json:"items"`
}

type ListBillResponse struct {
	pagination.PageInfo
	Bills []Bill `json:"bills"`
}

type Service interface {
	Save(ctx context.Context, req SaveBillRequest) (BillResponse, error)
	MarkReceived(ctx context.Context, req GetBillRequest) (BillResponse, error)
	MarkPaid(ctx context.Context, req GetBillRequest) (BillResponse, error)
	Void(ctx context.Context, req GetBillRequest) (BillResponse, error)
	GetByID(ctx context.Context, req GetBillRequest) (BillResponse, error)
	List(ctx context.Context, req ListBillRequest) (ListBillResponse, error)
}

var (
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrInvalidID           = errors.New("invalid_id")
	ErrInvalidVendor       = errors.New("invalid_vendor")
	ErrMissingBillDate     = errors.New("missing_bill_date")
	ErrMissingDueDate      = errors.New("missing_due_date")
	ErrNoLineItems         = errors.New("no_line_items")
	ErrEmptyDescription    = errors.New("empty_description")
	ErrInvalidPercent      = errors.New("invalid_percent")
	ErrInvalidStatus       = errors.New("invalid_status")
	ErrNotFound            = errors.New("not_found")
)
