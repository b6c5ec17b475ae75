package domain

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/soupfinance/soupfinance/pkg/db/pagination"
)

// LineItemInput is one submitted line. An empty ID means a new row; a
// populated ID updates the persisted row it names.
type LineItemInput struct {
	ID              string
	Description     string
	Quantity        decimal.Decimal
	UnitPrice       decimal.Decimal
	TaxRate         decimal.Decimal
	DiscountPercent decimal.Decimal
}

// SaveInvoiceRequest carries a full invoice form submission. An empty
// invoice ID creates a new draft; a populated ID replaces the named
// invoice's header and line items.
type SaveInvoiceRequest struct {
	ID                  string
	ClientID            string
	Currency            string
	InvoiceDate         *time.Time
	PaymentDate         *time.Time
	Notes               string
	PurchaseOrderNumber string
	Items               []LineItemInput
}

type GetInvoiceRequest struct {
	ID string
}

type ListInvoiceRequest struct {
	PageToken   string
	PageSize    int32
	Status      string
	ClientID    string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

type ListInvoiceFilter struct {
	Status      InvoiceStatus
	ClientID    string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// InvoiceResponse is an invoice with its ordered line items.
type InvoiceResponse struct {
	Invoice
	Items []InvoiceItem `json:"items"`
}

type ListInvoiceResponse struct {
	pagination.PageInfo
	Invoices []Invoice `json:"invoices"`
}

type Service interface {
	Save(ctx context.Context, req SaveInvoiceRequest) (InvoiceResponse, error)
	SaveAndSend(ctx context.Context, req SaveInvoiceRequest) (InvoiceResponse, error)
	Send(ctx context.Context, req GetInvoiceRequest) (InvoiceResponse, error)
	MarkPaid(ctx context.Context, req GetInvoiceRequest) (InvoiceResponse, error)
	Void(ctx context.Context, req GetInvoiceRequest) (InvoiceResponse, error)
	GetByID(ctx context.Context, req GetInvoiceRequest) (InvoiceResponse, error)
	List(ctx context.Context, req ListInvoiceRequest) (ListInvoiceResponse, error)
	RenderPDF(ctx context.Context, req GetInvoiceRequest) ([]byte, error)
}

var (
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrInvalidID           = errors.New("invalid_id")
	ErrInvalidClient       = errors.New("invalid_client")
	ErrMissingInvoiceDate  = errors.New("missing_invoice_date")
	ErrMissingPaymentDate  = errors.New("missing_payment_date")
	ErrNoLineItems         = errors.New("no_line_items")
	ErrEmptyDescription    = errors.New("empty_description")
	ErrInvalidPercent      = errors.New("invalid_percent")
	ErrInvalidStatus       = errors.New("invalid_status")
	ErrNotFound            = errors.New("not_found")
)
