package pdf

import "context"

// InvoiceDocument is the renderer-facing shape of an invoice. Monetary
// fields arrive pre-formatted so the renderer stays layout-only.
type InvoiceDocument struct {
	OrgName    string
	OrgEmail   string
	OrgAddress string

	InvoiceNumber       string
	Status              string
	IssueDate           string
	DueDate             string
	PaymentTerms        string
	PurchaseOrderNumber string
	Notes               string

	BillToName    string
	BillToEmail   string
	BillToAddress string

	Items []DocumentItem

	Subtotal string
	Discount string
	Tax      string
	Total    string
	Currency string
}

type DocumentItem struct {
	Description     string
	Quantity        string
	UnitPrice       string
	TaxRate         string
	DiscountPercent string
	Amount          string
}

type Provider interface {
	RenderInvoice(ctx context.Context, doc InvoiceDocument) ([]byte, error)
}
