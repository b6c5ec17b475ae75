// Package domain contains persistence models for invoicing.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// InvoiceStatus represents invoice lifecycle states.
type InvoiceStatus string

const (
	InvoiceStatusDraft InvoiceStatus = "DRAFT"
	InvoiceStatusSent  InvoiceStatus = "SENT"
	InvoiceStatusPaid  InvoiceStatus = "PAID"
	InvoiceStatusVoid  InvoiceStatus = "VOID"
)

// Invoice represents an issued or draft invoice.
type Invoice struct {
	ID                  snowflake.ID      `gorm:"primaryKey" json:"id"`
	OrgID               snowflake.ID      `gorm:"not null;index" json:"organization_id"`
	ClientID            snowflake.ID      `gorm:"not null;index" json:"client_id"`
	Number              string            `gorm:"type:text;not null;uniqueIndex:ux_invoices_org_number,composite:org_id" json:"number"`
	Status              InvoiceStatus     `gorm:"type:text;not null;default:'DRAFT'" json:"status"`
	Currency            string            `gorm:"type:text;not null" json:"currency"`
	InvoiceDate         time.Time         `gorm:"not null" json:"invoice_date"`
	PaymentDate         time.Time         `gorm:"not null" json:"payment_date"`
	Notes               string            `gorm:"type:text" json:"notes,omitempty"`
	PurchaseOrderNumber string            `gorm:"type:text" json:"purchase_order_number,omitempty"`
	Subtotal            decimal.Decimal   `gorm:"type:numeric;not null" json:"subtotal"`
	DiscountAmount      decimal.Decimal   `gorm:"type:numeric;not null" json:"discount_amount"`
	TaxAmount           decimal.Decimal   `gorm:"type:numeric;not null" json:"tax_amount"`
	Total               decimal.Decimal   `gorm:"type:numeric;not null" json:"total"`
	SentAt              *time.Time        `json:"sent_at,omitempty"`
	PaidAt              *time.Time        `json:"paid_at,omitempty"`
	VoidedAt            *time.Time        `json:"voided_at,omitempty"`
	Metadata            datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"metadata,omitempty"`
	CreatedAt           time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt           time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Invoice) TableName() string { return "invoices" }

// InvoiceItem represents a line on an invoice. LineAmount is the stored
// per-line figure: quantity times unit price, less discount, plus tax on
// the discounted value.
type InvoiceItem struct {
	ID              snowflake.ID    `gorm:"primaryKey" json:"id"`
	OrgID           snowflake.ID    `gorm:"not null;index" json:"organization_id"`
	InvoiceID       snowflake.ID    `gorm:"not null;index" json:"invoice_id"`
	Position        int             `gorm:"not null" json:"position"`
	Description     string          `gorm:"type:text" json:"description"`
	Quantity        decimal.Decimal `gorm:"type:numeric;not null" json:"quantity"`
	UnitPrice       decimal.Decimal `gorm:"type:numeric;not null" json:"unit_price"`
	TaxRate         decimal.Decimal `gorm:"type:numeric;not null" json:"tax_rate"`
	DiscountPercent decimal.Decimal `gorm:"type:numeric;not null" json:"discount_percent"`
	LineAmount      decimal.Decimal `gorm:"type:numeric;not null" json:"line_amount"`
	CreatedAt       time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (InvoiceItem) TableName() string { return "invoice_items" }
