// Package domain contains persistence models for vendor bills.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// BillStatus represents bill lifecycle states.
type BillStatus string

const (
	BillStatusDraft    BillStatus = "DRAFT"
	BillStatusReceived BillStatus = "RECEIVED"
	BillStatusPaid     BillStatus = "PAID"
	BillStatusVoid     BillStatus = "VOID"
)

// Bill represents a payable recorded against a vendor.
type Bill struct {
	ID             snowflake.ID      `gorm:"primaryKey" json:"id"`
	OrgID          snowflake.ID      `gorm:"not null;index" json:"organization_id"`
	VendorID       snowflake.ID      `gorm:"not null;index" json:"vendor_id"`
	Number         string            `gorm:"type:text;not null" json:"number"`
	Reference      string            `gorm:"type:text" json:"reference,omitempty"`
	Status         BillStatus        `gorm:"type:text;not null;default:'DRAFT'" json:"status"`
	Currency       string            `gorm:"type:text;not null" json:"currency"`
	BillDate       time.Time         `gorm:"not null" json:"bill_date"`
	DueDate        time.Time         `gorm:"not null" json:"due_date"`
	Notes          string            `gorm:"type:text" json:"notes,omitempty"`
	Subtotal       decimal.Decimal   `gorm:"type:numeric;not null" json:"subtotal"`
	DiscountAmount decimal.Decimal   `gorm:"type:numeric;not null" json:"discount_amount"`
	TaxAmount      decimal.Decimal   `gorm:"type:numeric;not null" json:"tax_amount"`
	Total          decimal.Decimal   `gorm:"type:numeric;not null" json:"total"`
	PaidAt         *time.Time        `json:"paid_at,omitempty"`
	VoidedAt       *time.Time        `json:"voided_at,omitempty"`
	Metadata       datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"metadata,omitempty"`
	CreatedAt      time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt      time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Bill) TableName() string { return "bills" }

// BillItem represents a line on a bill.
type BillItem struct {
	ID              snowflake.ID    `gorm:"primaryKey" json:"id"`
	OrgID           snowflake.ID    `gorm:"not null;index" json:"organization_id"`
	BillID          snowflake.ID    `gorm:"not null;index" json:"bill_id"`
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
func (BillItem) TableName() string { return "bill_items" }
