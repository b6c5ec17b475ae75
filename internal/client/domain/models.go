package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Client is a billable counterparty invoices are issued to.
type Client struct {
	ID           snowflake.ID      `gorm:"primaryKey" json:"id"`
	OrgID        snowflake.ID      `gorm:"not null;index" json:"organization_id"`
	Name         string            `gorm:"not null" json:"name"`
	Email        string            `gorm:"not null" json:"email"`
	Phone        string            `json:"phone,omitempty"`
	Currency     string            `gorm:"column:currency" json:"currency,omitempty"`
	AddressLine1 string            `json:"address_line1,omitempty"`
	AddressLine2 string            `json:"address_line2,omitempty"`
	City         string            `json:"city,omitempty"`
	Country      string            `json:"country,omitempty"`
	TaxNumber    string            `json:"tax_number,omitempty"`
	Metadata     datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"metadata,omitempty"`
	CreatedAt    time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}
