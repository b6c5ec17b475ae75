package domain

import (
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
)

// BankAccount is an organization's payout or payment account. Full
// account numbers are stored but list and detail responses only ever
// expose the masked form.
type BankAccount struct {
	ID            snowflake.ID `gorm:"primaryKey" json:"id"`
	OrgID         snowflake.ID `gorm:"not null;index" json:"organization_id"`
	Name          string       `gorm:"not null" json:"name"`
	BankName      string       `json:"bank_name,omitempty"`
	AccountNumber string       `gorm:"not null" json:"-"`
	RoutingNumber string       `json:"-"`
	Currency      string       `json:"currency,omitempty"`
	IsDefault     bool         `gorm:"not null;default:false" json:"is_default"`
	CreatedAt     time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt     time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// MaskedNumber returns the account number with all but the last four
// digits replaced.
func (a BankAccount) MaskedNumber() string {
	digits := strings.TrimSpace(a.AccountNumber)
	if len(digits) <= 4 {
		return strings.Repeat("*", len(digits))
	}
	return strings.Repeat("*", len(digits)-4) + digits[len(digits)-4:]
}
