package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type AccountType string

const (
	AccountTypeAsset     AccountType = "asset"
	AccountTypeLiability AccountType = "liability"
	AccountTypeEquity    AccountType = "equity"
	AccountTypeIncome    AccountType = "income"
	AccountTypeExpense   AccountType = "expense"
)

func (t AccountType) Valid() bool {
	switch t {
	case AccountTypeAsset, AccountTypeLiability, AccountTypeEquity, AccountTypeIncome, AccountTypeExpense:
		return true
	}
	return false
}

// LedgerAccount is one entry in an organization's chart of accounts.
// Code is unique per organization.
type LedgerAccount struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	OrgID       snowflake.ID `gorm:"not null;uniqueIndex:idx_ledger_accounts_org_code" json:"organization_id"`
	Code        string       `gorm:"not null;uniqueIndex:idx_ledger_accounts_org_code" json:"code"`
	Name        string       `gorm:"not null" json:"name"`
	Type        AccountType  `gorm:"not null" json:"type"`
	Description string       `json:"description,omitempty"`
	Archived    bool         `gorm:"not null;default:false" json:"archived"`
	CreatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}
