// Package seed bootstraps the default organization, admin user and
// chart of accounts so a fresh install is usable immediately.
package seed

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	authdomain "github.com/soupfinance/soupfinance/internal/auth/domain"
	"github.com/soupfinance/soupfinance/internal/auth/password"
	ledgerdomain "github.com/soupfinance/soupfinance/internal/ledgeraccount/domain"
	organizationdomain "github.com/soupfinance/soupfinance/internal/organization/domain"
	"gorm.io/gorm"
)

const (
	defaultOrgName       = "Main"
	defaultOrgSlug       = "main"
	defaultAdminEmail    = "admin@soupfinance.local"
	defaultAdminPassword = "admin"
	defaultAdminDisplay  = "Soupfinance Admin"
)

// EnsureMainOrg seeds the default organization for startup bootstrap.
func EnsureMainOrg(db *gorm.DB) error {
	return ensureMainOrg(db, 0)
}

// EnsureMainOrgWithID seeds the default organization under a fixed ID.
func EnsureMainOrgWithID(db *gorm.DB, orgID int64) error {
	return ensureMainOrg(db, snowflake.ID(orgID))
}

func ensureMainOrg(db *gorm.DB, orgID snowflake.ID) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		org, err := ensureMainOrgTx(ctx, tx, node, orgID)
		if err != nil {
			return err
		}
		return ensureLedgerAccounts(ctx, tx, node, org.ID)
	})
}

// EnsureMainOrgAndAdmin seeds the default organization plus an admin
// user holding the owner role.
func EnsureMainOrgAndAdmin(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		org, err := ensureMainOrgTx(ctx, tx, node, 0)
		if err != nil {
			return err
		}

		var user authdomain.User
		err = tx.WithContext(ctx).
			Where("email = ?", strings.ToLower(defaultAdminEmail)).
			First(&user).Error
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			hashed, err := password.Hash(defaultAdminPassword)
			if err != nil {
				return err
			}
			now := time.Now().UTC()
			user = authdomain.User{
				ID:           node.Generate(),
				DisplayName:  defaultAdminDisplay,
				Email:        strings.ToLower(defaultAdminEmail),
				PasswordHash: &hashed,
				IsDefault:    true,
				CreatedAt:    now,
				UpdatedAt:    now,
			}
			if err := tx.WithContext(ctx).Create(&user).Error; err != nil {
				return err
			}
		}

		var member organizationdomain.OrganizationMember
		err = tx.WithContext(ctx).
			Where("org_id = ? AND user_id = ?", org.ID, user.ID).
			First(&member).Error
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			member = organizationdomain.OrganizationMember{
				ID:        node.Generate(),
				OrgID:     org.ID,
				UserID:    user.ID,
				Role:      organizationdomain.RoleOwner,
				CreatedAt: time.Now().UTC(),
			}
			if err := tx.WithContext(ctx).Create(&member).Error; err != nil {
				return err
			}
		}

		return ensureLedgerAccounts(ctx, tx, node, org.ID)
	})
}

func ensureMainOrgTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node, orgID snowflake.ID) (organizationdomain.Organization, error) {
	var org organizationdomain.Organization
	err := tx.WithContext(ctx).Where("slug = ?", defaultOrgSlug).First(&org).Error
	if err == nil {
		return org, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return org, err
	}

	id := orgID
	if id == 0 {
		id = node.Generate()
	}
	now := time.Now().UTC()
	org = organizationdomain.Organization{
		ID:        id,
		Name:      defaultOrgName,
		Slug:      defaultOrgSlug,
		Currency:  "USD",
		IsDefault: true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := tx.WithContext(ctx).Create(&org).Error; err != nil {
		return org, err
	}
	return org, nil
}

func ensureLedgerAccounts(ctx context.Context, db *gorm.DB, node *snowflake.Node, orgID snowflake.ID) error {
	type account struct {
		Code string
		Type ledgerdomain.AccountType
		Name string
	}

	accounts := []account{
		{"cash", ledgerdomain.AccountTypeAsset, "Cash / Bank"},
		{"accounts_receivable", ledgerdomain.AccountTypeAsset, "Accounts Receivable"},

		{"accounts_payable", ledgerdomain.AccountTypeLiability, "Accounts Payable"},
		{"tax_payable", ledgerdomain.AccountTypeLiability, "Tax Payable"},

		{"owner_equity", ledgerdomain.AccountTypeEquity, "Owner Equity"},

		{"revenue_services", ledgerdomain.AccountTypeIncome, "Service Revenue"},
		{"revenue_products", ledgerdomain.AccountTypeIncome, "Product Revenue"},

		{"office_expense", ledgerdomain.AccountTypeExpense, "Office Expenses"},
		{"bank_fee_expense", ledgerdomain.AccountTypeExpense, "Bank Fees"},
	}

	now := time.Now().UTC()
	for _, a := range accounts {
		var existing ledgerdomain.LedgerAccount
		err := db.WithContext(ctx).
			Where("org_id = ? AND code = ?", orgID, a.Code).
			First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		row := ledgerdomain.LedgerAccount{
			ID:        node.Generate(),
			OrgID:     orgID,
			Code:      a.Code,
			Name:      a.Name,
			Type:      a.Type,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := db.WithContext(ctx).Create(&row).Error; err != nil {
			return err
		}
	}
	return nil
}
