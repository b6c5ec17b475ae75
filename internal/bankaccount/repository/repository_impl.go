package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/soupfinance/soupfinance/internal/bankaccount/domain"
	"github.com/soupfinance/soupfinance/pkg/db/option"
	"github.com/soupfinance/soupfinance/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, account *domain.BankAccount) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO bank_accounts (id, org_id, name, bank_name, account_number, routing_number, currency, is_default, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		account.ID,
		account.OrgID,
		account.Name,
		account.BankName,
		account.AccountNumber,
		account.RoutingNumber,
		account.Currency,
		account.IsDefault,
		account.CreatedAt,
		account.UpdatedAt,
	).Error
}

func (r *repo) ClearDefault(ctx context.Context, db *gorm.DB, orgID snowflake.ID) error {
	return db.WithContext(ctx).Exec(
		`UPDATE bank_accounts SET is_default = ? WHERE org_id = ?`,
		false,
		orgID,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*domain.BankAccount, error) {
	var account domain.BankAccount
	err := db.WithContext(ctx).Raw(
		`SELECT id, org_id, name, bank_name, account_number, routing_number, currency, is_default, created_at, updated_at
		 FROM bank_accounts WHERE org_id = ? AND id = ?`,
		orgID,
		id,
	).Scan(&account).Error
	if err != nil {
		return nil, err
	}
	if account.ID == 0 {
		return nil, nil
	}
	return &account, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, orgID snowflake.ID, page pagination.Pagination) ([]*domain.BankAccount, error) {
	var accounts []*domain.BankAccount
	stmt := db.WithContext(ctx).
		Model(&domain.BankAccount{}).
		Where("org_id = ?", orgID)
	stmt = option.ApplyPagination(page).Apply(stmt)
	err := stmt.
		Order("created_at desc, id desc").
		Find(&accounts).Error
	if err != nil {
		return nil, err
	}
	return accounts, nil
}
