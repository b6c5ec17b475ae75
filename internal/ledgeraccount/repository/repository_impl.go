package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/soupfinance/soupfinance/internal/ledgeraccount/domain"
	"github.com/soupfinance/soupfinance/pkg/db/option"
	"github.com/soupfinance/soupfinance/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, account *domain.LedgerAccount) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO ledger_accounts (id, org_id, code, name, type, description, archived, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		account.ID,
		account.OrgID,
		account.Code,
		account.Name,
		account.Type,
		account.Description,
		account.Archived,
		account.CreatedAt,
		account.UpdatedAt,
	).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, account *domain.LedgerAccount) error {
	return db.WithContext(ctx).Exec(
		`UPDATE ledger_accounts
		 SET name = ?, description = ?, archived = ?, updated_at = ?
		 WHERE org_id = ? AND id = ?`,
		account.Name,
		account.Description,
		account.Archived,
		account.UpdatedAt,
		account.OrgID,
		account.ID,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*domain.LedgerAccount, error) {
	var account domain.LedgerAccount
	err := db.WithContext(ctx).Raw(
		`SELECT id, org_id, code, name, type, description, archived, created_at, updated_at
		 FROM ledger_accounts WHERE org_id = ? AND id = ?`,
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

func (r *repo) FindByCode(ctx context.Context, db *gorm.DB, orgID snowflake.ID, code string) (*domain.LedgerAccount, error) {
	var account domain.LedgerAccount
	err := db.WithContext(ctx).Raw(
		`SELECT id, org_id, code, name, type, description, archived, created_at, updated_at
		 FROM ledger_accounts WHERE org_id = ? AND code = ?`,
		orgID,
		code,
	).Scan(&account).Error
	if err != nil {
		return nil, err
	}
	if account.ID == 0 {
		return nil, nil
	}
	return &account, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, orgID snowflake.ID, filter domain.ListLedgerAccountFilter, page pagination.Pagination) ([]*domain.LedgerAccount, error) {
	var accounts []*domain.LedgerAccount
	stmt := db.WithContext(ctx).
		Model(&domain.LedgerAccount{}).
		Where("org_id = ?", orgID)
	if filter.Type != "" {
		stmt = stmt.Where("type = ?", filter.Type)
	}
	if !filter.IncludeArchived {
		stmt = stmt.Where("archived = ?", false)
	}
	stmt = option.ApplyPagination(page).Apply(stmt)
	err := stmt.
		Order("created_at desc, id desc").
		Find(&accounts).Error
	if err != nil {
		return nil, err
	}
	return accounts, nil
}
