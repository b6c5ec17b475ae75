package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/soupfinance/soupfinance/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, account *LedgerAccount) error
	Update(ctx context.Context, db *gorm.DB, account *LedgerAccount) error
	FindByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*LedgerAccount, error)
	FindByCode(ctx context.Context, db *gorm.DB, orgID snowflake.ID, code string) (*LedgerAccount, error)
	List(ctx context.Context, db *gorm.DB, orgID snowflake.ID, filter ListLedgerAccountFilter, page pagination.Pagination) ([]*LedgerAccount, error)
}
