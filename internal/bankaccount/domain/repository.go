package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/soupfinance/soupfinance/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, account *BankAccount) error
	ClearDefault(ctx context.Context, db *gorm.DB, orgID snowflake.ID) error
	FindByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*BankAccount, error)
	List(ctx context.Context, db *gorm.DB, orgID snowflake.ID, page pagination.Pagination) ([]*BankAccount, error)
}
