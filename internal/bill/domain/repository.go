package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/soupfinance/soupfinance/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, bill *Bill, items []BillItem) error
	ReplaceItems(ctx context.Context, db *gorm.DB, bill *Bill, items []BillItem) error
	UpdateStatus(ctx context.Context, db *gorm.DB, bill *Bill) error
	FindByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*Bill, error)
	FindItems(ctx context.Context, db *gorm.DB, orgID, billID snowflake.ID) ([]BillItem, error)
	CountByOrg(ctx context.Context, db *gorm.DB, orgID snowflake.ID) (int64, error)
	List(ctx context.Context, db *gorm.DB, orgID snowflake.ID, filter ListBillFilter, page pagination.Pagination) ([]*Bill, error)
}
