package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/soupfinance/soupfinance/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, vendor *Vendor) error
	Update(ctx context.Context, db *gorm.DB, vendor *Vendor) error
	FindByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*Vendor, error)
	List(ctx context.Context, db *gorm.DB, orgID snowflake.ID, filter ListVendorFilter, page pagination.Pagination) ([]*Vendor, error)
}
