package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/soupfinance/soupfinance/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, invoice *Invoice, items []InvoiceItem) error
	// ReplaceItems rewrites an invoice's header fields and its full item
	// set in one shot. Callers run it inside a transaction.
	ReplaceItems(ctx context.Context, db *gorm.DB, invoice *Invoice, items []InvoiceItem) error
	UpdateStatus(ctx context.Context, db *gorm.DB, invoice *Invoice) error
	FindByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*Invoice, error)
	FindItems(ctx context.Context, db *gorm.DB, orgID, invoiceID snowflake.ID) ([]InvoiceItem, error)
	CountByOrg(ctx context.Context, db *gorm.DB, orgID snowflake.ID) (int64, error)
	List(ctx context.Context, db *gorm.DB, orgID snowflake.ID, filter ListInvoiceFilter, page pagination.Pagination) ([]*Invoice, error)
}
