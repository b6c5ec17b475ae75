package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/soupfinance/soupfinance/internal/invoice/domain"
	"github.com/soupfinance/soupfinance/pkg/db/option"
	"github.com/soupfinance/soupfinance/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, invoice *domain.Invoice, items []domain.InvoiceItem) error {
	err := db.WithContext(ctx).Exec(
		`INSERT INTO invoices (
			id, org_id, client_id, number, status, currency, invoice_date, payment_date,
			notes, purchase_order_number, subtotal, discount_amount, tax_amount, total,
			sent_at, paid_at, voided_at, metadata, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		invoice.ID,
		invoice.OrgID,
		invoice.ClientID,
		invoice.Number,
		invoice.Status,
		invoice.Currency,
		invoice.InvoiceDate,
		invoice.PaymentDate,
		invoice.Notes,
		invoice.PurchaseOrderNumber,
		invoice.Subtotal,
		invoice.DiscountAmount,
		invoice.TaxAmount,
		invoice.Total,
		invoice.SentAt,
		invoice.PaidAt,
		invoice.VoidedAt,
		invoice.Metadata,
		invoice.CreatedAt,
		invoice.UpdatedAt,
	).Error
	if err != nil {
		return err
	}
	return r.insertItems(ctx, db, items)
}

func (r *repo) ReplaceItems(ctx context.Context, db *gorm.DB, invoice *domain.Invoice, items []domain.InvoiceItem) error {
	err := db.WithContext(ctx).Exec(
		`UPDATE invoices
		 SET client_id = ?, currency = ?, invoice_date = ?, payment_date = ?, notes = ?,
		     purchase_order_number = ?, subtotal = ?, discount_amount = ?, tax_amount = ?,
		     total = ?, updated_at = ?
		 WHERE org_id = ? AND id = ?`,
		invoice.ClientID,
		invoice.Currency,
		invoice.InvoiceDate,
		invoice.PaymentDate,
		invoice.Notes,
		invoice.PurchaseOrderNumber,
		invoice.Subtotal,
		invoice.DiscountAmount,
		invoice.TaxAmount,
		invoice.Total,
		invoice.UpdatedAt,
		invoice.OrgID,
		invoice.ID,
	).Error
	if err != nil {
		return err
	}

	err = db.WithContext(ctx).Exec(
		`DELETE FROM invoice_items WHERE org_id = ? AND invoice_id = ?`,
		invoice.OrgID,
		invoice.ID,
	).Error
	if err != nil {
		return err
	}
	return r.insertItems(ctx, db, items)
}

func (r *repo) insertItems(ctx context.Context, db *gorm.DB, items []domain.InvoiceItem) error {
	for i := range items {
		err := db.WithContext(ctx).Exec(
			`INSERT INTO invoice_items (
				id, org_id, invoice_id, position, description, quantity, unit_price,
				tax_rate, discount_percent, line_amount, created_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			items[i].ID,
			items[i].OrgID,
			items[i].InvoiceID,
			items[i].Position,
			items[i].Description,
			items[i].Quantity,
			items[i].UnitPrice,
			items[i].TaxRate,
			items[i].DiscountPercent,
			items[i].LineAmount,
			items[i].CreatedAt,
		).Error
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *repo) UpdateStatus(ctx context.Context, db *gorm.DB, invoice *domain.Invoice) error {
	return db.WithContext(ctx).Exec(
		`UPDATE invoices
		 SET status = ?, sent_at = ?, paid_at = ?, voided_at = ?, updated_at = ?
		 WHERE org_id = ? AND id = ?`,
		invoice.Status,
		invoice.SentAt,
		invoice.PaidAt,
		invoice.VoidedAt,
		invoice.UpdatedAt,
		invoice.OrgID,
		invoice.ID,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*domain.Invoice, error) {
	var invoice domain.Invoice
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM invoices WHERE org_id = ? AND id = ?`,
		orgID,
		id,
	).Scan(&invoice).Error
	if err != nil {
		return nil, err
	}
	if invoice.ID == 0 {
		return nil, nil
	}
	return &invoice, nil
}

func (r *repo) FindItems(ctx context.Context, db *gorm.DB, orgID, invoiceID snowflake.ID) ([]domain.InvoiceItem, error) {
	var items []domain.InvoiceItem
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM invoice_items WHERE org_id = ? AND invoice_id = ? ORDER BY position ASC, id ASC`,
		orgID,
		invoiceID,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) CountByOrg(ctx context.Context, db *gorm.DB, orgID snowflake.ID) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Model(&domain.Invoice{}).Where("org_id = ?", orgID).Count(&count).Error
	return count, err
}

func (r *repo) List(ctx context.Context, db *gorm.DB, orgID snowflake.ID, filter domain.ListInvoiceFilter, page pagination.Pagination) ([]*domain.Invoice, error) {
	var invoices []*domain.Invoice
	stmt := db.WithContext(ctx).
		Model(&domain.Invoice{}).
		Where("org_id = ?", orgID)
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}
	if filter.ClientID != "" {
		stmt = stmt.Where("client_id = ?", filter.ClientID)
	}
	if filter.CreatedFrom != nil {
		stmt = stmt.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		stmt = stmt.Where("created_at <= ?", *filter.CreatedTo)
	}
	stmt = option.ApplyPagination(page).Apply(stmt)
	err := stmt.
		Order("created_at desc, id desc").
		Find(&invoices).Error
	if err != nil {
		return nil, err
	}
	return invoices, nil
}
