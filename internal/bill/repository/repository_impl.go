package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/soupfinance/soupfinance/internal/bill/domain"
	"github.com/soupfinance/soupfinance/pkg/db/option"
	"github.com/soupfinance/soupfinance/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, bill *domain.Bill, items []domain.BillItem) error {
	err := db.WithContext(ctx).Exec(
		`INSERT INTO bills (
			id, org_id, vendor_id, number, reference, status, currency, bill_date, due_date,
			notes, subtotal, discount_amount, tax_amount, total,
			paid_at, voided_at, metadata, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		bill.ID,
		bill.OrgID,
		bill.VendorID,
		bill.Number,
		bill.Reference,
		bill.Status,
		bill.Currency,
		bill.BillDate,
		bill.DueDate,
		bill.Notes,
		bill.Subtotal,
		bill.DiscountAmount,
		bill.TaxAmount,
		bill.Total,
		bill.PaidAt,
		bill.VoidedAt,
		bill.Metadata,
		bill.CreatedAt,
		bill.UpdatedAt,
	).Error
	if err != nil {
		return err
	}
	return r.insertItems(ctx, db, items)
}

func (r *repo) ReplaceItems(ctx context.Context, db *gorm.DB, bill *domain.Bill, items []domain.BillItem) error {
	err := db.WithContext(ctx).Exec(
		`UPDATE bills
		 SET vendor_id = ?, reference = ?, currency = ?, bill_date = ?, due_date = ?, notes = ?,
		     subtotal = ?, discount_amount = ?, tax_amount = ?, total = ?, updated_at = ?
		 WHERE org_id = ? AND id = ?`,
		bill.VendorID,
		bill.Reference,
		bill.Currency,
		bill.BillDate,
		bill.DueDate,
		bill.Notes,
		bill.Subtotal,
		bill.DiscountAmount,
		bill.TaxAmount,
		bill.Total,
		bill.UpdatedAt,
		bill.OrgID,
		bill.ID,
	).Error
	if err != nil {
		return err
	}

	err = db.WithContext(ctx).Exec(
		`DELETE FROM bill_items WHERE org_id = ? AND bill_id = ?`,
		bill.OrgID,
		bill.ID,
	).Error
	if err != nil {
		return err
	}
	return r.insertItems(ctx, db, items)
}

func (r *repo) insertItems(ctx context.Context, db *gorm.DB, items []domain.BillItem) error {
	for i := range items {
		err := db.WithContext(ctx).Exec(
			`INSERT INTO bill_items (
				id, org_id, bill_id, position, description, quantity, unit_price,
				tax_rate, discount_percent, line_amount, created_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			items[i].ID,
			items[i].OrgID,
			items[i].BillID,
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

func (r *repo) UpdateStatus(ctx context.Context, db *gorm.DB, bill *domain.Bill) error {
	return db.WithContext(ctx).Exec(
		`UPDATE bills
		 SET status = ?, paid_at = ?, voided_at = ?, updated_at = ?
		 WHERE org_id = ? AND id = ?`,
		bill.Status,
		bill.PaidAt,
		bill.VoidedAt,
		bill.UpdatedAt,
		bill.OrgID,
		bill.ID,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*domain.Bill, error) {
	var bill domain.Bill
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM bills WHERE org_id = ? AND id = ?`,
		orgID,
		id,
	).Scan(&bill).Error
	if err != nil {
		return nil, err
	}
	if bill.ID == 0 {
		return nil, nil
	}
	return &bill, nil
}

func (r *repo) FindItems(ctx context.Context, db *gorm.DB, orgID, billID snowflake.ID) ([]domain.BillItem, error) {
	var items []domain.BillItem
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM bill_items WHERE org_id = ? AND bill_id = ? ORDER BY position ASC, id ASC`,
		orgID,
		billID,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) CountByOrg(ctx context.Context, db *gorm.DB, orgID snowflake.ID) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Model(&domain.Bill{}).Where("org_id = ?", orgID).Count(&count).Error
	return count, err
}

func (r *repo) List(ctx context.Context, db *gorm.DB, orgID snowflake.ID, filter domain.ListBillFilter, page pagination.Pagination) ([]*domain.Bill, error) {
	var bills []*domain.Bill
	stmt := db.WithContext(ctx).
		Model(&domain.Bill{}).
		Where("org_id = ?", orgID)
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}
	if filter.VendorID != "" {
		stmt = stmt.Where("vendor_id = ?", filter.VendorID)
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
		Find(&bills).Error
	if err != nil {
		return nil, err
	}
	return bills, nil
}
