package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/soupfinance/soupfinance/internal/vendors/domain"
	"github.com/soupfinance/soupfinance/pkg/db/option"
	"github.com/soupfinance/soupfinance/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, vendor *domain.Vendor) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO vendors (id, org_id, name, email, phone, currency, address_line1, city, country, tax_number, metadata, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		vendor.ID,
		vendor.OrgID,
		vendor.Name,
		vendor.Email,
		vendor.Phone,
		vendor.Currency,
		vendor.AddressLine1,
		vendor.City,
		vendor.Country,
		vendor.TaxNumber,
		vendor.Metadata,
		vendor.CreatedAt,
		vendor.UpdatedAt,
	).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, vendor *domain.Vendor) error {
	return db.WithContext(ctx).Exec(
		`UPDATE vendors
		 SET name = ?, email = ?, phone = ?, currency = ?, address_line1 = ?, city = ?, country = ?, tax_number = ?, updated_at = ?
		 WHERE org_id = ? AND id = ?`,
		vendor.Name,
		vendor.Email,
		vendor.Phone,
		vendor.Currency,
		vendor.AddressLine1,
		vendor.City,
		vendor.Country,
		vendor.TaxNumber,
		vendor.UpdatedAt,
		vendor.OrgID,
		vendor.ID,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*domain.Vendor, error) {
	var vendor domain.Vendor
	err := db.WithContext(ctx).Raw(
		`SELECT id, org_id, name, email, phone, currency, address_line1, city, country, tax_number, metadata, created_at, updated_at
		 FROM vendors WHERE org_id = ? AND id = ?`,
		orgID,
		id,
	).Scan(&vendor).Error
	if err != nil {
		return nil, err
	}
	if vendor.ID == 0 {
		return nil, nil
	}
	return &vendor, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, orgID snowflake.ID, filter domain.ListVendorFilter, page pagination.Pagination) ([]*domain.Vendor, error) {
	var vendors []*domain.Vendor
	stmt := db.WithContext(ctx).
		Model(&domain.Vendor{}).
		Where("org_id = ?", orgID)
	if filter.Name != "" {
		stmt = stmt.Where("name = ?", filter.Name)
	}
	if filter.Currency != "" {
		stmt = stmt.Where("currency = ?", filter.Currency)
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
		Find(&vendors).Error
	if err != nil {
		return nil, err
	}
	return vendors, nil
}
