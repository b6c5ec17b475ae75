package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/soupfinance/soupfinance/internal/bill/domain"
	"github.com/soupfinance/soupfinance/internal/config"
	"github.com/soupfinance/soupfinance/internal/orgcontext"
	vendordomain "github.com/soupfinance/soupfinance/internal/vendors/domain"
	"github.com/soupfinance/soupfinance/pkg/db/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type spyRepo struct {
	inserted    []domain.Bill
	replaced    []domain.Bill
	stored      map[snowflake.ID]*domain.Bill
	storedItems map[snowflake.ID][]domain.BillItem
	count       int64
}

func newSpyRepo() *spyRepo {
	return &spyRepo{
		stored:      map[snowflake.ID]*domain.Bill{},
		storedItems: map[snowflake.ID][]domain.BillItem{},
	}
}

func (r *spyRepo) Insert(ctx context.Context, db *gorm.DB, bill *domain.Bill, items []domain.BillItem) error {
	r.inserted = append(r.inserted, *bill)
	copied := *bill
	r.stored[bill.ID] = &copied
	r.storedItems[bill.ID] = items
	r.count++
	return nil
}

func (r *spyRepo) ReplaceItems(ctx context.Context, db *gorm.DB, bill *domain.Bill, items []domain.BillItem) error {
	r.replaced = append(r.replaced, *bill)
	copied := *bill
	r.stored[bill.ID] = &copied
	r.storedItems[bill.ID] = items
	return nil
}

func (r *spyRepo) UpdateStatus(ctx context.Context, db *gorm.DB, bill *domain.Bill) error {
	copied := *bill
	r.stored[bill.ID] = &copied
	return nil
}

func (r *spyRepo) FindByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*domain.Bill, error) {
	bill, ok := r.stored[id]
	if !ok || bill.OrgID != orgID {
		return nil, nil
	}
	copied := *bill
	return &copied, nil
}

func (r *spyRepo) FindItems(ctx context.Context, db *gorm.DB, orgID, billID snowflake.ID) ([]domain.BillItem, error) {
	return r.storedItems[billID], nil
}

func (r *spyRepo) CountByOrg(ctx context.Context, db *gorm.DB, orgID snowflake.ID) (int64, error) {
	return r.count, nil
}

func (r *spyRepo) List(ctx context.Context, db *gorm.DB, orgID snowflake.ID, filter domain.ListBillFilter, page pagination.Pagination) ([]*domain.Bill, error) {
	return nil, nil
}

type fakeVendorRepo struct {
	vendors map[snowflake.ID]*vendordomain.Vendor
}

func (r *fakeVendorRepo) Insert(ctx context.Context, db *gorm.DB, vendor *vendordomain.Vendor) error {
	return nil
}

func (r *fakeVendorRepo) Update(ctx context.Context, db *gorm.DB, vendor *vendordomain.Vendor) error {
	return nil
}

func (r *fakeVendorRepo) FindByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*vendordomain.Vendor, error) {
	vendor, ok := r.vendors[id]
	if !ok || vendor.OrgID != orgID {
		return nil, nil
	}
	return vendor, nil
}

func (r *fakeVendorRepo) List(ctx context.Context, db *gorm.DB, orgID snowflake.ID, filter vendordomain.ListVendorFilter, page pagination.Pagination) ([]*vendordomain.Vendor, error) {
	return nil, nil
}

func newTestService(t *testing.T, repo *spyRepo, vendors *fakeVendorRepo) domain.Service {
	return newTestServiceWithConfig(t, repo, vendors, config.DefaultInvoicingConfig())
}

func newTestServiceWithConfig(t *testing.T, repo *spyRepo, vendors *fakeVendorRepo, cfg config.InvoicingConfig) domain.Service {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	node, err := snowflake.NewNode(2)
	require.NoError(t, err)

	return New(Params{
		DB:         db,
		Log:        zap.NewNop(),
		GenID:      node,
		Repo:       repo,
		VendorRepo: vendors,
		Invoicing:  config.StaticInvoicingConfig(cfg),
	})
}

func datePtr(value string) *time.Time {
	parsed, err := time.Parse("2006-01-02", value)
	if err != nil {
		panic(err)
	}
	return &parsed
}

func testContext(orgID snowflake.ID) context.Context {
	return orgcontext.WithOrgID(context.Background(), int64(orgID))
}

func seedVendor(orgID snowflake.ID) (*fakeVendorRepo, snowflake.ID) {
	vendorID := snowflake.ID(88)
	return &fakeVendorRepo{vendors: map[snowflake.ID]*vendordomain.Vendor{
		vendorID: {ID: vendorID, OrgID: orgID, Name: "Office Supplies Co", Currency: "GBP"},
	}}, vendorID
}

func validRequest(vendorID snowflake.ID) domain.SaveBillRequest {
	return domain.SaveBillRequest{
		VendorID: vendorID.String(),
		BillDate: datePtr("2026-08-01"),
		DueDate:  datePtr("2026-08-31"),
		Items: []domain.LineItemInput{
			{
				Description:     "Paper",
				Quantity:        decimal.NewFromInt(4),
				UnitPrice:       decimal.NewFromInt(25),
				DiscountPercent: decimal.NewFromInt(10),
				TaxRate:         decimal.NewFromInt(20),
			},
		},
	}
}

func TestSaveComputesTotals(t *testing.T) {
	orgID := snowflake.ID(9)
	vendors, vendorID := seedVendor(orgID)
	repo := newSpyRepo()
	svc := newTestService(t, repo, vendors)

	resp, err := svc.Save(testContext(orgID), validRequest(vendorID))
	require.NoError(t, err)

	assert.True(t, resp.Subtotal.Equal(decimal.NewFromInt(100)))
	assert.True(t, resp.DiscountAmount.Equal(decimal.NewFromInt(10)))
	assert.True(t, resp.TaxAmount.Equal(decimal.NewFromInt(18)))
	assert.True(t, resp.Total.Equal(decimal.NewFromInt(108)))
	assert.Equal(t, domain.BillStatusDraft, resp.Status)
	assert.Equal(t, "BILL-00001", resp.Number)
	assert.Equal(t, "GBP", resp.Currency)
	require.Len(t, repo.inserted, 1)
}

func TestSaveValidationFailureNeverPersists(t *testing.T) {
	orgID := snowflake.ID(9)
	vendors, vendorID := seedVendor(orgID)
	repo := newSpyRepo()
	svc := newTestService(t, repo, vendors)

	cases := []struct {
		name    string
		mutate  func(*domain.SaveBillRequest)
		wantErr error
	}{
		{
			name:    "unknown vendor",
			mutate:  func(r *domain.SaveBillRequest) { r.VendorID = "123456789" },
			wantErr: domain.ErrInvalidVendor,
		},
		{
			name:    "missing bill date",
			mutate:  func(r *domain.SaveBillRequest) { r.BillDate = nil },
			wantErr: domain.ErrMissingBillDate,
		},
		{
			name:    "missing due date",
			mutate:  func(r *domain.SaveBillRequest) { r.DueDate = nil },
			wantErr: domain.ErrMissingDueDate,
		},
		{
			name:    "no line items",
			mutate:  func(r *domain.SaveBillRequest) { r.Items = nil },
			wantErr: domain.ErrNoLineItems,
		},
		{
			name:    "discount above 100",
			mutate:  func(r *domain.SaveBillRequest) { r.Items[0].DiscountPercent = decimal.NewFromInt(101) },
			wantErr: domain.ErrInvalidPercent,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validRequest(vendorID)
			tc.mutate(&req)

			_, err := svc.Save(testContext(orgID), req)
			assert.ErrorIs(t, err, tc.wantErr)
			assert.Empty(t, repo.inserted)
			assert.Empty(t, repo.replaced)
		})
	}
}

func TestSaveEnforcesConfiguredPercentCeilings(t *testing.T) {
	orgID := snowflake.ID(9)
	vendors, vendorID := seedVendor(orgID)
	repo := newSpyRepo()

	cfg := config.DefaultInvoicingConfig()
	cfg.MaxTaxRatePercent = 20
	cfg.MaxDiscountPercent = 15
	svc := newTestServiceWithConfig(t, repo, vendors, cfg)

	// the default request sits exactly at the tax ceiling
	_, err := svc.Save(testContext(orgID), validRequest(vendorID))
	require.NoError(t, err)
	require.Len(t, repo.inserted, 1)

	req := validRequest(vendorID)
	req.Items[0].TaxRate = decimal.NewFromInt(21)
	_, err = svc.Save(testContext(orgID), req)
	assert.ErrorIs(t, err, domain.ErrInvalidPercent)

	req = validRequest(vendorID)
	req.Items[0].DiscountPercent = decimal.NewFromInt(16)
	_, err = svc.Save(testContext(orgID), req)
	assert.ErrorIs(t, err, domain.ErrInvalidPercent)

	assert.Len(t, repo.inserted, 1, "rejected lines must not persist")
}

func TestStatusTransitions(t *testing.T) {
	orgID := snowflake.ID(9)
	vendors, vendorID := seedVendor(orgID)
	repo := newSpyRepo()
	svc := newTestService(t, repo, vendors)

	resp, err := svc.Save(testContext(orgID), validRequest(vendorID))
	require.NoError(t, err)
	ref := domain.GetBillRequest{ID: resp.ID.String()}

	// draft cannot be paid before it is received
	_, err = svc.MarkPaid(testContext(orgID), ref)
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)

	received, err := svc.MarkReceived(testContext(orgID), ref)
	require.NoError(t, err)
	assert.Equal(t, domain.BillStatusReceived, received.Status)

	paid, err := svc.MarkPaid(testContext(orgID), ref)
	require.NoError(t, err)
	assert.Equal(t, domain.BillStatusPaid, paid.Status)
	require.NotNil(t, paid.PaidAt)

	// paid cannot be voided
	_, err = svc.Void(testContext(orgID), ref)
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
}

func TestUpdateRejectsNonDraft(t *testing.T) {
	orgID := snowflake.ID(9)
	vendors, vendorID := seedVendor(orgID)
	repo := newSpyRepo()
	svc := newTestService(t, repo, vendors)

	resp, err := svc.Save(testContext(orgID), validRequest(vendorID))
	require.NoError(t, err)

	_, err = svc.MarkReceived(testContext(orgID), domain.GetBillRequest{ID: resp.ID.String()})
	require.NoError(t, err)

	update := validRequest(vendorID)
	update.ID = resp.ID.String()
	_, err = svc.Save(testContext(orgID), update)
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
}
