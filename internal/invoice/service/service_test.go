package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	clientdomain "github.com/soupfinance/soupfinance/internal/client/domain"
	"github.com/soupfinance/soupfinance/internal/config"
	"github.com/soupfinance/soupfinance/internal/invoice/domain"
	"github.com/soupfinance/soupfinance/internal/orgcontext"
	"github.com/soupfinance/soupfinance/pkg/db/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type spyRepo struct {
	inserted     []domain.Invoice
	replaced     []domain.Invoice
	statusOps    []domain.InvoiceStatus
	insertedRows [][]domain.InvoiceItem
	stored       map[snowflake.ID]*domain.Invoice
	storedItems  map[snowflake.ID][]domain.InvoiceItem
	count        int64
}

func newSpyRepo() *spyRepo {
	return &spyRepo{
		stored:      map[snowflake.ID]*domain.Invoice{},
		storedItems: map[snowflake.ID][]domain.InvoiceItem{},
	}
}

func (r *spyRepo) Insert(ctx context.Context, db *gorm.DB, invoice *domain.Invoice, items []domain.InvoiceItem) error {
	r.inserted = append(r.inserted, *invoice)
	r.insertedRows = append(r.insertedRows, items)
	copied := *invoice
	r.stored[invoice.ID] = &copied
	r.storedItems[invoice.ID] = items
	r.count++
	return nil
}

func (r *spyRepo) ReplaceItems(ctx context.Context, db *gorm.DB, invoice *domain.Invoice, items []domain.InvoiceItem) error {
	r.replaced = append(r.replaced, *invoice)
	copied := *invoice
	r.stored[invoice.ID] = &copied
	r.storedItems[invoice.ID] = items
	return nil
}

func (r *spyRepo) UpdateStatus(ctx context.Context, db *gorm.DB, invoice *domain.Invoice) error {
	r.statusOps = append(r.statusOps, invoice.Status)
	copied := *invoice
	r.stored[invoice.ID] = &copied
	return nil
}

func (r *spyRepo) FindByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*domain.Invoice, error) {
	invoice, ok := r.stored[id]
	if !ok || invoice.OrgID != orgID {
		return nil, nil
	}
	copied := *invoice
	return &copied, nil
}

func (r *spyRepo) FindItems(ctx context.Context, db *gorm.DB, orgID, invoiceID snowflake.ID) ([]domain.InvoiceItem, error) {
	return r.storedItems[invoiceID], nil
}

func (r *spyRepo) CountByOrg(ctx context.Context, db *gorm.DB, orgID snowflake.ID) (int64, error) {
	return r.count, nil
}

func (r *spyRepo) List(ctx context.Context, db *gorm.DB, orgID snowflake.ID, filter domain.ListInvoiceFilter, page pagination.Pagination) ([]*domain.Invoice, error) {
	return nil, nil
}

type fakeClientRepo struct {
	clients map[snowflake.ID]*clientdomain.Client
}

func (r *fakeClientRepo) Insert(ctx context.Context, db *gorm.DB, client *clientdomain.Client) error {
	return nil
}

func (r *fakeClientRepo) Update(ctx context.Context, db *gorm.DB, client *clientdomain.Client) error {
	return nil
}

func (r *fakeClientRepo) FindByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*clientdomain.Client, error) {
	client, ok := r.clients[id]
	if !ok || client.OrgID != orgID {
		return nil, nil
	}
	return client, nil
}

func (r *fakeClientRepo) List(ctx context.Context, db *gorm.DB, orgID snowflake.ID, filter clientdomain.ListClientFilter, page pagination.Pagination) ([]*clientdomain.Client, error) {
	return nil, nil
}

type fakeEmail struct {
	sent [][]string
}

func (f *fakeEmail) Send(ctx context.Context, to []string, subject string, htmlBody string) error {
	f.sent = append(f.sent, to)
	return nil
}

func newTestService(t *testing.T, repo *spyRepo, clients *fakeClientRepo, mail *fakeEmail) domain.Service {
	return newTestServiceWithConfig(t, repo, clients, mail, config.DefaultInvoicingConfig())
}

func newTestServiceWithConfig(t *testing.T, repo *spyRepo, clients *fakeClientRepo, mail *fakeEmail, cfg config.InvoicingConfig) domain.Service {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return New(Params{
		DB:         db,
		Log:        zap.NewNop(),
		GenID:      node,
		Repo:       repo,
		ClientRepo: clients,
		Invoicing:  config.StaticInvoicingConfig(cfg),
		Email:      mail,
		PDF:        nil,
	})
}

func datePtr(value string) *time.Time {
	parsed, err := time.Parse("2006-01-02", value)
	if err != nil {
		panic(err)
	}
	return &parsed
}

func validRequest(clientID snowflake.ID) domain.SaveInvoiceRequest {
	return domain.SaveInvoiceRequest{
		ClientID:    clientID.String(),
		InvoiceDate: datePtr("2026-08-01"),
		PaymentDate: datePtr("2026-08-31"),
		Items: []domain.LineItemInput{
			{
				Description:     "Consulting",
				Quantity:        decimal.NewFromInt(2),
				UnitPrice:       decimal.NewFromInt(100),
				DiscountPercent: decimal.NewFromInt(10),
				TaxRate:         decimal.NewFromInt(15),
			},
		},
	}
}

func testContext(orgID snowflake.ID) context.Context {
	return orgcontext.WithOrgID(context.Background(), int64(orgID))
}

func seedClient(orgID snowflake.ID) (*fakeClientRepo, snowflake.ID) {
	clientID := snowflake.ID(77)
	return &fakeClientRepo{clients: map[snowflake.ID]*clientdomain.Client{
		clientID: {ID: clientID, OrgID: orgID, Name: "Acme", Email: "billing@acme.test", Currency: "EUR"},
	}}, clientID
}

func TestSaveComputesTotalsServerSide(t *testing.T) {
	orgID := snowflake.ID(5)
	clients, clientID := seedClient(orgID)
	repo := newSpyRepo()
	svc := newTestService(t, repo, clients, &fakeEmail{})

	resp, err := svc.Save(testContext(orgID), validRequest(clientID))
	require.NoError(t, err)

	assert.True(t, resp.Subtotal.Equal(decimal.NewFromInt(200)))
	assert.True(t, resp.DiscountAmount.Equal(decimal.NewFromInt(20)))
	assert.True(t, resp.TaxAmount.Equal(decimal.NewFromInt(27)))
	assert.True(t, resp.Total.Equal(decimal.NewFromInt(207)))
	assert.Equal(t, domain.InvoiceStatusDraft, resp.Status)
	assert.Equal(t, "INV-00001", resp.Number)
	assert.Equal(t, "EUR", resp.Currency)
	require.Len(t, repo.inserted, 1)
}

func TestSaveValidationFailureNeverPersists(t *testing.T) {
	orgID := snowflake.ID(5)
	clients, clientID := seedClient(orgID)
	repo := newSpyRepo()
	svc := newTestService(t, repo, clients, &fakeEmail{})

	cases := []struct {
		name    string
		mutate  func(*domain.SaveInvoiceRequest)
		wantErr error
	}{
		{
			name:    "unknown client",
			mutate:  func(r *domain.SaveInvoiceRequest) { r.ClientID = "123456789" },
			wantErr: domain.ErrInvalidClient,
		},
		{
			name:    "missing invoice date",
			mutate:  func(r *domain.SaveInvoiceRequest) { r.InvoiceDate = nil },
			wantErr: domain.ErrMissingInvoiceDate,
		},
		{
			name:    "missing payment date",
			mutate:  func(r *domain.SaveInvoiceRequest) { r.PaymentDate = nil },
			wantErr: domain.ErrMissingPaymentDate,
		},
		{
			name:    "no line items",
			mutate:  func(r *domain.SaveInvoiceRequest) { r.Items = nil },
			wantErr: domain.ErrNoLineItems,
		},
		{
			name:    "blank description",
			mutate:  func(r *domain.SaveInvoiceRequest) { r.Items[0].Description = "   " },
			wantErr: domain.ErrEmptyDescription,
		},
		{
			name:    "discount above 100",
			mutate:  func(r *domain.SaveInvoiceRequest) { r.Items[0].DiscountPercent = decimal.NewFromInt(101) },
			wantErr: domain.ErrInvalidPercent,
		},
		{
			name:    "negative tax rate",
			mutate:  func(r *domain.SaveInvoiceRequest) { r.Items[0].TaxRate = decimal.NewFromInt(-1) },
			wantErr: domain.ErrInvalidPercent,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validRequest(clientID)
			tc.mutate(&req)

			_, err := svc.Save(testContext(orgID), req)
			assert.ErrorIs(t, err, tc.wantErr)
			assert.Empty(t, repo.inserted, "validation failure must not persist")
			assert.Empty(t, repo.replaced)
		})
	}
}

func TestSaveEnforcesConfiguredPercentCeilings(t *testing.T) {
	orgID := snowflake.ID(5)
	clients, clientID := seedClient(orgID)
	repo := newSpyRepo()

	cfg := config.DefaultInvoicingConfig()
	cfg.MaxTaxRatePercent = 25
	cfg.MaxDiscountPercent = 40
	svc := newTestServiceWithConfig(t, repo, clients, &fakeEmail{}, cfg)

	// at the ceilings: accepted
	req := validRequest(clientID)
	req.Items[0].TaxRate = decimal.NewFromInt(25)
	req.Items[0].DiscountPercent = decimal.NewFromInt(40)
	_, err := svc.Save(testContext(orgID), req)
	require.NoError(t, err)
	require.Len(t, repo.inserted, 1)

	// tax rate above the configured ceiling
	req = validRequest(clientID)
	req.Items[0].TaxRate = decimal.NewFromInt(30)
	_, err = svc.Save(testContext(orgID), req)
	assert.ErrorIs(t, err, domain.ErrInvalidPercent)

	// discount above the configured ceiling
	req = validRequest(clientID)
	req.Items[0].DiscountPercent = decimal.NewFromInt(41)
	_, err = svc.Save(testContext(orgID), req)
	assert.ErrorIs(t, err, domain.ErrInvalidPercent)

	assert.Len(t, repo.inserted, 1, "rejected lines must not persist")
}

func TestSaveRequiresOrganization(t *testing.T) {
	orgID := snowflake.ID(5)
	clients, clientID := seedClient(orgID)
	repo := newSpyRepo()
	svc := newTestService(t, repo, clients, &fakeEmail{})

	_, err := svc.Save(context.Background(), validRequest(clientID))
	assert.ErrorIs(t, err, domain.ErrInvalidOrganization)
	assert.Empty(t, repo.inserted)
}

func TestSaveAndSendOnlySendsAfterSuccessfulSave(t *testing.T) {
	orgID := snowflake.ID(5)
	clients, clientID := seedClient(orgID)
	repo := newSpyRepo()
	mail := &fakeEmail{}
	svc := newTestService(t, repo, clients, mail)

	// failing save: nothing is emailed
	bad := validRequest(clientID)
	bad.Items = nil
	_, err := svc.SaveAndSend(testContext(orgID), bad)
	require.Error(t, err)
	assert.Empty(t, mail.sent)
	assert.Empty(t, repo.statusOps)

	// blank description: neither persisted nor emailed
	blank := validRequest(clientID)
	blank.Items[0].Description = "   "
	_, err = svc.SaveAndSend(testContext(orgID), blank)
	assert.ErrorIs(t, err, domain.ErrEmptyDescription)
	assert.Empty(t, repo.inserted)
	assert.Empty(t, mail.sent)

	// successful save: persisted first, then sent
	resp, err := svc.SaveAndSend(testContext(orgID), validRequest(clientID))
	require.NoError(t, err)
	assert.Equal(t, domain.InvoiceStatusSent, resp.Status)
	require.Len(t, repo.inserted, 1)
	require.Len(t, mail.sent, 1)
	assert.Equal(t, []string{"billing@acme.test"}, mail.sent[0])
}

func TestUpdateRejectsNonDraft(t *testing.T) {
	orgID := snowflake.ID(5)
	clients, clientID := seedClient(orgID)
	repo := newSpyRepo()
	svc := newTestService(t, repo, clients, &fakeEmail{})

	resp, err := svc.SaveAndSend(testContext(orgID), validRequest(clientID))
	require.NoError(t, err)

	update := validRequest(clientID)
	update.ID = resp.ID.String()
	_, err = svc.Save(testContext(orgID), update)
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
}

func TestStatusTransitions(t *testing.T) {
	orgID := snowflake.ID(5)
	clients, clientID := seedClient(orgID)
	repo := newSpyRepo()
	svc := newTestService(t, repo, clients, &fakeEmail{})

	resp, err := svc.Save(testContext(orgID), validRequest(clientID))
	require.NoError(t, err)
	ref := domain.GetInvoiceRequest{ID: resp.ID.String()}

	// draft cannot be paid
	_, err = svc.MarkPaid(testContext(orgID), ref)
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)

	_, err = svc.Send(testContext(orgID), ref)
	require.NoError(t, err)

	paid, err := svc.MarkPaid(testContext(orgID), ref)
	require.NoError(t, err)
	assert.Equal(t, domain.InvoiceStatusPaid, paid.Status)
	require.NotNil(t, paid.PaidAt)

	// paid cannot be voided
	_, err = svc.Void(testContext(orgID), ref)
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
}
