package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	auditdomain "github.com/soupfinance/soupfinance/internal/audit/domain"
	clientdomain "github.com/soupfinance/soupfinance/internal/client/domain"
	"github.com/soupfinance/soupfinance/internal/config"
	"github.com/soupfinance/soupfinance/internal/invoice/domain"
	"github.com/soupfinance/soupfinance/internal/observability/metrics"
	"github.com/soupfinance/soupfinance/internal/orgcontext"
	"github.com/soupfinance/soupfinance/internal/providers/email"
	"github.com/soupfinance/soupfinance/internal/providers/pdf"
	"github.com/soupfinance/soupfinance/internal/totals"
	"github.com/soupfinance/soupfinance/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Repo       domain.Repository
	ClientRepo clientdomain.Repository
	Invoicing  *config.InvoicingConfigHolder
	Email      email.Provider
	PDF        pdf.Provider
	Metrics    *metrics.Metrics      `optional:"true"`
	AuditSvc   auditdomain.Service   `optional:"true"`
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	repo       domain.Repository
	clientRepo clientdomain.Repository
	invoicing  *config.InvoicingConfigHolder
	email      email.Provider
	pdf        pdf.Provider
	metrics    *metrics.Metrics
	auditSvc   auditdomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("invoice.service"),
		genID:      p.GenID,
		repo:       p.Repo,
		clientRepo: p.ClientRepo,
		invoicing:  p.Invoicing,
		email:      p.Email,
		pdf:        p.PDF,
		metrics:    p.Metrics,
		auditSvc:   p.AuditSvc,
	}
}

// validateItems applies form rules before anything touches storage:
// at least one line, every line described, percentages non-negative and
// within the configured ceilings.
func validateItems(items []domain.LineItemInput, maxTaxRate, maxDiscount decimal.Decimal) error {
	if len(items) == 0 {
		return domain.ErrNoLineItems
	}
	for _, item := range items {
		if strings.TrimSpace(item.Description) == "" {
			return domain.ErrEmptyDescription
		}
		if item.TaxRate.IsNegative() || item.TaxRate.GreaterThan(maxTaxRate) {
			return domain.ErrInvalidPercent
		}
		if item.DiscountPercent.IsNegative() || item.DiscountPercent.GreaterThan(maxDiscount) {
			return domain.ErrInvalidPercent
		}
	}
	return nil
}

func (s *Service) validate(ctx context.Context, orgID snowflake.ID, req domain.SaveInvoiceRequest) (*clientdomain.Client, error) {
	clientID, err := snowflake.ParseString(strings.TrimSpace(req.ClientID))
	if err != nil || clientID == 0 {
		return nil, domain.ErrInvalidClient
	}
	client, err := s.clientRepo.FindByID(ctx, s.db, orgID, clientID)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, domain.ErrInvalidClient
	}

	if req.InvoiceDate == nil {
		return nil, domain.ErrMissingInvoiceDate
	}
	if req.PaymentDate == nil {
		return nil, domain.ErrMissingPaymentDate
	}

	cfg := s.invoicing.Get()
	maxTaxRate := decimal.NewFromFloat(cfg.MaxTaxRatePercent)
	maxDiscount := decimal.NewFromFloat(cfg.MaxDiscountPercent)
	if err := validateItems(req.Items, maxTaxRate, maxDiscount); err != nil {
		return nil, err
	}
	return client, nil
}

func (s *Service) Save(ctx context.Context, req domain.SaveInvoiceRequest) (domain.InvoiceResponse, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.InvoiceResponse{}, domain.ErrInvalidOrganization
	}

	client, err := s.validate(ctx, orgID, req)
	if err != nil {
		s.recordValidationFailure(ctx)
		return domain.InvoiceResponse{}, err
	}

	if strings.TrimSpace(req.ID) == "" {
		return s.create(ctx, orgID, client, req)
	}
	return s.update(ctx, orgID, client, req)
}

func (s *Service) SaveAndSend(ctx context.Context, req domain.SaveInvoiceRequest) (domain.InvoiceResponse, error) {
	// The invoice is only sent once the save fully succeeds.
	saved, err := s.Save(ctx, req)
	if err != nil {
		return domain.InvoiceResponse{}, err
	}
	return s.Send(ctx, domain.GetInvoiceRequest{ID: saved.ID.String()})
}

func (s *Service) create(ctx context.Context, orgID snowflake.ID, client *clientdomain.Client, req domain.SaveInvoiceRequest) (domain.InvoiceResponse, error) {
	cfg := s.invoicing.Get()

	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = client.Currency
	}
	if currency == "" {
		currency = cfg.DefaultCurrency
	}

	number, err := s.nextNumber(ctx, orgID, cfg.InvoiceNumPrefix)
	if err != nil {
		return domain.InvoiceResponse{}, err
	}

	now := time.Now().UTC()
	invoice := domain.Invoice{
		ID:                  s.genID.Generate(),
		OrgID:               orgID,
		ClientID:            client.ID,
		Number:              number,
		Status:              domain.InvoiceStatusDraft,
		Currency:            currency,
		InvoiceDate:         req.InvoiceDate.UTC(),
		PaymentDate:         req.PaymentDate.UTC(),
		Notes:               strings.TrimSpace(req.Notes),
		PurchaseOrderNumber: strings.TrimSpace(req.PurchaseOrderNumber),
		Metadata:            datatypes.JSONMap{},
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	items := s.buildItems(orgID, invoice.ID, req.Items, now)
	applySummary(&invoice, items)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.repo.Insert(ctx, tx, &invoice, items)
	})
	if err != nil {
		return domain.InvoiceResponse{}, err
	}

	if s.metrics != nil {
		s.metrics.RecordInvoiceCreated(ctx, orgID.String())
	}
	s.audit(ctx, orgID, "invoice.created", invoice.ID)

	return domain.InvoiceResponse{Invoice: invoice, Items: items}, nil
}

func (s *Service) update(ctx context.Context, orgID snowflake.ID, client *clientdomain.Client, req domain.SaveInvoiceRequest) (domain.InvoiceResponse, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(req.ID))
	if err != nil || id == 0 {
		return domain.InvoiceResponse{}, domain.ErrInvalidID
	}

	existing, err := s.repo.FindByID(ctx, s.db, orgID, id)
	if err != nil {
		return domain.InvoiceResponse{}, err
	}
	if existing == nil {
		return domain.InvoiceResponse{}, domain.ErrNotFound
	}
	if existing.Status != domain.InvoiceStatusDraft {
		return domain.InvoiceResponse{}, domain.ErrInvalidStatus
	}

	now := time.Now().UTC()
	existing.ClientID = client.ID
	if currency := strings.ToUpper(strings.TrimSpace(req.Currency)); currency != "" {
		existing.Currency = currency
	}
	existing.InvoiceDate = req.InvoiceDate.UTC()
	existing.PaymentDate = req.PaymentDate.UTC()
	existing.Notes = strings.TrimSpace(req.Notes)
	existing.PurchaseOrderNumber = strings.TrimSpace(req.PurchaseOrderNumber)
	existing.UpdatedAt = now

	items := s.buildItems(orgID, existing.ID, req.Items, now)
	applySummary(existing, items)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.repo.ReplaceItems(ctx, tx, existing, items)
	})
	if err != nil {
		return domain.InvoiceResponse{}, err
	}

	s.audit(ctx, orgID, "invoice.updated", existing.ID)
	return domain.InvoiceResponse{Invoice: *existing, Items: items}, nil
}

// buildItems materializes the submitted lines. Lines carrying an ID keep
// it so rows survive round trips; new lines get generated IDs.
func (s *Service) buildItems(orgID, invoiceID snowflake.ID, inputs []domain.LineItemInput, now time.Time) []domain.InvoiceItem {
	items := make([]domain.InvoiceItem, 0, len(inputs))
	for i, input := range inputs {
		id := s.genID.Generate()
		if trimmed := strings.TrimSpace(input.ID); trimmed != "" {
			if parsed, err := snowflake.ParseString(trimmed); err == nil && parsed != 0 {
				id = parsed
			}
		}
		line := totals.Line{
			Quantity:        input.Quantity,
			UnitPrice:       input.UnitPrice,
			TaxRate:         input.TaxRate,
			DiscountPercent: input.DiscountPercent,
		}
		items = append(items, domain.InvoiceItem{
			ID:              id,
			OrgID:           orgID,
			InvoiceID:       invoiceID,
			Position:        i,
			Description:     strings.TrimSpace(input.Description),
			Quantity:        input.Quantity,
			UnitPrice:       input.UnitPrice,
			TaxRate:         input.TaxRate,
			DiscountPercent: input.DiscountPercent,
			LineAmount:      totals.LineAmount(line),
			CreatedAt:       now,
		})
	}
	return items
}

func applySummary(invoice *domain.Invoice, items []domain.InvoiceItem) {
	lines := make([]totals.Line, 0, len(items))
	for _, item := range items {
		lines = append(lines, totals.Line{
			Quantity:        item.Quantity,
			UnitPrice:       item.UnitPrice,
			TaxRate:         item.TaxRate,
			DiscountPercent: item.DiscountPercent,
		})
	}
	summary := totals.Compute(lines)
	invoice.Subtotal = summary.Subtotal
	invoice.DiscountAmount = summary.DiscountAmount
	invoice.TaxAmount = summary.TaxAmount
	invoice.Total = summary.Total
}

func (s *Service) Send(ctx context.Context, req domain.GetInvoiceRequest) (domain.InvoiceResponse, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.InvoiceResponse{}, domain.ErrInvalidOrganization
	}

	resp, err := s.GetByID(ctx, req)
	if err != nil {
		return domain.InvoiceResponse{}, err
	}
	if resp.Status != domain.InvoiceStatusDraft && resp.Status != domain.InvoiceStatusSent {
		return domain.InvoiceResponse{}, domain.ErrInvalidStatus
	}

	client, err := s.clientRepo.FindByID(ctx, s.db, orgID, resp.ClientID)
	if err != nil {
		return domain.InvoiceResponse{}, err
	}
	if client == nil {
		return domain.InvoiceResponse{}, domain.ErrInvalidClient
	}

	now := time.Now().UTC()
	resp.Status = domain.InvoiceStatusSent
	resp.SentAt = &now
	resp.UpdatedAt = now
	if err := s.repo.UpdateStatus(ctx, s.db, &resp.Invoice); err != nil {
		return domain.InvoiceResponse{}, err
	}

	subject := fmt.Sprintf("Invoice %s", resp.Number)
	body := fmt.Sprintf(
		"<p>Hello %s,</p><p>Invoice <strong>%s</strong> for %s %s is due on %s.</p>",
		client.Name,
		resp.Number,
		resp.Total.StringFixed(2),
		resp.Currency,
		resp.PaymentDate.Format("2006-01-02"),
	)
	if err := s.email.Send(ctx, []string{client.Email}, subject, body); err != nil {
		s.log.Warn("failed to email invoice",
			zap.String("invoice_id", resp.ID.String()),
			zap.Error(err),
		)
	}

	if s.metrics != nil {
		s.metrics.RecordInvoiceSent(ctx, orgID.String())
	}
	s.audit(ctx, orgID, "invoice.sent", resp.ID)

	return resp, nil
}

func (s *Service) MarkPaid(ctx context.Context, req domain.GetInvoiceRequest) (domain.InvoiceResponse, error) {
	return s.transition(ctx, req, domain.InvoiceStatusPaid)
}

func (s *Service) Void(ctx context.Context, req domain.GetInvoiceRequest) (domain.InvoiceResponse, error) {
	return s.transition(ctx, req, domain.InvoiceStatusVoid)
}

func (s *Service) transition(ctx context.Context, req domain.GetInvoiceRequest, target domain.InvoiceStatus) (domain.InvoiceResponse, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.InvoiceResponse{}, domain.ErrInvalidOrganization
	}

	resp, err := s.GetByID(ctx, req)
	if err != nil {
		return domain.InvoiceResponse{}, err
	}

	now := time.Now().UTC()
	switch target {
	case domain.InvoiceStatusPaid:
		if resp.Status != domain.InvoiceStatusSent {
			return domain.InvoiceResponse{}, domain.ErrInvalidStatus
		}
		resp.Status = domain.InvoiceStatusPaid
		resp.PaidAt = &now
	case domain.InvoiceStatusVoid:
		if resp.Status == domain.InvoiceStatusPaid || resp.Status == domain.InvoiceStatusVoid {
			return domain.InvoiceResponse{}, domain.ErrInvalidStatus
		}
		resp.Status = domain.InvoiceStatusVoid
		resp.VoidedAt = &now
	default:
		return domain.InvoiceResponse{}, domain.ErrInvalidStatus
	}
	resp.UpdatedAt = now

	if err := s.repo.UpdateStatus(ctx, s.db, &resp.Invoice); err != nil {
		return domain.InvoiceResponse{}, err
	}

	s.audit(ctx, orgID, "invoice."+strings.ToLower(string(target)), resp.ID)
	return resp, nil
}

func (s *Service) GetByID(ctx context.Context, req domain.GetInvoiceRequest) (domain.InvoiceResponse, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.InvoiceResponse{}, domain.ErrInvalidOrganization
	}

	id, err := snowflake.ParseString(strings.TrimSpace(req.ID))
	if err != nil || id == 0 {
		return domain.InvoiceResponse{}, domain.ErrInvalidID
	}

	invoice, err := s.repo.FindByID(ctx, s.db, orgID, id)
	if err != nil {
		return domain.InvoiceResponse{}, err
	}
	if invoice == nil {
		return domain.InvoiceResponse{}, domain.ErrNotFound
	}

	items, err := s.repo.FindItems(ctx, s.db, orgID, invoice.ID)
	if err != nil {
		return domain.InvoiceResponse{}, err
	}

	return domain.InvoiceResponse{Invoice: *invoice, Items: items}, nil
}

func (s *Service) List(ctx context.Context, req domain.ListInvoiceRequest) (domain.ListInvoiceResponse, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.ListInvoiceResponse{}, domain.ErrInvalidOrganization
	}

	filter := domain.ListInvoiceFilter{
		ClientID:    strings.TrimSpace(req.ClientID),
		CreatedFrom: req.CreatedFrom,
		CreatedTo:   req.CreatedTo,
	}
	if status := strings.ToUpper(strings.TrimSpace(req.Status)); status != "" {
		switch domain.InvoiceStatus(status) {
		case domain.InvoiceStatusDraft, domain.InvoiceStatusSent, domain.InvoiceStatusPaid, domain.InvoiceStatusVoid:
			filter.Status = domain.InvoiceStatus(status)
		default:
			return domain.ListInvoiceResponse{}, domain.ErrInvalidStatus
		}
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	items, err := s.repo.List(ctx, s.db, orgID, filter, pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  int(pageSize),
	})
	if err != nil {
		return domain.ListInvoiceResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, pageSize, func(invoice *domain.Invoice) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        invoice.ID.String(),
			CreatedAt: invoice.CreatedAt.Format(time.RFC3339),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > int(pageSize) {
		items = items[:pageSize]
	}

	invoices := make([]domain.Invoice, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		invoices = append(invoices, *item)
	}

	resp := domain.ListInvoiceResponse{Invoices: invoices}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	return resp, nil
}

func (s *Service) RenderPDF(ctx context.Context, req domain.GetInvoiceRequest) ([]byte, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, domain.ErrInvalidOrganization
	}

	resp, err := s.GetByID(ctx, req)
	if err != nil {
		return nil, err
	}

	client, err := s.clientRepo.FindByID(ctx, s.db, orgID, resp.ClientID)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, domain.ErrInvalidClient
	}

	doc := pdf.InvoiceDocument{
		InvoiceNumber:       resp.Number,
		Status:              string(resp.Status),
		IssueDate:           resp.InvoiceDate.Format("2006-01-02"),
		DueDate:             resp.PaymentDate.Format("2006-01-02"),
		PaymentTerms:        fmt.Sprintf("Net %d", s.invoicing.Get().PaymentTermsDays),
		PurchaseOrderNumber: resp.PurchaseOrderNumber,
		Notes:               resp.Notes,
		BillToName:          client.Name,
		BillToEmail:         client.Email,
		BillToAddress:       strings.TrimSpace(client.AddressLine1 + " " + client.City),
		Subtotal:            resp.Subtotal.StringFixed(2),
		Discount:            resp.DiscountAmount.StringFixed(2),
		Tax:                 resp.TaxAmount.StringFixed(2),
		Total:               resp.Total.StringFixed(2),
		Currency:            resp.Currency,
	}
	for _, item := range resp.Items {
		doc.Items = append(doc.Items, pdf.DocumentItem{
			Description:     item.Description,
			Quantity:        item.Quantity.String(),
			UnitPrice:       item.UnitPrice.StringFixed(2),
			TaxRate:         item.TaxRate.String(),
			DiscountPercent: item.DiscountPercent.String(),
			Amount:          item.LineAmount.StringFixed(2),
		})
	}

	return s.pdf.RenderInvoice(ctx, doc)
}

func (s *Service) nextNumber(ctx context.Context, orgID snowflake.ID, prefix string) (string, error) {
	count, err := s.repo.CountByOrg(ctx, s.db, orgID)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%05d", prefix, count+1), nil
}

func (s *Service) recordValidationFailure(ctx context.Context) {
	if s.metrics == nil {
		return
	}
	s.metrics.RecordValidationFailure(ctx, "invoice.save")
}

func (s *Service) audit(ctx context.Context, orgID snowflake.ID, action string, invoiceID snowflake.ID) {
	if s.auditSvc == nil {
		return
	}
	targetID := invoiceID.String()
	_ = s.auditSvc.AuditLog(ctx, &orgID, "", nil, action, "invoice", &targetID, nil)
}
