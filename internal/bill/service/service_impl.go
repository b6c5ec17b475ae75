package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	auditdomain "github.com/soupfinance/soupfinance/internal/audit/domain"
	"github.com/soupfinance/soupfinance/internal/bill/domain"
	"github.com/soupfinance/soupfinance/internal/config"
	"github.com/soupfinance/soupfinance/internal/observability/metrics"
	"github.com/soupfinance/soupfinance/internal/orgcontext"
	"github.com/soupfinance/soupfinance/internal/totals"
	vendordomain "github.com/soupfinance/soupfinance/internal/vendors/domain"
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
	VendorRepo vendordomain.Repository
	Invoicing  *config.InvoicingConfigHolder
	Metrics    *metrics.Metrics    `optional:"true"`
	AuditSvc   auditdomain.Service `optional:"true"`
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	repo       domain.Repository
	vendorRepo vendordomain.Repository
	invoicing  *config.InvoicingConfigHolder
	metrics    *metrics.Metrics
	auditSvc   auditdomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("bill.service"),
		genID:      p.GenID,
		repo:       p.Repo,
		vendorRepo: p.VendorRepo,
		invoicing:  p.Invoicing,
		metrics:    p.Metrics,
		auditSvc:   p.AuditSvc,
	}
}

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

func (s *Service) validate(ctx context.Context, orgID snowflake.ID, req domain.SaveBillRequest) (*vendordomain.Vendor, error) {
	vendorID, err := snowflake.ParseString(strings.TrimSpace(req.VendorID))
	if err != nil || vendorID == 0 {
		return nil, domain.ErrInvalidVendor
	}
	vendor, err := s.vendorRepo.FindByID(ctx, s.db, orgID, vendorID)
	if err != nil {
		return nil, err
	}
	if vendor == nil {
		return nil, domain.ErrInvalidVendor
	}

	if req.BillDate == nil {
		return nil, domain.ErrMissingBillDate
	}
	if req.DueDate == nil {
		return nil, domain.ErrMissingDueDate
	}

	cfg := s.invoicing.Get()
	maxTaxRate := decimal.NewFromFloat(cfg.MaxTaxRatePercent)
	maxDiscount := decimal.NewFromFloat(cfg.MaxDiscountPercent)
	if err := validateItems(req.Items, maxTaxRate, maxDiscount); err != nil {
		return nil, err
	}
	return vendor, nil
}

func (s *Service) Save(ctx context.Context, req domain.SaveBillRequest) (domain.BillResponse, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.BillResponse{}, domain.ErrInvalidOrganization
	}

	vendor, err := s.validate(ctx, orgID, req)
	if err != nil {
		if s.metrics != nil {
			s.metrics.RecordValidationFailure(ctx, "bill.save")
		}
		return domain.BillResponse{}, err
	}

	if strings.TrimSpace(req.ID) == "" {
		return s.create(ctx, orgID, vendor, req)
	}
	return s.update(ctx, orgID, vendor, req)
}

func (s *Service) create(ctx context.Context, orgID snowflake.ID, vendor *vendordomain.Vendor, req domain.SaveBillRequest) (domain.BillResponse, error) {
	cfg := s.invoicing.Get()

	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = vendor.Currency
	}
	if currency == "" {
		currency = cfg.DefaultCurrency
	}

	number, err := s.nextNumber(ctx, orgID, cfg.BillNumPrefix)
	if err != nil {
		return domain.BillResponse{}, err
	}

	now := time.Now().UTC()
	bill := domain.Bill{
		ID:        s.genID.Generate(),
		OrgID:     orgID,
		VendorID:  vendor.ID,
		Number:    number,
		Reference: strings.TrimSpace(req.Reference),
		Status:    domain.BillStatusDraft,
		Currency:  currency,
		BillDate:  req.BillDate.UTC(),
		DueDate:   req.DueDate.UTC(),
		Notes:     strings.TrimSpace(req.Notes),
		Metadata:  datatypes.JSONMap{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	items := s.buildItems(orgID, bill.ID, req.Items, now)
	applySummary(&bill, items)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.repo.Insert(ctx, tx, &bill, items)
	})
	if err != nil {
		return domain.BillResponse{}, err
	}

	if s.metrics != nil {
		s.metrics.RecordBillCreated(ctx, orgID.String())
	}
	s.audit(ctx, orgID, "bill.created", bill.ID)

	return domain.BillResponse{Bill: bill, Items: items}, nil
}

func (s *Service) update(ctx context.Context, orgID snowflake.ID, vendor *vendordomain.Vendor, req domain.SaveBillRequest) (domain.BillResponse, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(req.ID))
	if err != nil || id == 0 {
		return domain.BillResponse{}, domain.ErrInvalidID
	}

	existing, err := s.repo.FindByID(ctx, s.db, orgID, id)
	if err != nil {
		return domain.BillResponse{}, err
	}
	if existing == nil {
		return domain.BillResponse{}, domain.ErrNotFound
	}
	if existing.Status != domain.BillStatusDraft {
		return domain.BillResponse{}, domain.ErrInvalidStatus
	}

	now := time.Now().UTC()
	existing.VendorID = vendor.ID
	if currency := strings.ToUpper(strings.TrimSpace(req.Currency)); currency != "" {
		existing.Currency = currency
	}
	existing.Reference = strings.TrimSpace(req.Reference)
	existing.BillDate = req.BillDate.UTC()
	existing.DueDate = req.DueDate.UTC()
	existing.Notes = strings.TrimSpace(req.Notes)
	existing.UpdatedAt = now

	items := s.buildItems(orgID, existing.ID, req.Items, now)
	applySummary(existing, items)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.repo.ReplaceItems(ctx, tx, existing, items)
	})
	if err != nil {
		return domain.BillResponse{}, err
	}

	s.audit(ctx, orgID, "bill.updated", existing.ID)
	return domain.BillResponse{Bill: *existing, Items: items}, nil
}

func (s *Service) buildItems(orgID, billID snowflake.ID, inputs []domain.LineItemInput, now time.Time) []domain.BillItem {
	items := make([]domain.BillItem, 0, len(inputs))
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
		items = append(items, domain.BillItem{
			ID:              id,
			OrgID:           orgID,
			BillID:          billID,
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

func applySummary(bill *domain.Bill, items []domain.BillItem) {
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
	bill.Subtotal = summary.Subtotal
	bill.DiscountAmount = summary.DiscountAmount
	bill.TaxAmount = summary.TaxAmount
	bill.Total = summary.Total
}

func (s *Service) MarkReceived(ctx context.Context, req domain.GetBillRequest) (domain.BillResponse, error) {
	return s.transition(ctx, req, domain.BillStatusReceived)
}

func (s *Service) MarkPaid(ctx context.Context, req domain.GetBillRequest) (domain.BillResponse, error) {
	return s.transition(ctx, req, domain.BillStatusPaid)
}

func (s *Service) Void(ctx context.Context, req domain.GetBillRequest) (domain.BillResponse, error) {
	return s.transition(ctx, req, domain.BillStatusVoid)
}

func (s *Service) transition(ctx context.Context, req domain.GetBillRequest, target domain.BillStatus) (domain.BillResponse, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.BillResponse{}, domain.ErrInvalidOrganization
	}

	resp, err := s.GetByID(ctx, req)
	if err != nil {
		return domain.BillResponse{}, err
	}

	now := time.Now().UTC()
	switch target {
	case domain.BillStatusReceived:
		if resp.Status != domain.BillStatusDraft {
			return domain.BillResponse{}, domain.ErrInvalidStatus
		}
		resp.Status = domain.BillStatusReceived
	case domain.BillStatusPaid:
		if resp.Status != domain.BillStatusReceived {
			return domain.BillResponse{}, domain.ErrInvalidStatus
		}
		resp.Status = domain.BillStatusPaid
		resp.PaidAt = &now
	case domain.BillStatusVoid:
		if resp.Status == domain.BillStatusPaid || resp.Status == domain.BillStatusVoid {
			return domain.BillResponse{}, domain.ErrInvalidStatus
		}
		resp.Status = domain.BillStatusVoid
		resp.VoidedAt = &now
	default:
		return domain.BillResponse{}, domain.ErrInvalidStatus
	}
	resp.UpdatedAt = now

	if err := s.repo.UpdateStatus(ctx, s.db, &resp.Bill); err != nil {
		return domain.BillResponse{}, err
	}

	s.audit(ctx, orgID, "bill."+strings.ToLower(string(target)), resp.ID)
	return resp, nil
}

func (s *Service) GetByID(ctx context.Context, req domain.GetBillRequest) (domain.BillResponse, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.BillResponse{}, domain.ErrInvalidOrganization
	}

	id, err := snowflake.ParseString(strings.TrimSpace(req.ID))
	if err != nil || id == 0 {
		return domain.BillResponse{}, domain.ErrInvalidID
	}

	bill, err := s.repo.FindByID(ctx, s.db, orgID, id)
	if err != nil {
		return domain.BillResponse{}, err
	}
	if bill == nil {
		return domain.BillResponse{}, domain.ErrNotFound
	}

	items, err := s.repo.FindItems(ctx, s.db, orgID, bill.ID)
	if err != nil {
		return domain.BillResponse{}, err
	}

	return domain.BillResponse{Bill: *bill, Items: items}, nil
}

func (s *Service) List(ctx context.Context, req domain.ListBillRequest) (domain.ListBillResponse, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.ListBillResponse{}, domain.ErrInvalidOrganization
	}

	filter := domain.ListBillFilter{
		VendorID:    strings.TrimSpace(req.VendorID),
		CreatedFrom: req.CreatedFrom,
		CreatedTo:   req.CreatedTo,
	}
	if status := strings.ToUpper(strings.TrimSpace(req.Status)); status != "" {
		switch domain.BillStatus(status) {
		case domain.BillStatusDraft, domain.BillStatusReceived, domain.BillStatusPaid, domain.BillStatusVoid:
			filter.Status = domain.BillStatus(status)
		default:
			return domain.ListBillResponse{}, domain.ErrInvalidStatus
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
		return domain.ListBillResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, pageSize, func(bill *domain.Bill) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        bill.ID.String(),
			CreatedAt: bill.CreatedAt.Format(time.RFC3339),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > int(pageSize) {
		items = items[:pageSize]
	}

	bills := make([]domain.Bill, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		bills = append(bills, *item)
	}

	resp := domain.ListBillResponse{Bills: bills}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	return resp, nil
}

func (s *Service) nextNumber(ctx context.Context, orgID snowflake.ID, prefix string) (string, error) {
	count, err := s.repo.CountByOrg(ctx, s.db, orgID)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%05d", prefix, count+1), nil
}

func (s *Service) audit(ctx context.Context, orgID snowflake.ID, action string, billID snowflake.ID) {
	if s.auditSvc == nil {
		return
	}
	targetID := billID.String()
	_ = s.auditSvc.AuditLog(ctx, &orgID, "", nil, action, "bill", &targetID, nil)
}
