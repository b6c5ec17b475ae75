package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/soupfinance/soupfinance/internal/ledgeraccount/domain"
	"github.com/soupfinance/soupfinance/internal/orgcontext"
	"github.com/soupfinance/soupfinance/pkg/db"
	"github.com/soupfinance/soupfinance/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("ledgeraccount.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateLedgerAccountRequest) (domain.LedgerAccount, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.LedgerAccount{}, domain.ErrInvalidOrganization
	}

	code := strings.ToUpper(strings.TrimSpace(req.Code))
	if code == "" {
		return domain.LedgerAccount{}, domain.ErrInvalidCode
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.LedgerAccount{}, domain.ErrInvalidName
	}

	accountType := domain.AccountType(strings.ToLower(strings.TrimSpace(req.Type)))
	if !accountType.Valid() {
		return domain.LedgerAccount{}, domain.ErrInvalidType
	}

	existing, err := s.repo.FindByCode(ctx, s.db, orgID, code)
	if err != nil {
		return domain.LedgerAccount{}, err
	}
	if existing != nil {
		return domain.LedgerAccount{}, domain.ErrDuplicateCode
	}

	now := time.Now().UTC()
	account := domain.LedgerAccount{
		ID:          s.genID.Generate(),
		OrgID:       orgID,
		Code:        code,
		Name:        name,
		Type:        accountType,
		Description: strings.TrimSpace(req.Description),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Insert(ctx, s.db, &account); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.LedgerAccount{}, domain.ErrDuplicateCode
		}
		return domain.LedgerAccount{}, err
	}

	return account, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateLedgerAccountRequest) (domain.LedgerAccount, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.LedgerAccount{}, domain.ErrInvalidOrganization
	}

	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.LedgerAccount{}, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.LedgerAccount{}, domain.ErrInvalidName
	}

	existing, err := s.repo.FindByID(ctx, s.db, orgID, id)
	if err != nil {
		return domain.LedgerAccount{}, err
	}
	if existing == nil {
		return domain.LedgerAccount{}, domain.ErrNotFound
	}

	existing.Name = name
	existing.Description = strings.TrimSpace(req.Description)
	if req.Archived != nil {
		existing.Archived = *req.Archived
	}
	existing.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, s.db, existing); err != nil {
		return domain.LedgerAccount{}, err
	}

	return *existing, nil
}

func (s *Service) List(ctx context.Context, req domain.ListLedgerAccountRequest) (domain.ListLedgerAccountResponse, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.ListLedgerAccountResponse{}, domain.ErrInvalidOrganization
	}

	filter := domain.ListLedgerAccountFilter{
		IncludeArchived: req.IncludeArchived,
	}
	if typed := strings.ToLower(strings.TrimSpace(req.Type)); typed != "" {
		accountType := domain.AccountType(typed)
		if !accountType.Valid() {
			return domain.ListLedgerAccountResponse{}, domain.ErrInvalidType
		}
		filter.Type = accountType
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 100
	}

	items, err := s.repo.List(ctx, s.db, orgID, filter, pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  int(pageSize),
	})
	if err != nil {
		return domain.ListLedgerAccountResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, pageSize, func(account *domain.LedgerAccount) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        account.ID.String(),
			CreatedAt: account.CreatedAt.Format(time.RFC3339),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > int(pageSize) {
		items = items[:pageSize]
	}

	accounts := make([]domain.LedgerAccount, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		accounts = append(accounts, *item)
	}

	resp := domain.ListLedgerAccountResponse{Accounts: accounts}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}

	return resp, nil
}

func (s *Service) GetByID(ctx context.Context, req domain.GetLedgerAccountRequest) (domain.LedgerAccount, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.LedgerAccount{}, domain.ErrInvalidOrganization
	}

	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.LedgerAccount{}, err
	}

	item, err := s.repo.FindByID(ctx, s.db, orgID, id)
	if err != nil {
		return domain.LedgerAccount{}, err
	}
	if item == nil {
		return domain.LedgerAccount{}, domain.ErrNotFound
	}

	return *item, nil
}

func (s *Service) parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
