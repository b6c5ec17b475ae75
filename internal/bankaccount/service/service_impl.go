package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/soupfinance/soupfinance/internal/bankaccount/domain"
	"github.com/soupfinance/soupfinance/internal/orgcontext"
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
		log:   p.Log.Named("bankaccount.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func view(account domain.BankAccount) domain.BankAccountView {
	return domain.BankAccountView{
		ID:            account.ID.String(),
		Name:          account.Name,
		BankName:      account.BankName,
		AccountNumber: account.MaskedNumber(),
		Currency:      account.Currency,
		IsDefault:     account.IsDefault,
		CreatedAt:     account.CreatedAt,
		UpdatedAt:     account.UpdatedAt,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateBankAccountRequest) (domain.BankAccountView, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.BankAccountView{}, domain.ErrInvalidOrganization
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.BankAccountView{}, domain.ErrInvalidName
	}

	number := strings.TrimSpace(req.AccountNumber)
	if len(number) < 4 {
		return domain.BankAccountView{}, domain.ErrInvalidAccountNumber
	}

	now := time.Now().UTC()
	account := domain.BankAccount{
		ID:            s.genID.Generate(),
		OrgID:         orgID,
		Name:          name,
		BankName:      strings.TrimSpace(req.BankName),
		AccountNumber: number,
		RoutingNumber: strings.TrimSpace(req.RoutingNumber),
		Currency:      strings.ToUpper(strings.TrimSpace(req.Currency)),
		IsDefault:     req.IsDefault,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if account.IsDefault {
			if err := s.repo.ClearDefault(ctx, tx, orgID); err != nil {
				return err
			}
		}
		return s.repo.Insert(ctx, tx, &account)
	})
	if err != nil {
		return domain.BankAccountView{}, err
	}

	return view(account), nil
}

func (s *Service) List(ctx context.Context, req domain.ListBankAccountRequest) (domain.ListBankAccountResponse, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.ListBankAccountResponse{}, domain.ErrInvalidOrganization
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	items, err := s.repo.List(ctx, s.db, orgID, pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  int(pageSize),
	})
	if err != nil {
		return domain.ListBankAccountResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, pageSize, func(account *domain.BankAccount) string {
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

	accounts := make([]domain.BankAccountView, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		accounts = append(accounts, view(*item))
	}

	resp := domain.ListBankAccountResponse{Accounts: accounts}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}

	return resp, nil
}

func (s *Service) GetByID(ctx context.Context, req domain.GetBankAccountRequest) (domain.BankAccountView, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.BankAccountView{}, domain.ErrInvalidOrganization
	}

	id, err := snowflake.ParseString(strings.TrimSpace(req.ID))
	if err != nil || id == 0 {
		return domain.BankAccountView{}, domain.ErrInvalidID
	}

	item, err := s.repo.FindByID(ctx, s.db, orgID, id)
	if err != nil {
		return domain.BankAccountView{}, err
	}
	if item == nil {
		return domain.BankAccountView{}, domain.ErrNotFound
	}

	return view(*item), nil
}
