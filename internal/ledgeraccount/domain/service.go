package domain

import (
	"context"
	"errors"

	"github.com/soupfinance/soupfinance/pkg/db/pagination"
)

type ListLedgerAccountRequest struct {
	PageToken       string
	PageSize        int32
	Type            string
	IncludeArchived bool
}

type ListLedgerAccountFilter struct {
	Type            AccountType
	IncludeArchived bool
}

type ListLedgerAccountResponse struct {
	pagination.PageInfo
	Accounts []LedgerAccount `json:"accounts"`
}

type CreateLedgerAccountRequest struct {
	Code        string `json:"code" form:"code"`
	Name        string `json:"name" form:"name"`
	Type        string `json:"type" form:"type"`
	Description string `json:"description" form:"description"`
}

type UpdateLedgerAccountRequest struct {
	ID          string `json:"-" form:"-"`
	Name        string `json:"name" form:"name"`
	Description string `json:"description" form:"description"`
	Archived    *bool  `json:"archived" form:"archived"`
}

type GetLedgerAccountRequest struct {
	ID string
}

type Service interface {
	Create(context.Context, CreateLedgerAccountRequest) (LedgerAccount, error)
	Update(context.Context, UpdateLedgerAccountRequest) (LedgerAccount, error)
	List(context.Context, ListLedgerAccountRequest) (ListLedgerAccountResponse, error)
	GetByID(context.Context, GetLedgerAccountRequest) (LedgerAccount, error)
}

var (
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrInvalidCode         = errors.New("invalid_code")
	ErrDuplicateCode       = errors.New("duplicate_code")
	ErrInvalidName         = errors.New("invalid_name")
	ErrInvalidType         = errors.New("invalid_type")
	ErrInvalidID           = errors.New("invalid_id")
	ErrNotFound            = errors.New("not_found")
)
