package domain

import (
	"context"
	"errors"
	"time"

	"github.com/soupfinance/soupfinance/pkg/db/pagination"
)

// BankAccountView is the externally visible shape of an account. It
// carries the masked number instead of the stored one.
type BankAccountView struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	BankName      string    `json:"bank_name,omitempty"`
	AccountNumber string    `json:"account_number"`
	Currency      string    `json:"currency,omitempty"`
	IsDefault     bool      `json:"is_default"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type ListBankAccountRequest struct {
	PageToken string
	PageSize  int32
}

type ListBankAccountResponse struct {
	pagination.PageInfo
	Accounts []BankAccountView `json:"accounts"`
}

type CreateBankAccountRequest struct {
	Name          string `json:"name" form:"name"`
	BankName      string `json:"bank_name" form:"bankName"`
	AccountNumber string `json:"account_number" form:"accountNumber"`
	RoutingNumber string `json:"routing_number" form:"routingNumber"`
	Currency      string `json:"currency" form:"currency"`
	IsDefault     bool   `json:"is_default" form:"isDefault"`
}

type GetBankAccountRequest struct {
	ID string
}

type Service interface {
	Create(context.Context, CreateBankAccountRequest) (BankAccountView, error)
	List(context.Context, ListBankAccountRequest) (ListBankAccountResponse, error)
	GetByID(context.Context, GetBankAccountRequest) (BankAccountView, error)
}

var (
	ErrInvalidOrganization  = errors.New("invalid_organization")
	ErrInvalidName          = errors.New("invalid_name")
	ErrInvalidAccountNumber = errors.New("invalid_account_number")
	ErrInvalidID            = errors.New("invalid_id")
	ErrNotFound             = errors.New("not_found")
)
