package domain

import (
	"context"
	"errors"
	"time"

	"github.com/soupfinance/soupfinance/pkg/db/pagination"
)

type ListClientRequest struct {
	PageToken   string
	PageSize    int32
	Name        string
	Email       string
	Currency    string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

type ListClientFilter struct {
	Name        string
	Email       string
	Currency    string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

type ListClientResponse struct {
	pagination.PageInfo
	Clients []Client `json:"clients"`
}

type CreateClientRequest struct {
	Name         string `json:"name" form:"name"`
	Email        string `json:"email" form:"email"`
	Phone        string `json:"phone" form:"phone"`
	Currency     string `json:"currency" form:"currency"`
	AddressLine1 string `json:"address_line1" form:"addressLine1"`
	AddressLine2 string `json:"address_line2" form:"addressLine2"`
	City         string `json:"city" form:"city"`
	Country      string `json:"country" form:"country"`
	TaxNumber    string `json:"tax_number" form:"taxNumber"`
}

type UpdateClientRequest struct {
	ID           string `json:"-" form:"-"`
	Name         string `json:"name" form:"name"`
	Email        string `json:"email" form:"email"`
	Phone        string `json:"phone" form:"phone"`
	Currency     string `json:"currency" form:"currency"`
	AddressLine1 string `json:"address_line1" form:"addressLine1"`
	AddressLine2 string `json:"address_line2" form:"addressLine2"`
	City         string `json:"city" form:"city"`
	Country      string `json:"country" form:"country"`
	TaxNumber    string `json:"tax_number" form:"taxNumber"`
}

type GetClientRequest struct {
	ID string
}

type Service interface {
	Create(context.Context, CreateClientRequest) (Client, error)
	Update(context.Context, UpdateClientRequest) (Client, error)
	List(context.Context, ListClientRequest) (ListClientResponse, error)
	GetByID(context.Context, GetClientRequest) (Client, error)
}

var (
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrInvalidName         = errors.New("invalid_name")
	ErrInvalidEmail        = errors.New("invalid_email")
	ErrInvalidID           = errors.New("invalid_id")
	ErrNotFound            = errors.New("not_found")
)
