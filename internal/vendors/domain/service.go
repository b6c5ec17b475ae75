package domain

import (
	"context"
	"errors"
	"time"

	"github.com/soupfinance/soupfinance/pkg/db/pagination"
)

type ListVendorRequest struct {
	PageToken   string
	PageSize    int32
	Name        string
	Currency    string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

type ListVendorFilter struct {
	Name        string
	Currency    string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

type ListVendorResponse struct {
	pagination.PageInfo
	Vendors []Vendor `json:"vendors"`
}

type CreateVendorRequest struct {
	Name         string `json:"name" form:"name"`
	Email        string `json:"email" form:"email"`
	Phone        string `json:"phone" form:"phone"`
	Currency     string `json:"currency" form:"currency"`
	AddressLine1 string `json:"address_line1" form:"addressLine1"`
	City         string `json:"city" form:"city"`
	Country      string `json:"country" form:"country"`
	TaxNumber    string `json:"tax_number" form:"taxNumber"`
}

type UpdateVendorRequest struct {
	ID           string `json:"-" form:"-"`
	Name         string `json:"name" form:"name"`
	Email        string `json:"email" form:"email"`
	Phone        string `json:"phone" form:"phone"`
	Currency     string `json:"currency" form:"currency"`
	AddressLine1 string `json:"address_line1" form:"addressLine1"`
	City         string `json:"city" form:"city"`
	Country      string `json:"country" form:"country"`
	TaxNumber    string `json:"tax_number" form:"taxNumber"`
}

type GetVendorRequest struct {
	ID string
}

type Service interface {
	Create(context.Context, CreateVendorRequest) (Vendor, error)
	Update(context.Context, UpdateVendorRequest) (Vendor, error)
	List(context.Context, ListVendorRequest) (ListVendorResponse, error)
	GetByID(context.Context, GetVendorRequest) (Vendor, error)
}

var (
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrInvalidName         = errors.New("invalid_name")
	ErrInvalidEmail        = errors.New("invalid_email")
	ErrInvalidID           = errors.New("invalid_id")
	ErrNotFound            = errors.New("not_found")
)
