package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

const (
	RoleOwner  = "OWNER"
	RoleAdmin  = "ADMIN"
	RoleMember = "MEMBER" // Read-only / Limited
)

func ValidRole(role string) bool {
	switch role {
	case RoleOwner, RoleAdmin, RoleMember:
		return true
	}
	return false
}

type Service interface {
	Create(ctx context.Context, userID snowflake.ID, req CreateOrganizationRequest) (*OrganizationResponse, error)
	GetByID(ctx context.Context, id string) (*OrganizationResponse, error)
	ListOrganizationsByUser(ctx context.Context, userID snowflake.ID) ([]OrganizationListResponseItem, error)
	MemberRole(ctx context.Context, orgID, userID snowflake.ID) (string, error)
	AddMember(ctx context.Context, actorID snowflake.ID, orgID string, req AddMemberRequest) error
	ListMembers(ctx context.Context, orgID snowflake.ID) ([]MemberResponse, error)
}

type CreateOrganizationRequest struct {
	Name         string `json:"name" form:"name"`
	CountryCode  string `json:"country_code" form:"countryCode"`
	TimezoneName string `json:"timezone_name" form:"timezoneName"`
	Currency     string `json:"currency" form:"currency"`
}

type AddMemberRequest struct {
	UserID string `json:"user_id" form:"userId"`
	Role   string `json:"role" form:"role"`
}

type OrganizationResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Slug         string `json:"slug"`
	CountryCode  string `json:"country_code"`
	TimezoneName string `json:"timezone_name"`
	Currency     string `json:"currency"`
}

type OrganizationListResponseItem struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

type MemberResponse struct {
	UserID      string    `json:"user_id"`
	DisplayName string    `json:"display_name"`
	Email       string    `json:"email"`
	Role        string    `json:"role"`
	JoinedAt    time.Time `json:"joined_at"`
}

var (
	ErrInvalidName         = errors.New("invalid_name")
	ErrInvalidUser         = errors.New("invalid_user")
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrInvalidRole         = errors.New("invalid_role")
	ErrNotMember           = errors.New("not_member")
	ErrForbidden           = errors.New("forbidden")
	ErrNotFound            = errors.New("not_found")
)
