package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/soupfinance/soupfinance/internal/organization/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
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
		log:   p.Log.Named("organization.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, userID snowflake.ID, req domain.CreateOrganizationRequest) (*domain.OrganizationResponse, error) {
	if userID == 0 {
		return nil, domain.ErrInvalidUser
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}

	orgSlug, err := s.uniqueSlug(ctx, name)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	org := &domain.Organization{
		ID:           s.genID.Generate(),
		Name:         name,
		Slug:         orgSlug,
		CountryCode:  strings.ToUpper(strings.TrimSpace(req.CountryCode)),
		TimezoneName: strings.TrimSpace(req.TimezoneName),
		Currency:     strings.ToUpper(strings.TrimSpace(req.Currency)),
		Metadata:     datatypes.JSONMap{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Insert(ctx, tx, org); err != nil {
			return err
		}
		member := &domain.OrganizationMember{
			ID:        s.genID.Generate(),
			OrgID:     org.ID,
			UserID:    userID,
			Role:      domain.RoleOwner,
			CreatedAt: now,
		}
		return s.repo.InsertMember(ctx, tx, member)
	})
	if err != nil {
		return nil, err
	}

	return response(org), nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*domain.OrganizationResponse, error) {
	orgID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || orgID == 0 {
		return nil, domain.ErrInvalidOrganization
	}

	org, err := s.repo.FindByID(ctx, s.db, orgID)
	if err != nil {
		return nil, err
	}
	if org == nil {
		return nil, domain.ErrNotFound
	}

	return response(org), nil
}

func (s *Service) ListOrganizationsByUser(ctx context.Context, userID snowflake.ID) ([]domain.OrganizationListResponseItem, error) {
	if userID == 0 {
		return nil, domain.ErrInvalidUser
	}
	return s.repo.ListByUser(ctx, s.db, userID)
}

func (s *Service) MemberRole(ctx context.Context, orgID, userID snowflake.ID) (string, error) {
	if orgID == 0 {
		return "", domain.ErrInvalidOrganization
	}
	if userID == 0 {
		return "", domain.ErrInvalidUser
	}

	member, err := s.repo.FindMember(ctx, s.db, orgID, userID)
	if err != nil {
		return "", err
	}
	if member == nil {
		return "", domain.ErrNotMember
	}
	return member.Role, nil
}

func (s *Service) AddMember(ctx context.Context, actorID snowflake.ID, orgID string, req domain.AddMemberRequest) error {
	id, err := snowflake.ParseString(strings.TrimSpace(orgID))
	if err != nil || id == 0 {
		return domain.ErrInvalidOrganization
	}

	role := strings.ToUpper(strings.TrimSpace(req.Role))
	if !domain.ValidRole(role) {
		return domain.ErrInvalidRole
	}

	actorRole, err := s.MemberRole(ctx, id, actorID)
	if err != nil {
		return err
	}
	if actorRole != domain.RoleOwner && actorRole != domain.RoleAdmin {
		return domain.ErrForbidden
	}

	userID, err := snowflake.ParseString(strings.TrimSpace(req.UserID))
	if err != nil || userID == 0 {
		return domain.ErrInvalidUser
	}

	member := &domain.OrganizationMember{
		ID:        s.genID.Generate(),
		OrgID:     id,
		UserID:    userID,
		Role:      role,
		CreatedAt: time.Now().UTC(),
	}
	return s.repo.InsertMember(ctx, s.db, member)
}

func (s *Service) ListMembers(ctx context.Context, orgID snowflake.ID) ([]domain.MemberResponse, error) {
	if orgID == 0 {
		return nil, domain.ErrInvalidOrganization
	}
	return s.repo.ListMembers(ctx, s.db, orgID)
}

func (s *Service) uniqueSlug(ctx context.Context, name string) (string, error) {
	base := slug.Make(name)
	candidate := base
	for i := 0; i < 5; i++ {
		existing, err := s.repo.FindBySlug(ctx, s.db, candidate)
		if err != nil {
			return "", err
		}
		if existing == nil {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, s.genID.Generate()%10000)
	}
	return "", fmt.Errorf("could not allocate slug for %q", name)
}

func response(org *domain.Organization) *domain.OrganizationResponse {
	return &domain.OrganizationResponse{
		ID:           org.ID.String(),
		Name:         org.Name,
		Slug:         org.Slug,
		CountryCode:  org.CountryCode,
		TimezoneName: org.TimezoneName,
		Currency:     org.Currency,
	}
}
