package authorization

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	auditdomain "github.com/soupfinance/soupfinance/internal/audit/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:embed model.conf
var modelText string

const (
	ObjectInvoice       = "invoice"
	ObjectBill          = "bill"
	ObjectClient        = "client"
	ObjectVendor        = "vendor"
	ObjectLedgerAccount = "ledger_account"
	ObjectBankAccount   = "bank_account"
	ObjectOrganization  = "organization"
	ObjectAuditLog      = "audit_log"
)

const (
	ActionInvoiceView   = "invoice.view"
	ActionInvoiceCreate = "invoice.create"
	ActionInvoiceUpdate = "invoice.update"
	ActionInvoiceSend   = "invoice.send"
	ActionInvoicePay    = "invoice.pay"
	ActionInvoiceVoid   = "invoice.void"

	ActionBillView   = "bill.view"
	ActionBillCreate = "bill.create"
	ActionBillUpdate = "bill.update"
	ActionBillPay    = "bill.pay"
	ActionBillVoid   = "bill.void"

	ActionClientView   = "client.view"
	ActionClientCreate = "client.create"
	ActionClientUpdate = "client.update"

	ActionVendorView   = "vendor.view"
	ActionVendorCreate = "vendor.create"
	ActionVendorUpdate = "vendor.update"

	ActionLedgerAccountView   = "ledger_account.view"
	ActionLedgerAccountManage = "ledger_account.manage"

	ActionBankAccountView   = "bank_account.view"
	ActionBankAccountManage = "bank_account.manage"

	ActionMemberView   = "member.view"
	ActionMemberManage = "member.manage"

	ActionAuditLogView = "audit_log.view"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	Enforcer *casbin.SyncedEnforcer
	AuditSvc auditdomain.Service `optional:"true"`
}

type ServiceImpl struct {
	db       *gorm.DB
	log      *zap.Logger
	enforcer *casbin.SyncedEnforcer
	auditSvc auditdomain.Service
}

func NewEnforcer(db *gorm.DB) (*casbin.SyncedEnforcer, error) {
	adapter, err := gormadapter.NewAdapterByDB(db)
	if err != nil {
		return nil, err
	}
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, err
	}
	enforcer, err := casbin.NewSyncedEnforcer(m, adapter)
	if err != nil {
		return nil, err
	}
	enforcer.EnableAutoSave(true)
	enforcer.EnableAutoBuildRoleLinks(true)
	if err := enforcer.LoadPolicy(); err != nil {
		return nil, err
	}
	if err := seedPolicies(enforcer); err != nil {
		return nil, err
	}
	enforcer.BuildRoleLinks()
	return enforcer, nil
}

func NewService(p Params) Service {
	return &ServiceImpl{
		db:       p.DB,
		log:      p.Log.Named("authorization.service"),
		enforcer: p.Enforcer,
		auditSvc: p.AuditSvc,
	}
}

func (s *ServiceImpl) Authorize(ctx context.Context, actor string, orgID string, object string, action string) error {
	actor = strings.TrimSpace(actor)
	if actor == "" {
		return ErrInvalidActor
	}
	orgID = strings.TrimSpace(orgID)
	if orgID == "" {
		return ErrInvalidOrganization
	}
	object = strings.TrimSpace(object)
	if object == "" {
		return ErrInvalidObject
	}
	action = strings.TrimSpace(action)
	if action == "" {
		return ErrInvalidAction
	}

	subject, roleName, actorType, actorID, err := s.resolveActor(ctx, actor, orgID)
	if err != nil {
		s.auditDenied(ctx, actorType, actorID, orgID, object, action)
		return err
	}

	domain := fmt.Sprintf("org:%s", orgID)
	if err := s.ensureGrouping(subject, roleName, domain); err != nil {
		return err
	}

	allowed, err := s.enforcer.Enforce(subject, domain, object, action)
	if err != nil {
		return err
	}
	if !allowed {
		s.auditDenied(ctx, actorType, actorID, orgID, object, action)
		return ErrForbidden
	}

	if shouldAuditGrant(action) {
		s.auditGranted(ctx, actorType, actorID, orgID, object, action)
	}
	return nil
}

func (s *ServiceImpl) resolveActor(ctx context.Context, actor string, orgID string) (string, string, string, *string, error) {
	if actor == "system" {
		return actor, "role:system", "system", nil, nil
	}
	if strings.HasPrefix(actor, "user:") {
		userIDRaw := strings.TrimPrefix(actor, "user:")
		userID, err := snowflake.ParseString(userIDRaw)
		if err != nil || userID == 0 {
			return "", "", "", nil, ErrInvalidActor
		}
		parsedOrgID, err := snowflake.ParseString(orgID)
		userIDStr := userID.String()
		if err != nil || parsedOrgID == 0 {
			return actor, "", "user", &userIDStr, ErrInvalidOrganization
		}
		role, err := s.roleForUser(ctx, parsedOrgID, userID)
		if err != nil {
			return actor, "", "user", &userIDStr, err
		}
		roleName := fmt.Sprintf("role:%s", strings.ToLower(role))
		return actor, roleName, "user", &userIDStr, nil
	}
	return "", "", "", nil, ErrInvalidActor
}

func (s *ServiceImpl) roleForUser(ctx context.Context, orgID snowflake.ID, userID snowflake.ID) (string, error) {
	var row struct {
		Role string `gorm:"column:role"`
	}
	if err := s.db.WithContext(ctx).Raw(
		`SELECT role
		 FROM organization_members
		 WHERE org_id = ? AND user_id = ?
		 LIMIT 1`,
		orgID,
		userID,
	).Scan(&row).Error; err != nil {
		return "", err
	}

	role := strings.TrimSpace(row.Role)
	if role == "" {
		return "", ErrForbidden
	}
	return role, nil
}

func (s *ServiceImpl) ensureGrouping(subject string, roleName string, domain string) error {
	existing, err := s.enforcer.GetFilteredGroupingPolicy(0, subject, "", domain)
	if err != nil {
		return err
	}
	for _, rule := range existing {
		if len(rule) < 2 {
			continue
		}
		if rule[1] != roleName {
			params := make([]interface{}, 0, len(rule))
			for _, value := range rule {
				params = append(params, value)
			}
			_, _ = s.enforcer.RemoveGroupingPolicy(params...)
		}
	}

	has, err := s.enforcer.HasGroupingPolicy(subject, roleName, domain)
	if err != nil {
		return err
	}
	if has {
		return nil
	}
	_, err = s.enforcer.AddGroupingPolicy(subject, roleName, domain)
	return err
}

func (s *ServiceImpl) auditDenied(ctx context.Context, actorType string, actorID *string, orgID string, object string, action string) {
	s.auditDecision(ctx, "authorization.denied", actorType, actorID, orgID, object, action)
}

func (s *ServiceImpl) auditGranted(ctx context.Context, actorType string, actorID *string, orgID string, object string, action string) {
	s.auditDecision(ctx, "authorization.granted", actorType, actorID, orgID, object, action)
}

func (s *ServiceImpl) auditDecision(ctx context.Context, decision string, actorType string, actorID *string, orgID string, object string, action string) {
	if s.auditSvc == nil {
		return
	}
	parsedOrgID, err := snowflake.ParseString(orgID)
	if err != nil || parsedOrgID == 0 {
		return
	}
	targetID := "capability"
	_ = s.auditSvc.AuditLog(ctx, &parsedOrgID, actorType, actorID, decision, "authorization", &targetID, map[string]any{
		"object": object,
		"action": action,
		"actor":  actorType,
		"org_id": orgID,
	})
}

func shouldAuditGrant(action string) bool {
	switch action {
	case ActionInvoiceVoid, ActionBillVoid, ActionBankAccountManage, ActionMemberManage:
		return true
	default:
		return false
	}
}

func seedPolicies(enforcer *casbin.SyncedEnforcer) error {
	policies := [][]string{
		// Member permissions (read-only)
		{"role:member", ObjectInvoice, ActionInvoiceView},
		{"role:member", ObjectBill, ActionBillView},
		{"role:member", ObjectClient, ActionClientView},
		{"role:member", ObjectVendor, ActionVendorView},
		{"role:member", ObjectLedgerAccount, ActionLedgerAccountView},
		{"role:member", ObjectOrganization, ActionMemberView},

		// Admin permissions
		{"role:admin", ObjectInvoice, ActionInvoiceView},
		{"role:admin", ObjectInvoice, ActionInvoiceCreate},
		{"role:admin", ObjectInvoice, ActionInvoiceUpdate},
		{"role:admin", ObjectInvoice, ActionInvoiceSend},
		{"role:admin", ObjectInvoice, ActionInvoicePay},
		{"role:admin", ObjectBill, ActionBillView},
		{"role:admin", ObjectBill, ActionBillCreate},
		{"role:admin", ObjectBill, ActionBillUpdate},
		{"role:admin", ObjectBill, ActionBillPay},
		{"role:admin", ObjectClient, ActionClientView},
		{"role:admin", ObjectClient, ActionClientCreate},
		{"role:admin", ObjectClient, ActionClientUpdate},
		{"role:admin", ObjectVendor, ActionVendorView},
		{"role:admin", ObjectVendor, ActionVendorCreate},
		{"role:admin", ObjectVendor, ActionVendorUpdate},
		{"role:admin", ObjectLedgerAccount, ActionLedgerAccountView},
		{"role:admin", ObjectLedgerAccount, ActionLedgerAccountManage},
		{"role:admin", ObjectBankAccount, ActionBankAccountView},
		{"role:admin", ObjectOrganization, ActionMemberView},
		{"role:admin", ObjectOrganization, ActionMemberManage},
		{"role:admin", ObjectAuditLog, ActionAuditLogView},

		// Owner permissions
		{"role:owner", ObjectInvoice, ActionInvoiceView},
		{"role:owner", ObjectInvoice, ActionInvoiceCreate},
		{"role:owner", ObjectInvoice, ActionInvoiceUpdate},
		{"role:owner", ObjectInvoice, ActionInvoiceSend},
		{"role:owner", ObjectInvoice, ActionInvoicePay},
		{"role:owner", ObjectInvoice, ActionInvoiceVoid},
		{"role:owner", ObjectBill, ActionBillView},
		{"role:owner", ObjectBill, ActionBillCreate},
		{"role:owner", ObjectBill, ActionBillUpdate},
		{"role:owner", ObjectBill, ActionBillPay},
		{"role:owner", ObjectBill, ActionBillVoid},
		{"role:owner", ObjectClient, ActionClientView},
		{"role:owner", ObjectClient, ActionClientCreate},
		{"role:owner", ObjectClient, ActionClientUpdate},
		{"role:owner", ObjectVendor, ActionVendorView},
		{"role:owner", ObjectVendor, ActionVendorCreate},
		{"role:owner", ObjectVendor, ActionVendorUpdate},
		{"role:owner", ObjectLedgerAccount, ActionLedgerAccountView},
		{"role:owner", ObjectLedgerAccount, ActionLedgerAccountManage},
		{"role:owner", ObjectBankAccount, ActionBankAccountView},
		{"role:owner", ObjectBankAccount, ActionBankAccountManage},
		{"role:owner", ObjectOrganization, ActionMemberView},
		{"role:owner", ObjectOrganization, ActionMemberManage},
		{"role:owner", ObjectAuditLog, ActionAuditLogView},

		// System permissions (for automated processes)
		{"role:system", ObjectInvoice, ActionInvoiceView},
		{"role:system", ObjectInvoice, ActionInvoiceCreate},
		{"role:system", ObjectInvoice, ActionInvoiceUpdate},
		{"role:system", ObjectInvoice, ActionInvoiceSend},
		{"role:system", ObjectBill, ActionBillView},
		{"role:system", ObjectBill, ActionBillCreate},
		{"role:system", ObjectBill, ActionBillUpdate},
	}

	for _, policy := range policies {
		if _, err := enforcer.AddPolicy(policy[0], policy[1], policy[2]); err != nil {
			return err
		}
	}
	return nil
}
