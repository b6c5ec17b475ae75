package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/soupfinance/soupfinance/internal/audit"
	auditdomain "github.com/soupfinance/soupfinance/internal/audit/domain"
	"github.com/soupfinance/soupfinance/internal/auth"
	authdomain "github.com/soupfinance/soupfinance/internal/auth/domain"
	"github.com/soupfinance/soupfinance/internal/authorization"
	"github.com/soupfinance/soupfinance/internal/bankaccount"
	bankdomain "github.com/soupfinance/soupfinance/internal/bankaccount/domain"
	"github.com/soupfinance/soupfinance/internal/bill"
	billdomain "github.com/soupfinance/soupfinance/internal/bill/domain"
	"github.com/soupfinance/soupfinance/internal/client"
	clientdomain "github.com/soupfinance/soupfinance/internal/client/domain"
	"github.com/soupfinance/soupfinance/internal/config"
	"github.com/soupfinance/soupfinance/internal/invoice"
	invoicedomain "github.com/soupfinance/soupfinance/internal/invoice/domain"
	"github.com/soupfinance/soupfinance/internal/ledgeraccount"
	ledgerdomain "github.com/soupfinance/soupfinance/internal/ledgeraccount/domain"
	"github.com/soupfinance/soupfinance/internal/observability"
	obsmiddleware "github.com/soupfinance/soupfinance/internal/observability/logger"
	obsmetrics "github.com/soupfinance/soupfinance/internal/observability/metrics"
	obstracing "github.com/soupfinance/soupfinance/internal/observability/tracing"
	"github.com/soupfinance/soupfinance/internal/organization"
	organizationdomain "github.com/soupfinance/soupfinance/internal/organization/domain"
	"github.com/soupfinance/soupfinance/internal/providers"
	"github.com/soupfinance/soupfinance/internal/ratelimit"
	"github.com/soupfinance/soupfinance/internal/vendors"
	vendordomain "github.com/soupfinance/soupfinance/internal/vendors/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	authorization.Module,
	audit.Module,
	auth.Module,
	organization.Module,
	client.Module,
	vendors.Module,
	ledgeraccount.Module,
	bankaccount.Module,
	providers.Module,
	invoice.Module,
	bill.Module,
	ratelimit.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine          *gin.Engine
	cfg             config.Config
	db              *gorm.DB
	genID           *snowflake.Node
	authsvc         authdomain.Service
	authzSvc        authorization.Service
	auditSvc        auditdomain.Service
	organizationSvc organizationdomain.Service
	clientSvc       clientdomain.Service
	vendorSvc       vendordomain.Service
	ledgerSvc       ledgerdomain.Service
	bankSvc         bankdomain.Service
	invoiceSvc      invoicedomain.Service
	billSvc         billdomain.Service
	obsMetrics      *obsmetrics.Metrics
	loginLimiter    *ratelimit.LoginLimiter
}

type ServerParams struct {
	fx.In

	Gin             *gin.Engine
	Cfg             config.Config
	DB              *gorm.DB
	GenID           *snowflake.Node
	Authsvc         authdomain.Service
	AuthzSvc        authorization.Service
	AuditSvc        auditdomain.Service
	OrganizationSvc organizationdomain.Service
	ClientSvc       clientdomain.Service
	VendorSvc       vendordomain.Service
	LedgerSvc       ledgerdomain.Service
	BankSvc         bankdomain.Service
	InvoiceSvc      invoicedomain.Service
	BillSvc         billdomain.Service
	ObsMetrics      *obsmetrics.Metrics     `optional:"true"`
	LoginLimiter    *ratelimit.LoginLimiter `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:          p.Gin,
		cfg:             p.Cfg,
		db:              p.DB,
		genID:           p.GenID,
		authsvc:         p.Authsvc,
		authzSvc:        p.AuthzSvc,
		auditSvc:        p.AuditSvc,
		organizationSvc: p.OrganizationSvc,
		clientSvc:       p.ClientSvc,
		vendorSvc:       p.VendorSvc,
		ledgerSvc:       p.LedgerSvc,
		bankSvc:         p.BankSvc,
		invoiceSvc:      p.InvoiceSvc,
		billSvc:         p.BillSvc,
		obsMetrics:      p.ObsMetrics,
		loginLimiter:    p.LoginLimiter,
	}

	svc.registerAuthRoutes()
	svc.registerAdminRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAuthRoutes() {
	auth := s.engine.Group("/auth")

	auth.POST("/login", s.Login)
	auth.POST("/logout", s.Logout)
	auth.POST("/change-password", s.AuthRequired(), s.ChangePassword)
	auth.GET("/me", s.Me)

	user := auth.Group("/user", s.AuthRequired())
	{
		user.GET("/orgs", s.ListUserOrgs)
	}
}

func (s *Server) registerAdminRoutes() {
	admin := s.engine.Group("/admin")

	admin.Use(s.AuthRequired())

	admin.POST("/organizations", s.CreateOrganization)

	org := admin.Group("", s.OrgContext())

	// -------- Members --------
	org.GET("/members", s.RequireRole(organizationdomain.RoleOwner, organizationdomain.RoleAdmin, organizationdomain.RoleMember), s.ListMembers)
	org.POST("/members", s.RequireRole(organizationdomain.RoleOwner, organizationdomain.RoleAdmin), s.authorizeOrgAction(authorization.ObjectOrganization, authorization.ActionMemberManage), s.AddMember)

	// -------- Clients --------
	org.GET("/clients", s.RequireRole(organizationdomain.RoleOwner, organizationdomain.RoleAdmin, organizationdomain.RoleMember), s.ListClients)
	org.POST("/clients", s.RequireRole(organizationdomain.RoleOwner, organizationdomain.RoleAdmin), s.CreateClient)
	org.GET("/clients/:id", s.RequireRole(organizationdomain.RoleOwner, organizationdomain.RoleAdmin, organizationdomain.RoleMember), s.GetClientByID)
	org.PATCH("/clients/:id", s.RequireRole(organizationdomain.RoleOwner, organizationdomain.RoleAdmin), s.UpdateClient)

	// -------- Vendors --------
	org.GET("/vendors", s.RequireRole(organizationdomain.RoleOwner, organizationdomain.RoleAdmin, organizationdomain.RoleMember), s.ListVendors)
	org.POST("/vendors", s.RequireRole(organizationdomain.RoleOwner, organizationdomain.RoleAdmin), s.CreateVendor)
	org.GET("/vendors/:id", s.RequireRole(organizationdomain.RoleOwner, organizationdomain.RoleAdmin, organizationdomain.RoleMember), s.GetVendorByID)
	org.PATCH("/vendors/:id", s.RequireRole(organizationdomain.RoleOwner, organizationdomain.RoleAdmin), s.UpdateVendor)

	// -------- Ledger accounts --------
	org.GET("/ledger-accounts", s.RequireRole(organizationdomain.RoleOwner, organizationdomain.RoleAdmin, organizationdomain.RoleMember), s.ListLedgerAccounts)
	org.POST("/ledger-accounts", s.RequireRole(organizationdomain.RoleOwner, organizationdomain.RoleAdmin), s.authorizeOrgAction(authorization.ObjectLedgerAccount, authorization.ActionLedgerAccountManage), s.CreateLedgerAccount)
	org.GET("/ledger-accounts/:id", s.RequireRole(organizationdomain.RoleOwner, organizationdomain.RoleAdmin, organizationdomain.RoleMember), s.GetLedgerAccountByID)
	org.PATCH("/ledger-accounts/:id", s.RequireRole(organizationdomain.RoleOwner, organizationdomain.RoleAdmin), s.authorizeOrgAction(authorization.ObjectLedgerAccount, authorization.ActionLedgerAccountManage), s.UpdateLedgerAccount)

	// -------- Bank accounts --------
	org.GET("/bank-accounts", s.RequireRole(organizationdomain.RoleOwner, organizationdomain.RoleAdmin), s.ListBankAccounts)
	org.POST("/bank-accounts", s.RequireRole(organizationdomain.RoleOwner), s.authorizeOrgAction(authorization.ObjectBankAccount, authorization.ActionBankAccountManage), s.CreateBankAccount)
	org.GET("/bank-accounts/:id", s.RequireRole(organizationdomain.RoleOwner, organizationdomain.RoleAdmin), s.GetBankAccountByID)

	// -------- Invoices --------
	org.GET("/invoices", s.RequireRole(organizationdomain.RoleOwner, organizationdomain.RoleAdmin, organizationdomain.RoleMember), s.ListInvoices)
	org.POST("/invoices", s.RequireRole(organizationdomain.RoleOwner, organizationdomain.RoleAdmin), s.SaveInvoice)
	org.GET("/invoices/:id", s.RequireRole(organizationdomain.RoleOwner, organizationdomain.RoleAdmin, organizationdomain.RoleMember), s.GetInvoiceByID)
	org.GET("/invoices/:id/pdf", s.RequireRole(organizationdomain.RoleOwner, organizationdomain.RoleAdmin, organizationdomain.RoleMember), s.RenderInvoicePDF)
	org.POST("/invoices/:id/send", s.RequireRole(organizationdomain.RoleOwner, organizationdomain.RoleAdmin), s.authorizeOrgAction(authorization.ObjectInvoice, authorization.ActionInvoiceSend), s.SendInvoice)
	org.POST("/invoices/:id/pay", s.RequireRole(organizationdomain.RoleOwner, organizationdomain.RoleAdmin), s.authorizeOrgAction(authorization.ObjectInvoice, authorization.ActionInvoicePay), s.MarkInvoicePaid)
	org.POST("/invoices/:id/void", s.RequireRole(organizationdomain.RoleOwner), s.authorizeOrgAction(authorization.ObjectInvoice, authorization.ActionInvoiceVoid), s.VoidInvoice)

	// -------- Bills --------
	org.GET("/bills", s.RequireRole(organizationdomain.RoleOwner, organizationdomain.RoleAdmin, organizationdomain.RoleMember), s.ListBills)
	org.POST("/bills", s.RequireRole(organizationdomain.RoleOwner, organizationdomain.RoleAdmin), s.SaveBill)
	org.GET("/bills/:id", s.RequireRole(organizationdomain.RoleOwner, organizationdomain.RoleAdmin, organizationdomain.RoleMember), s.GetBillByID)
	org.POST("/bills/:id/receive", s.RequireRole(organizationdomain.RoleOwner, organizationdomain.RoleAdmin), s.MarkBillReceived)
	org.POST("/bills/:id/pay", s.RequireRole(organizationdomain.RoleOwner, organizationdomain.RoleAdmin), s.authorizeOrgAction(authorization.ObjectBill, authorization.ActionBillPay), s.MarkBillPaid)
	org.POST("/bills/:id/void", s.RequireRole(organizationdomain.RoleOwner), s.authorizeOrgAction(authorization.ObjectBill, authorization.ActionBillVoid), s.VoidBill)

	// -------- Audit logs --------
	org.GET("/audit-logs", s.RequireRole(organizationdomain.RoleOwner, organizationdomain.RoleAdmin), s.authorizeOrgAction(authorization.ObjectAuditLog, authorization.ActionAuditLogView), s.ListAuditLogs)
}
