package migration

import (
	authdomain "github.com/soupfinance/soupfinance/internal/auth/domain"
	auditdomain "github.com/soupfinance/soupfinance/internal/audit/domain"
	bankdomain "github.com/soupfinance/soupfinance/internal/bankaccount/domain"
	billdomain "github.com/soupfinance/soupfinance/internal/bill/domain"
	clientdomain "github.com/soupfinance/soupfinance/internal/client/domain"
	"github.com/soupfinance/soupfinance/internal/config"
	invoicedomain "github.com/soupfinance/soupfinance/internal/invoice/domain"
	ledgerdomain "github.com/soupfinance/soupfinance/internal/ledgeraccount/domain"
	organizationdomain "github.com/soupfinance/soupfinance/internal/organization/domain"
	"github.com/soupfinance/soupfinance/internal/seed"
	vendordomain "github.com/soupfinance/soupfinance/internal/vendors/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		} else {
			// sqlite and mysql installs rely on gorm's schema sync.
			if err := autoMigrate(conn); err != nil {
				return err
			}
		}

		if cfg.DefaultOrgID != 0 {
			if err := seed.EnsureMainOrgWithID(conn, cfg.DefaultOrgID); err != nil {
				return err
			}
		}
		return seed.EnsureMainOrgAndAdmin(conn)
	}),
)

func autoMigrate(conn *gorm.DB) error {
	return conn.AutoMigrate(
		&authdomain.User{},
		&authdomain.Session{},
		&organizationdomain.Organization{},
		&organizationdomain.OrganizationMember{},
		&clientdomain.Client{},
		&vendordomain.Vendor{},
		&ledgerdomain.LedgerAccount{},
		&bankdomain.BankAccount{},
		&invoicedomain.Invoice{},
		&invoicedomain.InvoiceItem{},
		&billdomain.Bill{},
		&billdomain.BillItem{},
		&auditdomain.AuditLog{},
	)
}
