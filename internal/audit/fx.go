package audit

import (
	"github.com/soupfinance/soupfinance/internal/audit/repository"
	"github.com/soupfinance/soupfinance/internal/audit/service"
	"go.uber.org/fx"
)

var Module = fx.Module("audit.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
