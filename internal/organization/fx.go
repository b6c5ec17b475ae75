package organization

import (
	"github.com/soupfinance/soupfinance/internal/organization/repository"
	"github.com/soupfinance/soupfinance/internal/organization/service"
	"go.uber.org/fx"
)

var Module = fx.Module("organization.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
