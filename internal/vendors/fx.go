package vendors

import (
	"github.com/soupfinance/soupfinance/internal/vendors/repository"
	"github.com/soupfinance/soupfinance/internal/vendors/service"
	"go.uber.org/fx"
)

var Module = fx.Module("vendor.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
