package invoice

import (
	"github.com/soupfinance/soupfinance/internal/invoice/repository"
	"github.com/soupfinance/soupfinance/internal/invoice/service"
	"go.uber.org/fx"
)

var Module = fx.Module("invoice.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
