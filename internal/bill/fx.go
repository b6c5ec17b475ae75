package bill

import (
	"github.com/soupfinance/soupfinance/internal/bill/repository"
	"github.com/soupfinance/soupfinance/internal/bill/service"
	"go.uber.org/fx"
)

var Module = fx.Module("bill.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
