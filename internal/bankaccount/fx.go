package bankaccount

import (
	"github.com/soupfinance/soupfinance/internal/bankaccount/repository"
	"github.com/soupfinance/soupfinance/internal/bankaccount/service"
	"go.uber.org/fx"
)

var Module = fx.Module("bankaccount.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
