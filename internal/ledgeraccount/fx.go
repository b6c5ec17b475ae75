package ledgeraccount

import (
	"github.com/soupfinance/soupfinance/internal/ledgeraccount/repository"
	"github.com/soupfinance/soupfinance/internal/ledgeraccount/service"
	"go.uber.org/fx"
)

var Module = fx.Module("ledgeraccount.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
