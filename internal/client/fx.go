package client

import (
	"github.com/soupfinance/soupfinance/internal/client/repository"
	"github.com/soupfinance/soupfinance/internal/client/service"
	"go.uber.org/fx"
)

var Module = fx.Module("client.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
