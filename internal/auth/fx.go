package auth

import (
	"github.com/soupfinance/soupfinance/internal/auth/repository"
	"github.com/soupfinance/soupfinance/internal/auth/service"
	"go.uber.org/fx"
)

var Module = fx.Module("auth.service",
	fx.Provide(repository.New),
	fx.Provide(service.New),
)
