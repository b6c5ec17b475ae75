package providers

import (
	"github.com/soupfinance/soupfinance/internal/providers/email"
	"github.com/soupfinance/soupfinance/internal/providers/pdf"
	"go.uber.org/fx"
)

var Module = fx.Module("providers",
	email.Module,
	pdf.Module,
)
