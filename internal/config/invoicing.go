package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// InvoicingConfig holds tenant-independent invoicing defaults. It is loaded
// from invoicing.yml and hot-reloaded so operators can adjust terms without
// a restart.
type InvoicingConfig struct {
	DefaultCurrency    string  `mapstructure:"defaultCurrency"`
	PaymentTermsDays   int     `mapstructure:"paymentTermsDays"`
	InvoiceNumPrefix   string  `mapstructure:"invoiceNumPrefix"`
	BillNumPrefix      string  `mapstructure:"billNumPrefix"`
	MaxTaxRatePercent  float64 `mapstructure:"maxTaxRatePercent"`
	MaxDiscountPercent float64 `mapstructure:"maxDiscountPercent"`
}

func DefaultInvoicingConfig() InvoicingConfig {
	return InvoicingConfig{
		DefaultCurrency:    "USD",
		PaymentTermsDays:   30,
		InvoiceNumPrefix:   "INV-",
		BillNumPrefix:      "BILL-",
		MaxTaxRatePercent:  100,
		MaxDiscountPercent: 100,
	}
}

type InvoicingConfigHolder struct {
	current atomic.Value // holds InvoicingConfig
}

func NewInvoicingConfigHolder() (*InvoicingConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("invoicing")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/soupfinance/config")
	v.AddConfigPath("/etc/soupfinance")
	v.AddConfigPath(".")

	v.SetEnvPrefix("SOUPFINANCE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		defaults := DefaultInvoicingConfig()
		v.SetDefault("invoicing.defaultCurrency", defaults.DefaultCurrency)
		v.SetDefault("invoicing.paymentTermsDays", defaults.PaymentTermsDays)
		v.SetDefault("invoicing.invoiceNumPrefix", defaults.InvoiceNumPrefix)
		v.SetDefault("invoicing.billNumPrefix", defaults.BillNumPrefix)
		v.SetDefault("invoicing.maxTaxRatePercent", defaults.MaxTaxRatePercent)
		v.SetDefault("invoicing.maxDiscountPercent", defaults.MaxDiscountPercent)
	}

	var cfg InvoicingConfig
	if err := v.UnmarshalKey("invoicing", &cfg); err != nil {
		return nil, err
	}
	if err := validateInvoicingConfig(cfg); err != nil {
		return nil, err
	}

	holder := &InvoicingConfigHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated InvoicingConfig
		if err := v.UnmarshalKey("invoicing", &updated); err != nil {
			log.Printf("[invoicing-config] reload failed: %v", err)
			return
		}
		if err := validateInvoicingConfig(updated); err != nil {
			log.Printf("[invoicing-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[invoicing-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

// StaticInvoicingConfig wraps a fixed config without file watching.
func StaticInvoicingConfig(cfg InvoicingConfig) *InvoicingConfigHolder {
	holder := &InvoicingConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func (h *InvoicingConfigHolder) Get() InvoicingConfig {
	return h.current.Load().(InvoicingConfig)
}

func validateInvoicingConfig(cfg InvoicingConfig) error {
	if cfg.PaymentTermsDays < 0 {
		return errors.New("invoicing.paymentTermsDays cannot be negative")
	}
	if cfg.MaxTaxRatePercent < 0 || cfg.MaxTaxRatePercent > 100 {
		return errors.New("invoicing.maxTaxRatePercent must be within [0,100]")
	}
	if cfg.MaxDiscountPercent < 0 || cfg.MaxDiscountPercent > 100 {
		return errors.New("invoicing.maxDiscountPercent must be within [0,100]")
	}
	return nil
}
