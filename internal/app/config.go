package app

import (
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/shopbasket/basket-api/internal/domain/discount"
)

// Config holds the complete application configuration, loadable from
// environment variables (BASKET_ prefix), flags, or YAML config files.
type Config struct {
	Addr          string `default:"0.0.0.0:8080" usage:"API server listen address"`
	RateLimit     RateLimitConfig
	CORS          CORSConfig
	Graceful      GracefulConfig
	DiscountCodes []DiscountCodeConfig `usage:"discount code seed (config file only); defaults apply when empty"`
}

// RateLimitConfig controls the per-client sliding window rate limiter.
type RateLimitConfig struct {
	Max    int           `default:"100" usage:"Max requests per window"`
	Window time.Duration `default:"1m"  usage:"Rate limit window duration"`
}

// CORSConfig controls Cross-Origin Resource Sharing headers.
type CORSConfig struct {
	Origins          []string `default:"*" usage:"Allowed CORS origins"`
	AllowCredentials bool     `default:"false" usage:"Allow credentials (cookies, auth headers)" flag:"cors-credentials"`
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"3s"  usage:"Delay after readiness=false before shutdown" flag:"readiness-delay"`
	ShutdownTimeout time.Duration `default:"15s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

// DiscountCodeConfig seeds one discount code. Percentage is a decimal
// string so configuration never round-trips through binary floats.
type DiscountCodeConfig struct {
	Code        string `usage:"discount code"`
	Percentage  string `usage:"discount percentage, 0-100"`
	Active      *bool  `usage:"whether the code can be applied (default true)"`
	Description string `usage:"display text"`
}

// LoadConfig loads configuration from environment variables, flags, and
// YAML config files.
func LoadConfig() (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "BASKET",
		Files:     []string{"config.yaml", "/etc/basket/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()
	return &cfg, nil
}

// applyPlatformDefaults maps platform-provided environment variables
// (Railway, Render, etc.) onto the BASKET_-prefixed configuration.
func (c *Config) applyPlatformDefaults() {
	if port := os.Getenv("PORT"); port != "" && c.Addr == "0.0.0.0:8080" {
		c.Addr = "0.0.0.0:" + port
	}
}

var maxPercentage = decimal.NewFromInt(100)

// DiscountRegistry builds the read-only code registry from configuration,
// falling back to the built-in seed set when none is configured.
func (c *Config) DiscountRegistry() (*discount.Registry, error) {
	if len(c.DiscountCodes) == 0 {
		return discount.NewRegistry(discount.DefaultCodes()), nil
	}

	codes := make([]discount.Code, len(c.DiscountCodes))
	for i, dc := range c.DiscountCodes {
		if dc.Code == "" {
			return nil, errors.New("discount code entry with empty code")
		}
		pct, err := decimal.NewFromString(dc.Percentage)
		if err != nil {
			return nil, errors.Wrapf(err, "discount code %q percentage", dc.Code)
		}
		if pct.IsNegative() || pct.GreaterThan(maxPercentage) {
			return nil, errors.Errorf("discount code %q percentage %s out of range [0,100]", dc.Code, pct)
		}
		active := true
		if dc.Active != nil {
			active = *dc.Active
		}
		codes[i] = discount.Code{
			Code:        dc.Code,
			Percentage:  pct,
			Active:      active,
			Description: dc.Description,
		}
	}
	return discount.NewRegistry(codes), nil
}
