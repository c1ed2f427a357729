package pricing

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	logger "github.com/sirupsen/logrus"
)

// Source resolves a price-source key (e.g. BTCUSDT, XAU/USD) to the latest
// price. Implementations must return ErrPriceUnavailable rather than zero or
// negative values; callers treat any error as "skip this cycle".
type Source interface {
	GetPrice(ctx context.Context, apiSymbol string) (decimal.Decimal, error)
}

var (
	ErrPriceUnavailable = errors.New("price unavailable")
	ErrUnknownSymbol    = errors.New("unknown price-source symbol")
)

func validatePrice(p decimal.Decimal) (decimal.Decimal, error) {
	if p.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, ErrPriceUnavailable
	}
	return p, nil
}

// NewFromConfig builds the configured provider, wrapped with the static
// fallback unless disabled.
func NewFromConfig(cfg Config) Source {
	var primary Source
	switch cfg.Provider {
	case "goex":
		primary = NewGoexSource(cfg.Timeout)
	case "static":
		return NewStaticSource(0)
	default:
		primary = NewRESTSource(cfg)
	}

	if !cfg.FallbackEnabled {
		return primary
	}
	return &fallbackSource{primary: primary, fallback: NewStaticSource(0)}
}

// fallbackSource tries the primary provider and degrades to fallback
// estimates when it fails.
type fallbackSource struct {
	primary  Source
	fallback Source
}

func (f *fallbackSource) GetPrice(ctx context.Context, apiSymbol string) (decimal.Decimal, error) {
	price, err := f.primary.GetPrice(ctx, apiSymbol)
	if err == nil {
		return price, nil
	}

	logger.WithError(err).WithField("symbol", apiSymbol).
		Warn("primary price source failed, using fallback estimate")
	return f.fallback.GetPrice(ctx, apiSymbol)
}
