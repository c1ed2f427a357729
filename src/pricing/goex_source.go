package pricing

import (
	"context"
	"fmt"
	"time"

	goex "github.com/nntaoli-project/goex"
	"github.com/nntaoli-project/goex/builder"
	"github.com/shopspring/decimal"
)

// GoexSource resolves crypto tickers through the goex exchange client.
// Only the crypto keys are supported; forex/metals callers fall through to
// the fallback chain.
type GoexSource struct {
	api goex.API
}

var goexPairs = map[string]goex.CurrencyPair{
	"BTCUSDT": goex.BTC_USDT,
	"ETHUSDT": goex.ETH_USDT,
}

func NewGoexSource(timeout time.Duration) *GoexSource {
	api := builder.NewAPIBuilder().
		HttpTimeout(timeout).
		Build(goex.BINANCE)
	return &GoexSource{api: api}
}

func (s *GoexSource) GetPrice(ctx context.Context, apiSymbol string) (decimal.Decimal, error) {
	pair, ok := goexPairs[apiSymbol]
	if !ok {
		return decimal.Zero, fmt.Errorf("%s: %w", apiSymbol, ErrUnknownSymbol)
	}

	ticker, err := s.api.GetTicker(pair)
	if err != nil {
		return decimal.Zero, fmt.Errorf("goex ticker for %s: %w", apiSymbol, err)
	}
	return validatePrice(decimal.NewFromFloat(ticker.Last))
}
