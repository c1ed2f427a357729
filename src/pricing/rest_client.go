// REST price provider: Binance for crypto tickers, TwelveData for
// forex/metals. Resty only, internal retry.
package pricing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
	logger "github.com/sirupsen/logrus"
)

const (
	defaultRetryAttempts   = 3
	defaultRetryBaseDelay  = 300 * time.Millisecond
	defaultRetryMaxBackoff = 3 * time.Second
)

type binanceTicker struct {
	Symbol string `json:"symbol"`
	Price  string `json:"price"`
}

type twelveDataPrice struct {
	Price string `json:"price"`
	// TwelveData reports errors in-band with a 200 status.
	Status  string `json:"status,omitempty"`
	Message string `json:"message,omitempty"`
}

// RESTSource fetches spot prices over HTTP. Crypto keys (suffix USDT) go to
// Binance, everything else to TwelveData.
type RESTSource struct {
	binance    *resty.Client
	twelveData *resty.Client
	apiKey     string
}

func isRetryableResp(r *resty.Response, err error) bool {
	if err != nil {
		return true
	}
	if r == nil {
		return false
	}

	code := r.StatusCode()
	if code >= 500 && code <= 599 {
		return true
	}
	if code == 429 || code == 408 {
		return true
	}
	return false
}

func newRetryingClient(baseURL string, timeout time.Duration) *resty.Client {
	return resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetRetryCount(defaultRetryAttempts - 1).
		SetRetryWaitTime(defaultRetryBaseDelay).
		SetRetryMaxWaitTime(defaultRetryMaxBackoff).
		AddRetryCondition(isRetryableResp)
}

func NewRESTSource(cfg Config) *RESTSource {
	return &RESTSource{
		binance:    newRetryingClient(cfg.BinanceBaseURL, cfg.Timeout),
		twelveData: newRetryingClient(cfg.TwelveDataBaseURL, cfg.Timeout),
		apiKey:     cfg.TwelveDataAPIKey,
	}
}

func (s *RESTSource) GetPrice(ctx context.Context, apiSymbol string) (decimal.Decimal, error) {
	if strings.HasSuffix(apiSymbol, "USDT") {
		return s.binancePrice(ctx, apiSymbol)
	}
	return s.twelveDataPrice(ctx, apiSymbol)
}

func (s *RESTSource) binancePrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	var ticker binanceTicker

	resp, err := s.binance.R().
		SetContext(ctx).
		SetQueryParam("symbol", symbol).
		SetResult(&ticker).
		Get("/api/v3/ticker/price")
	if err != nil {
		return decimal.Zero, fmt.Errorf("binance ticker request: %w", err)
	}
	if resp.IsError() {
		logger.WithFields(logger.Fields{
			"symbol": symbol,
			"status": resp.StatusCode(),
		}).Warn("binance ticker returned error status")
		return decimal.Zero, fmt.Errorf("binance ticker status %d: %w", resp.StatusCode(), ErrPriceUnavailable)
	}

	price, err := decimal.NewFromString(ticker.Price)
	if err != nil {
		return decimal.Zero, fmt.Errorf("binance ticker price %q: %w", ticker.Price, ErrPriceUnavailable)
	}
	return validatePrice(price)
}

func (s *RESTSource) twelveDataPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	var out twelveDataPrice

	resp, err := s.twelveData.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"symbol": symbol,
			"apikey": s.apiKey,
		}).
		SetResult(&out).
		Get("/price")
	if err != nil {
		return decimal.Zero, fmt.Errorf("twelvedata price request: %w", err)
	}
	if resp.IsError() || out.Status == "error" {
		logger.WithFields(logger.Fields{
			"symbol":  symbol,
			"status":  resp.StatusCode(),
			"message": out.Message,
		}).Warn("twelvedata price returned error")
		return decimal.Zero, fmt.Errorf("twelvedata price for %s: %w", symbol, ErrPriceUnavailable)
	}

	price, err := decimal.NewFromString(out.Price)
	if err != nil {
		return decimal.Zero, fmt.Errorf("twelvedata price %q: %w", out.Price, ErrPriceUnavailable)
	}
	return validatePrice(price)
}
