package pricing

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

type failingSource struct{}

func (failingSource) GetPrice(_ context.Context, _ string) (decimal.Decimal, error) {
	return decimal.Zero, ErrPriceUnavailable
}

func TestFallbackSourceDegradesToEstimates(t *testing.T) {
	source := &fallbackSource{primary: failingSource{}, fallback: NewStaticSource(1)}

	price, err := source.GetPrice(context.Background(), "BTCUSDT")
	if err != nil {
		t.Fatalf("expected fallback estimate, got %v", err)
	}
	if !price.IsPositive() {
		t.Fatalf("expected positive fallback price, got %s", price)
	}
}

func TestFallbackSourceStillFailsOnUnknownSymbol(t *testing.T) {
	source := &fallbackSource{primary: failingSource{}, fallback: NewStaticSource(1)}

	_, err := source.GetPrice(context.Background(), "NOPE")
	if !errors.Is(err, ErrUnknownSymbol) {
		t.Fatalf("expected ErrUnknownSymbol, got %v", err)
	}
}

func TestNewFromConfigStaticProvider(t *testing.T) {
	source := NewFromConfig(Config{Provider: "static"})

	price, err := source.GetPrice(context.Background(), "ETHUSDT")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !price.IsPositive() {
		t.Fatalf("expected positive price, got %s", price)
	}
}

func TestValidatePrice(t *testing.T) {
	if _, err := validatePrice(decimal.Zero); !errors.Is(err, ErrPriceUnavailable) {
		t.Fatalf("expected ErrPriceUnavailable for zero, got %v", err)
	}
	if _, err := validatePrice(decimal.RequireFromString("-1")); err == nil {
		t.Fatal("expected error for negative price")
	}
	price, err := validatePrice(decimal.RequireFromString("1.09"))
	if err != nil || !price.Equal(decimal.RequireFromString("1.09")) {
		t.Fatalf("unexpected result: %s %v", price, err)
	}
}
