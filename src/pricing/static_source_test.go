package pricing

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestStaticSourceWalksAroundQuote(t *testing.T) {
	source := NewStaticSource(1)
	base := decimal.RequireFromString("65000")

	prev := base
	for i := 0; i < 50; i++ {
		price, err := source.GetPrice(context.Background(), "BTCUSDT")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !price.IsPositive() {
			t.Fatalf("expected positive price, got %s", price)
		}

		// per-call drift is bounded by ±0.05%
		step := price.Sub(prev).Div(prev).Abs()
		if step.GreaterThan(decimal.RequireFromString("0.0005")) {
			t.Fatalf("drift %s exceeds bound", step)
		}
		prev = price
	}
}

func TestStaticSourceUnknownSymbol(t *testing.T) {
	source := NewStaticSource(1)

	_, err := source.GetPrice(context.Background(), "DOGEUSDT")
	if !errors.Is(err, ErrUnknownSymbol) {
		t.Fatalf("expected ErrUnknownSymbol, got %v", err)
	}
}

func TestStaticSourceDeterministicWithSeed(t *testing.T) {
	a := NewStaticSource(99)
	b := NewStaticSource(99)

	for i := 0; i < 10; i++ {
		pa, _ := a.GetPrice(context.Background(), "EUR/USD")
		pb, _ := b.GetPrice(context.Background(), "EUR/USD")
		if !pa.Equal(pb) {
			t.Fatalf("seeded sources diverged: %s vs %s", pa, pb)
		}
	}
}
