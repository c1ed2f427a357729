package model

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestPrecisionBySymbol(t *testing.T) {
	cases := map[string]int32{
		"BTCUSD": 0,
		"ETHUSD": 0,
		"XAUUSD": 2,
		"XAGUSD": 2,
		"USDJPY": 3,
		"EURUSD": 5,
		"GBPUSD": 5,
	}
	for symbol, want := range cases {
		ins, ok := FindInstrument(symbol)
		if !ok {
			t.Fatalf("instrument %s missing from catalog", symbol)
		}
		if got := ins.Precision(); got != want {
			t.Fatalf("%s precision = %d, want %d", symbol, got, want)
		}
	}
}

func TestRoundPrice(t *testing.T) {
	btc, _ := FindInstrument("BTCUSD")
	got := btc.RoundPrice(decimal.RequireFromString("65123.4567"))
	if !got.Equal(decimal.RequireFromString("65123")) {
		t.Fatalf("expected 65123, got %s", got)
	}

	eur, _ := FindInstrument("EURUSD")
	got = eur.RoundPrice(decimal.RequireFromString("1.0923456"))
	if !got.Equal(decimal.RequireFromString("1.09235")) {
		t.Fatalf("expected 1.09235, got %s", got)
	}
}

func TestFindInstrumentUnknown(t *testing.T) {
	if _, ok := FindInstrument("DOGEUSD"); ok {
		t.Fatal("expected lookup miss for unknown symbol")
	}
}
