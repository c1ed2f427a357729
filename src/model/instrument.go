package model

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Instrument is static reference data for a tradable symbol.
// APISymbol is the key the price source understands (e.g. BTCUSDT for Binance,
// XAU/USD for the forex/metals provider).
type Instrument struct {
	Symbol    string `json:"symbol"`
	APISymbol string `json:"api_symbol"`
	Display   string `json:"display"`
	Category  string `json:"category"`
}

const (
	CategoryCrypto = "Crypto"
	CategoryMetals = "Metals"
	CategoryForex  = "Forex"
)

var catalog = []Instrument{
	{Symbol: "BTCUSD", APISymbol: "BTCUSDT", Display: "Bitcoin (BTCUSD)", Category: CategoryCrypto},
	{Symbol: "ETHUSD", APISymbol: "ETHUSDT", Display: "Ethereum (ETHUSD)", Category: CategoryCrypto},
	{Symbol: "XAUUSD", APISymbol: "XAU/USD", Display: "Gold (XAUUSD)", Category: CategoryMetals},
	{Symbol: "XAGUSD", APISymbol: "XAG/USD", Display: "Silver (XAGUSD)", Category: CategoryMetals},
	{Symbol: "EURUSD", APISymbol: "EUR/USD", Display: "Euro / US Dollar", Category: CategoryForex},
	{Symbol: "GBPUSD", APISymbol: "GBP/USD", Display: "Pound / US Dollar", Category: CategoryForex},
	{Symbol: "USDJPY", APISymbol: "USD/JPY", Display: "US Dollar / Yen", Category: CategoryForex},
}

// Catalog returns a copy of the built-in instrument list.
func Catalog() []Instrument {
	out := make([]Instrument, len(catalog))
	copy(out, catalog)
	return out
}

// FindInstrument resolves a symbol from the catalog.
func FindInstrument(symbol string) (Instrument, bool) {
	for _, ins := range catalog {
		if ins.Symbol == symbol {
			return ins, true
		}
	}
	return Instrument{}, false
}

// Precision returns the number of decimal places quoted prices are shown at.
func (i Instrument) Precision() int32 {
	switch {
	case i.Symbol == "BTCUSD" || i.Symbol == "ETHUSD":
		return 0
	case i.Symbol == "XAUUSD" || i.Symbol == "XAGUSD":
		return 2
	case strings.Contains(i.Symbol, "JPY"):
		return 3
	default:
		return 5
	}
}

// RoundPrice rounds a price to the instrument's quoted precision.
func (i Instrument) RoundPrice(p decimal.Decimal) decimal.Decimal {
	return p.Round(i.Precision())
}
