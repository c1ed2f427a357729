package pricing

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Provider          string        `envconfig:"PRICE_PROVIDER" default:"rest"` // rest | goex | static
	BinanceBaseURL    string        `envconfig:"BINANCE_BASE_URL" default:"https://api.binance.com"`
	TwelveDataBaseURL string        `envconfig:"TWELVEDATA_BASE_URL" default:"https://api.twelvedata.com"`
	TwelveDataAPIKey  string        `envconfig:"TWELVEDATA_API_KEY" default:"demo"`
	Timeout           time.Duration `envconfig:"PRICE_TIMEOUT" default:"10s"`
	FallbackEnabled   bool          `envconfig:"PRICE_FALLBACK" default:"true"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}
