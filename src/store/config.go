package store

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Driver       string `envconfig:"STORE_DRIVER" default:"sqlite"` // sqlite | postgres
	DSN          string `envconfig:"STORE_DSN" default:"signalboard.db"`
	GormLogLevel int    `envconfig:"GORM_LOG_LEVEL" default:"2"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}
