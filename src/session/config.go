package session

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config tunes the evaluation loop. Percentage fields are fractions
// (0.02 = 2%). Zero-valued BreakEvenPct/TrailTriggerPct/MaxHold disable the
// corresponding rule; the swing profile leaves them off, the scalp profile
// presets them.
type Config struct {
	Profile            string        `envconfig:"PROFILE" default:"swing"` // swing | scalp
	TickInterval       time.Duration `envconfig:"TICK_INTERVAL" default:"10s"`
	BatchWindow        time.Duration `envconfig:"BATCH_WINDOW" default:"30m"`
	BatchCap           int           `envconfig:"BATCH_CAP" default:"2"`
	Instruments        []string      `envconfig:"INSTRUMENTS" default:"EURUSD,BTCUSD,XAUUSD"`
	Sentiment          string        `envconfig:"SENTIMENT" default:"neutral"`
	MinConfidence      int           `envconfig:"MIN_CONFIDENCE" default:"70"`
	ReversalConfidence int           `envconfig:"REVERSAL_CONFIDENCE" default:"80"`
	TakeProfitPct      float64       `envconfig:"TAKE_PROFIT_PCT" default:"0.02"`
	StopLossPct        float64       `envconfig:"STOP_LOSS_PCT" default:"0.01"`
	AdverseCancelPct   float64       `envconfig:"ADVERSE_CANCEL_PCT" default:"0.005"`
	BreakEvenPct       float64       `envconfig:"BREAK_EVEN_PCT" default:"0"`
	TrailTriggerPct    float64       `envconfig:"TRAIL_TRIGGER_PCT" default:"0"`
	TrailLockPct       float64       `envconfig:"TRAIL_LOCK_PCT" default:"0.0015"`
	MaxHold            time.Duration `envconfig:"MAX_HOLD" default:"0"`
	AdaptiveTargets    bool          `envconfig:"ADAPTIVE_TARGETS" default:"true"`
	EventLogCap        int           `envconfig:"EVENT_LOG_CAP" default:"400"`
	HistoryCap         int           `envconfig:"HISTORY_CAP" default:"50"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config.withProfile()
}

// withProfile presets the scalp tuning: shorter windows, tighter targets,
// break-even and trailing enabled, time-based expiry at five minutes.
func (c Config) withProfile() Config {
	if c.Profile != "scalp" {
		return c
	}

	c.TickInterval = 5 * time.Second
	c.BatchWindow = 10 * time.Minute
	c.BatchCap = 1
	c.TakeProfitPct = 0.0035
	c.StopLossPct = 0.0022
	c.AdverseCancelPct = 0.0025
	c.BreakEvenPct = 0.0015
	c.TrailTriggerPct = 0.003
	c.TrailLockPct = 0.0015
	c.MaxHold = 5 * time.Minute
	return c
}
