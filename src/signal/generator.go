// Package signal fabricates trade candidates from live prices and the
// configured scoring strategy.
package signal

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"signalboard/src/model"
	"signalboard/src/pricing"
	"signalboard/src/scoring"
)

const (
	minEffectiveConfidence = 60
	maxEffectiveConfidence = 90
)

// Params are the per-attempt inputs. The lifecycle manager owns these values;
// the generator just applies them.
type Params struct {
	Instruments   []model.Instrument
	Sentiment     scoring.Sentiment
	TakeProfitPct float64 // fraction, e.g. 0.02 for +2%
	StopLossPct   float64
	MinConfidence int
	History       []model.Trade // recent closed trades, newest first
	Adaptive      bool
	Batch         int
}

// Rejection reports a validation refusal (not an error): the attempt was
// evaluated and turned down, and callers record an INFO event for it.
type Rejection struct {
	Confidence int
	Reason     string
}

type Generator struct {
	logger   *logrus.Entry
	prices   pricing.Source
	strategy scoring.Strategy

	mu  sync.Mutex
	rng *rand.Rand
	now func() time.Time
}

// NewGenerator seeds the direction/instrument draw; pass 0 for a
// non-deterministic seed.
func NewGenerator(logger *logrus.Entry, prices pricing.Source, strategy scoring.Strategy, seed int64) *Generator {
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	if seed == 0 {
		seed = rand.Int63()
	}
	return &Generator{
		logger:   logger,
		prices:   prices,
		strategy: strategy,
		rng:      rand.New(rand.NewSource(seed)),
		now:      time.Now,
	}
}

// SetClock overrides the timestamp source. For tests.
func (g *Generator) SetClock(now func() time.Time) { g.now = now }

// Generate attempts one signal. Exactly one of the three returns is non-zero:
// a signal, a rejection (below-threshold or nothing eligible), or an error
// (price fetch failed; retryable next tick).
func (g *Generator) Generate(ctx context.Context, p Params) (*model.Signal, *Rejection, error) {
	if len(p.Instruments) == 0 {
		return nil, &Rejection{Reason: "no eligible instruments selected"}, nil
	}

	instrument := g.pickInstrument(p.Instruments)
	direction := g.pickDirection(p.Sentiment)

	entry, err := g.prices.GetPrice(ctx, instrument.APISymbol)
	if err != nil {
		g.logger.WithError(err).WithField("symbol", instrument.Symbol).
			Warn("price fetch failed, no signal this cycle")
		return nil, nil, fmt.Errorf("fetch price for %s: %w", instrument.Symbol, err)
	}
	if entry.LessThanOrEqual(decimal.Zero) {
		return nil, nil, fmt.Errorf("fetch price for %s: %w", instrument.Symbol, pricing.ErrPriceUnavailable)
	}

	tpPct, slPct, minConfidence := p.TakeProfitPct, p.StopLossPct, p.MinConfidence
	if p.Adaptive {
		adj := scoring.AdaptThresholds(p.History)
		tpPct *= adj.TargetScale
		slPct *= adj.TargetScale
		minConfidence = clamp(minConfidence+adj.ConfidenceDelta, minEffectiveConfidence, maxEffectiveConfidence)
	}

	score := g.strategy.Score(scoring.Context{
		Direction:     direction,
		Sentiment:     p.Sentiment,
		TakeProfitPct: tpPct,
		StopLossPct:   slPct,
	})

	if score.Confidence < minConfidence {
		g.logger.WithFields(logrus.Fields{
			"symbol":     instrument.Symbol,
			"direction":  direction,
			"confidence": score.Confidence,
			"required":   minConfidence,
		}).Info("signal below confidence threshold, rejected")
		return nil, &Rejection{
			Confidence: score.Confidence,
			Reason: fmt.Sprintf("%s %s rejected: confidence %d%% below %d%% minimum",
				direction, instrument.Symbol, score.Confidence, minConfidence),
		}, nil
	}

	tp, sl := Offsets(instrument, direction, entry, tpPct, slPct)
	sig := &model.Signal{
		ID:         uuid.NewString(),
		Symbol:     instrument.Symbol,
		Display:    instrument.Display,
		Direction:  direction,
		Entry:      entry,
		TakeProfit: tp,
		StopLoss:   sl,
		Confidence: score.Confidence,
		Confluence: score.Confluence,
		Notes:      score.Notes,
		Batch:      p.Batch,
		CreatedAt:  g.now(),
	}

	g.logger.WithFields(logrus.Fields{
		"symbol":     sig.Symbol,
		"direction":  sig.Direction,
		"entry":      sig.Entry.String(),
		"tp":         sig.TakeProfit.String(),
		"sl":         sig.StopLoss.String(),
		"confidence": sig.Confidence,
	}).Info("signal generated")
	return sig, nil, nil
}

// Offsets computes take-profit and stop-loss as percentage offsets from the
// entry in the trade's direction, rounded to the instrument precision.
func Offsets(ins model.Instrument, dir model.Direction, entry decimal.Decimal, tpPct, slPct float64) (tp, sl decimal.Decimal) {
	one := decimal.NewFromInt(1)
	tpOff := decimal.NewFromFloat(tpPct)
	slOff := decimal.NewFromFloat(slPct)

	if dir == model.DirectionBuy {
		tp = entry.Mul(one.Add(tpOff))
		sl = entry.Mul(one.Sub(slOff))
	} else {
		tp = entry.Mul(one.Sub(tpOff))
		sl = entry.Mul(one.Add(slOff))
	}
	return ins.RoundPrice(tp), ins.RoundPrice(sl)
}

func (g *Generator) pickInstrument(eligible []model.Instrument) model.Instrument {
	g.mu.Lock()
	defer g.mu.Unlock()
	return eligible[g.rng.Intn(len(eligible))]
}

func (g *Generator) pickDirection(sentiment scoring.Sentiment) model.Direction {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.rng.Float64() < sentiment.BuyBias() {
		return model.DirectionBuy
	}
	return model.DirectionSell
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
