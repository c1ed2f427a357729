package scoring

import (
	"fmt"
	"math/rand"
	"strings"
	"sync"
)

// Timeframes voted on by the simulated confluence draw.
var Timeframes = []string{"M5", "M15", "H1", "H4", "D1"}

const (
	baseConfidence   = 60
	confluenceWeight = 8
	maxConfidence    = 99
	voteProbability  = 0.6
	weakNotesBelow   = 70
	strongScore      = 3
)

// ConfluenceStrategy draws one ternary vote per timeframe: with probability
// voteProbability the timeframe agrees with the proposed direction, otherwise
// it abstains. Confidence = 60 + 8*|score| + rand[0,20), capped at 99.
type ConfluenceStrategy struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewConfluenceStrategy seeds the draw; pass 0 for a non-deterministic seed.
func NewConfluenceStrategy(seed int64) *ConfluenceStrategy {
	if seed == 0 {
		seed = rand.Int63()
	}
	return &ConfluenceStrategy{rng: rand.New(rand.NewSource(seed))}
}

func (s *ConfluenceStrategy) Score(ctx Context) Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	vote := 1
	if ctx.Direction == "SELL" {
		vote = -1
	}

	score := 0
	var agreeing []string
	for _, tf := range Timeframes {
		if s.rng.Float64() < voteProbability {
			score += vote
			agreeing = append(agreeing, tf)
		}
	}

	confidence := baseConfidence + confluenceWeight*abs(score) + s.rng.Intn(20)
	if confidence > maxConfidence {
		confidence = maxConfidence
	}

	return Result{
		Confidence: confidence,
		Confluence: score,
		Timeframes: agreeing,
		Notes:      notesFor(score, confidence, agreeing, ctx),
	}
}

// notesFor picks one of four narrative tiers by confluence/confidence.
func notesFor(score, confidence int, agreeing []string, ctx Context) string {
	targets := fmt.Sprintf("Targets applied: TP %+.2f%% / SL %+.2f%%.",
		ctx.TakeProfitPct*100, -ctx.StopLossPct*100)
	frames := strings.Join(agreeing, ", ")

	switch {
	case score >= strongScore:
		return fmt.Sprintf("High probability: trend alignment on %s. %s "+
			"Strong momentum with confirmation from RSI, MACD and moving averages. "+
			"Price sits near a relevant support/resistance level and volume supports the move. "+
			"Apply proper risk management.", frames, targets)
	case score <= -strongScore:
		return fmt.Sprintf("High probability: trend alignment on %s. %s "+
			"Prior trend shows exhaustion with reversal signs on higher timeframes. "+
			"Confirmed by candle patterns and indicator divergence. "+
			"Trade with risk management.", frames, targets)
	case confidence < weakNotesBelow:
		return fmt.Sprintf("Weak signal: timeframes are not aligned or volatility is elevated. %s "+
			"No clear confirmation from technical indicators. "+
			"Avoid heavy sizing and wait for a better setup.", targets)
	default:
		return fmt.Sprintf("Normal conditions: partial timeframe agreement (%s). %s "+
			"Some indicators confirm the entry but context is not optimal. "+
			"Check the economic calendar and market context before acting.", frames, targets)
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
