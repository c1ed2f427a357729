// Package scoring produces confidence estimates for candidate trades.
//
// The default implementation is a simulated multi-timeframe confluence draw:
// a presentation heuristic, not a calibrated probability. The Strategy
// interface exists so a real model can replace it without touching the
// lifecycle manager.
package scoring

import "signalboard/src/model"

type Sentiment string

const (
	SentimentNeutral Sentiment = "neutral"
	SentimentBullish Sentiment = "bullish"
	SentimentBearish Sentiment = "bearish"
)

// BuyBias is the probability that a fresh coin flip lands on BUY.
func (s Sentiment) BuyBias() float64 {
	switch s {
	case SentimentBullish:
		return 0.65
	case SentimentBearish:
		return 0.35
	default:
		return 0.5
	}
}

// Context carries everything a strategy may score against.
type Context struct {
	Direction     model.Direction
	Sentiment     Sentiment
	TakeProfitPct float64 // fraction, e.g. 0.02
	StopLossPct   float64
}

// Result is a scored candidate: an integer confidence percentage, the raw
// confluence score behind it, and a human-readable rationale.
type Result struct {
	Confidence int
	Confluence int
	Timeframes []string
	Notes      string
}

type Strategy interface {
	Score(ctx Context) Result
}
