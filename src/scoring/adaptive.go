package scoring

import "signalboard/src/model"

const (
	adaptLookback   = 10
	winRateTighten  = 0.45
	winRateLoosen   = 0.60
	tightenScale    = 0.8
	loosenScale     = 1.2
	confidenceShift = 5
)

// Adjustment is the outcome of the self-tuning feedback loop: scale applied
// to TP/SL distances and a delta added to the minimum-confidence bar.
type Adjustment struct {
	TargetScale     float64
	ConfidenceDelta int
}

func neutralAdjustment() Adjustment {
	return Adjustment{TargetScale: 1, ConfidenceDelta: 0}
}

// AdaptThresholds inspects the recent closed-trade history. A cold streak
// (win rate < 45%) tightens targets and raises the confidence bar; a hot
// streak (> 60%) loosens targets and lowers it. Fewer than three closed
// trades is not enough evidence to adjust anything.
func AdaptThresholds(history []model.Trade) Adjustment {
	n := len(history)
	if n > adaptLookback {
		n = adaptLookback
	}
	if n < 3 {
		return neutralAdjustment()
	}

	wins := 0
	for _, t := range history[:n] {
		if t.CloseReason == model.CloseTakeProfit || t.ResultPct.IsPositive() {
			wins++
		}
	}

	rate := float64(wins) / float64(n)
	switch {
	case rate < winRateTighten:
		return Adjustment{TargetScale: tightenScale, ConfidenceDelta: confidenceShift}
	case rate > winRateLoosen:
		return Adjustment{TargetScale: loosenScale, ConfidenceDelta: -confidenceShift}
	default:
		return neutralAdjustment()
	}
}
