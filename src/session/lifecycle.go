package session

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"signalboard/src/model"
	"signalboard/src/scoring"
	signalgen "signalboard/src/signal"
)

// evaluateActive applies the monitoring rules to the open trade, in fixed
// order: expiry, take-profit, stop-loss, stop adjustments (break-even then
// trailing), adverse-move cancellation with optional same-tick reversal.
// Take-profit is checked before stop-loss: when a pathological price crosses
// both on one tick, the trade closes HIT_TP. Callers hold mu.
func (s *Session) evaluateActive(ctx context.Context, price decimal.Decimal, now time.Time) {
	t := s.active

	if s.cfg.MaxHold > 0 && now.Sub(t.ActivatedAt) >= s.cfg.MaxHold {
		s.closeActive(ctx, price, model.CloseExpired, model.EventExpired,
			fmt.Sprintf("%s %s expired after %s, closed at %s",
				t.Direction, t.Symbol, s.cfg.MaxHold, price.String()))
		return
	}

	if hitTakeProfit(t, price) {
		s.closeActive(ctx, price, model.CloseTakeProfit, model.EventHitTP,
			fmt.Sprintf("%s %s hit take-profit at %s", t.Direction, t.Symbol, price.String()))
		return
	}

	if hitStopLoss(t, price) {
		s.closeActive(ctx, price, model.CloseStopLoss, model.EventHitSL,
			fmt.Sprintf("%s %s hit stop-loss at %s", t.Direction, t.Symbol, price.String()))
		return
	}

	s.applyBreakEven(ctx, t, price)
	s.applyTrailing(ctx, t, price)

	adverse := t.FavorableMove(price).Neg()
	if s.cfg.AdverseCancelPct > 0 && adverse.GreaterThanOrEqual(decimal.NewFromFloat(s.cfg.AdverseCancelPct)) {
		s.closeActive(ctx, price, model.CloseCancelled, model.EventCancelled,
			fmt.Sprintf("%s %s cancelled on %s%% adverse move at %s",
				t.Direction, t.Symbol, adverse.Mul(decimal.NewFromInt(100)).Round(2).String(), price.String()))
		s.tryReversal(ctx, t, price, now)
	}
}

func hitTakeProfit(t *model.Trade, price decimal.Decimal) bool {
	if t.Direction == model.DirectionBuy {
		return price.GreaterThanOrEqual(t.TakeProfit)
	}
	return price.LessThanOrEqual(t.TakeProfit)
}

func hitStopLoss(t *model.Trade, price decimal.Decimal) bool {
	if t.Direction == model.DirectionBuy {
		return price.LessThanOrEqual(t.StopLoss)
	}
	return price.GreaterThanOrEqual(t.StopLoss)
}

// applyBreakEven moves the stop to the entry once the favorable move reaches
// the trigger. The marker makes it fire once; trailing may still tighten the
// stop afterwards.
func (s *Session) applyBreakEven(ctx context.Context, t *model.Trade, price decimal.Decimal) {
	if s.cfg.BreakEvenPct <= 0 || t.BreakEvenAt != nil {
		return
	}
	if t.FavorableMove(price).LessThan(decimal.NewFromFloat(s.cfg.BreakEvenPct)) {
		return
	}

	t.StopLoss = t.Entry
	marker := price
	t.BreakEvenAt = &marker
	s.appendEvent(ctx, model.EventInfo, t.ID, t.Symbol,
		fmt.Sprintf("%s stop moved to break-even at %s", t.Symbol, t.Entry.String()))
	s.persistActive(ctx)
}

// applyTrailing recomputes a candidate stop at price*(1∓lock) once the trail
// trigger is reached, and moves the stop only when it strictly tightens:
// never down for BUY, never up for SELL.
func (s *Session) applyTrailing(ctx context.Context, t *model.Trade, price decimal.Decimal) {
	if s.cfg.TrailTriggerPct <= 0 {
		return
	}
	if t.FavorableMove(price).LessThan(decimal.NewFromFloat(s.cfg.TrailTriggerPct)) {
		return
	}

	one := decimal.NewFromInt(1)
	lock := decimal.NewFromFloat(s.cfg.TrailLockPct)

	var candidate decimal.Decimal
	var improves bool
	if t.Direction == model.DirectionBuy {
		candidate = price.Mul(one.Sub(lock))
	} else {
		candidate = price.Mul(one.Add(lock))
	}
	if ins, ok := model.FindInstrument(t.Symbol); ok {
		candidate = ins.RoundPrice(candidate)
	}

	if t.Direction == model.DirectionBuy {
		improves = candidate.GreaterThan(t.StopLoss)
	} else {
		improves = candidate.LessThan(t.StopLoss)
	}
	if !improves {
		return
	}

	t.StopLoss = candidate
	s.appendEvent(ctx, model.EventInfo, t.ID, t.Symbol,
		fmt.Sprintf("%s trailing stop moved to %s", t.Symbol, candidate.String()))
	s.persistActive(ctx)
}

// closeActive finalizes the open trade, prepends it to history and emits the
// terminal event. Callers hold mu.
func (s *Session) closeActive(ctx context.Context, price decimal.Decimal, reason model.CloseReason, evType model.EventType, message string) {
	t := s.active
	if t == nil {
		return
	}
	if err := t.CloseAt(price, reason, s.now()); err != nil {
		s.log.WithError(err).WithField("trade_id", t.ID).Error("failed to close trade")
		return
	}

	s.history = append([]model.Trade{*t}, s.history...)
	if len(s.history) > s.cfg.HistoryCap {
		s.history = s.history[:s.cfg.HistoryCap]
	}
	s.active = nil
	s.signals = nil

	s.appendEvent(ctx, evType, t.ID, t.Symbol, message)
	s.persistActive(ctx)
	s.persistHistory(ctx)
}

// tryReversal scores the opposite direction right after an adverse-move
// cancellation and, above the reversal bar, opens the opposite trade at the
// current price in the same tick. The cancelled trade is already closed, so
// the single-active invariant holds throughout. Reversals are a lifecycle
// continuation and do not consume batch quota.
func (s *Session) tryReversal(ctx context.Context, closed *model.Trade, price decimal.Decimal, now time.Time) {
	opposite := closed.Direction.Opposite()

	result := s.strategy.Score(scoring.Context{
		Direction:     opposite,
		Sentiment:     s.sentiment,
		TakeProfitPct: s.cfg.TakeProfitPct,
		StopLossPct:   s.cfg.StopLossPct,
	})
	if result.Confidence < s.cfg.ReversalConfidence {
		s.appendEvent(ctx, model.EventInfo, "", closed.Symbol,
			fmt.Sprintf("no reversal on %s: %s confidence %d%% below %d%% bar",
				closed.Symbol, opposite, result.Confidence, s.cfg.ReversalConfidence))
		return
	}

	ins, ok := model.FindInstrument(closed.Symbol)
	if !ok {
		return
	}
	tp, sl := signalgen.Offsets(ins, opposite, price, s.cfg.TakeProfitPct, s.cfg.StopLossPct)

	sig := model.Signal{
		ID:         uuid.NewString(),
		Symbol:     ins.Symbol,
		Display:    ins.Display,
		Direction:  opposite,
		Entry:      price,
		TakeProfit: tp,
		StopLoss:   sl,
		Confidence: result.Confidence,
		Confluence: result.Confluence,
		Notes:      result.Notes,
		Batch:      s.batch.Meta().BatchCount,
		CreatedAt:  now,
	}
	s.openTrade(ctx, sig, now)
}

// openTrade promotes an accepted signal to the active trade, emitting
// CREATED and ACTIVATED back-to-back. Opening while a trade is active is a
// contract violation and refused loudly. Callers hold mu.
func (s *Session) openTrade(ctx context.Context, sig model.Signal, now time.Time) {
	if s.active != nil {
		s.log.WithField("trade_id", s.active.ID).Error("refusing to open a second active trade")
		return
	}

	t := model.NewTrade(sig, now)
	s.appendEvent(ctx, model.EventCreated, t.ID, t.Symbol,
		fmt.Sprintf("%s %s signal created (confidence %d%%)", sig.Direction, sig.Symbol, sig.Confidence))

	if err := t.Activate(now); err != nil {
		s.log.WithError(err).Error("failed to activate trade")
		return
	}
	s.appendEvent(ctx, model.EventActivated, t.ID, t.Symbol,
		fmt.Sprintf("%s %s activated: entry %s, TP %s, SL %s",
			sig.Direction, sig.Symbol, sig.Entry.String(), sig.TakeProfit.String(), sig.StopLoss.String()))

	s.active = t
	s.signals = []model.Signal{sig}
	s.lastPrice = sig.Entry
	s.persistActive(ctx)
}
