package model

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

type TradeStatus string

const (
	TradeStatusNew    TradeStatus = "NEW"
	TradeStatusActive TradeStatus = "ACTIVE"
	TradeStatusClosed TradeStatus = "CLOSED"
)

type CloseReason string

const (
	CloseTakeProfit CloseReason = "TAKE_PROFIT"
	CloseStopLoss   CloseReason = "STOP_LOSS"
	CloseCancelled  CloseReason = "CANCELLED"
	CloseExpired    CloseReason = "EXPIRED"
	CloseManual     CloseReason = "MANUAL"
)

// NormalizeCloseReason maps legacy persisted reason strings onto the canonical
// set. Older snapshots used short forms like "TP" or event-style "HIT_SL".
func NormalizeCloseReason(raw string) CloseReason {
	switch raw {
	case "TP", "HIT_TP", string(CloseTakeProfit):
		return CloseTakeProfit
	case "SL", "HIT_SL", string(CloseStopLoss):
		return CloseStopLoss
	case "CANCELED", string(CloseCancelled):
		return CloseCancelled
	case "EXPIRY", string(CloseExpired):
		return CloseExpired
	case string(CloseManual):
		return CloseManual
	default:
		return CloseReason(raw)
	}
}

var (
	ErrTradeNotActive    = errors.New("trade is not active")
	ErrTradeAlreadyOpen  = errors.New("trade already activated")
	ErrTradeAlreadyEnded = errors.New("trade already closed")
)

// Trade is a Signal accepted into lifecycle tracking.
//
// While ACTIVE only the stop-loss may move (break-even shift, trailing stop);
// entry and take-profit are frozen at activation. OriginalSL keeps the stop as
// set at activation so reward:risk reporting is independent of trailing.
type Trade struct {
	Signal

	Status      TradeStatus      `json:"status"`
	ActivatedAt time.Time        `json:"activated_at"`
	ClosedAt    *time.Time       `json:"closed_at,omitempty"`
	ExitPrice   *decimal.Decimal `json:"exit_price,omitempty"`
	CloseReason CloseReason      `json:"close_reason,omitempty"`
	RewardRisk  decimal.Decimal  `json:"reward_risk"`
	ResultPct   decimal.Decimal  `json:"result_pct"`
	BreakEvenAt *decimal.Decimal `json:"break_even_at,omitempty"`
	OriginalSL  decimal.Decimal  `json:"original_sl"`
	OpenedUnix  int64            `json:"opened_unix"`
}

// NewTrade seeds a trade from an accepted signal in status NEW.
func NewTrade(sig Signal, now time.Time) *Trade {
	return &Trade{
		Signal:     sig,
		Status:     TradeStatusNew,
		OriginalSL: sig.StopLoss,
		OpenedUnix: now.Unix(),
	}
}

// Activate moves NEW -> ACTIVE. Acceptance activates immediately; there is no
// observable pending state.
func (t *Trade) Activate(now time.Time) error {
	if t.Status != TradeStatusNew {
		return ErrTradeAlreadyOpen
	}
	t.Status = TradeStatusActive
	t.ActivatedAt = now
	return nil
}

// CloseAt moves ACTIVE -> CLOSED exactly once, recording exit price, reason,
// realized reward:risk and percentage result. RR uses the original entry/SL.
func (t *Trade) CloseAt(price decimal.Decimal, reason CloseReason, now time.Time) error {
	if t.Status == TradeStatusClosed {
		return ErrTradeAlreadyEnded
	}
	if t.Status != TradeStatusActive {
		return ErrTradeNotActive
	}

	t.Status = TradeStatusClosed
	t.ClosedAt = &now
	exit := price
	t.ExitPrice = &exit
	t.CloseReason = reason
	t.RewardRisk = rewardRisk(t.Entry, t.TakeProfit, t.OriginalSL)
	t.ResultPct = resultPct(t.Direction, t.Entry, price)
	return nil
}

// FavorableMove returns the signed fractional move in the trade's favor:
// positive when price has gone the trade's way, negative when adverse.
func (t *Trade) FavorableMove(price decimal.Decimal) decimal.Decimal {
	if t.Entry.IsZero() {
		return decimal.Zero
	}
	move := price.Sub(t.Entry).Div(t.Entry)
	if t.Direction == DirectionSell {
		return move.Neg()
	}
	return move
}

func rewardRisk(entry, tp, sl decimal.Decimal) decimal.Decimal {
	risk := entry.Sub(sl).Abs()
	if risk.IsZero() {
		return decimal.Zero
	}
	return tp.Sub(entry).Abs().Div(risk).Round(2)
}

func resultPct(dir Direction, entry, exit decimal.Decimal) decimal.Decimal {
	if entry.IsZero() {
		return decimal.Zero
	}
	pct := exit.Sub(entry).Div(entry).Mul(decimal.NewFromInt(100))
	if dir == DirectionSell {
		pct = pct.Neg()
	}
	return pct.Round(4)
}
