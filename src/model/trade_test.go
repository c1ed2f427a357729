package model

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func buySignal() Signal {
	return Signal{
		ID:         "sig-1",
		Symbol:     "EURUSD",
		Direction:  DirectionBuy,
		Entry:      decimal.RequireFromString("100"),
		TakeProfit: decimal.RequireFromString("102"),
		StopLoss:   decimal.RequireFromString("99"),
	}
}

func TestTradeLifecycleTakeProfit(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	trade := NewTrade(buySignal(), now)
	if trade.Status != TradeStatusNew {
		t.Fatalf("expected status NEW, got %s", trade.Status)
	}
	if !trade.OriginalSL.Equal(decimal.RequireFromString("99")) {
		t.Fatalf("expected original SL 99, got %s", trade.OriginalSL)
	}

	if err := trade.Activate(now); err != nil {
		t.Fatalf("unexpected error activating trade: %v", err)
	}
	if trade.Status != TradeStatusActive {
		t.Fatalf("expected status ACTIVE, got %s", trade.Status)
	}

	closedAt := now.Add(5 * time.Minute)
	if err := trade.CloseAt(decimal.RequireFromString("102"), CloseTakeProfit, closedAt); err != nil {
		t.Fatalf("unexpected error closing trade: %v", err)
	}

	if trade.Status != TradeStatusClosed {
		t.Fatalf("expected status CLOSED, got %s", trade.Status)
	}
	if trade.ExitPrice == nil || !trade.ExitPrice.Equal(decimal.RequireFromString("102")) {
		t.Fatalf("unexpected exit price: %v", trade.ExitPrice)
	}
	// reward 2 against risk 1
	if !trade.RewardRisk.Equal(decimal.RequireFromString("2")) {
		t.Fatalf("expected reward:risk 2, got %s", trade.RewardRisk)
	}
	if !trade.ResultPct.Equal(decimal.RequireFromString("2")) {
		t.Fatalf("expected result 2%%, got %s", trade.ResultPct)
	}
}

func TestTradeCloseOnlyOnce(t *testing.T) {
	now := time.Now()
	trade := NewTrade(buySignal(), now)
	if err := trade.Activate(now); err != nil {
		t.Fatalf("unexpected error activating trade: %v", err)
	}
	if err := trade.CloseAt(decimal.RequireFromString("99"), CloseStopLoss, now); err != nil {
		t.Fatalf("unexpected error closing trade: %v", err)
	}

	err := trade.CloseAt(decimal.RequireFromString("102"), CloseTakeProfit, now)
	if !errors.Is(err, ErrTradeAlreadyEnded) {
		t.Fatalf("expected ErrTradeAlreadyEnded, got %v", err)
	}
	if trade.CloseReason != CloseStopLoss {
		t.Fatalf("close reason overwritten: %s", trade.CloseReason)
	}
}

func TestTradeCloseRequiresActive(t *testing.T) {
	trade := NewTrade(buySignal(), time.Now())

	err := trade.CloseAt(decimal.RequireFromString("102"), CloseManual, time.Now())
	if !errors.Is(err, ErrTradeNotActive) {
		t.Fatalf("expected ErrTradeNotActive, got %v", err)
	}
}

func TestTradeActivateOnlyOnce(t *testing.T) {
	now := time.Now()
	trade := NewTrade(buySignal(), now)
	if err := trade.Activate(now); err != nil {
		t.Fatalf("unexpected error activating trade: %v", err)
	}

	if err := trade.Activate(now); !errors.Is(err, ErrTradeAlreadyOpen) {
		t.Fatalf("expected ErrTradeAlreadyOpen, got %v", err)
	}
}

func TestSellResultPctIsNegatedMove(t *testing.T) {
	sig := buySignal()
	sig.Direction = DirectionSell
	sig.TakeProfit = decimal.RequireFromString("98")
	sig.StopLoss = decimal.RequireFromString("101")

	now := time.Now()
	trade := NewTrade(sig, now)
	if err := trade.Activate(now); err != nil {
		t.Fatalf("unexpected error activating trade: %v", err)
	}
	if err := trade.CloseAt(decimal.RequireFromString("98"), CloseTakeProfit, now); err != nil {
		t.Fatalf("unexpected error closing trade: %v", err)
	}

	if !trade.ResultPct.Equal(decimal.RequireFromString("2")) {
		t.Fatalf("expected +2%% on winning short, got %s", trade.ResultPct)
	}
}

func TestRewardRiskUsesOriginalStop(t *testing.T) {
	now := time.Now()
	trade := NewTrade(buySignal(), now)
	if err := trade.Activate(now); err != nil {
		t.Fatalf("unexpected error activating trade: %v", err)
	}

	// a trailing stop tightened the live SL, the original stays
	trade.StopLoss = decimal.RequireFromString("101")

	if err := trade.CloseAt(decimal.RequireFromString("102"), CloseTakeProfit, now); err != nil {
		t.Fatalf("unexpected error closing trade: %v", err)
	}
	if !trade.RewardRisk.Equal(decimal.RequireFromString("2")) {
		t.Fatalf("expected reward:risk from original SL, got %s", trade.RewardRisk)
	}
}

func TestFavorableMove(t *testing.T) {
	now := time.Now()
	buy := NewTrade(buySignal(), now)

	move := buy.FavorableMove(decimal.RequireFromString("101"))
	if !move.Equal(decimal.RequireFromString("0.01")) {
		t.Fatalf("expected +0.01 for BUY at 101, got %s", move)
	}
	move = buy.FavorableMove(decimal.RequireFromString("99.5"))
	if !move.Equal(decimal.RequireFromString("-0.005")) {
		t.Fatalf("expected -0.005 for BUY at 99.5, got %s", move)
	}

	sig := buySignal()
	sig.Direction = DirectionSell
	sell := NewTrade(sig, now)
	move = sell.FavorableMove(decimal.RequireFromString("99"))
	if !move.Equal(decimal.RequireFromString("0.01")) {
		t.Fatalf("expected +0.01 for SELL at 99, got %s", move)
	}
}

func TestNormalizeCloseReason(t *testing.T) {
	cases := map[string]CloseReason{
		"TP":          CloseTakeProfit,
		"HIT_TP":      CloseTakeProfit,
		"TAKE_PROFIT": CloseTakeProfit,
		"SL":          CloseStopLoss,
		"HIT_SL":      CloseStopLoss,
		"CANCELED":    CloseCancelled,
		"CANCELLED":   CloseCancelled,
		"EXPIRY":      CloseExpired,
		"EXPIRED":     CloseExpired,
		"MANUAL":      CloseManual,
		"WHATEVER":    CloseReason("WHATEVER"),
	}
	for raw, want := range cases {
		if got := NormalizeCloseReason(raw); got != want {
			t.Fatalf("NormalizeCloseReason(%q) = %q, want %q", raw, got, want)
		}
	}
}

func TestDirectionOpposite(t *testing.T) {
	if DirectionBuy.Opposite() != DirectionSell {
		t.Fatal("expected BUY opposite to be SELL")
	}
	if DirectionSell.Opposite() != DirectionBuy {
		t.Fatal("expected SELL opposite to be BUY")
	}
}
