package model

import "time"

// BatchMeta tracks the current signal-issuance window. BatchCount is
// monotonic across windows; SignalsInWindow resets when a window rolls over.
type BatchMeta struct {
	BatchCount      int       `json:"batch_count"`
	WindowStart     time.Time `json:"window_start"`
	SignalsInWindow int       `json:"signals_in_window"`
	NextBatchAt     time.Time `json:"next_batch_at"`
}

// SessionSnapshot is the persisted shape of a trading session: the single
// active trade (nil when flat), closed-trade history, the event feed and
// batch counters. It is what the store round-trips across restarts.
type SessionSnapshot struct {
	ActiveTrade *Trade       `json:"active_trade"`
	History     []Trade      `json:"history"`
	Events      []TradeEvent `json:"events"`
	Batch       BatchMeta    `json:"batch"`
	LastEventID int64        `json:"last_event_id"`
}
