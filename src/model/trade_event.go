package model

import "time"

type EventType string

const (
	EventCreated   EventType = "CREATED"
	EventActivated EventType = "ACTIVATED"
	EventHitTP     EventType = "HIT_TP"
	EventHitSL     EventType = "HIT_SL"
	EventCancelled EventType = "CANCELLED"
	EventExpired   EventType = "EXPIRED"
	EventInfo      EventType = "INFO"
)

// TradeEvent is one entry of the append-only lifecycle feed. IDs are a
// monotonic sequence and double as the tie-break when two events share a
// timestamp (CREATED and ACTIVATED are emitted back-to-back).
type TradeEvent struct {
	ID      int64     `json:"id"`
	TradeID string    `json:"trade_id,omitempty"`
	Symbol  string    `json:"symbol,omitempty"`
	Type    EventType `json:"type"`
	Message string    `json:"message"`
	Batch   int       `json:"batch"`
	At      time.Time `json:"at"`
}
