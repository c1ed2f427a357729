package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Direction string

const (
	DirectionBuy  Direction = "BUY"
	DirectionSell Direction = "SELL"
)

// Opposite returns the reversed direction, used by the cancel-and-reverse path.
func (d Direction) Opposite() Direction {
	if d == DirectionBuy {
		return DirectionSell
	}
	return DirectionBuy
}

// Signal is a proposed trade that has not been committed to lifecycle tracking.
// Immutable once created; a Signal becomes the seed of a Trade when accepted.
type Signal struct {
	ID         string          `json:"id"`
	Symbol     string          `json:"symbol"`
	Display    string          `json:"display"`
	Direction  Direction       `json:"direction"`
	Entry      decimal.Decimal `json:"entry"`
	TakeProfit decimal.Decimal `json:"tp"`
	StopLoss   decimal.Decimal `json:"sl"`
	Confidence int             `json:"confidence"`
	Confluence int             `json:"confluence"`
	Notes      string          `json:"notes"`
	Batch      int             `json:"batch"`
	CreatedAt  time.Time       `json:"created_at"`
}
