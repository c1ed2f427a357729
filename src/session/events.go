package session

import (
	"sort"
	"time"

	"signalboard/src/model"
)

// EventLog is the append-only lifecycle feed, trimmed to the most recent cap
// entries after every append. Entries are ordered by timestamp with the
// numeric ID as tie-break, since CREATED/ACTIVATED pairs share a timestamp.
type EventLog struct {
	cap     int
	nextID  int64
	entries []model.TradeEvent
}

func NewEventLog(capacity int) *EventLog {
	if capacity <= 0 {
		capacity = 400
	}
	return &EventLog{cap: capacity, nextID: 1}
}

func (l *EventLog) Append(evType model.EventType, tradeID, symbol, message string, batch int, at time.Time) model.TradeEvent {
	ev := model.TradeEvent{
		ID:      l.nextID,
		TradeID: tradeID,
		Symbol:  symbol,
		Type:    evType,
		Message: message,
		Batch:   batch,
		At:      at,
	}
	l.nextID++
	l.entries = append(l.entries, ev)

	if len(l.entries) > l.cap {
		l.entries = l.entries[len(l.entries)-l.cap:]
	}
	return ev
}

// Entries returns a copy in creation order.
func (l *EventLog) Entries() []model.TradeEvent {
	out := make([]model.TradeEvent, len(l.entries))
	copy(out, l.entries)
	return out
}

func (l *EventLog) LastID() int64 {
	return l.nextID - 1
}

// Restore seeds the log from a snapshot, re-sorting defensively since older
// snapshots were not guaranteed to be written in order.
func (l *EventLog) Restore(entries []model.TradeEvent, lastID int64) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].At.Equal(entries[j].At) {
			return entries[i].ID < entries[j].ID
		}
		return entries[i].At.Before(entries[j].At)
	})
	if len(entries) > l.cap {
		entries = entries[len(entries)-l.cap:]
	}

	l.entries = entries
	l.nextID = lastID + 1
	for _, ev := range entries {
		if ev.ID >= l.nextID {
			l.nextID = ev.ID + 1
		}
	}
}
