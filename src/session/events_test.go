package session

import (
	"testing"
	"time"

	"signalboard/src/model"
)

func TestEventLogAppendAndTrim(t *testing.T) {
	log := NewEventLog(3)
	at := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		log.Append(model.EventInfo, "t1", "EURUSD", "msg", 1, at.Add(time.Duration(i)*time.Second))
	}

	entries := log.Entries()
	if len(entries) != 3 {
		t.Fatalf("expected log trimmed to 3, got %d", len(entries))
	}
	// oldest dropped, newest kept
	if entries[0].ID != 3 || entries[2].ID != 5 {
		t.Fatalf("unexpected IDs after trim: %d..%d", entries[0].ID, entries[2].ID)
	}
	if log.LastID() != 5 {
		t.Fatalf("expected last ID 5, got %d", log.LastID())
	}
}

func TestEventLogIDsKeepClimbingAfterTrim(t *testing.T) {
	log := NewEventLog(2)
	at := time.Now()

	for i := 0; i < 4; i++ {
		log.Append(model.EventInfo, "", "", "msg", 1, at)
	}
	ev := log.Append(model.EventInfo, "", "", "msg", 1, at)
	if ev.ID != 5 {
		t.Fatalf("expected ID 5, got %d", ev.ID)
	}
}

func TestEventLogRestoreReorders(t *testing.T) {
	log := NewEventLog(10)
	at := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)

	log.Restore([]model.TradeEvent{
		{ID: 3, Type: model.EventActivated, At: at.Add(time.Second)},
		{ID: 2, Type: model.EventCreated, At: at.Add(time.Second)},
		{ID: 1, Type: model.EventInfo, At: at},
	}, 3)

	entries := log.Entries()
	if entries[0].ID != 1 || entries[1].ID != 2 || entries[2].ID != 3 {
		t.Fatalf("expected chronological order with ID tie-break, got %v", entries)
	}

	ev := log.Append(model.EventInfo, "", "", "next", 1, at.Add(time.Minute))
	if ev.ID != 4 {
		t.Fatalf("expected continuation from restored last ID, got %d", ev.ID)
	}
}

func TestEventLogRestoreTrimsToCap(t *testing.T) {
	log := NewEventLog(2)
	at := time.Now()

	log.Restore([]model.TradeEvent{
		{ID: 1, At: at},
		{ID: 2, At: at.Add(time.Second)},
		{ID: 3, At: at.Add(2 * time.Second)},
	}, 3)

	entries := log.Entries()
	if len(entries) != 2 || entries[0].ID != 2 {
		t.Fatalf("expected newest 2 entries kept, got %v", entries)
	}
}
