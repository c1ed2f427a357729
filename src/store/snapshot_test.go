package store

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"signalboard/src/model"
)

type memoryKV struct {
	data map[string]string
}

func newMemoryKV() *memoryKV {
	return &memoryKV{data: map[string]string{}}
}

func (m *memoryKV) Get(_ context.Context, key string) (string, bool, error) {
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memoryKV) Set(_ context.Context, key, value string) error {
	m.data[key] = value
	return nil
}

func (m *memoryKV) Remove(_ context.Context, key string) error {
	delete(m.data, key)
	return nil
}

func sampleTrade(id string, status model.TradeStatus) *model.Trade {
	return &model.Trade{
		Signal: model.Signal{
			ID:         id,
			Symbol:     "EURUSD",
			Direction:  model.DirectionBuy,
			Entry:      decimal.RequireFromString("1.09"),
			TakeProfit: decimal.RequireFromString("1.1118"),
			StopLoss:   decimal.RequireFromString("1.0791"),
		},
		Status:     status,
		OriginalSL: decimal.RequireFromString("1.0791"),
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	kv := newMemoryKV()
	snapshots := NewSnapshotStore(kv)
	ctx := context.Background()

	active := sampleTrade("t1", model.TradeStatusActive)
	closed := *sampleTrade("t0", model.TradeStatusClosed)
	closed.CloseReason = model.CloseTakeProfit

	events := []model.TradeEvent{
		{ID: 1, TradeID: "t1", Symbol: "EURUSD", Type: model.EventCreated, At: time.Now().UTC()},
		{ID: 2, TradeID: "t1", Symbol: "EURUSD", Type: model.EventActivated, At: time.Now().UTC()},
	}
	meta := model.BatchMeta{BatchCount: 3, SignalsInWindow: 1, WindowStart: time.Now().UTC()}

	if err := snapshots.SaveActiveTrade(ctx, active); err != nil {
		t.Fatalf("SaveActiveTrade: %v", err)
	}
	if err := snapshots.SaveHistory(ctx, []model.Trade{closed}); err != nil {
		t.Fatalf("SaveHistory: %v", err)
	}
	if err := snapshots.SaveEvents(ctx, events, 2); err != nil {
		t.Fatalf("SaveEvents: %v", err)
	}
	if err := snapshots.SaveBatch(ctx, meta); err != nil {
		t.Fatalf("SaveBatch: %v", err)
	}

	snap, err := snapshots.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if snap.ActiveTrade == nil || snap.ActiveTrade.ID != "t1" {
		t.Fatalf("active trade lost: %+v", snap.ActiveTrade)
	}
	if !snap.ActiveTrade.Entry.Equal(active.Entry) {
		t.Fatalf("entry price corrupted: %s", snap.ActiveTrade.Entry)
	}
	if len(snap.History) != 1 || snap.History[0].CloseReason != model.CloseTakeProfit {
		t.Fatalf("history lost: %+v", snap.History)
	}
	if len(snap.Events) != 2 || snap.LastEventID != 2 {
		t.Fatalf("events lost: %+v lastID=%d", snap.Events, snap.LastEventID)
	}
	if snap.Batch.BatchCount != 3 || snap.Batch.SignalsInWindow != 1 {
		t.Fatalf("batch meta lost: %+v", snap.Batch)
	}
}

func TestSnapshotSaveNilActiveRemoves(t *testing.T) {
	kv := newMemoryKV()
	snapshots := NewSnapshotStore(kv)
	ctx := context.Background()

	if err := snapshots.SaveActiveTrade(ctx, sampleTrade("t1", model.TradeStatusActive)); err != nil {
		t.Fatalf("SaveActiveTrade: %v", err)
	}
	if err := snapshots.SaveActiveTrade(ctx, nil); err != nil {
		t.Fatalf("SaveActiveTrade(nil): %v", err)
	}

	snap, err := snapshots.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if snap.ActiveTrade != nil {
		t.Fatalf("expected active trade removed, got %+v", snap.ActiveTrade)
	}
}

func TestSnapshotLoadToleratesCorruptBlobs(t *testing.T) {
	kv := newMemoryKV()
	kv.data["active_trade"] = `{not json`
	kv.data["history"] = `also not json`
	snapshots := NewSnapshotStore(kv)

	snap, err := snapshots.Load(context.Background())
	if err != nil {
		t.Fatalf("corrupt blobs must not fail Load: %v", err)
	}
	if snap.ActiveTrade != nil || len(snap.History) != 0 {
		t.Fatalf("corrupt blobs must read as empty: %+v", snap)
	}
}

func TestSnapshotLoadNormalizesLegacyReasons(t *testing.T) {
	kv := newMemoryKV()
	kv.data["history"] = `[{"id":"a","close_reason":"HIT_TP","status":"CLOSED"},` +
		`{"id":"b","close_reason":"EXPIRY","status":"CLOSED"}]`
	snapshots := NewSnapshotStore(kv)

	snap, err := snapshots.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(snap.History) != 2 {
		t.Fatalf("expected 2 history entries, got %d", len(snap.History))
	}
	if snap.History[0].CloseReason != model.CloseTakeProfit {
		t.Fatalf("HIT_TP not normalized: %s", snap.History[0].CloseReason)
	}
	if snap.History[1].CloseReason != model.CloseExpired {
		t.Fatalf("EXPIRY not normalized: %s", snap.History[1].CloseReason)
	}
}

func TestSnapshotReset(t *testing.T) {
	kv := newMemoryKV()
	snapshots := NewSnapshotStore(kv)
	ctx := context.Background()

	if err := snapshots.SaveActiveTrade(ctx, sampleTrade("t1", model.TradeStatusActive)); err != nil {
		t.Fatalf("SaveActiveTrade: %v", err)
	}
	if err := snapshots.SaveBatch(ctx, model.BatchMeta{BatchCount: 1}); err != nil {
		t.Fatalf("SaveBatch: %v", err)
	}

	if err := snapshots.Reset(ctx); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if len(kv.data) != 0 {
		t.Fatalf("expected empty store after reset, got %v", kv.data)
	}
}
