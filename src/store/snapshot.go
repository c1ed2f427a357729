package store

import (
	"context"
	"encoding/json"

	logger "github.com/sirupsen/logrus"

	"signalboard/src/model"
)

const (
	keyActiveTrade = "active_trade"
	keyHistory     = "history"
	keyEvents      = "events"
	keyBatchMeta   = "batch_meta"
)

// KV is the minimal key-value contract the snapshot layer needs. Implemented
// by KVRepository; tests substitute an in-memory map.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// SnapshotStore persists and restores session state as JSON blobs. Restore is
// forgiving: a missing or corrupt blob falls back to its zero value so a bad
// snapshot can never prevent startup.
type SnapshotStore struct {
	kv KV
}

func NewSnapshotStore(kv KV) *SnapshotStore {
	return &SnapshotStore{kv: kv}
}

// eventsBlob keeps the event feed and its ID sequence together so they cannot
// drift apart across a restore.
type eventsBlob struct {
	Events []model.TradeEvent `json:"events"`
	LastID int64              `json:"last_id"`
}

func (s *SnapshotStore) SaveActiveTrade(ctx context.Context, t *model.Trade) error {
	if t == nil {
		return s.kv.Remove(ctx, keyActiveTrade)
	}
	return s.setJSON(ctx, keyActiveTrade, t)
}

func (s *SnapshotStore) SaveHistory(ctx context.Context, history []model.Trade) error {
	return s.setJSON(ctx, keyHistory, history)
}

func (s *SnapshotStore) SaveEvents(ctx context.Context, events []model.TradeEvent, lastID int64) error {
	return s.setJSON(ctx, keyEvents, eventsBlob{Events: events, LastID: lastID})
}

func (s *SnapshotStore) SaveBatch(ctx context.Context, meta model.BatchMeta) error {
	return s.setJSON(ctx, keyBatchMeta, meta)
}

// Load rebuilds a session snapshot from whatever blobs survive. Close reasons
// from older snapshots are normalized to the canonical enum here, at the
// persistence boundary.
func (s *SnapshotStore) Load(ctx context.Context) (model.SessionSnapshot, error) {
	var snap model.SessionSnapshot

	var active model.Trade
	if ok := s.getJSON(ctx, keyActiveTrade, &active); ok {
		snap.ActiveTrade = &active
	}
	s.getJSON(ctx, keyHistory, &snap.History)

	var blob eventsBlob
	if s.getJSON(ctx, keyEvents, &blob) {
		snap.Events = blob.Events
		snap.LastEventID = blob.LastID
	}
	s.getJSON(ctx, keyBatchMeta, &snap.Batch)

	if snap.ActiveTrade != nil {
		snap.ActiveTrade.CloseReason = model.NormalizeCloseReason(string(snap.ActiveTrade.CloseReason))
	}
	for i := range snap.History {
		snap.History[i].CloseReason = model.NormalizeCloseReason(string(snap.History[i].CloseReason))
	}

	return snap, nil
}

// Reset removes every persisted blob.
func (s *SnapshotStore) Reset(ctx context.Context) error {
	for _, key := range []string{keyActiveTrade, keyHistory, keyEvents, keyBatchMeta} {
		if err := s.kv.Remove(ctx, key); err != nil {
			return err
		}
	}
	return nil
}

func (s *SnapshotStore) setJSON(ctx context.Context, key string, v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, key, string(raw))
}

// getJSON reports whether v was populated. Corrupt JSON is logged and treated
// as absent.
func (s *SnapshotStore) getJSON(ctx context.Context, key string, v interface{}) bool {
	raw, ok, err := s.kv.Get(ctx, key)
	if err != nil || !ok {
		return false
	}

	if err := json.Unmarshal([]byte(raw), v); err != nil {
		logger.WithFields(map[string]interface{}{
			"store": "SnapshotStore",
			"key":   key,
		}).WithError(err).Warn("Discarding corrupt snapshot blob")
		return false
	}
	return true
}
