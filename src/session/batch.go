package session

import (
	"time"

	"signalboard/src/model"
)

// BatchScheduler partitions time into fixed windows and limits how many
// signals may originate per window. It gates origination only; whether a
// trade may open is the lifecycle manager's call.
type BatchScheduler struct {
	window   time.Duration
	capacity int
	meta     model.BatchMeta
}

func NewBatchScheduler(window time.Duration, capacity int) *BatchScheduler {
	if window <= 0 {
		window = 30 * time.Minute
	}
	if capacity <= 0 {
		capacity = 2
	}
	return &BatchScheduler{window: window, capacity: capacity}
}

// EnsureWindow rolls the window over when now has passed its end (or none has
// started yet): the per-window count resets and the batch counter increments.
// Reports whether a new window started.
func (b *BatchScheduler) EnsureWindow(now time.Time) bool {
	if !b.meta.WindowStart.IsZero() && now.Sub(b.meta.WindowStart) < b.window {
		return false
	}

	b.meta.BatchCount++
	b.meta.WindowStart = now
	b.meta.SignalsInWindow = 0
	b.meta.NextBatchAt = now.Add(b.window)
	return true
}

// CanIssue reports whether the current window still has quota.
func (b *BatchScheduler) CanIssue() bool {
	return b.meta.SignalsInWindow < b.capacity
}

func (b *BatchScheduler) RecordIssue() {
	b.meta.SignalsInWindow++
}

func (b *BatchScheduler) Meta() model.BatchMeta {
	return b.meta
}

func (b *BatchScheduler) Restore(meta model.BatchMeta) {
	b.meta = meta
}
