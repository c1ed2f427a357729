// Package session owns the trading-signal lifecycle: one aggregate holds the
// single active trade, closed-trade history, the event feed and batch
// counters, and advances them from a recurring tick.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"signalboard/src/model"
	"signalboard/src/pricing"
	"signalboard/src/scoring"
	signalgen "signalboard/src/signal"
)

// Store is the persistence contract the session snapshots through. All
// methods must tolerate being called on every mutation.
type Store interface {
	SaveActiveTrade(ctx context.Context, t *model.Trade) error
	SaveHistory(ctx context.Context, history []model.Trade) error
	SaveEvents(ctx context.Context, events []model.TradeEvent, lastID int64) error
	SaveBatch(ctx context.Context, meta model.BatchMeta) error
	Load(ctx context.Context) (model.SessionSnapshot, error)
}

var (
	ErrNoActiveTrade  = errors.New("no active trade")
	ErrAlreadyRunning = errors.New("session already running")
)

// View is the read surface consumed by the presentation layer.
type View struct {
	Running     bool            `json:"running"`
	Loading     bool            `json:"loading"`
	SoftError   string          `json:"soft_error,omitempty"`
	Signals     []model.Signal  `json:"signals"`
	ActiveTrade *model.Trade    `json:"active_trade"`
	Batch       model.BatchMeta `json:"batch"`
}

// Session is the aggregate described above. All state behind mu; the tick
// loop is the single writer, with command methods (Stop, CloseActiveTrade)
// serialized through the same mutex.
type Session struct {
	mu sync.Mutex

	cfg      Config
	log      *logrus.Entry
	prices   pricing.Source
	strategy scoring.Strategy
	gen      *signalgen.Generator
	store    Store

	instruments []model.Instrument
	sentiment   scoring.Sentiment

	events    *EventLog
	batch     *BatchScheduler
	active    *model.Trade
	history   []model.Trade
	signals   []model.Signal
	lastPrice decimal.Decimal

	softErr string
	loading bool
	running bool

	// generation marks in-flight tick results stale: it is bumped on Stop so
	// a tick that was awaiting a price when the session stopped discards its
	// side effects.
	generation uint64
	cancel     context.CancelFunc
	now        func() time.Time

	subMu sync.Mutex
	subs  []chan model.TradeEvent
}

func New(cfg Config, prices pricing.Source, strategy scoring.Strategy, st Store, log *logrus.Entry) *Session {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	if cfg.HistoryCap <= 0 {
		cfg.HistoryCap = 50
	}

	instruments := lo.Filter(model.Catalog(), func(ins model.Instrument, _ int) bool {
		return lo.Contains(cfg.Instruments, ins.Symbol)
	})

	s := &Session{
		cfg:         cfg,
		log:         log,
		prices:      prices,
		strategy:    strategy,
		store:       st,
		instruments: instruments,
		sentiment:   scoring.Sentiment(cfg.Sentiment),
		events:      NewEventLog(cfg.EventLogCap),
		batch:       NewBatchScheduler(cfg.BatchWindow, cfg.BatchCap),
		now:         time.Now,
	}
	s.gen = signalgen.NewGenerator(log.WithField("component", "generator"), prices, strategy, 0)
	return s
}

// SetClock overrides the time source for the session and its generator.
// For tests.
func (s *Session) SetClock(now func() time.Time) {
	s.now = now
	s.gen.SetClock(now)
}

// Restore seeds state from the persisted snapshot. Safe to call on a fresh
// store; every missing piece just stays at its default.
func (s *Session) Restore(ctx context.Context) error {
	if s.store == nil {
		return nil
	}
	snap, err := s.store.Load(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.history = snap.History
	if len(s.history) > s.cfg.HistoryCap {
		s.history = s.history[:s.cfg.HistoryCap]
	}
	s.events.Restore(snap.Events, snap.LastEventID)
	s.batch.Restore(snap.Batch)

	if snap.ActiveTrade != nil && snap.ActiveTrade.Status == model.TradeStatusActive {
		s.active = snap.ActiveTrade
		s.signals = []model.Signal{snap.ActiveTrade.Signal}
		s.lastPrice = snap.ActiveTrade.Entry
	}

	s.log.WithFields(logrus.Fields{
		"history": len(s.history),
		"events":  len(snap.Events),
		"active":  s.active != nil,
	}).Info("session state restored")
	return nil
}

// Run drives the evaluation loop until ctx is cancelled.
func (s *Session) Run(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return ErrAlreadyRunning
	}
	s.running = true
	s.mu.Unlock()

	s.log.WithFields(logrus.Fields{
		"profile": s.cfg.Profile,
		"tick":    s.cfg.TickInterval.String(),
		"window":  s.cfg.BatchWindow.String(),
	}).Info("session loop starting")

	ticker := time.NewTicker(s.cfg.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("session loop stopped")
			s.halt()
			return nil
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}

// Start runs the loop in the background; Stop cancels it.
func (s *Session) Start(ctx context.Context) {
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	go func() {
		if err := s.Run(runCtx); err != nil {
			s.log.WithError(err).Error("session loop exited")
		}
	}()
}

// Stop cancels the loop and marks any in-flight tick stale. History and the
// event log survive; the active trade and visible signals are cleared.
func (s *Session) Stop() {
	s.mu.Lock()
	s.generation++
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}
}

func (s *Session) halt() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.running = false
	s.loading = false
	s.softErr = ""
	s.active = nil
	s.signals = nil
	s.persistActive(context.Background())
}

// Tick performs one evaluation cycle. Phases are strictly ordered: window
// rollover, then either active-trade monitoring or quota-gated generation;
// the two never interleave within a tick.
func (s *Session) Tick(ctx context.Context) {
	s.mu.Lock()
	gen := s.generation
	now := s.now()

	if s.batch.EnsureWindow(now) {
		s.persistBatch(ctx)
		s.log.WithField("batch", s.batch.Meta().BatchCount).Debug("batch window started")
	}

	if s.active != nil {
		apiSymbol := s.apiSymbolFor(s.active.Symbol)
		s.mu.Unlock()

		price, err := s.prices.GetPrice(ctx, apiSymbol)

		s.mu.Lock()
		defer s.mu.Unlock()
		if s.generation != gen {
			return // session stopped while awaiting the price
		}
		if err != nil || price.LessThanOrEqual(decimal.Zero) {
			s.softErr = "failed to fetch current price"
			s.log.WithError(err).Warn("skipping cycle, price unavailable")
			return
		}
		s.softErr = ""
		s.lastPrice = price
		if s.active != nil {
			s.evaluateActive(ctx, price, now)
		}
		return
	}

	if !s.batch.CanIssue() {
		s.mu.Unlock()
		return
	}

	s.loading = true
	s.softErr = ""
	params := signalgen.Params{
		Instruments:   s.instruments,
		Sentiment:     s.sentiment,
		TakeProfitPct: s.cfg.TakeProfitPct,
		StopLossPct:   s.cfg.StopLossPct,
		MinConfidence: s.cfg.MinConfidence,
		History:       s.historyCopy(),
		Adaptive:      s.cfg.AdaptiveTargets,
		Batch:         s.batch.Meta().BatchCount,
	}
	s.mu.Unlock()

	sig, rejection, err := s.gen.Generate(ctx, params)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if s.generation != gen {
		return
	}

	switch {
	case err != nil:
		s.softErr = "error fetching live price"
	case rejection != nil:
		if rejection.Reason != "" {
			s.appendEvent(ctx, model.EventInfo, "", "", rejection.Reason)
		}
	case sig != nil:
		s.batch.RecordIssue()
		s.persistBatch(ctx)
		s.openTrade(ctx, *sig, now)
	}
}

// CloseActiveTrade closes the open position at the last known price with an
// explicit reason (MANUAL when empty).
func (s *Session) CloseActiveTrade(ctx context.Context, reason model.CloseReason) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active == nil {
		return ErrNoActiveTrade
	}
	if reason == "" {
		reason = model.CloseManual
	}

	price := s.lastPrice
	if price.LessThanOrEqual(decimal.Zero) {
		price = s.active.Entry
	}

	t := s.active
	s.closeActive(ctx, price, reason, model.EventInfo,
		t.Symbol+" trade closed on request at "+price.String())
	return nil
}

// Snapshot returns the presentation view of the session.
func (s *Session) Snapshot() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	view := View{
		Running:   s.running,
		Loading:   s.loading,
		SoftError: s.softErr,
		Signals:   append([]model.Signal(nil), s.signals...),
		Batch:     s.batch.Meta(),
	}
	if s.active != nil {
		active := *s.active
		view.ActiveTrade = &active
	}
	return view
}

// Events returns the lifecycle feed in creation order.
func (s *Session) Events() []model.TradeEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.events.Entries()
}

// History returns closed trades, most recent first.
func (s *Session) History() []model.Trade {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.historyCopy()
}

// Subscribe registers a listener for new trade events and returns the channel
// and an unsubscribe function. Slow subscribers drop events rather than
// blocking the tick.
func (s *Session) Subscribe(buffer int) (<-chan model.TradeEvent, func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	ch := make(chan model.TradeEvent, buffer)
	s.subs = append(s.subs, ch)

	unsub := func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		for i, c := range s.subs {
			if c == ch {
				close(c)
				s.subs = append(s.subs[:i], s.subs[i+1:]...)
				break
			}
		}
	}
	return ch, unsub
}

func (s *Session) publish(ev model.TradeEvent) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// appendEvent records an event under the current batch number, persists the
// feed and fans it out to subscribers. Callers hold mu.
func (s *Session) appendEvent(ctx context.Context, evType model.EventType, tradeID, symbol, message string) {
	ev := s.events.Append(evType, tradeID, symbol, message, s.batch.Meta().BatchCount, s.now())
	s.persistEvents(ctx)
	s.publish(ev)
}

func (s *Session) historyCopy() []model.Trade {
	return append([]model.Trade(nil), s.history...)
}

func (s *Session) apiSymbolFor(symbol string) string {
	if ins, ok := model.FindInstrument(symbol); ok {
		return ins.APISymbol
	}
	return symbol
}

func (s *Session) persistActive(ctx context.Context) {
	if s.store == nil {
		return
	}
	if err := s.store.SaveActiveTrade(ctx, s.active); err != nil {
		s.log.WithError(err).Error("failed to persist active trade")
	}
}

func (s *Session) persistHistory(ctx context.Context) {
	if s.store == nil {
		return
	}
	if err := s.store.SaveHistory(ctx, s.history); err != nil {
		s.log.WithError(err).Error("failed to persist history")
	}
}

func (s *Session) persistEvents(ctx context.Context) {
	if s.store == nil {
		return
	}
	if err := s.store.SaveEvents(ctx, s.events.Entries(), s.events.LastID()); err != nil {
		s.log.WithError(err).Error("failed to persist events")
	}
}

func (s *Session) persistBatch(ctx context.Context) {
	if s.store == nil {
		return
	}
	if err := s.store.SaveBatch(ctx, s.batch.Meta()); err != nil {
		s.log.WithError(err).Error("failed to persist batch meta")
	}
}
