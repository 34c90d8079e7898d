package service

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nandanugg/linewatch/module/core/domain"
	"github.com/nandanugg/linewatch/module/core/internal/repository/database"
)

// AlertSink hands an alert to whatever presents it. Delivery is fire and
// forget; the watcher logs failures and never retries.
type AlertSink interface {
	Deliver(ctx context.Context, req *domain.AlertRequest) error
}

// TransitionObserver is notified after each processed sample.
type TransitionObserver interface {
	OnPosition(ctx context.Context, pos domain.Position)
	OnTransition(ctx context.Context, event *domain.TransitionEvent)
}

// Outcome is the result of processing one sample.
type Outcome struct {
	Event   *domain.TransitionEvent
	Request *domain.AlertRequest
}

// Status is a point-in-time view of the monitor and dispatcher.
type Status struct {
	Armed          bool                 `json:"armed"`
	Reference      *domain.Position     `json:"reference,omitempty"`
	Current        *domain.Position     `json:"current,omitempty"`
	DistanceMeters *float64             `json:"distance_meters,omitempty"`
	RadiusMeters   float64              `json:"radius_meters"`
	BreachState    domain.BreachState   `json:"breach_state"`
	DispatchState  domain.DispatchState `json:"dispatch_state"`
	Suppressed     bool                 `json:"suppressed"`
	Visibility     domain.Visibility    `json:"visibility"`
}

// Watcher runs one sample at a time through the monitor and dispatcher. mu
// guards classification; emitMu orders observer, sink and journal output. A
// sample takes emitMu before releasing mu, so emissions happen in the same
// order as the transitions that caused them.
type Watcher struct {
	mu         sync.Mutex
	emitMu     sync.Mutex
	monitor    *GeofenceMonitor
	dispatcher *AlertDispatcher
	oracle     VisibilityOracle
	sink       AlertSink
	journal    database.JournalRepository
	observers  []TransitionObserver
	now        func() time.Time
}

func NewWatcher(
	monitor *GeofenceMonitor,
	dispatcher *AlertDispatcher,
	oracle VisibilityOracle,
	sink AlertSink,
	journal database.JournalRepository,
	observers ...TransitionObserver,
) *Watcher {
	return &Watcher{
		monitor:    monitor,
		dispatcher: dispatcher,
		oracle:     oracle,
		sink:       sink,
		journal:    journal,
		observers:  observers,
		now:        time.Now,
	}
}

// HandlePosition classifies pos, dispatches the resulting transition and emits
// it before the next sample is emitted. Snapshot and the control operations
// only wait on classification, not on a slow sink.
func (w *Watcher) HandlePosition(ctx context.Context, pos domain.Position) Outcome {
	w.mu.Lock()
	event := w.monitor.Ingest(pos)
	req := w.dispatcher.Handle(event)
	w.emitMu.Lock()
	w.mu.Unlock()
	defer w.emitMu.Unlock()

	for _, o := range w.observers {
		o.OnPosition(ctx, pos)
	}

	if event != nil {
		zap.L().Info("geofence: transition",
			zap.String("direction", string(event.Direction)),
			zap.Float64("distance_meters", event.Distance),
		)
		for _, o := range w.observers {
			o.OnTransition(ctx, event)
		}
		w.record(ctx, &domain.JournalEntry{
			Kind:   domain.JournalTransition,
			Detail: string(event.Direction),
			Lat:    event.Position.Lat,
			Lon:    event.Position.Lon,
		})
	}

	if req != nil {
		w.deliver(ctx, req)
		w.record(ctx, &domain.JournalEntry{
			ID:      req.ID,
			Kind:    domain.JournalAlert,
			Detail:  string(req.Kind),
			Lat:     req.Position.Lat,
			Lon:     req.Position.Lon,
			Title:   req.Title,
			Message: req.Message,
		})
	}

	return Outcome{Event: event, Request: req}
}

func (w *Watcher) deliver(ctx context.Context, req *domain.AlertRequest) {
	if w.sink == nil {
		return
	}
	if err := w.sink.Deliver(ctx, req); err != nil {
		zap.L().Error("geofence: alert delivery failed",
			zap.String("alert_id", req.ID),
			zap.String("kind", string(req.Kind)),
			zap.Error(err),
		)
	}
}

func (w *Watcher) Acknowledge(ctx context.Context, action domain.AckAction) {
	w.mu.Lock()
	w.dispatcher.Acknowledge(action)
	w.mu.Unlock()

	pos, _ := w.monitor.CurrentPosition()
	w.record(ctx, &domain.JournalEntry{
		Kind:   domain.JournalAcknowledge,
		Detail: string(action),
		Lat:    pos.Lat,
		Lon:    pos.Lon,
	})
}

// Reset re-anchors the geofence on the next sample and re-arms the dispatcher.
func (w *Watcher) Reset(ctx context.Context) {
	w.Acknowledge(ctx, domain.AckResetLocation)
}

func (w *Watcher) SetSuppressed(ctx context.Context, suppressed bool) {
	w.mu.Lock()
	w.dispatcher.SetSuppressed(suppressed)
	w.mu.Unlock()

	w.record(ctx, &domain.JournalEntry{
		Kind:   domain.JournalSuppression,
		Detail: strconv.FormatBool(suppressed),
	})
}

func (w *Watcher) Snapshot() Status {
	w.mu.Lock()
	defer w.mu.Unlock()

	st := Status{
		RadiusMeters:  w.monitor.Radius(),
		BreachState:   w.monitor.State(),
		DispatchState: w.dispatcher.State(),
		Suppressed:    w.dispatcher.Suppressed(),
	}
	if w.oracle != nil {
		st.Visibility = w.oracle.Visibility()
	}
	if ref, ok := w.monitor.Reference(); ok {
		st.Armed = true
		st.Reference = &ref
	}
	if cur, ok := w.monitor.CurrentPosition(); ok {
		st.Current = &cur
	}
	if d, ok := w.monitor.DistanceFromReference(); ok {
		st.DistanceMeters = &d
	}
	return st
}

// Radius and Reference are exposed for the map view.
func (w *Watcher) Radius() float64 {
	return w.monitor.Radius()
}

func (w *Watcher) Reference() (domain.Position, bool) {
	return w.monitor.Reference()
}

func (w *Watcher) CurrentPosition() (domain.Position, bool) {
	return w.monitor.CurrentPosition()
}

func (w *Watcher) Journal(ctx context.Context, query *domain.JournalQuery) ([]domain.JournalEntry, error) {
	if w.journal == nil {
		return nil, nil
	}
	return w.journal.List(ctx, query)
}

func (w *Watcher) record(ctx context.Context, entry *domain.JournalEntry) {
	if w.journal == nil {
		return
	}
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	entry.RecordedAt = w.now().UTC()
	if err := w.journal.Insert(ctx, entry); err != nil {
		zap.L().Warn("geofence: journal write failed",
			zap.String("kind", string(entry.Kind)),
			zap.Error(err),
		)
	}
}
