package service

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nandanugg/linewatch/module/core/domain"
)

// VisibilityOracle reports whether the host application is currently shown
// to the user. It is read once per breach, at the moment of the transition.
type VisibilityOracle interface {
	Visibility() domain.Visibility
}

// ReferenceResetter is called when the user asks to re-anchor the geofence.
type ReferenceResetter interface {
	Reset()
}

// DefaultAlertTexts returns the stock wording for both alert kinds.
func DefaultAlertTexts() domain.AlertTexts {
	return domain.AlertTexts{
		InApp: domain.AlertText{
			Title:   "You have reached the limit",
			Message: "Please come back or police will pick you up",
		},
		Deferred: domain.AlertText{
			Title:   "You are getting out of limit",
			Message: "Please come back or police will show up.",
		},
	}
}

// AlertDispatcher owes at most one alert per breach episode and routes it by
// visibility. Suppression silences delivery but the state machine keeps moving.
type AlertDispatcher struct {
	mu         sync.Mutex
	state      domain.DispatchState
	suppressed bool

	oracle   VisibilityOracle
	resetter ReferenceResetter
	texts    domain.AlertTexts
	now      func() time.Time
}

func NewAlertDispatcher(oracle VisibilityOracle, resetter ReferenceResetter, texts domain.AlertTexts) *AlertDispatcher {
	return &AlertDispatcher{
		state:    domain.DispatchArmed,
		oracle:   oracle,
		resetter: resetter,
		texts:    texts,
		now:      time.Now,
	}
}

// Handle advances the state machine and returns the request to deliver, if any.
func (d *AlertDispatcher) Handle(event *domain.TransitionEvent) *domain.AlertRequest {
	if event == nil {
		return nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	switch event.Direction {
	case domain.ClearedBreach:
		d.state = domain.DispatchArmed
		return nil
	case domain.EnteredBreach:
		if d.state == domain.DispatchAlertOwed {
			return nil
		}
		d.state = domain.DispatchAlertOwed
		if d.suppressed {
			return nil
		}
		return d.newRequest(event.Position)
	}
	return nil
}

func (d *AlertDispatcher) newRequest(pos domain.Position) *domain.AlertRequest {
	kind := domain.AlertInApp
	text := d.texts.InApp
	if d.oracle != nil && d.oracle.Visibility() == domain.VisibilityBackground {
		kind = domain.AlertDeferred
		text = d.texts.Deferred
	}
	return &domain.AlertRequest{
		ID:       uuid.NewString(),
		Kind:     kind,
		Title:    text.Title,
		Message:  text.Message,
		Position: pos,
		IssuedAt: d.now().UTC(),
	}
}

// Acknowledge re-arms the dispatcher. AckResetLocation also drops the
// monitor's reference point.
func (d *AlertDispatcher) Acknowledge(action domain.AckAction) {
	d.mu.Lock()
	d.state = domain.DispatchArmed
	d.mu.Unlock()

	if action == domain.AckResetLocation && d.resetter != nil {
		d.resetter.Reset()
	}
}

// SetSuppressed toggles delivery. Turning it off does not replay a missed alert.
func (d *AlertDispatcher) SetSuppressed(suppressed bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.suppressed = suppressed
}

func (d *AlertDispatcher) Suppressed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.suppressed
}

func (d *AlertDispatcher) State() domain.DispatchState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}
