package service

import (
	"sync"

	"go.uber.org/zap"

	"github.com/nandanugg/linewatch/module/core/domain"
)

const DefaultRadiusMeters = 50.0

// GeofenceMonitor classifies each sample against a single reference point
// that is anchored on the first accepted sample.
type GeofenceMonitor struct {
	mu        sync.Mutex
	radius    float64
	reference *domain.Position
	current   *domain.Position
	state     domain.BreachState
}

func NewGeofenceMonitor(radiusMeters float64) *GeofenceMonitor {
	if radiusMeters <= 0 {
		radiusMeters = DefaultRadiusMeters
	}
	return &GeofenceMonitor{
		radius: radiusMeters,
		state:  domain.BreachInside,
	}
}

// Ingest returns a non-nil event only when pos moves the classification to
// the other side of the radius. Invalid coordinates leave all state untouched.
func (m *GeofenceMonitor) Ingest(pos domain.Position) *domain.TransitionEvent {
	if !validPosition(pos) {
		zap.L().Debug("geofence: refusing invalid position",
			zap.Float64("lat", pos.Lat),
			zap.Float64("lon", pos.Lon),
		)
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.current = &pos
	if m.reference == nil {
		ref := pos
		m.reference = &ref
		return nil
	}

	dist := Distance(*m.reference, pos)
	next := domain.BreachInside
	if dist > m.radius {
		next = domain.BreachOutside
	}
	if next == m.state {
		return nil
	}
	m.state = next

	dir := domain.ClearedBreach
	if next == domain.BreachOutside {
		dir = domain.EnteredBreach
	}
	return &domain.TransitionEvent{
		Direction: dir,
		Position:  pos,
		Distance:  dist,
	}
}

// Reset drops the reference point. The next accepted sample re-anchors.
func (m *GeofenceMonitor) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reference = nil
	m.state = domain.BreachInside
}

func (m *GeofenceMonitor) CurrentPosition() (domain.Position, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return domain.Position{}, false
	}
	return *m.current, true
}

func (m *GeofenceMonitor) Reference() (domain.Position, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.reference == nil {
		return domain.Position{}, false
	}
	return *m.reference, true
}

// DistanceFromReference reports how far the latest sample is from the
// reference point, or false while unarmed.
func (m *GeofenceMonitor) DistanceFromReference() (float64, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.reference == nil || m.current == nil {
		return 0, false
	}
	return Distance(*m.reference, *m.current), true
}

func (m *GeofenceMonitor) State() domain.BreachState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *GeofenceMonitor) Radius() float64 {
	return m.radius
}
