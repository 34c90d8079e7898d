package service

import (
	"context"
	"sync/atomic"

	"github.com/rotisserie/eris"

	"github.com/nandanugg/linewatch/module/core/domain"
)

// RoutingSink sends in-app requests to InApp and deferred requests to Deferred.
type RoutingSink struct {
	InApp    AlertSink
	Deferred AlertSink
}

func (s *RoutingSink) Deliver(ctx context.Context, req *domain.AlertRequest) error {
	var target AlertSink
	switch req.Kind {
	case domain.AlertInApp:
		target = s.InApp
	case domain.AlertDeferred:
		target = s.Deferred
	default:
		return eris.Errorf("routing: unknown alert kind %q", req.Kind)
	}
	if target == nil {
		return eris.Errorf("routing: no sink for %s alerts", req.Kind)
	}
	return target.Deliver(ctx, req)
}

// VisibilitySwitch is a VisibilityOracle that the host flips explicitly.
type VisibilitySwitch struct {
	background atomic.Bool
}

func NewVisibilitySwitch(initial domain.Visibility) *VisibilitySwitch {
	s := &VisibilitySwitch{}
	s.Set(initial)
	return s
}

func (s *VisibilitySwitch) Set(v domain.Visibility) {
	s.background.Store(v == domain.VisibilityBackground)
}

func (s *VisibilitySwitch) Visibility() domain.Visibility {
	if s.background.Load() {
		return domain.VisibilityBackground
	}
	return domain.VisibilityForeground
}
