package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nandanugg/linewatch/module/core/domain"
)

type mockResetter struct {
	calls int
}

func (m *mockResetter) Reset() { m.calls++ }

func entered() *domain.TransitionEvent {
	return &domain.TransitionEvent{Direction: domain.EnteredBreach, Position: pos(0, 0.0006), Distance: 66.7}
}

func cleared() *domain.TransitionEvent {
	return &domain.TransitionEvent{Direction: domain.ClearedBreach, Position: pos(0, 0.0001), Distance: 11.1}
}

func newTestDispatcher(v domain.Visibility) (*AlertDispatcher, *VisibilitySwitch, *mockResetter) {
	vis := NewVisibilitySwitch(v)
	res := &mockResetter{}
	return NewAlertDispatcher(vis, res, DefaultAlertTexts()), vis, res
}

func TestHandle_ForegroundRoutesInApp(t *testing.T) {
	d, _, _ := newTestDispatcher(domain.VisibilityForeground)

	req := d.Handle(entered())
	require.NotNil(t, req)
	assert.Equal(t, domain.AlertInApp, req.Kind)
	assert.Equal(t, "You have reached the limit", req.Title)
	assert.Equal(t, "Please come back or police will pick you up", req.Message)
	assert.NotEmpty(t, req.ID)
	assert.Equal(t, pos(0, 0.0006), req.Position)
	assert.Equal(t, domain.DispatchAlertOwed, d.State())
}

func TestHandle_BackgroundRoutesDeferred(t *testing.T) {
	d, _, _ := newTestDispatcher(domain.VisibilityBackground)

	req := d.Handle(entered())
	require.NotNil(t, req)
	assert.Equal(t, domain.AlertDeferred, req.Kind)
	assert.Equal(t, "You are getting out of limit", req.Title)
	assert.Equal(t, "Please come back or police will show up.", req.Message)
}

func TestHandle_VisibilityChangeAfterTransitionIsNotRetroactive(t *testing.T) {
	d, vis, _ := newTestDispatcher(domain.VisibilityBackground)

	req := d.Handle(entered())
	require.NotNil(t, req)
	vis.Set(domain.VisibilityForeground)

	assert.Equal(t, domain.AlertDeferred, req.Kind)
	assert.Nil(t, d.Handle(entered()))
}

func TestHandle_AtMostOneOutstandingAlert(t *testing.T) {
	d, _, _ := newTestDispatcher(domain.VisibilityForeground)

	require.NotNil(t, d.Handle(entered()))
	for i := 0; i < 10; i++ {
		assert.Nil(t, d.Handle(entered()))
	}
	assert.Equal(t, domain.DispatchAlertOwed, d.State())

	assert.Nil(t, d.Handle(cleared()))
	assert.Equal(t, domain.DispatchArmed, d.State())
	assert.NotNil(t, d.Handle(entered()), "a new episode fires again")
}

func TestHandle_NilAndClearWhileArmed(t *testing.T) {
	d, _, _ := newTestDispatcher(domain.VisibilityForeground)

	assert.Nil(t, d.Handle(nil))
	assert.Nil(t, d.Handle(cleared()))
	assert.Equal(t, domain.DispatchArmed, d.State())
}

func TestHandle_SuppressionSilencesDeliveryNotDetection(t *testing.T) {
	d, _, _ := newTestDispatcher(domain.VisibilityForeground)
	d.SetSuppressed(true)
	assert.True(t, d.Suppressed())

	assert.Nil(t, d.Handle(entered()))
	assert.Equal(t, domain.DispatchAlertOwed, d.State(), "state still advances")

	d.SetSuppressed(false)
	assert.Nil(t, d.Handle(entered()), "no retroactive alert for the silenced episode")

	assert.Nil(t, d.Handle(cleared()))
	assert.NotNil(t, d.Handle(entered()), "next unsuppressed episode alerts")
}

func TestAcknowledge_GoBackRearmsWithoutReset(t *testing.T) {
	d, _, res := newTestDispatcher(domain.VisibilityForeground)

	require.NotNil(t, d.Handle(entered()))
	d.Acknowledge(domain.AckGoBack)

	assert.Equal(t, domain.DispatchArmed, d.State())
	assert.Zero(t, res.calls)
	assert.NotNil(t, d.Handle(entered()))
}

func TestAcknowledge_ResetLocationCallsResetter(t *testing.T) {
	d, _, res := newTestDispatcher(domain.VisibilityForeground)

	require.NotNil(t, d.Handle(entered()))
	d.Acknowledge(domain.AckResetLocation)

	assert.Equal(t, domain.DispatchArmed, d.State())
	assert.Equal(t, 1, res.calls)
}

func TestAcknowledge_ResetsRealMonitor(t *testing.T) {
	m := NewGeofenceMonitor(50)
	d := NewAlertDispatcher(NewVisibilitySwitch(domain.VisibilityForeground), m, DefaultAlertTexts())

	m.Ingest(pos(0, 0))
	require.NotNil(t, d.Handle(m.Ingest(pos(0, 0.0006))))

	d.Acknowledge(domain.AckResetLocation)
	_, ok := m.Reference()
	assert.False(t, ok)
	assert.Nil(t, m.Ingest(pos(0, 0.0006)), "re-anchors on next sample")
}
