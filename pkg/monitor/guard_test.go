package monitor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/hwmon.go/pkg/framework"
	"github.com/robotalks/hwmon.go/pkg/registry"
	"github.com/robotalks/hwmon.go/pkg/wire"
)

func TestGuard(t *testing.T) {
	m, clock := newTestMonitor(wire.Options{})
	var fired []time.Duration
	g := NewGuard(m, 5*time.Second)
	g.OnStale = func(age time.Duration) { fired = append(fired, age) }

	require.True(t, m.FeedBuffer(scenario1))
	require.False(t, g.Check())
	clock.Advance(5 * time.Second)
	require.False(t, g.Check())
	require.False(t, g.Stale())

	clock.Advance(time.Second)
	require.True(t, g.Check())
	require.True(t, g.Stale())
	require.Equal(t, registry.Sentinel, m.Get(0x01))
	r, ok := m.Find(0x01)
	require.True(t, ok)
	require.Equal(t, float32(45.5), r.Value)

	clock.Advance(time.Minute)
	require.False(t, g.Check())
	require.Equal(t, []time.Duration{6 * time.Second}, fired)

	require.True(t, m.FeedBuffer(scenario1))
	require.False(t, g.Check())
	require.False(t, g.Stale())
	require.Equal(t, float32(45.5), m.Get(0x01))

	clock.Advance(10 * time.Second)
	require.True(t, g.Check())
	require.Len(t, fired, 2)
}

func TestGuardBeforeFirstFrame(t *testing.T) {
	m, clock := newTestMonitor(wire.Options{})
	g := NewGuard(m, time.Second)
	require.False(t, g.Check())
	clock.Advance(2 * time.Second)
	require.True(t, g.Check())
	require.False(t, g.Check())
}

func TestGuardDisabled(t *testing.T) {
	m, clock := newTestMonitor(wire.Options{})
	require.True(t, m.FeedBuffer(scenario1))
	clock.Advance(time.Hour)
	g := NewGuard(m, 0)
	require.False(t, g.Check())
	require.True(t, m.Valid(0x01))
}

func TestGuardInLoop(t *testing.T) {
	clock := registry.NewManualClock(epoch)
	m := New(Options{Clock: clock})
	require.True(t, m.FeedBuffer(scenario1))
	clock.Advance(time.Hour)

	staleCh := make(chan struct{}, 1)
	g := NewGuard(m, time.Second)
	g.OnStale = func(time.Duration) { staleCh <- struct{}{} }

	loop := framework.NewLoop()
	loop.Interval = time.Millisecond
	loop.Add(g)
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- loop.Run(ctx) }()

	select {
	case <-staleCh:
	case <-time.After(5 * time.Second):
		t.Fatal("guard never ran")
	}
	cancel()
	require.Equal(t, context.Canceled, <-errCh)
	require.False(t, m.Valid(0x01))
}
