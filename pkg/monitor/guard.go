package monitor

import (
	"sync"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/hwmon.go/pkg/framework"
)

// Guard invalidates readings when frames stop arriving.
type Guard struct {
	Monitor *Monitor
	Timeout time.Duration

	// OnStale is invoked once each time the link goes stale.
	OnStale func(age time.Duration)

	lock    sync.Mutex
	stale   bool
	staleAt uint32
}

// NewGuard creates a Guard.
func NewGuard(m *Monitor, timeout time.Duration) *Guard {
	return &Guard{Monitor: m, Timeout: timeout}
}

// Stale reports whether the guard is currently holding readings invalid.
func (g *Guard) Stale() bool {
	g.lock.Lock()
	defer g.lock.Unlock()
	return g.stale
}

// Control implements framework.Controller.
func (g *Guard) Control(framework.ControlContext) error {
	g.Check()
	return nil
}

// Check applies the policy once and reports whether readings were
// invalidated by this call.
func (g *Guard) Check() bool {
	if g.Timeout <= 0 {
		return false
	}
	ok := g.Monitor.Stats().OK
	age := g.Monitor.Age()
	g.lock.Lock()
	if g.stale && ok != g.staleAt {
		g.stale = false
		glog.Infof("link recovered after %d frames", ok-g.staleAt)
	}
	if g.stale || age <= g.Timeout {
		g.lock.Unlock()
		return false
	}
	g.stale, g.staleAt = true, ok
	g.lock.Unlock()

	g.Monitor.InvalidateAll()
	glog.Warningf("link stale: no frame for %v", age)
	if fn := g.OnStale; fn != nil {
		fn(age)
	}
	return true
}

// AddToLoop implements framework.LoopAdder.
func (g *Guard) AddToLoop(l *framework.Loop) {
	l.AddController(framework.PrLvPolicy, g)
}
