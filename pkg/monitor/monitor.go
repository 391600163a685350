// Package monitor ties the frame decoders to a sensor registry and keeps
// link health counters.
package monitor

import (
	"sync"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/hwmon.go/pkg/registry"
	"github.com/robotalks/hwmon.go/pkg/wire"
)

// Handler is called when a frame is accepted.
type Handler interface {
	HandleFrame(*Snapshot)
}

// HandleFrameFunc is func type of Handler.
type HandleFrameFunc func(*Snapshot)

// HandleFrame implements Handler.
func (f HandleFrameFunc) HandleFrame(s *Snapshot) {
	f(s)
}

// Notifier is called when a frame is rejected and counted as an error.
type Notifier interface {
	FrameRejected(error)
}

// FrameRejectedFunc is func type of Notifier.
type FrameRejectedFunc func(error)

// FrameRejected implements Notifier.
func (f FrameRejectedFunc) FrameRejected(err error) {
	f(err)
}

// Options configures a Monitor.
type Options struct {
	wire.Options
	Clock registry.Clock
}

// Stats are the link health counters.
type Stats struct {
	OK           uint32    `json:"ok"`
	Errors       uint32    `json:"errors"`
	Bytes        uint64    `json:"bytes"`
	MaxCount     int       `json:"max_count"`
	LastAccepted time.Time `json:"last_accepted"`
}

// Snapshot is a consistent copy of a Monitor's state.
type Snapshot struct {
	Readings []registry.Reading `json:"readings"`
	Stats    Stats              `json:"stats"`
	Age      time.Duration      `json:"age"`
}

// Monitor decodes frames into a registry. It is safe for concurrent
// use, but bytes of one stream must come from a single feeder.
type Monitor struct {
	Handler  Handler
	Notifier Notifier

	lock   sync.RWMutex
	stream wire.Parser
	batch  wire.Parser
	reg    *registry.Registry
	stats  Stats
}

type event struct {
	snapshot *Snapshot
	err      error
}

// New creates a Monitor.
func New(opts Options) *Monitor {
	m := &Monitor{reg: registry.New(opts.Clock)}
	m.stream.Options = opts.Options
	m.batch.Options = opts.Options
	return m
}

// Init clears readings and counters and drops any partial frame.
func (m *Monitor) Init() {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.reg.Init()
	m.stream.Reset()
	m.stats = Stats{}
}

// FeedByte consumes one byte of the stream and reports whether it
// completed an accepted frame.
func (m *Monitor) FeedByte(b byte) bool {
	return m.Feed([]byte{b}) > 0
}

// Feed consumes a chunk of the stream and returns the number of frames
// accepted. Chunks may split frames anywhere.
func (m *Monitor) Feed(p []byte) int {
	var events []event
	accepted := 0
	m.lock.Lock()
	m.stats.Bytes += uint64(len(p))
	for _, b := range p {
		pr := m.stream.Parse(b)
		switch {
		case pr.Accepted():
			if ev, ok := m.commit(pr.Frame); ok {
				accepted++
				if m.Handler != nil {
					events = append(events, ev)
				}
			} else if m.Notifier != nil {
				events = append(events, ev)
			}
		case pr.Rejected():
			m.stats.Errors++
			glog.V(2).Infof("frame rejected: %v", pr.Err)
			if m.Notifier != nil {
				events = append(events, event{err: pr.Err})
			}
		}
	}
	m.lock.Unlock()
	m.dispatch(events)
	return accepted
}

// FeedBuffer decodes one complete frame at the beginning of p. The
// registry is only touched when the frame is accepted.
func (m *Monitor) FeedBuffer(p []byte) bool {
	var ev event
	m.lock.Lock()
	m.stats.Bytes += uint64(len(p))
	frame, err := m.batch.Decode(p)
	ok := false
	if err == nil {
		ev, ok = m.commit(frame)
	} else {
		glog.V(2).Infof("buffer rejected: %v", err)
		if wire.Counted(err) {
			m.stats.Errors++
			ev.err = err
		}
	}
	m.lock.Unlock()
	m.dispatch([]event{ev})
	return ok
}

func (m *Monitor) commit(frame *wire.Frame) (ev event, ok bool) {
	if err := m.reg.Update(frame.Records); err != nil {
		m.stats.Errors++
		return event{err: err}, false
	}
	m.stats.OK++
	m.stats.LastAccepted, _ = m.reg.LastUpdate()
	if n := len(frame.Records); n > m.stats.MaxCount {
		m.stats.MaxCount = n
	}
	glog.V(2).Infof("frame accepted: %d readings", len(frame.Records))
	if m.Handler != nil {
		ev.snapshot = m.snapshotLocked()
	}
	return ev, true
}

func (m *Monitor) dispatch(events []event) {
	for _, ev := range events {
		if ev.snapshot != nil {
			if h := m.Handler; h != nil {
				h.HandleFrame(ev.snapshot)
			}
		} else if ev.err != nil {
			if n := m.Notifier; n != nil {
				n.FrameRejected(ev.err)
			}
		}
	}
}

// ResetParser drops a partially received frame.
func (m *Monitor) ResetParser() {
	m.lock.Lock()
	m.stream.Reset()
	m.lock.Unlock()
}

// ParserState gets the state of the stream parser.
func (m *Monitor) ParserState() wire.State {
	m.lock.RLock()
	defer m.lock.RUnlock()
	return m.stream.State()
}

// Get returns the latest valid value of a sensor or registry.Sentinel.
func (m *Monitor) Get(id byte) float32 {
	m.lock.RLock()
	defer m.lock.RUnlock()
	return m.reg.Get(id)
}

// Valid reports whether a valid reading of a sensor exists.
func (m *Monitor) Valid(id byte) bool {
	m.lock.RLock()
	defer m.lock.RUnlock()
	return m.reg.Valid(id)
}

// Find returns the first reading of a sensor regardless of validity.
func (m *Monitor) Find(id byte) (registry.Reading, bool) {
	m.lock.RLock()
	defer m.lock.RUnlock()
	return m.reg.Find(id)
}

// Slot returns the reading at index i of the latest frame.
func (m *Monitor) Slot(i int) (registry.Reading, bool) {
	m.lock.RLock()
	defer m.lock.RUnlock()
	return m.reg.Slot(i)
}

// Count is the number of readings in the latest frame.
func (m *Monitor) Count() int {
	m.lock.RLock()
	defer m.lock.RUnlock()
	return m.reg.Count()
}

// Readings returns a copy of the latest frame's readings.
func (m *Monitor) Readings() []registry.Reading {
	m.lock.RLock()
	defer m.lock.RUnlock()
	return m.reg.Readings()
}

// InvalidateAll marks all readings invalid, keeping their values.
func (m *Monitor) InvalidateAll() {
	m.lock.Lock()
	m.reg.InvalidateAll()
	m.lock.Unlock()
}

// Age is the time since the last accepted frame.
func (m *Monitor) Age() time.Duration {
	m.lock.RLock()
	defer m.lock.RUnlock()
	return m.reg.Age()
}

// Stale reports whether no frame was accepted within timeout.
func (m *Monitor) Stale(timeout time.Duration) bool {
	return m.Age() > timeout
}

// Stats gets the link health counters.
func (m *Monitor) Stats() Stats {
	m.lock.RLock()
	defer m.lock.RUnlock()
	return m.stats
}

// Snapshot copies readings, counters and age in one step.
func (m *Monitor) Snapshot() *Snapshot {
	m.lock.RLock()
	defer m.lock.RUnlock()
	return m.snapshotLocked()
}

func (m *Monitor) snapshotLocked() *Snapshot {
	return &Snapshot{
		Readings: m.reg.Readings(),
		Stats:    m.stats,
		Age:      m.reg.Age(),
	}
}
