// Package registry keeps the readings of the most recently accepted frame.
package registry

import (
	"errors"
	"time"

	"github.com/robotalks/hwmon.go/pkg/wire"
)

const (
	// Capacity is the number of slots in a Registry.
	Capacity = wire.Capacity
	// Sentinel is returned by Get for absent or invalidated sensors.
	Sentinel float32 = -999
	// NoID marks a slot never written.
	NoID byte = 0xff
)

// ErrCapacity indicates an update with more records than slots.
var ErrCapacity = errors.New("too many records for registry")

// Reading is the last reported value of one sensor slot.
type Reading struct {
	ID    byte    `json:"id"`
	Value float32 `json:"value"`
	Valid bool    `json:"valid"`
	// Timestamp is when the reading was accepted, in Unix milliseconds.
	Timestamp int64 `json:"timestamp_ms"`
}

// Registry is a fixed size table of readings.
//
// Slots [0, Count()) hold the records of the latest update in the order
// they were reported. The table is positional, not keyed: an update with
// fewer records simply shortens the scanned range. Registry is not safe
// for concurrent use.
type Registry struct {
	clock        Clock
	slots        [Capacity]Reading
	count        int
	created      time.Time
	lastAccepted time.Time
	accepted     bool
}

// New creates a Registry. A nil clock uses SystemClock.
func New(clock Clock) *Registry {
	if clock == nil {
		clock = SystemClock
	}
	r := &Registry{clock: clock}
	r.Init()
	return r
}

// Init clears all slots and forgets the last update.
func (r *Registry) Init() {
	for i := range r.slots {
		r.slots[i] = Reading{ID: NoID, Value: Sentinel}
	}
	r.count = 0
	r.accepted = false
	r.created = r.clock.Now()
	r.lastAccepted = time.Time{}
}

// Update replaces the table with records, stamped with the current time.
// On error the table is left untouched.
func (r *Registry) Update(records []wire.Record) error {
	if len(records) > Capacity {
		return ErrCapacity
	}
	now := r.clock.Now()
	ts := Millis(now)
	for i, rec := range records {
		r.slots[i] = Reading{ID: rec.ID, Value: rec.Value, Valid: true, Timestamp: ts}
	}
	r.count = len(records)
	r.lastAccepted, r.accepted = now, true
	return nil
}

// Get returns the value of the first valid slot with id, or Sentinel.
func (r *Registry) Get(id byte) float32 {
	for i := 0; i < r.count; i++ {
		if s := &r.slots[i]; s.ID == id && s.Valid {
			return s.Value
		}
	}
	return Sentinel
}

// Valid reports whether a valid reading for id exists.
func (r *Registry) Valid(id byte) bool {
	for i := 0; i < r.count; i++ {
		if s := &r.slots[i]; s.ID == id && s.Valid {
			return true
		}
	}
	return false
}

// Find returns the first slot with id regardless of validity.
func (r *Registry) Find(id byte) (Reading, bool) {
	for i := 0; i < r.count; i++ {
		if r.slots[i].ID == id {
			return r.slots[i], true
		}
	}
	return Reading{}, false
}

// Slot returns the reading at index i of the latest update.
func (r *Registry) Slot(i int) (Reading, bool) {
	if i < 0 || i >= r.count {
		return Reading{}, false
	}
	return r.slots[i], true
}

// Count is the number of records in the latest update.
func (r *Registry) Count() int {
	return r.count
}

// AppendReadings appends slots [0, Count()) to dst.
func (r *Registry) AppendReadings(dst []Reading) []Reading {
	return append(dst, r.slots[:r.count]...)
}

// Readings returns a copy of slots [0, Count()).
func (r *Registry) Readings() []Reading {
	return r.AppendReadings(make([]Reading, 0, r.count))
}

// InvalidateAll marks every populated slot invalid. Ids, values and the
// count are kept.
func (r *Registry) InvalidateAll() {
	for i := 0; i < r.count; i++ {
		r.slots[i].Valid = false
	}
}

// LastUpdate returns the time of the latest update, if any.
func (r *Registry) LastUpdate() (time.Time, bool) {
	return r.lastAccepted, r.accepted
}

// Age is the time since the latest update, or since Init when there
// hasn't been one.
func (r *Registry) Age() time.Duration {
	since := r.created
	if r.accepted {
		since = r.lastAccepted
	}
	if age := r.clock.Now().Sub(since); age > 0 {
		return age
	}
	return 0
}
