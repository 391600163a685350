// Package msgs defines the messages a monitor publishes to other systems.
//
// Producer: hwmond
// Consumer: hwmon-watch, dashboards
package msgs

import (
	"time"

	"github.com/golang/protobuf/proto"

	"github.com/robotalks/hwmon.go/pkg/monitor"
	"github.com/robotalks/hwmon.go/pkg/registry"
	"github.com/robotalks/hwmon.go/pkg/sensors"
)

// Reading is one sensor value of a Snapshot.
type Reading struct {
	ID          uint32  `protobuf:"varint,1,opt,name=id,proto3" json:"id"`
	Value       float32 `protobuf:"fixed32,2,opt,name=value,proto3" json:"value"`
	Valid       bool    `protobuf:"varint,3,opt,name=valid,proto3" json:"valid"`
	TimestampMs int64   `protobuf:"varint,4,opt,name=timestamp_ms,json=timestampMs,proto3" json:"timestamp_ms,omitempty"`
	Name        string  `protobuf:"bytes,5,opt,name=name,proto3" json:"name,omitempty"`
	Unit        string  `protobuf:"bytes,6,opt,name=unit,proto3" json:"unit,omitempty"`
}

// ProtoMessage implements proto.Message.
func (m *Reading) ProtoMessage() {}

// Reset implements proto.Message.
func (m *Reading) Reset() { *m = Reading{} }

// String implements proto.Message.
func (m *Reading) String() string { return proto.CompactTextString(m) }

// LinkStats carries the link health counters.
type LinkStats struct {
	Ok             uint32 `protobuf:"varint,1,opt,name=ok,proto3" json:"ok"`
	Errors         uint32 `protobuf:"varint,2,opt,name=errors,proto3" json:"errors"`
	Bytes          uint64 `protobuf:"varint,3,opt,name=bytes,proto3" json:"bytes"`
	MaxCount       uint32 `protobuf:"varint,4,opt,name=max_count,json=maxCount,proto3" json:"max_count"`
	LastAcceptedMs int64  `protobuf:"varint,5,opt,name=last_accepted_ms,json=lastAcceptedMs,proto3" json:"last_accepted_ms,omitempty"`
	AgeMs          int64  `protobuf:"varint,6,opt,name=age_ms,json=ageMs,proto3" json:"age_ms"`
}

// NewMessage implements SerializableMessage.
func (m *LinkStats) NewMessage() SerializableMessage { return &LinkStats{} }

// TypeID implements SerializableMessage.
func (m *LinkStats) TypeID() uint32 { return LinkStatsTypeID }

// ProtoMessage implements proto.Message.
func (m *LinkStats) ProtoMessage() {}

// Reset implements proto.Message.
func (m *LinkStats) Reset() { *m = LinkStats{} }

// String implements proto.Message.
func (m *LinkStats) String() string { return proto.CompactTextString(m) }

// Snapshot is an Event message with the readings of the latest frame.
type Snapshot struct {
	MonitorID   string     `protobuf:"bytes,1,opt,name=monitor_id,json=monitorId,proto3" json:"monitor_id,omitempty"`
	Readings    []*Reading `protobuf:"bytes,2,rep,name=readings,proto3" json:"readings,omitempty"`
	Stats       *LinkStats `protobuf:"bytes,3,opt,name=stats,proto3" json:"stats,omitempty"`
	TimestampMs int64      `protobuf:"varint,4,opt,name=timestamp_ms,json=timestampMs,proto3" json:"timestamp_ms,omitempty"`
}

// NewMessage implements SerializableMessage.
func (m *Snapshot) NewMessage() SerializableMessage { return &Snapshot{} }

// TypeID implements SerializableMessage.
func (m *Snapshot) TypeID() uint32 { return SnapshotTypeID }

// ProtoMessage implements proto.Message.
func (m *Snapshot) ProtoMessage() {}

// Reset implements proto.Message.
func (m *Snapshot) Reset() { *m = Snapshot{} }

// String implements proto.Message.
func (m *Snapshot) String() string { return proto.CompactTextString(m) }

// Get returns the first valid value of a sensor or registry.Sentinel.
func (m *Snapshot) Get(id byte) float32 {
	for _, r := range m.Readings {
		if r.ID == uint32(id) && r.Valid {
			return r.Value
		}
	}
	return registry.Sentinel
}

// NewStats converts monitor counters.
func NewStats(s monitor.Stats, age time.Duration) *LinkStats {
	stats := &LinkStats{
		Ok:       s.OK,
		Errors:   s.Errors,
		Bytes:    s.Bytes,
		MaxCount: uint32(s.MaxCount),
		AgeMs:    int64(age / time.Millisecond),
	}
	if !s.LastAccepted.IsZero() {
		stats.LastAcceptedMs = registry.Millis(s.LastAccepted)
	}
	return stats
}

// NewSnapshot converts a monitor snapshot, naming readings from the
// sensor catalog.
func NewSnapshot(monitorID string, s *monitor.Snapshot, now time.Time) *Snapshot {
	msg := &Snapshot{
		MonitorID:   monitorID,
		Readings:    make([]*Reading, 0, len(s.Readings)),
		Stats:       NewStats(s.Stats, s.Age),
		TimestampMs: registry.Millis(now),
	}
	for _, r := range s.Readings {
		id := sensors.ID(r.ID)
		reading := &Reading{
			ID:          uint32(r.ID),
			Value:       r.Value,
			Valid:       r.Valid,
			TimestampMs: r.Timestamp,
		}
		if info, ok := sensors.Lookup(id); ok {
			reading.Name, reading.Unit = info.Name, info.Unit
		}
		msg.Readings = append(msg.Readings, reading)
	}
	return msg
}

// SensorInfo describes a catalog entry in the retained meta document.
type SensorInfo struct {
	ID       uint32 `json:"id"`
	Name     string `json:"name"`
	Unit     string `json:"unit,omitempty"`
	Category string `json:"category"`
}

// Meta is the retained document describing a monitor.
type Meta struct {
	ID       string       `json:"id"`
	Online   bool         `json:"online"`
	Capacity int          `json:"capacity"`
	Sensors  []SensorInfo `json:"sensors,omitempty"`
}

// NewMeta creates the Meta of an online monitor with the full catalog.
func NewMeta(id string) *Meta {
	meta := &Meta{ID: id, Online: true, Capacity: registry.Capacity}
	for _, info := range sensors.All() {
		meta.Sensors = append(meta.Sensors, SensorInfo{
			ID:       uint32(info.ID),
			Name:     info.Name,
			Unit:     info.Unit,
			Category: string(info.Category),
		})
	}
	return meta
}

// GroupTelemetry is the type id group of monitor messages.
const GroupTelemetry uint32 = 0x00480000

// TypeIDs
const (
	SnapshotTypeID  uint32 = GroupTelemetry | TypeIDKindEvent | 0x0000
	LinkStatsTypeID uint32 = GroupTelemetry | TypeIDKindEvent | 0x0001
)
