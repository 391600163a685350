package sensors

import "github.com/robotalks/hwmon.go/pkg/wire"

// MaxPerFrame is how many readings a host puts into one frame.
const MaxPerFrame = 32

// Filter drops implausible records and keeps at most MaxPerFrame of the
// rest, preserving order. It returns nil when nothing is left to send.
func Filter(records []wire.Record) []wire.Record {
	var out []wire.Record
	for _, r := range records {
		if !ID(r.ID).Plausible(r.Value) {
			continue
		}
		out = append(out, r)
		if len(out) == MaxPerFrame {
			break
		}
	}
	return out
}
