// Package local provides shell commands operating on the local monitor.
package local

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/hwmon.go/pkg/cli/sh"
	"github.com/robotalks/hwmon.go/pkg/monitor"
	"github.com/robotalks/hwmon.go/pkg/sensors"
	"github.com/robotalks/hwmon.go/pkg/wire"
)

// Result is what a command prints: Value in JSON mode, Text otherwise.
type Result struct {
	Value interface{}
	Text  string
}

// CommandFunc is the logic of a command.
type CommandFunc func(m *monitor.Monitor, args []string) (*Result, error)

func wrap(fn CommandFunc) func(c *ishell.Context) {
	return func(c *ishell.Context) {
		res, err := fn(sh.ShellFrom(c).Monitor, c.Args)
		if err != nil {
			c.Err(err)
			return
		}
		sh.Output(c, res.Value, res.Text)
	}
}

func requireArg(args []string, name string) (string, error) {
	if len(args) < 1 {
		return "", fmt.Errorf("%s required", name)
	}
	return args[0], nil
}

// FeedResult reports frames accepted from a chunk.
type FeedResult struct {
	Accepted int    `json:"accepted"`
	State    string `json:"state"`
}

// Feed streams hex bytes into the monitor.
func Feed(m *monitor.Monitor, args []string) (*Result, error) {
	data, err := sh.ParseHex(args)
	if err != nil {
		return nil, err
	}
	res := FeedResult{Accepted: m.Feed(data), State: m.ParserState().String()}
	return &Result{
		Value: res,
		Text:  fmt.Sprintf("accepted %d, parser %s", res.Accepted, res.State),
	}, nil
}

// BatchResult reports the outcome of a buffer.
type BatchResult struct {
	Accepted bool   `json:"accepted"`
	Error    string `json:"error,omitempty"`
}

// Batch decodes hex bytes as one complete frame.
func Batch(m *monitor.Monitor, args []string) (*Result, error) {
	data, err := sh.ParseHex(args)
	if err != nil {
		return nil, err
	}
	var res BatchResult
	if res.Accepted = m.FeedBuffer(data); res.Accepted {
		return &Result{Value: res, Text: "accepted"}, nil
	}
	// FeedBuffer only reports a verdict, decode again for the reason
	if _, err := wire.Decode(data, wire.Options{}); err != nil {
		res.Error = err.Error()
	} else {
		res.Error = "rejected by options"
	}
	return &Result{Value: res, Text: "rejected: " + res.Error}, nil
}

// ValueResult is the value of one sensor.
type ValueResult struct {
	ID    byte    `json:"id"`
	Value float32 `json:"value"`
	Valid bool    `json:"valid"`
}

// Get prints the value of a sensor or the sentinel.
func Get(m *monitor.Monitor, args []string) (*Result, error) {
	arg, err := requireArg(args, "ID")
	if err != nil {
		return nil, err
	}
	id, err := sh.ParseID(arg)
	if err != nil {
		return nil, err
	}
	res := ValueResult{ID: id, Value: m.Get(id), Valid: m.Valid(id)}
	text := strconv.FormatFloat(float64(res.Value), 'g', -1, 32)
	if unit := sensors.ID(id).Unit(); unit != "" && res.Valid {
		text += " " + unit
	}
	return &Result{Value: res, Text: text}, nil
}

// List prints all readings of the latest frame.
func List(m *monitor.Monitor, args []string) (*Result, error) {
	readings := m.Readings()
	lines := make([]string, len(readings))
	for n, r := range readings {
		lines[n] = sh.FormatReading(r)
	}
	text := strings.Join(lines, "\n")
	if text == "" {
		text = "No readings"
	}
	return &Result{Value: readings, Text: text}, nil
}

// Stats prints link counters and age.
func Stats(m *monitor.Monitor, args []string) (*Result, error) {
	s := m.Snapshot()
	return &Result{
		Value: struct {
			monitor.Stats
			AgeMs int64 `json:"age_ms"`
		}{s.Stats, s.Age.Milliseconds()},
		Text: fmt.Sprintf("%s age=%v", sh.FormatStats(s.Stats), s.Age),
	}, nil
}

// Invalidate marks all readings invalid.
func Invalidate(m *monitor.Monitor, args []string) (*Result, error) {
	m.InvalidateAll()
	return &Result{Value: true, Text: "OK"}, nil
}

// Reset drops a partial frame, or with "all" clears the monitor.
func Reset(m *monitor.Monitor, args []string) (*Result, error) {
	if len(args) > 0 && args[0] == "all" {
		m.Init()
	} else {
		m.ResetParser()
	}
	return &Result{Value: true, Text: "OK"}, nil
}

// Encode builds a frame from ID=VALUE pairs.
func Encode(m *monitor.Monitor, args []string) (*Result, error) {
	records := make([]wire.Record, 0, len(args))
	for _, arg := range args {
		pair := strings.SplitN(arg, "=", 2)
		if len(pair) != 2 {
			return nil, fmt.Errorf("expect ID=VALUE: %q", arg)
		}
		id, err := sh.ParseID(pair[0])
		if err != nil {
			return nil, err
		}
		val, err := strconv.ParseFloat(pair[1], 32)
		if err != nil {
			return nil, fmt.Errorf("invalid value %q: %v", pair[1], err)
		}
		records = append(records, wire.Record{ID: id, Value: float32(val)})
	}
	data, err := (&wire.Frame{Records: records}).Bytes()
	if err != nil {
		return nil, err
	}
	return &Result{Value: data, Text: sh.FormatHex(data)}, nil
}

// Catalog prints the known sensors.
func Catalog(m *monitor.Monitor, args []string) (*Result, error) {
	infos := sensors.All()
	lines := make([]string, len(infos))
	for n, info := range infos {
		lines[n] = fmt.Sprintf("0x%02x %-16s %-8s %s", byte(info.ID), info.Name, info.Category, info.Unit)
	}
	return &Result{Value: infos, Text: strings.Join(lines, "\n")}, nil
}

var (
	// FeedCmd streams bytes.
	FeedCmd = ishell.Cmd{Name: "feed", Aliases: []string{"f"}, Help: "HEX...", Func: wrap(Feed)}
	// BatchCmd decodes one buffer.
	BatchCmd = ishell.Cmd{Name: "batch", Aliases: []string{"b"}, Help: "HEX...", Func: wrap(Batch)}
	// GetCmd reads a sensor.
	GetCmd = ishell.Cmd{Name: "get", Aliases: []string{"g"}, Help: "ID", Func: wrap(Get)}
	// ListCmd lists readings.
	ListCmd = ishell.Cmd{Name: "list", Aliases: []string{"ls"}, Help: "", Func: wrap(List)}
	// StatsCmd prints counters.
	StatsCmd = ishell.Cmd{Name: "stats", Aliases: []string{"s"}, Help: "", Func: wrap(Stats)}
	// InvalidateCmd invalidates readings.
	InvalidateCmd = ishell.Cmd{Name: "invalidate", Help: "", Func: wrap(Invalidate)}
	// ResetCmd resets the parser.
	ResetCmd = ishell.Cmd{Name: "reset", Help: "[all]", Func: wrap(Reset)}
	// EncodeCmd builds a frame.
	EncodeCmd = ishell.Cmd{Name: "encode", Aliases: []string{"e"}, Help: "ID=VALUE...", Func: wrap(Encode)}
	// CatalogCmd lists known sensors.
	CatalogCmd = ishell.Cmd{Name: "sensors", Help: "", Func: wrap(Catalog)}
)

func init() {
	sh.AddCmds(
		&FeedCmd,
		&BatchCmd,
		&GetCmd,
		&ListCmd,
		&StatsCmd,
		&InvalidateCmd,
		&ResetCmd,
		&EncodeCmd,
		&CatalogCmd,
	)
}
