// Package sh provides an interactive shell around a local monitor.
package sh

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/hwmon.go/pkg/env"
	"github.com/robotalks/hwmon.go/pkg/link/mqtt"
	"github.com/robotalks/hwmon.go/pkg/monitor"
	"github.com/robotalks/hwmon.go/pkg/msgs"
	"github.com/robotalks/hwmon.go/pkg/registry"
	"github.com/robotalks/hwmon.go/pkg/sensors"
)

// Shell provides ishell backed interactive shell.
type Shell struct {
	Interactive bool
	OutputJSON  bool

	Shell   *ishell.Shell
	Config  *env.Config
	Monitor *monitor.Monitor
}

const (
	shellKey = "$shell"
	prompt   = "hwmon > "
)

var (
	// flags

	evalOnly   bool
	outputJSON bool

	// commands
	commands = []*ishell.Cmd{
		&DiscoverCmd,
	}
)

func init() {
	flag.BoolVar(&evalOnly, "e", evalOnly, "Evaluation only, no interactive shell.")
	flag.BoolVar(&outputJSON, "json", outputJSON, "Print output in JSON.")
}

// AddCmds is used by other commands providers during init func.
func AddCmds(cmds ...*ishell.Cmd) {
	commands = append(commands, cmds...)
}

// New creates a new shell with a local monitor.
func New(conf *env.Config) *Shell {
	s := &Shell{
		Interactive: !evalOnly,
		OutputJSON:  outputJSON,

		Shell:   ishell.New(),
		Config:  conf,
		Monitor: monitor.New(conf.MonitorOptions()),
	}
	s.Shell.Set(shellKey, s)
	s.Shell.SetPrompt(prompt)
	for _, cmd := range commands {
		s.Shell.AddCmd(cmd)
	}
	return s
}

// ShellFrom gets Shell from ishell context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

// Output prints v as JSON when requested, otherwise text.
func Output(c *ishell.Context, v interface{}, text string) {
	if ShellFrom(c).OutputJSON {
		out, err := json.Marshal(v)
		if err != nil {
			c.Err(err)
			return
		}
		c.Println(string(out))
		return
	}
	c.Println(text)
}

// ParseHex parses bytes written as hex, separated by spaces or commas
// ("aa 01 02"), packed ("aa0102") or with 0x prefixes.
func ParseHex(args []string) ([]byte, error) {
	var data []byte
	for _, arg := range args {
		for _, tok := range strings.Fields(strings.Replace(arg, ",", " ", -1)) {
			tok = strings.TrimPrefix(strings.TrimPrefix(tok, "0x"), "0X")
			if len(tok)%2 != 0 {
				tok = "0" + tok
			}
			for i := 0; i < len(tok); i += 2 {
				b, err := strconv.ParseUint(tok[i:i+2], 16, 8)
				if err != nil {
					return nil, fmt.Errorf("invalid hex %q", tok)
				}
				data = append(data, byte(b))
			}
		}
	}
	return data, nil
}

// FormatHex prints bytes the way ParseHex reads them.
func FormatHex(data []byte) string {
	strs := make([]string, len(data))
	for n, b := range data {
		strs[n] = fmt.Sprintf("%02x", b)
	}
	return strings.Join(strs, " ")
}

// ParseID parses a sensor id given in hex (0x20) or decimal (32).
func ParseID(s string) (byte, error) {
	val, err := strconv.ParseUint(s, 0, 8)
	if err != nil {
		return 0, fmt.Errorf("invalid sensor id %q", s)
	}
	return byte(val), nil
}

// FormatReading prints a reading with its catalog name and unit.
func FormatReading(r registry.Reading) string {
	id := sensors.ID(r.ID)
	text := fmt.Sprintf("0x%02x %-16s %10.2f %s", r.ID, id.Name(), r.Value, id.Unit())
	if !r.Valid {
		text += " (invalid)"
	}
	return strings.TrimRight(text, " ")
}

// FormatStats prints link counters.
func FormatStats(s monitor.Stats) string {
	return fmt.Sprintf("ok=%d errors=%d bytes=%d max-count=%d", s.OK, s.Errors, s.Bytes, s.MaxCount)
}

// Run runs the shell.
func (s *Shell) Run(args ...string) {
	if len(args) > 0 {
		if err := s.Shell.Process(args...); err != nil {
			log.Fatalln(err)
		}
		return
	}
	if s.Interactive {
		s.Shell.Run()
		return
	}
	log.Fatalln("command expected")
}

// DiscoverMonitors lists monitors announced on the MQTT broker.
func (s *Shell) DiscoverMonitors() ([]msgs.Meta, error) {
	if s.Config.MQTTBrokerURL == "" {
		return nil, fmt.Errorf("no MQTT broker configured")
	}
	connector, err := mqtt.NewConnector(s.Config.MQTTBrokerURL)
	if err != nil {
		return nil, err
	}
	return connector.Discover(context.TODO())
}

var (
	// DiscoverCmd discovers monitors.
	DiscoverCmd = ishell.Cmd{
		Name:    "discover",
		Aliases: []string{"d"},
		Help:    "",
		Func: func(c *ishell.Context) {
			metas, err := ShellFrom(c).DiscoverMonitors()
			if err != nil {
				c.Err(err)
				return
			}
			if len(metas) == 0 {
				// in case metas is nil, make it empty slice.
				metas = []msgs.Meta{}
			}
			ids := make([]string, len(metas))
			for n, meta := range metas {
				ids[n] = meta.ID
			}
			text := strings.Join(ids, "\n")
			if text == "" {
				text = "No monitors found"
			}
			Output(c, metas, text)
		},
	}
)

// Main is a helper to provide a single call in main.
func Main() {
	flag.Parse()
	New(env.NewConfig()).Run(flag.Args()...)
}
