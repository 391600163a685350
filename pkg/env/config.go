// Package env assembles a monitor daemon from configuration.
package env

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/robotalks/hwmon.go/pkg/link/serial"
	"github.com/robotalks/hwmon.go/pkg/monitor"
)

// Config provides common options to set up a monitor.
type Config struct {
	// ID names the monitor on MQTT and in metrics.
	ID string

	// Port is the serial port receiving frames, empty to disable.
	Port   string
	Serial serial.PortOptions
	// Mode is "stream" or "batch", for Port.
	Mode string

	// WebsocketAddr listens for hosts sending one frame per message.
	WebsocketAddr string
	// MQTTBrokerURL specifies the MQTT broker to publish snapshots to.
	// e.g. mqtt://host:port/topic-prefix
	MQTTBrokerURL string
	// MQTTFrames also accepts frames published to <id>/frames.
	MQTTFrames bool
	// PublishInterval republishes the snapshot when frames stop.
	PublishInterval time.Duration
	// MetricsAddr serves Prometheus metrics, empty to disable.
	MetricsAddr string

	StaleTimeout   time.Duration
	VerifyChecksum bool
	RejectEmpty    bool
	LoopInterval   time.Duration
}

var defaultConfig = Config{
	Mode:          "stream",
	MQTTBrokerURL: "mqtt://localhost:1883/hwmon/",
	StaleTimeout:  5 * time.Second,
	LoopInterval:  100 * time.Millisecond,
}

func init() {
	if err := loadEnv(&defaultConfig, os.Getenv); err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
	if defaultConfig.ID == "" {
		defaultConfig.ID = MachineID()
	}
}

func loadEnv(conf *Config, getenv func(string) string) error {
	strs := map[string]*string{
		"HWMON_ID":           &conf.ID,
		"HWMON_PORT":         &conf.Port,
		"HWMON_PARITY":       &conf.Serial.Parity,
		"HWMON_MODE":         &conf.Mode,
		"HWMON_WS_ADDR":      &conf.WebsocketAddr,
		"HWMON_MQTT_URL":     &conf.MQTTBrokerURL,
		"HWMON_METRICS_ADDR": &conf.MetricsAddr,
	}
	for name, ptr := range strs {
		if val := getenv(name); val != "" {
			*ptr = val
		}
	}
	if val := getenv("HWMON_BAUD"); val != "" {
		baud, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("HWMON_BAUD: %v", err)
		}
		conf.Serial.BaudRate = baud
	}
	durations := map[string]*time.Duration{
		"HWMON_STALE_TIMEOUT":    &conf.StaleTimeout,
		"HWMON_PUBLISH_INTERVAL": &conf.PublishInterval,
		"HWMON_READ_TIMEOUT":     &conf.Serial.ReadTimeout,
	}
	for name, ptr := range durations {
		if val := getenv(name); val != "" {
			d, err := time.ParseDuration(val)
			if err != nil {
				return fmt.Errorf("%s: %v", name, err)
			}
			*ptr = d
		}
	}
	bools := map[string]*bool{
		"HWMON_MQTT_FRAMES":     &conf.MQTTFrames,
		"HWMON_VERIFY_CHECKSUM": &conf.VerifyChecksum,
		"HWMON_REJECT_EMPTY":    &conf.RejectEmpty,
	}
	for name, ptr := range bools {
		if val := getenv(name); val != "" {
			b, err := strconv.ParseBool(val)
			if err != nil {
				return fmt.Errorf("%s: %v", name, err)
			}
			*ptr = b
		}
	}
	return nil
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.ID, "id", defaultConfig.ID, "Monitor ID")
	flag.StringVar(&defaultConfig.Port, "port", defaultConfig.Port, "Serial port receiving frames")
	flag.IntVar(&defaultConfig.Serial.BaudRate, "baud", defaultConfig.Serial.BaudRate, "Serial baud rate, 0 for default")
	flag.StringVar(&defaultConfig.Serial.Parity, "parity", defaultConfig.Serial.Parity, "Serial parity: N, E or O")
	flag.DurationVar(&defaultConfig.Serial.ReadTimeout, "read-timeout", defaultConfig.Serial.ReadTimeout, "Serial read timeout, 0 blocks")
	flag.StringVar(&defaultConfig.Mode, "mode", defaultConfig.Mode, "Serial decoding mode: stream or batch")
	flag.StringVar(&defaultConfig.WebsocketAddr, "ws", defaultConfig.WebsocketAddr, "Websocket listen address for hosts")
	flag.StringVar(&defaultConfig.MQTTBrokerURL, "mqtt", defaultConfig.MQTTBrokerURL, "MQTT broker URL, empty to disable")
	flag.BoolVar(&defaultConfig.MQTTFrames, "mqtt-frames", defaultConfig.MQTTFrames, "Accept frames published over MQTT")
	flag.DurationVar(&defaultConfig.PublishInterval, "publish-interval", defaultConfig.PublishInterval, "Republish snapshot interval, 0 disables")
	flag.StringVar(&defaultConfig.MetricsAddr, "metrics", defaultConfig.MetricsAddr, "Prometheus exporter address")
	flag.DurationVar(&defaultConfig.StaleTimeout, "stale-timeout", defaultConfig.StaleTimeout, "Invalidate readings after no frame for this long, 0 disables")
	flag.BoolVar(&defaultConfig.VerifyChecksum, "verify-checksum", defaultConfig.VerifyChecksum, "Reject frames with bad check bytes")
	flag.BoolVar(&defaultConfig.RejectEmpty, "reject-empty", defaultConfig.RejectEmpty, "Reject frames without readings")
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a Config with default configurations.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// MonitorOptions builds the options of the monitor.
func (c *Config) MonitorOptions() monitor.Options {
	var opts monitor.Options
	opts.VerifyChecksum = c.VerifyChecksum
	opts.RejectEmpty = c.RejectEmpty
	return opts
}

// Validate checks the config.
func (c *Config) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("monitor id must be specified")
	}
	if _, ok := monitor.ParseMode(c.Mode); !ok {
		return fmt.Errorf("unknown mode %q", c.Mode)
	}
	if c.Port != "" {
		if _, err := c.Serial.Normalize(); err != nil {
			return err
		}
	}
	if c.Port == "" && c.WebsocketAddr == "" && !(c.MQTTFrames && c.MQTTBrokerURL != "") {
		return fmt.Errorf("at least one frame source is required")
	}
	if c.StaleTimeout < 0 || c.PublishInterval < 0 {
		return fmt.Errorf("durations must not be negative")
	}
	return nil
}
