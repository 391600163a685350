package env

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/hwmon.go/pkg/monitor"
	"github.com/robotalks/hwmon.go/pkg/wire"
)

func TestLoadEnv(t *testing.T) {
	vars := map[string]string{
		"HWMON_ID":              "desk",
		"HWMON_PORT":            "/dev/ttyACM0",
		"HWMON_BAUD":            "9600",
		"HWMON_MODE":            "batch",
		"HWMON_STALE_TIMEOUT":   "2s",
		"HWMON_VERIFY_CHECKSUM": "true",
		"HWMON_MQTT_URL":        "mqtt://broker/lab",
	}
	conf := Config{Mode: "stream", StaleTimeout: 5 * time.Second}
	require.NoError(t, loadEnv(&conf, func(name string) string { return vars[name] }))
	require.Equal(t, "desk", conf.ID)
	require.Equal(t, "/dev/ttyACM0", conf.Port)
	require.Equal(t, 9600, conf.Serial.BaudRate)
	require.Equal(t, "batch", conf.Mode)
	require.Equal(t, 2*time.Second, conf.StaleTimeout)
	require.True(t, conf.VerifyChecksum)
	require.False(t, conf.RejectEmpty)
	require.Equal(t, "mqtt://broker/lab", conf.MQTTBrokerURL)

	for name, val := range map[string]string{
		"HWMON_BAUD":          "fast",
		"HWMON_STALE_TIMEOUT": "5",
		"HWMON_REJECT_EMPTY":  "maybe",
	} {
		err := loadEnv(&Config{}, func(n string) string {
			if n == name {
				return val
			}
			return ""
		})
		require.Error(t, err, name)
	}
}

func TestDefaultConfig(t *testing.T) {
	conf := NewConfig()
	require.NotEmpty(t, conf.ID)
	require.NotSame(t, Default(), conf)
	conf.ID = "changed"
	require.NotEqual(t, "changed", Default().ID)
}

func TestValidate(t *testing.T) {
	base := Config{ID: "desk", Mode: "stream", WebsocketAddr: ":8080"}
	require.NoError(t, base.Validate())

	testCases := map[string]func(*Config){
		"no id":       func(c *Config) { c.ID = "" },
		"bad mode":    func(c *Config) { c.Mode = "frames" },
		"no source":   func(c *Config) { c.WebsocketAddr = "" },
		"bad parity":  func(c *Config) { c.Port, c.Serial.Parity = "/dev/ttyUSB0", "M" },
		"negative":    func(c *Config) { c.StaleTimeout = -time.Second },
		"mqtt no url": func(c *Config) { c.WebsocketAddr, c.MQTTFrames = "", true },
	}
	for name, mutate := range testCases {
		conf := base
		mutate(&conf)
		require.Error(t, conf.Validate(), name)
	}

	conf := base
	conf.WebsocketAddr, conf.MQTTFrames, conf.MQTTBrokerURL = "", true, "mqtt://broker"
	require.NoError(t, conf.Validate())
}

func TestNewEnv(t *testing.T) {
	conf := &Config{
		ID:             "desk",
		Mode:           "stream",
		WebsocketAddr:  "127.0.0.1:0",
		MetricsAddr:    "127.0.0.1:0",
		StaleTimeout:   time.Second,
		VerifyChecksum: true,
	}
	env, err := conf.NewEnv()
	require.NoError(t, err)
	require.Nil(t, env.Registrar)
	require.NotNil(t, env.Exporter)
	require.Len(t, env.sources, 2)
	require.Equal(t, time.Second, env.Guard.Timeout)

	var got []*monitor.Snapshot
	env.AddHandler(monitor.HandleFrameFunc(func(s *monitor.Snapshot) { got = append(got, s) }))
	unsigned := []byte{0xaa, 0x01, 0x00, 0x00, 0x00, 0x55}
	require.False(t, env.Monitor.FeedBuffer(unsigned))
	signed, err := (&wire.Frame{}).Bytes()
	require.NoError(t, err)
	require.True(t, env.Monitor.FeedBuffer(signed))
	require.Len(t, got, 1)
}

func TestNewEnvWithMQTT(t *testing.T) {
	conf := &Config{
		ID:              "desk",
		Mode:            "batch",
		MQTTBrokerURL:   "mqtt://127.0.0.1:1/lab",
		MQTTFrames:      true,
		PublishInterval: time.Second,
	}
	env, err := conf.NewEnv()
	require.NoError(t, err)
	require.NotNil(t, env.Registrar)
	require.Equal(t, "lab/", env.Registrar.Queue.TopicPrefix)
	require.Equal(t, time.Second, env.Registrar.Publisher.Interval)
	require.Len(t, env.adders, 2)
	require.Empty(t, env.sources)
}
