package metrics

import (
	"io/ioutil"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"

	"github.com/robotalks/hwmon.go/pkg/monitor"
	"github.com/robotalks/hwmon.go/pkg/registry"
	"github.com/robotalks/hwmon.go/pkg/wire"
)

func testMonitor(t *testing.T) *monitor.Monitor {
	clock := registry.NewManualClock(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	m := monitor.New(monitor.Options{Clock: clock})
	data, err := (&wire.Frame{Records: []wire.Record{
		{ID: 0x01, Value: 45.5},
		{ID: 0x20, Value: 62},
		{ID: 0x01, Value: 99},
	}}).Bytes()
	require.NoError(t, err)
	require.True(t, m.FeedBuffer(data))
	require.False(t, m.FeedBuffer(append([]byte{0xaa, 0x03}, data[2:]...)))
	clock.Advance(1500 * time.Millisecond)
	return m
}

func gather(t *testing.T, c prometheus.Collector) map[string][]*dto.Metric {
	reg := prometheus.NewPedanticRegistry()
	require.NoError(t, reg.Register(c))
	families, err := reg.Gather()
	require.NoError(t, err)
	res := make(map[string][]*dto.Metric)
	for _, f := range families {
		res[f.GetName()] = f.GetMetric()
	}
	return res
}

func labels(m *dto.Metric) map[string]string {
	res := make(map[string]string)
	for _, l := range m.GetLabel() {
		res[l.GetName()] = l.GetValue()
	}
	return res
}

func TestCollector(t *testing.T) {
	m := testMonitor(t)
	metrics := gather(t, NewCollector(m, prometheus.Labels{"monitor": "desk"}))

	require.Equal(t, 1.0, metrics["hwmon_link_frames_ok_total"][0].GetCounter().GetValue())
	require.Equal(t, 1.0, metrics["hwmon_link_frame_errors_total"][0].GetCounter().GetValue())
	require.Equal(t, 1.5, metrics["hwmon_link_age_seconds"][0].GetGauge().GetValue())
	require.Equal(t, 3.0, metrics["hwmon_link_readings"][0].GetGauge().GetValue())
	require.Equal(t, 3.0, metrics["hwmon_link_max_readings"][0].GetGauge().GetValue())

	values := metrics["hwmon_sensor_value"]
	require.Len(t, values, 2)
	got := make(map[string]float64)
	for _, v := range values {
		l := labels(v)
		require.Equal(t, "desk", l["monitor"])
		got[l["id"]+" "+l["name"]] = v.GetGauge().GetValue()
	}
	require.Equal(t, map[string]float64{"0x01 CPU Temp": 45.5, "0x20 RAM Used": 62}, got)
}

func TestCollectorInvalidated(t *testing.T) {
	m := testMonitor(t)
	m.InvalidateAll()
	metrics := gather(t, NewCollector(m, nil))
	require.Empty(t, metrics["hwmon_sensor_value"])
	valid := metrics["hwmon_sensor_valid"]
	require.Len(t, valid, 2)
	for _, v := range valid {
		require.Equal(t, 0.0, v.GetGauge().GetValue())
	}
}

func TestExporterHandler(t *testing.T) {
	e, err := NewExporter(":0", testMonitor(t), nil)
	require.NoError(t, err)
	server := httptest.NewServer(e.Handler())
	defer server.Close()

	resp, err := server.Client().Get(server.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := ioutil.ReadAll(resp.Body)
	require.NoError(t, err)
	require.True(t, strings.Contains(string(body), `hwmon_sensor_value{id="0x20",name="RAM Used",unit="GB"} 62`), string(body))
}
