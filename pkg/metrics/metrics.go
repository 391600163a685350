// Package metrics exports monitor readings and link counters to Prometheus.
package metrics

import (
	"context"
	"fmt"
	"net/http"

	"github.com/golang/glog"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/robotalks/hwmon.go/pkg/framework"
	"github.com/robotalks/hwmon.go/pkg/monitor"
	"github.com/robotalks/hwmon.go/pkg/sensors"
)

// Namespace prefixes every metric name.
const Namespace = "hwmon"

// Source provides snapshots. *monitor.Monitor implements it.
type Source interface {
	Snapshot() *monitor.Snapshot
}

// Collector implements prometheus.Collector over a monitor. Every scrape
// takes one snapshot so all values are consistent.
type Collector struct {
	Source Source

	framesOK     *prometheus.Desc
	frameErrors  *prometheus.Desc
	bytes        *prometheus.Desc
	age          *prometheus.Desc
	count        *prometheus.Desc
	maxCount     *prometheus.Desc
	sensorValue  *prometheus.Desc
	sensorsValid *prometheus.Desc
}

// NewCollector creates a Collector. constLabels are attached to every
// metric, e.g. the monitor id.
func NewCollector(src Source, constLabels prometheus.Labels) *Collector {
	desc := func(subsystem, name, help string, labels ...string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(Namespace, subsystem, name), help, labels, constLabels)
	}
	return &Collector{
		Source:       src,
		framesOK:     desc("link", "frames_ok_total", "Frames accepted."),
		frameErrors:  desc("link", "frame_errors_total", "Frames rejected."),
		bytes:        desc("link", "bytes_total", "Bytes fed into the monitor."),
		age:          desc("link", "age_seconds", "Time since the last accepted frame."),
		count:        desc("link", "readings", "Readings in the last accepted frame."),
		maxCount:     desc("link", "max_readings", "Largest number of readings seen in a frame."),
		sensorValue:  desc("sensor", "value", "Latest valid sensor reading.", "id", "name", "unit"),
		sensorsValid: desc("sensor", "valid", "Whether the latest reading of a sensor is valid.", "id", "name"),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.framesOK
	ch <- c.frameErrors
	ch <- c.bytes
	ch <- c.age
	ch <- c.count
	ch <- c.maxCount
	ch <- c.sensorValue
	ch <- c.sensorsValid
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	s := c.Source.Snapshot()
	ch <- prometheus.MustNewConstMetric(c.framesOK, prometheus.CounterValue, float64(s.Stats.OK))
	ch <- prometheus.MustNewConstMetric(c.frameErrors, prometheus.CounterValue, float64(s.Stats.Errors))
	ch <- prometheus.MustNewConstMetric(c.bytes, prometheus.CounterValue, float64(s.Stats.Bytes))
	ch <- prometheus.MustNewConstMetric(c.age, prometheus.GaugeValue, s.Age.Seconds())
	ch <- prometheus.MustNewConstMetric(c.count, prometheus.GaugeValue, float64(len(s.Readings)))
	ch <- prometheus.MustNewConstMetric(c.maxCount, prometheus.GaugeValue, float64(s.Stats.MaxCount))

	// duplicate ids in a frame would collide, the first one wins
	seen := make(map[byte]bool, len(s.Readings))
	for _, r := range s.Readings {
		if seen[r.ID] {
			continue
		}
		seen[r.ID] = true
		id := sensors.ID(r.ID)
		idLabel := fmt.Sprintf("0x%02x", r.ID)
		valid := 0.0
		if r.Valid {
			valid = 1
			ch <- prometheus.MustNewConstMetric(c.sensorValue, prometheus.GaugeValue, float64(r.Value), idLabel, id.Name(), id.Unit())
		}
		ch <- prometheus.MustNewConstMetric(c.sensorsValid, prometheus.GaugeValue, valid, idLabel, id.Name())
	}
}

// Exporter serves the metrics of a registry over HTTP.
type Exporter struct {
	Addr     string
	Gatherer prometheus.Gatherer
}

// Handler returns the HTTP handler of the exporter.
func (e *Exporter) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(e.Gatherer, promhttp.HandlerOpts{}))
	return mux
}

// Run implements framework.Runnable.
func (e *Exporter) Run(ctx context.Context) error {
	server := &http.Server{Addr: e.Addr, Handler: e.Handler()}
	glog.Infof("serving metrics on %s", e.Addr)
	err := framework.RunWithContextCancel(ctx, func() {
		server.Shutdown(context.Background())
	}, server.ListenAndServe)
	if err == http.ErrServerClosed {
		err = nil
	}
	return err
}

// NewExporter registers a Collector for the monitor with a fresh registry
// and returns the Exporter serving it on addr.
func NewExporter(addr string, src Source, constLabels prometheus.Labels) (*Exporter, error) {
	reg := prometheus.NewRegistry()
	if err := reg.Register(NewCollector(src, constLabels)); err != nil {
		return nil, err
	}
	return &Exporter{Addr: addr, Gatherer: reg}, nil
}
