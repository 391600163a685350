package env

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/golang/glog"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/robotalks/hwmon.go/pkg/framework"
	"github.com/robotalks/hwmon.go/pkg/link"
	"github.com/robotalks/hwmon.go/pkg/link/mqtt"
	"github.com/robotalks/hwmon.go/pkg/link/serial"
	"github.com/robotalks/hwmon.go/pkg/link/websocket"
	"github.com/robotalks/hwmon.go/pkg/metrics"
	"github.com/robotalks/hwmon.go/pkg/monitor"
)

// Env is a monitor with its sources and sinks.
type Env struct {
	Config    *Config
	Monitor   *monitor.Monitor
	Guard     *monitor.Guard
	Registrar *mqtt.Registrar
	Exporter  *metrics.Exporter

	handlers []monitor.Handler
	sources  []framework.Runnable
	adders   []framework.LoopAdder
}

// NewEnv creates Env from config. The serial port is opened when the
// Env runs.
func (c *Config) NewEnv() (*Env, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	env := &Env{
		Config:  c,
		Monitor: monitor.New(c.MonitorOptions()),
	}
	env.Guard = monitor.NewGuard(env.Monitor, c.StaleTimeout)

	if c.MQTTBrokerURL != "" {
		reg, err := mqtt.NewRegistrar(c.MQTTBrokerURL, c.ID)
		if err != nil {
			return nil, fmt.Errorf("create MQTT registrar error: %v", err)
		}
		reg.Publisher.Interval = c.PublishInterval
		reg.Publisher.Source = env.Monitor.Snapshot
		env.Registrar = reg
		env.handlers = append(env.handlers, reg)
		env.adders = append(env.adders, reg)
		if c.MQTTFrames {
			rw := mqtt.NewPacketReadWriter(reg.Queue).ForMonitor(c.ID)
			env.adders = append(env.adders, link.NewFramePump(rw, env.Monitor))
		}
	}

	if c.MetricsAddr != "" {
		exporter, err := metrics.NewExporter(c.MetricsAddr, env.Monitor, prometheus.Labels{"monitor": c.ID})
		if err != nil {
			return nil, fmt.Errorf("create metrics exporter error: %v", err)
		}
		env.Exporter = exporter
		env.sources = append(env.sources, framework.NamedRun("metrics", exporter))
	}

	if c.Port != "" {
		mode, _ := monitor.ParseMode(c.Mode)
		env.sources = append(env.sources, framework.NamedRun("serial:"+c.Port, &serialSource{
			path: c.Port,
			opts: c.Serial,
			mode: mode,
			mon:  env.Monitor,
		}))
	}

	if c.WebsocketAddr != "" {
		env.sources = append(env.sources, framework.NamedRun("websocket", &websocketSource{
			addr: c.WebsocketAddr,
			mon:  env.Monitor,
		}))
	}

	env.Monitor.Handler = monitor.HandleFrameFunc(env.handleFrame)
	env.Monitor.Notifier = monitor.FrameRejectedFunc(func(err error) {
		glog.V(1).Infof("frame rejected: %v", err)
	})
	return env, nil
}

// MustNewEnv creates Env and fails on error.
func (c *Config) MustNewEnv() *Env {
	env, err := c.NewEnv()
	if err != nil {
		log.Fatalln(err)
	}
	return env
}

// AddHandler adds a handler called for every accepted frame.
func (e *Env) AddHandler(h monitor.Handler) {
	e.handlers = append(e.handlers, h)
}

func (e *Env) handleFrame(s *monitor.Snapshot) {
	for _, h := range e.handlers {
		h.HandleFrame(s)
	}
}

// AddToLoop adds controllers/runners to loop.
func (e *Env) AddToLoop(loop *framework.Loop) {
	loop.Interval = e.Config.LoopInterval
	loop.Add(e.Guard)
	loop.Add(e.adders...)
	loop.AddRunnable(e.sources...)
}

type serialSource struct {
	path string
	opts serial.PortOptions
	mode monitor.Mode
	mon  *monitor.Monitor
}

func (s *serialSource) Run(ctx context.Context) error {
	port, err := serial.Open(s.path, s.opts)
	if err != nil {
		return err
	}
	glog.Infof("reading %s frames from %s", s.mode, s.path)
	pump := monitor.NewPump(port, s.mon)
	pump.Mode = s.mode
	pump.ReadTimeout = s.opts.ReadTimeout > 0
	return framework.RunWithContextCloser(ctx, port, func() error {
		return pump.Run(ctx)
	})
}

type websocketSource struct {
	addr string
	mon  *monitor.Monitor
}

func (s *websocketSource) Run(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.Handle("/frames", websocket.Handler(ctx, s.mon))
	server := &http.Server{Addr: s.addr, Handler: mux}
	glog.Infof("accepting frames on ws://%s/frames", s.addr)
	err := framework.RunWithContextCancel(ctx, func() {
		server.Shutdown(context.Background())
	}, server.ListenAndServe)
	if err == http.ErrServerClosed {
		err = nil
	}
	return err
}
