package main

//go-build: CGO_ENABLED=0

import (
	"context"
	"flag"
	"io"
	"math"
	"os"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/hwmon.go/pkg/framework"
	"github.com/robotalks/hwmon.go/pkg/link"
	"github.com/robotalks/hwmon.go/pkg/link/mqtt"
	"github.com/robotalks/hwmon.go/pkg/link/serial"
	"github.com/robotalks/hwmon.go/pkg/link/websocket"
	"github.com/robotalks/hwmon.go/pkg/sensors"
	"github.com/robotalks/hwmon.go/pkg/wire"
)

var (
	port     string
	baudRate int
	wsURL    string
	mqttURL  string
	target   = "desk"
	interval = time.Second
	count    int
)

func init() {
	flag.StringVar(&port, "port", port, "Serial port to write frames to")
	flag.IntVar(&baudRate, "baud", baudRate, "Serial baud rate, 0 for default")
	flag.StringVar(&wsURL, "ws", wsURL, "Websocket URL of a monitor, e.g. ws://host:8080/frames")
	flag.StringVar(&mqttURL, "mqtt", mqttURL, "MQTT broker URL to publish frames to")
	flag.StringVar(&target, "id", target, "Monitor ID for MQTT")
	flag.DurationVar(&interval, "interval", interval, "Frame interval")
	flag.IntVar(&count, "n", count, "Number of frames, 0 for unlimited")
}

// rawWriter writes frames back to back, the way a host writes a
// serial port.
type rawWriter struct {
	io.Writer
}

func (w rawWriter) WritePacket(pkt []byte) error {
	_, err := w.Write(pkt)
	return err
}

var baseValues = map[sensors.Kind]float64{
	sensors.KindTemperature: 50,
	sensors.KindLoad:        40,
	sensors.KindClock:       3000,
	sensors.KindPower:       60,
	sensors.KindVoltage:     1.2,
	sensors.KindFan:         1200,
	sensors.KindMemory:      8,
	sensors.KindThroughput:  500,
}

// synthesize generates readings oscillating around a plausible value
// for each catalog sensor.
func synthesize(t time.Duration) []wire.Record {
	infos := sensors.All()
	records := make([]wire.Record, 0, len(infos))
	secs := t.Seconds()
	for n, info := range infos {
		base, ok := baseValues[info.Kind]
		if !ok {
			continue
		}
		v := base * (1 + 0.2*math.Sin(secs/10+float64(n)))
		records = append(records, wire.Record{ID: byte(info.ID), Value: float32(v)})
	}
	return sensors.Filter(records)
}

func openWriter() (link.PacketWriter, io.Closer, error) {
	switch {
	case port != "":
		p, err := serial.Open(port, serial.PortOptions{BaudRate: baudRate})
		if err != nil {
			return nil, nil, err
		}
		return rawWriter{p}, p, nil
	case wsURL != "":
		rw, err := websocket.Dial(wsURL, "http://localhost/")
		if err != nil {
			return nil, nil, err
		}
		return rw, rw, nil
	case mqttURL != "":
		q, err := mqtt.NewQueueFromURL(mqttURL)
		if err != nil {
			return nil, nil, err
		}
		token := q.Connect()
		token.Wait()
		if err := token.Error(); err != nil {
			return nil, nil, err
		}
		return mqtt.NewPacketReadWriter(q).ForHost(target), q, nil
	}
	return rawWriter{os.Stdout}, nil, nil
}

func run(ctx context.Context) error {
	w, closer, err := openWriter()
	if err != nil {
		return err
	}
	if closer != nil {
		defer closer.Close()
	}
	sender := link.NewFrameSender(w)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	start := time.Now()
	for n := 0; count == 0 || n < count; n++ {
		records := synthesize(time.Since(start))
		if err := sender.Send(records); err != nil {
			return err
		}
		glog.V(2).Infof("sent frame %d with %d readings", n, len(records))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}

func main() {
	flag.Parse()

	runner := framework.NewRunner().HandleSignals()
	if err := runner.Go(framework.RunFunc(run)).Wait(); err != nil {
		glog.Exit(err)
	}
}
