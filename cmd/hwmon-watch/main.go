package main

import (
	"flag"
	"log"
	"os"

	"github.com/robotalks/hwmon.go/pkg/framework"
	"github.com/robotalks/hwmon.go/pkg/link/mqtt"
	"github.com/robotalks/hwmon.go/pkg/msgs"
	"github.com/robotalks/hwmon.go/pkg/sensors"
)

var (
	mqttURL  = "mqtt://localhost:1883/hwmon/"
	monitor  = "+"
	discover bool
)

func init() {
	if val := os.Getenv("HWMON_MQTT_URL"); val != "" {
		mqttURL = val
	}
	flag.StringVar(&mqttURL, "mqtt", mqttURL, "MQTT broker URL.")
	flag.StringVar(&monitor, "id", monitor, "Monitor ID, + for all.")
	flag.BoolVar(&discover, "discover", discover, "List online monitors and exit.")
}

func printSnapshot(s *msgs.Snapshot) {
	for _, r := range s.Readings {
		id := sensors.ID(r.ID)
		state := ""
		if !r.Valid {
			state = " (invalid)"
		}
		log.Printf("%s: 0x%02x %-16s %10.2f %s%s", s.MonitorID, r.ID, id.Name(), r.Value, id.Unit(), state)
	}
	if st := s.Stats; st != nil {
		log.Printf("%s: ok=%d errors=%d age=%dms", s.MonitorID, st.Ok, st.Errors, st.AgeMs)
	}
}

func main() {
	flag.Parse()
	log.SetFlags(log.Lmicroseconds)

	connector, err := mqtt.NewConnector(mqttURL)
	if err != nil {
		log.Fatalln(err)
	}
	runner := framework.NewRunner().HandleSignals()

	if discover {
		metas, err := connector.Discover(runner.Context)
		if err != nil {
			log.Fatalln(err)
		}
		for _, meta := range metas {
			log.Printf("%s: %d sensors, capacity %d", meta.ID, len(meta.Sensors), meta.Capacity)
		}
		return
	}

	if err := connector.Watch(runner.Context, monitor, printSnapshot); err != nil && err != runner.Context.Err() {
		log.Fatalln(err)
	}
}
