package env

import (
	"os"

	"github.com/denisbrodbeck/machineid"
	"github.com/golang/glog"
)

// MachineID retrieves an id identifying the machine, derived from the
// system machine id without exposing it. The hostname is used when the
// system doesn't provide one.
func MachineID() string {
	id, err := machineid.ProtectedID("hwmon")
	if err == nil && len(id) >= 12 {
		return id[:12]
	}
	glog.V(1).Infof("machine id unavailable: %v", err)
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "hwmon"
}
