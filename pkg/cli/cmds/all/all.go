// Package all registers all shell commands.
package all

import (
	// register local monitor commands
	_ "github.com/robotalks/hwmon.go/pkg/cli/cmds/local"
)
