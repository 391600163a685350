package main

//go-build: CGO_ENABLED=0

import (
	"flag"

	"github.com/robotalks/hwmon.go/pkg/env"
	"github.com/robotalks/hwmon.go/pkg/framework"
)

func init() {
	env.SetupFlags()
}

func main() {
	flag.Parse()

	env := env.NewConfig().MustNewEnv()
	runner := framework.NewRunner().HandleSignals()
	framework.NewLoop().Add(env).RunOrFail(runner.Context)
}
