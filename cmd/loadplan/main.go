// Command loadplan generates JMeter test plans and functional test cases from
// OpenAPI, Swagger and HAR inputs.
package main

import (
	"os"
	"runtime/debug"

	"github.com/GabrielNunesIT/go-libs/logger"

	"github.com/GabrielNunesIT/loadplan/internal/cli"
)

// version is set with -ldflags "-X main.version=...".
var version = ""

func main() {
	log := logger.NewConsoleLogger(os.Stdout)

	cli.Version = resolveVersion()

	if err := cli.New(log).Execute(); err != nil {
		log.Errorf("Error: %v", err)
		os.Exit(1)
	}
}

func resolveVersion() string {
	if version != "" {
		return version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return cli.Version
}
