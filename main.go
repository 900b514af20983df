package main

import (
	"fmt"
	"os"

	"github.com/forgecraft/audiograph/cmd"
	"github.com/forgecraft/audiograph/internal/buildinfo"
	"github.com/forgecraft/audiograph/internal/conf"
)

// version and buildDate are injected at build time via:
//
//	go build -ldflags "-X main.version=... -X main.buildDate=..."
//
// matching the teacher's own ldflags convention. Unset in a plain `go build`.
var (
	version   = "dev"
	buildDate = "unknown"
)

func main() {
	settings, err := conf.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading configuration: %v\n", err)
		os.Exit(1)
	}

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}
	build := &buildinfo.Context{
		Version:   version,
		BuildDate: buildDate,
		SystemID:  hostname,
	}

	rootCmd := cmd.RootCommand(settings, build)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
