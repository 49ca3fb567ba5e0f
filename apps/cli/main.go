package main

import "github.com/curlkit/curlkit/apps/cli/cmd"

// Populated via -ldflags at release time.
var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	cmd.Execute(version, buildTime)
}
