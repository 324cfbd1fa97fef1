package main

import "github.com/sw3do/sw3do-browser/internal/cli/cmd"

// Build-time variables (set via ldflags).
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	cmd.SetBuildInfo(cmd.BuildInfo{
		Version: version,
		Commit:  commit,
		Date:    buildDate,
	})
	cmd.Execute()
}
