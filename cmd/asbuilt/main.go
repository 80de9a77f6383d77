// Package main provides the CLI entry point for asbuilt.
package main

import (
	"os"
	"runtime/debug"

	"github.com/alexander-akhmetov/asbuilt/internal/cli"
	asdebug "github.com/alexander-akhmetov/asbuilt/internal/debug"
)

// Version information set via ldflags at build time.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	if version == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok {
			version, commit, date = versionFromBuildInfo(info)
		}
	}
	cli.SetVersionInfo(version, commit, date)

	err := cli.Execute()
	asdebug.Sync()
	if err != nil {
		os.Exit(1)
	}
}

// versionFromBuildInfo derives version, commit and date from the module
// version and VCS stamps. A "go install ...@vX" build reports its module
// version; local builds report "dev" with the short revision.
func versionFromBuildInfo(info *debug.BuildInfo) (string, string, string) {
	v := "dev"
	if mv := info.Main.Version; mv != "" && mv != "(devel)" {
		v = mv
	}

	var revision, when string
	dirty := false
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			revision = s.Value
		case "vcs.time":
			when = s.Value
		case "vcs.modified":
			dirty = s.Value == "true"
		}
	}

	c := "unknown"
	if len(revision) >= 7 {
		c = revision[:7]
		if dirty {
			c += "-dirty"
		}
	}
	if when == "" {
		when = "unknown"
	}
	return v, c, when
}
