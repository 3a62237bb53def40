// Package version хранит сведения о сборке, заданные через -ldflags:
//
//	-X github.com/vladislavdragonenkov/subscriptions/internal/version.version=v1.2.0
package version

import (
	"fmt"
	"runtime/debug"
)

var (
	version = "dev"
	commit  = ""
	date    = ""
)

// Build — сведения о бинаре.
type Build struct {
	Version string
	Commit  string
	Date    string
}

// Current возвращает сведения о сборке. Пустые commit и date берутся из
// VCS-меток, которые go build вшивает сам.
func Current() Build {
	b := Build{Version: version, Commit: commit, Date: date}
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, s := range info.Settings {
			switch {
			case s.Key == "vcs.revision" && b.Commit == "":
				b.Commit = s.Value
			case s.Key == "vcs.time" && b.Date == "":
				b.Date = s.Value
			}
		}
	}
	if b.Commit == "" {
		b.Commit = "unknown"
	}
	if b.Date == "" {
		b.Date = "unknown"
	}
	return b
}

// GetVersion возвращает версию сборки; она же отдаётся в /healthz.
func GetVersion() string { return version }

// Fields возвращает сведения о сборке для стартовой строки журнала.
func Fields() map[string]any {
	b := Current()
	return map[string]any{"version": b.Version, "commit": b.Commit, "date": b.Date}
}

func (b Build) String() string {
	return fmt.Sprintf("version=%s commit=%s date=%s", b.Version, b.Commit, b.Date)
}
