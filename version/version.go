// Package version reports the build version of traverso. Set it at build time
// with:
//
//	go build -ldflags "-X github.com/vsariola/traverso/version.Version=$(git describe --dirty)"
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

var Version string

// Revision is the short VCS revision embedded by the go tool, with -dirty
// appended for modified trees.
var Revision = func() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	var rev string
	var modified bool
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			rev = s.Value[:min(7, len(s.Value))]
		case "vcs.modified":
			modified = s.Value == "true"
		}
	}
	if rev != "" && modified {
		rev += "-dirty"
	}
	return rev
}()

// Short is Version if set, otherwise Revision, otherwise "dev".
func Short() string {
	switch {
	case Version != "":
		return Version
	case Revision != "":
		return Revision
	}
	return "dev"
}

// Long adds the Go version and platform to Short.
func Long() string {
	return fmt.Sprintf("traverso %s (%s %s/%s)", Short(), runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
