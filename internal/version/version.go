// Package version carries the build metadata stamped in with
// -ldflags "-X github.com/lyonms2/avatar-arena/internal/version.Version=...".
package version

import "strconv"

var (
	Version = "dev"
	Commit  = "none"
	Date    = ""
	Dirty   = "false"
)

// Info is the build metadata as served by /version.
type Info struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date,omitempty"`
	Dirty   bool   `json:"dirty"`
}

// Get returns the stamped metadata. An unparsable Dirty flag reads as false.
func Get() Info {
	dirty, _ := strconv.ParseBool(Dirty)
	return Info{Version: Version, Commit: Commit, Date: Date, Dirty: dirty}
}
