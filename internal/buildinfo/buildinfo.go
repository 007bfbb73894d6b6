// Package buildinfo reports the release version and source revision of the
// running binary.
package buildinfo

import (
	"runtime/debug"
)

// Unknown is reported when no version could be determined.
const Unknown = "<unknown>"

const abbrevLen = 7

// Set at link time:
//
//	-ldflags "-X github.com/okian/jobdash/internal/buildinfo.version=1.4.0
//	          -X github.com/okian/jobdash/internal/buildinfo.commitID=abc1234
//	          -X github.com/okian/jobdash/internal/buildinfo.commitDate=2024-01-01T10:00:00Z"
var (
	version    string
	commitID   string
	commitDate string
)

// Revision identifies the source-control commit a binary was built from.
type Revision struct {
	CommitID   string
	CommitDate string
}

// String formats the revision as "<commit-id> @ <commit-date>".
func (r Revision) String() string {
	return r.CommitID + " @ " + r.CommitDate
}

// Info is an immutable snapshot of build metadata. The revision is either
// fully present or absent.
type Info struct {
	version     string
	revision    Revision
	hasRevision bool
}

// Option configures New.
type Option func(*Info)

// WithRevision attaches revision metadata. Empty id or date leaves the
// revision absent.
func WithRevision(id, date string) Option {
	return func(i *Info) {
		if id == "" || date == "" {
			return
		}
		i.revision = Revision{CommitID: id, CommitDate: date}
		i.hasRevision = true
	}
}

// New builds an Info. An empty version is reported as Unknown.
func New(v string, opts ...Option) Info {
	if v == "" {
		v = Unknown
	}
	i := Info{version: v}
	for _, opt := range opts {
		opt(&i)
	}
	return i
}

// Version returns the release version.
func (i Info) Version() string { return i.version }

// Revision returns the revision and whether one is known.
func (i Info) Revision() (Revision, bool) { return i.revision, i.hasRevision }

// Read assembles Info from link-time variables, falling back to the module
// and VCS data the Go toolchain embeds in the binary.
func Read() Info {
	bi, _ := debug.ReadBuildInfo()
	return fromBuild(version, commitID, commitDate, bi)
}

func fromBuild(v, id, date string, bi *debug.BuildInfo) Info {
	if bi != nil {
		if v == "" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
			v = bi.Main.Version
		}
		var rev, at string
		for _, s := range bi.Settings {
			switch s.Key {
			case "vcs.revision":
				rev = s.Value
			case "vcs.time":
				at = s.Value
			}
		}
		if id == "" && date == "" {
			if len(rev) > abbrevLen {
				rev = rev[:abbrevLen]
			}
			id, date = rev, at
		}
	}
	return New(v, WithRevision(id, date))
}
