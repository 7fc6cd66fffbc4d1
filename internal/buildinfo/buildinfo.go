// Package buildinfo reports how the gitsplit binary was built.
package buildinfo

import (
	"runtime/debug"
	"strings"
)

type Info struct {
	Version   string
	Revision  string
	Modified  bool
	Tags      string
	GoVersion string
}

var readBuildInfo = debug.ReadBuildInfo

// Read collects the module version, VCS stamp and build tags. Version is
// "dev" when the binary was not built from a tagged module.
func Read() Info {
	info := Info{Version: "dev"}
	bi, ok := readBuildInfo()
	if !ok || bi == nil {
		return info
	}
	info.GoVersion = bi.GoVersion
	if v := bi.Main.Version; v != "" && v != "(devel)" {
		info.Version = v
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "-tags":
			info.Tags = s.Value
		case "vcs.revision":
			info.Revision = s.Value
		case "vcs.modified":
			info.Modified = s.Value == "true"
		}
	}
	return info
}

// String renders e.g. "v1.2.0 (rev 0a1b2c3, dirty, tags: gitcli)".
func (i Info) String() string {
	var extra []string
	if i.Revision != "" {
		rev := i.Revision
		if len(rev) > 7 {
			rev = rev[:7]
		}
		extra = append(extra, "rev "+rev)
	}
	if i.Modified {
		extra = append(extra, "dirty")
	}
	if i.Tags != "" {
		extra = append(extra, "tags: "+i.Tags)
	}
	if len(extra) == 0 {
		return i.Version
	}
	return i.Version + " (" + strings.Join(extra, ", ") + ")"
}
