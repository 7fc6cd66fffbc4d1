package buildinfo

import (
	"runtime/debug"
	"testing"
)

func TestRead(t *testing.T) {
	tests := []struct {
		name string
		bi   *debug.BuildInfo
		ok   bool
		want string
	}{
		{name: "unavailable", want: "dev"},
		{name: "devel", bi: &debug.BuildInfo{Main: debug.Module{Version: "(devel)"}}, ok: true, want: "dev"},
		{
			name: "tagged",
			bi: &debug.BuildInfo{
				Main: debug.Module{Version: "v1.2.0"},
				Settings: []debug.BuildSetting{
					{Key: "-tags", Value: "gitcli"},
					{Key: "vcs.revision", Value: "0a1b2c3d4e5f"},
					{Key: "vcs.modified", Value: "true"},
				},
			},
			ok:   true,
			want: "v1.2.0 (rev 0a1b2c3, dirty, tags: gitcli)",
		},
		{
			name: "revision_only",
			bi: &debug.BuildInfo{
				Settings: []debug.BuildSetting{{Key: "vcs.revision", Value: "abc"}, {Key: "vcs.modified", Value: "false"}},
			},
			ok:   true,
			want: "dev (rev abc)",
		},
	}
	orig := readBuildInfo
	t.Cleanup(func() { readBuildInfo = orig })
	for _, tt := range tests {
		readBuildInfo = func() (*debug.BuildInfo, bool) { return tt.bi, tt.ok }
		if got := Read().String(); got != tt.want {
			t.Fatalf("%s: Read().String() = %q, want %q", tt.name, got, tt.want)
		}
	}
}
