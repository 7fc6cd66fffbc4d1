package gitcli

import (
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"sync"
)

// Oldest git that understands "status --porcelain=v2 --renames".
var minVersion = Version{Major: 2, Minor: 18}

type Version struct {
	Major, Minor, Patch int
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

func (v Version) Less(o Version) bool {
	if v.Major != o.Major {
		return v.Major < o.Major
	}
	if v.Minor != o.Minor {
		return v.Minor < o.Minor
	}
	return v.Patch < o.Patch
}

func MinVersion() string {
	return minVersion.String()
}

// ParseVersion extracts the numeric version from "git --version" output,
// tolerating vendor suffixes such as "(Apple Git-146)" or ".windows.1".
func ParseVersion(out string) (Version, bool) {
	s := strings.TrimSpace(out)
	s = strings.TrimSpace(strings.TrimPrefix(s, "git version"))
	s = strings.TrimLeftFunc(s, func(r rune) bool { return r < '0' || r > '9' })
	if i := strings.IndexFunc(s, func(r rune) bool { return (r < '0' || r > '9') && r != '.' }); i >= 0 {
		s = s[:i]
	}
	parts := strings.Split(strings.Trim(s, "."), ".")
	if len(parts) < 2 {
		return Version{}, false
	}
	var nums [3]int
	for i := 0; i < len(parts) && i < 3; i++ {
		n, err := strconv.Atoi(parts[i])
		if err != nil {
			if i < 2 {
				return Version{}, false
			}
			break
		}
		nums[i] = n
	}
	return Version{Major: nums[0], Minor: nums[1], Patch: nums[2]}, true
}

func checkVersion(out string) error {
	v, ok := ParseVersion(out)
	if !ok {
		return fmt.Errorf("unable to parse git version output: %q", strings.TrimSpace(out))
	}
	if v.Less(minVersion) {
		return fmt.Errorf("git %s is too old; gitsplit requires git >= %s", v, minVersion)
	}
	return nil
}

var (
	versionOnce sync.Once
	versionOut  string
	versionErr  error
)

// GitVersion returns the trimmed output of "git --version", run once.
func GitVersion() (string, error) {
	versionOnce.Do(func() {
		out, err := exec.Command("git", "--version").CombinedOutput()
		versionOut = strings.TrimSpace(string(out))
		if err != nil {
			if versionOut != "" {
				versionErr = fmt.Errorf("git --version: %v: %s", err, versionOut)
			} else {
				versionErr = fmt.Errorf("git --version: %w", err)
			}
		}
	})
	return versionOut, versionErr
}

func EnsureMinVersion() error {
	out, err := GitVersion()
	if err != nil {
		return err
	}
	return checkVersion(out)
}
