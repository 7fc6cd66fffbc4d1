// Package gitcli reads repository status through the git executable. It is
// used by the gitcli build of the status classifier and by the version
// command.
package gitcli

import (
	"bytes"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

type Repo struct {
	root string
}

// Open resolves the top level of the repository containing repoPath.
func Open(repoPath string) (*Repo, error) {
	if err := EnsureMinVersion(); err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(repoPath)
	if err != nil {
		return nil, err
	}
	out, err := run(abs, "git rev-parse", "rev-parse", "--show-toplevel")
	if err != nil {
		return nil, fmt.Errorf("open repository: %w", err)
	}
	root := strings.TrimSpace(string(out))
	if root == "" {
		return nil, fmt.Errorf("open repository: git rev-parse returned empty root")
	}
	return &Repo{root: root}, nil
}

func (r *Repo) Root() string {
	if r == nil {
		return ""
	}
	return r.root
}

// Status lists every changed, untracked and unmerged path.
func (r *Repo) Status() ([]Entry, error) {
	if r == nil || r.root == "" {
		return nil, fmt.Errorf("repository root not set")
	}
	out, err := run(r.root, "git status", "status", "--porcelain=v2", "-z", "--untracked-files=all", "--renames")
	if err != nil {
		return nil, err
	}
	entries, err := ParseStatusV2(out)
	if err != nil {
		return nil, fmt.Errorf("parse git status: %w", err)
	}
	return entries, nil
}

func run(dir, context string, args ...string) ([]byte, error) {
	cmd := exec.Command("git", append([]string{"-C", dir}, args...)...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if stderr.Len() > 0 {
			return nil, fmt.Errorf("%s: %v: %s", context, err, strings.TrimSpace(stderr.String()))
		}
		return nil, fmt.Errorf("%s: %w", context, err)
	}
	return stdout.Bytes(), nil
}
