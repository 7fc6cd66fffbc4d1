package git

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	gitlib "github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

var testTime = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

type testRepo struct {
	t    *testing.T
	dir  string
	repo *gitlib.Repository
	svc  *Service
}

// newTestRepo initializes an empty repository with a local identity.
func newTestRepo(t *testing.T) *testRepo {
	t.Helper()
	r := newAnonymousRepo(t)
	cfg, err := r.repo.Config()
	if err != nil {
		t.Fatalf("Config: %v", err)
	}
	cfg.User.Name = "Test User"
	cfg.User.Email = "test@example.com"
	if err := r.repo.SetConfig(cfg); err != nil {
		t.Fatalf("SetConfig: %v", err)
	}
	return r
}

// newAnonymousRepo initializes an empty repository without any identity.
func newAnonymousRepo(t *testing.T) *testRepo {
	t.Helper()
	dir := t.TempDir()
	repo, err := gitlib.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("PlainInit: %v", err)
	}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return &testRepo{t: t, dir: dir, repo: repo, svc: svc}
}

func (r *testRepo) write(name, content string) {
	r.t.Helper()
	path := filepath.Join(r.dir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		r.t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		r.t.Fatal(err)
	}
}

func (r *testRepo) remove(name string) {
	r.t.Helper()
	if err := os.Remove(filepath.Join(r.dir, filepath.FromSlash(name))); err != nil {
		r.t.Fatal(err)
	}
}

func (r *testRepo) rename(from, to string) {
	r.t.Helper()
	dst := filepath.Join(r.dir, filepath.FromSlash(to))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		r.t.Fatal(err)
	}
	if err := os.Rename(filepath.Join(r.dir, filepath.FromSlash(from)), dst); err != nil {
		r.t.Fatal(err)
	}
}

func (r *testRepo) read(name string) string {
	r.t.Helper()
	data, err := os.ReadFile(filepath.Join(r.dir, filepath.FromSlash(name)))
	if err != nil {
		r.t.Fatal(err)
	}
	return string(data)
}

// stage runs the equivalent of "git add -A".
func (r *testRepo) stage() {
	r.t.Helper()
	wt, err := r.repo.Worktree()
	if err != nil {
		r.t.Fatal(err)
	}
	if err := wt.AddWithOptions(&gitlib.AddOptions{All: true}); err != nil {
		r.t.Fatalf("add: %v", err)
	}
}

// commitAll stages everything and commits it.
func (r *testRepo) commitAll(msg string) plumbing.Hash {
	r.t.Helper()
	r.stage()
	wt, err := r.repo.Worktree()
	if err != nil {
		r.t.Fatal(err)
	}
	hash, err := wt.Commit(msg, &gitlib.CommitOptions{
		Author: &object.Signature{Name: "Test User", Email: "test@example.com", When: testTime},
	})
	if err != nil {
		r.t.Fatalf("commit: %v", err)
	}
	return hash
}

func (r *testRepo) head() *object.Commit {
	r.t.Helper()
	ref, err := r.repo.Head()
	if err != nil {
		r.t.Fatalf("Head: %v", err)
	}
	c, err := r.repo.CommitObject(ref.Hash())
	if err != nil {
		r.t.Fatalf("CommitObject: %v", err)
	}
	return c
}

// fileAt returns the content of name in commit c, or "" and false.
func (r *testRepo) fileAt(c *object.Commit, name string) (string, bool) {
	r.t.Helper()
	f, err := c.File(name)
	if err != nil {
		return "", false
	}
	content, err := f.Contents()
	if err != nil {
		r.t.Fatalf("Contents(%s): %v", name, err)
	}
	return content, true
}

func (r *testRepo) engine() *Engine {
	return NewEngine(r.svc, EngineOptions{
		ConfigScope: gitconfig.LocalScope,
		Now:         func() time.Time { return testTime },
		Getenv:      func(string) string { return "" },
	})
}

func (r *testRepo) extract(opts ExtractOptions) []WorkingTreeFile {
	r.t.Helper()
	files, err := r.svc.Extract(opts)
	if err != nil {
		r.t.Fatalf("Extract: %v", err)
	}
	return files
}

func (r *testRepo) status() StatusSummary {
	r.t.Helper()
	s, err := r.svc.Status()
	if err != nil {
		r.t.Fatalf("Status: %v", err)
	}
	return s
}

// numbered returns "line N\n" for N in [from, to].
func numbered(from, to int) string {
	var b strings.Builder
	for i := from; i <= to; i++ {
		fmt.Fprintf(&b, "line %d\n", i)
	}
	return b.String()
}
