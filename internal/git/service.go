package git

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sync"

	"github.com/go-git/go-billy/v5"
	gitlib "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// emptyTreeHash is the id of the tree with no entries.
var emptyTreeHash = plumbing.NewHash("4b825dc642cb6eb9a060e54bf8d69288fbee4904")

type Service struct {
	// mu serializes operations that read or rewrite the index.
	mu sync.Mutex

	repo repoState
}

type repoState struct {
	*gitlib.Repository
	path string
	fs   billy.Filesystem
}

func Open(repoPath string) (*Service, error) {
	abs, err := filepath.Abs(repoPath)
	if err != nil {
		return nil, err
	}
	repo, err := gitlib.PlainOpenWithOptions(abs, &gitlib.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("open repository: %w", err)
	}
	return NewService(repo)
}

// NewService wraps an already opened repository. The repository must have a
// worktree.
func NewService(repo *gitlib.Repository) (*Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("repository not initialized")
	}
	wt, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("open worktree: %w", err)
	}
	return &Service{repo: repoState{Repository: repo, path: wt.Filesystem.Root(), fs: wt.Filesystem}}, nil
}

func (s *Service) RepoPath() string {
	return s.repo.path
}

// Repository exposes the underlying go-git handle.
func (s *Service) Repository() *gitlib.Repository {
	return s.repo.Repository
}

// headCommit resolves HEAD. An unborn HEAD yields a nil commit and no error.
func (s *Service) headCommit() (*object.Commit, error) {
	ref, err := s.repo.Head()
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return nil, nil
		}
		return nil, stateError("resolve HEAD", err)
	}
	commit, err := s.repo.CommitObject(ref.Hash())
	if err != nil {
		return nil, stateError("read HEAD commit", err)
	}
	return commit, nil
}

// headTree returns the baseline tree, nil when the repository has no history.
func (s *Service) headTree() (*object.Tree, error) {
	commit, err := s.headCommit()
	if err != nil || commit == nil {
		return nil, err
	}
	tree, err := commit.Tree()
	if err != nil {
		return nil, stateError("read HEAD tree", err)
	}
	return tree, nil
}

type treeEntry struct {
	hash plumbing.Hash
	mode filemode.FileMode
}

// flattenTree maps every non-directory path of tree to its entry. Submodule
// links are kept.
func flattenTree(tree *object.Tree) (map[string]treeEntry, error) {
	entries := map[string]treeEntry{}
	if tree == nil {
		return entries, nil
	}
	walker := object.NewTreeWalker(tree, true, nil)
	defer walker.Close()
	for {
		name, entry, err := walker.Next()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("walk tree: %w", err)
		}
		if entry.Mode == filemode.Dir {
			continue
		}
		entries[name] = treeEntry{hash: entry.Hash, mode: entry.Mode}
	}
	return entries, nil
}

func (s *Service) readBlob(hash plumbing.Hash) ([]byte, error) {
	blob, err := s.repo.BlobObject(hash)
	if err != nil {
		return nil, err
	}
	r, err := blob.Reader()
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}
