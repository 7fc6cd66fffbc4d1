package git

import (
	"os"
	"strings"
	"time"

	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// Identity is a commit author or committer without a timestamp.
type Identity struct {
	Name  string `yaml:"name" json:"name"`
	Email string `yaml:"email" json:"email"`
}

func (i Identity) complete() bool {
	return i.Name != "" && i.Email != ""
}

// mergeIdentity fills each field from the first source that sets it, the
// way git layers GIT_AUTHOR_NAME over user.name.
func mergeIdentity(sources ...Identity) Identity {
	var out Identity
	for _, src := range sources {
		if out.Name == "" {
			out.Name = strings.TrimSpace(src.Name)
		}
		if out.Email == "" {
			out.Email = strings.TrimSpace(src.Email)
		}
	}
	return out
}

type signatureSource struct {
	scope    gitconfig.Scope
	override Identity
	getenv   func(string) string
	now      func() time.Time
}

func (src signatureSource) resolve(s *Service) (author, committer object.Signature, err error) {
	cfg, err := s.repo.ConfigScoped(src.scope)
	if err != nil {
		return author, committer, stateError("read repository config", err)
	}
	getenv := src.getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	user := Identity{Name: cfg.User.Name, Email: cfg.User.Email}
	a := mergeIdentity(
		Identity{Name: getenv("GIT_AUTHOR_NAME"), Email: getenv("GIT_AUTHOR_EMAIL")},
		src.override,
		Identity{Name: cfg.Author.Name, Email: cfg.Author.Email},
		user,
	)
	c := mergeIdentity(
		Identity{Name: getenv("GIT_COMMITTER_NAME"), Email: getenv("GIT_COMMITTER_EMAIL")},
		src.override,
		Identity{Name: cfg.Committer.Name, Email: cfg.Committer.Email},
		user,
	)
	if !a.complete() || !c.complete() {
		return author, committer, writeError("resolve signature", ErrSignatureMissing)
	}
	now := time.Now
	if src.now != nil {
		now = src.now
	}
	when := now()
	return object.Signature{Name: a.Name, Email: a.Email, When: when},
		object.Signature{Name: c.Name, Email: c.Email, When: when}, nil
}

type commitRequest struct {
	tree      plumbing.Hash
	parent    *object.Commit
	message   string
	author    object.Signature
	committer object.Signature
}

// commit stores a commit object and advances HEAD, or the branch HEAD points
// to. An unborn branch is created.
func (s *Service) commit(req commitRequest) (plumbing.Hash, error) {
	c := &object.Commit{
		Author:    req.author,
		Committer: req.committer,
		Message:   strings.TrimRight(req.message, "\n") + "\n",
		TreeHash:  req.tree,
	}
	if req.parent != nil {
		c.ParentHashes = []plumbing.Hash{req.parent.Hash}
	}
	obj := s.repo.Storer.NewEncodedObject()
	if err := c.Encode(obj); err != nil {
		return plumbing.ZeroHash, writeError("encode commit", err)
	}
	hash, err := s.repo.Storer.SetEncodedObject(obj)
	if err != nil {
		return plumbing.ZeroHash, writeError("store commit", err)
	}
	if err := s.advanceHead(hash, req.parent); err != nil {
		return plumbing.ZeroHash, err
	}
	return hash, nil
}

func (s *Service) advanceHead(hash plumbing.Hash, parent *object.Commit) error {
	head, err := s.repo.Storer.Reference(plumbing.HEAD)
	if err != nil {
		return writeError("read HEAD", err)
	}
	name := plumbing.HEAD
	if head.Type() == plumbing.SymbolicReference {
		name = head.Target()
	}
	var old *plumbing.Reference
	if parent != nil {
		old = plumbing.NewHashReference(name, parent.Hash)
	}
	if err := s.repo.Storer.CheckAndSetReference(plumbing.NewHashReference(name, hash), old); err != nil {
		return writeError("update "+name.String(), err)
	}
	return nil
}
