package git

import (
	"errors"

	"github.com/go-git/go-git/v5/plumbing"
)

// HeadState describes what HEAD points to. Branch is empty when detached.
type HeadState struct {
	Branch   string        `json:"branch,omitempty"`
	Detached bool          `json:"detached"`
	Unborn   bool          `json:"unborn"`
	Commit   plumbing.Hash `json:"-"`
}

func (h HeadState) String() string {
	switch {
	case h.Detached:
		return "HEAD detached at " + h.Commit.String()[:7]
	case h.Unborn:
		return "On branch " + h.Branch + " (no commits yet)"
	default:
		return "On branch " + h.Branch
	}
}

// Head reads HEAD without requiring it to resolve to a commit.
func (s *Service) Head() (HeadState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	head, err := s.repo.Storer.Reference(plumbing.HEAD)
	if err != nil {
		return HeadState{}, stateError("read HEAD", err)
	}
	if head.Type() != plumbing.SymbolicReference {
		return HeadState{Detached: true, Commit: head.Hash()}, nil
	}
	state := HeadState{Branch: head.Target().Short()}
	ref, err := s.repo.Storer.Reference(head.Target())
	switch {
	case errors.Is(err, plumbing.ErrReferenceNotFound):
		state.Unborn = true
	case err != nil:
		return HeadState{}, stateError("resolve "+head.Target().String(), err)
	default:
		state.Commit = ref.Hash()
	}
	return state, nil
}
