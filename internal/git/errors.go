package git

import (
	"errors"
	"fmt"
)

var (
	// ErrSignatureMissing indicates neither the environment nor the repository
	// configuration provide a commit identity.
	ErrSignatureMissing = errors.New("commit signature not configured")

	// ErrInvalidToken indicates a hunk reference that is not of the form path:ordinal.
	ErrInvalidToken = errors.New("invalid hunk token")
)

// RepositoryStateError reports a repository that cannot be read in the state
// the operation needs (unresolvable HEAD, corrupt index, unreadable worktree).
type RepositoryStateError struct {
	Op  string
	Err error
}

func (e *RepositoryStateError) Error() string {
	return fmt.Sprintf("repository state: %s: %v", e.Op, e.Err)
}

func (e *RepositoryStateError) Unwrap() error { return e.Err }

// ObjectWriteError reports a failure to persist blobs, trees, commits or
// references, including a missing commit signature.
type ObjectWriteError struct {
	Op  string
	Err error
}

func (e *ObjectWriteError) Error() string {
	return fmt.Sprintf("object write: %s: %v", e.Op, e.Err)
}

func (e *ObjectWriteError) Unwrap() error { return e.Err }

func stateError(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *RepositoryStateError
	if errors.As(err, &se) {
		return err
	}
	return &RepositoryStateError{Op: op, Err: err}
}

func writeError(op string, err error) error {
	if err == nil {
		return nil
	}
	var we *ObjectWriteError
	if errors.As(err, &we) {
		return err
	}
	return &ObjectWriteError{Op: op, Err: err}
}

type WarningKind uint8

const (
	PathStatusMismatch WarningKind = iota + 1
	HunkMatchMiss
)

func (k WarningKind) String() string {
	switch k {
	case PathStatusMismatch:
		return "PathStatusMismatch"
	case HunkMatchMiss:
		return "HunkMatchMiss"
	default:
		return "Unknown"
	}
}

func (k WarningKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Warning is a non-fatal problem recorded while applying a unit.
type Warning struct {
	Kind   WarningKind `json:"kind"`
	Unit   int         `json:"unit"`
	Detail string      `json:"detail"`
}

func (w Warning) String() string {
	return fmt.Sprintf("unit %d: %s: %s", w.Unit, w.Kind, w.Detail)
}
