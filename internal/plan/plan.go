// Package plan holds the commit plan consumed by the staging engine.
//
// A plan is produced outside this repository (typically by a language model
// reading the rendered diff) and partitions outstanding changes into ordered
// commits. Units reference whole files, hunk tokens of the form path:ordinal,
// or both.
package plan

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ErrInvalidPlan wraps every validation failure.
var ErrInvalidPlan = errors.New("invalid commit plan")

type CommitType string

const (
	TypeFeat     CommitType = "feat"
	TypeFix      CommitType = "fix"
	TypeDocs     CommitType = "docs"
	TypeStyle    CommitType = "style"
	TypeRefactor CommitType = "refactor"
	TypePerf     CommitType = "perf"
	TypeTest     CommitType = "test"
	TypeBuild    CommitType = "build"
	TypeCI       CommitType = "ci"
	TypeChore    CommitType = "chore"
	TypeRevert   CommitType = "revert"
)

var commitTypes = []CommitType{
	TypeFeat, TypeFix, TypeDocs, TypeStyle, TypeRefactor, TypePerf,
	TypeTest, TypeBuild, TypeCI, TypeChore, TypeRevert,
}

func (t CommitType) Valid() bool {
	return slices.Contains(commitTypes, t)
}

type Message struct {
	Type        CommitType `yaml:"type" json:"type"`
	Scope       string     `yaml:"scope,omitempty" json:"scope,omitempty"`
	Breaking    bool       `yaml:"breaking,omitempty" json:"breaking,omitempty"`
	Description string     `yaml:"description" json:"description"`
}

// String assembles the commit subject: type, "!" for breaking changes,
// optional (scope), then ": " and the description.
func (m Message) String() string {
	var b strings.Builder
	b.WriteString(string(m.Type))
	if m.Breaking {
		b.WriteByte('!')
	}
	if scope := strings.TrimSpace(m.Scope); scope != "" {
		fmt.Fprintf(&b, "(%s)", scope)
	}
	b.WriteString(": ")
	b.WriteString(strings.TrimSpace(m.Description))
	return b.String()
}

type CommitUnit struct {
	Files    []string `yaml:"files,omitempty" json:"files,omitempty"`
	HunkRefs []string `yaml:"hunk_refs,omitempty" json:"hunk_refs,omitempty"`
	Message  Message  `yaml:"message" json:"message"`
}

// HunkMode reports whether the unit selects individual hunks rather than
// whole files.
func (u CommitUnit) HunkMode() bool {
	return len(u.HunkRefs) > 0
}

type CommitPlan struct {
	Units []CommitUnit `yaml:"commits" json:"commits"`
}

func (p CommitPlan) Len() int {
	return len(p.Units)
}

// Clone returns a deep copy so callers cannot mutate a plan being applied.
func (p CommitPlan) Clone() CommitPlan {
	units := make([]CommitUnit, len(p.Units))
	for i, u := range p.Units {
		units[i] = CommitUnit{
			Files:    slices.Clone(u.Files),
			HunkRefs: slices.Clone(u.HunkRefs),
			Message:  u.Message,
		}
	}
	return CommitPlan{Units: units}
}

// Validate checks message fields and that every unit targets something.
// Hunk tokens are not resolved here; unknown tokens are reported while
// applying.
func (p CommitPlan) Validate() error {
	if len(p.Units) == 0 {
		return fmt.Errorf("%w: no commits", ErrInvalidPlan)
	}
	var errs []error
	for i, u := range p.Units {
		if len(u.Files) == 0 && len(u.HunkRefs) == 0 {
			errs = append(errs, fmt.Errorf("commit %d: no files or hunk_refs", i))
		}
		if !u.Message.Type.Valid() {
			errs = append(errs, fmt.Errorf("commit %d: unknown type %q", i, u.Message.Type))
		}
		if strings.TrimSpace(u.Message.Description) == "" {
			errs = append(errs, fmt.Errorf("commit %d: empty description", i))
		}
		if strings.ContainsAny(u.Message.Scope, "()\n") {
			errs = append(errs, fmt.Errorf("commit %d: invalid scope %q", i, u.Message.Scope))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidPlan, errors.Join(errs...))
	}
	return nil
}
