package git

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"time"

	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"
	"github.com/go-git/go-git/v5/plumbing/format/index"
	"github.com/google/uuid"

	"github.com/thiagokokada/gitsplit/internal/plan"
)

type State uint8

const (
	StateIdle State = iota
	StateResetIndex
	StatePopulateIndex
	StateWriteTree
	StateCommit
	StateDone
	StateAborted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateResetIndex:
		return "ResetIndex"
	case StatePopulateIndex:
		return "PopulateIndex"
	case StateWriteTree:
		return "WriteTree"
	case StateCommit:
		return "Commit"
	case StateDone:
		return "Done"
	case StateAborted:
		return "Aborted"
	default:
		return "Unknown"
	}
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

type EngineOptions struct {
	// Truncate is used only when Apply has to run its own reference pass.
	Truncate     []string
	ContextLines int
	// Author overrides the configured identity for author and committer.
	Author Identity
	// ConfigScope selects which git configuration layers are merged when
	// resolving the signature. The zero value reads only the repository.
	ConfigScope gitconfig.Scope
	Now         func() time.Time
	Getenv      func(string) string
}

type Engine struct {
	svc  *Service
	opts EngineOptions
}

func NewEngine(svc *Service, opts EngineOptions) *Engine {
	return &Engine{svc: svc, opts: opts}
}

type CommitRecord struct {
	Unit    int    `json:"unit"`
	Hash    string `json:"hash"`
	Message string `json:"message"`
}

type ApplyReport struct {
	RunID          string         `json:"run_id"`
	CommittedUnits int            `json:"committed_units"`
	Commits        []CommitRecord `json:"commits"`
	SkippedUnits   []int          `json:"skipped_units"`
	Warnings       []Warning      `json:"warnings"`
	// FatalError is set when the run aborted; FailedUnit is then the unit
	// being applied, or -1 when the plan itself was rejected.
	FatalError error `json:"-"`
	FailedUnit int   `json:"failed_unit"`
	State      State `json:"state"`
}

func (r ApplyReport) MarshalJSON() ([]byte, error) {
	type plain ApplyReport
	out := struct {
		plain
		FatalError string `json:"fatal_error,omitempty"`
	}{plain: plain(r)}
	if r.FatalError != nil {
		out.FatalError = r.FatalError.Error()
	}
	if out.Commits == nil {
		out.Commits = []CommitRecord{}
	}
	if out.SkippedUnits == nil {
		out.SkippedUnits = []int{}
	}
	if out.Warnings == nil {
		out.Warnings = []Warning{}
	}
	return json.Marshal(out)
}

func (r ApplyReport) Aborted() bool {
	return r.State == StateAborted
}

// selection is a hunk token resolved against the reference pass.
type selection struct {
	token string
	key   hunkKey
}

type run struct {
	*Engine
	report *ApplyReport
	log    *slog.Logger
	tokens map[string]hunkKey
	unit   int
}

// Apply commits the plan units in order. Fatal errors stop the run and are
// reported together with the units committed so far; those commits stay.
func (e *Engine) Apply(ctx context.Context, p plan.CommitPlan, reference []WorkingTreeFile) ApplyReport {
	e.svc.mu.Lock()
	defer e.svc.mu.Unlock()

	report := ApplyReport{RunID: uuid.NewString(), FailedUnit: -1, State: StateIdle}
	r := &run{
		Engine: e,
		report: &report,
		log:    slog.With(slog.String("run_id", report.RunID)),
		unit:   -1,
	}
	p = p.Clone()
	if err := p.Validate(); err != nil {
		r.abort(err)
		return report
	}
	if reference == nil {
		files, err := e.svc.extract(ExtractOptions{Truncate: e.opts.Truncate, ContextLines: e.opts.ContextLines})
		if err != nil {
			r.abort(err)
			return report
		}
		reference = files
	}
	r.tokens = tokenKeys(reference)
	r.log.Debug("applying commit plan",
		slog.Int("units", p.Len()),
		slog.Int("tokens", len(r.tokens)),
	)

	for i, unit := range p.Units {
		r.unit = i
		if err := ctx.Err(); err != nil {
			r.abort(fmt.Errorf("apply cancelled: %w", err))
			return report
		}
		if err := r.applyUnit(unit); err != nil {
			r.abort(err)
			return report
		}
	}
	report.State = StateDone
	r.log.Debug("commit plan applied",
		slog.Int("committed", report.CommittedUnits),
		slog.Int("skipped", len(report.SkippedUnits)),
		slog.Int("warnings", len(report.Warnings)),
	)
	return report
}

// tokenKeys maps every token of the reference pass to its normalized key.
// Truncated and binary files contribute nothing.
func tokenKeys(files []WorkingTreeFile) map[string]hunkKey {
	keys := map[string]hunkKey{}
	for _, f := range files {
		if f.Truncated || f.Binary {
			continue
		}
		for _, h := range f.Hunks {
			keys[Token(f.Path, h.Ordinal)] = keyForHunk(f.Path, h)
		}
	}
	return keys
}

func (r *run) abort(err error) {
	r.report.FatalError = err
	r.report.FailedUnit = r.unit
	r.report.State = StateAborted
	r.log.Error("commit plan aborted",
		slog.Int("unit", r.unit),
		slog.Int("committed", r.report.CommittedUnits),
		slog.Any("error", err),
	)
	if r.unit < 0 {
		return
	}
	if _, _, resetErr := r.svc.resetIndexToHead(); resetErr != nil {
		r.log.Warn("failed to restore index after abort", slog.Any("error", resetErr))
	}
}

func (r *run) warn(kind WarningKind, detail string) {
	w := Warning{Kind: kind, Unit: r.unit, Detail: detail}
	r.report.Warnings = append(r.report.Warnings, w)
	r.log.Warn("commit unit warning",
		slog.Int("unit", r.unit),
		slog.String("kind", kind.String()),
		slog.String("detail", detail),
	)
}

func (r *run) applyUnit(unit plan.CommitUnit) error {
	r.report.State = StateResetIndex
	parent, err := r.svc.headCommit()
	if err != nil {
		return err
	}
	idx, baseline, err := r.svc.resetIndexToHead()
	if err != nil {
		return err
	}

	r.report.State = StatePopulateIndex
	if unit.HunkMode() {
		err = r.populateHunks(idx, baseline, unit)
	} else {
		err = r.populateFiles(idx, baseline, unit.Files)
	}
	if err != nil {
		return err
	}
	if err := r.svc.storeIndex(idx); err != nil {
		return err
	}

	r.report.State = StateWriteTree
	tree, err := r.svc.writeTree(idx)
	if err != nil {
		return err
	}
	parentTree := emptyTreeHash
	if parent != nil {
		parentTree = parent.TreeHash
	}
	if tree == parentTree {
		r.report.SkippedUnits = append(r.report.SkippedUnits, r.unit)
		r.log.Debug("skipping unit with no changes", slog.Int("unit", r.unit))
		return nil
	}

	r.report.State = StateCommit
	author, committer, err := signatureSource{
		scope:    r.opts.ConfigScope,
		override: r.opts.Author,
		getenv:   r.opts.Getenv,
		now:      r.opts.Now,
	}.resolve(r.svc)
	if err != nil {
		return err
	}
	message := unit.Message.String()
	hash, err := r.svc.commit(commitRequest{
		tree:      tree,
		parent:    parent,
		message:   message,
		author:    author,
		committer: committer,
	})
	if err != nil {
		return err
	}
	r.report.CommittedUnits++
	r.report.Commits = append(r.report.Commits, CommitRecord{Unit: r.unit, Hash: hash.String(), Message: message})
	r.log.Debug("committed unit",
		slog.Int("unit", r.unit),
		slog.String("commit", hash.String()),
		slog.String("message", message),
	)
	return nil
}

// populateFiles stages whole files. Targets are matched against a fresh
// extraction so directories expand to their changed files and renames bring
// both sides along.
func (r *run) populateFiles(idx *index.Index, baseline map[string]treeEntry, targets []string) error {
	files, err := r.svc.extract(ExtractOptions{Paths: targets, ContextLines: r.opts.ContextLines})
	if err != nil {
		return err
	}
	for _, target := range targets {
		if !slices.ContainsFunc(files, func(f WorkingTreeFile) bool {
			return matchesTargets(f, []string{target})
		}) {
			r.warn(PathStatusMismatch, fmt.Sprintf("%s: no changes to stage", target))
		}
	}
	for _, f := range files {
		if err := r.stageWholeFile(idx, baseline, f); err != nil {
			return err
		}
	}
	return nil
}

func (r *run) stageWholeFile(idx *index.Index, baseline map[string]treeEntry, f WorkingTreeFile) error {
	if base, ok := baseline[f.Path]; ok && base.mode == filemode.Submodule {
		r.warn(PathStatusMismatch, fmt.Sprintf("%s: submodule changes are not staged", f.Path))
		return nil
	}
	if f.IsRename() {
		unstageEntry(idx, f.OldPath)
	}
	disk, err := readDiskFile(r.svc.repo.fs, f.Path)
	if err != nil {
		return stateError("read worktree file "+f.Path, err)
	}
	if !disk.exists || disk.dir {
		unstageEntry(idx, f.Path)
		return nil
	}
	if base, ok := baseline[f.Path]; ok && typeChanged(base.mode, disk.mode) {
		unstageEntry(idx, f.Path)
	}
	hash, err := r.svc.writeBlob(disk.data)
	if err != nil {
		return err
	}
	stageEntry(idx, f.Path, hash, disk.mode, disk.info)
	return nil
}

func typeChanged(a, b filemode.FileMode) bool {
	return (a == filemode.Symlink) != (b == filemode.Symlink) ||
		(a == filemode.Submodule) != (b == filemode.Submodule)
}

// populateHunks re-derives the target files against the current baseline and
// stages the hunks whose keys were selected, leaving the rest of each file at
// its baseline content.
func (r *run) populateHunks(idx *index.Index, baseline map[string]treeEntry, unit plan.CommitUnit) error {
	var selected []selection
	targets := slices.Clone(unit.Files)
	seen := map[string]bool{}
	for _, token := range unit.HunkRefs {
		if seen[token] {
			continue
		}
		seen[token] = true
		if _, _, err := ParseToken(token); err != nil {
			r.warn(HunkMatchMiss, err.Error())
			continue
		}
		key, ok := r.tokens[token]
		if !ok {
			r.warn(HunkMatchMiss, fmt.Sprintf("%s: no such hunk in the reference diff", token))
			continue
		}
		selected = append(selected, selection{token: token, key: key})
		if !slices.Contains(targets, key.path) {
			targets = append(targets, key.path)
		}
	}
	if len(selected) == 0 {
		return nil
	}

	files, err := r.svc.extract(ExtractOptions{Paths: targets, ContextLines: r.opts.ContextLines})
	if err != nil {
		return err
	}
	matched := map[hunkKey]bool{}
	for _, f := range files {
		if f.Binary {
			continue
		}
		var hunks []Hunk
		for _, h := range f.Hunks {
			key := keyForHunk(f.Path, h)
			if slices.ContainsFunc(selected, func(s selection) bool { return s.key == key }) {
				hunks = append(hunks, h)
				matched[key] = true
			}
		}
		if len(hunks) == 0 {
			continue
		}
		if err := r.stageHunks(idx, baseline, f, hunks); err != nil {
			return err
		}
	}
	for _, s := range selected {
		if !matched[s.key] {
			r.warn(HunkMatchMiss, fmt.Sprintf("%s: hunk not found in the current diff", s.token))
		}
	}
	return nil
}

func (r *run) stageHunks(idx *index.Index, baseline map[string]treeEntry, f WorkingTreeFile, hunks []Hunk) error {
	disk, err := readDiskFile(r.svc.repo.fs, f.Path)
	if err != nil {
		return stateError("read worktree file "+f.Path, err)
	}
	if !disk.exists && len(hunks) == len(f.Hunks) {
		unstageEntry(idx, f.Path)
		return nil
	}
	var base []byte
	mode := filemode.Regular
	if e, ok := baseline[f.baselinePath()]; ok {
		data, err := r.svc.readBlob(e.hash)
		if err != nil {
			return stateError("read baseline blob "+f.baselinePath(), err)
		}
		base = data
		mode = e.mode
	}
	if base == nil && disk.exists && !disk.dir {
		mode = disk.mode
	}
	content := applyHunks(splitLines(string(base)), hunks)
	hash, err := r.svc.writeBlob([]byte(content))
	if err != nil {
		return err
	}
	if f.IsRename() {
		unstageEntry(idx, f.OldPath)
	}
	info := disk.info
	if len(hunks) != len(f.Hunks) {
		info = nil
	}
	stageEntry(idx, f.Path, hash, mode, info)
	return nil
}

// Err returns the fatal error of an aborted run, nil otherwise.
func (r ApplyReport) Err() error {
	if r.State != StateAborted {
		return nil
	}
	return r.FatalError
}

// HeadHash is a convenience for callers printing the resulting HEAD.
func (e *Engine) HeadHash() (plumbing.Hash, error) {
	e.svc.mu.Lock()
	defer e.svc.mu.Unlock()
	c, err := e.svc.headCommit()
	if err != nil || c == nil {
		return plumbing.ZeroHash, err
	}
	return c.Hash, nil
}
