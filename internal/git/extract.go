package git

import (
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"strings"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"
)

type ExtractOptions struct {
	// Truncate holds path suffixes whose files render as a placeholder.
	Truncate []string
	// Paths restricts the result to these files or directories. Empty means
	// every changed path.
	Paths []string
	// ContextLines around each change; zero selects DefaultContextLines.
	ContextLines int
}

func (o ExtractOptions) contextLines() int {
	if o.ContextLines <= 0 {
		return DefaultContextLines
	}
	return o.ContextLines
}

// Extract diffs the HEAD tree (the empty tree when HEAD is unborn) against
// the working tree for every changed path and returns one WorkingTreeFile per
// path. Non-truncated files come first, each group sorted by path.
func (s *Service) Extract(opts ExtractOptions) ([]WorkingTreeFile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.extract(opts)
}

func (s *Service) extract(opts ExtractOptions) ([]WorkingTreeFile, error) {
	summary, err := s.classify()
	if err != nil {
		return nil, err
	}
	tree, err := s.headTree()
	if err != nil {
		return nil, err
	}
	baseline, err := flattenTree(tree)
	if err != nil {
		return nil, stateError("read baseline tree", err)
	}
	return s.extractFrom(baseline, summary, opts)
}

type extractCandidate struct {
	path string
	base *treeEntry
	disk diskFile
}

func (s *Service) extractFrom(baseline map[string]treeEntry, summary StatusSummary, opts ExtractOptions) ([]WorkingTreeFile, error) {
	matcher := ignoreMatcher(s.repo.fs)
	paths := map[string]struct{}{}
	for _, p := range trackedPaths(summary) {
		paths[p] = struct{}{}
	}
	for _, p := range summary.Unstaged.New {
		files, err := walkUntracked(s.repo.fs, matcher, p)
		if err != nil {
			return nil, stateError("walk untracked "+p, err)
		}
		for _, f := range files {
			paths[f] = struct{}{}
		}
	}

	candidates := make(map[string]*extractCandidate, len(paths))
	for p := range paths {
		c := &extractCandidate{path: p}
		if e, ok := baseline[p]; ok {
			c.base = &e
		}
		disk, err := readDiskFile(s.repo.fs, p)
		if err != nil {
			return nil, stateError("read worktree file "+p, err)
		}
		if disk.dir {
			disk = diskFile{}
		}
		c.disk = disk
		candidates[p] = c
	}

	// Exact renames between the baseline and the working tree. The index plays
	// no part so a pass before and after an index reset pairs identically.
	var gone, appeared []string
	for p, c := range candidates {
		switch {
		case c.base != nil && !c.disk.exists:
			gone = append(gone, p)
		case c.base == nil && c.disk.exists:
			appeared = append(appeared, p)
		}
	}
	_, _, renames := pairRenames(gone, appeared,
		func(p string) (plumbing.Hash, bool) { return candidates[p].base.hash, true },
		func(p string) (plumbing.Hash, bool) { return candidates[p].disk.hash(), true },
	)
	renamedFrom := map[string]string{}
	consumed := map[string]bool{}
	for _, r := range renames {
		renamedFrom[r.To] = r.From
		consumed[r.From] = true
	}

	context := opts.contextLines()
	var files []WorkingTreeFile
	for p, c := range candidates {
		if consumed[p] {
			continue
		}
		file := WorkingTreeFile{Path: p}
		base := c.base
		if from, ok := renamedFrom[p]; ok {
			file.OldPath = from
			base = candidates[from].base
		}
		if !matchesTargets(file, opts.Paths) {
			continue
		}
		if err := s.fillHunks(&file, base, c.disk, context); err != nil {
			return nil, err
		}
		file.Truncated = matchesSuffix(p, opts.Truncate)
		files = append(files, file)
	}
	sortFiles(files)
	slog.Debug("extracted working tree changes",
		slog.Int("files", len(files)),
		slog.Int("renames", len(renames)),
	)
	return files, nil
}

func (s *Service) fillHunks(file *WorkingTreeFile, base *treeEntry, disk diskFile, context int) error {
	if base != nil && base.mode == filemode.Submodule {
		return nil
	}
	var from []byte
	if base != nil {
		data, err := s.readBlob(base.hash)
		if err != nil {
			return stateError(fmt.Sprintf("read baseline blob %s", file.baselinePath()), err)
		}
		from = data
	}
	var to []byte
	if disk.exists {
		to = disk.data
	}
	if isBinary(from) || isBinary(to) {
		file.Binary = true
		return nil
	}
	file.Hunks = computeHunks(splitLines(string(from)), splitLines(string(to)), context)
	return nil
}

// trackedPaths lists every classified path except untracked ones.
func trackedPaths(summary StatusSummary) []string {
	var out []string
	out = append(out, summary.Staged.New...)
	out = append(out, summary.Staged.Modified...)
	out = append(out, summary.Staged.Deleted...)
	out = append(out, summary.Unstaged.Modified...)
	out = append(out, summary.Unstaged.Deleted...)
	for _, r := range summary.Staged.Renamed {
		out = append(out, r.From, r.To)
	}
	for _, r := range summary.Unstaged.Renamed {
		out = append(out, r.From, r.To)
	}
	return out
}

func matchesSuffix(p string, suffixes []string) bool {
	for _, suffix := range suffixes {
		if suffix != "" && strings.HasSuffix(p, suffix) {
			return true
		}
	}
	return false
}

// matchesTargets reports whether file (either side of a rename) is named by
// targets, directly or through a parent directory.
func matchesTargets(file WorkingTreeFile, targets []string) bool {
	if len(targets) == 0 {
		return true
	}
	return slices.ContainsFunc(targets, func(t string) bool {
		return pathUnder(file.Path, t) || (file.OldPath != "" && pathUnder(file.OldPath, t))
	})
}

func pathUnder(p, target string) bool {
	target = strings.TrimSuffix(target, "/")
	if target == "" || target == "." {
		return true
	}
	return p == target || strings.HasPrefix(p, target+"/")
}

func sortFiles(files []WorkingTreeFile) {
	sort.SliceStable(files, func(i, j int) bool {
		if files[i].Truncated != files[j].Truncated {
			return !files[i].Truncated
		}
		return files[i].Path < files[j].Path
	})
}
