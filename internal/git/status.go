package git

import (
	"slices"
	"sort"

	"github.com/go-git/go-git/v5/plumbing"
)

// Status classifies every non-ignored changed path into the staged and
// unstaged buckets. It does not modify the repository.
func (s *Service) Status() (StatusSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.classify()
}

func (s StatusSummary) Counts() StatusCounts {
	return StatusCounts{Staged: s.Staged.counts(), Unstaged: s.Unstaged.counts()}
}

func (b StatusBucket) counts() BucketCounts {
	return BucketCounts{New: len(b.New), Modified: len(b.Modified), Deleted: len(b.Deleted), Renamed: len(b.Renamed)}
}

func (s StatusSummary) IsClean() bool {
	return s.Staged.empty() && s.Unstaged.empty()
}

// ChangedPaths returns the sorted union of every bucket, including both sides
// of renames.
func (s StatusSummary) ChangedPaths() []string {
	seen := map[string]struct{}{}
	for _, b := range []StatusBucket{s.Staged, s.Unstaged} {
		for _, list := range [][]string{b.New, b.Modified, b.Deleted} {
			for _, p := range list {
				seen[p] = struct{}{}
			}
		}
		for _, r := range b.Renamed {
			seen[r.From] = struct{}{}
			seen[r.To] = struct{}{}
		}
	}
	paths := make([]string, 0, len(seen))
	for p := range seen {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

func (b *StatusBucket) sort() {
	slices.Sort(b.New)
	slices.Sort(b.Modified)
	slices.Sort(b.Deleted)
	sort.Slice(b.Renamed, func(i, j int) bool {
		if b.Renamed[i].To != b.Renamed[j].To {
			return b.Renamed[i].To < b.Renamed[j].To
		}
		return b.Renamed[i].From < b.Renamed[j].From
	})
}

// emptyBlobHash is the id of the zero-length blob. Empty files are never
// paired as renames: any two of them would match.
var emptyBlobHash = plumbing.ComputeHash(plumbing.BlobObject, nil)

// pairRenames matches deleted paths with added paths holding identical
// content. Inputs are sorted first so the pairing is deterministic; each
// deleted path takes the first unused added path with the same hash.
func pairRenames(
	deleted, added []string,
	deletedHash, addedHash func(string) (plumbing.Hash, bool),
) (restDeleted, restAdded []string, pairs []RenamedPath) {
	if len(deleted) == 0 || len(added) == 0 {
		return deleted, added, nil
	}
	deleted = slices.Sorted(slices.Values(deleted))
	added = slices.Sorted(slices.Values(added))
	byHash := map[plumbing.Hash][]string{}
	for _, p := range added {
		h, ok := addedHash(p)
		if !ok || h == emptyBlobHash {
			continue
		}
		byHash[h] = append(byHash[h], p)
	}
	used := map[string]bool{}
	for _, d := range deleted {
		h, ok := deletedHash(d)
		if !ok || h == emptyBlobHash || len(byHash[h]) == 0 {
			restDeleted = append(restDeleted, d)
			continue
		}
		to := byHash[h][0]
		byHash[h] = byHash[h][1:]
		used[to] = true
		pairs = append(pairs, RenamedPath{From: d, To: to})
	}
	for _, a := range added {
		if !used[a] {
			restAdded = append(restAdded, a)
		}
	}
	return restDeleted, restAdded, pairs
}

// pairExactRenames folds exact-content delete/add pairs into rename pairs.
// Staged pairs compare HEAD against the index, unstaged pairs compare the
// index against the working tree.
func (s *Service) pairExactRenames(sum *StatusSummary) error {
	needStaged := len(sum.Staged.Deleted) > 0 && len(sum.Staged.New) > 0
	needUnstaged := len(sum.Unstaged.Deleted) > 0 && len(sum.Unstaged.New) > 0
	if !needStaged && !needUnstaged {
		return nil
	}
	idx, err := s.repo.Storer.Index()
	if err != nil {
		return stateError("read index", err)
	}
	indexHash := func(p string) (plumbing.Hash, bool) {
		e, err := idx.Entry(p)
		if err != nil {
			return plumbing.ZeroHash, false
		}
		return e.Hash, true
	}
	if needStaged {
		tree, err := s.headTree()
		if err != nil {
			return err
		}
		head, err := flattenTree(tree)
		if err != nil {
			return stateError("read HEAD tree", err)
		}
		headHash := func(p string) (plumbing.Hash, bool) {
			e, ok := head[p]
			return e.hash, ok
		}
		var pairs []RenamedPath
		sum.Staged.Deleted, sum.Staged.New, pairs = pairRenames(sum.Staged.Deleted, sum.Staged.New, headHash, indexHash)
		sum.Staged.Renamed = append(sum.Staged.Renamed, pairs...)
	}
	if needUnstaged {
		diskHash := func(p string) (plumbing.Hash, bool) {
			f, err := readDiskFile(s.repo.fs, p)
			if err != nil || !f.exists || f.dir {
				return plumbing.ZeroHash, false
			}
			return f.hash(), true
		}
		var pairs []RenamedPath
		sum.Unstaged.Deleted, sum.Unstaged.New, pairs = pairRenames(sum.Unstaged.Deleted, sum.Unstaged.New, indexHash, diskHash)
		sum.Unstaged.Renamed = append(sum.Unstaged.Renamed, pairs...)
	}
	return nil
}
