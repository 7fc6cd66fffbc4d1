package git

import (
	"os"
	"sort"
	"strings"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"
	"github.com/go-git/go-git/v5/plumbing/format/index"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// indexFromTree builds an index holding exactly the baseline entries.
func indexFromTree(baseline map[string]treeEntry) *index.Index {
	idx := &index.Index{Version: 2}
	for name, e := range baseline {
		idx.Entries = append(idx.Entries, &index.Entry{
			Name: name,
			Hash: e.hash,
			Mode: e.mode,
		})
	}
	sortEntries(idx)
	return idx
}

func sortEntries(idx *index.Index) {
	sort.Slice(idx.Entries, func(i, j int) bool {
		return idx.Entries[i].Name < idx.Entries[j].Name
	})
}

func (s *Service) storeIndex(idx *index.Index) error {
	sortEntries(idx)
	if err := s.repo.Storer.SetIndex(idx); err != nil {
		return writeError("write index", err)
	}
	return nil
}

// resetIndexToHead replaces the index with the HEAD tree and returns both.
func (s *Service) resetIndexToHead() (*index.Index, map[string]treeEntry, error) {
	tree, err := s.headTree()
	if err != nil {
		return nil, nil, err
	}
	baseline, err := flattenTree(tree)
	if err != nil {
		return nil, nil, stateError("read HEAD tree", err)
	}
	idx := indexFromTree(baseline)
	if err := s.storeIndex(idx); err != nil {
		return nil, nil, err
	}
	return idx, baseline, nil
}

func (s *Service) writeBlob(data []byte) (plumbing.Hash, error) {
	obj := s.repo.Storer.NewEncodedObject()
	obj.SetType(plumbing.BlobObject)
	obj.SetSize(int64(len(data)))
	w, err := obj.Writer()
	if err != nil {
		return plumbing.ZeroHash, writeError("open blob writer", err)
	}
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return plumbing.ZeroHash, writeError("write blob", err)
	}
	if err := w.Close(); err != nil {
		return plumbing.ZeroHash, writeError("write blob", err)
	}
	hash, err := s.repo.Storer.SetEncodedObject(obj)
	if err != nil {
		return plumbing.ZeroHash, writeError("store blob", err)
	}
	return hash, nil
}

// stageEntry points name at hash. Entries that would conflict with name as a
// directory or as a file beneath it are dropped.
func stageEntry(idx *index.Index, name string, hash plumbing.Hash, mode filemode.FileMode, info os.FileInfo) {
	kept := idx.Entries[:0]
	for _, e := range idx.Entries {
		if strings.HasPrefix(e.Name, name+"/") || strings.HasPrefix(name, e.Name+"/") {
			continue
		}
		kept = append(kept, e)
	}
	idx.Entries = kept

	entry, err := idx.Entry(name)
	if err != nil {
		entry = idx.Add(name)
	}
	entry.Hash = hash
	entry.Mode = mode
	entry.Size = 0
	if info != nil {
		entry.Size = uint32(info.Size())
		entry.ModifiedAt = info.ModTime()
	}
}

func unstageEntry(idx *index.Index, name string) bool {
	_, err := idx.Remove(name)
	return err == nil
}

type treeNode struct {
	dirs  map[string]*treeNode
	files map[string]object.TreeEntry
}

func newTreeNode() *treeNode {
	return &treeNode{dirs: map[string]*treeNode{}, files: map[string]object.TreeEntry{}}
}

func (n *treeNode) insert(parts []string, e *index.Entry) {
	if len(parts) == 1 {
		n.files[parts[0]] = object.TreeEntry{Name: parts[0], Mode: e.Mode, Hash: e.Hash}
		return
	}
	child, ok := n.dirs[parts[0]]
	if !ok {
		child = newTreeNode()
		n.dirs[parts[0]] = child
	}
	child.insert(parts[1:], e)
}

// writeTree stores the tree objects described by the index and returns the
// root tree id. Only stage-0 entries are written.
func (s *Service) writeTree(idx *index.Index) (plumbing.Hash, error) {
	root := newTreeNode()
	for _, e := range idx.Entries {
		if e.Stage != 0 {
			continue
		}
		root.insert(splitPath(e.Name), e)
	}
	return s.writeTreeNode(root)
}

func (s *Service) writeTreeNode(n *treeNode) (plumbing.Hash, error) {
	entries := make([]object.TreeEntry, 0, len(n.dirs)+len(n.files))
	for name, child := range n.dirs {
		hash, err := s.writeTreeNode(child)
		if err != nil {
			return plumbing.ZeroHash, err
		}
		entries = append(entries, object.TreeEntry{Name: name, Mode: filemode.Dir, Hash: hash})
	}
	for _, e := range n.files {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		return treeSortName(entries[i]) < treeSortName(entries[j])
	})
	tree := &object.Tree{Entries: entries}
	obj := s.repo.Storer.NewEncodedObject()
	if err := tree.Encode(obj); err != nil {
		return plumbing.ZeroHash, writeError("encode tree", err)
	}
	hash, err := s.repo.Storer.SetEncodedObject(obj)
	if err != nil {
		return plumbing.ZeroHash, writeError("store tree", err)
	}
	return hash, nil
}

// treeSortName orders entries the way git does: directories sort as if their
// name ended in a slash.
func treeSortName(e object.TreeEntry) string {
	if e.Mode == filemode.Dir {
		return e.Name + "/"
	}
	return e.Name
}
