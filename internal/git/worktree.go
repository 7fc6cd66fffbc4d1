package git

import (
	"bytes"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
	"github.com/go-git/go-git/v5/utils/binary"
)

// diskFile is the working tree side of a path.
type diskFile struct {
	exists bool
	dir    bool
	mode   filemode.FileMode
	data   []byte
	info   os.FileInfo
}

func readDiskFile(fs billy.Filesystem, name string) (diskFile, error) {
	info, err := fs.Lstat(name)
	if err != nil {
		if os.IsNotExist(err) {
			return diskFile{}, nil
		}
		return diskFile{}, err
	}
	if info.IsDir() {
		return diskFile{exists: true, dir: true, info: info}, nil
	}
	mode, err := filemode.NewFromOSFileMode(info.Mode())
	if err != nil {
		mode = filemode.Regular
	}
	if info.Mode()&os.ModeSymlink != 0 {
		target, err := fs.Readlink(name)
		if err != nil {
			return diskFile{}, err
		}
		return diskFile{exists: true, mode: filemode.Symlink, data: []byte(target), info: info}, nil
	}
	f, err := fs.Open(name)
	if err != nil {
		return diskFile{}, err
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return diskFile{}, err
	}
	return diskFile{exists: true, mode: mode, data: data, info: info}, nil
}

func (d diskFile) hash() plumbing.Hash {
	return plumbing.ComputeHash(plumbing.BlobObject, d.data)
}

func isBinary(data []byte) bool {
	bin, err := binary.IsBinary(bytes.NewReader(data))
	return err == nil && bin
}

// ignoreMatcher loads the .gitignore patterns of the worktree.
func ignoreMatcher(fs billy.Filesystem) gitignore.Matcher {
	patterns, err := gitignore.ReadPatterns(fs, nil)
	if err != nil {
		patterns = nil
	}
	return gitignore.NewMatcher(patterns)
}

func splitPath(p string) []string {
	return strings.Split(p, "/")
}

// walkUntracked expands a directory path into the non-ignored files beneath
// it. A plain file expands to itself.
func walkUntracked(fs billy.Filesystem, matcher gitignore.Matcher, root string) ([]string, error) {
	root = strings.TrimSuffix(root, "/")
	info, err := fs.Lstat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	if !info.IsDir() {
		return []string{root}, nil
	}
	var files []string
	err = util.Walk(fs, root, func(name string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		name = path.Clean(strings.ReplaceAll(name, "\\", "/"))
		if info.IsDir() {
			if path.Base(name) == ".git" {
				return filepath.SkipDir
			}
			if name != root && matcher.Match(splitPath(name), true) {
				return filepath.SkipDir
			}
			return nil
		}
		if matcher.Match(splitPath(name), false) {
			return nil
		}
		files = append(files, name)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}
