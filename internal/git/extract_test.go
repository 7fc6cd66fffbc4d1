package git

import (
	"reflect"
	"slices"
	"strings"
	"testing"
)

func TestExtract_UnbornHead(t *testing.T) {
	t.Parallel()

	r := newTestRepo(t)
	r.write("a.txt", "one\ntwo\n")

	files := r.extract(ExtractOptions{})
	if len(files) != 1 || files[0].Path != "a.txt" {
		t.Fatalf("Extract() = %+v, want a.txt only", files)
	}
	h := files[0].Hunks
	if len(h) != 1 || h[0].Header != "@@ -0,0 +1,2 @@" {
		t.Fatalf("hunks = %+v", h)
	}
}

func TestExtract_UntrackedDirectoryIsWalked(t *testing.T) {
	t.Parallel()

	r := newTestRepo(t)
	r.write(".gitignore", "*.tmp\n")
	r.commitAll("init")
	r.write("new/new.rs", numbered(1, 10))
	r.write("new/deeper/lib.rs", "fn main() {}\n")
	r.write("new/skip.tmp", "ignored\n")

	files := r.extract(ExtractOptions{})
	var paths []string
	for _, f := range files {
		paths = append(paths, f.Path)
	}
	if want := []string{"new/deeper/lib.rs", "new/new.rs"}; !reflect.DeepEqual(paths, want) {
		t.Fatalf("paths = %v, want %v", paths, want)
	}
	newRs := files[1]
	if len(newRs.Hunks) != 1 || newRs.Hunks[0].Header != "@@ -0,0 +1,10 @@" {
		t.Fatalf("new.rs hunks = %+v", newRs.Hunks)
	}
	for _, l := range newRs.Hunks[0].Lines {
		if l.Kind != LineAddition {
			t.Fatalf("new.rs has non-addition line %+v", l)
		}
	}
}

func TestExtract_Idempotent(t *testing.T) {
	t.Parallel()

	r := newTestRepo(t)
	r.write("a.txt", numbered(1, 30))
	r.write("b.txt", "b\n")
	r.commitAll("init")
	r.write("a.txt", strings.Replace(strings.Replace(numbered(1, 30), "line 3\n", "three\n", 1), "line 25\n", "", 1))
	r.remove("b.txt")
	r.write("c.txt", "c\n")

	opts := ExtractOptions{Truncate: []string{".lock"}}
	first := r.extract(opts)
	second := r.extract(opts)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("extraction not idempotent:\n%+v\n%+v", first, second)
	}
	if !reflect.DeepEqual(RenderAll(first), RenderAll(second)) {
		t.Fatal("renderings differ between passes")
	}
}

func TestExtract_CoversStatus(t *testing.T) {
	t.Parallel()

	r := newTestRepo(t)
	r.write("mod.txt", "a\n")
	r.write("del.txt", "d\n")
	r.write("ren-old.txt", "moved content\n")
	r.write("staged.txt", "s\n")
	r.commitAll("init")

	r.write("mod.txt", "b\n")
	r.remove("del.txt")
	r.rename("ren-old.txt", "ren-new.txt")
	r.write("staged.txt", "s2\n")
	r.stage()
	r.write("staged.txt", "s\n")
	r.write("fresh/x.txt", "x\n")

	covered := map[string]bool{}
	for _, f := range r.extract(ExtractOptions{}) {
		covered[f.Path] = true
		if f.OldPath != "" {
			covered[f.OldPath] = true
		}
	}
	var got []string
	for p := range covered {
		got = append(got, p)
	}
	slices.Sort(got)
	if want := r.status().ChangedPaths(); !reflect.DeepEqual(got, want) {
		t.Fatalf("extracted paths = %v, want %v", got, want)
	}
}

func TestExtract_Rename(t *testing.T) {
	t.Parallel()

	r := newTestRepo(t)
	r.write("old.txt", "same\n")
	r.commitAll("init")
	r.rename("old.txt", "new.txt")

	files := r.extract(ExtractOptions{})
	want := []WorkingTreeFile{{Path: "new.txt", OldPath: "old.txt", Hunks: []Hunk{}}}
	if !reflect.DeepEqual(files, want) {
		t.Fatalf("Extract() = %+v, want %+v", files, want)
	}
}

func TestExtract_BinaryAndTruncateOrdering(t *testing.T) {
	t.Parallel()

	r := newTestRepo(t)
	r.write("z.txt", "z\n")
	r.commitAll("init")
	r.write("z.txt", "zz\n")
	r.write("a.lock", "lock\n")
	r.write("img.bin", "PNG\x00\x01\x02")
	r.write("m.txt", "m\n")

	files := r.extract(ExtractOptions{Truncate: []string{".lock"}})
	var order []string
	for _, f := range files {
		order = append(order, f.Path)
	}
	if want := []string{"img.bin", "m.txt", "z.txt", "a.lock"}; !reflect.DeepEqual(order, want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	if !files[0].Binary || len(files[0].Hunks) != 0 {
		t.Fatalf("img.bin = %+v, want binary without hunks", files[0])
	}
	lock := files[3]
	if !lock.Truncated || len(lock.Hunks) != 1 || lock.Tokens() != nil {
		t.Fatalf("a.lock = %+v, want truncated with hunks and no tokens", lock)
	}
}

func TestExtract_PathsFilter(t *testing.T) {
	t.Parallel()

	r := newTestRepo(t)
	r.write("src/a.go", "package a\n")
	r.write("docs/b.md", "# b\n")
	r.write("old.txt", "content\n")
	r.commitAll("init")
	r.write("src/a.go", "package a\n\nfunc A() {}\n")
	r.write("docs/b.md", "# bb\n")
	r.rename("old.txt", "moved/new.txt")

	tests := []struct {
		paths []string
		want  []string
	}{
		{paths: []string{"src"}, want: []string{"src/a.go"}},
		{paths: []string{"src/", "docs/b.md"}, want: []string{"docs/b.md", "src/a.go"}},
		{paths: []string{"old.txt"}, want: []string{"moved/new.txt"}},
		{paths: []string{"nothing"}, want: nil},
	}
	for _, tt := range tests {
		var got []string
		for _, f := range r.extract(ExtractOptions{Paths: tt.paths}) {
			got = append(got, f.Path)
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Fatalf("Extract(Paths: %v) = %v, want %v", tt.paths, got, tt.want)
		}
	}
}

func TestExtract_ContextLines(t *testing.T) {
	t.Parallel()

	r := newTestRepo(t)
	r.write("a.txt", numbered(1, 20))
	r.commitAll("init")
	r.write("a.txt", strings.Replace(numbered(1, 20), "line 10\n", "ten\n", 1))

	files := r.extract(ExtractOptions{ContextLines: 1})
	if got := files[0].Hunks[0].Header; got != "@@ -9,3 +9,3 @@" {
		t.Fatalf("header = %q, want %q", got, "@@ -9,3 +9,3 @@")
	}
}
