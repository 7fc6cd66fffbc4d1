package git

import (
	"strings"
	"testing"
)

func TestRender(t *testing.T) {
	t.Parallel()

	modified := WorkingTreeFile{
		Path:  "a.txt",
		Hunks: computeHunks(splitLines("a\nb\n"), splitLines("a\nc"), 3),
	}
	tests := []struct {
		name string
		file WorkingTreeFile
		want string
	}{
		{
			name: "hunks",
			file: modified,
			want: "Hunk_id[a.txt:0]\n@@ -1,2 +1,2 @@\n a\n-b\n+c\n\\ No newline at end of file\n",
		},
		{
			name: "truncated",
			file: WorkingTreeFile{Path: "go.sum", Truncated: true, Hunks: modified.Hunks},
			want: TruncatedPlaceholder,
		},
		{
			name: "binary",
			file: WorkingTreeFile{Path: "img.png", Binary: true},
			want: "(binary files differ)\n",
		},
		{
			name: "pure_rename",
			file: WorkingTreeFile{Path: "new.txt", OldPath: "old.txt"},
			want: "rename from old.txt\nrename to new.txt\n",
		},
		{
			name: "unchanged",
			file: WorkingTreeFile{Path: "same.txt"},
			want: "(no textual changes)\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := Render(tt.file); got != tt.want {
				t.Fatalf("Render() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRender_TruncatedHasNoTokens(t *testing.T) {
	t.Parallel()

	f := WorkingTreeFile{
		Path:      "big.log",
		Truncated: true,
		Hunks:     computeHunks(nil, splitLines("x\n"), 3),
	}
	if strings.Contains(Render(f), "Hunk_id[") {
		t.Fatalf("truncated file rendered a token: %q", Render(f))
	}
}

func TestRenderAllAndPatch(t *testing.T) {
	t.Parallel()

	files := []WorkingTreeFile{
		{Path: "b.txt", Hunks: computeHunks(nil, splitLines("x\n"), 3)},
		{Path: "new.txt", OldPath: "old.txt"},
	}
	all := RenderAll(files)
	if len(all) != 2 || all[0].Path != "b.txt" || all[1].Path != "new.txt" {
		t.Fatalf("RenderAll() = %+v", all)
	}
	if all[0].Text != "Hunk_id[b.txt:0]\n@@ -0,0 +1 @@\n+x\n" {
		t.Fatalf("RenderAll()[0].Text = %q", all[0].Text)
	}

	patch := RenderPatch(files)
	want := "diff --git a/b.txt b/b.txt\n" + all[0].Text +
		"diff --git a/old.txt b/new.txt\n" + all[1].Text
	if patch != want {
		t.Fatalf("RenderPatch() = %q, want %q", patch, want)
	}
	if got := RenderPatch(nil); got != "No changes.\n" {
		t.Fatalf("RenderPatch(nil) = %q", got)
	}
}
