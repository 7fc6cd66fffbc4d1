package git

import (
	"fmt"
	"strings"
)

const (
	TruncatedPlaceholder = "(content omitted: file matches a truncate rule)\n"
	binaryPlaceholder    = "(binary files differ)\n"
	noChangesPlaceholder = "(no textual changes)\n"
	noNewlineMarker      = "\\ No newline at end of file\n"
)

// Render returns the canonical text of one file as shown to planners: each
// hunk is introduced by its Hunk_id[path:ordinal] token.
func Render(file WorkingTreeFile) string {
	var b strings.Builder
	if file.IsRename() {
		fmt.Fprintf(&b, "rename from %s\nrename to %s\n", file.OldPath, file.Path)
	}
	switch {
	case file.Truncated:
		b.WriteString(TruncatedPlaceholder)
		return b.String()
	case file.Binary:
		b.WriteString(binaryPlaceholder)
		return b.String()
	case len(file.Hunks) == 0:
		if !file.IsRename() {
			b.WriteString(noChangesPlaceholder)
		}
		return b.String()
	}
	for _, h := range file.Hunks {
		fmt.Fprintf(&b, "Hunk_id[%s]\n", Token(file.Path, h.Ordinal))
		b.WriteString(h.Header)
		b.WriteByte('\n')
		for _, l := range h.Lines {
			b.WriteByte(l.Kind.Prefix())
			b.WriteString(l.Text)
			if !strings.HasSuffix(l.Text, "\n") {
				b.WriteByte('\n')
				b.WriteString(noNewlineMarker)
			}
		}
	}
	return b.String()
}

type RenderedFile struct {
	Path string
	Text string
}

// RenderAll renders every file, keeping the extraction order.
func RenderAll(files []WorkingTreeFile) []RenderedFile {
	out := make([]RenderedFile, 0, len(files))
	for _, f := range files {
		out = append(out, RenderedFile{Path: f.Path, Text: Render(f)})
	}
	return out
}

// RenderPatch joins rendered files under diff --git headers for terminal
// display.
func RenderPatch(files []WorkingTreeFile) string {
	if len(files) == 0 {
		return "No changes.\n"
	}
	var b strings.Builder
	for _, f := range files {
		from := f.Path
		if f.IsRename() {
			from = f.OldPath
		}
		fmt.Fprintf(&b, "diff --git a/%s b/%s\n", from, f.Path)
		b.WriteString(Render(f))
	}
	return b.String()
}
