package git

import (
	"fmt"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

const DefaultContextLines = 3

// splitLines keeps every line terminator so that joining the result
// reproduces the input byte for byte. difflib.SplitLines cannot be used here:
// it appends a newline to the last element.
func splitLines(content string) []string {
	if content == "" {
		return nil
	}
	lines := strings.SplitAfter(content, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// computeHunks groups the line diff between from and to into hunks carrying
// context lines of context around each change.
func computeHunks(from, to []string, context int) []Hunk {
	if context < 0 {
		context = DefaultContextLines
	}
	m := difflib.NewMatcher(from, to)
	groups := m.GetGroupedOpCodes(context)
	hunks := make([]Hunk, 0, len(groups))
	for _, group := range groups {
		if len(group) == 0 {
			continue
		}
		first, last := group[0], group[len(group)-1]
		h := Hunk{
			Ordinal: len(hunks),
			oldFrom: first.I1,
			oldTo:   last.I2,
		}
		h.OldStart, h.OldCount = unifiedRange(first.I1, last.I2)
		h.NewStart, h.NewCount = unifiedRange(first.J1, last.J2)
		h.Header = formatHunkHeader(h.OldStart, h.OldCount, h.NewStart, h.NewCount)
		for _, op := range group {
			switch op.Tag {
			case 'e':
				h.Lines = appendLines(h.Lines, LineContext, from[op.I1:op.I2])
			case 'd':
				h.Lines = appendLines(h.Lines, LineDeletion, from[op.I1:op.I2])
			case 'i':
				h.Lines = appendLines(h.Lines, LineAddition, to[op.J1:op.J2])
			case 'r':
				h.Lines = appendLines(h.Lines, LineDeletion, from[op.I1:op.I2])
				h.Lines = appendLines(h.Lines, LineAddition, to[op.J1:op.J2])
			}
		}
		hunks = append(hunks, h)
	}
	return hunks
}

func appendLines(dst []Line, kind LineKind, src []string) []Line {
	for _, text := range src {
		dst = append(dst, Line{Kind: kind, Text: text})
	}
	return dst
}

// unifiedRange converts a half-open [start, stop) span into the 1-based
// start and length used by unified headers; empty spans point at the line
// before the insertion, as GNU diff does.
func unifiedRange(start, stop int) (int, int) {
	beginning := start + 1
	length := stop - start
	if length == 0 {
		beginning--
	}
	return beginning, length
}

func formatHunkHeader(oldStart, oldCount, newStart, newCount int) string {
	return fmt.Sprintf("@@ -%s +%s @@", formatRange(oldStart, oldCount), formatRange(newStart, newCount))
}

func formatRange(start, length int) string {
	if length == 1 {
		return fmt.Sprintf("%d", start)
	}
	return fmt.Sprintf("%d,%d", start, length)
}

// normalizedHeader drops the old-side start, the only part of a header that
// moves when other hunks of the same file are committed first.
func normalizedHeader(h Hunk) string {
	return fmt.Sprintf("@@ -%d +%s @@", h.OldCount, formatRange(h.NewStart, h.NewCount))
}

// hunkKey identifies a hunk across extraction passes made against different
// baselines of the same working tree.
type hunkKey struct {
	path   string
	header string
	body   string
}

func keyForHunk(path string, h Hunk) hunkKey {
	var b strings.Builder
	for _, l := range h.Lines {
		b.WriteByte(l.Kind.Prefix())
		b.WriteString(l.Text)
		if !strings.HasSuffix(l.Text, "\n") {
			b.WriteString("\n\\\n")
		}
	}
	return hunkKey{path: path, header: normalizedHeader(h), body: b.String()}
}

// applyHunks rebuilds content from the baseline lines with only the given
// hunks applied. hunks must come from one computeHunks call over base and be
// in ascending order.
func applyHunks(base []string, hunks []Hunk) string {
	var b strings.Builder
	pos := 0
	for _, h := range hunks {
		if h.oldFrom < pos || h.oldTo > len(base) {
			continue
		}
		for _, line := range base[pos:h.oldFrom] {
			b.WriteString(line)
		}
		for _, l := range h.Lines {
			if l.Kind != LineDeletion {
				b.WriteString(l.Text)
			}
		}
		pos = h.oldTo
	}
	for _, line := range base[pos:] {
		b.WriteString(line)
	}
	return b.String()
}
