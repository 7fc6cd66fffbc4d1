package gitcli

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

type EntryKind uint8

const (
	EntryChanged EntryKind = iota + 1
	EntryRenamed
	EntryUnmerged
	EntryUntracked
	EntryIgnored
)

// Entry is one record of "git status --porcelain=v2 -z". X and Y are the
// index and worktree status letters, '.' meaning unchanged.
type Entry struct {
	Kind     EntryKind
	X, Y     byte
	Path     string
	OrigPath string
	// Score is the similarity percentage of a rename or copy.
	Score int
}

// ParseStatusV2 decodes NUL-separated porcelain v2 output.
func ParseStatusV2(out []byte) ([]Entry, error) {
	records := bytes.Split(out, []byte{0})
	var entries []Entry
	for i := 0; i < len(records); i++ {
		rec := string(records[i])
		if rec == "" {
			continue
		}
		switch rec[0] {
		case '#':
			continue
		case '?', '!':
			if len(rec) < 3 {
				return nil, fmt.Errorf("short record %q", rec)
			}
			kind := EntryUntracked
			if rec[0] == '!' {
				kind = EntryIgnored
			}
			entries = append(entries, Entry{Kind: kind, X: rec[0], Y: rec[0], Path: rec[2:]})
		case '1':
			fields := strings.SplitN(rec, " ", 9)
			if len(fields) != 9 || len(fields[1]) != 2 {
				return nil, fmt.Errorf("malformed changed record %q", rec)
			}
			entries = append(entries, Entry{Kind: EntryChanged, X: fields[1][0], Y: fields[1][1], Path: fields[8]})
		case '2':
			fields := strings.SplitN(rec, " ", 10)
			if len(fields) != 10 || len(fields[1]) != 2 || len(fields[8]) < 2 {
				return nil, fmt.Errorf("malformed rename record %q", rec)
			}
			if i+1 >= len(records) {
				return nil, fmt.Errorf("rename record %q without original path", rec)
			}
			score, err := strconv.Atoi(fields[8][1:])
			if err != nil {
				return nil, fmt.Errorf("rename record %q: bad score: %w", rec, err)
			}
			i++
			entries = append(entries, Entry{
				Kind:     EntryRenamed,
				X:        fields[1][0],
				Y:        fields[1][1],
				Path:     fields[9],
				OrigPath: string(records[i]),
				Score:    score,
			})
		case 'u':
			fields := strings.SplitN(rec, " ", 11)
			if len(fields) != 11 || len(fields[1]) != 2 {
				return nil, fmt.Errorf("malformed unmerged record %q", rec)
			}
			entries = append(entries, Entry{Kind: EntryUnmerged, X: fields[1][0], Y: fields[1][1], Path: fields[10]})
		default:
			return nil, fmt.Errorf("unknown record type %q", rec)
		}
	}
	return entries, nil
}
