package git

type LineKind uint8

const (
	LineContext LineKind = iota
	LineAddition
	LineDeletion
)

func (k LineKind) String() string {
	switch k {
	case LineAddition:
		return "addition"
	case LineDeletion:
		return "deletion"
	default:
		return "context"
	}
}

// Prefix returns the unified diff marker for the line kind.
func (k LineKind) Prefix() byte {
	switch k {
	case LineAddition:
		return '+'
	case LineDeletion:
		return '-'
	default:
		return ' '
	}
}

type Line struct {
	Kind LineKind
	Text string // raw, including the trailing newline when the file has one
}

// Hunk is a contiguous block of changed lines sharing one "@@" header.
// Ordinal is only meaningful within the extraction pass that produced it.
type Hunk struct {
	Header  string
	Ordinal int
	Lines   []Line

	OldStart int
	OldCount int
	NewStart int
	NewCount int

	// half-open span of baseline lines covered by the hunk
	oldFrom int
	oldTo   int
}

type WorkingTreeFile struct {
	Path string
	// OldPath is set when the file is the new side of an exact rename.
	OldPath   string
	Truncated bool
	Binary    bool
	Hunks     []Hunk
}

// Tokens returns the hunk tokens the file contributes. Truncated files never
// contribute any.
func (f WorkingTreeFile) Tokens() []string {
	if f.Truncated {
		return nil
	}
	tokens := make([]string, 0, len(f.Hunks))
	for _, h := range f.Hunks {
		tokens = append(tokens, Token(f.Path, h.Ordinal))
	}
	return tokens
}

func (f WorkingTreeFile) IsRename() bool {
	return f.OldPath != "" && f.OldPath != f.Path
}

// baselinePath is the path whose HEAD content the hunks were computed against.
func (f WorkingTreeFile) baselinePath() string {
	if f.IsRename() {
		return f.OldPath
	}
	return f.Path
}

type RenamedPath struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type StatusBucket struct {
	New      []string      `json:"new"`
	Modified []string      `json:"modified"`
	Deleted  []string      `json:"deleted"`
	Renamed  []RenamedPath `json:"renamed"`
}

func (b StatusBucket) empty() bool {
	return len(b.New) == 0 && len(b.Modified) == 0 && len(b.Deleted) == 0 && len(b.Renamed) == 0
}

type StatusSummary struct {
	Staged   StatusBucket `json:"staged"`
	Unstaged StatusBucket `json:"unstaged"`
}

type BucketCounts struct {
	New      int `json:"new"`
	Modified int `json:"modified"`
	Deleted  int `json:"deleted"`
	Renamed  int `json:"renamed"`
}

type StatusCounts struct {
	Staged   BucketCounts `json:"staged"`
	Unstaged BucketCounts `json:"unstaged"`
}
