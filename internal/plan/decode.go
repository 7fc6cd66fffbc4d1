package plan

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Decode reads a plan document. The document is either a list of units or a
// mapping with a "commits" list; JSON is accepted as the YAML subset it is.
func Decode(r io.Reader) (CommitPlan, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return CommitPlan{}, fmt.Errorf("read plan: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (CommitPlan, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return CommitPlan{}, fmt.Errorf("%w: empty document", ErrInvalidPlan)
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return CommitPlan{}, fmt.Errorf("%w: %w", ErrInvalidPlan, err)
	}
	root := &doc
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}
	var p CommitPlan
	switch root.Kind {
	case yaml.SequenceNode:
		if err := root.Decode(&p.Units); err != nil {
			return CommitPlan{}, fmt.Errorf("%w: %w", ErrInvalidPlan, err)
		}
	case yaml.MappingNode:
		if err := root.Decode(&p); err != nil {
			return CommitPlan{}, fmt.Errorf("%w: %w", ErrInvalidPlan, err)
		}
	default:
		return CommitPlan{}, fmt.Errorf("%w: expected a list of commits (line %d)", ErrInvalidPlan, root.Line)
	}
	if err := p.Validate(); err != nil {
		return CommitPlan{}, err
	}
	return p, nil
}

// Load decodes the plan stored at path; "-" reads standard input.
func Load(path string) (CommitPlan, error) {
	if path == "-" {
		return Decode(os.Stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return CommitPlan{}, fmt.Errorf("open plan: %w", err)
	}
	defer f.Close()
	return Decode(f)
}
