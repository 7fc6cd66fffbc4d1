//go:build gitcli

package git

import "github.com/thiagokokada/gitsplit/internal/git/gitcli"

func (s *Service) classify() (StatusSummary, error) {
	var sum StatusSummary
	cli, err := gitcli.Open(s.repo.path)
	if err != nil {
		return sum, stateError("open git executable", err)
	}
	entries, err := cli.Status()
	if err != nil {
		return sum, stateError("enumerate status", err)
	}
	sum = summarizeEntries(entries)
	if err := s.pairExactRenames(&sum); err != nil {
		return StatusSummary{}, err
	}
	sum.Staged.sort()
	sum.Unstaged.sort()
	return sum, nil
}

// summarizeEntries buckets porcelain v2 entries. Renames below a 100%
// similarity score are split into their deletion and addition.
func summarizeEntries(entries []gitcli.Entry) StatusSummary {
	var sum StatusSummary
	for _, e := range entries {
		switch e.Kind {
		case gitcli.EntryUntracked:
			sum.Unstaged.New = append(sum.Unstaged.New, e.Path)
			continue
		case gitcli.EntryIgnored:
			continue
		case gitcli.EntryUnmerged:
			sum.Staged.Modified = append(sum.Staged.Modified, e.Path)
			sum.Unstaged.Modified = append(sum.Unstaged.Modified, e.Path)
			continue
		case gitcli.EntryRenamed:
			if e.X == 'R' {
				if e.Score == 100 {
					sum.Staged.Renamed = append(sum.Staged.Renamed, RenamedPath{From: e.OrigPath, To: e.Path})
				} else {
					sum.Staged.Deleted = append(sum.Staged.Deleted, e.OrigPath)
					sum.Staged.New = append(sum.Staged.New, e.Path)
				}
			} else if e.X == 'C' {
				sum.Staged.New = append(sum.Staged.New, e.Path)
			}
			classifyWorktree(&sum, e)
			continue
		}
		switch e.X {
		case 'A':
			sum.Staged.New = append(sum.Staged.New, e.Path)
		case 'M', 'T':
			sum.Staged.Modified = append(sum.Staged.Modified, e.Path)
		case 'D':
			sum.Staged.Deleted = append(sum.Staged.Deleted, e.Path)
		}
		classifyWorktree(&sum, e)
	}
	return sum
}

func classifyWorktree(sum *StatusSummary, e gitcli.Entry) {
	switch e.Y {
	case 'M', 'T':
		sum.Unstaged.Modified = append(sum.Unstaged.Modified, e.Path)
	case 'D':
		sum.Unstaged.Deleted = append(sum.Unstaged.Deleted, e.Path)
	case 'A':
		// intent-to-add entries
		sum.Unstaged.New = append(sum.Unstaged.New, e.Path)
	}
}
