//go:build !gitcli

package git

import gitlib "github.com/go-git/go-git/v5"

func (s *Service) classify() (StatusSummary, error) {
	var sum StatusSummary
	wt, err := s.repo.Worktree()
	if err != nil {
		return sum, stateError("open worktree", err)
	}
	status, err := wt.Status()
	if err != nil {
		return sum, stateError("enumerate status", err)
	}
	for path, st := range status {
		if st.Staging == gitlib.Unmodified && st.Worktree == gitlib.Unmodified {
			continue
		}
		switch st.Staging {
		case gitlib.Added, gitlib.Copied:
			sum.Staged.New = append(sum.Staged.New, path)
		case gitlib.Modified, gitlib.UpdatedButUnmerged:
			sum.Staged.Modified = append(sum.Staged.Modified, path)
		case gitlib.Deleted:
			sum.Staged.Deleted = append(sum.Staged.Deleted, path)
		case gitlib.Renamed:
			if st.Extra != "" {
				sum.Staged.Renamed = append(sum.Staged.Renamed, RenamedPath{From: st.Extra, To: path})
			} else {
				sum.Staged.New = append(sum.Staged.New, path)
			}
		}
		switch st.Worktree {
		case gitlib.Untracked:
			sum.Unstaged.New = append(sum.Unstaged.New, path)
		case gitlib.Modified, gitlib.UpdatedButUnmerged:
			sum.Unstaged.Modified = append(sum.Unstaged.Modified, path)
		case gitlib.Deleted:
			sum.Unstaged.Deleted = append(sum.Unstaged.Deleted, path)
		case gitlib.Renamed:
			if st.Extra != "" {
				sum.Unstaged.Renamed = append(sum.Unstaged.Renamed, RenamedPath{From: st.Extra, To: path})
			} else {
				sum.Unstaged.New = append(sum.Unstaged.New, path)
			}
		}
	}
	if err := s.pairExactRenames(&sum); err != nil {
		return StatusSummary{}, err
	}
	sum.Staged.sort()
	sum.Unstaged.sort()
	return sum, nil
}
