package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/thiagokokada/gitsplit/internal/git"
)

func newStatusCmd(opts *globalOptions) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show staged and unstaged changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, err := opts.open()
			if err != nil {
				return err
			}
			head, err := svc.Head()
			if err != nil {
				return err
			}
			summary, err := svc.Status()
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), struct {
					Head git.HeadState `json:"head"`
					git.StatusSummary
					Counts git.StatusCounts `json:"counts"`
				}{head, summary, summary.Counts()})
			}
			headerColor.Fprintln(cmd.OutOrStdout(), head)
			printStatus(cmd.OutOrStdout(), summary)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the summary as JSON")
	return cmd
}

func printStatus(w io.Writer, s git.StatusSummary) {
	if s.IsClean() {
		fmt.Fprintln(w, "Nothing to commit, working tree clean.")
		return
	}
	printBucket(w, "Staged changes:", s.Staged, stagedColor.Sprint)
	printBucket(w, "Unstaged changes:", s.Unstaged, changedColor.Sprint)
	c := s.Counts()
	fmt.Fprintf(w, "%d staged, %d unstaged\n",
		c.Staged.New+c.Staged.Modified+c.Staged.Deleted+c.Staged.Renamed,
		c.Unstaged.New+c.Unstaged.Modified+c.Unstaged.Deleted+c.Unstaged.Renamed,
	)
}

func printBucket(w io.Writer, title string, b git.StatusBucket, paint func(...any) string) {
	if len(b.New)+len(b.Modified)+len(b.Deleted)+len(b.Renamed) == 0 {
		return
	}
	headerColor.Fprintln(w, title)
	for _, p := range b.New {
		fmt.Fprintf(w, "  %s\n", paint("new:      "+p))
	}
	for _, p := range b.Modified {
		fmt.Fprintf(w, "  %s\n", paint("modified: "+p))
	}
	for _, p := range b.Deleted {
		fmt.Fprintf(w, "  %s\n", paint("deleted:  "+p))
	}
	for _, r := range b.Renamed {
		fmt.Fprintf(w, "  %s\n", paint("renamed:  "+r.From+" -> "+r.To))
	}
	fmt.Fprintln(w)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
