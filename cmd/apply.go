package cmd

import (
	"fmt"
	"io"

	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/spf13/cobra"

	"github.com/thiagokokada/gitsplit/internal/git"
	"github.com/thiagokokada/gitsplit/internal/plan"
)

func newApplyCmd(opts *globalOptions) *cobra.Command {
	var (
		asJSON       bool
		noTruncate   bool
		contextLines int
	)
	cmd := &cobra.Command{
		Use:   "apply <plan-file|->",
		Short: "Commit changes according to a plan",
		Long: `apply reads a commit plan (YAML or JSON) and creates one commit per unit,
in order. Units name whole files or hunk identifiers as printed by "gitsplit
diff". Use "-" to read the plan from standard input.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := plan.Load(args[0])
			if err != nil {
				return err
			}
			svc, cfg, err := opts.open()
			if err != nil {
				return err
			}
			engineOpts := git.EngineOptions{
				Truncate:     cfg.Truncate,
				ContextLines: cfg.ContextLines,
				Author:       git.Identity{Name: cfg.Author.Name, Email: cfg.Author.Email},
				ConfigScope:  gitconfig.GlobalScope,
			}
			if noTruncate {
				engineOpts.Truncate = nil
			}
			if cmd.Flags().Changed("context") {
				engineOpts.ContextLines = contextLines
			}
			report := git.NewEngine(svc, engineOpts).Apply(cmd.Context(), p, nil)
			if asJSON {
				if err := writeJSON(cmd.OutOrStdout(), report); err != nil {
					return err
				}
			} else {
				printReport(cmd.OutOrStdout(), report)
			}
			if err := report.Err(); err != nil {
				return fmt.Errorf("aborted at unit %d after %d commit(s): %w", report.FailedUnit, report.CommittedUnits, err)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the apply report as JSON")
	cmd.Flags().BoolVar(&noTruncate, "no-truncate", false, "resolve hunk identifiers of truncated files too")
	cmd.Flags().IntVarP(&contextLines, "context", "U", git.DefaultContextLines, "context lines used to resolve hunk identifiers, as given to diff")
	return cmd
}

func printReport(w io.Writer, r git.ApplyReport) {
	for _, c := range r.Commits {
		fmt.Fprintf(w, "%s %s\n", hashColor.Sprint(shortHash(c.Hash)), c.Message)
	}
	for _, u := range r.SkippedUnits {
		fmt.Fprintf(w, "%s\n", warnColor.Sprintf("skipped unit %d: nothing to commit", u))
	}
	for _, warning := range r.Warnings {
		fmt.Fprintf(w, "%s\n", warnColor.Sprintf("warning: %s", warning))
	}
	fmt.Fprintf(w, "%d commit(s) created\n", r.CommittedUnits)
}

func shortHash(h string) string {
	if len(h) > 7 {
		return h[:7]
	}
	return h
}
