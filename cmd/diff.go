package cmd

import (
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/thiagokokada/gitsplit/internal/git"
	"github.com/thiagokokada/gitsplit/internal/highlight"
)

type diffOptions struct {
	paths      []string
	context    int
	noTruncate bool
	plain      bool
	theme      string
}

func newDiffCmd(opts *globalOptions) *cobra.Command {
	var d diffOptions
	cmd := &cobra.Command{
		Use:   "diff [path...]",
		Short: "Render changes with hunk identifiers for planning",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cfg, err := opts.open()
			if err != nil {
				return err
			}
			extract := git.ExtractOptions{
				Truncate:     cfg.Truncate,
				Paths:        append(d.paths, args...),
				ContextLines: cfg.ContextLines,
			}
			if d.noTruncate {
				extract.Truncate = nil
			}
			if cmd.Flags().Changed("context") {
				extract.ContextLines = d.context
			}
			files, err := svc.Extract(extract)
			if err != nil {
				return err
			}
			text := git.RenderPatch(files)

			theme := cfg.Theme
			if d.theme != "" {
				theme = d.theme
			}
			var h *highlight.Highlighter
			if !d.plain && !color.NoColor && isTerminal(cmd.OutOrStdout()) {
				t, err := highlight.ParseTheme(theme)
				if err != nil {
					return err
				}
				h = highlight.New(t)
			}
			return h.Write(cmd.OutOrStdout(), text)
		},
	}
	flags := cmd.Flags()
	flags.StringSliceVarP(&d.paths, "path", "p", nil, "restrict to these files or directories")
	flags.IntVarP(&d.context, "context", "U", git.DefaultContextLines, "context lines around each change")
	flags.BoolVar(&d.noTruncate, "no-truncate", false, "show files matching truncate rules in full")
	flags.BoolVar(&d.plain, "plain", false, "disable syntax highlighting")
	flags.StringVar(&d.theme, "theme", "", "highlight theme: auto, light or dark")
	return cmd
}

func isTerminal(w any) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
