package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/thiagokokada/gitsplit/internal/buildinfo"
	"github.com/thiagokokada/gitsplit/internal/config"
	"github.com/thiagokokada/gitsplit/internal/git"
	"github.com/thiagokokada/gitsplit/internal/git/gitcli"
)

var (
	headerColor  = color.New(color.FgCyan, color.Bold)
	stagedColor  = color.New(color.FgGreen)
	changedColor = color.New(color.FgRed)
	warnColor    = color.New(color.FgYellow)
	errorColor   = color.New(color.FgRed, color.Bold)
	hashColor    = color.New(color.FgYellow)
)

type globalOptions struct {
	repo    string
	config  string
	verbose bool
	noColor bool
}

func Run() error {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		errorColor.Fprintf(os.Stderr, "gitsplit: %v\n", err)
		return err
	}
	return nil
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}
	root := &cobra.Command{
		Use:     "gitsplit",
		Version: buildinfo.Read().String(),
		Short:   "Split working tree changes into a series of focused commits",
		Long: `gitsplit renders the outstanding changes of a repository as hunks with
stable identifiers and commits them according to a plan that groups files
and hunks into conventional commits.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging(opts.verbose)
			if opts.noColor {
				color.NoColor = true
			}
		},
	}
	root.SetVersionTemplate("{{.Version}}\n")
	flags := root.PersistentFlags()
	flags.StringVarP(&opts.repo, "repo", "C", ".", "path to the repository")
	flags.StringVar(&opts.config, "config", "", "config file (default <repo>/"+config.FileName+")")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "enable verbose logging")
	flags.BoolVar(&opts.noColor, "no-color", false, "disable colored output")

	root.AddCommand(
		newStatusCmd(opts),
		newDiffCmd(opts),
		newApplyCmd(opts),
		newWatchCmd(opts),
		newVersionCmd(),
	)
	return root
}

func setupLogging(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// open loads the repository and its configuration.
func (o *globalOptions) open() (*git.Service, config.Config, error) {
	svc, err := git.Open(o.repo)
	if err != nil {
		return nil, config.Config{}, err
	}
	cfg, err := config.Load(svc.RepoPath(), o.config)
	if err != nil {
		return nil, config.Config{}, err
	}
	if cfg.Path() != "" {
		slog.Debug("loaded config", slog.String("path", cfg.Path()))
	}
	return svc, cfg, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			info := buildinfo.Read()
			fmt.Fprintf(out, "gitsplit %s\n", info)
			if info.GoVersion != "" {
				fmt.Fprintf(out, "built with %s\n", info.GoVersion)
			}
			if v, err := gitcli.GitVersion(); err == nil {
				fmt.Fprintln(out, v)
			} else {
				slog.Debug("git executable unavailable", slog.Any("error", err))
			}
		},
	}
}
