package cmd

import (
	"io"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/thiagokokada/gitsplit/internal/git"
	"github.com/thiagokokada/gitsplit/internal/watch"
)

func newWatchCmd(opts *globalOptions) *cobra.Command {
	var delay time.Duration
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print the status summary whenever the working tree settles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, err := opts.open()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			out := cmd.OutOrStdout()
			report := func() { reportStatus(out, svc) }
			report()
			return watch.Run(ctx, svc.RepoPath(), delay, report)
		},
	}
	cmd.Flags().DurationVar(&delay, "delay", watch.DefaultDelay, "quiet period before reporting")
	return cmd
}

func reportStatus(w io.Writer, svc *git.Service) {
	head, err := svc.Head()
	if err != nil {
		slog.Error("read HEAD", slog.Any("error", err))
		return
	}
	summary, err := svc.Status()
	if err != nil {
		slog.Error("status", slog.Any("error", err))
		return
	}
	headerColor.Fprintf(w, "[%s] %s\n", time.Now().Format(time.TimeOnly), head)
	printStatus(w, summary)
}
