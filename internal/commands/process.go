package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/farmledger/internal/importer"
	"github.com/cleared-dev/farmledger/internal/pipeline"
)

func newProcessCommand() *cobra.Command {
	var repoDir string
	var until string
	var watch bool

	cmd := &cobra.Command{
		Use:   "process",
		Short: "Validate every account sheet and report errors",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			stop, err := pipeline.ParseStep(until)
			if err != nil {
				return err
			}
			r, err := openRepo(repoDir)
			if err != nil {
				return err
			}
			if watch {
				return r.watch(cmd.OutOrStdout(), stop)
			}
			_, err = r.process(cmd.OutOrStdout(), stop)
			return err
		},
	}

	cmd.Flags().StringVar(&repoDir, "repo", ".", "repository directory")
	cmd.Flags().StringVar(&until, "until", pipeline.StepDone.String(),
		fmt.Sprintf("stop after this stage (%s..%s)", pipeline.StepSettings, pipeline.StepDone))
	cmd.Flags().BoolVar(&watch, "watch", false, "re-run whenever a sheet in the input dir changes")

	return cmd
}

// watch processes once, then again after every change to the input dir,
// until interrupted. Failed runs are reported and do not stop watching.
func (r *repo) watch(out io.Writer, stop pipeline.Step) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	run := func() {
		if _, err := r.process(out, stop); err != nil {
			failColor.Fprintf(out, "%v\n", err)
		}
		fmt.Fprintf(out, "watching %s for changes\n", r.inputDir())
	}
	run()
	return importer.Watch(ctx, r.inputDir(), r.cfg.Input.Formats, r.logger(os.Stderr), run)
}
