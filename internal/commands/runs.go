package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/farmledger/internal/runlog"
)

func newRunsCommand() *cobra.Command {
	var repoDir string
	var last int

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Show the stages of recent pipeline runs from the run log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo(repoDir)
			if err != nil {
				return err
			}
			entries, err := runlog.Read(r.root)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no runs recorded")
				return nil
			}
			if last > 0 && len(entries) > last {
				entries = entries[len(entries)-last:]
			}

			out := cmd.OutOrStdout()
			for _, e := range entries {
				line := fmt.Sprintf("%s  %-11s %4d accounts %4d errors", e.Timestamp.Local().Format("2006-01-02 15:04:05"), e.Step, e.Accounts, e.Errors)
				if e.Details != "" {
					line += "  " + e.Details
				}
				if e.Errors > 0 {
					warnColor.Fprintln(out, line)
				} else {
					fmt.Fprintln(out, line)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&repoDir, "repo", ".", "repository directory")
	cmd.Flags().IntVar(&last, "last", 16, "show at most this many stage entries (0 for all)")

	return cmd
}
