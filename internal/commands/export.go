package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/farmledger/internal/gitops"
	"github.com/cleared-dev/farmledger/internal/journal"
	"github.com/cleared-dev/farmledger/internal/pipeline"
)

func newExportCommand() *cobra.Command {
	var repoDir string
	var format string
	var commit bool

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Process the ledger and write the tax and market views",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo(repoDir)
			if err != nil {
				return err
			}
			if format == "" {
				format = r.cfg.Output.Format
			}
			exp, err := journal.NewExporter(r.outputDir(), format)
			if err != nil {
				return err
			}

			p, err := r.process(cmd.OutOrStdout(), pipeline.StepDone)
			if err != nil {
				return err
			}
			paths, err := exp.Export(*p.State.Final)
			if err != nil {
				return fmt.Errorf("exporting: %w", err)
			}
			for _, path := range paths {
				fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			}
			if commit {
				return r.commitExports(cmd.OutOrStdout())
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&repoDir, "repo", ".", "repository directory")
	cmd.Flags().BoolVar(&commit, "commit", false, "commit the exports to the repo's git history")
	cmd.Flags().StringVar(&format, "format", "", "export format: csv or xlsx (default from config)")

	return cmd
}

func (r *repo) commitExports(out io.Writer) error {
	if !gitops.IsRepo(r.root) {
		return fmt.Errorf("%s is not a git repository", r.root)
	}
	msg := fmt.Sprintf("export: %s ledger", r.cfg.Farm.Name)
	hash, err := gitops.CommitPaths(r.root, msg, r.cfg.Git.AuthorName, r.cfg.Git.AuthorEmail, r.cfg.Output.Dir)
	if err != nil {
		return err
	}
	if hash == "" {
		fmt.Fprintln(out, "exports unchanged, nothing committed")
		return nil
	}
	fmt.Fprintf(out, "committed %s\n", hash)
	return nil
}
