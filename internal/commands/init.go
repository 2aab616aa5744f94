package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/farmledger/internal/config"
	"github.com/cleared-dev/farmledger/internal/gitops"
)

func newInitCommand() *cobra.Command {
	var name string
	var initGit bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new farm ledger repo",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			return runInit(absDir, name, initGit)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "farm name (required)")
	_ = cmd.MarkFlagRequired("name")
	cmd.Flags().BoolVar(&initGit, "git", false, "initialize a git repository")

	return cmd
}

func runInit(dir, name string, initGit bool) error {
	cfgPath := filepath.Join(dir, config.FileName)
	if _, err := os.Stat(cfgPath); err == nil {
		return fmt.Errorf("%s already exists", cfgPath)
	}

	cfg := config.Default(name)
	for _, d := range []string{cfg.Input.Dir, cfg.Output.Dir, "logs"} {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	if err := config.Save(cfgPath, cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	gitignore := "~$*\n"
	if err := os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(gitignore), 0o644); err != nil {
		return fmt.Errorf("writing .gitignore: %w", err)
	}

	if initGit && !gitops.IsRepo(dir) {
		if err := gitops.Init(dir); err != nil {
			return err
		}
	}

	fmt.Printf("Initialized farm ledger for %s at %s\n", name, dir)
	return nil
}
