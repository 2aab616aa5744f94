package commands

import (
	"github.com/spf13/cobra"

	"github.com/cleared-dev/farmledger/internal/buildinfo"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "farmledger",
		Short:   "Farm ledger validation and tax/market reporting",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newProcessCommand())
	rootCmd.AddCommand(newExportCommand())
	rootCmd.AddCommand(newAccountsCommand())
	rootCmd.AddCommand(newRunsCommand())

	return rootCmd
}
