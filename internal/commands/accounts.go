package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/farmledger/internal/accounts"
	"github.com/cleared-dev/farmledger/internal/model"
	"github.com/cleared-dev/farmledger/internal/pipeline"
)

func newAccountsCommand() *cobra.Command {
	var repoDir string
	var accountType string

	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "List accounts with their type, basis and closing balance as CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var want model.AccountType
			if accountType != "" {
				t, ok := model.ParseAccountType(accountType)
				if !ok {
					return fmt.Errorf("unknown account type %q", accountType)
				}
				want = t
			}

			r, err := openRepo(repoDir)
			if err != nil {
				return err
			}
			p, err := r.process(io.Discard, pipeline.StepSplits)
			if err != nil {
				return err
			}

			svc := accounts.NewService()
			for _, a := range p.State.Accts {
				if _, err := svc.Add(a); err != nil {
					return err
				}
			}
			list := svc.All()
			if want != "" {
				list = svc.ByType(want)
			}
			return accounts.WriteSummary(cmd.OutOrStdout(), list)
		},
	}

	cmd.Flags().StringVar(&repoDir, "repo", ".", "repository directory")
	cmd.Flags().StringVar(&accountType, "type", "", "only list accounts of this type (cash, asset, inventory, futures-cash, futures-asset, invalid)")

	return cmd
}
