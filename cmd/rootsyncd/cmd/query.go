package cmd

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"github.com/wormholelabs-xyz/rootsync/modules/core/ledger"
	rootledgertypes "github.com/wormholelabs-xyz/rootsync/modules/rootledger/types"
)

// newQueryCmd returns the ledger query commands. Results are printed as JSON.
func newQueryCmd(app *appContext) *cobra.Command {
	queryCmd := &cobra.Command{
		Use:   "query",
		Short: "ledger query subcommands",
	}

	vt := rootledgertypes.VerificationTypeQuery
	queryCmd.AddCommand(
		newLedgerQueryCmd(app, "config", "show the ledger config", 0,
			func(cmd *cobra.Command, l *ledger.Ledger, _ []string) (any, error) {
				return l.Config(cmd.Context())
			}),
		newLedgerQueryCmd(app, "latest-root", "show the latest root", 0,
			func(cmd *cobra.Command, l *ledger.Ledger, _ []string) (any, error) {
				return l.LatestRoot(cmd.Context(), vt)
			}),
		newLedgerQueryCmd(app, "roots", "list the stored roots", 0,
			func(cmd *cobra.Command, l *ledger.Ledger, _ []string) (any, error) {
				return l.Roots(cmd.Context(), vt)
			}),
		newLedgerQueryCmd(app, "guardian-set [index]", "show a guardian set, or the current one", -1,
			func(cmd *cobra.Command, l *ledger.Ledger, args []string) (any, error) {
				if len(args) == 0 {
					return l.CurrentGuardianSet(cmd.Context())
				}
				index, err := strconv.ParseUint(args[0], 10, 32)
				if err != nil {
					return nil, err
				}
				return l.GuardianSet(cmd.Context(), uint32(index))
			}),
		newLedgerQueryCmd(app, "verify-root [root]", "check that proofs may be anchored at a root", 1,
			func(cmd *cobra.Command, l *ledger.Ledger, args []string) (any, error) {
				root := common.HexToHash(args[0])
				if err := l.VerifyRoot(cmd.Context(), vt, root); err != nil {
					return nil, err
				}
				return map[string]any{"root": root, "valid": true}, nil
			}),
	)

	return queryCmd
}

// newLedgerQueryCmd builds a query command taking nargs arguments, or at most one when nargs is -1.
func newLedgerQueryCmd(app *appContext, use, short string, nargs int, query func(cmd *cobra.Command, l *ledger.Ledger, args []string) (any, error)) *cobra.Command {
	args := cobra.ExactArgs(nargs)
	if nargs < 0 {
		args = cobra.MaximumNArgs(1)
	}

	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := app.openLedger()
			if err != nil {
				return err
			}
			res, err := query(cmd, l, args)
			if err != nil {
				return err
			}

			bz, err := json.MarshalIndent(res, "", "  ")
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(bz))
			return err
		},
	}
}
