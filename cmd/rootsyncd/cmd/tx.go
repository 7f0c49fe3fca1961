package cmd

import (
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	errorsmod "cosmossdk.io/errors"

	coreerrors "github.com/wormholelabs-xyz/rootsync/modules/core/errors"
	rootledgertypes "github.com/wormholelabs-xyz/rootsync/modules/rootledger/types"
)

// newTxCmd returns the root ledger transaction commands, all signed by the wallet.
func newTxCmd(app *appContext) *cobra.Command {
	txCmd := &cobra.Command{
		Use:   "tx",
		Short: "root ledger transaction subcommands",
	}

	txCmd.AddCommand(
		newMsgCmd(app, "transfer-ownership [new-owner]", "propose a new ledger owner", 1,
			func(signer common.Address, args []string) (rootledgertypes.Msg, error) {
				newOwner, err := parseAddress(args[0])
				if err != nil {
					return nil, err
				}
				return &rootledgertypes.MsgTransferOwnership{Signer: signer, NewOwner: newOwner}, nil
			}),
		newMsgCmd(app, "claim-ownership", "claim a pending ownership transfer, or cancel it as the owner", 0,
			func(signer common.Address, _ []string) (rootledgertypes.Msg, error) {
				return &rootledgertypes.MsgClaimOwnership{Signer: signer}, nil
			}),
		newMsgCmd(app, "set-root-expiry [seconds]", "set how long roots stay valid after their block time", 1,
			func(signer common.Address, args []string) (rootledgertypes.Msg, error) {
				expiry, err := strconv.ParseUint(args[0], 10, 64)
				if err != nil {
					return nil, err
				}
				return &rootledgertypes.MsgSetRootExpiry{Signer: signer, RootExpiry: expiry}, nil
			}),
		newMsgCmd(app, "set-allowed-update-staleness [seconds]", "set the maximum age of an attested block", 1,
			func(signer common.Address, args []string) (rootledgertypes.Msg, error) {
				staleness, err := strconv.ParseUint(args[0], 10, 64)
				if err != nil {
					return nil, err
				}
				return &rootledgertypes.MsgSetAllowedUpdateStaleness{Signer: signer, AllowedUpdateStaleness: staleness}, nil
			}),
		newMsgCmd(app, "update-root-expiry [root]", "recompute a root's expiry from the current config", 1,
			func(signer common.Address, args []string) (rootledgertypes.Msg, error) {
				return &rootledgertypes.MsgUpdateRootExpiry{
					Signer:           signer,
					RootHash:         common.HexToHash(args[0]),
					VerificationType: rootledgertypes.VerificationTypeQuery,
				}, nil
			}),
		newMsgCmd(app, "clean-up-root [root] [refund-recipient]", "delete an expired root", 2,
			func(signer common.Address, args []string) (rootledgertypes.Msg, error) {
				recipient, err := parseAddress(args[1])
				if err != nil {
					return nil, err
				}
				return &rootledgertypes.MsgCleanUpRoot{
					Signer:           signer,
					RootHash:         common.HexToHash(args[0]),
					VerificationType: rootledgertypes.VerificationTypeQuery,
					RefundRecipient:  recipient,
				}, nil
			}),
	)

	return txCmd
}

func newMsgCmd(app *appContext, use, short string, nargs int, build func(signer common.Address, args []string) (rootledgertypes.Msg, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(nargs),
		RunE: func(cmd *cobra.Command, args []string) error {
			signer, err := app.signer()
			if err != nil {
				return err
			}
			msg, err := build(signer, args)
			if err != nil {
				return err
			}

			l, err := app.openLedger()
			if err != nil {
				return err
			}
			if err := l.Execute(cmd.Context(), msg); err != nil {
				return err
			}

			app.logger.Info("transaction executed", "msg", cmd.Name(), "signer", signer)
			return nil
		},
	}
}

func parseAddress(s string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, errorsmod.Wrapf(coreerrors.ErrInvalidAddress, "%q", s)
	}
	return common.HexToAddress(s), nil
}
