package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/spf13/cobra"

	errorsmod "cosmossdk.io/errors"

	"github.com/wormholelabs-xyz/rootsync/modules/core/ledger"
	guardiantypes "github.com/wormholelabs-xyz/rootsync/modules/guardian/types"
	rootledgertypes "github.com/wormholelabs-xyz/rootsync/modules/rootledger/types"
	"github.com/wormholelabs-xyz/rootsync/relayer"
	"github.com/wormholelabs-xyz/rootsync/relayer/config"
)

const (
	flagGenesis                = "genesis"
	flagGuardians              = "guardians"
	flagGuardianSetIndex       = "guardian-set-index"
	flagRootExpiry             = "root-expiry"
	flagAllowedUpdateStaleness = "allowed-update-staleness"
)

// newInitCmd defines the command to create a ledger from a genesis file or from flags.
func newInitCmd(app *appContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "initialize the root ledger",
		Long: `initialize the root ledger, owned by the wallet, and publish its guardian set.
Either load a full genesis file with --genesis, or give the guardian addresses with --guardians.
On localnet the mock guardian keys are used when no guardians are given.`,
		Example: "rootsyncd init --network testnet --wallet key.hex --guardians 0x58CC...,0xfF6C... --guardian-set-index 4",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			l, err := app.openLedger()
			if err != nil {
				return err
			}

			genesisPath, _ := cmd.Flags().GetString(flagGenesis)
			if genesisPath != "" {
				bz, err := os.ReadFile(genesisPath)
				if err != nil {
					return err
				}
				var gs ledger.GenesisState
				if err := json.Unmarshal(bz, &gs); err != nil {
					return fmt.Errorf("error unmarshalling genesis file: %w", err)
				}
				return l.InitGenesis(cmd.Context(), &gs)
			}

			owner, err := app.signer()
			if err != nil {
				return err
			}
			set, err := guardianSetFromFlags(cmd, app.cfg)
			if err != nil {
				return err
			}
			rootExpiry, _ := cmd.Flags().GetUint64(flagRootExpiry)
			staleness, _ := cmd.Flags().GetUint64(flagAllowedUpdateStaleness)

			if err := l.PublishGuardianSet(cmd.Context(), set, 0); err != nil {
				return err
			}
			if err := l.Execute(cmd.Context(), &rootledgertypes.MsgInitialize{
				Signer:                 owner,
				RootExpiry:             rootExpiry,
				AllowedUpdateStaleness: staleness,
			}); err != nil {
				return err
			}

			app.logger.Info("ledger initialized", "owner", owner, "guardian_set", set.Index, "guardians", len(set.Keys))
			return nil
		},
	}

	cmd.Flags().String(flagGenesis, "", "path of a JSON genesis file")
	cmd.Flags().StringSlice(flagGuardians, nil, "guardian addresses in index order")
	cmd.Flags().Uint32(flagGuardianSetIndex, 0, "index of the guardian set")
	cmd.Flags().Uint64(flagRootExpiry, rootledgertypes.DefaultRootExpiry, "seconds a root stays valid after its block time")
	cmd.Flags().Uint64(flagAllowedUpdateStaleness, rootledgertypes.DefaultAllowedUpdateStaleness, "maximum age in seconds of an attested block")

	return cmd
}

func guardianSetFromFlags(cmd *cobra.Command, cfg config.Config) (guardiantypes.GuardianSet, error) {
	addrs, _ := cmd.Flags().GetStringSlice(flagGuardians)
	index, _ := cmd.Flags().GetUint32(flagGuardianSetIndex)

	var keys []common.Address
	for _, addr := range addrs {
		if !common.IsHexAddress(addr) {
			return guardiantypes.GuardianSet{}, errorsmod.Wrapf(guardiantypes.ErrInvalidGuardianSet, "invalid guardian address %q", addr)
		}
		keys = append(keys, common.HexToAddress(addr))
	}

	if len(keys) == 0 {
		if !cfg.Mock {
			return guardiantypes.GuardianSet{}, errorsmod.Wrapf(relayer.ErrInvalidConfig, "--%s is required without mock guardians", flagGuardians)
		}
		for _, hexKey := range cfg.MockGuardianKeys {
			key, err := crypto.HexToECDSA(hexKey)
			if err != nil {
				return guardiantypes.GuardianSet{}, errorsmod.Wrapf(relayer.ErrInvalidConfig, "mock guardian key: %v", err)
			}
			keys = append(keys, crypto.PubkeyToAddress(key.PublicKey))
		}
		if !cmd.Flags().Changed(flagGuardianSetIndex) && cfg.GuardianSetIndex != nil {
			index = *cfg.GuardianSetIndex
		}
	}

	set := guardiantypes.NewGuardianSet(index, keys, 0)
	return set, set.Validate()
}
