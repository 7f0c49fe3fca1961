package cmd

import (
	"crypto/ecdsa"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	errorsmod "cosmossdk.io/errors"

	"github.com/wormholelabs-xyz/rootsync/relayer"
	"github.com/wormholelabs-xyz/rootsync/relayer/attestation"
	"github.com/wormholelabs-xyz/rootsync/relayer/source"
)

// newDriver wires the driver for the configured network. The attestation source is
// resolved here, once.
func (a *appContext) newDriver(cmd *cobra.Command, withSource bool) (*relayer.Driver, error) {
	l, err := a.openLedger()
	if err != nil {
		return nil, err
	}
	submitter, err := a.signer()
	if err != nil {
		return nil, err
	}

	var (
		src      relayer.SourceChain
		attester relayer.AttestationSource
	)
	if withSource {
		if err := a.cfg.ValidateSync(); err != nil {
			return nil, err
		}

		client, err := a.dialSource(cmd.Context())
		if err != nil {
			return nil, err
		}
		src = source.NewEthereumSource(client, a.cfg.Shape().Contract)

		if a.cfg.Mock {
			keys := make([]*ecdsa.PrivateKey, len(a.cfg.MockGuardianKeys))
			for i, hexKey := range a.cfg.MockGuardianKeys {
				if keys[i], err = crypto.HexToECDSA(hexKey); err != nil {
					return nil, errorsmod.Wrapf(relayer.ErrInvalidConfig, "mock guardian key %d: %v", i, err)
				}
			}
			attester = attestation.NewMock(map[uint16]source.EthClient{a.cfg.ChainID: client}, keys)
		} else {
			attester = attestation.NewLive(a.cfg.QueryURL, a.cfg.QueryAPIKey, a.cfg.QueryTimeout)
		}
	}

	driver := relayer.NewDriver(src, attester, l, relayer.SystemClock{}, l.RootKeeper.ExpectedShape(), submitter, a.logger)
	if a.cfg.GuardianSetIndex != nil {
		driver.PinGuardianSet(*a.cfg.GuardianSetIndex)
	}
	return driver, nil
}

func (a *appContext) syncLoop() relayer.LoopOptions {
	return relayer.LoopOptions{Name: "sync", Interval: a.cfg.Sleep, AlertAfterRetries: a.cfg.AlertAfterRetries}
}

func (a *appContext) cleanupLoop() relayer.LoopOptions {
	return relayer.LoopOptions{Name: "cleanup", Interval: a.cfg.Cleanup, AlertAfterRetries: a.cfg.AlertAfterRetries}
}

// newSyncCmd defines the command running the sync loop.
func newSyncCmd(app *appContext) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "sync the latest source root into the ledger",
		Long:  "sync the latest source root into the ledger, every SLEEP seconds or once when SLEEP is 0",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			driver, err := app.newDriver(cmd, true)
			if err != nil {
				return err
			}
			return relayer.Run(cmd.Context(), relayer.SystemClock{}, app.syncLoop(), app.logger, driver.SyncStep)
		},
	}
}

// newCleanupCmd defines the command running the cleanup loop.
func newCleanupCmd(app *appContext) *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup",
		Short: "clean up expired roots",
		Long:  "clean up expired roots other than the latest, every CLEANUP seconds or once when CLEANUP is 0",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			driver, err := app.newDriver(cmd, false)
			if err != nil {
				return err
			}
			return relayer.Run(cmd.Context(), relayer.SystemClock{}, app.cleanupLoop(), app.logger, driver.CleanupStep)
		},
	}
}

// newRunCmd defines the command running the sync loop and, when CLEANUP is set, the
// cleanup loop next to it.
func newRunCmd(app *appContext) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "run the sync and cleanup loops",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			driver, err := app.newDriver(cmd, true)
			if err != nil {
				return err
			}

			g, ctx := errgroup.WithContext(cmd.Context())
			g.Go(func() error {
				return relayer.Run(ctx, relayer.SystemClock{}, app.syncLoop(), app.logger, driver.SyncStep)
			})
			if app.cfg.Cleanup > 0 {
				g.Go(func() error {
					return relayer.Run(ctx, relayer.SystemClock{}, app.cleanupLoop(), app.logger, driver.CleanupStep)
				})
			}
			return g.Wait()
		},
	}
}
