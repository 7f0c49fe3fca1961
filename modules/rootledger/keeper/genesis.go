package keeper

import (
	"context"

	"cosmossdk.io/collections"

	"github.com/wormholelabs-xyz/rootsync/modules/rootledger/types"
)

// InitGenesis initializes the root ledger from a genesis state.
func (k Keeper) InitGenesis(ctx context.Context, data *types.GenesisState) error {
	if err := data.Validate(); err != nil {
		return err
	}

	if data.Config == nil {
		return nil
	}

	if err := k.Config.Set(ctx, *data.Config); err != nil {
		return err
	}

	for _, latest := range data.LatestRoots {
		if err := k.LatestRoots.Set(ctx, uint32(latest.VerificationType), latest); err != nil {
			return err
		}
	}

	for _, root := range data.Roots {
		if err := k.Roots.Set(ctx, rootKey(root.VerificationType, root.Hash), root); err != nil {
			return err
		}
	}

	return nil
}

// ExportGenesis exports the root ledger to a genesis state. Verification sessions are
// not exported.
func (k Keeper) ExportGenesis(ctx context.Context) (*types.GenesisState, error) {
	has, err := k.Config.Has(ctx)
	if err != nil {
		return nil, err
	}
	if !has {
		return types.DefaultGenesisState(), nil
	}

	config, err := k.Config.Get(ctx)
	if err != nil {
		return nil, err
	}

	var latestRoots []types.LatestRoot
	if err := k.LatestRoots.Walk(ctx, nil, func(_ uint32, latest types.LatestRoot) (bool, error) {
		latestRoots = append(latestRoots, latest)
		return false, nil
	}); err != nil {
		return nil, err
	}

	var roots []types.Root
	if err := k.Roots.Walk(ctx, nil, func(_ collections.Pair[uint32, []byte], root types.Root) (bool, error) {
		roots = append(roots, root)
		return false, nil
	}); err != nil {
		return nil, err
	}

	return &types.GenesisState{
		Config:      &config,
		LatestRoots: latestRoots,
		Roots:       roots,
	}, nil
}
