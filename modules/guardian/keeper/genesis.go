package keeper

import (
	"context"
	"errors"

	"cosmossdk.io/collections"

	"github.com/wormholelabs-xyz/rootsync/modules/guardian/types"
)

// InitGenesis initializes the guardian registry from a genesis state.
func (k Keeper) InitGenesis(ctx context.Context, data *types.GenesisState) error {
	if err := data.Validate(); err != nil {
		return err
	}

	for _, set := range data.GuardianSets {
		if err := k.GuardianSets.Set(ctx, set.Index, set); err != nil {
			return err
		}
	}

	if len(data.GuardianSets) > 0 {
		return k.CurrentIndex.Set(ctx, data.CurrentIndex)
	}

	return nil
}

// ExportGenesis exports the guardian registry to a genesis state.
func (k Keeper) ExportGenesis(ctx context.Context) (*types.GenesisState, error) {
	var sets []types.GuardianSet
	if err := k.GuardianSets.Walk(ctx, nil, func(_ uint32, set types.GuardianSet) (bool, error) {
		sets = append(sets, set)
		return false, nil
	}); err != nil {
		return nil, err
	}

	index, err := k.CurrentIndex.Get(ctx)
	if err != nil && !errors.Is(err, collections.ErrNotFound) {
		return nil, err
	}

	return &types.GenesisState{
		GuardianSets: sets,
		CurrentIndex: index,
	}, nil
}
