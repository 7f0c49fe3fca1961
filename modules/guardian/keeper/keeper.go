package keeper

import (
	"context"
	"time"

	"cosmossdk.io/collections"
	"cosmossdk.io/core/header"
	corestore "cosmossdk.io/core/store"
	errorsmod "cosmossdk.io/errors"
	"cosmossdk.io/log"

	"github.com/wormholelabs-xyz/rootsync/modules/core/codec"
	"github.com/wormholelabs-xyz/rootsync/modules/guardian/types"
)

// Keeper is the guardian registry. Sets are only written by the bridge collaborator
// (genesis and PublishGuardianSet); everything else reads.
type Keeper struct {
	headerService header.Service
	logger        log.Logger

	Schema collections.Schema
	// GuardianSets maps a guardian set index to the set
	GuardianSets collections.Map[uint32, types.GuardianSet]
	// CurrentIndex is the index of the newest guardian set
	CurrentIndex collections.Item[uint32]
}

// NewKeeper creates a new guardian registry Keeper instance
func NewKeeper(storeService corestore.KVStoreService, headerService header.Service, logger log.Logger) Keeper {
	sb := collections.NewSchemaBuilder(storeService)
	k := Keeper{
		headerService: headerService,
		logger:        logger.With("module", "x/"+types.ModuleName),
		GuardianSets:  collections.NewMap(sb, types.GuardianSetsKey, "guardian_sets", collections.Uint32Key, codec.RLPValue[types.GuardianSet]()),
		CurrentIndex:  collections.NewItem(sb, types.CurrentIndexKey, "current_index", codec.RLPValue[uint32]()),
	}

	schema, err := sb.Build()
	if err != nil {
		panic(err)
	}

	k.Schema = schema

	return k
}

// Logger returns a module-specific logger.
func (k Keeper) Logger() log.Logger {
	return k.logger
}

// GetGuardianSet returns the guardian set stored under index.
func (k Keeper) GetGuardianSet(ctx context.Context, index uint32) (types.GuardianSet, error) {
	set, err := k.GuardianSets.Get(ctx, index)
	if err != nil {
		if errorsmod.IsOf(err, collections.ErrNotFound) {
			return types.GuardianSet{}, errorsmod.Wrapf(types.ErrGuardianSetNotFound, "index %d", index)
		}
		return types.GuardianSet{}, err
	}
	return set, nil
}

// GetCurrentGuardianSetIndex returns the index of the newest guardian set.
func (k Keeper) GetCurrentGuardianSetIndex(ctx context.Context) (uint32, error) {
	index, err := k.CurrentIndex.Get(ctx)
	if err != nil {
		if errorsmod.IsOf(err, collections.ErrNotFound) {
			return 0, errorsmod.Wrap(types.ErrGuardianSetNotFound, "no guardian set has been published")
		}
		return 0, err
	}
	return index, nil
}

// GetCurrentGuardianSet returns the newest guardian set.
func (k Keeper) GetCurrentGuardianSet(ctx context.Context) (types.GuardianSet, error) {
	index, err := k.GetCurrentGuardianSetIndex(ctx)
	if err != nil {
		return types.GuardianSet{}, err
	}
	return k.GetGuardianSet(ctx, index)
}

// PublishGuardianSet stores set as the new current guardian set and expires the set it
// supersedes ttl after the current block time. The new index must be strictly greater
// than the current one.
func (k Keeper) PublishGuardianSet(ctx context.Context, set types.GuardianSet, ttl time.Duration) error {
	if err := set.Validate(); err != nil {
		return err
	}
	if set.ExpirationTime != 0 {
		return errorsmod.Wrapf(types.ErrInvalidGuardianSet, "new guardian set %d cannot carry an expiration time", set.Index)
	}

	hasCurrent, err := k.CurrentIndex.Has(ctx)
	if err != nil {
		return err
	}

	now := k.headerService.GetHeaderInfo(ctx).Time
	if hasCurrent {
		previous, err := k.GetCurrentGuardianSet(ctx)
		if err != nil {
			return err
		}
		if set.Index <= previous.Index {
			return errorsmod.Wrapf(types.ErrInvalidGuardianSetIndex, "new index %d must be greater than current index %d", set.Index, previous.Index)
		}
		if previous.ExpirationTime != 0 {
			return errorsmod.Wrapf(types.ErrGuardianSetAlreadyExpired, "guardian set %d", previous.Index)
		}

		previous.ExpirationTime = uint32(now.Add(ttl).Unix())
		if err := k.GuardianSets.Set(ctx, previous.Index, previous); err != nil {
			return err
		}
	}

	if set.CreationTime == 0 {
		set.CreationTime = uint32(now.Unix())
	}
	if err := k.GuardianSets.Set(ctx, set.Index, set); err != nil {
		return err
	}
	if err := k.CurrentIndex.Set(ctx, set.Index); err != nil {
		return err
	}

	k.Logger().Info("guardian set published", "index", set.Index, "guardians", len(set.Keys))

	return nil
}
