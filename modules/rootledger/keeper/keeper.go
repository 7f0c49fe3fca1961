package keeper

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"cosmossdk.io/collections"
	"cosmossdk.io/core/header"
	corestore "cosmossdk.io/core/store"
	errorsmod "cosmossdk.io/errors"
	"cosmossdk.io/log"

	"github.com/wormholelabs-xyz/rootsync/modules/core/codec"
	querytypes "github.com/wormholelabs-xyz/rootsync/modules/query/types"
	"github.com/wormholelabs-xyz/rootsync/modules/quorum"
	"github.com/wormholelabs-xyz/rootsync/modules/rootledger/types"
)

// Keeper is the root ledger state machine.
type Keeper struct {
	headerService  header.Service
	guardianKeeper types.GuardianKeeper
	proofVerifier  types.ProofVerifier
	logger         log.Logger

	// expectedShape is the only query a root may be admitted from
	expectedShape querytypes.ExpectedShape

	// state management
	Schema collections.Schema
	Config collections.Item[types.Config]
	// LatestRoots maps a verification type to its newest root
	LatestRoots collections.Map[uint32, types.LatestRoot]
	// Roots is a map of (VerificationType, RootHash) to the admitted Root
	Roots collections.Map[collections.Pair[uint32, []byte], types.Root]
	// Sessions holds signature verification sessions by caller chosen id
	Sessions collections.Map[[]byte, quorum.Session]
}

// NewKeeper creates a new root ledger Keeper instance. It panics if expectedShape is invalid.
func NewKeeper(
	storeService corestore.KVStoreService, headerService header.Service,
	guardianKeeper types.GuardianKeeper, expectedShape querytypes.ExpectedShape,
	logger log.Logger,
) Keeper {
	if err := expectedShape.Validate(); err != nil {
		panic(err)
	}

	sb := collections.NewSchemaBuilder(storeService)
	k := Keeper{
		headerService:  headerService,
		guardianKeeper: guardianKeeper,
		logger:         logger.With("module", "x/"+types.ModuleName),
		expectedShape:  expectedShape,
		Config:         collections.NewItem(sb, types.ConfigKey, "config", codec.RLPValue[types.Config]()),
		LatestRoots:    collections.NewMap(sb, types.LatestRootsKey, "latest_roots", collections.Uint32Key, codec.RLPValue[types.LatestRoot]()),
		Roots:          collections.NewMap(sb, types.RootsKey, "roots", collections.PairKeyCodec(collections.Uint32Key, collections.BytesKey), codec.RLPValue[types.Root]()),
		Sessions:       collections.NewMap(sb, types.SessionsKey, "sessions", collections.BytesKey, codec.RLPValue[quorum.Session]()),
	}

	schema, err := sb.Build()
	if err != nil {
		panic(err)
	}

	k.Schema = schema

	return k
}

// SetProofVerifier wires the Groth16 verifier used by VerifyGroth16Proof.
func (k *Keeper) SetProofVerifier(verifier types.ProofVerifier) {
	k.proofVerifier = verifier
}

// Logger returns a module-specific logger.
func (k Keeper) Logger() log.Logger {
	return k.logger
}

// ExpectedShape returns the query shape roots are admitted from.
func (k Keeper) ExpectedShape() querytypes.ExpectedShape {
	return k.expectedShape
}

func (k Keeper) now(ctx context.Context) time.Time {
	return k.headerService.GetHeaderInfo(ctx).Time
}

func rootKey(vt types.VerificationType, hash common.Hash) collections.Pair[uint32, []byte] {
	return collections.Join(uint32(vt), hash.Bytes())
}

// GetConfig returns the ledger config.
func (k Keeper) GetConfig(ctx context.Context) (types.Config, error) {
	config, err := k.Config.Get(ctx)
	if err != nil {
		if errorsmod.IsOf(err, collections.ErrNotFound) {
			return types.Config{}, errorsmod.Wrap(types.ErrNotInitialized, "config not found")
		}
		return types.Config{}, err
	}
	return config, nil
}

// GetLatestRoot returns the newest root of a verification type.
func (k Keeper) GetLatestRoot(ctx context.Context, vt types.VerificationType) (types.LatestRoot, error) {
	latest, err := k.LatestRoots.Get(ctx, uint32(vt))
	if err != nil {
		if errorsmod.IsOf(err, collections.ErrNotFound) {
			return types.LatestRoot{}, errorsmod.Wrapf(types.ErrNotInitialized, "no latest root for verification type %s", vt)
		}
		return types.LatestRoot{}, err
	}
	return latest, nil
}

// GetRoot returns the root record of hash.
func (k Keeper) GetRoot(ctx context.Context, vt types.VerificationType, hash common.Hash) (types.Root, error) {
	root, err := k.Roots.Get(ctx, rootKey(vt, hash))
	if err != nil {
		if errorsmod.IsOf(err, collections.ErrNotFound) {
			return types.Root{}, errorsmod.Wrapf(types.ErrRootNotFound, "root %s of verification type %s", hash, vt)
		}
		return types.Root{}, err
	}
	return root, nil
}

// GetAllRoots returns every root record of a verification type.
func (k Keeper) GetAllRoots(ctx context.Context, vt types.VerificationType) ([]types.Root, error) {
	var roots []types.Root
	ranger := collections.NewPrefixedPairRange[uint32, []byte](uint32(vt))
	if err := k.Roots.Walk(ctx, ranger, func(_ collections.Pair[uint32, []byte], root types.Root) (bool, error) {
		roots = append(roots, root)
		return false, nil
	}); err != nil {
		return nil, err
	}
	return roots, nil
}

// GetSession returns the verification session id.
func (k Keeper) GetSession(ctx context.Context, id common.Hash) (quorum.Session, error) {
	session, err := k.Sessions.Get(ctx, id.Bytes())
	if err != nil {
		if errorsmod.IsOf(err, collections.ErrNotFound) {
			return quorum.Session{}, errorsmod.Wrapf(types.ErrSessionNotFound, "session %s", id)
		}
		return quorum.Session{}, err
	}
	return session, nil
}
