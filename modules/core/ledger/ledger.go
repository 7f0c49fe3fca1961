// Package ledger hosts the guardian registry and the root ledger on a single database and
// executes messages against them one at a time. Every message runs in a cache branch of
// the store that is written back only when the message succeeds.
package ledger

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/hashicorp/go-metrics"

	"cosmossdk.io/collections"
	"cosmossdk.io/core/header"
	errorsmod "cosmossdk.io/errors"
	"cosmossdk.io/log"
	"cosmossdk.io/store/cachekv"
	"cosmossdk.io/store/dbadapter"
	storetypes "cosmossdk.io/store/types"

	dbm "github.com/cosmos/cosmos-db"

	"github.com/wormholelabs-xyz/rootsync/modules/core/codec"
	coreerrors "github.com/wormholelabs-xyz/rootsync/modules/core/errors"
	coremetrics "github.com/wormholelabs-xyz/rootsync/modules/core/metrics"
	corestore "github.com/wormholelabs-xyz/rootsync/modules/core/store"
	guardiankeeper "github.com/wormholelabs-xyz/rootsync/modules/guardian/keeper"
	guardiantypes "github.com/wormholelabs-xyz/rootsync/modules/guardian/types"
	querytypes "github.com/wormholelabs-xyz/rootsync/modules/query/types"
	rootledgerkeeper "github.com/wormholelabs-xyz/rootsync/modules/rootledger/keeper"
	rootledgertypes "github.com/wormholelabs-xyz/rootsync/modules/rootledger/types"
)

const moduleName = "ledger"

// Clock supplies the time recorded in the header of each execution.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// Ledger is the single writer of the guardian registry and the root ledger.
type Ledger struct {
	mtx    sync.Mutex
	db     dbm.DB
	store  storetypes.KVStore
	clock  Clock
	logger log.Logger

	height collections.Item[uint64]

	GuardianKeeper guardiankeeper.Keeper
	RootKeeper     rootledgerkeeper.Keeper
}

// New opens a ledger over db. Roots are only admitted from queries matching shape.
func New(db dbm.DB, shape querytypes.ExpectedShape, clock Clock, logger log.Logger) *Ledger {
	headerService := corestore.NewHeaderService()

	guardianKeeper := guardiankeeper.NewKeeper(
		corestore.NewKVStoreService(guardiantypes.ModuleName), headerService, logger,
	)
	rootKeeper := rootledgerkeeper.NewKeeper(
		corestore.NewKVStoreService(rootledgertypes.ModuleName), headerService,
		guardianKeeper, shape, logger,
	)

	sb := collections.NewSchemaBuilder(corestore.NewKVStoreService(moduleName))
	height := collections.NewItem(sb, collections.NewPrefix(0), "height", codec.RLPValue[uint64]())
	if _, err := sb.Build(); err != nil {
		panic(err)
	}

	return &Ledger{
		db:             db,
		store:          dbadapter.Store{DB: db},
		clock:          clock,
		logger:         logger.With("module", moduleName),
		height:         height,
		GuardianKeeper: guardianKeeper,
		RootKeeper:     rootKeeper,
	}
}

// SetProofVerifier wires the Groth16 verifier of the root ledger.
func (l *Ledger) SetProofVerifier(verifier rootledgertypes.ProofVerifier) {
	l.mtx.Lock()
	defer l.mtx.Unlock()
	l.RootKeeper.SetProofVerifier(verifier)
}

// Now returns the time of the ledger clock.
func (l *Ledger) Now() time.Time {
	return l.clock.Now()
}

// batchStore reads from the database and stages every write in batch.
type batchStore struct {
	dbadapter.Store
	batch dbm.Batch
}

func (s batchStore) Set(key, value []byte) {
	storetypes.AssertValidKey(key)
	storetypes.AssertValidValue(value)
	if err := s.batch.Set(key, value); err != nil {
		panic(err)
	}
}

func (s batchStore) Delete(key []byte) {
	storetypes.AssertValidKey(key)
	if err := s.batch.Delete(key); err != nil {
		panic(err)
	}
}

// Update runs fn in a fresh branch at the next height and commits the branch if fn
// returns nil. A commit is a single database batch. Updates are serialized.
func (l *Ledger) Update(ctx context.Context, fn func(ctx context.Context) error) error {
	l.mtx.Lock()
	defer l.mtx.Unlock()

	batch := l.db.NewBatch()
	defer batch.Close()

	branch := cachekv.NewStore(batchStore{Store: dbadapter.Store{DB: l.db}, batch: batch})
	ctx = corestore.WithKVStore(ctx, branch)

	height, err := l.height.Get(ctx)
	if err != nil && !errorsmod.IsOf(err, collections.ErrNotFound) {
		return err
	}
	height++

	ctx = corestore.WithHeaderInfo(ctx, header.Info{
		Height:  int64(height),
		Time:    l.clock.Now(),
		ChainID: moduleName,
	})

	if err := fn(ctx); err != nil {
		return err
	}
	if err := l.height.Set(ctx, height); err != nil {
		return err
	}

	branch.Write()
	if err := batch.WriteSync(); err != nil {
		return errorsmod.Wrapf(coreerrors.ErrLogic, "commit height %d: %v", height, err)
	}
	return nil
}

// View runs fn against a branch that is always discarded.
func (l *Ledger) View(ctx context.Context, fn func(ctx context.Context) error) error {
	l.mtx.Lock()
	defer l.mtx.Unlock()

	ctx = corestore.WithKVStore(ctx, cachekv.NewStore(l.store))
	ctx = corestore.WithHeaderInfo(ctx, header.Info{Time: l.clock.Now(), ChainID: moduleName})
	return fn(ctx)
}

// Height returns the number of committed updates.
func (l *Ledger) Height(ctx context.Context) (uint64, error) {
	var height uint64
	err := l.View(ctx, func(ctx context.Context) error {
		var err error
		height, err = l.height.Get(ctx)
		if errorsmod.IsOf(err, collections.ErrNotFound) {
			return nil
		}
		return err
	})
	return height, err
}

// Execute runs a root ledger message atomically.
func (l *Ledger) Execute(ctx context.Context, msg rootledgertypes.Msg) error {
	msgType := fmt.Sprintf("%T", msg)
	err := l.Update(ctx, func(ctx context.Context) error {
		return l.dispatch(ctx, msg)
	})

	outcome := "success"
	if err != nil {
		outcome = "failure"
		l.logger.Debug("message rejected", "msg_type", msgType, "signer", msg.GetSigner(), "error", err)
	}
	metrics.IncrCounterWithLabels(
		[]string{moduleName, "msg", "executed"},
		1,
		[]metrics.Label{
			{Name: coremetrics.LabelMsgType, Value: msgType},
			{Name: coremetrics.LabelOutcome, Value: outcome},
		},
	)
	return err
}

func (l *Ledger) dispatch(ctx context.Context, msg rootledgertypes.Msg) error {
	k := l.RootKeeper
	switch msg := msg.(type) {
	case *rootledgertypes.MsgInitialize:
		return k.Initialize(ctx, msg)
	case *rootledgertypes.MsgVerifySignatures:
		return k.VerifySignatures(ctx, msg)
	case *rootledgertypes.MsgUpdateRootWithQuery:
		return k.UpdateRootWithQuery(ctx, msg)
	case *rootledgertypes.MsgUpdateRootExpiry:
		return k.UpdateRootExpiry(ctx, msg)
	case *rootledgertypes.MsgCleanUpRoot:
		return k.CleanUpRoot(ctx, msg)
	case *rootledgertypes.MsgCloseSignatures:
		return k.CloseSignatures(ctx, msg)
	case *rootledgertypes.MsgTransferOwnership:
		return k.TransferOwnership(ctx, msg)
	case *rootledgertypes.MsgClaimOwnership:
		return k.ClaimOwnership(ctx, msg)
	case *rootledgertypes.MsgSetRootExpiry:
		return k.SetRootExpiry(ctx, msg)
	case *rootledgertypes.MsgSetAllowedUpdateStaleness:
		return k.SetAllowedUpdateStaleness(ctx, msg)
	default:
		return errorsmod.Wrapf(coreerrors.ErrInvalidType, "unrecognized message type %T", msg)
	}
}

// PublishGuardianSet makes set the current guardian set. The previous set stays valid
// for ttl.
func (l *Ledger) PublishGuardianSet(ctx context.Context, set guardiantypes.GuardianSet, ttl time.Duration) error {
	return l.Update(ctx, func(ctx context.Context) error {
		return l.GuardianKeeper.PublishGuardianSet(ctx, set, ttl)
	})
}

// InitGenesis loads genesis into an empty ledger.
func (l *Ledger) InitGenesis(ctx context.Context, gs *GenesisState) error {
	if gs.Guardian == nil {
		gs.Guardian = guardiantypes.DefaultGenesisState()
	}
	if gs.RootLedger == nil {
		gs.RootLedger = rootledgertypes.DefaultGenesisState()
	}
	if err := gs.Validate(); err != nil {
		return err
	}
	return l.Update(ctx, func(ctx context.Context) error {
		height, err := l.height.Get(ctx)
		if err != nil && !errorsmod.IsOf(err, collections.ErrNotFound) {
			return err
		}
		if height > 0 {
			return errorsmod.Wrapf(rootledgertypes.ErrAlreadyInitialized, "ledger is at height %d", height)
		}
		if err := l.GuardianKeeper.InitGenesis(ctx, gs.Guardian); err != nil {
			return err
		}
		return l.RootKeeper.InitGenesis(ctx, gs.RootLedger)
	})
}

// ExportGenesis exports the guardian registry and the root ledger.
func (l *Ledger) ExportGenesis(ctx context.Context) (*GenesisState, error) {
	gs := &GenesisState{}
	err := l.View(ctx, func(ctx context.Context) error {
		var err error
		if gs.Guardian, err = l.GuardianKeeper.ExportGenesis(ctx); err != nil {
			return err
		}
		gs.RootLedger, err = l.RootKeeper.ExportGenesis(ctx)
		return err
	})
	return gs, err
}

// Config returns the root ledger config.
func (l *Ledger) Config(ctx context.Context) (rootledgertypes.Config, error) {
	var config rootledgertypes.Config
	err := l.View(ctx, func(ctx context.Context) error {
		var err error
		config, err = l.RootKeeper.GetConfig(ctx)
		return err
	})
	return config, err
}

// LatestRoot returns the newest root of vt.
func (l *Ledger) LatestRoot(ctx context.Context, vt rootledgertypes.VerificationType) (rootledgertypes.LatestRoot, error) {
	var latest rootledgertypes.LatestRoot
	err := l.View(ctx, func(ctx context.Context) error {
		var err error
		latest, err = l.RootKeeper.GetLatestRoot(ctx, vt)
		return err
	})
	return latest, err
}

// Roots returns every stored root of vt.
func (l *Ledger) Roots(ctx context.Context, vt rootledgertypes.VerificationType) ([]rootledgertypes.Root, error) {
	var roots []rootledgertypes.Root
	err := l.View(ctx, func(ctx context.Context) error {
		var err error
		roots, err = l.RootKeeper.GetAllRoots(ctx, vt)
		return err
	})
	return roots, err
}

// VerifyRoot reports whether hash is a root proofs may currently be anchored at.
func (l *Ledger) VerifyRoot(ctx context.Context, vt rootledgertypes.VerificationType, hash common.Hash) error {
	return l.View(ctx, func(ctx context.Context) error {
		return l.RootKeeper.VerifyRoot(ctx, vt, hash)
	})
}

// VerifyGroth16Proof verifies a membership proof against the stored roots.
func (l *Ledger) VerifyGroth16Proof(ctx context.Context, msg *rootledgertypes.MsgVerifyGroth16Proof) error {
	return l.View(ctx, func(ctx context.Context) error {
		return l.RootKeeper.VerifyGroth16Proof(ctx, msg)
	})
}

// GuardianSet returns the guardian set at index.
func (l *Ledger) GuardianSet(ctx context.Context, index uint32) (guardiantypes.GuardianSet, error) {
	var set guardiantypes.GuardianSet
	err := l.View(ctx, func(ctx context.Context) error {
		var err error
		set, err = l.GuardianKeeper.GetGuardianSet(ctx, index)
		return err
	})
	return set, err
}

// CurrentGuardianSet returns the most recently published guardian set.
func (l *Ledger) CurrentGuardianSet(ctx context.Context) (guardiantypes.GuardianSet, error) {
	var set guardiantypes.GuardianSet
	err := l.View(ctx, func(ctx context.Context) error {
		var err error
		set, err = l.GuardianKeeper.GetCurrentGuardianSet(ctx)
		return err
	})
	return set, err
}
