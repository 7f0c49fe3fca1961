package rootsynctesting

import (
	"context"
	"testing"
	"time"

	dbm "github.com/cosmos/cosmos-db"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"cosmossdk.io/log"

	"github.com/wormholelabs-xyz/rootsync/modules/core/ledger"
	querytypes "github.com/wormholelabs-xyz/rootsync/modules/query/types"
	rootledgertypes "github.com/wormholelabs-xyz/rootsync/modules/rootledger/types"
)

// GenesisTime is the time fake clocks start at.
var GenesisTime = time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)

// Ledger is an in-memory ledger with a published guardian set and an initialized root
// ledger owned by Owner.
type Ledger struct {
	*ledger.Ledger

	TB        testing.TB
	Clock     *FakeClock
	Guardians *Guardians
	SetIndex  uint32
	Owner     common.Address
}

// NewLedger returns a ledger over a memdb with guardians published as set setIndex.
func NewLedger(tb testing.TB, guardians *Guardians, setIndex uint32) *Ledger {
	tb.Helper()

	clock := NewFakeClock(GenesisTime)
	l := &Ledger{
		Ledger:    ledger.New(dbm.NewMemDB(), LatestRootShape, clock, log.NewNopLogger()),
		TB:        tb,
		Clock:     clock,
		Guardians: guardians,
		SetIndex:  setIndex,
		Owner:     common.HexToAddress("0x0000000000000000000000000000000000000a11"),
	}

	ctx := context.Background()
	require.NoError(tb, l.PublishGuardianSet(ctx, guardians.GuardianSet(setIndex), 24*time.Hour))
	require.NoError(tb, l.Execute(ctx, &rootledgertypes.MsgInitialize{
		Signer:                 l.Owner,
		RootExpiry:             rootledgertypes.DefaultRootExpiry,
		AllowedUpdateStaleness: rootledgertypes.DefaultAllowedUpdateStaleness,
	}))
	return l
}

// SessionID returns a session id unique to seed.
func SessionID(seed string) common.Hash {
	return HashOf("session/" + seed)
}

// VerifyProof submits every sig verify record of proof into sessionID.
func (l *Ledger) VerifyProof(signer common.Address, sessionID common.Hash, proof querytypes.QuorumProof, responseBz []byte) error {
	l.TB.Helper()

	set, err := l.GuardianSet(context.Background(), proof.GuardianSetIndex)
	require.NoError(l.TB, err)

	msgs, err := rootledgertypes.NewVerifySignaturesMsgs(signer, sessionID, proof, set.Keys, responseBz)
	if err != nil {
		return err
	}
	for _, msg := range msgs {
		if err := l.Execute(context.Background(), msg); err != nil {
			return err
		}
	}
	return nil
}

// Admit signs resp with a quorum of guardians and submits it, returning the first error.
func (l *Ledger) Admit(signer common.Address, resp LatestRootResponse) error {
	l.TB.Helper()

	bz := resp.Marshal(l.TB)
	proof := l.Guardians.Proof(l.TB, l.SetIndex, bz, Indices(len(l.Guardians.Keys))...)
	sessionID := SessionID(resp.Root.Hex())

	if err := l.VerifyProof(signer, sessionID, proof, bz); err != nil {
		return err
	}
	return l.Execute(context.Background(), &rootledgertypes.MsgUpdateRootWithQuery{
		Signer:    signer,
		Bytes:     bz,
		RootHash:  resp.Root,
		SessionID: sessionID,
	})
}
