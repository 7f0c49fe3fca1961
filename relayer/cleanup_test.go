package relayer_test

import (
	"context"
	"time"

	dbm "github.com/cosmos/cosmos-db"
	"github.com/ethereum/go-ethereum/common"

	errorsmod "cosmossdk.io/errors"
	"cosmossdk.io/log"

	coreerrors "github.com/wormholelabs-xyz/rootsync/modules/core/errors"
	"github.com/wormholelabs-xyz/rootsync/modules/core/ledger"
	rootledgertypes "github.com/wormholelabs-xyz/rootsync/modules/rootledger/types"
	"github.com/wormholelabs-xyz/rootsync/relayer"
	rootsynctesting "github.com/wormholelabs-xyz/rootsync/testing"
)

var stranger = common.HexToAddress("0x000000000000000000000000000000000000bad0")

// failingLedger fails every cleanup of the root at failHash.
type failingLedger struct {
	*rootsynctesting.Ledger

	failHash common.Hash
}

func (l *failingLedger) Execute(ctx context.Context, msg rootledgertypes.Msg) error {
	if cleanup, ok := msg.(*rootledgertypes.MsgCleanUpRoot); ok && cleanup.RootHash == l.failHash {
		return errorsmod.Wrap(coreerrors.ErrTransport, "connection reset")
	}
	return l.Ledger.Execute(ctx, msg)
}

// admitRoots admits two roots, expires them and admits two more. The first root of each
// pair is submitted by a stranger.
func (s *DriverTestSuite) admitRoots() []common.Hash {
	var hashes []common.Hash
	for i, seed := range []string{"a", "b", "c", "d"} {
		if i == 2 {
			s.ledger.Clock.Advance(25 * time.Hour)
		}

		signer := submitter
		if i%2 == 0 {
			signer = stranger
		}

		root := rootsynctesting.HashOf(seed)
		resp := rootsynctesting.NewLatestRootResponse(root, 100+uint64(i), s.ledger.Clock.Now())
		s.Require().NoError(s.ledger.Admit(signer, resp))
		hashes = append(hashes, root)
	}
	return hashes
}

func (s *DriverTestSuite) TestCleanUpOnce() {
	hashes := s.admitRoots()

	report, err := s.driver.CleanUpOnce(s.ctx)
	s.Require().NoError(err)
	s.Require().Equal(relayer.CleanupReport{Scanned: 4, Cleaned: 2, Skipped: 2}, report)

	roots, err := s.ledger.Roots(s.ctx, rootledgertypes.VerificationTypeQuery)
	s.Require().NoError(err)
	s.Require().Len(roots, 2)
	for _, root := range roots {
		s.Require().Contains(hashes[2:], root.Hash)
	}

	// a second sweep finds nothing left to clean
	report, err = s.driver.CleanUpOnce(s.ctx)
	s.Require().NoError(err)
	s.Require().Equal(relayer.CleanupReport{Scanned: 2, Skipped: 2}, report)
}

func (s *DriverTestSuite) TestCleanUpOnceKeepsLatestRoot() {
	hashes := s.admitRoots()

	// every root has expired, the latest one is still kept
	s.ledger.Clock.Advance(25 * time.Hour)

	report, err := s.driver.CleanUpOnce(s.ctx)
	s.Require().NoError(err)
	s.Require().Equal(relayer.CleanupReport{Scanned: 4, Cleaned: 3, Skipped: 1}, report)

	s.Require().Equal(hashes[3], s.latestRoot().Root)
	s.Require().NoError(s.ledger.VerifyRoot(s.ctx, rootledgertypes.VerificationTypeQuery, hashes[3]))
}

func (s *DriverTestSuite) TestCleanUpOnceContinuesPastFailures() {
	hashes := s.admitRoots()

	failing := &failingLedger{Ledger: s.ledger, failHash: hashes[0]}
	driver := relayer.NewDriver(s.source, s.attester, failing, s.ledger.Clock, rootsynctesting.LatestRootShape, submitter, log.NewNopLogger())

	report, err := driver.CleanUpOnce(s.ctx)
	s.Require().ErrorIs(err, coreerrors.ErrTransport)
	s.Require().Contains(err.Error(), hashes[0].Hex())
	s.Require().Equal(relayer.CleanupReport{Scanned: 4, Cleaned: 1, Skipped: 2, Failed: 1}, report)

	// the failed root is still stored, only expired
	s.Require().ErrorIs(s.ledger.VerifyRoot(s.ctx, rootledgertypes.VerificationTypeQuery, hashes[0]), rootledgertypes.ErrRootExpired)
	s.Require().ErrorIs(s.ledger.VerifyRoot(s.ctx, rootledgertypes.VerificationTypeQuery, hashes[1]), rootledgertypes.ErrRootNotFound)
}

func (s *DriverTestSuite) TestCleanUpOnceNotInitialized() {
	clock := rootsynctesting.NewFakeClock(rootsynctesting.GenesisTime)
	empty := ledger.New(dbm.NewMemDB(), rootsynctesting.LatestRootShape, clock, log.NewNopLogger())

	driver := relayer.NewDriver(s.source, s.attester, empty, clock, rootsynctesting.LatestRootShape, submitter, log.NewNopLogger())
	_, err := driver.CleanUpOnce(s.ctx)
	s.Require().ErrorIs(err, rootledgertypes.ErrNotInitialized)
}
