package quorum_test

import (
	"time"

	"github.com/ethereum/go-ethereum/common"

	querytypes "github.com/wormholelabs-xyz/rootsync/modules/query/types"
	"github.com/wormholelabs-xyz/rootsync/modules/quorum"
	rootsynctesting "github.com/wormholelabs-xyz/rootsync/testing"
)

var refundRecipient = common.HexToAddress("0x000000000000000000000000000000000000beef")

func (s *QuorumTestSuite) sigs(indices ...uint8) []querytypes.GuardianSignature {
	return s.guardians.Proof(s.T(), s.set.Index, s.responseBz, indices...).Signatures
}

func (s *QuorumTestSuite) TestVerifyBatchAccumulates() {
	session := quorum.NewSession(rootsynctesting.SessionID("accumulate"), refundRecipient)
	s.Require().False(session.IsInitialized())

	session, err := quorum.VerifyBatch(session, s.message, s.set, s.sigs(0, 1, 2, 3, 4, 5, 6), s.now)
	s.Require().NoError(err)
	s.Require().True(session.IsInitialized())
	s.Require().Equal(s.set.Index, session.GuardianSetIndex)
	s.Require().Equal(s.message, session.Message)
	s.Require().Equal(refundRecipient, session.RefundRecipient)
	s.Require().ErrorIs(quorum.CheckQuorum(session, s.set, s.now), quorum.ErrNoQuorum)

	session, err = quorum.VerifyBatch(session, s.message, s.set, s.sigs(8, 10), s.now)
	s.Require().NoError(err)
	s.Require().Equal([]uint8{0, 1, 2, 3, 4, 5, 6, 8, 10}, session.AccumulatedIndices)
	s.Require().Equal(9, session.NumVerified())
	s.Require().NoError(quorum.CheckQuorum(session, s.set, s.now))
}

func (s *QuorumTestSuite) TestVerifyBatch() {
	var (
		session quorum.Session
		message []byte
		sigs    []querytypes.GuardianSignature
	)

	testCases := []struct {
		name     string
		malleate func()
		expErr   error
	}{
		{
			"success",
			func() {},
			nil,
		},
		{
			"index already accumulated",
			func() {
				sigs = s.sigs(2, 3)
			},
			quorum.ErrGuardianIndexNonIncreasing,
		},
		{
			"index below last accumulated",
			func() {
				sigs = s.sigs(1)
			},
			quorum.ErrGuardianIndexNonIncreasing,
		},
		{
			"message differs from session",
			func() {
				other := rootsynctesting.NewLatestRootResponse(rootsynctesting.HashOf("other"), 1, rootsynctesting.GenesisTime).Marshal(s.T())
				message = querytypes.QueryMessage(other)
			},
			quorum.ErrMessageMismatch,
		},
		{
			"guardian set differs from session",
			func() {
				s.set.Index++
			},
			quorum.ErrGuardianSetMismatch,
		},
		{
			"message length",
			func() {
				message = message[1:]
			},
			quorum.ErrInvalidMessage,
		},
		{
			"empty batch",
			func() {
				sigs = nil
			},
			quorum.ErrNoQuorum,
		},
		{
			"guardian set expired",
			func() {
				s.set.ExpirationTime = uint32(s.now.Unix() - 1)
			},
			quorum.ErrGuardianSetExpired,
		},
		{
			"invalid signature",
			func() {
				sigs[0].Signature = sigs[1].Signature
			},
			quorum.ErrInvalidSignature,
		},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			s.SetupTest()

			var err error
			session, err = quorum.VerifyBatch(quorum.NewSession(rootsynctesting.SessionID(tc.name), refundRecipient), s.message, s.set, s.sigs(0, 2), s.now)
			s.Require().NoError(err)

			message = s.message
			sigs = s.sigs(4, 5)

			tc.malleate()

			updated, err := quorum.VerifyBatch(session, message, s.set, sigs, s.now)
			if tc.expErr == nil {
				s.Require().NoError(err)
				s.Require().Equal([]uint8{0, 2, 4, 5}, updated.AccumulatedIndices)
			} else {
				s.Require().ErrorIs(err, tc.expErr)
				s.Require().Equal(session, updated)
			}
		})
	}
}

func (s *QuorumTestSuite) TestCheckQuorum() {
	session, err := quorum.VerifyBatch(quorum.NewSession(rootsynctesting.SessionID("check"), refundRecipient), s.message, s.set, s.sigs(rootsynctesting.Indices(9)...), s.now)
	s.Require().NoError(err)
	s.Require().NoError(quorum.CheckQuorum(session, s.set, s.now))

	other := s.set
	other.Index++
	s.Require().ErrorIs(quorum.CheckQuorum(session, other, s.now), quorum.ErrGuardianSetMismatch)

	expired := s.set
	expired.ExpirationTime = uint32(s.now.Unix())
	s.Require().ErrorIs(quorum.CheckQuorum(session, expired, s.now.Add(time.Second)), quorum.ErrGuardianSetExpired)
}
