package keeper_test

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/ethereum/go-ethereum/common"

	coreerrors "github.com/wormholelabs-xyz/rootsync/modules/core/errors"
	guardiantypes "github.com/wormholelabs-xyz/rootsync/modules/guardian/types"
	querytypes "github.com/wormholelabs-xyz/rootsync/modules/query/types"
	"github.com/wormholelabs-xyz/rootsync/modules/quorum"
	"github.com/wormholelabs-xyz/rootsync/modules/rootledger/types"
	rootsynctesting "github.com/wormholelabs-xyz/rootsync/testing"
)

func (s *KeeperTestSuite) TestUpdateRootWithQuery() {
	var (
		resp      rootsynctesting.LatestRootResponse
		bz        []byte
		indices   []uint8
		rootHash  common.Hash
		sessionID common.Hash
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
			"success: exactly quorum",
			func() {
				indices = []uint8{1, 2, 3, 4, 6, 7, 9, 11, 12}
			},
			nil,
		},
		{
			"success: block time at the staleness bound",
			func() {
				resp.BlockTime = s.ledger.Clock.Now().Add(-time.Duration(types.DefaultAllowedUpdateStaleness) * time.Second)
			},
			nil,
		},
		{
			"success: newer than the latest root",
			func() {
				s.admit("previous", 99)
			},
			nil,
		},
		{
			"one short of quorum",
			func() {
				indices = rootsynctesting.Indices(8)
			},
			quorum.ErrNoQuorum,
		},
		{
			"two signatures",
			func() {
				indices = []uint8{0, 1}
			},
			quorum.ErrNoQuorum,
		},
		{
			"session not found",
			func() {
				sessionID = rootsynctesting.SessionID("unknown")
			},
			types.ErrSessionNotFound,
		},
		{
			"bytes differ from the verified message",
			func() {
				other := s.response("other", 100).Marshal(s.T())
				bz = other
				sessionID = rootsynctesting.SessionID("forged")
				s.Require().NoError(s.ledger.VerifyProof(submitter, sessionID, s.guardians.Proof(s.T(), 0, resp.Marshal(s.T()), indices...), resp.Marshal(s.T())))
			},
			types.ErrInvalidMessageHash,
		},
		{
			"claimed root differs from the attested root",
			func() {
				rootHash = rootsynctesting.HashOf("claimed")
			},
			types.ErrRootHashMismatch,
		},
		{
			"attested bytes do not decode",
			func() {
				bz = []byte("not a query response")
			},
			querytypes.ErrFailedToParse,
		},
		{
			"response from another contract",
			func() {
				resp.Shape.Contract = common.HexToAddress("0x01")
			},
			querytypes.ErrInvalidRequestContract,
		},
		{
			"response from another chain",
			func() {
				resp.Shape.ChainID = 10002
			},
			querytypes.ErrInvalidRequestChainID,
		},
		{
			"same block as the latest root",
			func() {
				s.admit("previous", 100)
			},
			types.ErrStaleBlockNum,
		},
		{
			"older block than the latest root",
			func() {
				s.admit("previous", 101)
			},
			types.ErrStaleBlockNum,
		},
		{
			"block time older than the allowed staleness",
			func() {
				resp.BlockTime = s.ledger.Clock.Now().Add(-time.Duration(types.DefaultAllowedUpdateStaleness+1) * time.Second)
			},
			types.ErrStaleBlockTime,
		},
		{
			"root already exists",
			func() {
				s.admit("root", 99)
			},
			types.ErrRootAlreadyExists,
		},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			s.SetupTest()

			resp = s.response("root", 100)
			bz = nil
			indices = rootsynctesting.Indices(13)
			rootHash = common.Hash{}
			sessionID = common.Hash{}

			tc.malleate()

			if bz == nil {
				bz = resp.Marshal(s.T())
			}
			if rootHash == (common.Hash{}) {
				rootHash = resp.Root
			}
			if sessionID == (common.Hash{}) {
				sessionID = rootsynctesting.SessionID(tc.name)
				proof := s.guardians.Proof(s.T(), 0, bz, indices...)
				s.Require().NoError(s.ledger.VerifyProof(submitter, sessionID, proof, bz))
			}

			before := s.latestRoot()

			err := s.ledger.Execute(s.ctx, &types.MsgUpdateRootWithQuery{
				Signer:    submitter,
				Bytes:     bz,
				RootHash:  rootHash,
				SessionID: sessionID,
			})

			if tc.expErr == nil {
				s.Require().NoError(err)

				latest := s.latestRoot()
				s.Require().Equal(resp.Root, latest.Root)
				s.Require().Equal(resp.BlockNumber, latest.ReadBlockNumber)
				s.Require().Equal(resp.BlockHash, latest.ReadBlockHash)
				s.Require().Equal(uint64(resp.BlockTime.UnixMicro()), latest.ReadBlockTime)

				root, err := s.root(resp.Root)
				s.Require().NoError(err)
				s.Require().Equal(submitter, root.RefundRecipient)
				s.Require().Equal(uint64(resp.BlockTime.Unix())+types.DefaultRootExpiry, root.ExpiryTime)

				_, err = s.session(sessionID)
				s.Require().ErrorIs(err, types.ErrSessionNotFound)
			} else {
				s.Require().ErrorIs(err, tc.expErr)
				s.Require().Equal(before, s.latestRoot())
			}
		})
	}
}

func (s *KeeperTestSuite) TestUpdateRootWithQueryGuardianSetExpired() {
	resp := s.response("root", 100)
	bz := resp.Marshal(s.T())
	sessionID := rootsynctesting.SessionID("expired")

	proof := s.guardians.Proof(s.T(), 0, bz, rootsynctesting.Indices(13)...)
	s.Require().NoError(s.ledger.VerifyProof(submitter, sessionID, proof, bz))

	next := rootsynctesting.NewGuardians(s.T(), 13)
	s.Require().NoError(s.ledger.PublishGuardianSet(s.ctx, next.GuardianSet(1), time.Second))
	s.ledger.Clock.Advance(2 * time.Second)

	err := s.ledger.Execute(s.ctx, &types.MsgUpdateRootWithQuery{Signer: submitter, Bytes: bz, RootHash: resp.Root, SessionID: sessionID})
	s.Require().ErrorIs(err, quorum.ErrGuardianSetExpired)
}

func (s *KeeperTestSuite) TestUpdateRootWithQueryUnlimitedStaleness() {
	s.Require().NoError(s.ledger.Execute(s.ctx, &types.MsgSetAllowedUpdateStaleness{Signer: s.ledger.Owner, AllowedUpdateStaleness: math.MaxUint64}))
	s.Require().NoError(s.ledger.Execute(s.ctx, &types.MsgSetRootExpiry{Signer: s.ledger.Owner, RootExpiry: math.MaxUint64}))

	resp := rootsynctesting.NewLatestRootResponse(rootsynctesting.HashOf("genesis"), 1, time.Unix(1, 0))
	s.Require().NoError(s.ledger.Admit(submitter, resp))

	root, err := s.root(resp.Root)
	s.Require().NoError(err)
	s.Require().Equal(uint64(math.MaxUint64), root.ExpiryTime)
}

func (s *KeeperTestSuite) TestVerifySignatures() {
	var (
		msgs []*types.MsgVerifySignatures
		bz   []byte
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
			"empty record",
			func() {
				msgs[0].Batch = []byte{0}
				msgs[0].SignerIndices = nil
			},
			types.ErrEmptyGuardianSignatures,
		},
		{
			"malformed record",
			func() {
				msgs[0].Batch = msgs[0].Batch[:20]
			},
			querytypes.ErrInvalidSigVerifyData,
		},
		{
			"fewer signer indices than signatures",
			func() {
				msgs[0].SignerIndices = msgs[0].SignerIndices[1:]
			},
			types.ErrSignerIndicesMismatch,
		},
		{
			"unknown guardian set",
			func() {
				msgs[0].GuardianSetIndex = 9
			},
			guardiantypes.ErrGuardianSetNotFound,
		},
		{
			"signer index out of range",
			func() {
				msgs[0].SignerIndices[6] = 13
			},
			quorum.ErrGuardianIndexOutOfRange,
		},
		{
			"signer index names another guardian",
			func() {
				msgs[0].SignerIndices[0] = 12
			},
			quorum.ErrInvalidGuardianKeyRecovery,
		},
		{
			"empty session id",
			func() {
				msgs[0].SessionID = common.Hash{}
			},
			coreerrors.ErrInvalidRequest,
		},
		{
			"session started by another signer",
			func() {
				s.Require().NoError(s.ledger.Execute(s.ctx, msgs[0]))
				msgs[0] = msgs[1]
				msgs[0].Signer = stranger
			},
			types.ErrWriteAuthorityMismatch,
		},
		{
			"record replayed into its own session",
			func() {
				s.Require().NoError(s.ledger.Execute(s.ctx, msgs[0]))
			},
			quorum.ErrGuardianIndexNonIncreasing,
		},
		{
			"record for another message",
			func() {
				s.Require().NoError(s.ledger.Execute(s.ctx, msgs[0]))
				other := s.response("other", 100).Marshal(s.T())
				otherMsgs, err := types.NewVerifySignaturesMsgs(submitter, msgs[0].SessionID, s.guardians.Proof(s.T(), 0, other, 10, 11), s.guardians.Addresses(), other)
				s.Require().NoError(err)
				msgs[0] = otherMsgs[0]
			},
			quorum.ErrMessageMismatch,
		},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			s.SetupTest()

			bz = s.response("root", 100).Marshal(s.T())
			proof := s.guardians.Proof(s.T(), 0, bz, rootsynctesting.Indices(13)...)

			var err error
			msgs, err = types.NewVerifySignaturesMsgs(submitter, rootsynctesting.SessionID(tc.name), proof, s.guardians.Addresses(), bz)
			s.Require().NoError(err)
			s.Require().Len(msgs, 2)

			tc.malleate()

			err = s.ledger.Execute(s.ctx, msgs[0])
			if tc.expErr == nil {
				s.Require().NoError(err)

				session, err := s.session(msgs[0].SessionID)
				s.Require().NoError(err)
				s.Require().Equal(rootsynctesting.Indices(7), session.AccumulatedIndices)
				s.Require().Equal(querytypes.QueryMessage(bz), session.Message)
				s.Require().Equal(submitter, session.RefundRecipient)
			} else {
				s.Require().ErrorIs(err, tc.expErr)
			}
		})
	}
}

func (s *KeeperTestSuite) TestCloseSignatures() {
	bz := s.response("root", 100).Marshal(s.T())
	sessionID := rootsynctesting.SessionID("close")
	s.Require().NoError(s.ledger.VerifyProof(submitter, sessionID, s.guardians.Proof(s.T(), 0, bz, 0, 1), bz))

	err := s.ledger.Execute(s.ctx, &types.MsgCloseSignatures{Signer: stranger, SessionID: sessionID})
	s.Require().ErrorIs(err, types.ErrWriteAuthorityMismatch)

	s.Require().NoError(s.ledger.Execute(s.ctx, &types.MsgCloseSignatures{Signer: submitter, SessionID: sessionID}))
	_, err = s.session(sessionID)
	s.Require().ErrorIs(err, types.ErrSessionNotFound)

	err = s.ledger.Execute(s.ctx, &types.MsgCloseSignatures{Signer: submitter, SessionID: sessionID})
	s.Require().ErrorIs(err, types.ErrSessionNotFound)

	// a closed session id can be reused from scratch
	s.Require().NoError(s.ledger.VerifyProof(stranger, sessionID, s.guardians.Proof(s.T(), 0, bz, 0, 1), bz))
}

func (s *KeeperTestSuite) TestCleanUpRoot() {
	var msg *types.MsgCleanUpRoot

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
			"success: expires exactly now",
			func() {
				root, err := s.root(msg.RootHash)
				s.Require().NoError(err)
				s.ledger.Clock.Set(time.Unix(int64(root.ExpiryTime), 0))
			},
			nil,
		},
		{
			"refund recipient mismatch",
			func() {
				msg.RefundRecipient = stranger
			},
			types.ErrWriteAuthorityMismatch,
		},
		{
			"refund recipient is checked before latest",
			func() {
				msg.RootHash = rootsynctesting.HashOf("latest")
				msg.RefundRecipient = stranger
			},
			types.ErrWriteAuthorityMismatch,
		},
		{
			"latest root",
			func() {
				msg.RootHash = rootsynctesting.HashOf("latest")
			},
			types.ErrRootIsLatest,
		},
		{
			"unexpired",
			func() {
				s.ledger.Clock.Set(rootsynctesting.GenesisTime)
			},
			types.ErrRootUnexpired,
		},
		{
			"one second before expiry",
			func() {
				root, err := s.root(msg.RootHash)
				s.Require().NoError(err)
				s.ledger.Clock.Set(time.Unix(int64(root.ExpiryTime)-1, 0))
			},
			types.ErrRootUnexpired,
		},
		{
			"unknown root",
			func() {
				msg.RootHash = rootsynctesting.HashOf("unknown")
			},
			types.ErrRootNotFound,
		},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			s.SetupTest()

			old := s.admit("old", 100)
			s.admit("latest", 101)
			s.ledger.Clock.Advance(25 * time.Hour)

			// anyone may clean up, the refund goes to the recipient of record
			msg = &types.MsgCleanUpRoot{
				Signer:           stranger,
				RootHash:         old.Root,
				VerificationType: types.VerificationTypeQuery,
				RefundRecipient:  submitter,
			}

			tc.malleate()

			err := s.ledger.Execute(s.ctx, msg)
			if tc.expErr == nil {
				s.Require().NoError(err)
				_, err := s.root(old.Root)
				s.Require().ErrorIs(err, types.ErrRootNotFound)
			} else {
				s.Require().ErrorIs(err, tc.expErr)
			}
		})
	}
}

func (s *KeeperTestSuite) TestUpdateRootExpiry() {
	resp := s.admit("root", 100)
	msg := &types.MsgUpdateRootExpiry{Signer: s.ledger.Owner, RootHash: resp.Root, VerificationType: types.VerificationTypeQuery}

	err := s.ledger.Execute(s.ctx, &types.MsgUpdateRootExpiry{Signer: stranger, RootHash: resp.Root})
	s.Require().ErrorIs(err, coreerrors.ErrUnauthorized)

	err = s.ledger.Execute(s.ctx, msg)
	s.Require().ErrorIs(err, types.ErrNoopExpiryUpdate)

	s.Require().NoError(s.ledger.Execute(s.ctx, &types.MsgSetRootExpiry{Signer: s.ledger.Owner, RootExpiry: 2 * types.DefaultRootExpiry}))
	s.Require().NoError(s.ledger.Execute(s.ctx, msg))

	root, err := s.root(resp.Root)
	s.Require().NoError(err)
	s.Require().Equal(uint64(resp.BlockTime.Unix())+2*types.DefaultRootExpiry, root.ExpiryTime)

	// shrinking the expiry can expire a root immediately
	s.Require().NoError(s.ledger.Execute(s.ctx, &types.MsgSetRootExpiry{Signer: s.ledger.Owner, RootExpiry: 1}))
	s.Require().NoError(s.ledger.Execute(s.ctx, msg))

	err = s.ledger.Execute(s.ctx, msg)
	s.Require().ErrorIs(err, types.ErrRootExpired)

	err = s.ledger.Execute(s.ctx, &types.MsgUpdateRootExpiry{Signer: s.ledger.Owner, RootHash: rootsynctesting.HashOf("unknown")})
	s.Require().ErrorIs(err, types.ErrRootNotFound)
}

func (s *KeeperTestSuite) TestOwnership() {
	owner := s.ledger.Owner
	next := common.HexToAddress("0x000000000000000000000000000000000000a12e")

	err := s.ledger.Execute(s.ctx, &types.MsgTransferOwnership{Signer: stranger, NewOwner: next})
	s.Require().ErrorIs(err, coreerrors.ErrUnauthorized)

	err = s.ledger.Execute(s.ctx, &types.MsgTransferOwnership{Signer: owner, NewOwner: common.Address{}})
	s.Require().ErrorIs(err, types.ErrInvalidPendingOwner)

	// the owner cancels a pending transfer by claiming
	s.Require().NoError(s.ledger.Execute(s.ctx, &types.MsgTransferOwnership{Signer: owner, NewOwner: next}))
	s.Require().Equal(next, *s.config().PendingOwner)
	s.Require().NoError(s.ledger.Execute(s.ctx, &types.MsgClaimOwnership{Signer: owner}))
	s.Require().Nil(s.config().PendingOwner)
	s.Require().Equal(owner, s.config().Owner)

	err = s.ledger.Execute(s.ctx, &types.MsgClaimOwnership{Signer: next})
	s.Require().ErrorIs(err, types.ErrInvalidPendingOwner)

	s.Require().NoError(s.ledger.Execute(s.ctx, &types.MsgTransferOwnership{Signer: owner, NewOwner: next}))

	err = s.ledger.Execute(s.ctx, &types.MsgClaimOwnership{Signer: stranger})
	s.Require().ErrorIs(err, types.ErrInvalidPendingOwner)

	s.Require().NoError(s.ledger.Execute(s.ctx, &types.MsgClaimOwnership{Signer: next}))
	config := s.config()
	s.Require().Equal(next, config.Owner)
	s.Require().Nil(config.PendingOwner)

	err = s.ledger.Execute(s.ctx, &types.MsgSetRootExpiry{Signer: owner, RootExpiry: 1})
	s.Require().ErrorIs(err, coreerrors.ErrUnauthorized)
	s.Require().NoError(s.ledger.Execute(s.ctx, &types.MsgSetRootExpiry{Signer: next, RootExpiry: 1}))
}

func (s *KeeperTestSuite) TestConfigSetters() {
	testCases := []struct {
		name   string
		msg    types.Msg
		check  func(types.Config)
		expErr error
	}{
		{
			"set root expiry",
			&types.MsgSetRootExpiry{Signer: s.ledger.Owner, RootExpiry: 3600},
			func(c types.Config) { s.Require().Equal(uint64(3600), c.RootExpiry) },
			nil,
		},
		{
			"set root expiry: not owner",
			&types.MsgSetRootExpiry{Signer: stranger, RootExpiry: 3600},
			nil,
			coreerrors.ErrUnauthorized,
		},
		{
			"set allowed update staleness",
			&types.MsgSetAllowedUpdateStaleness{Signer: s.ledger.Owner, AllowedUpdateStaleness: 0},
			func(c types.Config) { s.Require().Zero(c.AllowedUpdateStaleness) },
			nil,
		},
		{
			"set allowed update staleness: not owner",
			&types.MsgSetAllowedUpdateStaleness{Signer: stranger, AllowedUpdateStaleness: 60},
			nil,
			coreerrors.ErrUnauthorized,
		},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			before := s.config()

			err := s.ledger.Execute(s.ctx, tc.msg)
			if tc.expErr == nil {
				s.Require().NoError(err)
				tc.check(s.config())
			} else {
				s.Require().ErrorIs(err, tc.expErr)
				s.Require().Equal(before, s.config())
			}
		})
	}
}

func (s *KeeperTestSuite) TestVerifyRoot() {
	vt := types.VerificationTypeQuery

	// the empty latest root of an initialized ledger anchors nothing
	s.Require().ErrorIs(s.ledger.VerifyRoot(s.ctx, vt, common.Hash{}), types.ErrRootNotFound)

	first := s.admit("first", 100)
	s.Require().NoError(s.ledger.VerifyRoot(s.ctx, vt, first.Root))

	// the latest root stays valid past its expiry
	s.ledger.Clock.Advance(25 * time.Hour)
	s.Require().NoError(s.ledger.VerifyRoot(s.ctx, vt, first.Root))

	second := s.admit("second", 101)
	s.Require().NoError(s.ledger.VerifyRoot(s.ctx, vt, second.Root))
	s.Require().ErrorIs(s.ledger.VerifyRoot(s.ctx, vt, first.Root), types.ErrRootExpired)
	s.Require().ErrorIs(s.ledger.VerifyRoot(s.ctx, vt, rootsynctesting.HashOf("unknown")), types.ErrRootNotFound)
	s.Require().ErrorIs(s.ledger.VerifyRoot(s.ctx, types.VerificationType(1), second.Root), types.ErrNotInitialized)
}

type proofVerifier struct {
	err    error
	proofs []types.Groth16Proof
}

func (v *proofVerifier) VerifyProof(_ context.Context, proof types.Groth16Proof) error {
	v.proofs = append(v.proofs, proof)
	return v.err
}

func (s *KeeperTestSuite) TestVerifyGroth16Proof() {
	var (
		verifier *proofVerifier
		msg      *types.MsgVerifyGroth16Proof
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
			"no verifier",
			func() {
				verifier = nil
			},
			types.ErrGroth16VerifierUnavailable,
		},
		{
			"proof rejected",
			func() {
				verifier.err = errors.New("pairing check failed")
			},
			types.ErrGroth16ProofVerificationFailed,
		},
		{
			"unknown root",
			func() {
				msg.Proof.Root = rootsynctesting.HashOf("unknown")
			},
			types.ErrRootNotFound,
		},
		{
			"empty root",
			func() {
				msg.Proof.Root = common.Hash{}
			},
			types.ErrRootNotFound,
		},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			s.SetupTest()
			resp := s.admit("root", 100)

			verifier = &proofVerifier{}
			msg = &types.MsgVerifyGroth16Proof{
				VerificationType: types.VerificationTypeQuery,
				Proof: types.Groth16Proof{
					Root:                  resp.Root,
					SignalHash:            rootsynctesting.HashOf("signal"),
					NullifierHash:         rootsynctesting.HashOf("nullifier"),
					ExternalNullifierHash: rootsynctesting.HashOf("external nullifier"),
				},
			}

			tc.malleate()

			if verifier != nil {
				s.ledger.SetProofVerifier(verifier)
			}

			err := s.ledger.VerifyGroth16Proof(s.ctx, msg)
			if tc.expErr == nil {
				s.Require().NoError(err)
				s.Require().Equal([]types.Groth16Proof{msg.Proof}, verifier.proofs)
			} else {
				s.Require().ErrorIs(err, tc.expErr)
			}
		})
	}
}
