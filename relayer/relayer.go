// Package relayer keeps the root ledger in sync with the World ID identity manager on
// the source chain, using guardian attested cross-chain queries.
package relayer

import (
	"context"
	"encoding/binary"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	errorsmod "cosmossdk.io/errors"
	"cosmossdk.io/log"

	guardiantypes "github.com/wormholelabs-xyz/rootsync/modules/guardian/types"
	querytypes "github.com/wormholelabs-xyz/rootsync/modules/query/types"
	"github.com/wormholelabs-xyz/rootsync/modules/quorum"
	rootledgertypes "github.com/wormholelabs-xyz/rootsync/modules/rootledger/types"
	"github.com/wormholelabs-xyz/rootsync/relayer/internal/telemetry"
)

// SourceRoot is the latest root observed directly on the source chain.
type SourceRoot struct {
	Root        common.Hash
	BlockNumber uint64
}

// SourceChain reads the identity manager's latest root.
type SourceChain interface {
	LatestRoot(ctx context.Context) (SourceRoot, error)
}

// Attestation is a query response and the guardian signatures over it.
type Attestation struct {
	Bytes      []byte
	Signatures []querytypes.GuardianSignature
}

// AttestationSource has a query request executed and signed by the guardian network.
type AttestationSource interface {
	Attest(ctx context.Context, request []byte) (*Attestation, error)
}

// Ledger is the destination the driver reads from and submits to.
type Ledger interface {
	LatestRoot(ctx context.Context, vt rootledgertypes.VerificationType) (rootledgertypes.LatestRoot, error)
	Roots(ctx context.Context, vt rootledgertypes.VerificationType) ([]rootledgertypes.Root, error)
	GuardianSet(ctx context.Context, index uint32) (guardiantypes.GuardianSet, error)
	CurrentGuardianSet(ctx context.Context) (guardiantypes.GuardianSet, error)
	Execute(ctx context.Context, msg rootledgertypes.Msg) error
}

// Clock is the time source of the driver and its loops.
type Clock interface {
	Now() time.Time
	Sleep(ctx context.Context, d time.Duration) error
}

// SystemClock is the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

func (SystemClock) Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Driver runs sync and cleanup cycles for one source chain and one ledger.
type Driver struct {
	source   SourceChain
	attester AttestationSource
	ledger   Ledger
	clock    Clock
	logger   log.Logger

	shape     querytypes.ExpectedShape
	submitter common.Address
	// guardianSetIndex pins the guardian set proofs are claimed against; nil uses the current set.
	guardianSetIndex *uint32

	attempts atomic.Uint64
}

// NewDriver returns a driver submitting as submitter.
func NewDriver(
	source SourceChain, attester AttestationSource, ledger Ledger, clock Clock,
	shape querytypes.ExpectedShape, submitter common.Address, logger log.Logger,
) *Driver {
	return &Driver{
		source:    source,
		attester:  attester,
		ledger:    ledger,
		clock:     clock,
		logger:    logger.With("module", ModuleName),
		shape:     shape,
		submitter: submitter,
	}
}

// PinGuardianSet makes the driver claim every proof against the guardian set at index
// instead of the current one.
func (d *Driver) PinGuardianSet(index uint32) {
	d.guardianSetIndex = &index
}

// SyncOnce runs one sync cycle. The returned error is nil only for OutcomeUpToDate and
// OutcomeUpdated.
func (d *Driver) SyncOnce(ctx context.Context) (Outcome, error) {
	outcome, err := d.syncOnce(ctx)

	var class string
	if err != nil {
		class = Classify(err).String()
		d.logger.Error("sync failed", "outcome", outcome, "error_class", class, "error", err)
	}
	telemetry.ReportSyncOutcome(outcome.String(), class)

	return outcome, err
}

func (d *Driver) syncOnce(ctx context.Context) (Outcome, error) {
	src, err := d.source.LatestRoot(ctx)
	if err != nil {
		return OutcomeFailed, errorsmod.Wrap(err, "failed to read source root")
	}

	dst, err := d.ledger.LatestRoot(ctx, rootledgertypes.VerificationTypeQuery)
	if err != nil {
		return outcomeOf(err), errorsmod.Wrap(err, "failed to read ledger root")
	}

	d.logger.Debug("roots observed", "source_root", src.Root, "source_block", src.BlockNumber, "ledger_root", dst.Root, "ledger_block", dst.ReadBlockNumber)

	if src.Root == dst.Root || src.BlockNumber <= dst.ReadBlockNumber {
		d.logger.Info("roots match, nothing to update", "root", dst.Root, "block_number", dst.ReadBlockNumber)
		return OutcomeUpToDate, nil
	}

	attempt := d.attempts.Add(1)

	request, err := d.shape.NewRequest(src.BlockNumber, uint32(attempt))
	if err != nil {
		return outcomeOf(err), err
	}
	requestBz, err := request.Marshal()
	if err != nil {
		return outcomeOf(err), err
	}

	d.logger.Info("source root is newer, querying", "root", src.Root, "block_number", src.BlockNumber)

	att, err := d.attester.Attest(ctx, requestBz)
	if err != nil {
		return OutcomeFailed, errorsmod.Wrap(err, "failed to fetch attestation")
	}

	resp, err := querytypes.DecodeQueryResponse(att.Bytes)
	if err != nil {
		return outcomeOf(err), err
	}
	result, err := querytypes.ValidateResponse(resp, d.shape)
	if err != nil {
		return outcomeOf(err), err
	}

	if result.RootHash != src.Root {
		err := errorsmod.Wrapf(ErrRootMismatch, "source %s, attested %s", src.Root, result.RootHash)
		return OutcomeRootMismatch, err
	}

	set, err := d.guardianSet(ctx)
	if err != nil {
		return outcomeOf(err), err
	}

	proof := querytypes.QuorumProof{GuardianSetIndex: set.Index, Signatures: att.Signatures}
	if err := quorum.Verify(querytypes.QueryMessage(att.Bytes), proof, set, d.clock.Now()); err != nil {
		return outcomeOf(err), errorsmod.Wrap(err, "attestation failed local verification")
	}

	if err := d.submit(ctx, att.Bytes, result.RootHash, proof, set, attempt); err != nil {
		return outcomeOf(err), err
	}

	telemetry.ReportRootSynced(result.BlockNumber)
	d.logger.Info("root updated", "root", result.RootHash, "block_number", result.BlockNumber)

	return OutcomeUpdated, nil
}

func (d *Driver) guardianSet(ctx context.Context) (guardiantypes.GuardianSet, error) {
	if d.guardianSetIndex != nil {
		return d.ledger.GuardianSet(ctx, *d.guardianSetIndex)
	}
	return d.ledger.CurrentGuardianSet(ctx)
}

// submit accumulates the proof into a fresh session and admits the root. A session left
// behind by a failed submission is closed.
func (d *Driver) submit(ctx context.Context, responseBz []byte, root common.Hash, proof querytypes.QuorumProof, set guardiantypes.GuardianSet, attempt uint64) error {
	sessionID := d.SessionID(querytypes.QueryDigest(responseBz), attempt)

	msgs, err := rootledgertypes.NewVerifySignaturesMsgs(d.submitter, sessionID, proof, set.Keys, responseBz)
	if err != nil {
		return err
	}

	err = d.submitSession(ctx, msgs, &rootledgertypes.MsgUpdateRootWithQuery{
		Signer:    d.submitter,
		Bytes:     responseBz,
		RootHash:  root,
		SessionID: sessionID,
	})
	if err != nil {
		if closeErr := d.ledger.Execute(ctx, &rootledgertypes.MsgCloseSignatures{Signer: d.submitter, SessionID: sessionID}); closeErr != nil {
			d.logger.Debug("no session to close", "session", sessionID, "error", closeErr)
		}
		return err
	}
	return nil
}

func (d *Driver) submitSession(ctx context.Context, verify []*rootledgertypes.MsgVerifySignatures, update *rootledgertypes.MsgUpdateRootWithQuery) error {
	for i, msg := range verify {
		if err := d.ledger.Execute(ctx, msg); err != nil {
			return errorsmod.Wrapf(err, "sig verify record %d of %d", i+1, len(verify))
		}
	}
	return d.ledger.Execute(ctx, update)
}

// SessionID derives the verification session id of one submission attempt.
func (d *Driver) SessionID(digest common.Hash, attempt uint64) common.Hash {
	var counter [8]byte
	binary.BigEndian.PutUint64(counter[:], attempt)
	return crypto.Keccak256Hash(digest.Bytes(), d.submitter.Bytes(), counter[:])
}
