package keeper

import (
	"bytes"
	"context"

	"github.com/ethereum/go-ethereum/common"

	errorsmod "cosmossdk.io/errors"

	coreerrors "github.com/wormholelabs-xyz/rootsync/modules/core/errors"
	querytypes "github.com/wormholelabs-xyz/rootsync/modules/query/types"
	"github.com/wormholelabs-xyz/rootsync/modules/quorum"
	"github.com/wormholelabs-xyz/rootsync/modules/rootledger/internal/telemetry"
	"github.com/wormholelabs-xyz/rootsync/modules/rootledger/types"
)

// Initialize creates the config and the empty LatestRoot of the query verification type.
func (k Keeper) Initialize(ctx context.Context, msg *types.MsgInitialize) error {
	if err := msg.ValidateBasic(); err != nil {
		return err
	}

	has, err := k.Config.Has(ctx)
	if err != nil {
		return err
	}
	if has {
		return errorsmod.Wrap(types.ErrAlreadyInitialized, "config already exists")
	}

	config := types.NewConfig(msg.Signer, msg.RootExpiry, msg.AllowedUpdateStaleness)
	if err := k.Config.Set(ctx, config); err != nil {
		return err
	}

	vt := types.VerificationTypeQuery
	if err := k.LatestRoots.Set(ctx, uint32(vt), types.LatestRoot{VerificationType: vt}); err != nil {
		return err
	}

	k.Logger().Info("root ledger initialized", "owner", msg.Signer, "root_expiry", msg.RootExpiry, "allowed_update_staleness", msg.AllowedUpdateStaleness)

	return nil
}

// VerifySignatures verifies one sig verify record and accumulates its guardians into the
// session. The first record binds the session to its message and guardian set and to the
// signer, who alone may extend or close it.
func (k Keeper) VerifySignatures(ctx context.Context, msg *types.MsgVerifySignatures) error {
	if err := msg.ValidateBasic(); err != nil {
		return err
	}

	payload, err := querytypes.DecodeSigVerifyBatch(msg.Batch)
	if err != nil {
		return err
	}
	if len(payload.Signatures) == 0 {
		return errorsmod.Wrap(types.ErrEmptyGuardianSignatures, "sig verify record carries no signatures")
	}
	if len(msg.SignerIndices) != len(payload.Signatures) {
		return errorsmod.Wrapf(types.ErrSignerIndicesMismatch, "%d signer indices for %d signatures", len(msg.SignerIndices), len(payload.Signatures))
	}

	set, err := k.guardianKeeper.GetGuardianSet(ctx, msg.GuardianSetIndex)
	if err != nil {
		return err
	}

	sigs := make([]querytypes.GuardianSignature, len(payload.Signatures))
	for i, index := range msg.SignerIndices {
		if int(index) >= len(set.Keys) {
			return errorsmod.Wrapf(quorum.ErrGuardianIndexOutOfRange, "signer %d has index %d, guardian set has %d keys", i, index, len(set.Keys))
		}
		if payload.Addresses[i] != set.Keys[index] {
			return errorsmod.Wrapf(quorum.ErrInvalidGuardianKeyRecovery, "signer %d claims %s, guardian %d is %s", i, payload.Addresses[i], index, set.Keys[index])
		}
		sigs[i] = querytypes.GuardianSignature{Index: index, Signature: payload.Signatures[i]}
	}

	session, err := k.GetSession(ctx, msg.SessionID)
	switch {
	case errorsmod.IsOf(err, types.ErrSessionNotFound):
		session = quorum.NewSession(msg.SessionID, msg.Signer)
	case err != nil:
		return err
	case session.RefundRecipient != msg.Signer:
		return errorsmod.Wrapf(types.ErrWriteAuthorityMismatch, "session %s belongs to %s", msg.SessionID, session.RefundRecipient)
	}

	session, err = quorum.VerifyBatch(session, payload.Message, set, sigs, k.now(ctx))
	if err != nil {
		return err
	}

	if err := k.Sessions.Set(ctx, msg.SessionID.Bytes(), session); err != nil {
		return err
	}

	telemetry.ReportSignaturesVerified(len(sigs))
	k.Logger().Debug("signatures verified", "session", msg.SessionID, "guardian_set", set.Index, "verified", session.NumVerified())

	return nil
}

// CloseSignatures deletes an abandoned session. Only the session's signer may close it.
func (k Keeper) CloseSignatures(ctx context.Context, msg *types.MsgCloseSignatures) error {
	if err := msg.ValidateBasic(); err != nil {
		return err
	}

	session, err := k.GetSession(ctx, msg.SessionID)
	if err != nil {
		return err
	}
	if session.RefundRecipient != msg.Signer {
		return errorsmod.Wrapf(types.ErrWriteAuthorityMismatch, "session %s belongs to %s", msg.SessionID, session.RefundRecipient)
	}

	return k.Sessions.Remove(ctx, msg.SessionID.Bytes())
}

// UpdateRootWithQuery admits the root attested by msg.Bytes once the session holds a
// quorum of signatures over exactly those bytes. The session is consumed on success.
func (k Keeper) UpdateRootWithQuery(ctx context.Context, msg *types.MsgUpdateRootWithQuery) error {
	if err := msg.ValidateBasic(); err != nil {
		return err
	}

	session, err := k.GetSession(ctx, msg.SessionID)
	if err != nil {
		return err
	}

	set, err := k.guardianKeeper.GetGuardianSet(ctx, session.GuardianSetIndex)
	if err != nil {
		return err
	}

	now := k.now(ctx)
	if !set.IsActive(now) {
		return errorsmod.Wrapf(quorum.ErrGuardianSetExpired, "guardian set %d expired at %d", set.Index, set.ExpirationTime)
	}

	if message := querytypes.QueryMessage(msg.Bytes); !bytes.Equal(message, session.Message) {
		return errorsmod.Wrapf(types.ErrInvalidMessageHash, "session %s verified a different message", msg.SessionID)
	}

	if err := quorum.CheckQuorum(session, set, now); err != nil {
		return err
	}

	resp, err := querytypes.DecodeQueryResponse(msg.Bytes)
	if err != nil {
		return err
	}

	result, err := querytypes.ValidateResponse(resp, k.expectedShape)
	if err != nil {
		return err
	}

	if result.RootHash != msg.RootHash {
		return errorsmod.Wrapf(types.ErrRootHashMismatch, "attested root %s, claimed %s", result.RootHash, msg.RootHash)
	}

	if err := k.Admit(ctx, types.VerificationTypeQuery, result, msg.Signer); err != nil {
		return err
	}

	return k.Sessions.Remove(ctx, msg.SessionID.Bytes())
}

// Admit records a validated result as a new root and the latest root of its verification
// type. The block must be strictly newer than the latest root and no older than the
// allowed staleness, and the root must not already exist.
func (k Keeper) Admit(ctx context.Context, vt types.VerificationType, result querytypes.ValidatedResult, refundRecipient common.Address) error {
	config, err := k.GetConfig(ctx)
	if err != nil {
		return err
	}

	latest, err := k.GetLatestRoot(ctx, vt)
	if err != nil {
		return err
	}

	if result.BlockNumber <= latest.ReadBlockNumber {
		return errorsmod.Wrapf(types.ErrStaleBlockNum, "block %d, latest root read at block %d", result.BlockNumber, latest.ReadBlockNumber)
	}

	blockTime := result.BlockTime / types.MicrosPerSecond
	if minBlockTime := types.MinBlockTime(k.now(ctx), config.AllowedUpdateStaleness); blockTime < minBlockTime {
		return errorsmod.Wrapf(types.ErrStaleBlockTime, "block time %d is before %d", blockTime, minBlockTime)
	}

	key := rootKey(vt, result.RootHash)
	has, err := k.Roots.Has(ctx, key)
	if err != nil {
		return err
	}
	if has {
		return errorsmod.Wrapf(types.ErrRootAlreadyExists, "root %s of verification type %s", result.RootHash, vt)
	}

	root := types.NewRoot(vt, result, config.RootExpiry, refundRecipient)
	if err := k.Roots.Set(ctx, key, root); err != nil {
		return err
	}
	if err := k.LatestRoots.Set(ctx, uint32(vt), types.NewLatestRoot(vt, result)); err != nil {
		return err
	}

	telemetry.ReportRootAdmitted(root)
	k.Logger().Info("root admitted", "root", root.Hash, "verification_type", vt, "block_number", root.ReadBlockNumber, "expiry_time", root.ExpiryTime)

	return nil
}

// UpdateRootExpiry recomputes an unexpired root's expiry from the current config.
func (k Keeper) UpdateRootExpiry(ctx context.Context, msg *types.MsgUpdateRootExpiry) error {
	if err := msg.ValidateBasic(); err != nil {
		return err
	}

	config, err := k.authorizeOwner(ctx, msg.Signer)
	if err != nil {
		return err
	}

	root, err := k.GetRoot(ctx, msg.VerificationType, msg.RootHash)
	if err != nil {
		return err
	}
	if root.IsExpired(k.now(ctx)) {
		return errorsmod.Wrapf(types.ErrRootExpired, "root %s expired at %d", root.Hash, root.ExpiryTime)
	}

	expiry := types.ExpiryTime(root.ReadBlockTime, config.RootExpiry)
	if expiry == root.ExpiryTime {
		return errorsmod.Wrapf(types.ErrNoopExpiryUpdate, "root %s already expires at %d", root.Hash, expiry)
	}

	root.ExpiryTime = expiry
	return k.Roots.Set(ctx, rootKey(root.VerificationType, root.Hash), root)
}

// CleanUpRoot deletes an expired root that is not the latest root of its type.
func (k Keeper) CleanUpRoot(ctx context.Context, msg *types.MsgCleanUpRoot) error {
	if err := msg.ValidateBasic(); err != nil {
		return err
	}

	root, err := k.GetRoot(ctx, msg.VerificationType, msg.RootHash)
	if err != nil {
		return err
	}
	if root.RefundRecipient != msg.RefundRecipient {
		return errorsmod.Wrapf(types.ErrWriteAuthorityMismatch, "root %s refunds %s", root.Hash, root.RefundRecipient)
	}

	latest, err := k.GetLatestRoot(ctx, msg.VerificationType)
	if err != nil {
		return err
	}
	if latest.Root == root.Hash {
		return errorsmod.Wrapf(types.ErrRootIsLatest, "root %s", root.Hash)
	}

	if !root.IsExpired(k.now(ctx)) {
		return errorsmod.Wrapf(types.ErrRootUnexpired, "root %s expires at %d", root.Hash, root.ExpiryTime)
	}

	if err := k.Roots.Remove(ctx, rootKey(root.VerificationType, root.Hash)); err != nil {
		return err
	}

	telemetry.ReportRootCleanedUp(root)
	k.Logger().Info("root cleaned up", "root", root.Hash, "verification_type", root.VerificationType, "refund_recipient", root.RefundRecipient)

	return nil
}

// TransferOwnership proposes a new owner, who must claim ownership to complete the transfer.
func (k Keeper) TransferOwnership(ctx context.Context, msg *types.MsgTransferOwnership) error {
	if err := msg.ValidateBasic(); err != nil {
		return err
	}

	config, err := k.authorizeOwner(ctx, msg.Signer)
	if err != nil {
		return err
	}

	newOwner := msg.NewOwner
	config.PendingOwner = &newOwner
	return k.Config.Set(ctx, config)
}

// ClaimOwnership makes the pending owner the owner. The current owner may claim to
// cancel a pending transfer.
func (k Keeper) ClaimOwnership(ctx context.Context, msg *types.MsgClaimOwnership) error {
	if err := msg.ValidateBasic(); err != nil {
		return err
	}

	config, err := k.GetConfig(ctx)
	if err != nil {
		return err
	}

	isPending := config.PendingOwner != nil && *config.PendingOwner == msg.Signer
	if !isPending && !config.IsOwner(msg.Signer) {
		return errorsmod.Wrapf(types.ErrInvalidPendingOwner, "%s is neither the owner nor the pending owner", msg.Signer)
	}

	previous := config.Owner
	config.Owner = msg.Signer
	config.PendingOwner = nil
	if err := k.Config.Set(ctx, config); err != nil {
		return err
	}

	k.Logger().Info("ownership claimed", "previous_owner", previous, "owner", config.Owner)

	return nil
}

// SetRootExpiry sets how long roots stay valid after their source block time.
func (k Keeper) SetRootExpiry(ctx context.Context, msg *types.MsgSetRootExpiry) error {
	if err := msg.ValidateBasic(); err != nil {
		return err
	}

	config, err := k.authorizeOwner(ctx, msg.Signer)
	if err != nil {
		return err
	}

	config.RootExpiry = msg.RootExpiry
	return k.Config.Set(ctx, config)
}

// SetAllowedUpdateStaleness sets the maximum age of an attested block at admission.
func (k Keeper) SetAllowedUpdateStaleness(ctx context.Context, msg *types.MsgSetAllowedUpdateStaleness) error {
	if err := msg.ValidateBasic(); err != nil {
		return err
	}

	config, err := k.authorizeOwner(ctx, msg.Signer)
	if err != nil {
		return err
	}

	config.AllowedUpdateStaleness = msg.AllowedUpdateStaleness
	return k.Config.Set(ctx, config)
}

// VerifyRoot reports whether proofs may be anchored at hash: the latest root always may,
// any other root only until it expires.
func (k Keeper) VerifyRoot(ctx context.Context, vt types.VerificationType, hash common.Hash) error {
	latest, err := k.GetLatestRoot(ctx, vt)
	if err != nil {
		return err
	}
	if latest.ReadBlockNumber != 0 && latest.Root == hash {
		return nil
	}

	root, err := k.GetRoot(ctx, vt, hash)
	if err != nil {
		return err
	}
	if root.IsExpired(k.now(ctx)) {
		return errorsmod.Wrapf(types.ErrRootExpired, "root %s expired at %d", root.Hash, root.ExpiryTime)
	}
	return nil
}

// VerifyGroth16Proof verifies a membership proof anchored at an active root.
func (k Keeper) VerifyGroth16Proof(ctx context.Context, msg *types.MsgVerifyGroth16Proof) error {
	if err := msg.ValidateBasic(); err != nil {
		return err
	}

	if err := k.VerifyRoot(ctx, msg.VerificationType, msg.Proof.Root); err != nil {
		return err
	}

	if k.proofVerifier == nil {
		return errorsmod.Wrap(types.ErrGroth16VerifierUnavailable, "no proof verifier configured")
	}
	if err := k.proofVerifier.VerifyProof(ctx, msg.Proof); err != nil {
		return errorsmod.Wrapf(types.ErrGroth16ProofVerificationFailed, "%v", err)
	}
	return nil
}

func (k Keeper) authorizeOwner(ctx context.Context, signer common.Address) (types.Config, error) {
	config, err := k.GetConfig(ctx)
	if err != nil {
		return types.Config{}, err
	}
	if !config.IsOwner(signer) {
		return types.Config{}, errorsmod.Wrapf(coreerrors.ErrUnauthorized, "expected owner %s, got %s", config.Owner, signer)
	}
	return config, nil
}
