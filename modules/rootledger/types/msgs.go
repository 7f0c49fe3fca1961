package types

import (
	"github.com/ethereum/go-ethereum/common"

	errorsmod "cosmossdk.io/errors"

	coreerrors "github.com/wormholelabs-xyz/rootsync/modules/core/errors"
	querytypes "github.com/wormholelabs-xyz/rootsync/modules/query/types"
)

// Groth16ProofLength is the size of a serialized (a, b, c) proof over BN254.
const Groth16ProofLength = 256

// Msg is a state transition submitted to the root ledger.
type Msg interface {
	GetSigner() common.Address
	ValidateBasic() error
}

var (
	_ Msg = (*MsgInitialize)(nil)
	_ Msg = (*MsgVerifySignatures)(nil)
	_ Msg = (*MsgUpdateRootWithQuery)(nil)
	_ Msg = (*MsgUpdateRootExpiry)(nil)
	_ Msg = (*MsgCleanUpRoot)(nil)
	_ Msg = (*MsgCloseSignatures)(nil)
	_ Msg = (*MsgTransferOwnership)(nil)
	_ Msg = (*MsgClaimOwnership)(nil)
	_ Msg = (*MsgSetRootExpiry)(nil)
	_ Msg = (*MsgSetAllowedUpdateStaleness)(nil)
)

// MsgInitialize creates the Config, owned by Signer, and the empty query LatestRoot.
type MsgInitialize struct {
	Signer                 common.Address
	RootExpiry             uint64
	AllowedUpdateStaleness uint64
}

// MsgVerifySignatures verifies one sig verify record into the session SessionID.
// SignerIndices gives the guardian index of each signature in the record.
type MsgVerifySignatures struct {
	Signer           common.Address
	SessionID        common.Hash
	GuardianSetIndex uint32
	SignerIndices    []uint8
	Batch            []byte
}

// MsgUpdateRootWithQuery admits the root attested by Bytes using the signatures
// accumulated in SessionID. RootHash must equal the attested result.
type MsgUpdateRootWithQuery struct {
	Signer    common.Address
	Bytes     []byte
	RootHash  common.Hash
	SessionID common.Hash
}

// MsgUpdateRootExpiry recomputes a root's expiry from the current Config.
type MsgUpdateRootExpiry struct {
	Signer           common.Address
	RootHash         common.Hash
	VerificationType VerificationType
}

// MsgCleanUpRoot deletes an expired root. RefundRecipient must match the record.
type MsgCleanUpRoot struct {
	Signer           common.Address
	RootHash         common.Hash
	VerificationType VerificationType
	RefundRecipient  common.Address
}

// MsgCloseSignatures abandons a verification session.
type MsgCloseSignatures struct {
	Signer    common.Address
	SessionID common.Hash
}

// MsgTransferOwnership proposes NewOwner as the next owner.
type MsgTransferOwnership struct {
	Signer   common.Address
	NewOwner common.Address
}

// MsgClaimOwnership completes a transfer, or cancels it when sent by the current owner.
type MsgClaimOwnership struct {
	Signer common.Address
}

// MsgSetRootExpiry sets Config.RootExpiry. Existing roots keep their expiry until
// MsgUpdateRootExpiry is sent for them.
type MsgSetRootExpiry struct {
	Signer     common.Address
	RootExpiry uint64
}

// MsgSetAllowedUpdateStaleness sets Config.AllowedUpdateStaleness.
type MsgSetAllowedUpdateStaleness struct {
	Signer                 common.Address
	AllowedUpdateStaleness uint64
}

// Groth16Proof is a World ID membership proof anchored at Root.
type Groth16Proof struct {
	Root                  common.Hash
	SignalHash            common.Hash
	NullifierHash         common.Hash
	ExternalNullifierHash common.Hash
	Proof                 [Groth16ProofLength]byte
}

// MsgVerifyGroth16Proof checks a proof against an active root of VerificationType.
type MsgVerifyGroth16Proof struct {
	VerificationType VerificationType
	Proof            Groth16Proof
}

func validateSigner(signer common.Address) error {
	if signer == (common.Address{}) {
		return errorsmod.Wrap(coreerrors.ErrInvalidAddress, "signer cannot be the zero address")
	}
	return nil
}

func (msg MsgInitialize) GetSigner() common.Address { return msg.Signer }

// ValidateBasic performs a basic check of the MsgInitialize fields.
func (msg MsgInitialize) ValidateBasic() error {
	return validateSigner(msg.Signer)
}

func (msg MsgVerifySignatures) GetSigner() common.Address { return msg.Signer }

// ValidateBasic performs a basic check of the MsgVerifySignatures fields.
func (msg MsgVerifySignatures) ValidateBasic() error {
	if err := validateSigner(msg.Signer); err != nil {
		return err
	}
	if msg.SessionID == (common.Hash{}) {
		return errorsmod.Wrap(coreerrors.ErrInvalidRequest, "session id cannot be empty")
	}
	if len(msg.Batch) == 0 {
		return errorsmod.Wrap(ErrEmptyGuardianSignatures, "sig verify record cannot be empty")
	}
	if len(msg.SignerIndices) > querytypes.MaxSignaturesPerBatch {
		return errorsmod.Wrapf(ErrSignerIndicesMismatch, "at most %d signers per record, got %d", querytypes.MaxSignaturesPerBatch, len(msg.SignerIndices))
	}
	return nil
}

func (msg MsgUpdateRootWithQuery) GetSigner() common.Address { return msg.Signer }

// ValidateBasic performs a basic check of the MsgUpdateRootWithQuery fields.
func (msg MsgUpdateRootWithQuery) ValidateBasic() error {
	if err := validateSigner(msg.Signer); err != nil {
		return err
	}
	if len(msg.Bytes) == 0 {
		return errorsmod.Wrap(querytypes.ErrFailedToParse, "query response bytes cannot be empty")
	}
	if msg.SessionID == (common.Hash{}) {
		return errorsmod.Wrap(coreerrors.ErrInvalidRequest, "session id cannot be empty")
	}
	return nil
}

func (msg MsgUpdateRootExpiry) GetSigner() common.Address { return msg.Signer }

// ValidateBasic performs a basic check of the MsgUpdateRootExpiry fields.
func (msg MsgUpdateRootExpiry) ValidateBasic() error {
	return validateSigner(msg.Signer)
}

func (msg MsgCleanUpRoot) GetSigner() common.Address { return msg.Signer }

// ValidateBasic performs a basic check of the MsgCleanUpRoot fields.
func (msg MsgCleanUpRoot) ValidateBasic() error {
	return validateSigner(msg.Signer)
}

func (msg MsgCloseSignatures) GetSigner() common.Address { return msg.Signer }

// ValidateBasic performs a basic check of the MsgCloseSignatures fields.
func (msg MsgCloseSignatures) ValidateBasic() error {
	if err := validateSigner(msg.Signer); err != nil {
		return err
	}
	if msg.SessionID == (common.Hash{}) {
		return errorsmod.Wrap(coreerrors.ErrInvalidRequest, "session id cannot be empty")
	}
	return nil
}

func (msg MsgTransferOwnership) GetSigner() common.Address { return msg.Signer }

// ValidateBasic performs a basic check of the MsgTransferOwnership fields.
func (msg MsgTransferOwnership) ValidateBasic() error {
	if err := validateSigner(msg.Signer); err != nil {
		return err
	}
	if msg.NewOwner == (common.Address{}) {
		return errorsmod.Wrap(ErrInvalidPendingOwner, "new owner cannot be the zero address")
	}
	return nil
}

func (msg MsgClaimOwnership) GetSigner() common.Address { return msg.Signer }

// ValidateBasic performs a basic check of the MsgClaimOwnership fields.
func (msg MsgClaimOwnership) ValidateBasic() error {
	return validateSigner(msg.Signer)
}

func (msg MsgSetRootExpiry) GetSigner() common.Address { return msg.Signer }

// ValidateBasic performs a basic check of the MsgSetRootExpiry fields.
func (msg MsgSetRootExpiry) ValidateBasic() error {
	return validateSigner(msg.Signer)
}

func (msg MsgSetAllowedUpdateStaleness) GetSigner() common.Address { return msg.Signer }

// ValidateBasic performs a basic check of the MsgSetAllowedUpdateStaleness fields.
func (msg MsgSetAllowedUpdateStaleness) ValidateBasic() error {
	return validateSigner(msg.Signer)
}

// ValidateBasic performs a basic check of the MsgVerifyGroth16Proof fields.
func (msg MsgVerifyGroth16Proof) ValidateBasic() error {
	if msg.Proof.Root == (common.Hash{}) {
		return errorsmod.Wrap(ErrRootNotFound, "root cannot be empty")
	}
	return nil
}

// NewVerifySignaturesMsgs splits proof into the sig verify records that accumulate it
// into session sessionID. keys is the guardian set the proof is claimed against.
func NewVerifySignaturesMsgs(signer common.Address, sessionID common.Hash, proof querytypes.QuorumProof, keys []common.Address, responseBz []byte) ([]*MsgVerifySignatures, error) {
	batches, err := querytypes.EncodeQuorumProof(proof, keys, querytypes.QueryMessage(responseBz))
	if err != nil {
		return nil, err
	}

	msgs := make([]*MsgVerifySignatures, len(batches))
	for i, batch := range batches {
		msgs[i] = &MsgVerifySignatures{
			Signer:           signer,
			SessionID:        sessionID,
			GuardianSetIndex: proof.GuardianSetIndex,
			SignerIndices:    batch.SignerIndices,
			Batch:            batch.Data,
		}
	}
	return msgs, nil
}
