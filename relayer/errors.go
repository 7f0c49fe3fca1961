package relayer

import (
	errorsmod "cosmossdk.io/errors"

	querytypes "github.com/wormholelabs-xyz/rootsync/modules/query/types"
	"github.com/wormholelabs-xyz/rootsync/modules/quorum"
	rootledgertypes "github.com/wormholelabs-xyz/rootsync/modules/rootledger/types"
)

// ModuleName is the error codespace of the relayer.
const ModuleName = "relayer"

var (
	ErrRootMismatch  = errorsmod.Register(ModuleName, 2, "attested root differs from source root")
	ErrInvalidConfig = errorsmod.Register(ModuleName, 3, "invalid relayer config")
)

// ErrorClass tells a caller how to react to a failed cycle.
type ErrorClass int

const (
	// ClassTransient is an infrastructure failure worth retrying with backoff.
	ClassTransient ErrorClass = iota
	// ClassMalformed is input that will never verify; retrying it blindly is wasted work.
	ClassMalformed
	// ClassPolicy is an expected rejection, usually from racing another relayer.
	ClassPolicy
)

func (c ErrorClass) String() string {
	switch c {
	case ClassMalformed:
		return "malformed"
	case ClassPolicy:
		return "policy"
	default:
		return "transient"
	}
}

var malformedErrors = []error{
	querytypes.ErrEncoding,
	querytypes.ErrInvalidSignature,
	querytypes.ErrInvalidSigVerifyData,
	quorum.ErrGuardianIndexOutOfRange,
	quorum.ErrGuardianIndexNonIncreasing,
	quorum.ErrInvalidSignature,
	quorum.ErrInvalidGuardianKeyRecovery,
	quorum.ErrInvalidMessage,
	rootledgertypes.ErrInvalidMessageHash,
	rootledgertypes.ErrEmptyGuardianSignatures,
	rootledgertypes.ErrSignerIndicesMismatch,
	rootledgertypes.ErrRootHashMismatch,
}

var policyErrors = []error{
	ErrRootMismatch,
	quorum.ErrNoQuorum,
	quorum.ErrGuardianSetExpired,
	quorum.ErrGuardianSetMismatch,
	quorum.ErrMessageMismatch,
	rootledgertypes.ErrStaleBlockNum,
	rootledgertypes.ErrStaleBlockTime,
	rootledgertypes.ErrRootAlreadyExists,
	rootledgertypes.ErrNoopExpiryUpdate,
	rootledgertypes.ErrRootUnexpired,
	rootledgertypes.ErrRootIsLatest,
	rootledgertypes.ErrWriteAuthorityMismatch,
}

// Classify returns the class of err by its registered identity. Unregistered errors,
// such as rpc or http failures, are transient.
func Classify(err error) ErrorClass {
	switch {
	case querytypes.IsDecodeError(err), querytypes.IsValidationError(err):
		return ClassMalformed
	case errorsmod.IsOf(err, malformedErrors...):
		return ClassMalformed
	case errorsmod.IsOf(err, policyErrors...):
		return ClassPolicy
	default:
		return ClassTransient
	}
}
