package types

import errorsmod "cosmossdk.io/errors"

// Codes follow the on-chain program: 0x100 root management, 0x200 proof verification,
// 0x1000 admin.
var (
	ErrWriteAuthorityMismatch  = errorsmod.Register(ModuleName, 0x100, "write authority mismatch")
	ErrInvalidMessageHash      = errorsmod.Register(ModuleName, 0x102, "invalid message hash")
	ErrEmptyGuardianSignatures = errorsmod.Register(ModuleName, 0x108, "empty guardian signatures")
	ErrSignerIndicesMismatch   = errorsmod.Register(ModuleName, 0x109, "signer indices mismatch")
	ErrStaleBlockNum           = errorsmod.Register(ModuleName, 0x119, "stale block number")
	ErrStaleBlockTime          = errorsmod.Register(ModuleName, 0x120, "stale block time")
	ErrRootHashMismatch        = errorsmod.Register(ModuleName, 0x124, "root hash mismatch")
	ErrNoopExpiryUpdate        = errorsmod.Register(ModuleName, 0x125, "noop expiry update")
	ErrRootUnexpired           = errorsmod.Register(ModuleName, 0x126, "root unexpired")
	ErrRootIsLatest            = errorsmod.Register(ModuleName, 0x127, "root is latest")
	ErrRootAlreadyExists       = errorsmod.Register(ModuleName, 0x128, "root already exists")
	ErrRootNotFound            = errorsmod.Register(ModuleName, 0x129, "root not found")
	ErrSessionNotFound         = errorsmod.Register(ModuleName, 0x12a, "verification session not found")

	ErrRootExpired                    = errorsmod.Register(ModuleName, 0x200, "root expired")
	ErrGroth16VerifierUnavailable     = errorsmod.Register(ModuleName, 0x201, "groth16 verifier unavailable")
	ErrGroth16ProofVerificationFailed = errorsmod.Register(ModuleName, 0x202, "groth16 proof verification failed")

	ErrInvalidPendingOwner = errorsmod.Register(ModuleName, 0x1000, "invalid pending owner")
	ErrAlreadyInitialized  = errorsmod.Register(ModuleName, 0x1001, "already initialized")
	ErrNotInitialized      = errorsmod.Register(ModuleName, 0x1002, "not initialized")
)
