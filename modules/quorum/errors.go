package quorum

import errorsmod "cosmossdk.io/errors"

// ModuleName is the error codespace of the quorum verifier.
const ModuleName = "quorum"

var (
	ErrGuardianSetExpired         = errorsmod.Register(ModuleName, 2, "guardian set expired")
	ErrNoQuorum                   = errorsmod.Register(ModuleName, 3, "no quorum")
	ErrGuardianIndexOutOfRange    = errorsmod.Register(ModuleName, 4, "guardian index out of range")
	ErrGuardianIndexNonIncreasing = errorsmod.Register(ModuleName, 5, "guardian index non increasing")
	ErrInvalidSignature           = errorsmod.Register(ModuleName, 6, "invalid guardian signature")
	ErrInvalidGuardianKeyRecovery = errorsmod.Register(ModuleName, 7, "guardian key recovery failed")
	ErrGuardianSetMismatch        = errorsmod.Register(ModuleName, 8, "guardian set mismatch")
	ErrMessageMismatch            = errorsmod.Register(ModuleName, 9, "message mismatch")
	ErrInvalidMessage             = errorsmod.Register(ModuleName, 10, "invalid message")
)
