package types

import errorsmod "cosmossdk.io/errors"

var (
	ErrGuardianSetNotFound       = errorsmod.Register(ModuleName, 2, "guardian set not found")
	ErrInvalidGuardianSet        = errorsmod.Register(ModuleName, 3, "invalid guardian set")
	ErrInvalidGuardianSetIndex   = errorsmod.Register(ModuleName, 4, "invalid guardian set index")
	ErrGuardianSetAlreadyExpired = errorsmod.Register(ModuleName, 5, "guardian set expiration already set")
)
