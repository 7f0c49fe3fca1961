package errors

import (
	errorsmod "cosmossdk.io/errors"
)

const codespace = "rootsync"

var (
	// ErrUnauthorized is used whenever a request without sufficient
	// authorization is handled.
	ErrUnauthorized = errorsmod.Register(codespace, 2, "unauthorized")

	// ErrInvalidAddress is used when an address is found to be invalid.
	ErrInvalidAddress = errorsmod.Register(codespace, 3, "invalid address")

	// ErrInvalidRequest defines an error where the request contains
	// invalid data.
	ErrInvalidRequest = errorsmod.Register(codespace, 4, "invalid request")

	// ErrInvalidType defines an error an invalid type.
	ErrInvalidType = errorsmod.Register(codespace, 6, "invalid type")

	// ErrLogic defines an internal error of the ledger, e.g. an invariant that
	// is violated or a state change that could not be committed.
	ErrLogic = errorsmod.Register(codespace, 7, "internal logic error")

	// ErrTransport is used when a collaborator outside the ledger (rpc node,
	// query proxy) could not be reached or returned an unusable reply.
	ErrTransport = errorsmod.Register(codespace, 8, "transport error")
)
