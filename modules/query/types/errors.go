package types

import errorsmod "cosmossdk.io/errors"

var (
	ErrFailedToParse        = errorsmod.Register(ModuleName, 2, "failed to parse query bytes")
	ErrUnsupportedQueryType = errorsmod.Register(ModuleName, 3, "unsupported query type")
	ErrInvalidVersion       = errorsmod.Register(ModuleName, 4, "invalid query version")
	ErrEncoding             = errorsmod.Register(ModuleName, 5, "query encoding error")
	ErrInvalidSignature     = errorsmod.Register(ModuleName, 6, "invalid guardian signature encoding")
	ErrInvalidSigVerifyData = errorsmod.Register(ModuleName, 7, "invalid sig verify data")

	ErrInvalidNumberOfRequests      = errorsmod.Register(ModuleName, 20, "invalid number of requests")
	ErrInvalidNumberOfResponses     = errorsmod.Register(ModuleName, 21, "invalid number of responses")
	ErrInvalidRequestChainID        = errorsmod.Register(ModuleName, 22, "invalid request chain id")
	ErrInvalidResponseChainID       = errorsmod.Register(ModuleName, 23, "invalid response chain id")
	ErrInvalidRequestType           = errorsmod.Register(ModuleName, 24, "invalid request type")
	ErrInvalidResponseType          = errorsmod.Register(ModuleName, 25, "invalid response type")
	ErrInvalidRequestFinality       = errorsmod.Register(ModuleName, 26, "invalid request finality")
	ErrInvalidRequestCallDataLength = errorsmod.Register(ModuleName, 27, "invalid request call data length")
	ErrInvalidRequestContract       = errorsmod.Register(ModuleName, 28, "invalid request contract")
	ErrInvalidRequestSignature      = errorsmod.Register(ModuleName, 29, "invalid request function signature")
	ErrInvalidResponseResultsLength = errorsmod.Register(ModuleName, 30, "invalid response results length")
	ErrInvalidResponseResultLength  = errorsmod.Register(ModuleName, 31, "invalid response result length")
)

// parseError is a decode failure that keeps its own registered error, such as
// ErrInvalidVersion, and also matches ErrFailedToParse.
type parseError struct {
	err error
}

func (e parseError) Error() string   { return e.err.Error() }
func (e parseError) Unwrap() []error { return []error{e.err, ErrFailedToParse} }

// wrapParse wraps a registered decode error with a description and marks it as a parse
// failure.
func wrapParse(err error, format string, args ...any) error {
	return parseError{err: errorsmod.Wrapf(err, format, args...)}
}

// IsDecodeError reports whether err came from parsing malformed query bytes.
func IsDecodeError(err error) bool {
	return errorsmod.IsOf(err, ErrFailedToParse, ErrUnsupportedQueryType, ErrInvalidVersion)
}

// IsValidationError reports whether err came from a response that decoded but does not
// answer the expected query.
func IsValidationError(err error) bool {
	return errorsmod.IsOf(err,
		ErrInvalidNumberOfRequests, ErrInvalidNumberOfResponses,
		ErrInvalidRequestChainID, ErrInvalidResponseChainID,
		ErrInvalidRequestType, ErrInvalidResponseType,
		ErrInvalidRequestFinality, ErrInvalidRequestCallDataLength,
		ErrInvalidRequestContract, ErrInvalidRequestSignature,
		ErrInvalidResponseResultsLength, ErrInvalidResponseResultLength,
	)
}
