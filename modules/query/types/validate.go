package types

import (
	"bytes"

	"github.com/ethereum/go-ethereum/common"

	errorsmod "cosmossdk.io/errors"
)

// ValidateResponse checks that a decoded response answers exactly the query described by
// shape and extracts the proven result. Signatures are not checked here.
func ValidateResponse(resp *QueryResponse, shape ExpectedShape) (ValidatedResult, error) {
	if err := shape.Validate(); err != nil {
		return ValidatedResult{}, err
	}

	if n := len(resp.Request.Requests); n != 1 {
		return ValidatedResult{}, errorsmod.Wrapf(ErrInvalidNumberOfRequests, "expected 1, got %d", n)
	}
	if n := len(resp.Responses); n != 1 {
		return ValidatedResult{}, errorsmod.Wrapf(ErrInvalidNumberOfResponses, "expected 1, got %d", n)
	}

	request := resp.Request.Requests[0]
	response := resp.Responses[0]

	if request.ChainID != shape.ChainID {
		return ValidatedResult{}, errorsmod.Wrapf(ErrInvalidRequestChainID, "expected %d, got %d", shape.ChainID, request.ChainID)
	}
	if response.ChainID != shape.ChainID {
		return ValidatedResult{}, errorsmod.Wrapf(ErrInvalidResponseChainID, "expected %d, got %d", shape.ChainID, response.ChainID)
	}

	if request.Query.Type() != shape.QueryType {
		return ValidatedResult{}, errorsmod.Wrapf(ErrInvalidRequestType, "expected %s, got %s", shape.QueryType, request.Query.Type())
	}
	if response.Response.Type() != shape.QueryType {
		return ValidatedResult{}, errorsmod.Wrapf(ErrInvalidResponseType, "expected %s, got %s", shape.QueryType, response.Response.Type())
	}

	query, ok := request.Query.(EthQuery)
	if !ok {
		return ValidatedResult{}, errorsmod.Wrapf(ErrInvalidRequestType, "%T is not an evm query", request.Query)
	}
	result, ok := response.Response.(EthResponse)
	if !ok {
		return ValidatedResult{}, errorsmod.Wrapf(ErrInvalidResponseType, "%T is not an evm response", response.Response)
	}

	if finalityQuery, ok := query.(*EthCallWithFinalityQueryRequest); ok && finalityQuery.Finality != shape.Finality {
		return ValidatedResult{}, errorsmod.Wrapf(ErrInvalidRequestFinality, "expected %q, got %q", shape.Finality, finalityQuery.Finality)
	}

	calls := query.Calls()
	if len(calls) != 1 {
		return ValidatedResult{}, errorsmod.Wrapf(ErrInvalidRequestCallDataLength, "expected 1 call, got %d", len(calls))
	}
	if calls[0].To != shape.Contract {
		return ValidatedResult{}, errorsmod.Wrapf(ErrInvalidRequestContract, "expected %s, got %s", shape.Contract, calls[0].To)
	}
	if !bytes.Equal(calls[0].Data, shape.Selector[:]) {
		return ValidatedResult{}, errorsmod.Wrapf(ErrInvalidRequestSignature, "expected %x, got %x", shape.Selector, calls[0].Data)
	}

	results := result.CallResults()
	if len(results) != 1 {
		return ValidatedResult{}, errorsmod.Wrapf(ErrInvalidResponseResultsLength, "expected 1 result, got %d", len(results))
	}
	if len(results[0]) != shape.ResultWidth {
		return ValidatedResult{}, errorsmod.Wrapf(ErrInvalidResponseResultLength, "expected %d bytes, got %d", shape.ResultWidth, len(results[0]))
	}

	number, hash, blockTime := result.Block()
	return ValidatedResult{
		RootHash:    common.BytesToHash(results[0]),
		BlockNumber: number,
		BlockHash:   hash,
		BlockTime:   blockTime,
	}, nil
}
