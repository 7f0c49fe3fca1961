package types

import (
	"github.com/ethereum/go-ethereum/common"

	errorsmod "cosmossdk.io/errors"
)

// ExpectedShape describes the one query a response is allowed to answer.
type ExpectedShape struct {
	ChainID   uint16
	QueryType ChainQueryType
	Contract  common.Address
	Selector  [4]byte
	// Finality is only checked for EthCallWithFinality queries.
	Finality    string
	ResultWidth int
}

// ValidatedResult is what a response proved once it matched an ExpectedShape.
type ValidatedResult struct {
	RootHash    common.Hash
	BlockNumber uint64
	BlockHash   common.Hash
	// BlockTime is in microseconds.
	BlockTime uint64
}

// NewLatestRootShape returns the shape of an eth_call of latestRoot() on the identity manager.
func NewLatestRootShape(chainID uint16, contract common.Address) ExpectedShape {
	return ExpectedShape{
		ChainID:     chainID,
		QueryType:   EthCallQueryType,
		Contract:    contract,
		Selector:    LatestRootSelector(),
		ResultWidth: common.HashLength,
	}
}

// Validate performs basic validation of the shape.
func (s ExpectedShape) Validate() error {
	switch s.QueryType {
	case EthCallQueryType, EthCallByTimestampQueryType:
	case EthCallWithFinalityQueryType:
		if s.Finality == "" {
			return errorsmod.Wrap(ErrInvalidRequestFinality, "finality is required for eth_call_with_finality")
		}
	default:
		return errorsmod.Wrapf(ErrUnsupportedQueryType, "expected shape query type %s", s.QueryType)
	}
	if s.Contract == (common.Address{}) {
		return errorsmod.Wrap(ErrInvalidRequestContract, "contract cannot be the zero address")
	}
	if s.ResultWidth != common.HashLength {
		return errorsmod.Wrapf(ErrInvalidResponseResultLength, "result width must be %d, got %d", common.HashLength, s.ResultWidth)
	}
	return nil
}
