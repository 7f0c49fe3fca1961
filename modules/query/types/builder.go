package types

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	errorsmod "cosmossdk.io/errors"
)

// NewRequest builds the off-chain request for the shape's call, anchored at blockNumber.
// By-timestamp shapes cannot be anchored at a block number.
func (s ExpectedShape) NewRequest(blockNumber uint64, nonce uint32) (*QueryRequest, error) {
	calls := []EthCallData{{To: s.Contract, Data: s.Selector[:]}}
	blockID := hexutil.EncodeUint64(blockNumber)

	var query ChainSpecificQuery
	switch s.QueryType {
	case EthCallQueryType:
		query = &EthCallQueryRequest{BlockID: blockID, CallData: calls}
	case EthCallWithFinalityQueryType:
		query = &EthCallWithFinalityQueryRequest{BlockID: blockID, Finality: s.Finality, CallData: calls}
	default:
		return nil, errorsmod.Wrapf(ErrUnsupportedQueryType, "cannot anchor %s at a block number", s.QueryType)
	}

	return &QueryRequest{
		Version:  RequestVersion,
		Nonce:    nonce,
		Requests: []PerChainQueryRequest{{ChainID: s.ChainID, Query: query}},
	}, nil
}

// NewResponse builds the per-chain response of the shape's query type for a block.
func (s ExpectedShape) NewResponse(blockNumber uint64, blockHash common.Hash, blockTimeMicros uint64, results [][]byte) (ChainSpecificResponse, error) {
	switch s.QueryType {
	case EthCallQueryType:
		return &EthCallQueryResponse{BlockNumber: blockNumber, BlockHash: blockHash, BlockTime: blockTimeMicros, Results: results}, nil
	case EthCallWithFinalityQueryType:
		return &EthCallWithFinalityQueryResponse{BlockNumber: blockNumber, BlockHash: blockHash, BlockTime: blockTimeMicros, Results: results}, nil
	default:
		return nil, errorsmod.Wrapf(ErrUnsupportedQueryType, "cannot build a %s response for a single block", s.QueryType)
	}
}

// NewOffChainResponse pairs an off-chain request with its per-chain responses.
func NewOffChainResponse(request QueryRequest, requestSignature []byte, responses ...PerChainQueryResponse) *QueryResponse {
	requestID := make([]byte, OffChainRequestIDLength)
	copy(requestID, requestSignature)
	return &QueryResponse{
		Version:        ResponseVersion,
		RequestChainID: OffChainRequestChainID,
		RequestID:      requestID,
		Request:        request,
		Responses:      responses,
	}
}
