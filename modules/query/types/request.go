package types

import (
	errorsmod "cosmossdk.io/errors"
)

// ChainSpecificQuery is the body of a per-chain query request.
type ChainSpecificQuery interface {
	Type() ChainQueryType
	Marshal() ([]byte, error)
}

// EthQuery is implemented by every EVM query request type.
type EthQuery interface {
	ChainSpecificQuery
	Calls() []EthCallData
}

// PerChainQueryRequest pairs a chain with the query to run on it.
type PerChainQueryRequest struct {
	ChainID uint16
	Query   ChainSpecificQuery
}

// QueryRequest is the request the guardians executed. Requests are paired with
// responses by position.
type QueryRequest struct {
	Version  uint8
	Nonce    uint32
	Requests []PerChainQueryRequest
}

// Marshal serializes the request.
func (q *QueryRequest) Marshal() ([]byte, error) {
	var w writer
	w.uint8(q.Version)
	w.uint32(q.Nonce)
	if err := w.count(len(q.Requests), "per chain requests"); err != nil {
		return nil, err
	}
	for i, req := range q.Requests {
		if req.Query == nil {
			return nil, errorsmod.Wrapf(ErrEncoding, "request %d has no query", i)
		}
		body, err := req.Query.Marshal()
		if err != nil {
			return nil, errorsmod.Wrapf(err, "request %d", i)
		}
		w.uint16(req.ChainID)
		w.uint8(uint8(req.Query.Type()))
		if err := w.bytes(body); err != nil {
			return nil, err
		}
	}
	return w.buf, nil
}

// UnmarshalQueryRequest strictly parses a serialized QueryRequest.
func UnmarshalQueryRequest(bz []byte) (*QueryRequest, error) {
	r := newReader(bz)

	version, err := r.uint8()
	if err != nil {
		return nil, errorsmod.Wrap(err, "request version")
	}
	if version != RequestVersion {
		return nil, wrapParse(ErrInvalidVersion, "expected request version %d, got %d", RequestVersion, version)
	}

	nonce, err := r.uint32()
	if err != nil {
		return nil, errorsmod.Wrap(err, "request nonce")
	}

	n, err := r.uint8()
	if err != nil {
		return nil, errorsmod.Wrap(err, "number of per chain requests")
	}

	var requests []PerChainQueryRequest
	for i := range n {
		chainID, err := r.uint16()
		if err != nil {
			return nil, errorsmod.Wrapf(err, "request %d chain id", i)
		}
		queryType, err := r.uint8()
		if err != nil {
			return nil, errorsmod.Wrapf(err, "request %d type", i)
		}
		body, err := r.bytes()
		if err != nil {
			return nil, errorsmod.Wrapf(err, "request %d body", i)
		}
		query, err := unmarshalChainSpecificQuery(ChainQueryType(queryType), body)
		if err != nil {
			return nil, errorsmod.Wrapf(err, "request %d", i)
		}
		requests = append(requests, PerChainQueryRequest{ChainID: chainID, Query: query})
	}

	if err := r.finish(); err != nil {
		return nil, errorsmod.Wrap(err, "query request")
	}

	return &QueryRequest{Version: version, Nonce: nonce, Requests: requests}, nil
}

func unmarshalChainSpecificQuery(t ChainQueryType, body []byte) (ChainSpecificQuery, error) {
	switch t {
	case EthCallQueryType:
		return unmarshalEthCallQueryRequest(body)
	case EthCallByTimestampQueryType:
		return unmarshalEthCallByTimestampQueryRequest(body)
	case EthCallWithFinalityQueryType:
		return unmarshalEthCallWithFinalityQueryRequest(body)
	default:
		return nil, wrapParse(ErrUnsupportedQueryType, "request type %s (%d)", t, uint8(t))
	}
}
