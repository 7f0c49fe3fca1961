package types

import (
	"github.com/ethereum/go-ethereum/common"

	errorsmod "cosmossdk.io/errors"
)

// ChainSpecificResponse is the body of a per-chain query response.
type ChainSpecificResponse interface {
	Type() ChainQueryType
	Marshal() ([]byte, error)
}

// EthResponse is implemented by every EVM query response type.
type EthResponse interface {
	ChainSpecificResponse
	Block() (number uint64, hash common.Hash, timeMicros uint64)
	CallResults() [][]byte
}

// PerChainQueryResponse is the result of one per-chain request.
type PerChainQueryResponse struct {
	ChainID  uint16
	Response ChainSpecificResponse
}

// QueryResponse is the attested result of a cross-chain query: the request as the
// guardians saw it followed by one response per request.
type QueryResponse struct {
	Version        uint8
	RequestChainID uint16
	// RequestID is the request signature for off-chain requests and the
	// transaction hash for on-chain ones.
	RequestID []byte
	Request   QueryRequest
	Responses []PerChainQueryResponse
}

func requestIDLength(requestChainID uint16) int {
	if requestChainID == OffChainRequestChainID {
		return OffChainRequestIDLength
	}
	return OnChainRequestIDLength
}

// Marshal serializes the response. For any response produced by DecodeQueryResponse
// the output is byte-identical to the decoded input.
func (q *QueryResponse) Marshal() ([]byte, error) {
	if want := requestIDLength(q.RequestChainID); len(q.RequestID) != want {
		return nil, errorsmod.Wrapf(ErrEncoding, "request id must be %d bytes for request chain %d, got %d", want, q.RequestChainID, len(q.RequestID))
	}

	request, err := q.Request.Marshal()
	if err != nil {
		return nil, errorsmod.Wrap(err, "query request")
	}

	var w writer
	w.uint8(q.Version)
	w.uint16(q.RequestChainID)
	w.raw(q.RequestID)
	if err := w.bytes(request); err != nil {
		return nil, err
	}
	if err := w.count(len(q.Responses), "per chain responses"); err != nil {
		return nil, err
	}
	for i, resp := range q.Responses {
		if resp.Response == nil {
			return nil, errorsmod.Wrapf(ErrEncoding, "response %d has no body", i)
		}
		body, err := resp.Response.Marshal()
		if err != nil {
			return nil, errorsmod.Wrapf(err, "response %d", i)
		}
		w.uint16(resp.ChainID)
		w.uint8(uint8(resp.Response.Type()))
		if err := w.bytes(body); err != nil {
			return nil, err
		}
	}
	return w.buf, nil
}

// DecodeQueryResponse strictly parses attested query response bytes. Truncated input,
// trailing bytes at any nesting level, unknown versions and unsupported query types are
// rejected; see IsDecodeError.
func DecodeQueryResponse(bz []byte) (*QueryResponse, error) {
	r := newReader(bz)

	version, err := r.uint8()
	if err != nil {
		return nil, errorsmod.Wrap(err, "response version")
	}
	if version != ResponseVersion {
		return nil, wrapParse(ErrInvalidVersion, "expected response version %d, got %d", ResponseVersion, version)
	}

	requestChainID, err := r.uint16()
	if err != nil {
		return nil, errorsmod.Wrap(err, "request chain id")
	}

	requestID, err := r.next(requestIDLength(requestChainID))
	if err != nil {
		return nil, errorsmod.Wrap(err, "request id")
	}

	requestBz, err := r.bytes()
	if err != nil {
		return nil, errorsmod.Wrap(err, "request")
	}
	request, err := UnmarshalQueryRequest(requestBz)
	if err != nil {
		return nil, err
	}

	n, err := r.uint8()
	if err != nil {
		return nil, errorsmod.Wrap(err, "number of per chain responses")
	}

	var responses []PerChainQueryResponse
	for i := range n {
		chainID, err := r.uint16()
		if err != nil {
			return nil, errorsmod.Wrapf(err, "response %d chain id", i)
		}
		queryType, err := r.uint8()
		if err != nil {
			return nil, errorsmod.Wrapf(err, "response %d type", i)
		}
		body, err := r.bytes()
		if err != nil {
			return nil, errorsmod.Wrapf(err, "response %d body", i)
		}
		resp, err := unmarshalChainSpecificResponse(ChainQueryType(queryType), body)
		if err != nil {
			return nil, errorsmod.Wrapf(err, "response %d", i)
		}
		responses = append(responses, PerChainQueryResponse{ChainID: chainID, Response: resp})
	}

	if err := r.finish(); err != nil {
		return nil, errorsmod.Wrap(err, "query response")
	}

	return &QueryResponse{
		Version:        version,
		RequestChainID: requestChainID,
		RequestID:      common.CopyBytes(requestID),
		Request:        *request,
		Responses:      responses,
	}, nil
}

func unmarshalChainSpecificResponse(t ChainQueryType, body []byte) (ChainSpecificResponse, error) {
	switch t {
	case EthCallQueryType:
		return unmarshalEthCallQueryResponse(body)
	case EthCallByTimestampQueryType:
		return unmarshalEthCallByTimestampQueryResponse(body)
	case EthCallWithFinalityQueryType:
		return unmarshalEthCallWithFinalityQueryResponse(body)
	default:
		return nil, wrapParse(ErrUnsupportedQueryType, "response type %s (%d)", t, uint8(t))
	}
}
