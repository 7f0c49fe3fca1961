package types

import (
	"github.com/ethereum/go-ethereum/common"

	errorsmod "cosmossdk.io/errors"
)

// EthCallData is a single contract call inside an EVM query.
type EthCallData struct {
	To   common.Address
	Data []byte
}

// EthCallQueryRequest executes calls at a block identified by number (hex) or hash.
type EthCallQueryRequest struct {
	BlockID  string
	CallData []EthCallData
}

// EthCallByTimestampQueryRequest executes calls at the block matching a target timestamp (µs).
type EthCallByTimestampQueryRequest struct {
	TargetTimestamp      uint64
	TargetBlockIDHint    string
	FollowingBlockIDHint string
	CallData             []EthCallData
}

// EthCallWithFinalityQueryRequest executes calls at a block once it reaches the given finality.
type EthCallWithFinalityQueryRequest struct {
	BlockID  string
	Finality string
	CallData []EthCallData
}

// EthCallQueryResponse carries the block the calls executed against and one result per call.
// BlockTime is in microseconds.
type EthCallQueryResponse struct {
	BlockNumber uint64
	BlockHash   common.Hash
	BlockTime   uint64
	Results     [][]byte
}

// EthCallByTimestampQueryResponse carries the target block and the block that follows it.
type EthCallByTimestampQueryResponse struct {
	TargetBlockNumber    uint64
	TargetBlockHash      common.Hash
	TargetBlockTime      uint64
	FollowingBlockNumber uint64
	FollowingBlockHash   common.Hash
	FollowingBlockTime   uint64
	Results              [][]byte
}

// EthCallWithFinalityQueryResponse has the same layout as EthCallQueryResponse.
type EthCallWithFinalityQueryResponse struct {
	BlockNumber uint64
	BlockHash   common.Hash
	BlockTime   uint64
	Results     [][]byte
}

var (
	_ ChainSpecificQuery = (*EthCallQueryRequest)(nil)
	_ ChainSpecificQuery = (*EthCallByTimestampQueryRequest)(nil)
	_ ChainSpecificQuery = (*EthCallWithFinalityQueryRequest)(nil)

	_ ChainSpecificResponse = (*EthCallQueryResponse)(nil)
	_ ChainSpecificResponse = (*EthCallByTimestampQueryResponse)(nil)
	_ ChainSpecificResponse = (*EthCallWithFinalityQueryResponse)(nil)
)

func (*EthCallQueryRequest) Type() ChainQueryType             { return EthCallQueryType }
func (*EthCallByTimestampQueryRequest) Type() ChainQueryType  { return EthCallByTimestampQueryType }
func (*EthCallWithFinalityQueryRequest) Type() ChainQueryType { return EthCallWithFinalityQueryType }

func (*EthCallQueryResponse) Type() ChainQueryType             { return EthCallQueryType }
func (*EthCallByTimestampQueryResponse) Type() ChainQueryType  { return EthCallByTimestampQueryType }
func (*EthCallWithFinalityQueryResponse) Type() ChainQueryType { return EthCallWithFinalityQueryType }

// Calls returns the call data of the request.
func (q *EthCallQueryRequest) Calls() []EthCallData             { return q.CallData }
func (q *EthCallByTimestampQueryRequest) Calls() []EthCallData  { return q.CallData }
func (q *EthCallWithFinalityQueryRequest) Calls() []EthCallData { return q.CallData }

// Block returns the block the calls were executed against. For timestamp queries this is the target block.
func (r *EthCallQueryResponse) Block() (uint64, common.Hash, uint64) {
	return r.BlockNumber, r.BlockHash, r.BlockTime
}

func (r *EthCallByTimestampQueryResponse) Block() (uint64, common.Hash, uint64) {
	return r.TargetBlockNumber, r.TargetBlockHash, r.TargetBlockTime
}

func (r *EthCallWithFinalityQueryResponse) Block() (uint64, common.Hash, uint64) {
	return r.BlockNumber, r.BlockHash, r.BlockTime
}

func (r *EthCallQueryResponse) CallResults() [][]byte             { return r.Results }
func (r *EthCallByTimestampQueryResponse) CallResults() [][]byte  { return r.Results }
func (r *EthCallWithFinalityQueryResponse) CallResults() [][]byte { return r.Results }

// Marshal implements ChainSpecificQuery.
func (q *EthCallQueryRequest) Marshal() ([]byte, error) {
	var w writer
	if err := w.bytes([]byte(q.BlockID)); err != nil {
		return nil, err
	}
	if err := writeCallData(&w, q.CallData); err != nil {
		return nil, err
	}
	return w.buf, nil
}

// Marshal implements ChainSpecificQuery.
func (q *EthCallByTimestampQueryRequest) Marshal() ([]byte, error) {
	var w writer
	w.uint64(q.TargetTimestamp)
	if err := w.bytes([]byte(q.TargetBlockIDHint)); err != nil {
		return nil, err
	}
	if err := w.bytes([]byte(q.FollowingBlockIDHint)); err != nil {
		return nil, err
	}
	if err := writeCallData(&w, q.CallData); err != nil {
		return nil, err
	}
	return w.buf, nil
}

// Marshal implements ChainSpecificQuery.
func (q *EthCallWithFinalityQueryRequest) Marshal() ([]byte, error) {
	var w writer
	if err := w.bytes([]byte(q.BlockID)); err != nil {
		return nil, err
	}
	if err := w.bytes([]byte(q.Finality)); err != nil {
		return nil, err
	}
	if err := writeCallData(&w, q.CallData); err != nil {
		return nil, err
	}
	return w.buf, nil
}

// Marshal implements ChainSpecificResponse.
func (r *EthCallQueryResponse) Marshal() ([]byte, error) {
	var w writer
	w.uint64(r.BlockNumber)
	w.raw(r.BlockHash.Bytes())
	w.uint64(r.BlockTime)
	if err := writeResults(&w, r.Results); err != nil {
		return nil, err
	}
	return w.buf, nil
}

// Marshal implements ChainSpecificResponse.
func (r *EthCallByTimestampQueryResponse) Marshal() ([]byte, error) {
	var w writer
	w.uint64(r.TargetBlockNumber)
	w.raw(r.TargetBlockHash.Bytes())
	w.uint64(r.TargetBlockTime)
	w.uint64(r.FollowingBlockNumber)
	w.raw(r.FollowingBlockHash.Bytes())
	w.uint64(r.FollowingBlockTime)
	if err := writeResults(&w, r.Results); err != nil {
		return nil, err
	}
	return w.buf, nil
}

// Marshal implements ChainSpecificResponse.
func (r *EthCallWithFinalityQueryResponse) Marshal() ([]byte, error) {
	return (*EthCallQueryResponse)(r).Marshal()
}

func writeCallData(w *writer, calls []EthCallData) error {
	if err := w.count(len(calls), "calls"); err != nil {
		return err
	}
	for _, call := range calls {
		w.raw(call.To.Bytes())
		if err := w.bytes(call.Data); err != nil {
			return err
		}
	}
	return nil
}

func writeResults(w *writer, results [][]byte) error {
	if err := w.count(len(results), "results"); err != nil {
		return err
	}
	for _, result := range results {
		if err := w.bytes(result); err != nil {
			return err
		}
	}
	return nil
}

func readCallData(r *reader) ([]EthCallData, error) {
	n, err := r.uint8()
	if err != nil {
		return nil, err
	}
	var calls []EthCallData
	for range n {
		to, err := r.address()
		if err != nil {
			return nil, err
		}
		data, err := r.bytes()
		if err != nil {
			return nil, err
		}
		calls = append(calls, EthCallData{To: to, Data: data})
	}
	return calls, nil
}

func readResults(r *reader) ([][]byte, error) {
	n, err := r.uint8()
	if err != nil {
		return nil, err
	}
	var results [][]byte
	for range n {
		result, err := r.bytes()
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}
	return results, nil
}

func unmarshalEthCallQueryRequest(bz []byte) (*EthCallQueryRequest, error) {
	r := newReader(bz)
	blockID, err := r.string()
	if err != nil {
		return nil, errorsmod.Wrap(err, "eth_call block id")
	}
	calls, err := readCallData(r)
	if err != nil {
		return nil, errorsmod.Wrap(err, "eth_call call data")
	}
	if err := r.finish(); err != nil {
		return nil, errorsmod.Wrap(err, "eth_call request")
	}
	return &EthCallQueryRequest{BlockID: blockID, CallData: calls}, nil
}

func unmarshalEthCallByTimestampQueryRequest(bz []byte) (*EthCallByTimestampQueryRequest, error) {
	r := newReader(bz)
	q := &EthCallByTimestampQueryRequest{}
	var err error
	if q.TargetTimestamp, err = r.uint64(); err != nil {
		return nil, errorsmod.Wrap(err, "eth_call_by_timestamp target timestamp")
	}
	if q.TargetBlockIDHint, err = r.string(); err != nil {
		return nil, errorsmod.Wrap(err, "eth_call_by_timestamp target block hint")
	}
	if q.FollowingBlockIDHint, err = r.string(); err != nil {
		return nil, errorsmod.Wrap(err, "eth_call_by_timestamp following block hint")
	}
	if q.CallData, err = readCallData(r); err != nil {
		return nil, errorsmod.Wrap(err, "eth_call_by_timestamp call data")
	}
	if err := r.finish(); err != nil {
		return nil, errorsmod.Wrap(err, "eth_call_by_timestamp request")
	}
	return q, nil
}

func unmarshalEthCallWithFinalityQueryRequest(bz []byte) (*EthCallWithFinalityQueryRequest, error) {
	r := newReader(bz)
	q := &EthCallWithFinalityQueryRequest{}
	var err error
	if q.BlockID, err = r.string(); err != nil {
		return nil, errorsmod.Wrap(err, "eth_call_with_finality block id")
	}
	if q.Finality, err = r.string(); err != nil {
		return nil, errorsmod.Wrap(err, "eth_call_with_finality finality")
	}
	if q.CallData, err = readCallData(r); err != nil {
		return nil, errorsmod.Wrap(err, "eth_call_with_finality call data")
	}
	if err := r.finish(); err != nil {
		return nil, errorsmod.Wrap(err, "eth_call_with_finality request")
	}
	return q, nil
}

func unmarshalEthCallQueryResponse(bz []byte) (*EthCallQueryResponse, error) {
	r := newReader(bz)
	resp := &EthCallQueryResponse{}
	var err error
	if resp.BlockNumber, err = r.uint64(); err != nil {
		return nil, errorsmod.Wrap(err, "eth_call block number")
	}
	if resp.BlockHash, err = r.hash(); err != nil {
		return nil, errorsmod.Wrap(err, "eth_call block hash")
	}
	if resp.BlockTime, err = r.uint64(); err != nil {
		return nil, errorsmod.Wrap(err, "eth_call block time")
	}
	if resp.Results, err = readResults(r); err != nil {
		return nil, errorsmod.Wrap(err, "eth_call results")
	}
	if err := r.finish(); err != nil {
		return nil, errorsmod.Wrap(err, "eth_call response")
	}
	return resp, nil
}

func unmarshalEthCallByTimestampQueryResponse(bz []byte) (*EthCallByTimestampQueryResponse, error) {
	r := newReader(bz)
	resp := &EthCallByTimestampQueryResponse{}
	var err error
	if resp.TargetBlockNumber, err = r.uint64(); err != nil {
		return nil, errorsmod.Wrap(err, "eth_call_by_timestamp target block number")
	}
	if resp.TargetBlockHash, err = r.hash(); err != nil {
		return nil, errorsmod.Wrap(err, "eth_call_by_timestamp target block hash")
	}
	if resp.TargetBlockTime, err = r.uint64(); err != nil {
		return nil, errorsmod.Wrap(err, "eth_call_by_timestamp target block time")
	}
	if resp.FollowingBlockNumber, err = r.uint64(); err != nil {
		return nil, errorsmod.Wrap(err, "eth_call_by_timestamp following block number")
	}
	if resp.FollowingBlockHash, err = r.hash(); err != nil {
		return nil, errorsmod.Wrap(err, "eth_call_by_timestamp following block hash")
	}
	if resp.FollowingBlockTime, err = r.uint64(); err != nil {
		return nil, errorsmod.Wrap(err, "eth_call_by_timestamp following block time")
	}
	if resp.Results, err = readResults(r); err != nil {
		return nil, errorsmod.Wrap(err, "eth_call_by_timestamp results")
	}
	if err := r.finish(); err != nil {
		return nil, errorsmod.Wrap(err, "eth_call_by_timestamp response")
	}
	return resp, nil
}

func unmarshalEthCallWithFinalityQueryResponse(bz []byte) (*EthCallWithFinalityQueryResponse, error) {
	resp, err := unmarshalEthCallQueryResponse(bz)
	if err != nil {
		return nil, errorsmod.Wrap(err, "eth_call_with_finality")
	}
	return (*EthCallWithFinalityQueryResponse)(resp), nil
}
