package attestation

import (
	"context"
	"crypto/ecdsa"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common/hexutil"

	errorsmod "cosmossdk.io/errors"

	coreerrors "github.com/wormholelabs-xyz/rootsync/modules/core/errors"
	querytypes "github.com/wormholelabs-xyz/rootsync/modules/query/types"
	"github.com/wormholelabs-xyz/rootsync/relayer"
	"github.com/wormholelabs-xyz/rootsync/relayer/internal/telemetry"
	"github.com/wormholelabs-xyz/rootsync/relayer/source"
)

var _ relayer.AttestationSource = (*Mock)(nil)

// Mock executes requests against source chain nodes itself and signs the responses
// with fixture guardian keys, ordered by guardian index.
type Mock struct {
	clients   map[uint16]source.EthClient
	guardians []*ecdsa.PrivateKey
}

// NewMock returns a mock query proxy over clients keyed by Wormhole chain id.
func NewMock(clients map[uint16]source.EthClient, guardians []*ecdsa.PrivateKey) *Mock {
	return &Mock{clients: clients, guardians: guardians}
}

// Attest implements relayer.AttestationSource.
func (m *Mock) Attest(ctx context.Context, request []byte) (*relayer.Attestation, error) {
	att, err := m.attest(ctx, request)
	telemetry.ReportAttestation("mock", err == nil)
	return att, err
}

func (m *Mock) attest(ctx context.Context, request []byte) (*relayer.Attestation, error) {
	req, err := querytypes.UnmarshalQueryRequest(request)
	if err != nil {
		return nil, err
	}

	responses := make([]querytypes.PerChainQueryResponse, len(req.Requests))
	for i, pcr := range req.Requests {
		resp, err := m.execute(ctx, pcr)
		if err != nil {
			return nil, errorsmod.Wrapf(err, "request %d", i)
		}
		responses[i] = querytypes.PerChainQueryResponse{ChainID: pcr.ChainID, Response: resp}
	}

	responseBz, err := querytypes.NewOffChainResponse(*req, nil, responses...).Marshal()
	if err != nil {
		return nil, err
	}

	att := &relayer.Attestation{Bytes: responseBz}
	for i, key := range m.guardians {
		sig, err := querytypes.SignQuery(key, uint8(i), responseBz)
		if err != nil {
			return nil, err
		}
		att.Signatures = append(att.Signatures, sig)
	}
	return att, nil
}

func (m *Mock) execute(ctx context.Context, pcr querytypes.PerChainQueryRequest) (querytypes.ChainSpecificResponse, error) {
	client, ok := m.clients[pcr.ChainID]
	if !ok {
		return nil, errorsmod.Wrapf(querytypes.ErrInvalidRequestChainID, "no node for chain %d", pcr.ChainID)
	}

	var blockID string
	switch q := pcr.Query.(type) {
	case *querytypes.EthCallQueryRequest:
		blockID = q.BlockID
	case *querytypes.EthCallWithFinalityQueryRequest:
		blockID = q.BlockID
	default:
		return nil, errorsmod.Wrapf(querytypes.ErrUnsupportedQueryType, "mock cannot execute %s", pcr.Query.Type())
	}

	number, err := hexutil.DecodeBig(blockID)
	if err != nil {
		return nil, errorsmod.Wrapf(querytypes.ErrFailedToParse, "block id %q is not a block number: %v", blockID, err)
	}

	header, err := client.HeaderByNumber(ctx, number)
	if err != nil {
		return nil, errorsmod.Wrapf(coreerrors.ErrTransport, "failed to read block %s: %v", number, err)
	}

	calls := pcr.Query.(querytypes.EthQuery).Calls()
	results := make([][]byte, len(calls))
	for i, call := range calls {
		to := call.To
		result, err := client.CallContract(ctx, ethereum.CallMsg{To: &to, Data: call.Data}, number)
		if err != nil {
			return nil, errorsmod.Wrapf(coreerrors.ErrTransport, "call %d at block %s: %v", i, number, err)
		}
		results[i] = result
	}

	shape := querytypes.ExpectedShape{QueryType: pcr.Query.Type()}
	return shape.NewResponse(number.Uint64(), header.Hash(), header.Time*1_000_000, results)
}

