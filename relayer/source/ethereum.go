// Package source reads the World ID identity manager on an EVM source chain.
package source

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"

	errorsmod "cosmossdk.io/errors"

	coreerrors "github.com/wormholelabs-xyz/rootsync/modules/core/errors"
	querytypes "github.com/wormholelabs-xyz/rootsync/modules/query/types"
	"github.com/wormholelabs-xyz/rootsync/relayer"
)

// EthClient is the subset of ethclient.Client used to read the source chain.
type EthClient interface {
	HeaderByNumber(ctx context.Context, number *big.Int) (*ethtypes.Header, error)
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

var _ relayer.SourceChain = (*EthereumSource)(nil)

// EthereumSource reads latestRoot() from the identity manager.
type EthereumSource struct {
	client   EthClient
	contract common.Address
}

// NewEthereumSource returns a source reading contract through client.
func NewEthereumSource(client EthClient, contract common.Address) *EthereumSource {
	return &EthereumSource{client: client, contract: contract}
}

// LatestRoot reads the root at the chain head. The call is pinned to the head block so
// the root and block number are consistent.
func (s *EthereumSource) LatestRoot(ctx context.Context) (relayer.SourceRoot, error) {
	header, err := s.client.HeaderByNumber(ctx, nil)
	if err != nil {
		return relayer.SourceRoot{}, errorsmod.Wrapf(coreerrors.ErrTransport, "failed to read head block: %v", err)
	}

	result, err := s.client.CallContract(ctx, ethereum.CallMsg{
		To:   &s.contract,
		Data: querytypes.PackLatestRoot(),
	}, header.Number)
	if err != nil {
		return relayer.SourceRoot{}, errorsmod.Wrapf(coreerrors.ErrTransport, "failed to call latestRoot() at block %s: %v", header.Number, err)
	}

	root, err := querytypes.UnpackLatestRoot(result)
	if err != nil {
		return relayer.SourceRoot{}, err
	}

	return relayer.SourceRoot{Root: root, BlockNumber: header.Number.Uint64()}, nil
}
