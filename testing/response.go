package rootsynctesting

import (
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"

	querytypes "github.com/wormholelabs-xyz/rootsync/modules/query/types"
)

var (
	// IdentityManager is the World ID identity manager address used by fixtures.
	IdentityManager = common.HexToAddress("0xf7134CE138832c1456F2a91D64621eE90c2bddEa")

	// LatestRootShape is the expected shape used by fixtures.
	LatestRootShape = querytypes.NewLatestRootShape(2, IdentityManager)
)

// LatestRootResponse describes a query response answering latestRoot() at one block.
type LatestRootResponse struct {
	Shape       querytypes.ExpectedShape
	Root        common.Hash
	BlockNumber uint64
	BlockHash   common.Hash
	BlockTime   time.Time
	Nonce       uint32
}

// NewLatestRootResponse returns a well formed response of LatestRootShape.
func NewLatestRootResponse(root common.Hash, blockNumber uint64, blockTime time.Time) LatestRootResponse {
	return LatestRootResponse{
		Shape:       LatestRootShape,
		Root:        root,
		BlockNumber: blockNumber,
		BlockHash:   crypto.Keccak256Hash(root.Bytes()),
		BlockTime:   blockTime,
		Nonce:       42,
	}
}

// Build returns the decoded form of the response.
func (r LatestRootResponse) Build(tb testing.TB) *querytypes.QueryResponse {
	tb.Helper()
	request, err := r.Shape.NewRequest(r.BlockNumber, r.Nonce)
	require.NoError(tb, err)

	body, err := r.Shape.NewResponse(r.BlockNumber, r.BlockHash, uint64(r.BlockTime.UnixMicro()), [][]byte{r.Root.Bytes()})
	require.NoError(tb, err)

	return querytypes.NewOffChainResponse(*request, nil, querytypes.PerChainQueryResponse{
		ChainID:  r.Shape.ChainID,
		Response: body,
	})
}

// Marshal returns the response bytes as published by the query proxy.
func (r LatestRootResponse) Marshal(tb testing.TB) []byte {
	tb.Helper()
	bz, err := r.Build(tb).Marshal()
	require.NoError(tb, err)
	return bz
}

// HashOf returns the keccak256 hash of seed.
func HashOf(seed string) common.Hash {
	return crypto.Keccak256Hash([]byte(seed))
}
