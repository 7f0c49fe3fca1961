package rootsynctesting

import (
	"bytes"
	"context"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"

	querytypes "github.com/wormholelabs-xyz/rootsync/modules/query/types"
)

// FakeEthClient is an EVM node holding one identity manager whose latestRoot() answers
// from Roots, keyed by block number.
type FakeEthClient struct {
	mtx sync.Mutex

	Head     uint64
	Contract common.Address
	Roots    map[uint64]common.Hash
	// BlockTime is the timestamp of every block.
	BlockTime time.Time

	HeaderErr error
	CallErr   error

	// Calls records the block number of every contract call.
	Calls []uint64
}

// NewFakeEthClient returns a node at head whose identity manager holds root at head.
func NewFakeEthClient(head uint64, root common.Hash) *FakeEthClient {
	return &FakeEthClient{
		Head:      head,
		Contract:  IdentityManager,
		Roots:     map[uint64]common.Hash{head: root},
		BlockTime: GenesisTime,
	}
}

// Header returns the header the client serves for number.
func (c *FakeEthClient) Header(number uint64) *ethtypes.Header {
	return &ethtypes.Header{
		Number:     new(big.Int).SetUint64(number),
		Time:       uint64(c.BlockTime.Unix()),
		Difficulty: big.NewInt(0),
	}
}

func (c *FakeEthClient) HeaderByNumber(_ context.Context, number *big.Int) (*ethtypes.Header, error) {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	if c.HeaderErr != nil {
		return nil, c.HeaderErr
	}
	if number == nil {
		return c.Header(c.Head), nil
	}
	if number.Uint64() > c.Head {
		return nil, ethereum.NotFound
	}
	return c.Header(number.Uint64()), nil
}

func (c *FakeEthClient) CallContract(_ context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	if c.CallErr != nil {
		return nil, c.CallErr
	}
	if msg.To == nil || *msg.To != c.Contract {
		return nil, nil
	}
	if !bytes.Equal(msg.Data, querytypes.PackLatestRoot()) {
		return nil, fmt.Errorf("execution reverted: unknown selector %x", msg.Data)
	}

	number := c.Head
	if blockNumber != nil {
		number = blockNumber.Uint64()
	}
	c.Calls = append(c.Calls, number)

	root, ok := c.Roots[number]
	if !ok {
		return nil, fmt.Errorf("missing trie node for block %d", number)
	}
	return root.Bytes(), nil
}
