package source_test

import (
	"context"
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	coreerrors "github.com/wormholelabs-xyz/rootsync/modules/core/errors"
	querytypes "github.com/wormholelabs-xyz/rootsync/modules/query/types"
	"github.com/wormholelabs-xyz/rootsync/relayer/source"
	rootsynctesting "github.com/wormholelabs-xyz/rootsync/testing"
)

func TestLatestRoot(t *testing.T) {
	root := rootsynctesting.HashOf("root")

	var (
		client   *rootsynctesting.FakeEthClient
		contract common.Address
	)

	testCases := []struct {
		name     string
		malleate func()
		expErr   error
	}{
		{
			"success",
			func() {},
			nil,
		},
		{
			"head unavailable",
			func() {
				client.HeaderErr = errors.New("503 service unavailable")
			},
			coreerrors.ErrTransport,
		},
		{
			"call reverted",
			func() {
				client.CallErr = errors.New("execution reverted")
			},
			coreerrors.ErrTransport,
		},
		{
			"no contract at address",
			func() {
				contract = common.HexToAddress("0x01")
			},
			querytypes.ErrFailedToParse,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			client = rootsynctesting.NewFakeEthClient(20_000_000, root)
			contract = rootsynctesting.IdentityManager

			tc.malleate()

			got, err := source.NewEthereumSource(client, contract).LatestRoot(context.Background())
			if tc.expErr != nil {
				require.ErrorIs(t, err, tc.expErr)
				return
			}

			require.NoError(t, err)
			require.Equal(t, root, got.Root)
			require.Equal(t, uint64(20_000_000), got.BlockNumber)
			// the call is pinned to the head block rather than "latest"
			require.Equal(t, []uint64{20_000_000}, client.Calls)
		})
	}
}
