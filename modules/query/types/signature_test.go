package types_test

import (
	"encoding/hex"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"

	"github.com/wormholelabs-xyz/rootsync/modules/query/types"
	rootsynctesting "github.com/wormholelabs-xyz/rootsync/testing"
)

func TestQueryMessage(t *testing.T) {
	bz := fixture().Marshal(t)

	message := types.QueryMessage(bz)
	require.Len(t, message, types.QueryMessageLen)
	require.Equal(t, 67, types.QueryMessageLen)
	require.True(t, strings.HasPrefix(string(message), types.MessagePrefix))
	require.Equal(t, crypto.Keccak256(bz), message[len(types.MessagePrefix):])
	require.Equal(t, crypto.Keccak256Hash(message), types.QueryDigest(bz))
}

func TestSignQuery(t *testing.T) {
	guardians := rootsynctesting.NewGuardians(t, 1)
	bz := fixture().Marshal(t)

	sig, err := types.SignQuery(guardians.Keys[0], 0, bz)
	require.NoError(t, err)

	digest := types.QueryDigest(bz)
	pub, err := crypto.SigToPub(digest.Bytes(), sig.Signature[:])
	require.NoError(t, err)
	require.Equal(t, guardians.Addresses()[0], crypto.PubkeyToAddress(*pub))
}

func TestParseGuardianSignatureHex(t *testing.T) {
	guardians := rootsynctesting.NewGuardians(t, 4)
	bz := fixture().Marshal(t)
	sig := guardians.Sign(t, 3, bz)
	encoded := hex.EncodeToString(sig.Bytes())

	testCases := []struct {
		name   string
		input  string
		expErr error
	}{
		{"success", encoded, nil},
		{"success: 0x prefix", "0x" + encoded, nil},
		{"success: upper case", strings.ToUpper(encoded), nil},
		{"signature without index", encoded[:2*types.SignatureLength], types.ErrInvalidSignature},
		{"odd length", encoded[1:], types.ErrInvalidSignature},
		{"not hex", "zz" + encoded[2:], types.ErrInvalidSignature},
		{"empty", "", types.ErrInvalidSignature},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			parsed, err := types.ParseGuardianSignatureHex(tc.input)
			if tc.expErr == nil {
				require.NoError(t, err)
				require.Equal(t, sig, parsed)
				require.Equal(t, uint8(3), parsed.Index)
			} else {
				require.ErrorIs(t, err, tc.expErr)
			}
		})
	}
}

func TestParseGuardianSignatures(t *testing.T) {
	guardians := rootsynctesting.NewGuardians(t, 3)
	bz := fixture().Marshal(t)

	sigs, err := types.ParseGuardianSignatures(guardians.SignHex(t, bz, 2, 0))
	require.NoError(t, err)
	require.Equal(t, []uint8{2, 0}, types.QuorumProof{Signatures: sigs}.RecoveredIndices())

	_, err = types.ParseGuardianSignatures([]string{"0x00"})
	require.ErrorIs(t, err, types.ErrInvalidSignature)
}

func TestLatestRootABI(t *testing.T) {
	selector := types.LatestRootSelector()
	require.Equal(t, crypto.Keccak256([]byte("latestRoot()"))[:4], selector[:])
	require.Equal(t, selector[:], types.PackLatestRoot())

	root := rootsynctesting.HashOf("root")
	unpacked, err := types.UnpackLatestRoot(root.Bytes())
	require.NoError(t, err)
	require.Equal(t, root, unpacked)

	_, err = types.UnpackLatestRoot(root.Bytes()[1:])
	require.ErrorIs(t, err, types.ErrFailedToParse)
}

func TestNewRequest(t *testing.T) {
	shape := rootsynctesting.LatestRootShape

	request, err := shape.NewRequest(255, 9)
	require.NoError(t, err)
	require.Equal(t, uint32(9), request.Nonce)
	query := request.Requests[0].Query.(*types.EthCallQueryRequest)
	require.Equal(t, "0xff", query.BlockID)
	require.Equal(t, []types.EthCallData{{To: shape.Contract, Data: types.PackLatestRoot()}}, query.CallData)

	shape.QueryType = types.EthCallByTimestampQueryType
	_, err = shape.NewRequest(255, 9)
	require.ErrorIs(t, err, types.ErrUnsupportedQueryType)

	_, err = shape.NewResponse(255, common.Hash{}, 0, nil)
	require.ErrorIs(t, err, types.ErrUnsupportedQueryType)
}

func TestNewOffChainResponse(t *testing.T) {
	request, err := rootsynctesting.LatestRootShape.NewRequest(1, 1)
	require.NoError(t, err)

	resp := types.NewOffChainResponse(*request, []byte{0xaa, 0xbb})
	require.Equal(t, types.OffChainRequestChainID, resp.RequestChainID)
	require.Len(t, resp.RequestID, types.OffChainRequestIDLength)
	require.Equal(t, []byte{0xaa, 0xbb}, resp.RequestID[:2])
	require.Equal(t, make([]byte, types.OffChainRequestIDLength-2), resp.RequestID[2:])
}
