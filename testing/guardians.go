package rootsynctesting

import (
	"crypto/ecdsa"
	"encoding/hex"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"

	guardiantypes "github.com/wormholelabs-xyz/rootsync/modules/guardian/types"
	querytypes "github.com/wormholelabs-xyz/rootsync/modules/query/types"
	"github.com/wormholelabs-xyz/rootsync/relayer/config"
)

// DevnetGuardianKey is the private key of the single guardian of the Wormhole devnet.
const DevnetGuardianKey = config.DevnetGuardianKey

// Guardians is a set of guardian keys, ordered by guardian index.
type Guardians struct {
	Keys []*ecdsa.PrivateKey
}

// NewGuardians generates n guardian keys.
func NewGuardians(tb testing.TB, n int) *Guardians {
	tb.Helper()
	keys := make([]*ecdsa.PrivateKey, n)
	for i := range keys {
		key, err := crypto.GenerateKey()
		require.NoError(tb, err)
		keys[i] = key
	}
	return &Guardians{Keys: keys}
}

// DevnetGuardians returns the devnet guardian set of one.
func DevnetGuardians(tb testing.TB) *Guardians {
	tb.Helper()
	key, err := crypto.HexToECDSA(DevnetGuardianKey)
	require.NoError(tb, err)
	return &Guardians{Keys: []*ecdsa.PrivateKey{key}}
}

// Addresses returns the guardian addresses in index order.
func (g *Guardians) Addresses() []common.Address {
	addrs := make([]common.Address, len(g.Keys))
	for i, key := range g.Keys {
		addrs[i] = crypto.PubkeyToAddress(key.PublicKey)
	}
	return addrs
}

// GuardianSet returns the guardians as a guardian set that never expires.
func (g *Guardians) GuardianSet(index uint32) guardiantypes.GuardianSet {
	return guardiantypes.NewGuardianSet(index, g.Addresses(), 0)
}

// Sign returns the signature of the guardian at index over responseBz.
func (g *Guardians) Sign(tb testing.TB, index uint8, responseBz []byte) querytypes.GuardianSignature {
	tb.Helper()
	sig, err := querytypes.SignQuery(g.Keys[index], index, responseBz)
	require.NoError(tb, err)
	return sig
}

// Proof signs responseBz with the guardians at indices, in the order given.
func (g *Guardians) Proof(tb testing.TB, setIndex uint32, responseBz []byte, indices ...uint8) querytypes.QuorumProof {
	tb.Helper()
	proof := querytypes.QuorumProof{GuardianSetIndex: setIndex}
	for _, index := range indices {
		proof.Signatures = append(proof.Signatures, g.Sign(tb, index, responseBz))
	}
	return proof
}

// SignHex signs responseBz in the query proxy format: hex of signature followed by index.
func (g *Guardians) SignHex(tb testing.TB, responseBz []byte, indices ...uint8) []string {
	tb.Helper()
	sigs := make([]string, len(indices))
	for i, index := range indices {
		sigs[i] = hex.EncodeToString(g.Sign(tb, index, responseBz).Bytes())
	}
	return sigs
}

// Indices returns the guardian indices [0, n).
func Indices(n int) []uint8 {
	indices := make([]uint8, n)
	for i := range indices {
		indices[i] = uint8(i)
	}
	return indices
}
