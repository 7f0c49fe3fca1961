package types

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	errorsmod "cosmossdk.io/errors"
)

// LatestRootMethod is the identity manager view returning the current Merkle root.
const LatestRootMethod = "latestRoot"

const identityManagerABIJSON = `[{"inputs":[],"name":"latestRoot","outputs":[{"internalType":"uint256","name":"","type":"uint256"}],"stateMutability":"view","type":"function"}]`

var identityManagerABI = mustParseABI(identityManagerABIJSON)

func mustParseABI(def string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(def))
	if err != nil {
		panic(err)
	}
	return parsed
}

// LatestRootSelector returns the 4 byte function selector of latestRoot().
func LatestRootSelector() [4]byte {
	var selector [4]byte
	copy(selector[:], identityManagerABI.Methods[LatestRootMethod].ID)
	return selector
}

// PackLatestRoot returns the call data for latestRoot().
func PackLatestRoot() []byte {
	bz, err := identityManagerABI.Pack(LatestRootMethod)
	if err != nil {
		// a method without inputs cannot fail to pack
		panic(err)
	}
	return bz
}

// UnpackLatestRoot decodes the uint256 returned by latestRoot() into a 32 byte root.
func UnpackLatestRoot(result []byte) (common.Hash, error) {
	values, err := identityManagerABI.Unpack(LatestRootMethod, result)
	if err != nil {
		return common.Hash{}, errorsmod.Wrapf(ErrFailedToParse, "latestRoot result: %v", err)
	}
	if len(values) != 1 {
		return common.Hash{}, errorsmod.Wrapf(ErrFailedToParse, "latestRoot returned %d values", len(values))
	}
	root, ok := values[0].(*big.Int)
	if !ok {
		return common.Hash{}, errorsmod.Wrapf(ErrFailedToParse, "latestRoot returned %T", values[0])
	}
	return common.BigToHash(root), nil
}
