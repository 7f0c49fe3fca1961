package quorum

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	errorsmod "cosmossdk.io/errors"

	guardiantypes "github.com/wormholelabs-xyz/rootsync/modules/guardian/types"
	querytypes "github.com/wormholelabs-xyz/rootsync/modules/query/types"
)

// recoveryIDIndex is the byte position of the recovery ID (v) in the signature
const recoveryIDIndex = 64

// Quorum returns the number of signatures required from a guardian set of size n:
// strictly more than two thirds.
func Quorum(n int) int {
	return n*2/3 + 1
}

// Verify checks that proof carries a quorum of valid signatures over message from set at
// time now. Guardian indices must be strictly increasing and every signature must recover
// to the guardian key at its index.
func Verify(message []byte, proof querytypes.QuorumProof, set guardiantypes.GuardianSet, now time.Time) error {
	if !set.IsActive(now) {
		return errorsmod.Wrapf(ErrGuardianSetExpired, "guardian set %d expired at %d", set.Index, set.ExpirationTime)
	}
	if proof.GuardianSetIndex != set.Index {
		return errorsmod.Wrapf(ErrGuardianSetMismatch, "proof claims guardian set %d, verifying against %d", proof.GuardianSetIndex, set.Index)
	}
	if len(proof.Signatures) == 0 {
		return errorsmod.Wrap(ErrNoQuorum, "signatures cannot be empty")
	}

	digest := querytypes.MessageDigest(message)
	last := -1
	for i, sig := range proof.Signatures {
		if err := verifySignature(digest, sig, set.Keys, last); err != nil {
			return errorsmod.Wrapf(err, "signature %d", i)
		}
		last = int(sig.Index)
	}

	if required := Quorum(len(set.Keys)); len(proof.Signatures) < required {
		return errorsmod.Wrapf(ErrNoQuorum, "quorum not met: required %d, got %d", required, len(proof.Signatures))
	}

	return nil
}

// verifySignature checks a single signature whose index must be greater than last.
func verifySignature(digest common.Hash, sig querytypes.GuardianSignature, keys []common.Address, last int) error {
	index := int(sig.Index)
	if index >= len(keys) {
		return errorsmod.Wrapf(ErrGuardianIndexOutOfRange, "index %d, guardian set has %d keys", index, len(keys))
	}
	if index <= last {
		return errorsmod.Wrapf(ErrGuardianIndexNonIncreasing, "index %d follows %d", index, last)
	}

	recovered, err := recoverAddress(digest, sig.Signature)
	if err != nil {
		return err
	}
	if recovered != keys[index] {
		return errorsmod.Wrapf(ErrInvalidSignature, "recovered %s, guardian %d is %s", recovered, index, keys[index])
	}
	return nil
}

func recoverAddress(digest common.Hash, sig [querytypes.SignatureLength]byte) (common.Address, error) {
	pubKey, err := crypto.SigToPub(digest[:], normalizeSignature(sig))
	if err != nil {
		return common.Address{}, errorsmod.Wrapf(ErrInvalidGuardianKeyRecovery, "%v", err)
	}
	if pubKey == nil {
		return common.Address{}, errorsmod.Wrap(ErrInvalidGuardianKeyRecovery, "recovered public key is nil")
	}
	return crypto.PubkeyToAddress(*pubKey), nil
}

// normalizeSignature converts the ECDSA recovery ID (v) from Ethereum format (27/28)
// to raw format (0/1), which is what crypto.SigToPub expects.
func normalizeSignature(sig [querytypes.SignatureLength]byte) []byte {
	normalized := sig
	switch normalized[recoveryIDIndex] {
	case 27:
		normalized[recoveryIDIndex] = 0
	case 28:
		normalized[recoveryIDIndex] = 1
	}
	return normalized[:]
}
