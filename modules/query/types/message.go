package types

import (
	"crypto/ecdsa"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	errorsmod "cosmossdk.io/errors"
)

// QueryMessage returns the message guardians attest to for the given response bytes:
// MessagePrefix || keccak256(bytes).
func QueryMessage(responseBz []byte) []byte {
	message := make([]byte, 0, QueryMessageLen)
	message = append(message, MessagePrefix...)
	return append(message, crypto.Keccak256(responseBz)...)
}

// MessageDigest is the 32 byte hash a guardian signs for a query message.
func MessageDigest(message []byte) common.Hash {
	return crypto.Keccak256Hash(message)
}

// QueryDigest is MessageDigest(QueryMessage(responseBz)).
func QueryDigest(responseBz []byte) common.Hash {
	return MessageDigest(QueryMessage(responseBz))
}

// SignQuery signs the query message of responseBz with a guardian key.
func SignQuery(key *ecdsa.PrivateKey, index uint8, responseBz []byte) (GuardianSignature, error) {
	digest := QueryDigest(responseBz)
	sig, err := crypto.Sign(digest.Bytes(), key)
	if err != nil {
		return GuardianSignature{}, errorsmod.Wrapf(ErrInvalidSignature, "guardian %d: %v", index, err)
	}
	return NewGuardianSignature(index, sig)
}
