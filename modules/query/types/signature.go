package types

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	errorsmod "cosmossdk.io/errors"
)

// GuardianSignature is a signature over a query digest by the guardian at Index in a guardian set.
type GuardianSignature struct {
	Index     uint8
	Signature [SignatureLength]byte
}

// QuorumProof is the ordered list of guardian signatures claimed against one guardian set.
type QuorumProof struct {
	GuardianSetIndex uint32
	Signatures       []GuardianSignature
}

// RecoveredIndices returns the guardian index of every signature, in proof order.
func (p QuorumProof) RecoveredIndices() []uint8 {
	indices := make([]uint8, len(p.Signatures))
	for i, sig := range p.Signatures {
		indices[i] = sig.Index
	}
	return indices
}

// Bytes returns the query proxy encoding: signature followed by the guardian index.
func (s GuardianSignature) Bytes() []byte {
	bz := make([]byte, 0, GuardianSignatureLength)
	bz = append(bz, s.Signature[:]...)
	return append(bz, s.Index)
}

// String implements fmt.Stringer.
func (s GuardianSignature) String() string {
	return fmt.Sprintf("%d:%s", s.Index, hexutil.Encode(s.Signature[:]))
}

// NewGuardianSignature builds a GuardianSignature from a raw 65 byte signature.
func NewGuardianSignature(index uint8, sig []byte) (GuardianSignature, error) {
	if len(sig) != SignatureLength {
		return GuardianSignature{}, errorsmod.Wrapf(ErrInvalidSignature, "expected %d byte signature, got %d", SignatureLength, len(sig))
	}
	gs := GuardianSignature{Index: index}
	copy(gs.Signature[:], sig)
	return gs, nil
}

// ParseGuardianSignature splits a 66 byte query proxy signature into the signature and the
// trailing guardian index.
func ParseGuardianSignature(bz []byte) (GuardianSignature, error) {
	if len(bz) != GuardianSignatureLength {
		return GuardianSignature{}, errorsmod.Wrapf(ErrInvalidSignature, "expected %d bytes, got %d", GuardianSignatureLength, len(bz))
	}
	return NewGuardianSignature(bz[SignatureLength], bz[:SignatureLength])
}

// ParseGuardianSignatureHex parses a hex encoded query proxy signature, with or without 0x prefix.
func ParseGuardianSignatureHex(s string) (GuardianSignature, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	bz := common.FromHex(s)
	if len(bz)*2 != len(s) {
		return GuardianSignature{}, errorsmod.Wrapf(ErrInvalidSignature, "invalid hex signature %q", s)
	}
	return ParseGuardianSignature(bz)
}

// ParseGuardianSignatures parses the signatures array returned by the query proxy.
func ParseGuardianSignatures(sigs []string) ([]GuardianSignature, error) {
	parsed := make([]GuardianSignature, 0, len(sigs))
	for i, s := range sigs {
		sig, err := ParseGuardianSignatureHex(s)
		if err != nil {
			return nil, errorsmod.Wrapf(err, "signature %d", i)
		}
		parsed = append(parsed, sig)
	}
	return parsed, nil
}
