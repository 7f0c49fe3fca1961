package types

import (
	"bytes"
	"encoding/binary"
	"math"

	"github.com/ethereum/go-ethereum/common"

	errorsmod "cosmossdk.io/errors"
)

const (
	// MaxSignaturesPerBatch bounds the number of signatures carried by one sig verify record.
	MaxSignaturesPerBatch = 7

	// sigVerifyOffsetsLength is the size of one offsets entry:
	// sig offset u16, sig ix u8, address offset u16, address ix u8, message offset u16, message size u16, message ix u8.
	sigVerifyOffsetsLength = 11

	// sigVerifyEntryLength is a signature followed by its 20 byte address placeholder.
	sigVerifyEntryLength = SignatureLength + common.AddressLength
)

// SigVerifyBatch is one serialized secp256k1 sig verify record together with the guardian
// index of each signature it carries, in order.
type SigVerifyBatch struct {
	SignerIndices []uint8
	Data          []byte
}

// SigVerifyPayload is the content of a decoded sig verify record.
type SigVerifyPayload struct {
	Signatures [][SignatureLength]byte
	Addresses  []common.Address
	Message    []byte
}

type sigVerifyOffsets struct {
	SignatureOffset uint16
	SignatureIx     uint8
	AddressOffset   uint16
	AddressIx       uint8
	MessageOffset   uint16
	MessageSize     uint16
	MessageIx       uint8
}

// EncodeQuorumProof splits the proof into sig verify records of at most MaxSignaturesPerBatch
// signatures, preserving order. keys is the guardian set the proof is claimed against; the
// key at each signature's index is written as its address placeholder. An empty proof still
// yields a single record with zero signatures.
func EncodeQuorumProof(proof QuorumProof, keys []common.Address, message []byte) ([]SigVerifyBatch, error) {
	if len(proof.Signatures) == 0 {
		return []SigVerifyBatch{{SignerIndices: []uint8{}, Data: []byte{0}}}, nil
	}

	var batches []SigVerifyBatch
	for start := 0; start < len(proof.Signatures); start += MaxSignaturesPerBatch {
		end := min(start+MaxSignaturesPerBatch, len(proof.Signatures))
		chunk := proof.Signatures[start:end]

		sigs := make([][SignatureLength]byte, len(chunk))
		addrs := make([]common.Address, len(chunk))
		indices := make([]uint8, len(chunk))
		for i, sig := range chunk {
			if int(sig.Index) >= len(keys) {
				return nil, errorsmod.Wrapf(ErrInvalidSigVerifyData, "guardian index %d out of range for %d keys", sig.Index, len(keys))
			}
			sigs[i] = sig.Signature
			addrs[i] = keys[sig.Index]
			indices[i] = sig.Index
		}

		data, err := encodeSigVerify(sigs, addrs, message)
		if err != nil {
			return nil, err
		}
		batches = append(batches, SigVerifyBatch{SignerIndices: indices, Data: data})
	}

	return batches, nil
}

func encodeSigVerify(sigs [][SignatureLength]byte, addrs []common.Address, message []byte) ([]byte, error) {
	n := len(sigs)
	dataLoc := 1 + n*sigVerifyOffsetsLength
	messageOffset := dataLoc + n*sigVerifyEntryLength
	if messageOffset > math.MaxUint16 || len(message) > math.MaxUint16 {
		return nil, errorsmod.Wrapf(ErrInvalidSigVerifyData, "record too large: message offset %d, message size %d", messageOffset, len(message))
	}

	bz := make([]byte, messageOffset+len(message))
	bz[0] = uint8(n)
	for i := range n {
		sigOffset := dataLoc + i*sigVerifyEntryLength
		addrOffset := sigOffset + SignatureLength

		entry := bz[1+i*sigVerifyOffsetsLength:]
		binary.LittleEndian.PutUint16(entry[0:], uint16(sigOffset))
		entry[2] = 0
		binary.LittleEndian.PutUint16(entry[3:], uint16(addrOffset))
		entry[5] = 0
		binary.LittleEndian.PutUint16(entry[6:], uint16(messageOffset))
		binary.LittleEndian.PutUint16(entry[8:], uint16(len(message)))
		entry[10] = 0

		copy(bz[sigOffset:], sigs[i][:])
		copy(bz[addrOffset:], addrs[i].Bytes())
	}
	copy(bz[messageOffset:], message)

	return bz, nil
}

// DecodeSigVerifyBatch strictly parses a sig verify record. Every offsets entry must point
// inside the record, all entries must reference the same QueryMessageLen message and all
// instruction indices must be zero. A record with zero signatures decodes to an empty payload.
func DecodeSigVerifyBatch(bz []byte) (*SigVerifyPayload, error) {
	if len(bz) == 0 {
		return nil, errorsmod.Wrap(ErrInvalidSigVerifyData, "empty record")
	}

	n := int(bz[0])
	if n == 0 {
		if len(bz) != 1 {
			return nil, errorsmod.Wrapf(ErrInvalidSigVerifyData, "%d trailing bytes after empty record", len(bz)-1)
		}
		return &SigVerifyPayload{}, nil
	}
	if len(bz) < 1+n*sigVerifyOffsetsLength {
		return nil, errorsmod.Wrapf(ErrInvalidSigVerifyData, "record of %d bytes too short for %d offsets", len(bz), n)
	}

	payload := &SigVerifyPayload{
		Signatures: make([][SignatureLength]byte, 0, n),
		Addresses:  make([]common.Address, 0, n),
	}

	var messageOffset int
	for i := range n {
		entry := bz[1+i*sigVerifyOffsetsLength:]
		offsets := sigVerifyOffsets{
			SignatureOffset: binary.LittleEndian.Uint16(entry[0:]),
			SignatureIx:     entry[2],
			AddressOffset:   binary.LittleEndian.Uint16(entry[3:]),
			AddressIx:       entry[5],
			MessageOffset:   binary.LittleEndian.Uint16(entry[6:]),
			MessageSize:     binary.LittleEndian.Uint16(entry[8:]),
			MessageIx:       entry[10],
		}

		if offsets.SignatureIx != 0 || offsets.AddressIx != 0 || offsets.MessageIx != 0 {
			return nil, errorsmod.Wrapf(ErrInvalidSigVerifyData, "signature %d references another record", i)
		}
		if int(offsets.MessageSize) != QueryMessageLen {
			return nil, errorsmod.Wrapf(ErrInvalidSigVerifyData, "signature %d message size %d, expected %d", i, offsets.MessageSize, QueryMessageLen)
		}
		if i > 0 && int(offsets.MessageOffset) != messageOffset {
			return nil, errorsmod.Wrapf(ErrInvalidSigVerifyData, "signature %d message offset %d differs from %d", i, offsets.MessageOffset, messageOffset)
		}
		messageOffset = int(offsets.MessageOffset)

		sig, err := slice(bz, int(offsets.SignatureOffset), SignatureLength)
		if err != nil {
			return nil, errorsmod.Wrapf(err, "signature %d", i)
		}
		addr, err := slice(bz, int(offsets.AddressOffset), common.AddressLength)
		if err != nil {
			return nil, errorsmod.Wrapf(err, "address %d", i)
		}

		var s [SignatureLength]byte
		copy(s[:], sig)
		payload.Signatures = append(payload.Signatures, s)
		payload.Addresses = append(payload.Addresses, common.BytesToAddress(addr))
	}

	message, err := slice(bz, messageOffset, QueryMessageLen)
	if err != nil {
		return nil, errorsmod.Wrap(err, "message")
	}
	payload.Message = bytes.Clone(message)

	return payload, nil
}

func slice(bz []byte, offset, size int) ([]byte, error) {
	if offset+size > len(bz) {
		return nil, errorsmod.Wrapf(ErrInvalidSigVerifyData, "range [%d, %d) outside record of %d bytes", offset, offset+size, len(bz))
	}
	return bz[offset : offset+size], nil
}
