package types

import (
	"encoding/binary"
	"math"

	"github.com/ethereum/go-ethereum/common"

	errorsmod "cosmossdk.io/errors"
)

// reader consumes a big endian byte stream. Every read is bounds checked and reports
// ErrFailedToParse rather than panicking on short input.
type reader struct {
	buf []byte
	off int
}

func newReader(bz []byte) *reader {
	return &reader{buf: bz}
}

func (r *reader) remaining() int {
	return len(r.buf) - r.off
}

func (r *reader) next(n int) ([]byte, error) {
	if n < 0 || r.remaining() < n {
		return nil, errorsmod.Wrapf(ErrFailedToParse, "unexpected end of input at offset %d: need %d bytes, have %d", r.off, n, r.remaining())
	}
	bz := r.buf[r.off : r.off+n]
	r.off += n
	return bz, nil
}

func (r *reader) uint8() (uint8, error) {
	bz, err := r.next(1)
	if err != nil {
		return 0, err
	}
	return bz[0], nil
}

func (r *reader) uint16() (uint16, error) {
	bz, err := r.next(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(bz), nil
}

func (r *reader) uint32() (uint32, error) {
	bz, err := r.next(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(bz), nil
}

func (r *reader) uint64() (uint64, error) {
	bz, err := r.next(8)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(bz), nil
}

func (r *reader) hash() (common.Hash, error) {
	bz, err := r.next(common.HashLength)
	if err != nil {
		return common.Hash{}, err
	}
	return common.BytesToHash(bz), nil
}

func (r *reader) address() (common.Address, error) {
	bz, err := r.next(common.AddressLength)
	if err != nil {
		return common.Address{}, err
	}
	return common.BytesToAddress(bz), nil
}

// bytes reads a u32 length prefixed byte string. The returned slice is a copy, nil when
// the string is empty.
func (r *reader) bytes() ([]byte, error) {
	n, err := r.uint32()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	if uint64(n) > uint64(r.remaining()) {
		return nil, errorsmod.Wrapf(ErrFailedToParse, "length prefix %d exceeds remaining %d bytes", n, r.remaining())
	}
	bz, err := r.next(int(n))
	if err != nil {
		return nil, err
	}
	return common.CopyBytes(bz), nil
}

func (r *reader) string() (string, error) {
	bz, err := r.bytes()
	if err != nil {
		return "", err
	}
	return string(bz), nil
}

// finish rejects trailing bytes.
func (r *reader) finish() error {
	if r.remaining() != 0 {
		return errorsmod.Wrapf(ErrFailedToParse, "%d trailing bytes at offset %d", r.remaining(), r.off)
	}
	return nil
}

// writer builds a big endian byte stream.
type writer struct {
	buf []byte
}

func (w *writer) uint8(v uint8) {
	w.buf = append(w.buf, v)
}

func (w *writer) uint16(v uint16) {
	w.buf = binary.BigEndian.AppendUint16(w.buf, v)
}

func (w *writer) uint32(v uint32) {
	w.buf = binary.BigEndian.AppendUint32(w.buf, v)
}

func (w *writer) uint64(v uint64) {
	w.buf = binary.BigEndian.AppendUint64(w.buf, v)
}

func (w *writer) raw(bz []byte) {
	w.buf = append(w.buf, bz...)
}

func (w *writer) bytes(bz []byte) error {
	if uint64(len(bz)) > math.MaxUint32 {
		return errorsmod.Wrapf(ErrEncoding, "byte string of length %d exceeds u32 prefix", len(bz))
	}
	w.uint32(uint32(len(bz)))
	w.raw(bz)
	return nil
}

func (w *writer) count(n int, what string) error {
	if n > math.MaxUint8 {
		return errorsmod.Wrapf(ErrEncoding, "too many %s: %d", what, n)
	}
	w.uint8(uint8(n))
	return nil
}
