package types

import (
	"math"
	"time"

	"github.com/ethereum/go-ethereum/common"

	querytypes "github.com/wormholelabs-xyz/rootsync/modules/query/types"
)

// Root is an admitted Merkle root. It is created once per (hash, verification type) and
// is immutable except for ExpiryTime. ReadBlockTime is in microseconds, ExpiryTime in seconds.
type Root struct {
	Hash             common.Hash      `json:"hash"`
	VerificationType VerificationType `json:"verification_type"`
	ReadBlockHash    common.Hash      `json:"read_block_hash"`
	ReadBlockNumber  uint64           `json:"read_block_number"`
	ReadBlockTime    uint64           `json:"read_block_time"`
	ExpiryTime       uint64           `json:"expiry_time"`
	RefundRecipient  common.Address   `json:"refund_recipient"`
}

// LatestRoot is the newest admitted root of a verification type. The zero value, with a
// read block number of 0, is the state before any admission.
type LatestRoot struct {
	VerificationType VerificationType `json:"verification_type"`
	Root             common.Hash      `json:"root"`
	ReadBlockHash    common.Hash      `json:"read_block_hash"`
	ReadBlockNumber  uint64           `json:"read_block_number"`
	ReadBlockTime    uint64           `json:"read_block_time"`
}

// NewRoot builds the record admitted for a validated query result.
func NewRoot(vt VerificationType, result querytypes.ValidatedResult, rootExpiry uint64, refundRecipient common.Address) Root {
	return Root{
		Hash:             result.RootHash,
		VerificationType: vt,
		ReadBlockHash:    result.BlockHash,
		ReadBlockNumber:  result.BlockNumber,
		ReadBlockTime:    result.BlockTime,
		ExpiryTime:       ExpiryTime(result.BlockTime, rootExpiry),
		RefundRecipient:  refundRecipient,
	}
}

// NewLatestRoot builds the LatestRoot recorded for a validated query result.
func NewLatestRoot(vt VerificationType, result querytypes.ValidatedResult) LatestRoot {
	return LatestRoot{
		VerificationType: vt,
		Root:             result.RootHash,
		ReadBlockHash:    result.BlockHash,
		ReadBlockNumber:  result.BlockNumber,
		ReadBlockTime:    result.BlockTime,
	}
}

// IsExpired reports whether the root may be cleaned up at now.
func (r Root) IsExpired(now time.Time) bool {
	return UnixSeconds(now) >= r.ExpiryTime
}

// ExpiryTime returns blockTimeMicros in seconds plus rootExpiry, saturating at the maximum uint64.
func ExpiryTime(blockTimeMicros, rootExpiry uint64) uint64 {
	blockTime := blockTimeMicros / MicrosPerSecond
	if blockTime > math.MaxUint64-rootExpiry {
		return math.MaxUint64
	}
	return blockTime + rootExpiry
}

// MinBlockTime returns the oldest block time, in seconds, admissible at now. The
// subtraction saturates at zero so an allowance larger than now never underflows.
func MinBlockTime(now time.Time, allowedUpdateStaleness uint64) uint64 {
	nowSecs := UnixSeconds(now)
	if allowedUpdateStaleness >= nowSecs {
		return 0
	}
	return nowSecs - allowedUpdateStaleness
}

// UnixSeconds returns now as unsigned seconds since the epoch, clamping times before it to zero.
func UnixSeconds(now time.Time) uint64 {
	if now.Unix() < 0 {
		return 0
	}
	return uint64(now.Unix())
}
