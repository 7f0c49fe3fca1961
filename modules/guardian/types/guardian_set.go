package types

import (
	"time"

	"github.com/ethereum/go-ethereum/common"

	errorsmod "cosmossdk.io/errors"
)

// GuardianSet is a versioned list of guardian keys. A set is immutable once published
// except for ExpirationTime, which is set exactly once when the set is superseded.
// Times are unix seconds; an ExpirationTime of zero means the set never expires.
type GuardianSet struct {
	Index          uint32           `json:"index"`
	Keys           []common.Address `json:"keys"`
	CreationTime   uint32           `json:"creation_time"`
	ExpirationTime uint32           `json:"expiration_time"`
}

// NewGuardianSet creates a new GuardianSet instance.
func NewGuardianSet(index uint32, keys []common.Address, creationTime uint32) GuardianSet {
	return GuardianSet{
		Index:        index,
		Keys:         keys,
		CreationTime: creationTime,
	}
}

// IsActive reports whether signatures from this set are accepted at now.
func (gs GuardianSet) IsActive(now time.Time) bool {
	return gs.ExpirationTime == 0 || now.Unix() <= int64(gs.ExpirationTime)
}

// Validate performs basic validation of the guardian set.
func (gs GuardianSet) Validate() error {
	if len(gs.Keys) == 0 {
		return errorsmod.Wrapf(ErrInvalidGuardianSet, "guardian set %d has no keys", gs.Index)
	}
	if len(gs.Keys) > MaxGuardians {
		return errorsmod.Wrapf(ErrInvalidGuardianSet, "guardian set %d has %d keys, max %d", gs.Index, len(gs.Keys), MaxGuardians)
	}

	seen := make(map[common.Address]struct{}, len(gs.Keys))
	for i, key := range gs.Keys {
		if key == (common.Address{}) {
			return errorsmod.Wrapf(ErrInvalidGuardianSet, "guardian %d of set %d is the zero address", i, gs.Index)
		}
		if _, ok := seen[key]; ok {
			return errorsmod.Wrapf(ErrInvalidGuardianSet, "duplicate guardian %s in set %d", key, gs.Index)
		}
		seen[key] = struct{}{}
	}

	if gs.ExpirationTime != 0 && gs.ExpirationTime < gs.CreationTime {
		return errorsmod.Wrapf(ErrInvalidGuardianSet, "guardian set %d expires (%d) before it was created (%d)", gs.Index, gs.ExpirationTime, gs.CreationTime)
	}
	return nil
}
