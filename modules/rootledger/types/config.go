package types

import (
	"github.com/ethereum/go-ethereum/common"

	errorsmod "cosmossdk.io/errors"

	coreerrors "github.com/wormholelabs-xyz/rootsync/modules/core/errors"
)

const (
	// DefaultRootExpiry is how long a root stays valid after its source block time: 24 hours.
	DefaultRootExpiry uint64 = 24 * 60 * 60

	// DefaultAllowedUpdateStaleness is the maximum age of an attested block at admission: 5 minutes.
	DefaultAllowedUpdateStaleness uint64 = 5 * 60
)

// Config is the ledger policy. Durations are in seconds. Only Owner may change it;
// ownership moves in two steps through PendingOwner.
type Config struct {
	Owner                  common.Address  `json:"owner"`
	PendingOwner           *common.Address `json:"pending_owner,omitempty" rlp:"nil"`
	RootExpiry             uint64          `json:"root_expiry"`
	AllowedUpdateStaleness uint64          `json:"allowed_update_staleness"`
}

// NewConfig creates a new Config instance owned by owner.
func NewConfig(owner common.Address, rootExpiry, allowedUpdateStaleness uint64) Config {
	return Config{
		Owner:                  owner,
		RootExpiry:             rootExpiry,
		AllowedUpdateStaleness: allowedUpdateStaleness,
	}
}

// IsOwner reports whether addr currently owns the ledger.
func (c Config) IsOwner(addr common.Address) bool {
	return c.Owner == addr
}

// Validate performs basic validation of the config.
func (c Config) Validate() error {
	if c.Owner == (common.Address{}) {
		return errorsmod.Wrap(coreerrors.ErrInvalidAddress, "owner cannot be the zero address")
	}
	if c.PendingOwner != nil && *c.PendingOwner == (common.Address{}) {
		return errorsmod.Wrap(ErrInvalidPendingOwner, "pending owner cannot be the zero address")
	}
	return nil
}
