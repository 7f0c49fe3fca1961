package types

import (
	"github.com/ethereum/go-ethereum/common"

	errorsmod "cosmossdk.io/errors"
)

// GenesisState defines the root ledger genesis state. A nil Config leaves the ledger
// uninitialized.
type GenesisState struct {
	Config      *Config      `json:"config,omitempty"`
	LatestRoots []LatestRoot `json:"latest_roots"`
	Roots       []Root       `json:"roots"`
}

// DefaultGenesisState returns an uninitialized ledger.
func DefaultGenesisState() *GenesisState {
	return &GenesisState{}
}

// Validate performs basic genesis state validation returning an error upon any
// failure.
func (gs GenesisState) Validate() error {
	if gs.Config == nil {
		if len(gs.LatestRoots) > 0 || len(gs.Roots) > 0 {
			return errorsmod.Wrap(ErrNotInitialized, "roots require a config")
		}
		return nil
	}
	if err := gs.Config.Validate(); err != nil {
		return err
	}

	latest := make(map[VerificationType]bool, len(gs.LatestRoots))
	for _, lr := range gs.LatestRoots {
		if latest[lr.VerificationType] {
			return errorsmod.Wrapf(ErrRootAlreadyExists, "duplicate latest root for verification type %s", lr.VerificationType)
		}
		latest[lr.VerificationType] = true
	}

	type rootKey struct {
		vt   VerificationType
		hash common.Hash
	}
	seen := make(map[rootKey]bool, len(gs.Roots))
	for _, root := range gs.Roots {
		key := rootKey{root.VerificationType, root.Hash}
		if seen[key] {
			return errorsmod.Wrapf(ErrRootAlreadyExists, "duplicate root %s", root.Hash)
		}
		seen[key] = true
	}
	return nil
}
