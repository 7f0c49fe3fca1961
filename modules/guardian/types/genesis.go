package types

import (
	errorsmod "cosmossdk.io/errors"
)

// GenesisState defines the guardian registry genesis state
type GenesisState struct {
	GuardianSets []GuardianSet `json:"guardian_sets"`
	CurrentIndex uint32        `json:"current_index"`
}

// DefaultGenesisState returns an empty registry.
func DefaultGenesisState() *GenesisState {
	return &GenesisState{}
}

// Validate performs basic genesis state validation returning an error upon any
// failure.
func (gs GenesisState) Validate() error {
	seen := make(map[uint32]bool, len(gs.GuardianSets))
	for _, set := range gs.GuardianSets {
		if seen[set.Index] {
			return errorsmod.Wrapf(ErrInvalidGuardianSetIndex, "duplicate guardian set %d", set.Index)
		}
		seen[set.Index] = true

		if err := set.Validate(); err != nil {
			return err
		}
	}

	if len(gs.GuardianSets) > 0 && !seen[gs.CurrentIndex] {
		return errorsmod.Wrapf(ErrGuardianSetNotFound, "current guardian set %d is not in genesis", gs.CurrentIndex)
	}
	return nil
}
