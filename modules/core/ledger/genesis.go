package ledger

import (
	guardiantypes "github.com/wormholelabs-xyz/rootsync/modules/guardian/types"
	rootledgertypes "github.com/wormholelabs-xyz/rootsync/modules/rootledger/types"
)

// GenesisState is the combined genesis of the guardian registry and the root ledger.
type GenesisState struct {
	Guardian   *guardiantypes.GenesisState   `json:"guardian"`
	RootLedger *rootledgertypes.GenesisState `json:"root_ledger"`
}

// DefaultGenesisState returns an empty registry and an uninitialized root ledger.
func DefaultGenesisState() *GenesisState {
	return &GenesisState{
		Guardian:   guardiantypes.DefaultGenesisState(),
		RootLedger: rootledgertypes.DefaultGenesisState(),
	}
}

// Validate performs basic genesis state validation returning an error upon any
// failure.
func (gs GenesisState) Validate() error {
	if gs.Guardian == nil {
		gs.Guardian = guardiantypes.DefaultGenesisState()
	}
	if gs.RootLedger == nil {
		gs.RootLedger = rootledgertypes.DefaultGenesisState()
	}
	if err := gs.Guardian.Validate(); err != nil {
		return err
	}
	return gs.RootLedger.Validate()
}
