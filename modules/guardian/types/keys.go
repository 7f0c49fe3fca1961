package types

import "cosmossdk.io/collections"

const (
	// ModuleName defines the guardian registry module name
	ModuleName = "guardian"

	// StoreKey is the store key string for the guardian registry
	StoreKey = ModuleName

	// MaxGuardians is the largest guardian set addressable by a one byte guardian index.
	MaxGuardians = 256
)

var (
	// GuardianSetsKey prefixes guardian sets by index
	GuardianSetsKey = collections.NewPrefix(0)
	// CurrentIndexKey stores the index of the newest guardian set
	CurrentIndexKey = collections.NewPrefix(1)
)
