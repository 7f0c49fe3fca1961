package types

import "cosmossdk.io/collections"

const (
	// ModuleName defines the root ledger module name
	ModuleName = "rootledger"

	// StoreKey is the store key string for the root ledger
	StoreKey = ModuleName

	// MicrosPerSecond converts attested block times (µs) to seconds.
	MicrosPerSecond = 1_000_000
)

// VerificationType tags how a root was proven. Each type has its own LatestRoot.
type VerificationType uint8

const (
	// VerificationTypeQuery is a root proven by a guardian attested cross-chain query.
	VerificationTypeQuery VerificationType = 0
)

// String implements fmt.Stringer.
func (vt VerificationType) String() string {
	switch vt {
	case VerificationTypeQuery:
		return "query"
	default:
		return "unknown"
	}
}

var (
	// ConfigKey stores the ledger Config
	ConfigKey = collections.NewPrefix(0)
	// LatestRootsKey prefixes the LatestRoot of each verification type
	LatestRootsKey = collections.NewPrefix(1)
	// RootsKey prefixes root records by (verification type, root hash)
	RootsKey = collections.NewPrefix(2)
	// SessionsKey prefixes signature verification sessions by id
	SessionsKey = collections.NewPrefix(3)
)
