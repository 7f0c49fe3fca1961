package types

import (
	"context"

	guardiantypes "github.com/wormholelabs-xyz/rootsync/modules/guardian/types"
)

// GuardianKeeper defines the guardian registry read path required by the root ledger.
type GuardianKeeper interface {
	GetGuardianSet(ctx context.Context, index uint32) (guardiantypes.GuardianSet, error)
}

// ProofVerifier verifies a Groth16 membership proof against a root. The proving system is
// supplied by the embedding application.
type ProofVerifier interface {
	VerifyProof(ctx context.Context, proof Groth16Proof) error
}
