package relayer

import errorsmod "cosmossdk.io/errors"

// Outcome is the result of one sync cycle.
type Outcome int

const (
	// OutcomeFailed is a transient failure; the cycle should be retried with backoff.
	OutcomeFailed Outcome = iota
	// OutcomeUpToDate means the ledger already holds the source root or a newer one.
	OutcomeUpToDate
	// OutcomeUpdated means a new root was admitted.
	OutcomeUpdated
	// OutcomeRootMismatch means the attestation disagreed with the source chain and was not submitted.
	OutcomeRootMismatch
	// OutcomeRejected means the ledger or the local quorum check rejected the attestation by policy.
	OutcomeRejected
	// OutcomeMalformed means the attestation could not be decoded or did not answer the query.
	OutcomeMalformed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeUpToDate:
		return "up_to_date"
	case OutcomeUpdated:
		return "updated"
	case OutcomeRootMismatch:
		return "root_mismatch"
	case OutcomeRejected:
		return "rejected"
	case OutcomeMalformed:
		return "malformed"
	default:
		return "failed"
	}
}

// outcomeOf maps a failed cycle to its outcome.
func outcomeOf(err error) Outcome {
	if err == nil {
		return OutcomeUpdated
	}
	switch Classify(err) {
	case ClassMalformed:
		return OutcomeMalformed
	case ClassPolicy:
		if errorsmod.IsOf(err, ErrRootMismatch) {
			return OutcomeRootMismatch
		}
		return OutcomeRejected
	default:
		return OutcomeFailed
	}
}
