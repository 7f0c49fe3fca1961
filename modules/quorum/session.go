package quorum

import (
	"bytes"
	"time"

	"github.com/ethereum/go-ethereum/common"

	errorsmod "cosmossdk.io/errors"

	guardiantypes "github.com/wormholelabs-xyz/rootsync/modules/guardian/types"
	querytypes "github.com/wormholelabs-xyz/rootsync/modules/query/types"
)

// Session accumulates guardian signatures over one message across several batches.
// It is bound to the message and guardian set of its first batch.
type Session struct {
	ID               common.Hash `json:"id"`
	Message          []byte      `json:"message"`
	GuardianSetIndex uint32      `json:"guardian_set_index"`
	// AccumulatedIndices is strictly increasing.
	AccumulatedIndices []uint8        `json:"accumulated_indices"`
	RefundRecipient    common.Address `json:"refund_recipient"`
}

// NewSession returns an empty session owned by refundRecipient.
func NewSession(id common.Hash, refundRecipient common.Address) Session {
	return Session{ID: id, RefundRecipient: refundRecipient}
}

// IsInitialized reports whether a batch has been accepted into the session.
func (s Session) IsInitialized() bool {
	return len(s.Message) != 0
}

// NumVerified returns the number of guardians whose signature has been verified.
func (s Session) NumVerified() int {
	return len(s.AccumulatedIndices)
}

func (s Session) lastIndex() int {
	if len(s.AccumulatedIndices) == 0 {
		return -1
	}
	return int(s.AccumulatedIndices[len(s.AccumulatedIndices)-1])
}

// VerifyBatch verifies sigs over message against set and appends their indices to the
// session. The first batch binds the session to message and set; later batches must
// match both. Indices must keep increasing across batches. On error the session is
// returned unchanged.
func VerifyBatch(session Session, message []byte, set guardiantypes.GuardianSet, sigs []querytypes.GuardianSignature, now time.Time) (Session, error) {
	if len(message) != querytypes.QueryMessageLen {
		return session, errorsmod.Wrapf(ErrInvalidMessage, "message must be %d bytes, got %d", querytypes.QueryMessageLen, len(message))
	}

	if session.IsInitialized() {
		if session.GuardianSetIndex != set.Index {
			return session, errorsmod.Wrapf(ErrGuardianSetMismatch, "session uses guardian set %d, batch uses %d", session.GuardianSetIndex, set.Index)
		}
		if !bytes.Equal(session.Message, message) {
			return session, errorsmod.Wrap(ErrMessageMismatch, "batch message differs from session message")
		}
	}

	if !set.IsActive(now) {
		return session, errorsmod.Wrapf(ErrGuardianSetExpired, "guardian set %d expired at %d", set.Index, set.ExpirationTime)
	}
	if len(sigs) == 0 {
		return session, errorsmod.Wrap(ErrNoQuorum, "batch carries no signatures")
	}

	digest := querytypes.MessageDigest(message)
	last := session.lastIndex()
	indices := make([]uint8, 0, len(sigs))
	for i, sig := range sigs {
		if err := verifySignature(digest, sig, set.Keys, last); err != nil {
			return session, errorsmod.Wrapf(err, "signature %d", i)
		}
		last = int(sig.Index)
		indices = append(indices, sig.Index)
	}

	updated := session
	updated.Message = bytes.Clone(message)
	updated.GuardianSetIndex = set.Index
	updated.AccumulatedIndices = append(bytes.Clone(session.AccumulatedIndices), indices...)
	return updated, nil
}

// CheckQuorum reports whether the session holds a quorum for set at now.
func CheckQuorum(session Session, set guardiantypes.GuardianSet, now time.Time) error {
	if session.GuardianSetIndex != set.Index {
		return errorsmod.Wrapf(ErrGuardianSetMismatch, "session uses guardian set %d, checking %d", session.GuardianSetIndex, set.Index)
	}
	if !set.IsActive(now) {
		return errorsmod.Wrapf(ErrGuardianSetExpired, "guardian set %d expired at %d", set.Index, set.ExpirationTime)
	}
	if required := Quorum(len(set.Keys)); session.NumVerified() < required {
		return errorsmod.Wrapf(ErrNoQuorum, "quorum not met: required %d, got %d", required, session.NumVerified())
	}
	return nil
}
