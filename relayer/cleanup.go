package relayer

import (
	"context"
	"errors"

	errorsmod "cosmossdk.io/errors"

	rootledgertypes "github.com/wormholelabs-xyz/rootsync/modules/rootledger/types"
	"github.com/wormholelabs-xyz/rootsync/relayer/internal/telemetry"
)

// CleanupReport summarizes one cleanup sweep.
type CleanupReport struct {
	Scanned int
	Cleaned int
	Skipped int
	Failed  int
}

// CleanUpOnce deletes every expired root other than the latest one. A failure on one
// root does not stop the sweep; the failures are returned joined.
func (d *Driver) CleanUpOnce(ctx context.Context) (CleanupReport, error) {
	var report CleanupReport

	vt := rootledgertypes.VerificationTypeQuery
	latest, err := d.ledger.LatestRoot(ctx, vt)
	if err != nil {
		return report, errorsmod.Wrap(err, "failed to read ledger root")
	}
	roots, err := d.ledger.Roots(ctx, vt)
	if err != nil {
		return report, errorsmod.Wrap(err, "failed to list roots")
	}

	d.logger.Debug("cleaning up roots", "count", len(roots))

	now := d.clock.Now()
	var errs []error
	for _, root := range roots {
		report.Scanned++

		if root.Hash == latest.Root {
			report.Skipped++
			d.logger.Debug("skipping latest root", "root", root.Hash)
			continue
		}
		if !root.IsExpired(now) {
			report.Skipped++
			d.logger.Debug("skipping active root", "root", root.Hash, "expiry_time", root.ExpiryTime)
			continue
		}

		err := d.ledger.Execute(ctx, &rootledgertypes.MsgCleanUpRoot{
			Signer:           d.submitter,
			RootHash:         root.Hash,
			VerificationType: root.VerificationType,
			RefundRecipient:  root.RefundRecipient,
		})
		if err != nil {
			report.Failed++
			d.logger.Error("failed to clean up root", "root", root.Hash, "error", err)
			errs = append(errs, errorsmod.Wrapf(err, "root %s", root.Hash))
			continue
		}

		report.Cleaned++
		d.logger.Info("cleaned up root", "root", root.Hash, "refund_recipient", root.RefundRecipient)
	}

	telemetry.ReportCleanup(report.Cleaned, report.Failed)

	return report, errors.Join(errs...)
}
