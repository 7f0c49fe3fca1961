package telemetry

import (
	"github.com/hashicorp/go-metrics"

	coremetrics "github.com/wormholelabs-xyz/rootsync/modules/core/metrics"
	"github.com/wormholelabs-xyz/rootsync/modules/rootledger/types"
)

func ReportRootAdmitted(root types.Root) {
	labels := []metrics.Label{
		{Name: coremetrics.LabelVerificationType, Value: root.VerificationType.String()},
	}

	metrics.SetGaugeWithLabels(
		[]string{types.ModuleName, "latest_root", "block_number"},
		float32(root.ReadBlockNumber),
		labels,
	)

	metrics.IncrCounterWithLabels(
		[]string{types.ModuleName, "root", "admitted"},
		1,
		labels,
	)
}

func ReportRootCleanedUp(root types.Root) {
	metrics.IncrCounterWithLabels(
		[]string{types.ModuleName, "root", "cleaned_up"},
		1,
		[]metrics.Label{{Name: coremetrics.LabelVerificationType, Value: root.VerificationType.String()}},
	)
}

func ReportSignaturesVerified(count int) {
	metrics.IncrCounter([]string{types.ModuleName, "signatures", "verified"}, float32(count))
}
