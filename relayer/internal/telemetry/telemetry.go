package telemetry

import (
	"github.com/hashicorp/go-metrics"

	coremetrics "github.com/wormholelabs-xyz/rootsync/modules/core/metrics"
)

const moduleName = "relayer"

func ReportSyncOutcome(outcome, errorClass string) {
	labels := []metrics.Label{{Name: coremetrics.LabelOutcome, Value: outcome}}
	if errorClass != "" {
		labels = append(labels, metrics.Label{Name: coremetrics.LabelErrorClass, Value: errorClass})
	}

	metrics.IncrCounterWithLabels(
		[]string{moduleName, "sync", "cycles"},
		1,
		labels,
	)
}

func ReportRootSynced(blockNumber uint64) {
	metrics.SetGauge([]string{moduleName, "sync", "block_number"}, float32(blockNumber))
}

func ReportRetry(loop string, retry int) {
	metrics.SetGaugeWithLabels(
		[]string{moduleName, "loop", "retries"},
		float32(retry),
		[]metrics.Label{{Name: "loop", Value: loop}},
	)
}

func ReportAttestation(source string, success bool) {
	outcome := "success"
	if !success {
		outcome = "failure"
	}

	metrics.IncrCounterWithLabels(
		[]string{moduleName, "attestation", "requests"},
		1,
		[]metrics.Label{
			{Name: coremetrics.LabelAttestation, Value: source},
			{Name: coremetrics.LabelOutcome, Value: outcome},
		},
	)
}

func ReportCleanup(cleaned, failed int) {
	metrics.IncrCounter([]string{moduleName, "cleanup", "cleaned"}, float32(cleaned))
	metrics.IncrCounter([]string{moduleName, "cleanup", "failed"}, float32(failed))
}
