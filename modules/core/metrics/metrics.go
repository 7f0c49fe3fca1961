package metrics

// Prometheus metric labels.
const (
	LabelVerificationType = "verification_type"
	LabelOutcome          = "outcome"
	LabelErrorClass       = "error_class"
	LabelAttestation      = "attestation"
	LabelMsgType          = "msg_type"
)
