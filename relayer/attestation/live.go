// Package attestation fetches guardian signed query responses, either from the
// Wormhole query proxy or from a local mock of it.
package attestation

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"time"

	errorsmod "cosmossdk.io/errors"

	coreerrors "github.com/wormholelabs-xyz/rootsync/modules/core/errors"
	querytypes "github.com/wormholelabs-xyz/rootsync/modules/query/types"
	"github.com/wormholelabs-xyz/rootsync/relayer"
	"github.com/wormholelabs-xyz/rootsync/relayer/internal/telemetry"
)

const (
	// APIKeyHeader carries the query proxy API key.
	APIKeyHeader = "X-API-Key"

	// maxResponseSize bounds the body read from the proxy.
	maxResponseSize = 1 << 20
)

var _ relayer.AttestationSource = (*Live)(nil)

type queryRequest struct {
	Bytes string `json:"bytes"`
}

type queryResponse struct {
	Bytes      string   `json:"bytes"`
	Signatures []string `json:"signatures"`
}

// Live submits requests to the Wormhole query proxy.
type Live struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

// NewLive returns a query proxy client. Requests time out after timeout.
func NewLive(endpoint, apiKey string, timeout time.Duration) *Live {
	return &Live{
		endpoint: endpoint,
		apiKey:   apiKey,
		client:   &http.Client{Timeout: timeout},
	}
}

// Attest implements relayer.AttestationSource.
func (l *Live) Attest(ctx context.Context, request []byte) (*relayer.Attestation, error) {
	att, err := l.attest(ctx, request)
	telemetry.ReportAttestation("live", err == nil)
	return att, err
}

func (l *Live) attest(ctx context.Context, request []byte) (*relayer.Attestation, error) {
	body, err := json.Marshal(queryRequest{Bytes: hex.EncodeToString(request)})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, l.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, errorsmod.Wrapf(coreerrors.ErrTransport, "failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(APIKeyHeader, l.apiKey)

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, errorsmod.Wrapf(coreerrors.ErrTransport, "query proxy request failed: %v", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, errorsmod.Wrapf(coreerrors.ErrTransport, "failed to read query proxy reply: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errorsmod.Wrapf(coreerrors.ErrTransport, "query proxy returned status %d: %s", resp.StatusCode, bytes.TrimSpace(data))
	}

	var reply queryResponse
	if err := json.Unmarshal(data, &reply); err != nil {
		return nil, errorsmod.Wrapf(querytypes.ErrFailedToParse, "query proxy reply: %v", err)
	}

	responseBz, err := hex.DecodeString(reply.Bytes)
	if err != nil {
		return nil, errorsmod.Wrapf(querytypes.ErrFailedToParse, "query proxy response bytes: %v", err)
	}
	sigs, err := querytypes.ParseGuardianSignatures(reply.Signatures)
	if err != nil {
		return nil, err
	}

	return &relayer.Attestation{Bytes: responseBz, Signatures: sigs}, nil
}
