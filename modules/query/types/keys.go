package types

const (
	// ModuleName defines the cross-chain query codec name, used as the error codespace.
	ModuleName = "query"

	// ResponseVersion is the only supported QueryResponse version.
	ResponseVersion uint8 = 1

	// RequestVersion is the only supported QueryRequest version.
	RequestVersion uint8 = 1

	// OffChainRequestChainID marks a request submitted to the query proxy rather than on chain.
	OffChainRequestChainID uint16 = 0

	// OffChainRequestIDLength is the length of the request signature carried by off-chain requests.
	OffChainRequestIDLength = 65

	// OnChainRequestIDLength is the length of the transaction hash carried by on-chain requests.
	OnChainRequestIDLength = 32

	// MessagePrefix is prepended to keccak256(response bytes) to form the message guardians sign.
	MessagePrefix = "query_response_0000000000000000000|"

	// QueryMessageLen is the length of the signed message: prefix plus a 32 byte hash.
	QueryMessageLen = len(MessagePrefix) + 32

	// SignatureLength is the length of an ECDSA signature (r||s||v).
	SignatureLength = 65

	// GuardianSignatureLength is a signature followed by the signing guardian's index.
	GuardianSignatureLength = SignatureLength + 1
)

// ChainQueryType tags the body of a per-chain query request or response.
type ChainQueryType uint8

const (
	EthCallQueryType             ChainQueryType = 1
	EthCallByTimestampQueryType  ChainQueryType = 2
	EthCallWithFinalityQueryType ChainQueryType = 3
	SolanaAccountQueryType       ChainQueryType = 4
	SolanaPdaQueryType           ChainQueryType = 5
)

// String implements fmt.Stringer.
func (t ChainQueryType) String() string {
	switch t {
	case EthCallQueryType:
		return "eth_call"
	case EthCallByTimestampQueryType:
		return "eth_call_by_timestamp"
	case EthCallWithFinalityQueryType:
		return "eth_call_with_finality"
	case SolanaAccountQueryType:
		return "sol_account"
	case SolanaPdaQueryType:
		return "sol_pda"
	default:
		return "unknown"
	}
}
