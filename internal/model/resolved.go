package model

// ResolvedSwap is the transaction's single authoritative result. Amounts are
// decimal strings: raw integer magnitudes plus decimal-scaled values.
type ResolvedSwap struct {
	Sender       string `json:"sender"`
	Recipient    string `json:"recipient"`
	TokenIn      string `json:"token_in"`
	TokenOut     string `json:"token_out"`
	AmountInRaw  string `json:"amount_in_raw"`
	AmountOutRaw string `json:"amount_out_raw"`
	AmountIn     string `json:"amount_in"`
	AmountOut    string `json:"amount_out"`
	NativeIn     bool   `json:"native_in,omitempty"`
	NativeOut    bool   `json:"native_out,omitempty"`
	// Unverified is set when a token decimals lookup failed and the default
	// of 18 was substituted.
	Unverified bool `json:"unverified,omitempty"`
}

// CandidateMatch is one (intent, pool-subsequence) pairing reported in
// diagnostic mode.
type CandidateMatch struct {
	TokenIn       string   `json:"token_in"`
	TokenOut      string   `json:"token_out"`
	AmountInRaw   string   `json:"amount_in_raw"`
	AmountOutRaw  string   `json:"amount_out_raw"`
	HopCount      int      `json:"hop_count"`
	PathTokens    []string `json:"path_tokens"`
	FirstLogIndex uint64   `json:"first_log_index"`
	LastLogIndex  uint64   `json:"last_log_index"`
	IntentIndex   int      `json:"intent_index"` // -1 when matched without an intent
	Score         int      `json:"score"`
}

// SwapRecord is a resolved swap tied to its transaction, as persisted by the
// storage sinks.
type SwapRecord struct {
	ChainID     uint64 `json:"chain_id"`
	TxHash      string `json:"tx_hash"`
	BlockNumber uint64 `json:"block_number"`
	ResolvedSwap
}

// DecodeFailure records a per-transaction decode failure in batch mode.
type DecodeFailure struct {
	TxHash string `json:"tx_hash"`
	Error  string `json:"error"`
}
