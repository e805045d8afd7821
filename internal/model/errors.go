package model

import "errors"

// Failure kinds surfaced by the decode pipeline. Callers classify with errors.Is.
var (
	// ErrMalformedData marks a structural ABI violation. Always fatal for the
	// whole decode.
	ErrMalformedData = errors.New("malformed call data")

	// ErrUnrecognizedMethod marks an unknown 4-byte selector. Recoverable: the
	// call-data decoder skips the call and keeps scanning.
	ErrUnrecognizedMethod = errors.New("unrecognized method selector")

	// ErrInvalidPathEncoding marks a swap path whose byte length is not
	// 20 + 23k for k >= 1. Fatal for the single intent only.
	ErrInvalidPathEncoding = errors.New("invalid path encoding")

	// ErrNoSwapActivity means no pool Swap events were found in the logs.
	ErrNoSwapActivity = errors.New("no swap activity in transaction logs")

	// ErrAmbiguousResolution means two or more disjoint token pairs look
	// boundary-eligible and cannot be ranked.
	ErrAmbiguousResolution = errors.New("ambiguous swap resolution")

	// ErrTokenLookupFailed marks a failed token metadata lookup. Recovered
	// with default decimals and an unverified result.
	ErrTokenLookupFailed = errors.New("token metadata lookup failed")

	// ErrTransactionNotFound means the chain has no such transaction.
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrTransportError wraps RPC transport failures.
	ErrTransportError = errors.New("chain transport error")

	// ErrTransactionReverted means the transaction executed but failed.
	ErrTransactionReverted = errors.New("transaction reverted")
)
