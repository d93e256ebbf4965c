package token

import "errors"

var (
	// ErrWeakToken indicates a requested entropy size below the 128-bit floor.
	ErrWeakToken = errors.New("token.too_weak")

	// ErrSourceUnavailable indicates the OS secure random source failed.
	ErrSourceUnavailable = errors.New("token.source_unavailable")
)
