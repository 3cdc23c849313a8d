package gateway

import "errors"

// Sentinel errors surfaced by Gateway calls. The Gateway treats both the same
// way — retry, then fall back — but keeps them distinct for logging and for
// the exit-code mapping of a CLI front-end.
var (
	ErrModelUnavailable = errors.New("gateway: model unavailable")
	ErrModelTimeout     = errors.New("gateway: model call timed out")
)

// FallbackCompletion is the well-defined text returned by Complete when every
// retry attempt has been exhausted. Callers detect degradation via the
// returned error, not by string-matching this constant, but it is exported
// so tests can assert on it directly.
const FallbackCompletion = "I'm unable to process your request right now. A representative will follow up shortly."
