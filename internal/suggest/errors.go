package suggest

import "errors"

// Failure taxonomy shared by the core and the HTTP layer. Every failure
// leaving the service wraps exactly one of these sentinels, so the front
// door can pick a response status with errors.Is.
var (
	ErrBadRequest          = errors.New("bad request")
	ErrUpstreamTimeout     = errors.New("weather source timed out")
	ErrUpstreamError       = errors.New("weather source request failed")
	ErrInvalidUpstreamData = errors.New("weather source returned unusable data")
	ErrNotFound            = errors.New("record not found")
	ErrStorageUnavailable  = errors.New("storage unavailable")
)
