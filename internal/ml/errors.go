// Package ml provides outcome classifiers and the per-domain model registry.
package ml

import "errors"

var (
	// ErrMLServiceUnavailable indicates the model service is unreachable
	ErrMLServiceUnavailable = errors.New("ml service unavailable")

	// ErrInvalidResponse indicates invalid response from the model service
	ErrInvalidResponse = errors.New("invalid response from ml service")

	// ErrDuplicateDomain indicates a second classifier registered for a domain
	ErrDuplicateDomain = errors.New("classifier already registered for domain")
)
