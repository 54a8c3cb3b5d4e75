package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Repositories and infrastructure layers
// return these (optionally wrapped) so services can translate them into domain errors.
//
// - ErrNotFound: no row matched the lookup
// - ErrConflict: a uniqueness constraint rejected the write
// - ErrUnavailable: a backing service is temporarily unreachable
//
// For validation errors (bad input, missing fields), use pkg/domain-errors directly.
var (
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("conflict")
	ErrUnavailable = errors.New("unavailable")
)
