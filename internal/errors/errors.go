// Package errors provides error handling for wikitree.
//
// It re-exports github.com/cockroachdb/errors and defines the sentinel
// failures of tree simplification. Sentinels are attached with Mark so that
// Is keeps working through any amount of wrapping:
//
//	if err := client.Search(ctx, req); err != nil {
//	    return errors.Mark(errors.Wrap(err, "search entities"), errors.ErrResolutionFailed)
//	}
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
	Mark         = crdb.Mark
)

// User-facing messages and details
var (
	WithHint    = crdb.WithHint
	WithHintf   = crdb.WithHintf
	WithDetail  = crdb.WithDetail
	WithDetailf = crdb.WithDetailf
)

// Error inspection
var (
	Is          = crdb.Is
	IsAny       = crdb.IsAny
	As          = crdb.As
	Unwrap      = crdb.Unwrap
	UnwrapAll   = crdb.UnwrapAll
	GetAllHints = crdb.GetAllHints
)

var (
	// ErrResolutionFailed indicates the search, entity or query service was
	// unreachable or answered with something that could not be decoded.
	ErrResolutionFailed = New("resolution failed")

	// ErrSimplificationFailed indicates a node matched a simplifier but its
	// content made the rewrite impossible. Callers turn it into "no answer".
	ErrSimplificationFailed = New("simplification failed")

	// ErrNoApplicableQuery indicates a value type has no query-building rule
	ErrNoApplicableQuery = New("no applicable query")

	// ErrNotFound indicates the requested entity does not exist
	ErrNotFound = New("not found")
)

// IsSimplificationFailed checks if an error is or wraps ErrSimplificationFailed
func IsSimplificationFailed(err error) bool {
	return err != nil && Is(err, ErrSimplificationFailed)
}

// IsResolutionFailed checks if an error is or wraps ErrResolutionFailed
func IsResolutionFailed(err error) bool {
	return err != nil && Is(err, ErrResolutionFailed)
}

// IsNotFound checks if an error is or wraps ErrNotFound
func IsNotFound(err error) bool {
	return err != nil && Is(err, ErrNotFound)
}

// SimplificationFailedf creates a SimplificationFailed error with a formatted message
func SimplificationFailedf(format string, args ...interface{}) error {
	return Mark(Newf(format, args...), ErrSimplificationFailed)
}

// ResolutionFailed wraps err with context and marks it as ErrResolutionFailed
func ResolutionFailed(err error, context string) error {
	return Mark(Wrap(err, context), ErrResolutionFailed)
}
