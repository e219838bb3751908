// Package anymerr holds the error taxonomy shared by the anym packages.
//
// Callers classify failures with errors.Is against the sentinels, or with IsKind
// when they only care about the coarse category.
package anymerr

import (
	"errors"
	"fmt"
)

// Sentinel errors for broad classification.
var (
	ErrTypeMismatch    = errors.New("type mismatch")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrInvalidConfig   = errors.New("invalid config")
	ErrRegistryFrozen  = errors.New("registry already built")
	ErrUpstream        = errors.New("upstream failure")
)

// Kind is a coarse-grained categorization for errors.
type Kind string

const (
	KindTypeMismatch    Kind = "type_mismatch"
	KindInvalidArgument Kind = "invalid_argument"
	KindInvalidConfig   Kind = "invalid_config"
	KindUpstream        Kind = "upstream"
)

var kindSentinels = map[Kind]error{
	KindTypeMismatch:    ErrTypeMismatch,
	KindInvalidArgument: ErrInvalidArgument,
	KindInvalidConfig:   ErrInvalidConfig,
	KindUpstream:        ErrUpstream,
}

// OpError wraps an underlying error with the failing operation and a kind.
type OpError struct {
	Op   string
	Kind Kind
	Err  error
}

func (e *OpError) Error() string {
	if e == nil {
		return "<nil>"
	}

	base := fmt.Sprintf("%s: %s", e.Op, e.Kind)
	if e.Err != nil {
		base += fmt.Sprintf(": %v", e.Err)
	}
	return base
}

func (e *OpError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is reports whether target is the sentinel for e's kind, so errors.Is(err, ErrTypeMismatch)
// holds for every type-mismatch OpError regardless of the wrapped cause.
func (e *OpError) Is(target error) bool {
	if e == nil {
		return false
	}
	s, ok := kindSentinels[e.Kind]
	return ok && s == target
}

// IsKind helps callers classify errors without matching on messages.
func IsKind(err error, kind Kind) bool {
	var oe *OpError
	if errors.As(err, &oe) {
		return oe.Kind == kind
	}
	return false
}

// TypeMismatch builds a type-mismatch error for op.
func TypeMismatch(op string, format string, args ...any) error {
	return &OpError{Op: op, Kind: KindTypeMismatch, Err: fmt.Errorf(format, args...)}
}

// InvalidArgument builds an invalid-argument error for op.
func InvalidArgument(op string, format string, args ...any) error {
	return &OpError{Op: op, Kind: KindInvalidArgument, Err: fmt.Errorf(format, args...)}
}

// InvalidConfig wraps err as a configuration failure for op.
func InvalidConfig(op string, err error) error {
	return &OpError{Op: op, Kind: KindInvalidConfig, Err: err}
}

// Upstream marks err as a failure of the source a pipeline reads from. The cause
// stays reachable through errors.Is and errors.As.
func Upstream(op string, err error) error {
	return &OpError{Op: op, Kind: KindUpstream, Err: err}
}
