package core

import "fmt"

// ErrorKind enumerates the failure modes of spec §7. Every error this
// module returns from a build or a query carries one of these kinds,
// recoverable with errors.As on *Error.
type ErrorKind int

const (
	// TypeMismatch: an object's Kind does not match what the distance
	// function expects (e.g. a string Object fed to Minkowski).
	TypeMismatch ErrorKind = iota
	// DomainError: an equal-length precondition failed (Hamming), a
	// score-matrix entry is invalid, or a parameter is out of range.
	DomainError
	// OversizedLeaf: a PivotTable was asked to hold more points than
	// its max_leaf_size allows.
	OversizedLeaf
	// InsufficientCandidates: incremental sampling exhausted its
	// candidate pool before selecting k pivots.
	InsufficientCandidates
	// ConfigError: unknown dataset/distance/selector/index name, or
	// malformed configuration.
	ConfigError
	// IOError: a dataset file is missing or corrupt.
	IOError
)

func (k ErrorKind) String() string {
	switch k {
	case TypeMismatch:
		return "TypeMismatch"
	case DomainError:
		return "DomainError"
	case OversizedLeaf:
		return "OversizedLeaf"
	case InsufficientCandidates:
		return "InsufficientCandidates"
	case ConfigError:
		return "ConfigError"
	case IOError:
		return "IOError"
	default:
		return "UnknownError"
	}
}

// Error is the concrete error type returned for every failure kind
// above. It wraps an optional underlying cause.
type Error struct {
	Kind ErrorKind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// Is allows errors.Is(err, core.NewError(SomeKind, "")) to match on
// kind alone, ignoring message and wrapped cause.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// NewError builds an *Error of the given kind.
func NewError(kind ErrorKind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Wrap builds an *Error of the given kind around an underlying cause.
func Wrap(kind ErrorKind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}
