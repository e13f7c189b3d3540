package canon

import "errors"

var (
	// ErrCycle is returned when a value graph passed to JSON
	// contains a reference cycle and cannot be serialized to a finite
	// byte string.
	ErrCycle = errors.New("canon: cyclic structure")

	// ErrNonFinite is returned when a numeric value is NaN or +/-Inf.
	// JSON has no representation for these and canonicalization must fail
	// rather than silently substitute a value.
	ErrNonFinite = errors.New("canon: non-finite number")

	// ErrUnsupportedType is returned for a Go value canonicalization has
	// no defined mapping for.
	ErrUnsupportedType = errors.New("canon: unsupported type")
)

// Error wraps one of the sentinels above with the field path that triggered
// it, so a caller can match the sentinel with errors.Is and still report
// where in the value it occurred.
type Error struct {
	Kind error
	Path string
}

func (e *Error) Error() string {
	if e.Path == "" {
		return e.Kind.Error()
	}
	return e.Kind.Error() + ": at " + e.Path
}

func (e *Error) Unwrap() error { return e.Kind }

func newErr(kind error, path string) *Error {
	return &Error{Kind: kind, Path: path}
}
