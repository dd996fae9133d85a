// Package failure classifies pipeline errors into the small set of kinds the
// command line maps to exit statuses.
//
// Packages wrap their boundary errors with New/Wrap; everything in between
// uses plain fmt.Errorf("...: %w") wrapping so the kind survives.
package failure

import (
	"errors"
	"fmt"
)

// Kind identifies the failure class of an error.
type Kind int

const (
	// KindInternal covers unexpected I/O and programming errors.
	KindInternal Kind = iota

	// KindConfig is a bad flag combination, unknown mode/strategy/formalism,
	// or an invalid configuration file. Raised before any process runs.
	KindConfig

	// KindInput is a referenced file or folder that does not exist.
	KindInput

	// KindExternal is a converter, relevance tool or solver that exited
	// non-zero or could not be started.
	KindExternal

	// KindParse is malformed existential-rule syntax.
	KindParse
)

// String returns the lowercase kind name used in logs and the journal.
func (k Kind) String() string {
	switch k {
	case KindConfig:
		return "config"
	case KindInput:
		return "input"
	case KindExternal:
		return "external"
	case KindParse:
		return "parse"
	default:
		return "internal"
	}
}

// ExitCode maps a kind to the process exit status. Zero is reserved for success.
func ExitCode(k Kind) int {
	switch k {
	case KindConfig:
		return 2
	case KindInput:
		return 3
	case KindExternal:
		return 4
	case KindParse:
		return 5
	default:
		return 1
	}
}

// Error is a classified error.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Op == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// New creates a classified error from a message.
func New(kind Kind, op, format string, args ...any) error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

// Wrap classifies err. A nil err stays nil.
func Wrap(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf returns the kind of the outermost classified error in err's chain,
// or KindInternal when none is present.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return KindInternal
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
