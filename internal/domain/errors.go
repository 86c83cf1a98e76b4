package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies core failures. None of them are retryable.
type ErrorKind int

const (
	// KindUnimplemented marks a grid variant or kernel combination that is
	// deliberately unsupported.
	KindUnimplemented ErrorKind = iota + 1
	// KindInvalidArgument marks a value outside its valid domain.
	KindInvalidArgument
	// KindOutOfRange marks an index that falls outside the array bounds.
	KindOutOfRange
)

func (k ErrorKind) String() string {
	switch k {
	case KindUnimplemented:
		return "unimplemented"
	case KindInvalidArgument:
		return "invalid argument"
	case KindOutOfRange:
		return "out of range"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// Sentinels matched by errors.Is against any *Error of the same kind.
var (
	ErrUnimplemented   = errors.New("unimplemented")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrOutOfRange      = errors.New("out of range")
)

// Error is the error type returned by the grid and interpolation packages.
type Error struct {
	Kind ErrorKind
	Op   string
	Msg  string
}

func (e *Error) Error() string {
	if e.Msg == "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %s", e.Op, e.Kind, e.Msg)
}

// Is matches the sentinel of the error's kind.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrUnimplemented:
		return e.Kind == KindUnimplemented
	case ErrInvalidArgument:
		return e.Kind == KindInvalidArgument
	case ErrOutOfRange:
		return e.Kind == KindOutOfRange
	}
	return false
}

// Unimplemented returns a KindUnimplemented error for op.
func Unimplemented(op string) error {
	return &Error{Kind: KindUnimplemented, Op: op}
}

// InvalidArgument returns a KindInvalidArgument error for op.
func InvalidArgument(op, format string, args ...any) error {
	return &Error{Kind: KindInvalidArgument, Op: op, Msg: fmt.Sprintf(format, args...)}
}

// OutOfRange returns a KindOutOfRange error for op.
func OutOfRange(op, format string, args ...any) error {
	return &Error{Kind: KindOutOfRange, Op: op, Msg: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of the first *Error in err's chain, or 0.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
