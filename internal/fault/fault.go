// Package fault defines the error kinds shared by the engine and the control
// protocol.
package fault

import "errors"

// Error kinds. Callers match them with errors.Is; the engine wraps them with
// context using fmt.Errorf("...: %w", kind).
var (
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrInvalidRange       = errors.New("invalid range")
	ErrNotFound           = errors.New("task not found")
	ErrDuplicateOrInvalid = errors.New("duplicate or invalid task")
	ErrInternal           = errors.New("internal error")
)

// Wire codes for each kind. Zero means an uncategorized error.
const (
	CodeUnknown uint8 = iota
	CodeInvalidArgument
	CodeInvalidRange
	CodeNotFound
	CodeDuplicateOrInvalid
	CodeInternal
)

var kinds = [...]error{
	CodeInvalidArgument:    ErrInvalidArgument,
	CodeInvalidRange:       ErrInvalidRange,
	CodeNotFound:           ErrNotFound,
	CodeDuplicateOrInvalid: ErrDuplicateOrInvalid,
	CodeInternal:           ErrInternal,
}

// Code returns the wire code for err's kind, or CodeUnknown.
func Code(err error) uint8 {
	for code, kind := range kinds {
		if kind != nil && errors.Is(err, kind) {
			return uint8(code) //nolint:gosec // G115: bounded by len(kinds)
		}
	}
	return CodeUnknown
}

// remoteError is an error reported by the daemon. It prints the server's
// message but unwraps to the local sentinel so errors.Is works across the wire.
type remoteError struct {
	kind error
	msg  string
}

func (e *remoteError) Error() string { return e.msg }
func (e *remoteError) Unwrap() error { return e.kind }

// FromWire rebuilds an error from a wire code and message.
func FromWire(code uint8, msg string) error {
	if int(code) < len(kinds) && kinds[code] != nil {
		return &remoteError{kind: kinds[code], msg: msg}
	}
	return errors.New(msg)
}
