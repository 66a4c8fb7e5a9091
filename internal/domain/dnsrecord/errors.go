package dnsrecord

import (
	"errors"
	"fmt"
)

// Record errors
var (
	ErrDecode          = errors.New("malformed encoded record value")
	ErrDuplicateRecord = errors.New("duplicate record in record set")
)

// DecodeError reports a stored record value that cannot be decoded for its type.
type DecodeError struct {
	Host  string
	Type  Type
	Value string
	Err   error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s record for %q from %q: %v", e.Type, e.Host, e.Value, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Is reports every DecodeError as ErrDecode.
func (e *DecodeError) Is(target error) bool { return target == ErrDecode }
