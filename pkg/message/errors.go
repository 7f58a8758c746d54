package message

import (
	"fmt"
	"strconv"
)

// Kind identifies a message building failure variant.
type Kind uint8

const (
	KindCannotParseFilename Kind = iota
	KindEmailMissingAt
	KindEmailMissingDomain
	KindEmailMissingLocalPart
	KindIo
	KindMissingFrom
	KindMissingTo
	KindNonASCIIChars
	KindTooManyFrom
	kindCount
)

var kindNames = [kindCount]string{
	KindCannotParseFilename:   "cannot_parse_filename",
	KindEmailMissingAt:        "email_missing_at",
	KindEmailMissingDomain:    "email_missing_domain",
	KindEmailMissingLocalPart: "email_missing_local_part",
	KindIo:                    "io",
	KindMissingFrom:           "missing_from",
	KindMissingTo:             "missing_to",
	KindNonASCIIChars:         "non_ascii_chars",
	KindTooManyFrom:           "too_many_from",
}

func (k Kind) String() string {
	if k < kindCount {
		return kindNames[k]
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// Kinds lists every message building failure variant.
func Kinds() []Kind {
	kinds := make([]Kind, kindCount)
	for i := range kinds {
		kinds[i] = Kind(i)
	}
	return kinds
}

// Error is a failure to build or serialize a message.
// Input holds the offending address or filename when there is one.
type Error struct {
	Kind  Kind
	Input string
	Err   error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindCannotParseFilename:
		return fmt.Sprintf("message: invalid attachment filename %q", e.Input)
	case KindEmailMissingAt:
		return fmt.Sprintf("message: address %q is missing @", e.Input)
	case KindEmailMissingDomain:
		return fmt.Sprintf("message: address %q is missing a domain", e.Input)
	case KindEmailMissingLocalPart:
		return fmt.Sprintf("message: address %q is missing a local part", e.Input)
	case KindIo:
		return fmt.Sprintf("message: write: %v", e.Err)
	case KindMissingFrom:
		return "message: missing sender"
	case KindMissingTo:
		return "message: missing recipient"
	case KindNonASCIIChars:
		return fmt.Sprintf("message: %q contains non-ascii characters", e.Input)
	case KindTooManyFrom:
		return "message: more than one sender"
	}
	return "message: " + e.Kind.String()
}

func (e *Error) Unwrap() error { return e.Err }

func CannotParseFilename(name string) *Error {
	return &Error{Kind: KindCannotParseFilename, Input: name}
}

func EmailMissingAt(addr string) *Error {
	return &Error{Kind: KindEmailMissingAt, Input: addr}
}

func EmailMissingDomain(addr string) *Error {
	return &Error{Kind: KindEmailMissingDomain, Input: addr}
}

func EmailMissingLocalPart(addr string) *Error {
	return &Error{Kind: KindEmailMissingLocalPart, Input: addr}
}

func Io(err error) *Error {
	return &Error{Kind: KindIo, Err: err}
}

func MissingFrom() *Error {
	return &Error{Kind: KindMissingFrom}
}

func MissingTo() *Error {
	return &Error{Kind: KindMissingTo}
}

func NonASCIIChars(input string) *Error {
	return &Error{Kind: KindNonASCIIChars, Input: input}
}

func TooManyFrom() *Error {
	return &Error{Kind: KindTooManyFrom}
}
