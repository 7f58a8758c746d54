// Package transport delivers built messages. Implementations live in the
// smtp, postmark and dev subpackages; all of them report failures as *Error.
package transport

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/dmitrymomot/mailify/pkg/message"
)

// Sender delivers a message.
type Sender interface {
	Send(ctx context.Context, msg *message.Message) error
}

// SenderFunc adapts a function to Sender.
type SenderFunc func(ctx context.Context, msg *message.Message) error

func (f SenderFunc) Send(ctx context.Context, msg *message.Message) error { return f(ctx, msg) }

// Kind identifies the delivery stage that failed.
type Kind uint8

const (
	KindConnection Kind = iota
	KindTLS
	KindAuth
	KindEnvelope
	KindData
	KindProvider
	KindCanceled
	kindCount
)

var kindNames = [kindCount]string{
	KindConnection: "connection",
	KindTLS:        "tls",
	KindAuth:       "auth",
	KindEnvelope:   "envelope",
	KindData:       "data",
	KindProvider:   "provider",
	KindCanceled:   "canceled",
}

func (k Kind) String() string {
	if k < kindCount {
		return kindNames[k]
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// Kinds lists every transport failure variant.
func Kinds() []Kind {
	kinds := make([]Kind, kindCount)
	for i := range kinds {
		kinds[i] = Kind(i)
	}
	return kinds
}

var ErrInvalidConfig = errors.New("transport: invalid config")

// Error is a delivery failure. Op names the transport and step,
// e.g. "smtp.rcpt".
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s (%s): %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// NewError returns an *Error, classifying context errors as KindCanceled.
func NewError(kind Kind, op string, err error) *Error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		kind = KindCanceled
	}
	return &Error{Kind: kind, Op: op, Err: err}
}
