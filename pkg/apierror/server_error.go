package apierror

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	"github.com/dmitrymomot/mailify/pkg/engine"
	"github.com/dmitrymomot/mailify/pkg/message"
	"github.com/dmitrymomot/mailify/pkg/transport"
)

// Kind identifies the origin of a ServerError.
type Kind uint8

const (
	KindEngine Kind = iota
	KindMessage
	KindTransport
	kindCount
)

func (k Kind) String() string {
	switch k {
	case KindEngine:
		return "engine"
	case KindMessage:
		return "message"
	case KindTransport:
		return "transport"
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// Kinds lists every ServerError origin.
func Kinds() []Kind {
	kinds := make([]Kind, kindCount)
	for i := range kinds {
		kinds[i] = Kind(i)
	}
	return kinds
}

// ServerError is a request handler failure. The field matching Kind holds
// the cause.
type ServerError struct {
	Kind      Kind
	Engine    *engine.Error
	Message   *message.Error
	Transport *transport.Error
}

func (e *ServerError) Error() string {
	if e == nil {
		return "apierror: <nil>"
	}
	if err := e.Unwrap(); err != nil {
		return err.Error()
	}
	return "apierror: " + e.Kind.String()
}

// Unwrap returns the cause, or nil when the field matching Kind is unset.
func (e *ServerError) Unwrap() error {
	if e == nil {
		return nil
	}
	switch {
	case e.Kind == KindEngine && e.Engine != nil:
		return e.Engine
	case e.Kind == KindMessage && e.Message != nil:
		return e.Message
	case e.Kind == KindTransport && e.Transport != nil:
		return e.Transport
	}
	return nil
}

func Engine(err *engine.Error) *ServerError {
	return &ServerError{Kind: KindEngine, Engine: err}
}

func Message(err *message.Error) *ServerError {
	return &ServerError{Kind: KindMessage, Message: err}
}

func Transport(err *transport.Error) *ServerError {
	return &ServerError{Kind: KindTransport, Transport: err}
}

// Wrap converts err into a ServerError by its type. It reports false when err
// belongs to none of the handler failure domains.
func Wrap(err error) (*ServerError, bool) {
	var (
		se   *ServerError
		eerr *engine.Error
		merr *message.Error
		terr *transport.Error
	)
	switch {
	case err == nil:
		return nil, false
	case errors.As(err, &se):
		return se, true
	case errors.As(err, &eerr):
		return Engine(eerr), true
	case errors.As(err, &terr):
		return Transport(terr), true
	case errors.As(err, &merr):
		return Message(merr), true
	}
	return nil, false
}

// Record translates the error through the translator of its origin.
// Only transport failures are logged.
func (e *ServerError) Record(ctx context.Context, log *slog.Logger) Record {
	if e == nil {
		return Internal()
	}
	switch e.Kind {
	case KindEngine:
		return FromEngine(e.Engine)
	case KindMessage:
		return FromMessage(e.Message)
	case KindTransport:
		return FromTransport(ctx, log, e.Transport)
	}
	return Internal()
}
