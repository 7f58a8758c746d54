// Package smtp delivers messages over SMTP with STARTTLS, implicit TLS or
// plain connections.
package smtp

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"time"

	"github.com/dmitrymomot/mailify/pkg/message"
	"github.com/dmitrymomot/mailify/pkg/transport"
)

var (
	ErrStartTLSUnsupported = errors.New("server does not support STARTTLS")
	ErrAuthUnsupported     = errors.New("server does not support AUTH")
)

// Sender implements transport.Sender over SMTP. It is safe for concurrent
// use; every Send opens its own connection.
type Sender struct {
	config    Config
	addr      string
	tlsConfig *tls.Config
}

var _ transport.Sender = (*Sender)(nil)

// Option configures a Sender.
type Option func(*Sender)

// WithTLSConfig overrides the TLS configuration, e.g. to trust a private CA.
func WithTLSConfig(cfg *tls.Config) Option {
	return func(s *Sender) {
		if cfg != nil {
			s.tlsConfig = cfg
		}
	}
}

// New creates an SMTP sender.
func New(cfg Config, opts ...Option) (*Sender, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("%w: SMTP host is required", transport.ErrInvalidConfig)
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("%w: SMTP port must be between 1 and 65535", transport.ErrInvalidConfig)
	}
	switch cfg.TLSMode {
	case TLSModeStartTLS, TLSModeTLS, TLSModePlain:
	default:
		return nil, fmt.Errorf("%w: SMTP TLS mode must be starttls, tls, or plain", transport.ErrInvalidConfig)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	s := &Sender{
		config:    cfg,
		addr:      net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		tlsConfig: &tls.Config{ServerName: cfg.Host, MinVersion: tls.VersionTLS12},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// MustNew is like New but panics on invalid config.
func MustNew(cfg Config, opts ...Option) *Sender {
	s, err := New(cfg, opts...)
	if err != nil {
		panic(err)
	}
	return s
}

// Send delivers msg to every recipient in a single SMTP transaction.
// Failures are always *transport.Error.
func (s *Sender) Send(ctx context.Context, msg *message.Message) error {
	if err := ctx.Err(); err != nil {
		return transport.NewError(transport.KindCanceled, "smtp.send", err)
	}

	conn, err := s.dial(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()

	// Unblock pending reads and writes when the caller gives up.
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	client, err := smtp.NewClient(conn, s.config.Host)
	if err != nil {
		return s.fail(ctx, transport.KindConnection, "smtp.greeting", err)
	}
	defer func() { _ = client.Close() }()

	return s.transaction(ctx, client, msg)
}

func (s *Sender) dial(ctx context.Context) (net.Conn, error) {
	dialer := &net.Dialer{Timeout: s.config.Timeout}
	conn, err := dialer.DialContext(ctx, "tcp", s.addr)
	if err != nil {
		return nil, transport.NewError(transport.KindConnection, "smtp.dial", err)
	}

	deadline := time.Now().Add(s.config.Timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	_ = conn.SetDeadline(deadline)

	if s.config.TLSMode != TLSModeTLS {
		return conn, nil
	}

	tlsConn := tls.Client(conn, s.tlsConfig)
	if err := tlsConn.HandshakeContext(ctx); err != nil {
		_ = conn.Close()
		return nil, transport.NewError(transport.KindTLS, "smtp.handshake", err)
	}
	return tlsConn, nil
}

func (s *Sender) transaction(ctx context.Context, client *smtp.Client, msg *message.Message) error {
	if s.config.LocalName != "" {
		if err := client.Hello(s.config.LocalName); err != nil {
			return s.fail(ctx, transport.KindConnection, "smtp.hello", err)
		}
	}

	if s.config.TLSMode == TLSModeStartTLS {
		if ok, _ := client.Extension("STARTTLS"); !ok {
			return s.fail(ctx, transport.KindTLS, "smtp.starttls", ErrStartTLSUnsupported)
		}
		if err := client.StartTLS(s.tlsConfig); err != nil {
			return s.fail(ctx, transport.KindTLS, "smtp.starttls", err)
		}
	}

	if s.config.Username != "" {
		if ok, _ := client.Extension("AUTH"); !ok {
			return s.fail(ctx, transport.KindAuth, "smtp.auth", ErrAuthUnsupported)
		}
		auth := smtp.PlainAuth("", s.config.Username, s.config.Password, s.config.Host)
		if err := client.Auth(auth); err != nil {
			return s.fail(ctx, transport.KindAuth, "smtp.auth", err)
		}
	}

	if err := client.Mail(msg.From().Email); err != nil {
		return s.fail(ctx, transport.KindEnvelope, "smtp.mail", err)
	}
	for _, rcpt := range msg.Recipients() {
		if err := client.Rcpt(rcpt.Email); err != nil {
			return s.fail(ctx, transport.KindEnvelope, "smtp.rcpt", err)
		}
	}

	w, err := client.Data()
	if err != nil {
		return s.fail(ctx, transport.KindData, "smtp.data", err)
	}
	if _, err := msg.WriteTo(w); err != nil {
		_ = w.Close()
		return s.fail(ctx, transport.KindData, "smtp.data", err)
	}
	if err := w.Close(); err != nil {
		return s.fail(ctx, transport.KindData, "smtp.data", err)
	}

	// The message is accepted at this point; some servers drop the
	// connection right after DATA.
	_ = client.Quit()
	return nil
}

// fail attributes an error to a canceled context when the caller gave up,
// since closing the connection surfaces as a generic network error.
func (s *Sender) fail(ctx context.Context, kind transport.Kind, op string, err error) *transport.Error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return transport.NewError(transport.KindCanceled, op, errors.Join(ctxErr, err))
	}
	return transport.NewError(kind, op, err)
}
