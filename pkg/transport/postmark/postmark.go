// Package postmark delivers messages through the Postmark HTTP API.
package postmark

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/mrz1836/postmark"

	"github.com/dmitrymomot/mailify/pkg/message"
	"github.com/dmitrymomot/mailify/pkg/transport"
)

// Config holds Postmark credentials.
type Config struct {
	ServerToken  string `env:"POSTMARK_SERVER_TOKEN"`
	AccountToken string `env:"POSTMARK_ACCOUNT_TOKEN"`
	// MessageStream selects the Postmark stream; "outbound" when empty.
	MessageStream string `env:"POSTMARK_MESSAGE_STREAM"`
}

// Client is the subset of the Postmark API used by the sender.
type Client interface {
	SendEmail(ctx context.Context, email postmark.Email) (postmark.EmailResponse, error)
}

// Sender implements transport.Sender with Postmark.
type Sender struct {
	client Client
	stream string
}

var _ transport.Sender = (*Sender)(nil)

// Option configures a Sender.
type Option func(*Sender)

// WithClient sets a custom client. Useful for testing with mocks.
func WithClient(c Client) Option {
	return func(s *Sender) {
		s.client = c
	}
}

// New creates a Postmark sender. The server token is required.
func New(cfg Config, opts ...Option) (*Sender, error) {
	s := &Sender{stream: cfg.MessageStream}
	for _, opt := range opts {
		opt(s)
	}
	if s.client == nil {
		if cfg.ServerToken == "" {
			return nil, fmt.Errorf("%w: Postmark server token is required", transport.ErrInvalidConfig)
		}
		s.client = postmark.NewClient(cfg.ServerToken, cfg.AccountToken)
	}
	return s, nil
}

// Send submits msg to Postmark. Failures are always *transport.Error.
func (s *Sender) Send(ctx context.Context, msg *message.Message) error {
	if err := ctx.Err(); err != nil {
		return transport.NewError(transport.KindCanceled, "postmark.send", err)
	}

	resp, err := s.client.SendEmail(ctx, s.email(msg))
	if err != nil {
		return transport.NewError(transport.KindConnection, "postmark.send", err)
	}
	if resp.ErrorCode > 0 {
		return transport.NewError(transport.KindProvider, "postmark.send",
			fmt.Errorf("postmark error: %d - %s", resp.ErrorCode, resp.Message))
	}
	return nil
}

func (s *Sender) email(msg *message.Message) postmark.Email {
	email := postmark.Email{
		From:          msg.From().String(),
		To:            join(msg.To()),
		Cc:            join(msg.Cc()),
		Bcc:           join(msg.Bcc()),
		ReplyTo:       join(msg.ReplyTo()),
		Subject:       msg.Subject(),
		HTMLBody:      msg.HTML(),
		TextBody:      msg.Text(),
		Tag:           msg.Header("X-Tag"),
		MessageStream: s.stream,
		TrackOpens:    true,
	}

	for _, key := range msg.HeaderKeys() {
		if key == "X-Tag" {
			continue
		}
		email.Headers = append(email.Headers, postmark.Header{Name: key, Value: msg.Header(key)})
	}
	for _, a := range msg.Attachments() {
		email.Attachments = append(email.Attachments, postmark.Attachment{
			Name:        a.Filename,
			Content:     base64.StdEncoding.EncodeToString(a.Data),
			ContentType: a.ContentType,
		})
	}
	return email
}

func join(addrs []message.Address) string {
	parts := make([]string, len(addrs))
	for i, a := range addrs {
		parts[i] = a.String()
	}
	return strings.Join(parts, ", ")
}
