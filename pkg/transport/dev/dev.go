// Package dev is a transport for local development. Messages are written to
// a directory instead of being delivered.
package dev

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/dmitrymomot/mailify/pkg/message"
	"github.com/dmitrymomot/mailify/pkg/transport"
)

// Sender saves each message as an .eml file plus a .json summary.
type Sender struct {
	dir string
	now func() time.Time
}

var _ transport.Sender = (*Sender)(nil)

// New creates a sender writing into dir. The directory is created on demand.
func New(dir string) *Sender {
	return &Sender{dir: dir, now: time.Now}
}

type summary struct {
	Timestamp string   `json:"timestamp"`
	MessageID string   `json:"message_id"`
	From      string   `json:"from"`
	To        []string `json:"to"`
	Subject   string   `json:"subject"`
	Tag       string   `json:"tag,omitempty"`
}

// Send writes msg to disk. Failures are always *transport.Error.
func (s *Sender) Send(ctx context.Context, msg *message.Message) error {
	if err := ctx.Err(); err != nil {
		return transport.NewError(transport.KindCanceled, "dev.send", err)
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return transport.NewError(transport.KindConnection, "dev.mkdir", err)
	}

	now := s.now()
	identifier := msg.Header("X-Tag")
	if identifier == "" {
		identifier = msg.Subject()
	}
	base := fmt.Sprintf("%s_%s", now.Format("2006_01_02_150405.000"), sanitizeFilename(identifier))

	raw, err := msg.Bytes()
	if err != nil {
		return transport.NewError(transport.KindData, "dev.encode", err)
	}
	if err := os.WriteFile(filepath.Join(s.dir, base+".eml"), raw, 0o644); err != nil {
		return transport.NewError(transport.KindData, "dev.write", err)
	}

	to := make([]string, 0, len(msg.Recipients()))
	for _, a := range msg.Recipients() {
		to = append(to, a.Email)
	}
	data, err := json.MarshalIndent(summary{
		Timestamp: now.Format(time.RFC3339),
		MessageID: msg.ID(),
		From:      msg.From().Email,
		To:        to,
		Subject:   msg.Subject(),
		Tag:       msg.Header("X-Tag"),
	}, "", "  ")
	if err != nil {
		return transport.NewError(transport.KindData, "dev.encode", err)
	}
	if err := os.WriteFile(filepath.Join(s.dir, base+".json"), data, 0o644); err != nil {
		return transport.NewError(transport.KindData, "dev.write", err)
	}
	return nil
}

var sanitizeRegex = regexp.MustCompile(`[^a-zA-Z0-9\-_.]`)

func sanitizeFilename(s string) string {
	s = strings.ReplaceAll(s, " ", "_")
	s = sanitizeRegex.ReplaceAllString(s, "")
	const maxLength = 100
	if len(s) > maxLength {
		s = s[:maxLength]
	}
	if s == "" {
		s = "email"
	}
	return strings.ToLower(s)
}
