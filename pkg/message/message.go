// Package message builds MIME email messages from rendered templates.
package message

import (
	"net/textproto"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Attachment is a file attached to a message.
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Message is an immutable, validated email message.
type Message struct {
	id          string
	date        time.Time
	from        Address
	to          []Address
	cc          []Address
	bcc         []Address
	replyTo     []Address
	subject     string
	html        string
	text        string
	headers     map[string]string
	attachments []Attachment
}

func (m *Message) ID() string                { return m.id }
func (m *Message) Date() time.Time           { return m.date }
func (m *Message) From() Address             { return m.from }
func (m *Message) To() []Address             { return m.to }
func (m *Message) Cc() []Address             { return m.cc }
func (m *Message) Bcc() []Address            { return m.bcc }
func (m *Message) ReplyTo() []Address        { return m.replyTo }
func (m *Message) Subject() string           { return m.subject }
func (m *Message) HTML() string              { return m.html }
func (m *Message) Text() string              { return m.text }
func (m *Message) Attachments() []Attachment { return m.attachments }

// Header returns an extra header set with Builder.Header.
func (m *Message) Header(key string) string {
	return m.headers[textproto.CanonicalMIMEHeaderKey(key)]
}

// HeaderKeys returns the names of the extra headers in sorted order.
func (m *Message) HeaderKeys() []string {
	keys := make([]string, 0, len(m.headers))
	for k := range m.headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Recipients returns every envelope recipient: To, Cc, then Bcc.
func (m *Message) Recipients() []Address {
	out := make([]Address, 0, len(m.to)+len(m.cc)+len(m.bcc))
	out = append(out, m.to...)
	out = append(out, m.cc...)
	return append(out, m.bcc...)
}

// Builder accumulates message parts. The first invalid input is kept and
// reported by Build, so calls can be chained.
type Builder struct {
	from        []Address
	to          []Address
	cc          []Address
	bcc         []Address
	replyTo     []Address
	subject     string
	html        string
	text        string
	headers     map[string]string
	attachments []Attachment
	now         func() time.Time
	err         error
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{now: time.Now, headers: make(map[string]string)}
}

func (b *Builder) addresses(dst *[]Address, addrs []string) *Builder {
	for _, s := range addrs {
		a, err := ParseAddress(s)
		if err != nil {
			b.fail(err)
			continue
		}
		*dst = append(*dst, a)
	}
	return b
}

func (b *Builder) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}

func (b *Builder) From(addrs ...string) *Builder    { return b.addresses(&b.from, addrs) }
func (b *Builder) To(addrs ...string) *Builder      { return b.addresses(&b.to, addrs) }
func (b *Builder) Cc(addrs ...string) *Builder      { return b.addresses(&b.cc, addrs) }
func (b *Builder) Bcc(addrs ...string) *Builder     { return b.addresses(&b.bcc, addrs) }
func (b *Builder) ReplyTo(addrs ...string) *Builder { return b.addresses(&b.replyTo, addrs) }

func (b *Builder) Subject(s string) *Builder {
	b.subject = s
	return b
}

func (b *Builder) HTML(body string) *Builder {
	b.html = body
	return b
}

func (b *Builder) Text(body string) *Builder {
	b.text = body
	return b
}

// Header sets an extra header such as X-Tag. Structural headers set by the
// builder itself cannot be overridden.
func (b *Builder) Header(key, value string) *Builder {
	key = strings.TrimSpace(key)
	if key == "" || strings.ContainsAny(key, ": \r\n") || reservedHeaders[strings.ToLower(key)] {
		return b
	}
	b.headers[textproto.CanonicalMIMEHeaderKey(key)] = strings.NewReplacer("\r", "", "\n", "").Replace(value)
	return b
}

// Attach adds a file. The filename must be a bare, printable file name.
func (b *Builder) Attach(filename, contentType string, data []byte) *Builder {
	if !validFilename(filename) {
		b.fail(CannotParseFilename(filename))
		return b
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	b.attachments = append(b.attachments, Attachment{
		Filename:    filename,
		ContentType: contentType,
		Data:        data,
	})
	return b
}

// Build validates the accumulated parts and returns the message.
// Failures are always *Error.
func (b *Builder) Build() (*Message, error) {
	if b.err != nil {
		return nil, b.err
	}
	switch {
	case len(b.from) == 0:
		return nil, MissingFrom()
	case len(b.from) > 1:
		return nil, TooManyFrom()
	case len(b.to)+len(b.cc)+len(b.bcc) == 0:
		return nil, MissingTo()
	}

	from := b.from[0]
	headers := make(map[string]string, len(b.headers))
	for k, v := range b.headers {
		headers[k] = v
	}

	return &Message{
		id:          uuid.NewString() + "@" + from.Domain(),
		date:        b.now(),
		from:        from,
		to:          append([]Address(nil), b.to...),
		cc:          append([]Address(nil), b.cc...),
		bcc:         append([]Address(nil), b.bcc...),
		replyTo:     append([]Address(nil), b.replyTo...),
		subject:     b.subject,
		html:        b.html,
		text:        b.text,
		headers:     headers,
		attachments: append([]Attachment(nil), b.attachments...),
	}, nil
}

var reservedHeaders = map[string]bool{
	"from": true, "to": true, "cc": true, "bcc": true, "reply-to": true,
	"subject": true, "date": true, "message-id": true, "mime-version": true,
	"content-type": true, "content-transfer-encoding": true,
}

func validFilename(name string) bool {
	if name == "" || name == "." || name == ".." || path.Base(name) != name || strings.ContainsRune(name, '\\') {
		return false
	}
	for _, r := range name {
		if r < 0x20 || r == 0x7f || r == '"' {
			return false
		}
	}
	return true
}
