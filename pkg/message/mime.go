package message

import (
	"bytes"
	"encoding/base64"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/textproto"
	"sort"
	"strings"
	"time"
)

// WriteTo writes the message in RFC 5322 format. Bcc recipients are not
// written. Write failures are returned as *Error with KindIo.
func (m *Message) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	if err := m.write(cw); err != nil {
		return cw.n, Io(err)
	}
	return cw.n, nil
}

// Bytes returns the serialized message.
func (m *Message) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if _, err := m.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (m *Message) write(w io.Writer) error {
	hw := &headerWriter{w: w}
	hw.set("Message-ID", "<"+m.id+">")
	hw.set("Date", m.date.Format(time.RFC1123Z))
	hw.set("From", m.from.String())
	hw.list("Reply-To", m.replyTo)
	hw.list("To", m.to)
	hw.list("Cc", m.cc)
	hw.set("Subject", mime.QEncoding.Encode("utf-8", m.subject))

	for _, k := range m.HeaderKeys() {
		hw.set(k, mime.QEncoding.Encode("utf-8", m.headers[k]))
	}
	hw.set("MIME-Version", "1.0")
	if hw.err != nil {
		return hw.err
	}

	body := m.body()
	if len(m.attachments) == 0 {
		hw.fields(body.header)
		hw.end()
		if hw.err != nil {
			return hw.err
		}
		return body.write(w)
	}

	mixed := multipart.NewWriter(w)
	hw.set("Content-Type", "multipart/mixed; boundary="+mixed.Boundary())
	hw.end()
	if hw.err != nil {
		return hw.err
	}

	part, err := mixed.CreatePart(body.header)
	if err != nil {
		return err
	}
	if err := body.write(part); err != nil {
		return err
	}

	for _, a := range m.attachments {
		part, err := mixed.CreatePart(textproto.MIMEHeader{
			"Content-Type":              {mime.FormatMediaType(a.ContentType, map[string]string{"name": a.Filename})},
			"Content-Disposition":       {mime.FormatMediaType("attachment", map[string]string{"filename": a.Filename})},
			"Content-Transfer-Encoding": {"base64"},
		})
		if err != nil {
			return err
		}
		if err := writeBase64(part, a.Data); err != nil {
			return err
		}
	}
	return mixed.Close()
}

type bodyPart struct {
	header textproto.MIMEHeader
	write  func(io.Writer) error
}

// body returns the text and/or HTML content as a single MIME entity.
func (m *Message) body() bodyPart {
	if m.html == "" || m.text == "" {
		contentType, content := "text/plain; charset=utf-8", m.text
		if m.html != "" {
			contentType, content = "text/html; charset=utf-8", m.html
		}
		return bodyPart{
			header: textproto.MIMEHeader{
				"Content-Type":              {contentType},
				"Content-Transfer-Encoding": {"quoted-printable"},
			},
			write: func(w io.Writer) error { return writeQuotedPrintable(w, content) },
		}
	}

	boundary := multipart.NewWriter(io.Discard).Boundary()
	return bodyPart{
		header: textproto.MIMEHeader{
			"Content-Type": {"multipart/alternative; boundary=" + boundary},
		},
		write: func(w io.Writer) error {
			alt := multipart.NewWriter(w)
			if err := alt.SetBoundary(boundary); err != nil {
				return err
			}
			for _, p := range []struct{ contentType, content string }{
				{"text/plain; charset=utf-8", m.text},
				{"text/html; charset=utf-8", m.html},
			} {
				part, err := alt.CreatePart(textproto.MIMEHeader{
					"Content-Type":              {p.contentType},
					"Content-Transfer-Encoding": {"quoted-printable"},
				})
				if err != nil {
					return err
				}
				if err := writeQuotedPrintable(part, p.content); err != nil {
					return err
				}
			}
			return alt.Close()
		},
	}
}

type headerWriter struct {
	w   io.Writer
	err error
}

func (hw *headerWriter) set(key, value string) {
	if hw.err == nil {
		_, hw.err = io.WriteString(hw.w, key+": "+value+"\r\n")
	}
}

func (hw *headerWriter) list(key string, addrs []Address) {
	if len(addrs) == 0 {
		return
	}
	parts := make([]string, len(addrs))
	for i, a := range addrs {
		parts[i] = a.String()
	}
	hw.set(key, strings.Join(parts, ", "))
}

func (hw *headerWriter) fields(h textproto.MIMEHeader) {
	keys := make([]string, 0, len(h))
	for k := range h {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		for _, v := range h[k] {
			hw.set(k, v)
		}
	}
}

func (hw *headerWriter) end() {
	if hw.err == nil {
		_, hw.err = io.WriteString(hw.w, "\r\n")
	}
}

func writeQuotedPrintable(w io.Writer, s string) error {
	qw := quotedprintable.NewWriter(w)
	if _, err := io.WriteString(qw, s); err != nil {
		return err
	}
	return qw.Close()
}

// writeBase64 writes data base64-encoded in 76 character lines.
func writeBase64(w io.Writer, data []byte) error {
	const lineLen = 76
	encoded := base64.StdEncoding.EncodeToString(data)
	for len(encoded) > 0 {
		n := min(lineLen, len(encoded))
		if _, err := io.WriteString(w, encoded[:n]+"\r\n"); err != nil {
			return err
		}
		encoded = encoded[n:]
	}
	return nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.n += int64(n)
	return n, err
}
