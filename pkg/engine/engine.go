// Package engine turns a named template and request parameters into a
// ready-to-send message.
//
// The pipeline is: load the template, interpolate parameters into the
// source, parse the markup, render HTML, build the message. Each stage
// reports failures through its own domain, wrapped in *Error.
package engine

import (
	"bytes"
	"context"
	"html"
	"text/template"

	"github.com/dmitrymomot/mailify/pkg/engine/loader"
	"github.com/dmitrymomot/mailify/pkg/engine/parser"
	"github.com/dmitrymomot/mailify/pkg/engine/render"
	"github.com/dmitrymomot/mailify/pkg/engine/source"
	"github.com/dmitrymomot/mailify/pkg/message"
)

// Request describes a message to produce.
type Request struct {
	Template string
	// From overrides the engine's default sender.
	From        string
	To          []string
	Cc          []string
	Bcc         []string
	ReplyTo     []string
	Params      map[string]any
	Tag         string
	Attachments []message.Attachment
}

// Engine renders templates from a source. It is safe for concurrent use.
type Engine struct {
	source      source.Source
	defaultFrom string
	maxSize     int
}

// Option configures an Engine.
type Option func(*Engine)

// WithDefaultFrom sets the sender used when a request has none.
func WithDefaultFrom(addr string) Option {
	return func(e *Engine) {
		e.defaultFrom = addr
	}
}

// WithMaxSize limits the size of an interpolated template.
func WithMaxSize(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxSize = n
		}
	}
}

// New creates an engine loading templates from src.
func New(src source.Source, opts ...Option) *Engine {
	e := &Engine{source: src, maxSize: parser.DefaultMaxSize}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Metadata returns the metadata of a template. Failures are always *Error.
func (e *Engine) Metadata(ctx context.Context, name string) (*source.Metadata, error) {
	md, err := e.source.Metadata(ctx, name)
	if err != nil {
		return nil, Loading(loader.Wrap(err))
	}
	return md, nil
}

// Render produces the message for req. Failures are always *Error.
func (e *Engine) Render(ctx context.Context, req Request) (*message.Message, error) {
	tpl, err := e.source.Find(ctx, req.Template)
	if err != nil {
		return nil, Loading(loader.Wrap(err))
	}

	escaped := escapeParams(req.Params)
	content, err := interpolate(req.Template, tpl.Content, escaped)
	if err != nil {
		return nil, Interpolation(err)
	}

	p := parser.New(
		parser.WithMaxSize(e.maxSize),
		parser.WithIncluder(func(ctx context.Context, path string) (string, error) {
			partial, err := e.source.Partial(ctx, path)
			if err != nil {
				return "", err
			}
			return interpolate(path, partial, escaped)
		}),
	)
	doc, err := p.Parse(ctx, content)
	if err != nil {
		return nil, Parsing(err.(*parser.Error))
	}

	res, err := render.Render(ctx, doc)
	if err != nil {
		return nil, Rendering(err.(*render.Error))
	}

	subject := tpl.Metadata.Subject
	if subject == "" {
		subject = res.Title
	} else if subject, err = interpolate(req.Template+".subject", subject, req.Params); err != nil {
		return nil, Interpolation(err)
	}

	from := req.From
	if from == "" {
		from = e.defaultFrom
	}

	b := message.NewBuilder().
		To(req.To...).
		Cc(req.Cc...).
		Bcc(req.Bcc...).
		ReplyTo(req.ReplyTo...).
		Subject(subject).
		HTML(res.HTML)
	if from != "" {
		b.From(from)
	}
	if req.Tag != "" {
		b.Header("X-Tag", req.Tag)
	}
	for _, a := range req.Attachments {
		b.Attach(a.Filename, a.ContentType, a.Data)
	}

	msg, err := b.Build()
	if err != nil {
		return nil, Building(err.(*message.Error))
	}
	return msg, nil
}

// interpolate executes src as a text/template. Referencing a missing
// parameter is an error.
func interpolate(name, src string, params map[string]any) (string, error) {
	t, err := template.New(name).Option("missingkey=error").Parse(src)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, params); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// escapeParams returns a copy of params with every string escaped for
// inclusion in markup.
func escapeParams(params map[string]any) map[string]any {
	if params == nil {
		return map[string]any{}
	}
	out := make(map[string]any, len(params))
	for k, v := range params {
		out[k] = escapeValue(v)
	}
	return out
}

func escapeValue(v any) any {
	switch val := v.(type) {
	case string:
		return html.EscapeString(val)
	case map[string]any:
		return escapeParams(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = escapeValue(item)
		}
		return out
	case []string:
		out := make([]string, len(val))
		for i, item := range val {
			out[i] = html.EscapeString(item)
		}
		return out
	}
	return v
}
