// Package remote loads templates from an HTTP server that exposes the same
// layout as a local template directory:
//
//	GET <base>/<name>/template.mjml
//	GET <base>/<name>/metadata.json
//	GET <base>/<partial path>
package remote

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrymomot/mailify/pkg/engine/source"
)

const (
	DefaultTimeout = 10 * time.Second
	DefaultMaxSize = 1 << 20
)

// Loader fetches templates over HTTP.
type Loader struct {
	base    string
	client  *http.Client
	maxSize int64
	header  http.Header
}

var _ source.Source = (*Loader)(nil)

// Option configures a Loader.
type Option func(*Loader)

// WithHTTPClient sets the client used for requests.
func WithHTTPClient(c *http.Client) Option {
	return func(l *Loader) {
		if c != nil {
			l.client = c
		}
	}
}

// WithTimeout sets the timeout of the default client.
func WithTimeout(d time.Duration) Option {
	return func(l *Loader) {
		if d > 0 {
			l.client = &http.Client{Timeout: d}
		}
	}
}

// WithMaxSize limits the size of a single response body.
func WithMaxSize(n int64) Option {
	return func(l *Loader) {
		if n > 0 {
			l.maxSize = n
		}
	}
}

// WithHeader adds a header to every request, e.g. an authorization token.
func WithHeader(key, value string) Option {
	return func(l *Loader) {
		l.header.Add(key, value)
	}
}

// New returns a loader for templates served under baseURL.
func New(baseURL string, opts ...Option) (*Loader, error) {
	u, err := url.Parse(baseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, ErrInvalidBaseURL
	}

	l := &Loader{
		base:    strings.TrimSuffix(u.String(), "/"),
		client:  &http.Client{Timeout: DefaultTimeout},
		maxSize: DefaultMaxSize,
		header:  make(http.Header),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Find fetches the template and its metadata.
func (l *Loader) Find(ctx context.Context, name string) (*source.Template, error) {
	if !source.ValidName(name) {
		return nil, MetadataURLInvalid(name, source.ErrInvalidName)
	}

	tplURL, err := url.JoinPath(l.base, url.PathEscape(name), source.TemplateFile)
	if err != nil {
		return nil, MetadataURLInvalid(name, err)
	}
	body, err := l.get(ctx, tplURL)
	if err != nil {
		var rerr *Error
		if errors.As(err, &rerr) {
			return nil, rerr
		}
		return nil, TemplateLoadingFailed(tplURL, err)
	}

	md, err := l.Metadata(ctx, name)
	if err != nil {
		return nil, err
	}

	return &source.Template{
		Name:     name,
		Metadata: *md,
		Content:  string(body),
	}, nil
}

// Metadata fetches and decodes the template metadata.
func (l *Loader) Metadata(ctx context.Context, name string) (*source.Metadata, error) {
	if !source.ValidName(name) {
		return nil, MetadataURLInvalid(name, source.ErrInvalidName)
	}

	mdURL, err := url.JoinPath(l.base, url.PathEscape(name), source.MetadataFile)
	if err != nil {
		return nil, MetadataURLInvalid(name, err)
	}
	body, err := l.get(ctx, mdURL)
	if err != nil {
		var rerr *Error
		if errors.As(err, &rerr) {
			return nil, rerr
		}
		return nil, MetadataLoadingFailed(mdURL, err)
	}

	md, err := source.DecodeMetadata(body, name)
	if err != nil {
		return nil, MetadataLoadingFailed(mdURL, err)
	}
	return md, nil
}

// Partial fetches a file relative to the base URL.
func (l *Loader) Partial(ctx context.Context, p string) (string, error) {
	if !source.ValidPartial(p) {
		return "", MetadataURLInvalid(p, source.ErrInvalidName)
	}

	segments := strings.Split(p, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	partURL, err := url.JoinPath(l.base, segments...)
	if err != nil {
		return "", MetadataURLInvalid(p, err)
	}

	body, err := l.get(ctx, partURL)
	if err != nil {
		var rerr *Error
		if errors.As(err, &rerr) {
			return "", rerr
		}
		return "", TemplateLoadingFailed(partURL, err)
	}
	return string(body), nil
}

// get performs a GET request. Transport failures come back as *Error with
// KindRequestFailed; response failures are returned unwrapped so callers can
// attribute them to the resource they asked for.
func (l *Loader) get(ctx context.Context, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, MetadataURLInvalid(target, err)
	}
	for key, values := range l.header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, RequestFailed(target, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, l.maxSize))
		return nil, &StatusError{URL: target, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, l.maxSize+1))
	if err != nil {
		return nil, err
	}
	if int64(len(body)) > l.maxSize {
		return nil, ErrTooLarge
	}
	return body, nil
}
