package remote

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
)

// Kind identifies an HTTP loading failure variant.
type Kind uint8

const (
	KindTemplateLoadingFailed Kind = iota
	KindMetadataLoadingFailed
	KindMetadataURLInvalid
	KindRequestFailed
	kindCount
)

func (k Kind) String() string {
	switch k {
	case KindTemplateLoadingFailed:
		return "template_loading_failed"
	case KindMetadataLoadingFailed:
		return "metadata_loading_failed"
	case KindMetadataURLInvalid:
		return "metadata_url_invalid"
	case KindRequestFailed:
		return "request_failed"
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// Kinds lists every HTTP loading failure variant.
func Kinds() []Kind {
	kinds := make([]Kind, kindCount)
	for i := range kinds {
		kinds[i] = Kind(i)
	}
	return kinds
}

var (
	ErrInvalidBaseURL   = errors.New("remote: base url must be absolute http(s)")
	ErrUnexpectedStatus = errors.New("unexpected response status")
	ErrTooLarge         = errors.New("response body exceeds size limit")
)

// StatusError reports a non-2xx response.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: %d %s", e.URL, e.StatusCode, http.StatusText(e.StatusCode))
}

func (e *StatusError) Unwrap() error { return ErrUnexpectedStatus }

// Error is a failure to fetch a template over HTTP.
type Error struct {
	Kind Kind
	URL  string
	Err  error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindMetadataLoadingFailed:
		return fmt.Sprintf("remote: load metadata %s: %v", e.URL, e.Err)
	case KindMetadataURLInvalid:
		return fmt.Sprintf("remote: build url for %s: %v", e.URL, e.Err)
	case KindRequestFailed:
		return fmt.Sprintf("remote: request %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("remote: load template %s: %v", e.URL, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func TemplateLoadingFailed(url string, err error) *Error {
	return &Error{Kind: KindTemplateLoadingFailed, URL: url, Err: err}
}

func MetadataLoadingFailed(url string, err error) *Error {
	return &Error{Kind: KindMetadataLoadingFailed, URL: url, Err: err}
}

func MetadataURLInvalid(target string, err error) *Error {
	return &Error{Kind: KindMetadataURLInvalid, URL: target, Err: err}
}

func RequestFailed(url string, err error) *Error {
	return &Error{Kind: KindRequestFailed, URL: url, Err: err}
}
