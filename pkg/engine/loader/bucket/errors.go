package bucket

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// Kind identifies an S3 loading failure variant.
type Kind uint8

const (
	KindTemplateFetchFailed Kind = iota
	KindMetadataFetchFailed
	KindMetadataFormatInvalid
	kindCount
)

func (k Kind) String() string {
	switch k {
	case KindTemplateFetchFailed:
		return "template_fetch_failed"
	case KindMetadataFetchFailed:
		return "metadata_fetch_failed"
	case KindMetadataFormatInvalid:
		return "metadata_format_invalid"
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// Kinds lists every S3 loading failure variant.
func Kinds() []Kind {
	kinds := make([]Kind, kindCount)
	for i := range kinds {
		kinds[i] = Kind(i)
	}
	return kinds
}

var (
	ErrInvalidConfig      = errors.New("bucket: bucket and region are required")
	ErrFailedToLoadConfig = errors.New("bucket: failed to load aws config")

	ErrObjectNotFound     = errors.New("object not found")
	ErrBucketNotFound     = errors.New("bucket not found")
	ErrAccessDenied       = errors.New("access denied")
	ErrServiceUnavailable = errors.New("service unavailable")
	ErrTooLarge           = errors.New("object exceeds size limit")
)

// Error is a failure to fetch a template object from S3.
type Error struct {
	Kind Kind
	Key  string
	Err  error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindMetadataFetchFailed:
		return fmt.Sprintf("bucket: fetch metadata %s: %v", e.Key, e.Err)
	case KindMetadataFormatInvalid:
		return fmt.Sprintf("bucket: decode metadata %s: %v", e.Key, e.Err)
	}
	return fmt.Sprintf("bucket: fetch template %s: %v", e.Key, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func TemplateFetchFailed(key string, err error) *Error {
	return &Error{Kind: KindTemplateFetchFailed, Key: key, Err: err}
}

func MetadataFetchFailed(key string, err error) *Error {
	return &Error{Kind: KindMetadataFetchFailed, Key: key, Err: err}
}

func MetadataFormatInvalid(key string, err error) *Error {
	return &Error{Kind: KindMetadataFormatInvalid, Key: key, Err: err}
}

// classify maps SDK errors onto package sentinels, keeping the API message.
func classify(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return err
	}

	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return ErrObjectNotFound
	}
	var nsb *types.NoSuchBucket
	if errors.As(err, &nsb) {
		return ErrBucketNotFound
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return ErrObjectNotFound
		case "NoSuchBucket":
			return ErrBucketNotFound
		case "AccessDenied", "Forbidden":
			return fmt.Errorf("%w: %s", ErrAccessDenied, apiErr.ErrorMessage())
		case "SlowDown", "ServiceUnavailable":
			return fmt.Errorf("%w: %s", ErrServiceUnavailable, apiErr.ErrorMessage())
		}
		return fmt.Errorf("%s: %s", apiErr.ErrorCode(), apiErr.ErrorMessage())
	}

	return err
}
