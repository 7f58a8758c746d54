package apierror

import (
	"encoding/json"
	"net/http"
	"slices"
)

// Code is a stable machine-readable error identifier.
type Code string

// Published error codes.
const (
	CodeCannotParseFilename         Code = "cannot-parse-filename"
	CodeEmailMissingAt              Code = "invalid-email-address-missing-at"
	CodeEmailMissingDomain          Code = "invalid-email-address-missing-domain"
	CodeEmailMissingLocalPart       Code = "invalid-email-address-missing-local-part"
	CodeIoError                     Code = "io-error-with-message"
	CodeMissingFrom                 Code = "missing-from-in-message"
	CodeMissingTo                   Code = "missing-to-in-message"
	CodeNonASCIIChars               Code = "non-ascii-chars-found"
	CodeTooManyFrom                 Code = "too-many-from-in-message"
	CodeInterpolation               Code = "interpolation-error"
	CodeLoading                     Code = "loading-error"
	CodeTemplateLoadingFailed       Code = "template-loading-failed"
	CodeMetadataLoadingFailed       Code = "metadata-loading-failed"
	CodeURLBuildingFailed           Code = "url-building-failed"
	CodeExternalRequestFailed       Code = "external-request-failed"
	CodeTemplateOpeningFailed       Code = "template-opening-failed"
	CodeMetadataOpeningFailed       Code = "metadata-opening-failed"
	CodeMetadataInvalidFormat       Code = "metadata-invalid-format"
	CodeBucketTemplateFetchFailed   Code = "bucket-template-fetch-failed"
	CodeBucketMetadataFetchFailed   Code = "bucket-metadata-fetch-failed"
	CodeBucketMetadataInvalidFormat Code = "bucket-metadata-invalid-format"
	CodeTemplateFormatError         Code = "template-format-error"
	CodeTemplateSizeExceeded        Code = "template-size-exceeded"
	CodeTemplateMissingRoot         Code = "template-missing-root"
	CodeTemplateUnexpectedToken     Code = "template-unexpected-token"
	CodeTemplateIncludeLoadingError Code = "template-include-loading-error"
	CodeTemplateInvalidAttribute    Code = "template-invalid-attribute"
	CodeTemplateInvalidFormat       Code = "template-invalid-format"
	CodeTemplateMissingAttribute    Code = "template-missing-attribute"
	CodeTemplateInvalidXML          Code = "template-invalid-xml"
	CodeTemplateUnexpectedAttribute Code = "template-unexpected-attribute"
	CodeTemplateUnexpectedElement   Code = "template-unexpected-element"
	CodeRenderingUnknownFragment    Code = "rendering-unknown-fragment"
	CodeRenderingFragmentCycle      Code = "rendering-fragment-cycle"
	CodeSMTPTransportError          Code = "smtp-transport-error"
	CodeInvalidRequestBody          Code = "invalid-request-body"
	CodeRouteNotFound               Code = "route-not-found"
	CodeMethodNotAllowed            Code = "method-not-allowed"
	CodeInternal                    Code = "internal-error"
)

var titles = map[Code]string{
	CodeCannotParseFilename:         "unable to parse attachment filename",
	CodeEmailMissingAt:              "unable to find at in email address",
	CodeEmailMissingDomain:          "unable to find domain in email address",
	CodeEmailMissingLocalPart:       "unable to find local part in email address",
	CodeIoError:                     "io error when building message",
	CodeMissingFrom:                 "couldn't find from when building message",
	CodeMissingTo:                   "couldn't find to when building message",
	CodeNonASCIIChars:               "couldn't decode strings when building email",
	CodeTooManyFrom:                 "couldn't define a single from for message",
	CodeInterpolation:               "something went wrong when interpolating values in template",
	CodeLoading:                     "something went wrong when loading template",
	CodeTemplateLoadingFailed:       "unable to load template file",
	CodeMetadataLoadingFailed:       "unable to load metadata file",
	CodeURLBuildingFailed:           "unable to build url",
	CodeExternalRequestFailed:       "unable to request external resource",
	CodeTemplateOpeningFailed:       "unable to open template",
	CodeMetadataOpeningFailed:       "unable to open metadata",
	CodeMetadataInvalidFormat:       "unable to decode metadata",
	CodeBucketTemplateFetchFailed:   "unable to fetch template from bucket",
	CodeBucketMetadataFetchFailed:   "unable to fetch metadata from bucket",
	CodeBucketMetadataInvalidFormat: "unable to decode metadata from bucket",
	CodeTemplateFormatError:         "unable to decode template, reached the end early",
	CodeTemplateSizeExceeded:        "unable to decode template, reached size limit",
	CodeTemplateMissingRoot:         "unable to decode template, no root component",
	CodeTemplateUnexpectedToken:     "unable to decode template, unexpected token",
	CodeTemplateIncludeLoadingError: "unable to load included template",
	CodeTemplateInvalidAttribute:    "unable to decode template, invalid attribute",
	CodeTemplateInvalidFormat:       "unable to decode template, invalid format",
	CodeTemplateMissingAttribute:    "unable to decode template, missing attribute",
	CodeTemplateInvalidXML:          "unable to decode template, invalid xml",
	CodeTemplateUnexpectedAttribute: "unable to decode template, unexpected attribute",
	CodeTemplateUnexpectedElement:   "unable to decode template, unexpected element",
	CodeRenderingUnknownFragment:    "unknown fragment",
	CodeRenderingFragmentCycle:      "fragment references itself",
	CodeSMTPTransportError:          "unable to send message",
	CodeInvalidRequestBody:          "unable to decode request",
	CodeRouteNotFound:               "route not found",
	CodeMethodNotAllowed:            "method not allowed",
	CodeInternal:                    "internal server error",
}

var codes = []Code{
	CodeCannotParseFilename,
	CodeEmailMissingAt,
	CodeEmailMissingDomain,
	CodeEmailMissingLocalPart,
	CodeIoError,
	CodeMissingFrom,
	CodeMissingTo,
	CodeNonASCIIChars,
	CodeTooManyFrom,
	CodeInterpolation,
	CodeLoading,
	CodeTemplateLoadingFailed,
	CodeMetadataLoadingFailed,
	CodeURLBuildingFailed,
	CodeExternalRequestFailed,
	CodeTemplateOpeningFailed,
	CodeMetadataOpeningFailed,
	CodeMetadataInvalidFormat,
	CodeBucketTemplateFetchFailed,
	CodeBucketMetadataFetchFailed,
	CodeBucketMetadataInvalidFormat,
	CodeTemplateFormatError,
	CodeTemplateSizeExceeded,
	CodeTemplateMissingRoot,
	CodeTemplateUnexpectedToken,
	CodeTemplateIncludeLoadingError,
	CodeTemplateInvalidAttribute,
	CodeTemplateInvalidFormat,
	CodeTemplateMissingAttribute,
	CodeTemplateInvalidXML,
	CodeTemplateUnexpectedAttribute,
	CodeTemplateUnexpectedElement,
	CodeRenderingUnknownFragment,
	CodeRenderingFragmentCycle,
	CodeSMTPTransportError,
	CodeInvalidRequestBody,
	CodeRouteNotFound,
	CodeMethodNotAllowed,
	CodeInternal,
}

// Codes lists every published code in declaration order.
func Codes() []Code {
	return slices.Clone(codes)
}

// Title returns the human-readable summary published with c.
func (c Code) Title() string {
	return titles[c]
}

// Record is the public representation of a failed request.
// Status becomes the HTTP status line and is not part of the body.
type Record struct {
	Status  int      `json:"-"`
	Code    Code     `json:"code"`
	Title   string   `json:"title"`
	Details []string `json:"details,omitempty"`
}

func newRecord(status int, code Code, details ...string) Record {
	return Record{
		Status:  status,
		Code:    code,
		Title:   code.Title(),
		Details: details,
	}
}

// Logged reports whether the translator producing r logs the failure itself
// when handed a logger. Callers holding such a record skip their own line.
func (r Record) Logged() bool {
	return r.Code == CodeSMTPTransportError
}

// Error makes a Record usable as an error value returned from handlers.
func (r Record) Error() string {
	return string(r.Code) + ": " + r.Title
}

// Render writes the record as a JSON body with its status.
func (r Record) Render(w http.ResponseWriter, _ *http.Request) error {
	status := r.Status
	if status == 0 {
		status = http.StatusInternalServerError
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(r)
}
