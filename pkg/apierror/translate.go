package apierror

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/mailify/pkg/engine"
	"github.com/dmitrymomot/mailify/pkg/engine/loader"
	"github.com/dmitrymomot/mailify/pkg/engine/loader/bucket"
	"github.com/dmitrymomot/mailify/pkg/engine/loader/local"
	"github.com/dmitrymomot/mailify/pkg/engine/loader/remote"
	"github.com/dmitrymomot/mailify/pkg/engine/parser"
	"github.com/dmitrymomot/mailify/pkg/engine/render"
	"github.com/dmitrymomot/mailify/pkg/logger"
	"github.com/dmitrymomot/mailify/pkg/message"
	"github.com/dmitrymomot/mailify/pkg/transport"
)

// Every translator switches over the full variant set of its domain without
// a default branch. A variant added later without a mapping falls through to
// Internal and is caught by the totality tests.

// FromMessage translates a message building failure.
func FromMessage(err *message.Error) Record {
	if err == nil {
		return Internal()
	}
	switch err.Kind {
	case message.KindCannotParseFilename:
		return newRecord(http.StatusBadRequest, CodeCannotParseFilename)
	case message.KindEmailMissingAt:
		return newRecord(http.StatusBadRequest, CodeEmailMissingAt)
	case message.KindEmailMissingDomain:
		return newRecord(http.StatusBadRequest, CodeEmailMissingDomain)
	case message.KindEmailMissingLocalPart:
		return newRecord(http.StatusBadRequest, CodeEmailMissingLocalPart)
	case message.KindIo:
		return newRecord(http.StatusBadRequest, CodeIoError, cause(err.Err)...)
	case message.KindMissingFrom:
		return newRecord(http.StatusBadRequest, CodeMissingFrom)
	case message.KindMissingTo:
		return newRecord(http.StatusBadRequest, CodeMissingTo)
	case message.KindNonASCIIChars:
		return newRecord(http.StatusBadRequest, CodeNonASCIIChars)
	case message.KindTooManyFrom:
		return newRecord(http.StatusBadRequest, CodeTooManyFrom)
	}
	return Internal()
}

// FromEngine translates a pipeline failure by delegating to the domain of
// the stage that failed.
func FromEngine(err *engine.Error) Record {
	if err == nil {
		return Internal()
	}
	switch err.Kind {
	case engine.KindBuilding:
		return FromMessage(err.Building)
	case engine.KindInterpolation:
		return newRecord(http.StatusBadRequest, CodeInterpolation, cause(err.Interpolation)...)
	case engine.KindLoading:
		return FromLoader(err.Loading)
	case engine.KindParsing:
		return FromParser(err.Parsing)
	case engine.KindRendering:
		return FromRender(err.Rendering)
	}
	return Internal()
}

// FromLoader translates an aggregate loading failure. A failure of several
// sources is reported once, with one detail per source in source order.
func FromLoader(err *loader.Error) Record {
	if err == nil {
		return Internal()
	}
	switch err.Kind {
	case loader.KindMultiple:
		details := make([]string, len(err.Errs))
		for i, e := range err.Errs {
			details[i] = loader.CauseText(e)
		}
		return newRecord(http.StatusBadRequest, CodeLoading, details...)
	case loader.KindLocal:
		return FromLocal(err.Local)
	case loader.KindRemote:
		return FromRemote(err.Remote)
	case loader.KindBucket:
		return FromBucket(err.Bucket)
	}
	return Internal()
}

// FromLocal translates a local directory failure.
func FromLocal(err *local.Error) Record {
	if err == nil {
		return Internal()
	}
	switch err.Kind {
	case local.KindTemplateOpenFailed:
		return newRecord(http.StatusBadGateway, CodeTemplateOpeningFailed, cause(err.Err)...)
	case local.KindMetadataOpenFailed:
		return newRecord(http.StatusBadGateway, CodeMetadataOpeningFailed, cause(err.Err)...)
	case local.KindMetadataFormatInvalid:
		return newRecord(http.StatusBadGateway, CodeMetadataInvalidFormat, cause(err.Err)...)
	}
	return Internal()
}

// FromRemote translates an HTTP template server failure.
func FromRemote(err *remote.Error) Record {
	if err == nil {
		return Internal()
	}
	switch err.Kind {
	case remote.KindTemplateLoadingFailed:
		return newRecord(http.StatusBadGateway, CodeTemplateLoadingFailed, cause(err.Err)...)
	case remote.KindMetadataLoadingFailed:
		return newRecord(http.StatusBadGateway, CodeMetadataLoadingFailed, cause(err.Err)...)
	case remote.KindMetadataURLInvalid:
		return newRecord(http.StatusBadGateway, CodeURLBuildingFailed, cause(err.Err)...)
	case remote.KindRequestFailed:
		return newRecord(http.StatusBadGateway, CodeExternalRequestFailed, cause(err.Err)...)
	}
	return Internal()
}

// FromBucket translates an S3 template source failure.
func FromBucket(err *bucket.Error) Record {
	if err == nil {
		return Internal()
	}
	switch err.Kind {
	case bucket.KindTemplateFetchFailed:
		return newRecord(http.StatusBadGateway, CodeBucketTemplateFetchFailed, cause(err.Err)...)
	case bucket.KindMetadataFetchFailed:
		return newRecord(http.StatusBadGateway, CodeBucketMetadataFetchFailed, cause(err.Err)...)
	case bucket.KindMetadataFormatInvalid:
		return newRecord(http.StatusBadGateway, CodeBucketMetadataInvalidFormat, cause(err.Err)...)
	}
	return Internal()
}

// FromParser translates a template markup failure. Position-addressable
// variants carry "<description> at position <start>:<end>".
func FromParser(err *parser.Error) Record {
	if err == nil {
		return Internal()
	}
	switch err.Kind {
	case parser.KindEndOfStream:
		return newRecord(http.StatusBadRequest, CodeTemplateFormatError)
	case parser.KindSizeLimit:
		return newRecord(http.StatusBadRequest, CodeTemplateSizeExceeded)
	case parser.KindNoRootNode:
		return newRecord(http.StatusBadRequest, CodeTemplateMissingRoot)
	case parser.KindUnexpectedToken:
		return newRecord(http.StatusBadRequest, CodeTemplateUnexpectedToken, at("Unexpected token", err.Span))
	case parser.KindIncludeLoader:
		return newRecord(http.StatusBadGateway, CodeTemplateIncludeLoadingError,
			fmt.Sprintf("Include %q failed: %v", err.Path, err.Err))
	case parser.KindInvalidAttribute:
		return newRecord(http.StatusBadRequest, CodeTemplateInvalidAttribute, at("Invalid attribute", err.Span))
	case parser.KindInvalidFormat:
		return newRecord(http.StatusBadRequest, CodeTemplateInvalidFormat, at("Invalid format", err.Span))
	case parser.KindMissingAttribute:
		return newRecord(http.StatusBadRequest, CodeTemplateMissingAttribute,
			at(fmt.Sprintf("Missing attribute %q", err.Attribute), err.Span))
	case parser.KindSyntax:
		return newRecord(http.StatusBadRequest, CodeTemplateInvalidXML, fmt.Sprintf("Parser failed: %v", err.Err))
	case parser.KindUnexpectedAttribute:
		return newRecord(http.StatusBadRequest, CodeTemplateUnexpectedAttribute, at("Unexpected attribute", err.Span))
	case parser.KindUnexpectedElement:
		return newRecord(http.StatusBadRequest, CodeTemplateUnexpectedElement, at("Unexpected element", err.Span))
	}
	return Internal()
}

// FromRender translates a rendering failure. These indicate a defect in the
// template itself, so no detail is exposed.
func FromRender(err *render.Error) Record {
	if err == nil {
		return Internal()
	}
	switch err.Kind {
	case render.KindUnknownFragment:
		return newRecord(http.StatusInternalServerError, CodeRenderingUnknownFragment)
	case render.KindFragmentCycle:
		return newRecord(http.StatusInternalServerError, CodeRenderingFragmentCycle)
	}
	return Internal()
}

// FromTransport translates a delivery failure. The full error is logged at
// error level on log before being reduced to its cause; a nil log skips it.
func FromTransport(ctx context.Context, log *slog.Logger, err *transport.Error) Record {
	if err == nil {
		return Internal()
	}
	if log != nil {
		log.LogAttrs(ctx, slog.LevelError, "message delivery failed",
			logger.Error(err),
			slog.String("kind", err.Kind.String()),
			slog.String("op", err.Op),
			logger.Code(CodeSMTPTransportError),
			logger.Component("apierror"),
		)
	}
	switch err.Kind {
	case transport.KindConnection, transport.KindTLS, transport.KindAuth, transport.KindEnvelope,
		transport.KindData, transport.KindProvider, transport.KindCanceled:
		return newRecord(http.StatusInternalServerError, CodeSMTPTransportError, cause(err.Err)...)
	}
	return Internal()
}

func at(desc string, span parser.Span) string {
	return desc + " at position " + span.String()
}

func cause(err error) []string {
	if err == nil {
		return nil
	}
	return []string{err.Error()}
}
