package apierror_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mailify/pkg/apierror"
	"github.com/dmitrymomot/mailify/pkg/engine"
	"github.com/dmitrymomot/mailify/pkg/engine/loader"
	"github.com/dmitrymomot/mailify/pkg/engine/loader/bucket"
	"github.com/dmitrymomot/mailify/pkg/engine/loader/local"
	"github.com/dmitrymomot/mailify/pkg/engine/loader/remote"
	"github.com/dmitrymomot/mailify/pkg/engine/parser"
	"github.com/dmitrymomot/mailify/pkg/engine/render"
	"github.com/dmitrymomot/mailify/pkg/message"
	"github.com/dmitrymomot/mailify/pkg/transport"
)

var errBoom = errors.New("boom")

// assertTranslated checks the invariants every translated record must hold.
func assertTranslated(t *testing.T, rec apierror.Record, name string) {
	t.Helper()
	assert.NotEqual(t, apierror.CodeInternal, rec.Code, "%s is not translated", name)
	assert.Contains(t, apierror.Codes(), rec.Code, name)
	assert.NotEmpty(t, rec.Title, name)
	assert.GreaterOrEqual(t, rec.Status, 400, name)
	assert.Less(t, rec.Status, 600, name)
	assert.NotEmpty(t, http.StatusText(rec.Status), name)
}

func sampleEngineError(k engine.Kind) *engine.Error {
	return &engine.Error{
		Kind:          k,
		Building:      message.MissingFrom(),
		Interpolation: errBoom,
		Loading:       loader.Multiple(errBoom),
		Parsing:       parser.NoRootNode(),
		Rendering:     render.UnknownFragment("footer"),
	}
}

func sampleLoaderError(k loader.Kind) *loader.Error {
	return &loader.Error{
		Kind:   k,
		Local:  local.TemplateOpenFailed("welcome/template.mjml", errBoom),
		Remote: remote.RequestFailed("http://example.com", errBoom),
		Bucket: bucket.TemplateFetchFailed("welcome/template.mjml", errBoom),
		Errs:   []error{errBoom},
	}
}

func TestTotality(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	for _, k := range message.Kinds() {
		assertTranslated(t, apierror.FromMessage(&message.Error{Kind: k, Input: "x", Err: errBoom}), "message."+k.String())
	}
	for _, k := range engine.Kinds() {
		assertTranslated(t, apierror.FromEngine(sampleEngineError(k)), "engine."+k.String())
	}
	for _, k := range loader.Kinds() {
		assertTranslated(t, apierror.FromLoader(sampleLoaderError(k)), "loader."+k.String())
	}
	for _, k := range local.Kinds() {
		assertTranslated(t, apierror.FromLocal(&local.Error{Kind: k, Path: "p", Err: errBoom}), "local."+k.String())
	}
	for _, k := range remote.Kinds() {
		assertTranslated(t, apierror.FromRemote(&remote.Error{Kind: k, URL: "u", Err: errBoom}), "remote."+k.String())
	}
	for _, k := range bucket.Kinds() {
		assertTranslated(t, apierror.FromBucket(&bucket.Error{Kind: k, Key: "k", Err: errBoom}), "bucket."+k.String())
	}
	for _, k := range parser.Kinds() {
		assertTranslated(t, apierror.FromParser(&parser.Error{Kind: k, Attribute: "href", Path: "p", Err: errBoom}), "parser."+k.String())
	}
	for _, k := range render.Kinds() {
		assertTranslated(t, apierror.FromRender(&render.Error{Kind: k, Fragment: "f"}), "render."+k.String())
	}
	for _, k := range transport.Kinds() {
		assertTranslated(t, apierror.FromTransport(ctx, nil, &transport.Error{Kind: k, Op: "smtp.dial", Err: errBoom}), "transport."+k.String())
	}
	for _, k := range apierror.Kinds() {
		se := &apierror.ServerError{
			Kind:      k,
			Engine:    sampleEngineError(engine.KindInterpolation),
			Message:   message.MissingTo(),
			Transport: &transport.Error{Kind: transport.KindConnection, Op: "smtp.dial", Err: errBoom},
		}
		assertTranslated(t, se.Record(ctx, nil), "server."+k.String())
	}
}

func TestUnknownKind(t *testing.T) {
	t.Parallel()

	rec := apierror.FromMessage(&message.Error{Kind: message.Kind(200)})
	assert.Equal(t, apierror.Internal(), rec)
	assert.Equal(t, apierror.Internal(), apierror.FromParser(nil))
}

func TestDeterminism(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	other := errors.New("other")

	same := func(t *testing.T, a, b apierror.Record, name string) {
		t.Helper()
		assert.Equal(t, a.Status, b.Status, name)
		assert.Equal(t, a.Code, b.Code, name)
		assert.Equal(t, a.Title, b.Title, name)
	}

	for _, k := range message.Kinds() {
		same(t,
			apierror.FromMessage(&message.Error{Kind: k, Input: "bob", Err: errBoom}),
			apierror.FromMessage(&message.Error{Kind: k, Input: "alice@", Err: other}),
			"message."+k.String())
	}
	for _, k := range engine.Kinds() {
		same(t, apierror.FromEngine(sampleEngineError(k)), apierror.FromEngine(sampleEngineError(k)), "engine."+k.String())
	}
	for _, k := range loader.Kinds() {
		b := sampleLoaderError(k)
		b.Errs = []error{other, errBoom}
		same(t, apierror.FromLoader(sampleLoaderError(k)), apierror.FromLoader(b), "loader."+k.String())
	}
	for _, k := range local.Kinds() {
		same(t,
			apierror.FromLocal(&local.Error{Kind: k, Path: "a", Err: errBoom}),
			apierror.FromLocal(&local.Error{Kind: k, Path: "b", Err: other}),
			"local."+k.String())
	}
	for _, k := range remote.Kinds() {
		same(t,
			apierror.FromRemote(&remote.Error{Kind: k, URL: "http://a", Err: errBoom}),
			apierror.FromRemote(&remote.Error{Kind: k, URL: "http://b", Err: other}),
			"remote."+k.String())
	}
	for _, k := range bucket.Kinds() {
		same(t,
			apierror.FromBucket(&bucket.Error{Kind: k, Key: "a", Err: errBoom}),
			apierror.FromBucket(&bucket.Error{Kind: k, Key: "b", Err: other}),
			"bucket."+k.String())
	}
	for _, k := range parser.Kinds() {
		same(t,
			apierror.FromParser(&parser.Error{Kind: k, Span: parser.Span{Start: 1, End: 2}, Err: errBoom}),
			apierror.FromParser(&parser.Error{Kind: k, Span: parser.Span{Start: 7, End: 30}, Err: other}),
			"parser."+k.String())
	}
	for _, k := range render.Kinds() {
		same(t,
			apierror.FromRender(&render.Error{Kind: k, Fragment: "header"}),
			apierror.FromRender(&render.Error{Kind: k, Fragment: "footer"}),
			"render."+k.String())
	}
	for _, k := range transport.Kinds() {
		same(t,
			apierror.FromTransport(ctx, nil, &transport.Error{Kind: k, Op: "smtp.dial", Err: errBoom}),
			apierror.FromTransport(ctx, nil, &transport.Error{Kind: k, Op: "postmark.send", Err: other}),
			"transport."+k.String())
	}
}

func TestNilPayloads(t *testing.T) {
	t.Parallel()

	for _, se := range []*apierror.ServerError{
		apierror.Engine(nil),
		apierror.Message(nil),
		apierror.Transport(nil),
		nil,
	} {
		require.NotPanics(t, func() { _ = se.Error() })
		assert.NoError(t, se.Unwrap())
		assert.Equal(t, apierror.Internal(), se.Record(context.Background(), nil))
	}

	rec := apierror.FromLoader(loader.Multiple(nil))
	assert.Equal(t, apierror.CodeLoading, rec.Code)
	assert.Equal(t, []string{loader.UnknownCause}, rec.Details)

	rec = apierror.FromLoader(loader.Multiple(errBoom, nil))
	assert.Equal(t, []string{"boom", loader.UnknownCause}, rec.Details)
}

func TestFromParser(t *testing.T) {
	t.Parallel()

	span := parser.Span{Start: 4, End: 9}

	tests := []struct {
		name    string
		err     *parser.Error
		status  int
		code    apierror.Code
		details []string
	}{
		{"end of stream", parser.EndOfStream(), 400, apierror.CodeTemplateFormatError, nil},
		{"size limit", parser.SizeLimit(), 400, apierror.CodeTemplateSizeExceeded, nil},
		{"no root", parser.NoRootNode(), 400, apierror.CodeTemplateMissingRoot, nil},
		{"unexpected token", parser.UnexpectedToken(span), 400, apierror.CodeTemplateUnexpectedToken, []string{"Unexpected token at position 4:9"}},
		{"invalid attribute", parser.InvalidAttribute(span), 400, apierror.CodeTemplateInvalidAttribute, []string{"Invalid attribute at position 4:9"}},
		{"invalid format", parser.InvalidFormat(span), 400, apierror.CodeTemplateInvalidFormat, []string{"Invalid format at position 4:9"}},
		{"missing attribute", parser.MissingAttribute("href", span), 400, apierror.CodeTemplateMissingAttribute, []string{`Missing attribute "href" at position 4:9`}},
		{"unexpected attribute", parser.UnexpectedAttribute(span), 400, apierror.CodeTemplateUnexpectedAttribute, []string{"Unexpected attribute at position 4:9"}},
		{"unexpected element", parser.UnexpectedElement(span), 400, apierror.CodeTemplateUnexpectedElement, []string{"Unexpected element at position 4:9"}},
		{"syntax", parser.Syntax(errBoom), 400, apierror.CodeTemplateInvalidXML, []string{"Parser failed: boom"}},
		{"include", parser.IncludeLoader("partials/footer.mjml", errBoom), 502, apierror.CodeTemplateIncludeLoadingError, []string{`Include "partials/footer.mjml" failed: boom`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := apierror.FromParser(tt.err)
			assert.Equal(t, tt.status, rec.Status)
			assert.Equal(t, tt.code, rec.Code)
			assert.Equal(t, tt.details, rec.Details)
		})
	}
}

func TestFromLoader_Multiple(t *testing.T) {
	t.Parallel()

	errs := []error{
		local.TemplateOpenFailed("welcome/template.mjml", errors.New("file does not exist")),
		remote.TemplateLoadingFailed("http://templates/welcome/template.mjml", errors.New("404 Not Found")),
		errors.New("third source"),
	}

	rec := apierror.FromLoader(loader.Multiple(errs...))

	assert.Equal(t, http.StatusBadRequest, rec.Status)
	assert.Equal(t, apierror.CodeLoading, rec.Code)
	assert.Equal(t, "something went wrong when loading template", rec.Title)
	require.Len(t, rec.Details, len(errs))
	for i, err := range errs {
		assert.Contains(t, rec.Details[i], err.Error())
	}
}

func TestFromLoader_SingleSourceDelegates(t *testing.T) {
	t.Parallel()

	lerr := local.MetadataFormatInvalid("welcome/metadata.json", errBoom)
	assert.Equal(t, apierror.FromLocal(lerr), apierror.FromLoader(loader.Local(lerr)))

	rerr := remote.MetadataURLInvalid("::", errBoom)
	assert.Equal(t, apierror.FromRemote(rerr), apierror.FromLoader(loader.Remote(rerr)))

	berr := bucket.MetadataFetchFailed("welcome/metadata.json", errBoom)
	assert.Equal(t, apierror.FromBucket(berr), apierror.FromLoader(loader.Bucket(berr)))
}

func TestFromEngine_Delegates(t *testing.T) {
	t.Parallel()

	perr := parser.UnexpectedElement(parser.Span{Start: 1, End: 3})
	assert.Equal(t, apierror.FromParser(perr), apierror.FromEngine(engine.Parsing(perr)))

	merr := message.EmailMissingAt("bob")
	assert.Equal(t, apierror.FromMessage(merr), apierror.FromEngine(engine.Building(merr)))

	rerr := render.UnknownFragment("x")
	assert.Equal(t, apierror.FromRender(rerr), apierror.FromEngine(engine.Rendering(rerr)))

	lerr := loader.Multiple(errBoom)
	assert.Equal(t, apierror.FromLoader(lerr), apierror.FromEngine(engine.Loading(lerr)))

	rec := apierror.FromEngine(engine.Interpolation(errBoom))
	assert.Equal(t, http.StatusBadRequest, rec.Status)
	assert.Equal(t, apierror.CodeInterpolation, rec.Code)
	assert.Equal(t, []string{"boom"}, rec.Details)
}

func TestStatusClassification(t *testing.T) {
	t.Parallel()

	t.Run("missing sender", func(t *testing.T) {
		t.Parallel()

		rec := apierror.FromMessage(message.MissingFrom())
		assert.Equal(t, http.StatusBadRequest, rec.Status)
		assert.Equal(t, apierror.CodeMissingFrom, rec.Code)
		assert.Empty(t, rec.Details)
	})

	t.Run("invalid address", func(t *testing.T) {
		t.Parallel()

		rec := apierror.FromMessage(message.EmailMissingAt("bob"))
		assert.Equal(t, http.StatusBadRequest, rec.Status)
		assert.Equal(t, apierror.CodeEmailMissingAt, rec.Code)
		assert.Equal(t, "unable to find at in email address", rec.Title)
	})

	t.Run("transport connection failure", func(t *testing.T) {
		t.Parallel()

		rec := apierror.FromTransport(context.Background(), nil,
			&transport.Error{Kind: transport.KindConnection, Op: "smtp.dial", Err: errors.New("connection refused")})
		assert.Equal(t, http.StatusInternalServerError, rec.Status)
		assert.Equal(t, apierror.CodeSMTPTransportError, rec.Code)
		assert.Equal(t, []string{"connection refused"}, rec.Details)

		for _, k := range message.Kinds() {
			assert.NotEqual(t, apierror.FromMessage(&message.Error{Kind: k}).Code, rec.Code)
		}
	})

	t.Run("unknown fragment", func(t *testing.T) {
		t.Parallel()

		rec := apierror.FromRender(render.UnknownFragment("footer"))
		assert.GreaterOrEqual(t, rec.Status, 500)
		assert.Equal(t, apierror.CodeRenderingUnknownFragment, rec.Code)
		assert.Empty(t, rec.Details)
	})

	t.Run("downstream sources", func(t *testing.T) {
		t.Parallel()

		for _, k := range local.Kinds() {
			assert.Equal(t, http.StatusBadGateway, apierror.FromLocal(&local.Error{Kind: k, Err: errBoom}).Status)
		}
		for _, k := range remote.Kinds() {
			assert.Equal(t, http.StatusBadGateway, apierror.FromRemote(&remote.Error{Kind: k, Err: errBoom}).Status)
		}
		for _, k := range bucket.Kinds() {
			assert.Equal(t, http.StatusBadGateway, apierror.FromBucket(&bucket.Error{Kind: k, Err: errBoom}).Status)
		}
	})
}

func TestFromTransport_Logs(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, nil))

	terr := &transport.Error{Kind: transport.KindAuth, Op: "smtp.auth", Err: errors.New("535 bad credentials")}
	rec := apierror.FromTransport(context.Background(), log, terr)

	assert.Equal(t, apierror.FromTransport(context.Background(), nil, terr), rec)
	out := buf.String()
	assert.Contains(t, out, `"level":"ERROR"`)
	assert.Contains(t, out, "smtp.auth (auth): 535 bad credentials")
	assert.Contains(t, out, `"kind":"auth"`)
}
