package handler_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mailify/binder"
	"github.com/dmitrymomot/mailify/handler"
	"github.com/dmitrymomot/mailify/pkg/apierror"
	"github.com/dmitrymomot/mailify/pkg/engine"
	"github.com/dmitrymomot/mailify/pkg/engine/loader"
	"github.com/dmitrymomot/mailify/pkg/engine/parser"
	"github.com/dmitrymomot/mailify/pkg/message"
	"github.com/dmitrymomot/mailify/pkg/requestid"
	"github.com/dmitrymomot/mailify/pkg/transport"
)

type mockResponse struct {
	statusCode int
	body       string
	renderErr  error
}

func (m mockResponse) Render(w http.ResponseWriter, r *http.Request) error {
	if m.renderErr != nil {
		return m.renderErr
	}
	w.WriteHeader(m.statusCode)
	_, err := w.Write([]byte(m.body))
	return err
}

func decodeRecord(t *testing.T, w *httptest.ResponseRecorder) apierror.Record {
	t.Helper()
	var rec apierror.Record
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rec))
	rec.Status = w.Code
	return rec
}

func TestWrap(t *testing.T) {
	t.Parallel()

	t.Run("basic handler without options", func(t *testing.T) {
		t.Parallel()

		h := handler.HandlerFunc[handler.Context, string](func(ctx handler.Context, req string) handler.Response {
			assert.NotNil(t, ctx)
			assert.Equal(t, "", req)
			return mockResponse{statusCode: http.StatusOK, body: "success"}
		})

		w := httptest.NewRecorder()
		handler.Wrap(h)(w, httptest.NewRequest(http.MethodGet, "/test", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "success", w.Body.String())
	})

	t.Run("render error becomes internal record", func(t *testing.T) {
		t.Parallel()

		h := handler.HandlerFunc[handler.Context, string](func(ctx handler.Context, req string) handler.Response {
			return mockResponse{renderErr: errors.New("render failed")}
		})

		w := httptest.NewRecorder()
		handler.Wrap(h)(w, httptest.NewRequest(http.MethodGet, "/test", nil))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		rec := decodeRecord(t, w)
		assert.Equal(t, apierror.CodeInternal, rec.Code)
		assert.NotContains(t, w.Body.String(), "render failed")
	})

	t.Run("nil response", func(t *testing.T) {
		t.Parallel()

		h := handler.HandlerFunc[handler.Context, string](func(ctx handler.Context, req string) handler.Response {
			return nil
		})

		w := httptest.NewRecorder()
		handler.Wrap(h)(w, httptest.NewRequest(http.MethodGet, "/test", nil))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, apierror.CodeInternal, decodeRecord(t, w).Code)
	})

	t.Run("binders run in order", func(t *testing.T) {
		t.Parallel()

		type sendRequest struct {
			Name string   `path:"name" json:"-"`
			To   []string `json:"to"`
		}

		var got sendRequest
		h := handler.HandlerFunc[handler.Context, sendRequest](func(ctx handler.Context, req sendRequest) handler.Response {
			got = req
			return handler.Empty()
		})

		r := chi.NewRouter()
		r.Post("/templates/{name}", handler.Wrap(h,
			handler.WithBinders[handler.Context, sendRequest](
				binder.Path(chi.URLParam),
				binder.JSON(),
			),
		))

		req := httptest.NewRequest(http.MethodPost, "/templates/welcome", strings.NewReader(`{"to":["bob@example.com"]}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "welcome", got.Name)
		assert.Equal(t, []string{"bob@example.com"}, got.To)
	})

	t.Run("not applicable binder is skipped", func(t *testing.T) {
		t.Parallel()

		type metadataRequest struct {
			Name string `path:"name"`
		}

		h := handler.HandlerFunc[handler.Context, metadataRequest](func(ctx handler.Context, req metadataRequest) handler.Response {
			return handler.JSON(req.Name)
		})

		w := httptest.NewRecorder()
		handler.Wrap(h, handler.WithBinder[handler.Context, metadataRequest](binder.JSON()))(w, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("binder failure is an invalid request", func(t *testing.T) {
		t.Parallel()

		type sendRequest struct {
			To []string `json:"to"`
		}

		called := false
		h := handler.HandlerFunc[handler.Context, sendRequest](func(ctx handler.Context, req sendRequest) handler.Response {
			called = true
			return handler.Empty()
		})

		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"to":`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		handler.Wrap(h, handler.WithBinder[handler.Context, sendRequest](binder.JSON()))(w, req)

		assert.False(t, called)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		rec := decodeRecord(t, w)
		assert.Equal(t, apierror.CodeInvalidRequestBody, rec.Code)
		assert.Len(t, rec.Details, 1)
	})

	t.Run("decorators wrap in order", func(t *testing.T) {
		t.Parallel()

		var calls []string
		decorator := func(name string) handler.Decorator[handler.Context, string] {
			return func(next handler.HandlerFunc[handler.Context, string]) handler.HandlerFunc[handler.Context, string] {
				return func(ctx handler.Context, req string) handler.Response {
					calls = append(calls, name)
					return next(ctx, req)
				}
			}
		}

		h := handler.HandlerFunc[handler.Context, string](func(ctx handler.Context, req string) handler.Response {
			calls = append(calls, "handler")
			return handler.Empty()
		})

		w := httptest.NewRecorder()
		handler.Wrap(h, handler.WithDecorators(decorator("outer"), decorator("inner")))(w, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, []string{"outer", "inner", "handler"}, calls)
	})

	t.Run("custom context factory", func(t *testing.T) {
		t.Parallel()

		created := false
		factory := func(w http.ResponseWriter, r *http.Request) handler.Context {
			created = true
			return handler.NewContext(w, r)
		}

		h := handler.HandlerFunc[handler.Context, string](func(ctx handler.Context, req string) handler.Response {
			return handler.Empty()
		})

		w := httptest.NewRecorder()
		handler.Wrap(h, handler.WithContextFactory[handler.Context, string](factory))(w, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.True(t, created)
		assert.Equal(t, http.StatusNoContent, w.Code)
	})
}

func TestNewErrorHandler(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		err    error
		status int
		code   apierror.Code
		level  string
		msg    string
	}{
		{"message failure", message.MissingFrom(), http.StatusBadRequest, apierror.CodeMissingFrom, "WARN", "request error"},
		{"engine failure", engine.Parsing(parser.NoRootNode()), http.StatusBadRequest, apierror.CodeTemplateMissingRoot, "WARN", "request error"},
		{"transport failure", &transport.Error{Kind: transport.KindConnection, Op: "smtp.dial", Err: errors.New("refused")}, http.StatusInternalServerError, apierror.CodeSMTPTransportError, "ERROR", "message delivery failed"},
		{"record", apierror.RouteNotFound(), http.StatusNotFound, apierror.CodeRouteNotFound, "WARN", "request error"},
		{"unknown", errors.New("surprise"), http.StatusInternalServerError, apierror.CodeInternal, "ERROR", "request error"},
		{"bind failure", binder.ErrMissingContentType, http.StatusBadRequest, apierror.CodeInvalidRequestBody, "WARN", "request error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			log := slog.New(slog.NewJSONHandler(&buf, nil))

			req := httptest.NewRequest(http.MethodPost, "/templates/welcome", nil)
			req = req.WithContext(requestid.WithContext(req.Context(), "req-1"))
			w := httptest.NewRecorder()

			handler.NewErrorHandler(log)(handler.NewContext(w, req), tt.err)

			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.code, decodeRecord(t, w).Code)

			out := buf.String()
			assert.Equal(t, 1, strings.Count(out, "\n"), out)
			assert.Contains(t, out, `"msg":"`+tt.msg+`"`)
			assert.Contains(t, out, `"level":"`+tt.level+`"`)
			assert.Contains(t, out, `"request_id":"req-1"`)
			assert.Contains(t, out, `"code":"`+string(tt.code)+`"`)
			assert.Contains(t, out, `"path":"/templates/welcome"`)
		})
	}

	t.Run("nil logger", func(t *testing.T) {
		t.Parallel()

		w := httptest.NewRecorder()
		handler.NewErrorHandler(nil)(handler.NewContext(w, httptest.NewRequest(http.MethodGet, "/", nil)), message.MissingTo())
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestNewErrorHandler_LogsEveryCause(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, nil))

	err := engine.Loading(loader.Multiple(errors.New("local: missing"), errors.New("remote: 404")))
	w := httptest.NewRecorder()
	handler.NewErrorHandler(log)(handler.NewContext(w, httptest.NewRequest(http.MethodPost, "/templates/welcome", nil)), err)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	out := buf.String()
	assert.Contains(t, out, `"errors":{"0":"local: missing","1":"remote: 404"}`)
}

func TestError(t *testing.T) {
	t.Parallel()

	h := handler.HandlerFunc[handler.Context, string](func(ctx handler.Context, req string) handler.Response {
		return handler.Error(message.EmailMissingAt("bob"))
	})

	w := httptest.NewRecorder()
	handler.Wrap(h, handler.WithErrorHandler[handler.Context, string](handler.NewErrorHandler(nil)))(w, httptest.NewRequest(http.MethodPost, "/", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"code":"invalid-email-address-missing-at","title":"unable to find at in email address"}`, w.Body.String())
}
