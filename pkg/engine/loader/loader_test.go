package loader_test

import (
	"context"
	"errors"
	"io/fs"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mailify/pkg/engine/loader"
	"github.com/dmitrymomot/mailify/pkg/engine/loader/local"
	"github.com/dmitrymomot/mailify/pkg/engine/loader/remote"
	"github.com/dmitrymomot/mailify/pkg/engine/source"
)

type failingSource struct{ err error }

func (f failingSource) Find(context.Context, string) (*source.Template, error) { return nil, f.err }

func (f failingSource) Metadata(context.Context, string) (*source.Metadata, error) {
	return nil, f.err
}

func (f failingSource) Partial(context.Context, string) (string, error) { return "", f.err }

func templates() *local.Loader {
	return local.NewFS(fstest.MapFS{
		"welcome/template.mjml": {Data: []byte("<mjml/>")},
		"welcome/metadata.json": {Data: []byte(`{"subject":"Hi"}`)},
		"partials/footer.mjml":  {Data: []byte("<mj-section/>")},
	})
}

func TestNew(t *testing.T) {
	t.Parallel()

	_, err := loader.New()
	assert.ErrorIs(t, err, loader.ErrNoSources)

	_, err = loader.New(nil)
	assert.ErrorIs(t, err, loader.ErrNoSources)
}

func TestLoader_FirstSuccessWins(t *testing.T) {
	t.Parallel()

	down := failingSource{err: remote.RequestFailed("http://templates/welcome", errors.New("connection refused"))}
	l, err := loader.New(down, templates())
	require.NoError(t, err)

	tpl, err := l.Find(context.Background(), "welcome")
	require.NoError(t, err)
	assert.Equal(t, "Hi", tpl.Metadata.Subject)

	md, err := l.Metadata(context.Background(), "welcome")
	require.NoError(t, err)
	assert.Equal(t, "welcome", md.Name)

	part, err := l.Partial(context.Background(), "partials/footer.mjml")
	require.NoError(t, err)
	assert.Equal(t, "<mj-section/>", part)
}

func TestLoader_SingleSource(t *testing.T) {
	t.Parallel()

	l, err := loader.New(templates())
	require.NoError(t, err)

	_, err = l.Find(context.Background(), "missing")

	var lerr *loader.Error
	require.ErrorAs(t, err, &lerr)
	assert.Equal(t, loader.KindLocal, lerr.Kind)
	require.NotNil(t, lerr.Local)
	assert.Equal(t, local.KindTemplateOpenFailed, lerr.Local.Kind)
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestLoader_SingleRemoteSource(t *testing.T) {
	t.Parallel()

	cause := remote.MetadataLoadingFailed("http://templates/welcome/metadata.json", remote.ErrUnexpectedStatus)
	l, err := loader.New(failingSource{err: cause})
	require.NoError(t, err)

	_, err = l.Metadata(context.Background(), "welcome")

	var lerr *loader.Error
	require.ErrorAs(t, err, &lerr)
	assert.Equal(t, loader.KindRemote, lerr.Kind)
	assert.Same(t, cause, lerr.Remote)
}

func TestLoader_Multiple(t *testing.T) {
	t.Parallel()

	first := remote.RequestFailed("http://templates/missing/template.mjml", errors.New("connection refused"))
	l, err := loader.New(failingSource{err: first}, templates())
	require.NoError(t, err)

	_, err = l.Find(context.Background(), "missing")

	var lerr *loader.Error
	require.ErrorAs(t, err, &lerr)
	assert.Equal(t, loader.KindMultiple, lerr.Kind)
	require.Len(t, lerr.Errs, 2)
	assert.Same(t, first, lerr.Errs[0])

	var second *local.Error
	require.ErrorAs(t, lerr.Errs[1], &second)
	assert.Equal(t, local.KindTemplateOpenFailed, second.Kind)

	assert.ErrorIs(t, err, fs.ErrNotExist)
	assert.Contains(t, err.Error(), "all 2 sources failed")
}

func TestLoader_UnknownSourceError(t *testing.T) {
	t.Parallel()

	cause := errors.New("boom")
	l, err := loader.New(failingSource{err: cause})
	require.NoError(t, err)

	_, err = l.Find(context.Background(), "welcome")

	var lerr *loader.Error
	require.ErrorAs(t, err, &lerr)
	assert.Equal(t, loader.KindMultiple, lerr.Kind)
	assert.Equal(t, []error{cause}, lerr.Errs)
}

func TestKinds(t *testing.T) {
	t.Parallel()

	kinds := loader.Kinds()
	assert.Len(t, kinds, 4)
	for _, k := range kinds {
		assert.NotContains(t, k.String(), "Kind(")
	}
}

func TestError_NilCauses(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  *loader.Error
		want string
	}{
		{"local", loader.Local(nil), "loader: local: unknown cause"},
		{"remote", loader.Remote(nil), "loader: remote: unknown cause"},
		{"bucket", loader.Bucket(nil), "loader: bucket: unknown cause"},
		{"multiple", loader.Multiple(nil), "loader: all 1 sources failed: unknown cause"},
		{"mixed", loader.Multiple(errors.New("boom"), nil), "loader: all 2 sources failed: boom; unknown cause"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			require.NotPanics(t, func() { _ = tt.err.Error() })
			assert.Equal(t, tt.want, tt.err.Error())
			assert.False(t, errors.Is(tt.err, fs.ErrNotExist))
		})
	}

	assert.Empty(t, loader.Local(nil).Unwrap())
	assert.Len(t, loader.Multiple(errors.New("boom"), nil).Unwrap(), 1)
}
