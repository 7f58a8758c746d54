package bucket_test

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mailify/pkg/engine/loader/bucket"
	"github.com/dmitrymomot/mailify/pkg/engine/source"
)

// MockClient is a mock implementation of the bucket.Client interface
type MockClient struct {
	mock.Mock
}

func (m *MockClient) GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	args := m.Called(ctx, params, optFns)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*s3.GetObjectOutput), args.Error(1)
}

func forKey(key string) any {
	return mock.MatchedBy(func(in *s3.GetObjectInput) bool {
		return in.Key != nil && *in.Key == key && in.Bucket != nil && *in.Bucket == "templates"
	})
}

func object(body string) *s3.GetObjectOutput {
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(body))}
}

func newLoader(t *testing.T, client bucket.Client, opts ...bucket.Option) *bucket.Loader {
	t.Helper()
	l, err := bucket.New(context.Background(), bucket.Config{
		Bucket: "templates",
		Region: "us-east-1",
		Prefix: "/mail",
	}, append([]bucket.Option{bucket.WithClient(client)}, opts...)...)
	require.NoError(t, err)
	return l
}

func TestNew_InvalidConfig(t *testing.T) {
	t.Parallel()

	_, err := bucket.New(context.Background(), bucket.Config{Bucket: "templates"})
	assert.ErrorIs(t, err, bucket.ErrInvalidConfig)
}

func TestLoader_Find(t *testing.T) {
	t.Parallel()

	client := new(MockClient)
	client.On("GetObject", mock.Anything, forKey("mail/welcome/template.mjml"), mock.Anything).
		Return(object("<mjml/>"), nil)
	client.On("GetObject", mock.Anything, forKey("mail/welcome/metadata.json"), mock.Anything).
		Return(nil, &types.NoSuchKey{})
	client.On("GetObject", mock.Anything, forKey("mail/welcome/metadata.yaml"), mock.Anything).
		Return(object("subject: Welcome aboard\n"), nil)

	tpl, err := newLoader(t, client).Find(context.Background(), "welcome")
	require.NoError(t, err)
	assert.Equal(t, "<mjml/>", tpl.Content)
	assert.Equal(t, "welcome", tpl.Metadata.Name)
	assert.Equal(t, "Welcome aboard", tpl.Metadata.Subject)
	client.AssertExpectations(t)
}

func TestLoader_Failures(t *testing.T) {
	t.Parallel()

	t.Run("template missing", func(t *testing.T) {
		t.Parallel()

		client := new(MockClient)
		client.On("GetObject", mock.Anything, forKey("mail/nope/template.mjml"), mock.Anything).
			Return(nil, &types.NoSuchKey{})

		_, err := newLoader(t, client).Find(context.Background(), "nope")

		var berr *bucket.Error
		require.ErrorAs(t, err, &berr)
		assert.Equal(t, bucket.KindTemplateFetchFailed, berr.Kind)
		assert.Equal(t, "mail/nope/template.mjml", berr.Key)
		assert.ErrorIs(t, err, bucket.ErrObjectNotFound)
	})

	t.Run("metadata access denied", func(t *testing.T) {
		t.Parallel()

		client := new(MockClient)
		client.On("GetObject", mock.Anything, forKey("mail/welcome/template.mjml"), mock.Anything).
			Return(object("<mjml/>"), nil)
		client.On("GetObject", mock.Anything, forKey("mail/welcome/metadata.json"), mock.Anything).
			Return(nil, &smithy.GenericAPIError{Code: "AccessDenied", Message: "no"})

		_, err := newLoader(t, client).Find(context.Background(), "welcome")

		var berr *bucket.Error
		require.ErrorAs(t, err, &berr)
		assert.Equal(t, bucket.KindMetadataFetchFailed, berr.Kind)
		assert.ErrorIs(t, err, bucket.ErrAccessDenied)
	})

	t.Run("metadata missing everywhere", func(t *testing.T) {
		t.Parallel()

		client := new(MockClient)
		client.On("GetObject", mock.Anything, mock.Anything, mock.Anything).
			Return(nil, &types.NoSuchKey{})

		_, err := newLoader(t, client).Metadata(context.Background(), "welcome")

		var berr *bucket.Error
		require.ErrorAs(t, err, &berr)
		assert.Equal(t, bucket.KindMetadataFetchFailed, berr.Kind)
		assert.ErrorIs(t, err, bucket.ErrObjectNotFound)
		client.AssertNumberOfCalls(t, "GetObject", len(source.MetadataFiles))
	})

	t.Run("metadata malformed", func(t *testing.T) {
		t.Parallel()

		client := new(MockClient)
		client.On("GetObject", mock.Anything, forKey("mail/welcome/metadata.json"), mock.Anything).
			Return(object(`{"subject": [}`), nil)

		_, err := newLoader(t, client).Metadata(context.Background(), "welcome")

		var berr *bucket.Error
		require.ErrorAs(t, err, &berr)
		assert.Equal(t, bucket.KindMetadataFormatInvalid, berr.Kind)
	})

	t.Run("object too large", func(t *testing.T) {
		t.Parallel()

		client := new(MockClient)
		client.On("GetObject", mock.Anything, forKey("mail/partials/footer.mjml"), mock.Anything).
			Return(object(strings.Repeat("x", 16)), nil)

		_, err := newLoader(t, client, bucket.WithMaxSize(8)).Partial(context.Background(), "partials/footer.mjml")
		assert.ErrorIs(t, err, bucket.ErrTooLarge)
	})

	t.Run("invalid name", func(t *testing.T) {
		t.Parallel()

		_, err := newLoader(t, new(MockClient)).Find(context.Background(), "..")
		assert.ErrorIs(t, err, source.ErrInvalidName)
	})
}

func TestLoader_Partial(t *testing.T) {
	t.Parallel()

	client := new(MockClient)
	client.On("GetObject", mock.Anything, forKey("mail/partials/footer.mjml"), mock.Anything).
		Return(object("<mj-section/>"), nil)

	got, err := newLoader(t, client).Partial(context.Background(), "partials/footer.mjml")
	require.NoError(t, err)
	assert.Equal(t, "<mj-section/>", got)
}

func TestKinds(t *testing.T) {
	t.Parallel()

	assert.Len(t, bucket.Kinds(), 3)
}
