package parser_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mailify/pkg/engine/parser"
)

const welcome = `<?xml version="1.0" encoding="UTF-8"?>
<mjml lang="en">
  <mj-head>
    <mj-title>Welcome</mj-title>
    <mj-preview>Thanks for joining</mj-preview>
    <mj-fragment name="footer">
      <mj-text color="#999999">See you soon</mj-text>
    </mj-fragment>
  </mj-head>
  <mj-body background-color="#ffffff" width="600px">
    <!-- greeting -->
    <mj-section padding="20px">
      <mj-column width="100%">
        <mj-text font-size="16px">Hello there</mj-text>
        <mj-button href="https://example.com/login">Log in</mj-button>
        <mj-image src="https://example.com/logo.png" alt="logo"/>
        <mj-divider border-color="#eee"/>
        <mj-spacer height="10px"/>
      </mj-column>
    </mj-section>
    <mj-use fragment="footer"/>
  </mj-body>
</mjml>`

func TestParse_Document(t *testing.T) {
	t.Parallel()

	doc, err := parser.New().Parse(context.Background(), welcome)
	require.NoError(t, err)

	assert.Equal(t, "en", doc.Lang)
	assert.Equal(t, "Welcome", doc.Title)
	assert.Equal(t, "Thanks for joining", doc.Preview)
	require.Contains(t, doc.Fragments, "footer")
	assert.Equal(t, "See you soon", doc.Fragments["footer"].Children[0].Text)

	require.Len(t, doc.Body.Children, 2)
	assert.Equal(t, "#ffffff", doc.Body.Attr("background-color", ""))

	section := doc.Body.Children[0]
	assert.Equal(t, parser.TagSection, section.Tag)
	require.Len(t, section.Children, 1)

	column := section.Children[0]
	require.Len(t, column.Children, 5)
	assert.Equal(t, "Hello there", column.Children[0].Text)
	assert.Equal(t, "https://example.com/login", column.Children[1].Attrs["href"])
	assert.Equal(t, "logo", column.Children[2].Attr("alt", ""))

	assert.Equal(t, parser.TagUse, doc.Body.Children[1].Tag)
}

func TestParse_EmptyBody(t *testing.T) {
	t.Parallel()

	doc, err := parser.New().Parse(context.Background(), `<mjml/>`)
	require.NoError(t, err)
	require.NotNil(t, doc.Body)
	assert.Empty(t, doc.Body.Children)
	assert.Empty(t, doc.Fragments)
}

func TestParse_Failures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  string
		opts []parser.Option
		kind parser.Kind
	}{
		{name: "empty input", src: "", kind: parser.KindNoRootNode},
		{name: "foreign root", src: `<html></html>`, kind: parser.KindNoRootNode},
		{name: "unclosed element", src: `<mjml><mj-body>`, kind: parser.KindEndOfStream},
		{
			name: "size limit",
			src:  `<mjml><mj-body></mj-body></mjml>`,
			opts: []parser.Option{parser.WithMaxSize(10)},
			kind: parser.KindSizeLimit,
		},
		{name: "text in root", src: `<mjml>hello</mjml>`, kind: parser.KindUnexpectedToken},
		{name: "doctype", src: `<!DOCTYPE html><mjml/>`, kind: parser.KindUnexpectedToken},
		{name: "second root", src: `<mjml/><mjml/>`, kind: parser.KindUnexpectedElement},
		{name: "unknown element", src: `<mjml><mj-body><mj-foo/></mj-body></mjml>`, kind: parser.KindUnexpectedElement},
		{
			name: "misplaced element",
			src:  `<mjml><mj-body><mj-text>hi</mj-text></mj-body></mjml>`,
			kind: parser.KindUnexpectedElement,
		},
		{name: "unexpected attribute", src: `<mjml><mj-body foo="1"></mj-body></mjml>`, kind: parser.KindUnexpectedAttribute},
		{name: "namespaced attribute", src: `<mjml><mj-body xml:lang="en"></mj-body></mjml>`, kind: parser.KindInvalidAttribute},
		{name: "bad color", src: `<mjml><mj-body background-color="red"></mj-body></mjml>`, kind: parser.KindInvalidFormat},
		{name: "bad length", src: `<mjml><mj-body width="wide"></mj-body></mjml>`, kind: parser.KindInvalidFormat},
		{name: "mismatched end tag", src: `<mjml><mj-body></mjml>`, kind: parser.KindSyntax},
		{
			name: "duplicate fragment",
			src: `<mjml><mj-head>` +
				`<mj-fragment name="a"><mj-spacer/></mj-fragment>` +
				`<mj-fragment name="a"><mj-spacer/></mj-fragment>` +
				`</mj-head></mjml>`,
			kind: parser.KindInvalidAttribute,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			doc, err := parser.New(tt.opts...).Parse(context.Background(), tt.src)
			require.Error(t, err)
			assert.Nil(t, doc)

			var perr *parser.Error
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, tt.kind, perr.Kind, "got %v", perr)
		})
	}
}

func TestParse_UnexpectedElementSpan(t *testing.T) {
	t.Parallel()

	_, err := parser.New().Parse(context.Background(), `<mjml><mj-body><mj-foo/></mj-body></mjml>`)

	var perr *parser.Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, parser.KindUnexpectedElement, perr.Kind)
	assert.Equal(t, parser.Span{Start: 15, End: 24}, perr.Span)
	assert.Equal(t, "15:24", perr.Span.String())
}

func TestParse_MissingAttribute(t *testing.T) {
	t.Parallel()

	src := `<mjml><mj-body><mj-section><mj-column><mj-button>Go</mj-button></mj-column></mj-section></mj-body></mjml>`
	_, err := parser.New().Parse(context.Background(), src)

	var perr *parser.Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, parser.KindMissingAttribute, perr.Kind)
	assert.Equal(t, "href", perr.Attribute)
	assert.Less(t, perr.Span.Start, perr.Span.End)
}

func TestParse_Include(t *testing.T) {
	t.Parallel()

	src := `<mjml><mj-body><mj-include path="partials/header.mjml"/></mj-body></mjml>`

	t.Run("without includer", func(t *testing.T) {
		t.Parallel()

		_, err := parser.New().Parse(context.Background(), src)

		var perr *parser.Error
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, parser.KindIncludeLoader, perr.Kind)
		assert.Equal(t, "partials/header.mjml", perr.Path)
		assert.ErrorIs(t, err, parser.ErrNoIncluder)
	})

	t.Run("includer failure", func(t *testing.T) {
		t.Parallel()

		cause := errors.New("not found")
		p := parser.New(parser.WithIncluder(func(context.Context, string) (string, error) {
			return "", cause
		}))
		_, err := p.Parse(context.Background(), src)

		var perr *parser.Error
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, parser.KindIncludeLoader, perr.Kind)
		assert.ErrorIs(t, err, cause)
	})

	t.Run("partial is spliced into body", func(t *testing.T) {
		t.Parallel()

		var requested string
		p := parser.New(parser.WithIncluder(func(_ context.Context, path string) (string, error) {
			requested = path
			return `<mj-section><mj-column><mj-text>Header</mj-text></mj-column></mj-section><mj-section/>`, nil
		}))
		doc, err := p.Parse(context.Background(), src)
		require.NoError(t, err)

		assert.Equal(t, "partials/header.mjml", requested)
		require.Len(t, doc.Body.Children, 2)
		assert.Equal(t, "Header", doc.Body.Children[0].Children[0].Children[0].Text)
	})

	t.Run("recursive include", func(t *testing.T) {
		t.Parallel()

		p := parser.New(parser.WithIncluder(func(context.Context, string) (string, error) {
			return `<mj-include path="self"/>`, nil
		}))
		_, err := p.Parse(context.Background(), src)
		assert.ErrorIs(t, err, parser.ErrIncludeDepth)
	})
}

func TestKinds(t *testing.T) {
	t.Parallel()

	kinds := parser.Kinds()
	require.Len(t, kinds, 11)
	seen := make(map[string]bool)
	for _, k := range kinds {
		name := k.String()
		assert.False(t, strings.HasPrefix(name, "Kind("), "kind %d has no name", k)
		assert.False(t, seen[name], "duplicate kind name %s", name)
		seen[name] = true
	}
}
