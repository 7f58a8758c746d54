// Package parser decodes MJML-like email templates into a Document tree.
//
// The accepted vocabulary is intentionally small: an mjml root with an
// optional mj-head (title, preview and reusable mj-fragment blocks) and an
// mj-body made of sections, columns and content blocks. mj-include pulls a
// partial from an Includer and mj-use references a head fragment that the
// render package resolves later.
//
// Every failure is returned as *Error whose Kind identifies the variant.
// Position-addressable failures carry a Span of byte offsets into the source
// that was being decoded (for included partials, offsets are relative to the
// partial).
//
//	p := parser.New(parser.WithIncluder(func(ctx context.Context, path string) (string, error) {
//		return loader.Partial(ctx, path)
//	}))
//	doc, err := p.Parse(ctx, src)
//	var perr *parser.Error
//	if errors.As(err, &perr) && perr.Kind == parser.KindMissingAttribute {
//		log.Printf("missing %s at %s", perr.Attribute, perr.Span)
//	}
package parser
