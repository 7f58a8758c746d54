package render

import (
	"context"
	"io"
	"strings"

	"github.com/a-h/templ"

	"github.com/dmitrymomot/mailify/pkg/engine/parser"
)

// Result is a rendered email body.
type Result struct {
	Title   string
	Preview string
	HTML    string
}

// Render resolves fragments referenced by mj-use and renders the document
// into a standalone HTML page. Failures are always *Error.
func Render(ctx context.Context, doc *parser.Document) (*Result, error) {
	body, err := expand(doc, doc.Body.Children, make(map[string]bool))
	if err != nil {
		return nil, err
	}

	var sb strings.Builder
	// strings.Builder never fails a write, so neither can the page.
	_ = Page(doc, body).Render(ctx, &sb)

	return &Result{
		Title:   doc.Title,
		Preview: doc.Preview,
		HTML:    sb.String(),
	}, nil
}

// expand replaces every mj-use with the children of the referenced fragment.
func expand(doc *parser.Document, nodes []*parser.Node, visiting map[string]bool) ([]*parser.Node, error) {
	out := make([]*parser.Node, 0, len(nodes))
	for _, n := range nodes {
		if n.Tag != parser.TagUse {
			cp := *n
			children, err := expand(doc, n.Children, visiting)
			if err != nil {
				return nil, err
			}
			cp.Children = children
			out = append(out, &cp)
			continue
		}

		name := n.Attrs["fragment"]
		if visiting[name] {
			return nil, FragmentCycle(name)
		}
		frag, ok := doc.Fragments[name]
		if !ok {
			return nil, UnknownFragment(name)
		}

		visiting[name] = true
		children, err := expand(doc, frag.Children, visiting)
		delete(visiting, name)
		if err != nil {
			return nil, err
		}
		out = append(out, children...)
	}
	return out, nil
}

// Page returns the templ component for a full HTML email document.
// body must already be expanded.
func Page(doc *parser.Document, body []*parser.Node) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		hw := &htmlWriter{w: w}
		hw.raw(`<!DOCTYPE html><html`)
		if doc.Lang != "" {
			hw.raw(` lang="` + templ.EscapeString(doc.Lang) + `"`)
		}
		hw.raw(`><head><meta charset="utf-8"><meta name="viewport" content="width=device-width, initial-scale=1">`)
		hw.raw(`<title>` + templ.EscapeString(doc.Title) + `</title></head>`)
		hw.raw(`<body style="` + style("margin", "0", "padding", "0", "background-color", doc.Body.Attr("background-color", "")) + `">`)
		if doc.Preview != "" {
			hw.raw(`<div style="display:none;max-height:0;overflow:hidden;">` + templ.EscapeString(doc.Preview) + `</div>`)
		}

		width := doc.Body.Attr("width", "600px")
		hw.raw(`<table role="presentation" width="100%" cellpadding="0" cellspacing="0" border="0"><tr><td align="center">`)
		hw.raw(`<table role="presentation" cellpadding="0" cellspacing="0" border="0" style="` + style("width", width, "max-width", width) + `">`)
		for _, n := range body {
			if n.Tag == parser.TagSection {
				hw.section(n)
				continue
			}
			hw.raw(`<tr><td>`)
			hw.block(n)
			hw.raw(`</td></tr>`)
		}
		hw.raw(`</table></td></tr></table></body></html>`)
		return hw.err
	})
}

type htmlWriter struct {
	w   io.Writer
	err error
}

func (hw *htmlWriter) raw(s string) {
	if hw.err == nil {
		_, hw.err = io.WriteString(hw.w, s)
	}
}

func (hw *htmlWriter) section(n *parser.Node) {
	hw.raw(`<tr><td style="` + style("background-color", n.Attr("background-color", ""), "padding", n.Attr("padding", "")) + `">`)
	hw.raw(`<table role="presentation" width="100%" cellpadding="0" cellspacing="0" border="0"><tr>`)
	for _, c := range n.Children {
		if c.Tag == parser.TagColumn {
			hw.column(c)
			continue
		}
		hw.raw(`<td>`)
		hw.block(c)
		hw.raw(`</td>`)
	}
	hw.raw(`</tr></table></td></tr>`)
}

func (hw *htmlWriter) column(n *parser.Node) {
	hw.raw(`<td style="` + style("vertical-align", "top", "width", n.Attr("width", ""), "padding", n.Attr("padding", "")) + `">`)
	for _, c := range n.Children {
		hw.block(c)
	}
	hw.raw(`</td>`)
}

func (hw *htmlWriter) block(n *parser.Node) {
	switch n.Tag {
	case parser.TagSection:
		hw.raw(`<table role="presentation" width="100%" cellpadding="0" cellspacing="0" border="0">`)
		hw.section(n)
		hw.raw(`</table>`)
	case parser.TagColumn:
		hw.raw(`<div>`)
		for _, c := range n.Children {
			hw.block(c)
		}
		hw.raw(`</div>`)
	case parser.TagText:
		hw.raw(`<div style="` + style(
			"color", n.Attr("color", ""),
			"font-size", n.Attr("font-size", "14px"),
			"text-align", n.Attr("align", "left"),
		) + `">` + templ.EscapeString(n.Text) + `</div>`)
	case parser.TagButton:
		hw.raw(`<div style="padding:10px 0;"><a href="` + templ.EscapeString(string(templ.URL(n.Attrs["href"]))) + `" style="` + style(
			"display", "inline-block",
			"padding", "10px 25px",
			"text-decoration", "none",
			"background-color", n.Attr("background-color", "#414141"),
			"color", n.Attr("color", "#ffffff"),
		) + `">` + templ.EscapeString(n.Text) + `</a></div>`)
	case parser.TagImage:
		hw.raw(`<img src="` + templ.EscapeString(string(templ.URL(n.Attrs["src"]))) + `" alt="` + templ.EscapeString(n.Attr("alt", "")) + `" style="` + style(
			"display", "block",
			"border", "0",
			"width", n.Attr("width", ""),
			"max-width", "100%",
		) + `">`)
	case parser.TagDivider:
		hw.raw(`<hr style="` + style(
			"border", "none",
			"border-top", n.Attr("border-width", "1px")+" solid "+n.Attr("border-color", "#000000"),
		) + `">`)
	case parser.TagSpacer:
		h := n.Attr("height", "20px")
		hw.raw(`<div style="` + style("height", h, "line-height", h) + `">&#8202;</div>`)
	}
}

// style joins key/value pairs into an inline CSS declaration list,
// skipping pairs with an empty value.
func style(kv ...string) string {
	var sb strings.Builder
	for i := 0; i+1 < len(kv); i += 2 {
		if kv[i+1] == "" {
			continue
		}
		sb.WriteString(kv[i])
		sb.WriteByte(':')
		sb.WriteString(templ.EscapeString(kv[i+1]))
		sb.WriteByte(';')
	}
	return sb.String()
}
