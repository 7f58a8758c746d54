package parser

import (
	"context"
	"encoding/xml"
	"errors"
	"io"
	"strings"
)

const (
	// DefaultMaxSize bounds a single template or partial source.
	DefaultMaxSize = 1 << 20

	maxIncludeDepth = 8
)

// Includer resolves the source of an mj-include path.
type Includer func(ctx context.Context, path string) (string, error)

// Node is a parsed template element.
type Node struct {
	Tag      string
	Attrs    map[string]string
	Text     string
	Children []*Node
	Span     Span
}

// Attr returns the attribute value or def when absent.
func (n *Node) Attr(name, def string) string {
	if v, ok := n.Attrs[name]; ok {
		return v
	}
	return def
}

// Document is a parsed template ready for rendering.
type Document struct {
	Lang      string
	Title     string
	Preview   string
	Body      *Node
	Fragments map[string]*Node
}

// Option configures a Parser.
type Option func(*Parser)

// WithMaxSize overrides DefaultMaxSize. Non-positive values are ignored.
func WithMaxSize(n int) Option {
	return func(p *Parser) {
		if n > 0 {
			p.maxSize = n
		}
	}
}

// WithIncluder sets the resolver used for mj-include elements.
func WithIncluder(fn Includer) Option {
	return func(p *Parser) {
		if fn != nil {
			p.include = fn
		}
	}
}

// Parser turns template source into a Document. It is safe for concurrent use.
type Parser struct {
	maxSize int
	include Includer
}

// New returns a Parser configured with opts.
func New(opts ...Option) *Parser {
	p := &Parser{maxSize: DefaultMaxSize}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse decodes src into a Document. Failures are always *Error.
func (p *Parser) Parse(ctx context.Context, src string) (*Document, error) {
	doc := &Node{Tag: tagDocument}
	if err := p.decode(ctx, src, doc, 0); err != nil {
		return nil, err
	}
	if len(doc.Children) == 0 {
		return nil, NoRootNode()
	}
	return buildDocument(doc.Children[0])
}

// decode appends every element found in src to parent.
func (p *Parser) decode(ctx context.Context, src string, parent *Node, depth int) error {
	if len(src) > p.maxSize {
		return SizeLimit()
	}

	d := xml.NewDecoder(strings.NewReader(src))
	stack := []*Node{parent}

	for {
		start := d.InputOffset()
		tok, err := d.Token()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return decodeError(err)
		}
		span := newSpan(start, d.InputOffset())
		top := stack[len(stack)-1]

		switch t := tok.(type) {
		case xml.StartElement:
			node, err := p.open(t, top, span)
			if err != nil {
				return err
			}
			if node.Tag == TagInclude {
				if err := p.includeInto(ctx, node, top, depth); err != nil {
					return err
				}
			} else {
				top.Children = append(top.Children, node)
			}
			stack = append(stack, node)

		case xml.EndElement:
			stack = stack[:len(stack)-1]

		case xml.CharData:
			text := strings.TrimSpace(string(t))
			if text == "" {
				continue
			}
			if !elements[top.Tag].text {
				return UnexpectedToken(span)
			}
			if top.Text != "" {
				top.Text += " "
			}
			top.Text += text

		case xml.Comment:
			continue

		case xml.ProcInst:
			if t.Target == "xml" && top.Tag == tagDocument && len(top.Children) == 0 {
				continue
			}
			return UnexpectedToken(span)

		case xml.Directive:
			return UnexpectedToken(span)
		}
	}
}

func (p *Parser) open(t xml.StartElement, parent *Node, span Span) (*Node, error) {
	tag := t.Name.Local
	if parent.Tag == tagDocument {
		if tag != TagRoot || t.Name.Space != "" {
			return nil, NoRootNode()
		}
		if len(parent.Children) > 0 {
			return nil, UnexpectedElement(span)
		}
	}

	def, known := elements[tag]
	if !known || t.Name.Space != "" || !elements[parent.Tag].children[tag] {
		return nil, UnexpectedElement(span)
	}

	node := &Node{Tag: tag, Span: span, Attrs: make(map[string]string, len(t.Attr))}
	for _, a := range t.Attr {
		if a.Name.Space != "" {
			return nil, InvalidAttribute(span)
		}
		if _, dup := node.Attrs[a.Name.Local]; dup {
			return nil, InvalidAttribute(span)
		}
		format, allowed := def.attrs[a.Name.Local]
		if !allowed {
			return nil, UnexpectedAttribute(span)
		}
		if !format.valid(a.Value) {
			return nil, InvalidFormat(span)
		}
		node.Attrs[a.Name.Local] = a.Value
	}
	for _, name := range def.required {
		if _, ok := node.Attrs[name]; !ok {
			return nil, MissingAttribute(name, span)
		}
	}

	return node, nil
}

// includeInto resolves an mj-include and appends the partial's elements to
// the include's parent, validated against that parent.
func (p *Parser) includeInto(ctx context.Context, node, parent *Node, depth int) error {
	path := node.Attrs["path"]
	if p.include == nil {
		return IncludeLoader(path, ErrNoIncluder)
	}
	if depth >= maxIncludeDepth {
		return IncludeLoader(path, ErrIncludeDepth)
	}
	src, err := p.include(ctx, path)
	if err != nil {
		return IncludeLoader(path, err)
	}
	return p.decode(ctx, src, parent, depth+1)
}

func decodeError(err error) *Error {
	var se *xml.SyntaxError
	if errors.As(err, &se) && se.Msg == "unexpected EOF" {
		return EndOfStream()
	}
	return Syntax(err)
}

func buildDocument(root *Node) (*Document, error) {
	doc := &Document{
		Lang:      root.Attr("lang", ""),
		Body:      &Node{Tag: TagBody, Attrs: map[string]string{}},
		Fragments: make(map[string]*Node),
	}

	for _, child := range root.Children {
		switch child.Tag {
		case TagHead:
			for _, h := range child.Children {
				switch h.Tag {
				case TagTitle:
					doc.Title = h.Text
				case TagPreview:
					doc.Preview = h.Text
				case TagFragment:
					name := h.Attrs["name"]
					if _, dup := doc.Fragments[name]; dup {
						return nil, InvalidAttribute(h.Span)
					}
					doc.Fragments[name] = h
				}
			}
		case TagBody:
			doc.Body = child
		}
	}

	return doc, nil
}
