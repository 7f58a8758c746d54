package parser

import "regexp"

// Element tags understood by the parser.
const (
	TagRoot     = "mjml"
	TagHead     = "mj-head"
	TagTitle    = "mj-title"
	TagPreview  = "mj-preview"
	TagFragment = "mj-fragment"
	TagBody     = "mj-body"
	TagSection  = "mj-section"
	TagColumn   = "mj-column"
	TagText     = "mj-text"
	TagButton   = "mj-button"
	TagImage    = "mj-image"
	TagDivider  = "mj-divider"
	TagSpacer   = "mj-spacer"
	TagInclude  = "mj-include"
	TagUse      = "mj-use"

	tagDocument = "#document"
)

type attrFormat uint8

const (
	formatAny attrFormat = iota
	formatColor
	formatLength
)

var (
	colorRegex  = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)
	lengthRegex = regexp.MustCompile(`^\d+(?:\.\d+)?(?:px|%)?$`)
)

func (f attrFormat) valid(v string) bool {
	switch f {
	case formatColor:
		return colorRegex.MatchString(v)
	case formatLength:
		return lengthRegex.MatchString(v)
	default:
		return true
	}
}

type element struct {
	attrs    map[string]attrFormat
	required []string
	children map[string]bool
	text     bool
}

func set(tags ...string) map[string]bool {
	m := make(map[string]bool, len(tags))
	for _, t := range tags {
		m[t] = true
	}
	return m
}

var blockTags = []string{TagText, TagButton, TagImage, TagDivider, TagSpacer, TagUse}

var elements = map[string]element{
	tagDocument: {children: set(TagRoot)},
	TagRoot: {
		attrs:    map[string]attrFormat{"lang": formatAny},
		children: set(TagHead, TagBody),
	},
	TagHead:    {children: set(TagTitle, TagPreview, TagFragment)},
	TagTitle:   {text: true},
	TagPreview: {text: true},
	TagFragment: {
		attrs:    map[string]attrFormat{"name": formatAny},
		required: []string{"name"},
		children: set(append([]string{TagSection, TagColumn}, blockTags...)...),
	},
	TagBody: {
		attrs:    map[string]attrFormat{"background-color": formatColor, "width": formatLength},
		children: set(TagSection, TagInclude, TagUse),
	},
	TagSection: {
		attrs:    map[string]attrFormat{"background-color": formatColor, "padding": formatLength},
		children: set(TagColumn, TagUse),
	},
	TagColumn: {
		attrs:    map[string]attrFormat{"width": formatLength, "padding": formatLength},
		children: set(blockTags...),
	},
	TagText: {
		attrs: map[string]attrFormat{
			"color":     formatColor,
			"font-size": formatLength,
			"align":     formatAny,
		},
		text: true,
	},
	TagButton: {
		attrs: map[string]attrFormat{
			"href":             formatAny,
			"background-color": formatColor,
			"color":            formatColor,
		},
		required: []string{"href"},
		text:     true,
	},
	TagImage: {
		attrs: map[string]attrFormat{
			"src":   formatAny,
			"alt":   formatAny,
			"width": formatLength,
		},
		required: []string{"src"},
	},
	TagDivider: {
		attrs: map[string]attrFormat{
			"border-color": formatColor,
			"border-width": formatLength,
		},
	},
	TagSpacer: {attrs: map[string]attrFormat{"height": formatLength}},
	TagInclude: {
		attrs:    map[string]attrFormat{"path": formatAny},
		required: []string{"path"},
	},
	TagUse: {
		attrs:    map[string]attrFormat{"fragment": formatAny},
		required: []string{"fragment"},
	},
}
