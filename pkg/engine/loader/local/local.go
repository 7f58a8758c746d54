// Package local loads templates from a directory tree.
//
// Each template lives in its own directory:
//
//	<root>/<name>/template.mjml
//	<root>/<name>/metadata.json   (or metadata.yaml, metadata.yml)
//
// Partials referenced by mj-include are resolved relative to the root.
package local

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path"

	"github.com/dmitrymomot/mailify/pkg/engine/source"
)

// Loader reads templates from a file system.
type Loader struct {
	fsys fs.FS
}

var _ source.Source = (*Loader)(nil)

// New returns a loader rooted at dir.
func New(dir string) *Loader {
	return NewFS(os.DirFS(dir))
}

// NewFS returns a loader backed by fsys.
func NewFS(fsys fs.FS) *Loader {
	return &Loader{fsys: fsys}
}

// Find loads the template and its metadata.
func (l *Loader) Find(ctx context.Context, name string) (*source.Template, error) {
	if !source.ValidName(name) {
		return nil, TemplateOpenFailed(name, source.ErrInvalidName)
	}
	if err := ctx.Err(); err != nil {
		return nil, TemplateOpenFailed(name, err)
	}

	tplPath := path.Join(name, source.TemplateFile)
	content, err := fs.ReadFile(l.fsys, tplPath)
	if err != nil {
		return nil, TemplateOpenFailed(tplPath, err)
	}

	md, err := l.Metadata(ctx, name)
	if err != nil {
		return nil, err
	}

	return &source.Template{
		Name:     name,
		Metadata: *md,
		Content:  string(content),
	}, nil
}

// Metadata loads the first metadata file found for the template.
func (l *Loader) Metadata(ctx context.Context, name string) (*source.Metadata, error) {
	if !source.ValidName(name) {
		return nil, MetadataOpenFailed(name, source.ErrInvalidName)
	}
	if err := ctx.Err(); err != nil {
		return nil, MetadataOpenFailed(name, err)
	}

	for _, file := range source.MetadataFiles {
		mdPath := path.Join(name, file)
		data, err := fs.ReadFile(l.fsys, mdPath)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, MetadataOpenFailed(mdPath, err)
		}

		md, err := source.DecodeMetadata(data, name)
		if err != nil {
			return nil, MetadataFormatInvalid(mdPath, err)
		}
		return md, nil
	}

	return nil, MetadataOpenFailed(path.Join(name, source.MetadataFile), fs.ErrNotExist)
}

// Partial reads a file relative to the root.
func (l *Loader) Partial(ctx context.Context, p string) (string, error) {
	if !source.ValidPartial(p) {
		return "", TemplateOpenFailed(p, source.ErrInvalidName)
	}
	if err := ctx.Err(); err != nil {
		return "", TemplateOpenFailed(p, err)
	}
	data, err := fs.ReadFile(l.fsys, p)
	if err != nil {
		return "", TemplateOpenFailed(p, err)
	}
	return string(data), nil
}
