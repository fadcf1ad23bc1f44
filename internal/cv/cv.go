// Package cv loads the résumé variant attached to an application, from a
// local directory or an S3-compatible bucket.
package cv

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// GeneralCategory is the variant used when a category has no file of its own.
const GeneralCategory = "general"

// ErrNotFound is returned by a Source when the named file does not exist.
var ErrNotFound = errors.New("cv file not found")

// Source reads résumé files by name.
type Source interface {
	Read(ctx context.Context, name string) ([]byte, error)
}

// File is a loaded résumé.
type File struct {
	Name string
	Data []byte
}

// Dir reads résumé files from a local directory.
type Dir struct {
	root string
}

// NewDir creates a source rooted at dir.
func NewDir(dir string) *Dir {
	return &Dir{root: dir}
}

// Read returns the file's content. Names may not leave the directory.
func (d *Dir) Read(_ context.Context, name string) ([]byte, error) {
	clean := filepath.Clean("/" + name)
	data, err := os.ReadFile(filepath.Join(d.root, clean))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, fmt.Errorf("failed to read cv %s: %w", name, err)
	}
	return data, nil
}

// Library picks and loads the résumé for a job category.
type Library struct {
	src   Source
	files map[string]string
}

// NewLibrary creates a library. files maps a category to a file name and
// should include GeneralCategory.
func NewLibrary(src Source, files map[string]string) *Library {
	return &Library{src: src, files: files}
}

// FileFor returns the file name for category, falling back to the general
// variant. It returns "" when neither is mapped.
func (l *Library) FileFor(category string) string {
	if name := strings.TrimSpace(l.files[category]); name != "" {
		return name
	}
	return strings.TrimSpace(l.files[GeneralCategory])
}

// Load returns the résumé for category. A missing mapping or file yields
// nil with an error wrapping ErrNotFound.
func (l *Library) Load(ctx context.Context, category string) (*File, error) {
	name := l.FileFor(category)
	if name == "" {
		return nil, fmt.Errorf("%w: no file mapped for %q", ErrNotFound, category)
	}
	if l.src == nil {
		return nil, fmt.Errorf("%w: no cv source configured", ErrNotFound)
	}
	data, err := l.src.Read(ctx, name)
	if err != nil {
		return nil, err
	}
	return &File{Name: filepath.Base(name), Data: data}, nil
}
