// Package documents models the two inputs of the scoring pipeline, resumes
// and job descriptions, as lazily loaded text containers. A Document starts
// out as nothing but a source; Load resolves the source exactly once and
// hands back a Loaded value that proves the content exists.
package documents

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
)

type Kind string

const (
	KindResume         Kind = "resume"
	KindJobDescription Kind = "job_description"
)

var (
	// ErrNotLoaded is returned when content is read before a successful Load.
	ErrNotLoaded = errors.New("document is not loaded")
	// ErrEmptyContent is returned when a source resolves to whitespace only.
	ErrEmptyContent = errors.New("document content is empty")
	// ErrUnsupportedType is returned for file extensions outside the
	// supported set.
	ErrUnsupportedType = errors.New("unsupported file type")
	// ErrNoSource is returned when a document has nothing to load from.
	ErrNoSource = errors.New("document has no source")
)

// Source produces the raw text of a document. Implementations live in this
// package; the unexported method keeps the set closed.
type Source interface {
	resolve(ctx context.Context) (string, error)
}

// Document is a lazily loaded text container.
type Document struct {
	kind   Kind
	source Source

	mu     sync.Mutex
	loaded *Loaded
}

// Loaded is the read-only result of loading a document.
type Loaded struct {
	content string
}

func (l *Loaded) Content() string {
	return l.content
}

func (d *Document) Kind() Kind {
	return d.kind
}

// Load resolves the document's source into content. The first successful
// call wins: later calls return the cached result without touching the
// source again, so the call is safe to repeat and safe to share across
// scoring goroutines. A failed load leaves the document unloaded.
func (d *Document) Load(ctx context.Context) (*Loaded, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.loaded != nil {
		return d.loaded, nil
	}

	if d.source == nil {
		return nil, fmt.Errorf("%s: %w", d.kind, ErrNoSource)
	}

	content, err := d.source.resolve(ctx)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", d.kind, err)
	}

	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("%s: %w", d.kind, ErrEmptyContent)
	}

	d.loaded = &Loaded{content: content}
	return d.loaded, nil
}

// Content returns the loaded content without triggering a load.
func (d *Document) Content() (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.loaded == nil {
		return "", fmt.Errorf("%s: %w", d.kind, ErrNotLoaded)
	}
	return d.loaded.content, nil
}

// IsLoaded reports whether a Load already succeeded.
func (d *Document) IsLoaded() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.loaded != nil
}
