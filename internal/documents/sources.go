package documents

import (
	"context"
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
)

// PDFExtractor converts a PDF file on disk into plain text.
type PDFExtractor interface {
	ExtractText(path string) (string, error)
}

// TempMaterializer writes an uploaded file to a scoped temporary location.
// The returned cleanup removes the file and must always be called.
type TempMaterializer interface {
	Materialize(file *multipart.FileHeader) (path string, cleanup func(), err error)
}

// DescriptionGenerator synthesizes job description text from a bare title.
type DescriptionGenerator interface {
	SynthesizeJobDescription(ctx context.Context, jobTitle string) (string, error)
}

type fileSource struct {
	path      string
	extractor PDFExtractor
}

func (s *fileSource) resolve(_ context.Context) (string, error) {
	return readByExtension(s.path, s.extractor)
}

type uploadSource struct {
	file         *multipart.FileHeader
	materializer TempMaterializer
	extractor    PDFExtractor
}

func (s *uploadSource) resolve(_ context.Context) (string, error) {
	path, cleanup, err := s.materializer.Materialize(s.file)
	if err != nil {
		return "", err
	}
	defer cleanup()

	return readByExtension(path, s.extractor)
}

type generativeSource struct {
	title     string
	generator DescriptionGenerator
}

func (s *generativeSource) resolve(ctx context.Context) (string, error) {
	if strings.TrimSpace(s.title) == "" {
		return "", fmt.Errorf("job title is required to generate a description")
	}
	return s.generator.SynthesizeJobDescription(ctx, s.title)
}

// readByExtension dispatches on the lowercased file extension: PDFs go
// through the extractor (pages joined with newlines, links inlined),
// plain-text formats are read raw.
func readByExtension(path string, extractor PDFExtractor) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))

	switch ext {
	case ".pdf":
		if extractor == nil {
			return "", fmt.Errorf("%w: no pdf extractor configured", ErrUnsupportedType)
		}
		return extractor.ExtractText(path)
	case ".txt", ".md", ".rtf":
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("read %s: %w", path, err)
		}
		return string(data), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedType, ext)
	}
}

func NewResumeFromFile(path string, extractor PDFExtractor) *Document {
	return &Document{
		kind:   KindResume,
		source: &fileSource{path: path, extractor: extractor},
	}
}

func NewResumeFromUpload(file *multipart.FileHeader, materializer TempMaterializer, extractor PDFExtractor) *Document {
	return &Document{
		kind:   KindResume,
		source: &uploadSource{file: file, materializer: materializer, extractor: extractor},
	}
}

func NewJobDescriptionFromFile(path string, extractor PDFExtractor) *Document {
	return &Document{
		kind:   KindJobDescription,
		source: &fileSource{path: path, extractor: extractor},
	}
}

func NewJobDescriptionFromUpload(file *multipart.FileHeader, materializer TempMaterializer, extractor PDFExtractor) *Document {
	return &Document{
		kind:   KindJobDescription,
		source: &uploadSource{file: file, materializer: materializer, extractor: extractor},
	}
}

// NewJobDescriptionFromTitle builds a job description that is synthesized
// by the language model on first load.
func NewJobDescriptionFromTitle(title string, generator DescriptionGenerator) *Document {
	return &Document{
		kind:   KindJobDescription,
		source: &generativeSource{title: title, generator: generator},
	}
}
