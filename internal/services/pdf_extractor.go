package services

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"
)

// BoundingBox is a rectangle on a PDF page in top-left-origin coordinates,
// so Y0 is the link's top edge. PDF user-space rectangles (bottom-origin,
// corners in any order) are normalized into this form on ingest.
type BoundingBox struct {
	X0 float64
	Y0 float64
	X1 float64
	Y1 float64
}

// PDFLink is a web link found in a page's annotations.
type PDFLink struct {
	URI         string
	DisplayText string
	PageNumber  int
	LinkType    string
	Box         BoundingBox
}

// PDFContent is the full extraction result for one document: per-page text
// with inline link markers, every kept link, and the document metadata.
type PDFContent struct {
	Pages    []string
	Links    []PDFLink
	Metadata map[string]string
}

// Text joins the reconstructed pages into a single document string.
func (c *PDFContent) Text() string {
	return strings.Join(c.Pages, "\n")
}

// LinksMarkdown renders every link as a markdown bullet list, followed by a
// per-page breakdown.
func (c *PDFContent) LinksMarkdown() string {
	if len(c.Links) == 0 {
		return "No links found."
	}

	var b strings.Builder
	for _, link := range c.Links {
		fmt.Fprintf(&b, "- [%s](%s)\n", link.DisplayText, link.URI)
	}

	byPage := make(map[int][]PDFLink)
	for _, link := range c.Links {
		byPage[link.PageNumber] = append(byPage[link.PageNumber], link)
	}

	pages := make([]int, 0, len(byPage))
	for page := range byPage {
		pages = append(pages, page)
	}
	sort.Ints(pages)

	b.WriteString("\nBy Page:\n")
	for _, page := range pages {
		fmt.Fprintf(&b, "\nPage %d:\n", page)
		for _, link := range byPage[page] {
			fmt.Fprintf(&b, "- [%s](%s)\n", link.DisplayText, link.URI)
		}
	}

	return b.String()
}

type PDFExtractorService interface {
	// ExtractText returns the whole document as reading-ordered text with
	// inline link markers, pages joined with newlines.
	ExtractText(path string) (string, error)
	ExtractContent(path string) (*PDFContent, error)
	ExtractContentWithPassword(path, password string) (*PDFContent, error)
}

type pdfExtractorService struct {
	logger *zap.Logger
}

func NewPDFExtractorService(logger *zap.Logger) PDFExtractorService {
	return &pdfExtractorService{logger: logger}
}

func (p *pdfExtractorService) ExtractText(path string) (string, error) {
	content, err := p.ExtractContent(path)
	if err != nil {
		return "", err
	}
	return content.Text(), nil
}

func (p *pdfExtractorService) ExtractContent(path string) (*PDFContent, error) {
	return p.ExtractContentWithPassword(path, "")
}

func (p *pdfExtractorService) ExtractContentWithPassword(path, password string) (content *PDFContent, err error) {
	// The underlying reader panics on some malformed files; surface that as
	// a parse error instead of taking the process down.
	defer func() {
		if r := recover(); r != nil {
			content = nil
			err = fmt.Errorf("parse pdf %s: %v", path, r)
		}
	}()

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("pdf file: %w", err)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	// Offer the password once, then give up. An unencrypted file never asks.
	pw := password
	r, err := pdf.NewReaderEncrypted(f, info.Size(), func() string {
		s := pw
		pw = ""
		return s
	})
	if err != nil {
		return nil, fmt.Errorf("open pdf %s: %w", path, err)
	}

	content = &PDFContent{Metadata: documentMetadata(r)}

	totalPage := r.NumPage()
	for pageNum := 1; pageNum <= totalPage; pageNum++ {
		page := r.Page(pageNum)
		if page.V.IsNull() {
			continue
		}

		width, height := pageSize(page)
		layout := newPageLayout(width, height, page.Content().Text)

		links := extractPageLinks(page, pageNum, layout)
		sortPageLinks(links)

		content.Pages = append(content.Pages, reconstructPageText(layout, links))
		content.Links = append(content.Links, links...)
	}

	p.logger.Debug("pdf extracted",
		zap.String("path", path),
		zap.Int("pages", len(content.Pages)),
		zap.Int("links", len(content.Links)),
	)

	return content, nil
}

// extractPageLinks walks the page's annotations and keeps Link annotations
// whose action carries a URI. Display text comes from the runs inside the
// normalized rectangle; an annotation without a usable Rect keeps a zero box
// and empty display text.
func extractPageLinks(page pdf.Page, pageNum int, layout *pageLayout) []PDFLink {
	annots := page.V.Key("Annots")
	if annots.Kind() != pdf.Array {
		return nil
	}

	var links []PDFLink
	for i := 0; i < annots.Len(); i++ {
		annot := annots.Index(i)
		if annot.Kind() != pdf.Dict || annot.Key("Subtype").Name() != "Link" {
			continue
		}

		action := annot.Key("A")
		if action.Kind() != pdf.Dict {
			continue
		}

		uri := action.Key("URI").RawString()
		if uri == "" {
			continue
		}

		linkType := strings.ToLower(action.Key("S").Name())
		if linkType == "" {
			linkType = "unknown"
		}

		box, ok := annotBox(annot.Key("Rect"), layout.height)
		display := ""
		if ok {
			display = strings.TrimSpace(layout.textInBox(box))
		}

		links = append(links, PDFLink{
			URI:         uri,
			DisplayText: display,
			PageNumber:  pageNum,
			LinkType:    linkType,
			Box:         box,
		})
	}

	return links
}

// annotBox normalizes a PDF Rect array into a top-origin BoundingBox.
func annotBox(rect pdf.Value, pageHeight float64) (BoundingBox, bool) {
	if rect.Kind() != pdf.Array || rect.Len() != 4 {
		return BoundingBox{}, false
	}

	return normalizeRect(
		rect.Index(0).Float64(),
		rect.Index(1).Float64(),
		rect.Index(2).Float64(),
		rect.Index(3).Float64(),
		pageHeight,
	), true
}

// normalizeRect converts a PDF user-space rectangle, bottom-origin with
// corners in any order, into a top-origin BoundingBox.
func normalizeRect(x0, y0, x1, y1, pageHeight float64) BoundingBox {
	if x1 < x0 {
		x0, x1 = x1, x0
	}
	if y1 < y0 {
		y0, y1 = y1, y0
	}

	return BoundingBox{
		X0: x0,
		Y0: pageHeight - y1,
		X1: x1,
		Y1: pageHeight - y0,
	}
}

// pageSize resolves the page's MediaBox, walking up the page tree for
// inherited values. The walk is bounded against malformed parent cycles.
func pageSize(page pdf.Page) (width, height float64) {
	v := page.V
	for depth := 0; depth < 32 && !v.IsNull(); depth++ {
		box := v.Key("MediaBox")
		if box.Kind() == pdf.Array && box.Len() == 4 {
			x0 := box.Index(0).Float64()
			y0 := box.Index(1).Float64()
			x1 := box.Index(2).Float64()
			y1 := box.Index(3).Float64()
			return x1 - x0, y1 - y0
		}
		v = v.Key("Parent")
	}

	// US Letter, the reader's own fallback assumption.
	return 612, 792
}

func documentMetadata(r *pdf.Reader) map[string]string {
	meta := make(map[string]string)

	info := r.Trailer().Key("Info")
	if info.Kind() != pdf.Dict {
		return meta
	}

	for _, key := range info.Keys() {
		v := info.Key(key)
		if v.Kind() == pdf.String {
			meta[key] = v.Text()
		}
	}

	return meta
}
