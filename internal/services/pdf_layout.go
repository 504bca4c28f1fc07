package services

import (
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
)

// lineTolerance groups text runs whose baselines sit within this many points
// into the same visual line.
const lineTolerance = 2.0

// boxPad widens link rectangles slightly when matching display text, since
// annotation boxes are not always flush with the glyphs they cover.
const boxPad = 1.0

// pageLayout indexes a page's positioned text runs in reading order: lines
// top to bottom, runs left to right. All text queries (full page, text above
// an edge, text inside a box) are answered from the same ordering, so byte
// offsets taken from one query stay valid in another.
type pageLayout struct {
	width  float64
	height float64
	lines  []textLine
}

type textLine struct {
	y    float64 // baseline in PDF user space, origin bottom-left
	runs []pdf.Text
}

func (l textLine) text() string {
	var b strings.Builder
	for _, r := range l.runs {
		b.WriteString(r.S)
	}
	return b.String()
}

// topY is the line's baseline in top-left-origin coordinates.
func (l textLine) topY(pageHeight float64) float64 {
	return pageHeight - l.y
}

func newPageLayout(width, height float64, runs []pdf.Text) *pageLayout {
	ordered := make([]pdf.Text, len(runs))
	copy(ordered, runs)

	// Highest baseline first; ties read left to right.
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Y != ordered[j].Y {
			return ordered[i].Y > ordered[j].Y
		}
		return ordered[i].X < ordered[j].X
	})

	layout := &pageLayout{width: width, height: height}
	for _, run := range ordered {
		if n := len(layout.lines); n > 0 && layout.lines[n-1].y-run.Y <= lineTolerance {
			layout.lines[n-1].runs = append(layout.lines[n-1].runs, run)
			continue
		}
		layout.lines = append(layout.lines, textLine{y: run.Y, runs: []pdf.Text{run}})
	}

	// Tolerance grouping can interleave X positions of near-baseline runs.
	for i := range layout.lines {
		line := layout.lines[i].runs
		sort.SliceStable(line, func(a, b int) bool { return line[a].X < line[b].X })
	}

	return layout
}

// text returns the whole page in reading order, lines joined with newlines.
func (pl *pageLayout) text() string {
	parts := make([]string, len(pl.lines))
	for i, line := range pl.lines {
		parts[i] = line.text()
	}
	return strings.Join(parts, "\n")
}

// textAbove returns the text of every line strictly above the given
// top-origin edge. The result is always a byte prefix of text().
func (pl *pageLayout) textAbove(top float64) string {
	cut := len(pl.lines)
	for i, line := range pl.lines {
		if line.topY(pl.height) >= top {
			cut = i
			break
		}
	}

	parts := make([]string, cut)
	for i := 0; i < cut; i++ {
		parts[i] = pl.lines[i].text()
	}
	return strings.Join(parts, "\n")
}

// textInBox returns the text of runs whose anchor falls inside the box, in
// reading order. Used to recover a link's display text from its rectangle.
func (pl *pageLayout) textInBox(box BoundingBox) string {
	var parts []string
	for _, line := range pl.lines {
		lineTop := line.topY(pl.height)
		if lineTop < box.Y0-boxPad || lineTop > box.Y1+boxPad {
			continue
		}

		var b strings.Builder
		for _, run := range line.runs {
			if run.X >= box.X0-boxPad && run.X <= box.X1+boxPad {
				b.WriteString(run.S)
			}
		}
		if b.Len() > 0 {
			parts = append(parts, b.String())
		}
	}
	return strings.Join(parts, "\n")
}

// sortPageLinks orders links top to bottom, then left to right, the order
// their markers appear in the reconstructed text.
func sortPageLinks(links []PDFLink) {
	sort.SliceStable(links, func(i, j int) bool {
		if links[i].Box.Y0 != links[j].Box.Y0 {
			return links[i].Box.Y0 < links[j].Box.Y0
		}
		return links[i].Box.X0 < links[j].Box.X0
	})
}

// reconstructPageText interleaves inline link markers with the page text.
// Walking links in (Y0, X0) order: emit the text between the cursor and the
// link's top edge, then the [displayText](uri) marker, then move the cursor
// to the end of that text-above slice. The cursor never moves backwards and
// never leaves the bounds of the page text, so no character outside the link
// regions is emitted twice or lost.
func reconstructPageText(pl *pageLayout, links []PDFLink) string {
	full := pl.text()
	if len(links) == 0 {
		return full
	}

	var b strings.Builder
	cursor := 0

	for _, link := range links {
		above := pl.textAbove(link.Box.Y0)
		if cursor < len(above) {
			b.WriteString(above[cursor:])
		}

		b.WriteString("[")
		b.WriteString(link.DisplayText)
		b.WriteString("](")
		b.WriteString(link.URI)
		b.WriteString(")")

		if len(above) > cursor {
			cursor = len(above)
		}
	}

	if cursor < len(full) {
		b.WriteString(full[cursor:])
	}

	return b.String()
}
