package exporter

import "fmt"

// The document model is the deterministic half of the exporter: block
// content, ordering and pagination are all decided here, so they can be
// asserted in tests without touching the PDF backend.

// LineKind classifies a rendered line for styling purposes
type LineKind string

const (
	LineTitle       LineKind = "title"
	LineSubtitle    LineKind = "subtitle"
	LineMetric      LineKind = "metric"
	LineNarrative   LineKind = "narrative"
	LineHeading     LineKind = "heading"
	LineTableHead   LineKind = "table_head"
	LineTableRow    LineKind = "table_row"
	LineTotalsRow   LineKind = "totals_row"
	LineListItem    LineKind = "list_item"
	LinePlaceholder LineKind = "placeholder"
)

// Tone carries the sign-dependent coloring of a line
type Tone string

const (
	ToneNeutral  Tone = "neutral"
	TonePositive Tone = "positive"
	ToneNegative Tone = "negative"
	ToneMuted    Tone = "muted"
)

// Line is one rendered line of report content. Table lines carry one
// string per column; text lines carry a single cell.
type Line struct {
	Kind  LineKind
	Cells []string
	Tone  Tone
	// CellTones styles individual table cells; nil means all neutral
	CellTones []Tone
}

// Text returns the single cell of a text line
func (l Line) Text() string {
	if len(l.Cells) == 0 {
		return ""
	}
	return l.Cells[0]
}

// Page is one page of the paginated report
type Page struct {
	Lines  []Line
	Footer string
}

// Document is the fully paginated report ready for rendering
type Document struct {
	Pages []Page
}

// Lines returns all content lines across pages in order
func (d *Document) Lines() []Line {
	var all []Line
	for _, page := range d.Pages {
		all = append(all, page.Lines...)
	}
	return all
}

// documentBuilder paginates blocks of lines. A block is never split: if
// the remaining space on the current page falls under the safety margin
// for the next block, the builder starts a new page first.
type documentBuilder struct {
	linesPerPage int
	safetyMargin int

	pages   []Page
	current []Line

	// tableHead is re-emitted at the top of a new page when a table
	// continues across the break.
	tableHead *Line
}

func newDocumentBuilder(linesPerPage, safetyMargin int) *documentBuilder {
	return &documentBuilder{
		linesPerPage: linesPerPage,
		safetyMargin: safetyMargin,
	}
}

func (b *documentBuilder) remaining() int {
	return b.linesPerPage - len(b.current)
}

// addBlock writes a group of lines that must stay on one page together
func (b *documentBuilder) addBlock(lines ...Line) {
	if len(lines) == 0 {
		return
	}

	if b.remaining()-len(lines) < b.safetyMargin && len(b.current) > 0 {
		b.breakPage()
	}

	b.current = append(b.current, lines...)
}

// beginTable records the header to repeat after page breaks and writes it
func (b *documentBuilder) beginTable(head Line) {
	b.tableHead = &head
	b.addBlock(head)
}

// addTableRow writes one table row, repeating the table header when the
// row lands on a fresh page.
func (b *documentBuilder) addTableRow(row Line) {
	if b.remaining()-1 < b.safetyMargin && len(b.current) > 0 {
		b.breakPage()
		if b.tableHead != nil {
			b.current = append(b.current, *b.tableHead)
		}
	}

	b.current = append(b.current, row)
}

// endTable stops header repetition
func (b *documentBuilder) endTable() {
	b.tableHead = nil
}

func (b *documentBuilder) breakPage() {
	b.pages = append(b.pages, Page{Lines: b.current})
	b.current = nil
}

// checkPageCapacity verifies that no page holds more lines than the
// renderer can draw above the footer. The builder never produces such a
// page for well-formed input; an overflowing page must abort the export
// rather than draw past the page edge.
func checkPageCapacity(doc *Document, linesPerPage int) error {
	for i, page := range doc.Pages {
		if len(page.Lines) > linesPerPage {
			return fmt.Errorf("page %d holds %d lines, capacity is %d", i+1, len(page.Lines), linesPerPage)
		}
	}
	return nil
}

// finish closes the last page and stamps every page footer
func (b *documentBuilder) finish(productLabel string) *Document {
	if len(b.current) > 0 || len(b.pages) == 0 {
		b.breakPage()
	}

	doc := &Document{Pages: b.pages}
	total := len(doc.Pages)
	for i := range doc.Pages {
		doc.Pages[i].Footer = pageFooter(productLabel, i+1, total)
	}
	return doc
}
