package exporter

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"
)

// Colors follow the original report palette: slate text, red for
// negative values, green for non-negative.
var (
	colorText     = [3]int{30, 41, 59}
	colorMuted    = [3]int{100, 116, 139}
	colorNegative = [3]int{220, 38, 38}
	colorPositive = [3]int{22, 163, 74}
	colorHeadFill = [3]int{15, 23, 42}
	colorRowFill  = [3]int{248, 250, 252}
)

const (
	pageMargin = 14.0
	lineHeight = 6.0
)

// renderPDF draws the document model into a PDF. All layout decisions
// were already made by the builder; this function maps line kinds to
// fonts, colors and cell geometry.
func renderPDF(doc *Document) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(false, pageMargin)

	for _, page := range doc.Pages {
		pdf.AddPage()
		fillRow := false

		for _, line := range page.Lines {
			renderLine(pdf, line, &fillRow)
		}

		renderFooter(pdf, page.Footer)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf output failed: %w", err)
	}

	return buf.Bytes(), nil
}

func renderLine(pdf *fpdf.Fpdf, line Line, fillRow *bool) {
	switch line.Kind {
	case LineTitle:
		setTone(pdf, ToneNeutral)
		pdf.SetFont("Helvetica", "B", 22)
		pdf.CellFormat(0, 12, line.Text(), "", 1, "L", false, 0, "")
	case LineSubtitle:
		setTone(pdf, line.Tone)
		pdf.SetFont("Helvetica", "", 9)
		pdf.CellFormat(0, lineHeight, line.Text(), "", 1, "L", false, 0, "")
		pdf.Ln(2)
	case LineMetric:
		setTone(pdf, ToneMuted)
		pdf.SetFont("Helvetica", "B", 9)
		pdf.CellFormat(60, lineHeight, line.Cells[0], "", 0, "L", false, 0, "")
		setTone(pdf, line.Tone)
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(0, lineHeight, line.Cells[1], "", 1, "L", false, 0, "")
	case LineNarrative:
		setTone(pdf, line.Tone)
		pdf.SetFont("Helvetica", "I", 10)
		pdf.CellFormat(0, lineHeight, line.Text(), "", 1, "L", false, 0, "")
	case LineHeading:
		pdf.Ln(3)
		setTone(pdf, line.Tone)
		pdf.SetFont("Helvetica", "B", 13)
		pdf.CellFormat(0, 8, line.Text(), "", 1, "L", false, 0, "")
	case LineTableHead:
		pdf.SetTextColor(255, 255, 255)
		pdf.SetFillColor(colorHeadFill[0], colorHeadFill[1], colorHeadFill[2])
		pdf.SetFont("Helvetica", "B", 8)
		renderCells(pdf, line, true)
		*fillRow = false
	case LineTableRow:
		applyRowFill(pdf, fillRow)
		pdf.SetFont("Helvetica", "", 8)
		renderTonedCells(pdf, line)
	case LineTotalsRow:
		pdf.SetFillColor(colorRowFill[0], colorRowFill[1], colorRowFill[2])
		pdf.SetFont("Helvetica", "B", 8)
		renderTonedCellsFilled(pdf, line, true)
	case LineListItem:
		setTone(pdf, ToneNeutral)
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(0, lineHeight, "- "+line.Text(), "", 1, "L", false, 0, "")
	case LinePlaceholder:
		setTone(pdf, line.Tone)
		pdf.SetFont("Helvetica", "I", 10)
		pdf.CellFormat(0, lineHeight, line.Text(), "", 1, "L", false, 0, "")
	}
}

func renderFooter(pdf *fpdf.Fpdf, footer string) {
	pdf.SetY(-18)
	pdf.SetTextColor(colorMuted[0], colorMuted[1], colorMuted[2])
	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(0, 8, footer, "", 0, "L", false, 0, "")
}

func applyRowFill(pdf *fpdf.Fpdf, fillRow *bool) {
	if *fillRow {
		pdf.SetFillColor(colorRowFill[0], colorRowFill[1], colorRowFill[2])
	}
	*fillRow = !*fillRow
}

func renderCells(pdf *fpdf.Fpdf, line Line, fill bool) {
	widths, aligns := tableGeometry(len(line.Cells))
	for i, cell := range line.Cells {
		breakLine := 0
		if i == len(line.Cells)-1 {
			breakLine = 1
		}
		pdf.CellFormat(widths[i], lineHeight, cell, "1", breakLine, aligns[i], fill, 0, "")
	}
}

func renderTonedCells(pdf *fpdf.Fpdf, line Line) {
	renderTonedCellsFilled(pdf, line, false)
}

func renderTonedCellsFilled(pdf *fpdf.Fpdf, line Line, fill bool) {
	widths, aligns := tableGeometry(len(line.Cells))
	for i, cell := range line.Cells {
		tone := ToneNeutral
		if line.CellTones != nil && i < len(line.CellTones) {
			tone = line.CellTones[i]
		}
		setTone(pdf, tone)

		breakLine := 0
		if i == len(line.Cells)-1 {
			breakLine = 1
		}
		pdf.CellFormat(widths[i], lineHeight, cell, "1", breakLine, aligns[i], fill, 0, "")
	}
}

// tableGeometry returns column widths and alignments for the two table
// shapes in the report: the 7-column reconciliation table and the
// 4-column unmatched-credits table.
func tableGeometry(columns int) ([]float64, []string) {
	switch columns {
	case 7:
		return []float64{18, 34, 40, 21, 23, 23, 23},
			[]string{"L", "L", "L", "L", "R", "R", "R"}
	case 4:
		return []float64{45, 65, 30, 42},
			[]string{"L", "L", "L", "R"}
	default:
		widths := make([]float64, columns)
		aligns := make([]string, columns)
		for i := range widths {
			widths[i] = 182.0 / float64(columns)
			aligns[i] = "L"
		}
		return widths, aligns
	}
}

func setTone(pdf *fpdf.Fpdf, tone Tone) {
	switch tone {
	case TonePositive:
		pdf.SetTextColor(colorPositive[0], colorPositive[1], colorPositive[2])
	case ToneNegative:
		pdf.SetTextColor(colorNegative[0], colorNegative[1], colorNegative[2])
	case ToneMuted:
		pdf.SetTextColor(colorMuted[0], colorMuted[1], colorMuted[2])
	default:
		pdf.SetTextColor(colorText[0], colorText[1], colorText[2])
	}
}
