// Package exporter renders an ordered audit result into a fixed-layout
// paginated PDF report. Content and ordering are decided by a
// deterministic document model; the PDF backend only draws it.
package exporter

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"financial-audit-service/internal/models"
	"financial-audit-service/internal/presenter"
	"financial-audit-service/pkg/errors"
	"financial-audit-service/pkg/logger"
)

// Config holds configuration options for the exporter
type Config struct {
	Title        string
	ProductLabel string

	// Pagination geometry, in content lines
	LinesPerPage int
	SafetyMargin int

	// NarrativeWidth is the word-wrap width of the summary block
	NarrativeWidth int

	// Clock supplies the generation timestamp; overridable in tests
	Clock func() time.Time
}

// DefaultConfig returns a default exporter configuration
func DefaultConfig() *Config {
	return &Config{
		Title:          "XisaabiyePro Audit Report",
		ProductLabel:   "XisaabiyePro",
		LinesPerPage:   44,
		SafetyMargin:   3,
		NarrativeWidth: 96,
		Clock:          time.Now,
	}
}

// Validate validates the exporter configuration
func (c *Config) Validate() error {
	if c.LinesPerPage <= 0 {
		return fmt.Errorf("lines per page must be positive, got %d", c.LinesPerPage)
	}
	if c.SafetyMargin < 0 {
		return fmt.Errorf("safety margin cannot be negative, got %d", c.SafetyMargin)
	}
	if c.SafetyMargin >= c.LinesPerPage {
		return fmt.Errorf("safety margin %d leaves no room on a %d-line page", c.SafetyMargin, c.LinesPerPage)
	}
	if c.NarrativeWidth <= 0 {
		return fmt.Errorf("narrative width must be positive, got %d", c.NarrativeWidth)
	}
	return nil
}

// Exporter assembles and renders the audit report
type Exporter struct {
	config *Config
	log    logger.Logger
}

// NewExporter creates a new exporter with the given configuration
func NewExporter(config *Config) (*Exporter, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if config.Clock == nil {
		config.Clock = time.Now
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid exporter configuration: %w", err)
	}

	return &Exporter{
		config: config,
		log:    logger.GetGlobalLogger().WithComponent("exporter"),
	}, nil
}

// BuildDocument assembles the paginated document model from the
// presented audit result. Block order is fixed: title, portfolio
// overview, narrative, reconciliation table with totals row, defaulters
// list, unmatched-credits table.
func (e *Exporter) BuildDocument(p *presenter.Presentation, result *models.AuditResult) *Document {
	b := newDocumentBuilder(e.config.LinesPerPage, e.config.SafetyMargin)

	// 1. Title block with generation timestamp
	b.addBlock(
		Line{Kind: LineTitle, Cells: []string{e.config.Title}},
		Line{Kind: LineSubtitle, Cells: []string{
			fmt.Sprintf("Generated: %s", e.config.Clock().Format("2006-01-02 15:04:05")),
		}, Tone: ToneMuted},
	)

	// 2. Portfolio overview
	b.addBlock(
		Line{Kind: LineMetric, Cells: []string{"Total Owed (Earnings)", formatAmount(p.Totals.TotalOwed)}},
		Line{Kind: LineMetric, Cells: []string{"Total Sent (Statement)", formatAmount(p.Totals.TotalSent)}},
		Line{Kind: LineMetric,
			Cells: []string{"Net Portfolio Balance", formatSignedAmount(p.Totals.NetBalance)},
			Tone:  amountTone(p.Totals.NetBalance)},
	)

	// 3. Narrative summary, verbatim and word-wrapped. Lines are added
	// one at a time: the narrative is not an atomic unit, so a long
	// summary paginates instead of overrunning the page.
	for _, text := range wrapText("Executive Summary: "+result.SummaryNote, e.config.NarrativeWidth) {
		b.addBlock(Line{Kind: LineNarrative, Cells: []string{text}, Tone: ToneMuted})
	}

	// 4. Reconciliation table with totals footer row
	e.buildReconciliationTable(b, p)

	// 5. Defaulters
	b.addBlock(Line{Kind: LineHeading, Cells: []string{"Defaulters (Unpaid List)"}, Tone: ToneNegative})
	if len(result.MissingPayments) == 0 {
		b.addBlock(Line{Kind: LinePlaceholder, Cells: []string{"No defaulters found."}, Tone: ToneMuted})
	} else {
		for _, entry := range result.MissingPayments {
			b.addBlock(Line{Kind: LineListItem, Cells: []string{entry}})
		}
	}

	// 6. Unmatched credits
	b.addBlock(Line{Kind: LineHeading, Cells: []string{"Unmatched Credits"}})
	if len(result.UnknownAccounts) == 0 {
		b.addBlock(Line{Kind: LinePlaceholder, Cells: []string{"Zero unmatched credits detected."}, Tone: ToneMuted})
	} else {
		b.beginTable(Line{Kind: LineTableHead, Cells: []string{"Account", "Reference", "Time", "Amount"}})
		for _, acc := range result.UnknownAccounts {
			timeCell := acc.Time
			if timeCell == "" {
				timeCell = "-"
			}
			b.addTableRow(Line{Kind: LineTableRow, Cells: []string{
				acc.AccountNumber,
				acc.TransactionRef,
				timeCell,
				formatAmount(acc.Amount),
			}})
		}
		b.endTable()
	}

	return b.finish(e.config.ProductLabel)
}

func (e *Exporter) buildReconciliationTable(b *documentBuilder, p *presenter.Presentation) {
	b.addBlock(Line{Kind: LineHeading, Cells: []string{"Payment Reconciliation Detail"}})
	b.beginTable(Line{Kind: LineTableHead, Cells: []string{"User ID", "Name", "Linked Accounts", "Last Payment", "Owed", "Sent", "Balance"}})

	for _, summary := range p.Ordered {
		b.addTableRow(Line{
			Kind: LineTableRow,
			Cells: []string{
				summary.UserID,
				summary.UserName,
				breakdownCell(summary),
				lastPaymentCell(summary),
				formatAmount(summary.TotalOwed),
				formatAmount(summary.TotalSent),
				formatSignedAmount(summary.Balance),
			},
			CellTones: []Tone{
				ToneNeutral, ToneNeutral, ToneNeutral, ToneNeutral, ToneNeutral, ToneNeutral,
				amountTone(summary.Balance),
			},
		})
	}

	b.addTableRow(Line{
		Kind: LineTotalsRow,
		Cells: []string{
			"", "Totals", "", "",
			formatAmount(p.Totals.TotalOwed),
			formatAmount(p.Totals.TotalSent),
			formatSignedAmount(p.Totals.NetBalance),
		},
		CellTones: []Tone{
			ToneNeutral, ToneNeutral, ToneNeutral, ToneNeutral, ToneNeutral, ToneNeutral,
			amountTone(p.Totals.NetBalance),
		},
	})
	b.endTable()
}

// breakdownCell lists the user's source accounts with the amount sent
// from each, in matched-credit order.
func breakdownCell(summary *models.UserSummary) string {
	if len(summary.AccountBreakdown) == 0 {
		return "-"
	}

	parts := make([]string, 0, len(summary.AccountBreakdown))
	for _, acc := range summary.AccountBreakdown {
		parts = append(parts, fmt.Sprintf("%s: %s", acc.AccountNumber, formatAmount(acc.AmountSent)))
	}
	return strings.Join(parts, "; ")
}

// lastPaymentCell shows the time of the user's last matched credit,
// flagged when it arrived after the cutoff.
func lastPaymentCell(summary *models.UserSummary) string {
	if len(summary.MatchedTransactions) == 0 {
		return "-"
	}

	last := summary.MatchedTransactions[len(summary.MatchedTransactions)-1]
	if last.IsLate {
		return last.Time + " (late)"
	}
	return last.Time
}

// Export builds the document and renders it to PDF bytes. Nothing is
// written to disk.
func (e *Exporter) Export(p *presenter.Presentation, result *models.AuditResult) ([]byte, error) {
	doc := e.BuildDocument(p, result)

	if err := checkPageCapacity(doc, e.config.LinesPerPage); err != nil {
		return nil, errors.ExportError(errors.CodeLayoutOverflow, "document layout", err)
	}

	data, err := renderPDF(doc)
	if err != nil {
		return nil, errors.ExportError(errors.CodeRenderFailed, "pdf rendering", err)
	}

	e.log.WithFields(logger.Fields{
		"pages": len(doc.Pages),
		"bytes": len(data),
	}).Info("Report rendered")

	return data, nil
}

// ExportToFile renders the report and writes it to path. The file is
// only created once rendering has fully succeeded, so a failed export
// never leaves a partial artifact behind.
func (e *Exporter) ExportToFile(p *presenter.Presentation, result *models.AuditResult, path string) error {
	data, err := e.Export(p, result)
	if err != nil {
		return err
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return errors.ExportError(errors.CodeWriteFailed, "writing report file", err).
			WithContext("path", path)
	}

	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return errors.ExportError(errors.CodeWriteFailed, "finalizing report file", err).
			WithContext("path", path)
	}

	e.log.WithField("path", filepath.Clean(path)).Info("Report saved")
	return nil
}
