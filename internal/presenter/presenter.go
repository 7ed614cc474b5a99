// Package presenter derives portfolio totals and the display ordering
// of an audit result. It never mutates monetary fields.
package presenter

import (
	"financial-audit-service/internal/models"

	"github.com/shopspring/decimal"
)

// Totals holds the portfolio-level aggregates across all user summaries
type Totals struct {
	TotalOwed  decimal.Decimal `json:"totalOwed"`
	TotalSent  decimal.Decimal `json:"totalSent"`
	NetBalance decimal.Decimal `json:"netBalance"`
}

// Presentation is the ordered, totalled view of an audit result ready
// for display or export.
type Presentation struct {
	Ordered []*models.UserSummary
	Totals  Totals
}

// Present computes portfolio totals and applies the ordering policy:
// users with at least one late payment are moved after all users with
// none, preserving the engine's relative order within each group.
func Present(result *models.AuditResult) *Presentation {
	totals := Totals{
		TotalOwed:  decimal.Zero,
		TotalSent:  decimal.Zero,
		NetBalance: decimal.Zero,
	}

	for _, summary := range result.UserSummaries {
		totals.TotalOwed = totals.TotalOwed.Add(summary.TotalOwed)
		totals.TotalSent = totals.TotalSent.Add(summary.TotalSent)
	}
	totals.NetBalance = totals.TotalSent.Sub(totals.TotalOwed)

	ordered := StablePartition(result.UserSummaries, func(s *models.UserSummary) bool {
		return !s.HasLatePayment()
	})

	return &Presentation{
		Ordered: ordered,
		Totals:  totals,
	}
}

// StablePartition returns a new slice with all elements satisfying the
// predicate first, followed by the rest, preserving relative order
// within both groups. Stability is a contract here, not an accident of
// the underlying sort, which is why this is an explicit primitive.
func StablePartition[T any](items []T, keep func(T) bool) []T {
	result := make([]T, 0, len(items))
	var rest []T

	for _, item := range items {
		if keep(item) {
			result = append(result, item)
		} else {
			rest = append(rest, item)
		}
	}

	return append(result, rest...)
}
