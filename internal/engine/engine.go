// Package engine implements the deterministic reconciliation core: it
// takes the three extracted record sets and produces a self-consistent
// audit result.
//
// The engine is a pure function of its inputs. It performs no I/O, does
// no fuzzy matching and never returns a partial result: any integrity
// violation aborts the whole run.
package engine

import (
	"fmt"

	"financial-audit-service/internal/models"
	"financial-audit-service/pkg/errors"
	"financial-audit-service/pkg/logger"
)

// Engine reconciles registry, earnings ledger and bank statement records
type Engine struct {
	log logger.Logger
}

// NewEngine creates a new reconciliation engine
func NewEngine() *Engine {
	return &Engine{
		log: logger.GetGlobalLogger().WithComponent("engine"),
	}
}

// Reconcile matches statement credits to ledger users and aggregates
// per-user totals. It is deterministic: identical inputs produce an
// identical AuditResult, with user order following first appearance in
// the debit ledger and credits processed in statement order.
//
// Credits correlate through the explicit user linkage surfaced by the
// extraction adapter, falling back to an exact account-reference to
// user-ID match. Anything else lands in UnknownAccounts; every credit
// ends up in exactly one place.
func (e *Engine) Reconcile(
	registry []*models.RegistryEntry,
	debits []*models.DebitEntry,
	credits []*models.CreditEntry,
) (*models.AuditResult, error) {

	users, err := buildRegistryIndex(registry)
	if err != nil {
		return nil, err
	}

	summaries, order, err := e.seedSummaries(users, debits)
	if err != nil {
		return nil, err
	}

	result := &models.AuditResult{
		UserSummaries:   make([]*models.UserSummary, 0, len(order)),
		MissingPayments: []string{},
		UnknownAccounts: []models.UnknownAccount{},
	}

	lateCount := 0
	for _, credit := range credits {
		if credit.Amount.IsNegative() {
			return nil, errors.IntegrityError(errors.CodeNegativeAmount,
				fmt.Sprintf("credit %s", credit.TransactionRef), credit.Amount.String(), nil)
		}

		clock, err := models.ParseClockTime(credit.Time)
		if err != nil {
			return nil, errors.IntegrityError(errors.CodeInvalidTimestamp,
				fmt.Sprintf("credit %s", credit.TransactionRef), credit.Time, err)
		}

		summary := e.correlate(credit, users, summaries)
		if summary == nil {
			result.UnknownAccounts = append(result.UnknownAccounts, models.UnknownAccount{
				AccountNumber:  credit.AccountRef,
				Date:           credit.Date,
				Time:           credit.Time,
				Amount:         credit.Amount,
				TransactionRef: credit.TransactionRef,
			})
			continue
		}

		isLate := clock.IsLate()
		if isLate {
			lateCount++
		}

		summary.MatchedTransactions = append(summary.MatchedTransactions, models.MatchedTransaction{
			Date:      credit.Date,
			Time:      credit.Time,
			Reference: credit.TransactionRef,
			Amount:    credit.Amount,
			IsLate:    isLate,
		})
		summary.TotalSent = summary.TotalSent.Add(credit.Amount)
		upsertBreakdown(summary, credit)
	}

	paidCount := 0
	for _, userID := range order {
		summary := summaries[userID]
		summary.Balance = summary.TotalSent.Sub(summary.TotalOwed)
		result.UserSummaries = append(result.UserSummaries, summary)

		if summary.HasPayments() {
			paidCount++
		} else {
			result.MissingPayments = append(result.MissingPayments, summary.DisplayName())
		}
	}

	result.SummaryNote = buildSummaryNote(result, len(debits), len(credits), paidCount, lateCount)

	e.log.WithFields(logger.Fields{
		"users":            len(result.UserSummaries),
		"missing_payments": len(result.MissingPayments),
		"unknown_accounts": len(result.UnknownAccounts),
		"late_payments":    lateCount,
	}).Info("Reconciliation complete")

	return result, nil
}

// buildRegistryIndex builds the userID lookup, rejecting duplicate IDs
func buildRegistryIndex(registry []*models.RegistryEntry) (map[string]*models.RegistryEntry, error) {
	users := make(map[string]*models.RegistryEntry, len(registry))
	for _, entry := range registry {
		if err := entry.Validate(); err != nil {
			return nil, errors.IntegrityError(errors.CodeInconsistentData,
				fmt.Sprintf("registry entry %s", entry.UserID), entry.UserName, err)
		}
		if _, exists := users[entry.UserID]; exists {
			return nil, errors.IntegrityError(errors.CodeInconsistentData,
				fmt.Sprintf("registry entry %s", entry.UserID), "duplicate user ID", nil)
		}
		users[entry.UserID] = entry
	}
	return users, nil
}

// seedSummaries creates one summary per user present in the debit
// ledger, in first-appearance order, with TotalOwed pre-aggregated.
// Registry users with no debit entries are deliberately excluded; the
// count is logged so the omission stays visible.
func (e *Engine) seedSummaries(
	users map[string]*models.RegistryEntry,
	debits []*models.DebitEntry,
) (map[string]*models.UserSummary, []string, error) {

	summaries := make(map[string]*models.UserSummary)
	var order []string

	for _, debit := range debits {
		if debit.Amount.IsNegative() {
			return nil, nil, errors.IntegrityError(errors.CodeNegativeAmount,
				fmt.Sprintf("debit for user %s", debit.UserID), debit.Amount.String(), nil)
		}

		entry, known := users[debit.UserID]
		if !known {
			return nil, nil, errors.IntegrityError(errors.CodeUnknownDebtor, debit.UserID, debit.Amount.String(), nil)
		}

		summary, exists := summaries[debit.UserID]
		if !exists {
			summary = &models.UserSummary{
				UserID:              entry.UserID,
				UserName:            entry.UserName,
				PhoneNumber:         entry.PhoneNumber,
				AccountBreakdown:    []models.AccountBreakdown{},
				MatchedTransactions: []models.MatchedTransaction{},
			}
			summaries[debit.UserID] = summary
			order = append(order, debit.UserID)
		}
		summary.TotalOwed = summary.TotalOwed.Add(debit.Amount)
	}

	if skipped := len(users) - len(summaries); skipped > 0 {
		e.log.WithField("count", skipped).Warn("Registry users without ledger entries were excluded from the audit")
	}

	return summaries, order, nil
}

// correlate resolves a credit to the summary of a ledger user, or nil
func (e *Engine) correlate(
	credit *models.CreditEntry,
	users map[string]*models.RegistryEntry,
	summaries map[string]*models.UserSummary,
) *models.UserSummary {

	userID := credit.UserID
	if userID == "" {
		if _, known := users[credit.AccountRef]; known {
			userID = credit.AccountRef
		}
	}

	if userID == "" {
		return nil
	}

	return summaries[userID]
}

// upsertBreakdown adds the credit amount to the per-account aggregate,
// creating one entry per distinct source account.
func upsertBreakdown(summary *models.UserSummary, credit *models.CreditEntry) {
	for i := range summary.AccountBreakdown {
		if summary.AccountBreakdown[i].AccountNumber == credit.AccountRef {
			summary.AccountBreakdown[i].AmountSent = summary.AccountBreakdown[i].AmountSent.Add(credit.Amount)
			return
		}
	}

	summary.AccountBreakdown = append(summary.AccountBreakdown, models.AccountBreakdown{
		AccountNumber: credit.AccountRef,
		AmountSent:    credit.Amount,
	})
}

// buildSummaryNote produces the advisory synopsis carried on the
// result. It is free text only; no invariant depends on it.
func buildSummaryNote(result *models.AuditResult, debitCount, creditCount, paidCount, lateCount int) string {
	return fmt.Sprintf(
		"Reconciled %d ledger entries against %d statement credits for %d users: "+
			"%d users received payments, %d users have no payments on record, "+
			"%d late payments were flagged and %d credits could not be attributed.",
		debitCount, creditCount, len(result.UserSummaries),
		paidCount, len(result.MissingPayments), lateCount, len(result.UnknownAccounts))
}
