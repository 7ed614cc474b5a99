package engine

import (
	"testing"

	"financial-audit-service/internal/models"
	"financial-audit-service/pkg/errors"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func amount(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func registryAB() []*models.RegistryEntry {
	return []*models.RegistryEntry{
		models.NewRegistryEntry("A", "Amina Farah", "+252611111"),
		models.NewRegistryEntry("B", "Bashir Omar", ""),
	}
}

func TestReconcile_BasicScenario(t *testing.T) {
	// Registry has A and B; A owes 100, B owes 50; one credit of 100 to A
	// at 18:00 and one credit of 50 to an unknown account at 21:00.
	debits := []*models.DebitEntry{
		models.NewDebitEntry("A", amount("100")),
		models.NewDebitEntry("B", amount("50")),
	}
	credits := []*models.CreditEntry{
		{AccountRef: "A", Amount: amount("100"), Date: "2026-08-01", Time: "18:00", TransactionRef: "TX-1"},
		{AccountRef: "ACC-999", Amount: amount("50"), Date: "2026-08-01", Time: "21:00", TransactionRef: "TX-2"},
	}

	result, err := NewEngine().Reconcile(registryAB(), debits, credits)
	require.NoError(t, err)
	require.Len(t, result.UserSummaries, 2)

	a := result.UserSummaries[0]
	assert.Equal(t, "A", a.UserID)
	assert.True(t, a.TotalSent.Equal(amount("100")))
	assert.True(t, a.Balance.IsZero())
	assert.False(t, a.HasLatePayment())
	require.Len(t, a.MatchedTransactions, 1)
	assert.Equal(t, "TX-1", a.MatchedTransactions[0].Reference)

	b := result.UserSummaries[1]
	assert.True(t, b.TotalSent.IsZero())
	assert.True(t, b.Balance.Equal(amount("-50")))
	assert.Equal(t, []string{"Bashir Omar (B)"}, result.MissingPayments)

	require.Len(t, result.UnknownAccounts, 1)
	assert.Equal(t, "ACC-999", result.UnknownAccounts[0].AccountNumber)
	assert.True(t, result.UnknownAccounts[0].Amount.Equal(amount("50")))
	assert.Equal(t, "TX-2", result.UnknownAccounts[0].TransactionRef)

	assert.NotEmpty(t, result.SummaryNote)
}

func TestReconcile_LatePaymentAndMultipleCredits(t *testing.T) {
	// Two credits for one user, one before and one after the cutoff.
	debits := []*models.DebitEntry{models.NewDebitEntry("A", amount("50"))}
	credits := []*models.CreditEntry{
		{AccountRef: "A", Amount: amount("30"), Date: "2026-08-01", Time: "19:00", TransactionRef: "TX-1"},
		{AccountRef: "A", Amount: amount("20"), Date: "2026-08-01", Time: "20:30", TransactionRef: "TX-2"},
	}

	result, err := NewEngine().Reconcile(registryAB(), debits, credits)
	require.NoError(t, err)
	require.Len(t, result.UserSummaries, 1)

	a := result.UserSummaries[0]
	assert.True(t, a.TotalSent.Equal(amount("50")))
	assert.True(t, a.Balance.IsZero())
	require.Len(t, a.MatchedTransactions, 2)
	assert.False(t, a.MatchedTransactions[0].IsLate)
	assert.True(t, a.MatchedTransactions[1].IsLate)
	assert.True(t, a.HasLatePayment())
	assert.Empty(t, result.MissingPayments)
}

func TestReconcile_LateBoundary(t *testing.T) {
	// Exactly 20:00 is on time; 20:01 is late.
	debits := []*models.DebitEntry{models.NewDebitEntry("A", amount("10"))}
	credits := []*models.CreditEntry{
		{AccountRef: "A", Amount: amount("5"), Date: "2026-08-01", Time: "20:00", TransactionRef: "TX-1"},
		{AccountRef: "A", Amount: amount("5"), Date: "2026-08-01", Time: "20:01", TransactionRef: "TX-2"},
	}

	result, err := NewEngine().Reconcile(registryAB(), debits, credits)
	require.NoError(t, err)

	txs := result.UserSummaries[0].MatchedTransactions
	require.Len(t, txs, 2)
	assert.False(t, txs[0].IsLate, "payment at exactly 20:00 must not be late")
	assert.True(t, txs[1].IsLate, "payment at 20:01 must be late")
}

func TestReconcile_ExplicitLinkageWins(t *testing.T) {
	// The adapter-surfaced linkage takes priority over the account ref.
	debits := []*models.DebitEntry{models.NewDebitEntry("A", amount("10"))}
	credits := []*models.CreditEntry{
		{AccountRef: "ACC-777", UserID: "A", Amount: amount("10"), Date: "2026-08-01", Time: "10:00", TransactionRef: "TX-1"},
	}

	result, err := NewEngine().Reconcile(registryAB(), debits, credits)
	require.NoError(t, err)

	a := result.UserSummaries[0]
	assert.True(t, a.TotalSent.Equal(amount("10")))
	require.Len(t, a.AccountBreakdown, 1)
	assert.Equal(t, "ACC-777", a.AccountBreakdown[0].AccountNumber)
	assert.Empty(t, result.UnknownAccounts)
}

func TestReconcile_CreditForRegistryUserWithoutDebits(t *testing.T) {
	// B exists in the registry but has no ledger entries, so there is no
	// summary to attach the credit to; it must land in unknown accounts.
	debits := []*models.DebitEntry{models.NewDebitEntry("A", amount("10"))}
	credits := []*models.CreditEntry{
		{AccountRef: "B", Amount: amount("10"), Date: "2026-08-01", Time: "10:00", TransactionRef: "TX-1"},
	}

	result, err := NewEngine().Reconcile(registryAB(), debits, credits)
	require.NoError(t, err)

	require.Len(t, result.UserSummaries, 1)
	assert.Equal(t, "A", result.UserSummaries[0].UserID)
	require.Len(t, result.UnknownAccounts, 1)
	assert.Equal(t, "B", result.UnknownAccounts[0].AccountNumber)
}

func TestReconcile_AccountBreakdownAggregation(t *testing.T) {
	debits := []*models.DebitEntry{models.NewDebitEntry("A", amount("100"))}
	credits := []*models.CreditEntry{
		{AccountRef: "ACC-1", UserID: "A", Amount: amount("30"), Date: "2026-08-01", Time: "09:00", TransactionRef: "TX-1"},
		{AccountRef: "ACC-2", UserID: "A", Amount: amount("40"), Date: "2026-08-01", Time: "10:00", TransactionRef: "TX-2"},
		{AccountRef: "ACC-1", UserID: "A", Amount: amount("30"), Date: "2026-08-02", Time: "11:00", TransactionRef: "TX-3"},
	}

	result, err := NewEngine().Reconcile(registryAB(), debits, credits)
	require.NoError(t, err)

	a := result.UserSummaries[0]
	require.Len(t, a.AccountBreakdown, 2)
	assert.Equal(t, "ACC-1", a.AccountBreakdown[0].AccountNumber)
	assert.True(t, a.AccountBreakdown[0].AmountSent.Equal(amount("60")))
	assert.Equal(t, "ACC-2", a.AccountBreakdown[1].AccountNumber)
	assert.True(t, a.AccountBreakdown[1].AmountSent.Equal(amount("40")))

	// Per-user conservation: totalSent equals both partial sums.
	breakdownSum := decimal.Zero
	for _, acc := range a.AccountBreakdown {
		breakdownSum = breakdownSum.Add(acc.AmountSent)
	}
	txSum := decimal.Zero
	for _, tx := range a.MatchedTransactions {
		txSum = txSum.Add(tx.Amount)
	}
	assert.True(t, a.TotalSent.Equal(breakdownSum))
	assert.True(t, a.TotalSent.Equal(txSum))
}

func TestReconcile_CreditConservation(t *testing.T) {
	// Every input credit appears exactly once across matched
	// transactions and unknown accounts.
	debits := []*models.DebitEntry{
		models.NewDebitEntry("A", amount("100")),
		models.NewDebitEntry("B", amount("200")),
	}
	credits := []*models.CreditEntry{
		{AccountRef: "A", Amount: amount("10"), Date: "2026-08-01", Time: "09:00", TransactionRef: "TX-1"},
		{AccountRef: "X", Amount: amount("20"), Date: "2026-08-01", Time: "10:00", TransactionRef: "TX-2"},
		{AccountRef: "B", Amount: amount("30"), Date: "2026-08-01", Time: "11:00", TransactionRef: "TX-3"},
		{AccountRef: "Y", Amount: amount("40"), Date: "2026-08-01", Time: "21:30", TransactionRef: "TX-4"},
	}

	result, err := NewEngine().Reconcile(registryAB(), debits, credits)
	require.NoError(t, err)

	seen := map[string]int{}
	for _, u := range result.UserSummaries {
		for _, tx := range u.MatchedTransactions {
			seen[tx.Reference]++
		}
	}
	for _, acc := range result.UnknownAccounts {
		seen[acc.TransactionRef]++
	}

	require.Len(t, seen, len(credits))
	for _, credit := range credits {
		assert.Equal(t, 1, seen[credit.TransactionRef], "credit %s", credit.TransactionRef)
	}
}

func TestReconcile_MissingPaymentsMatchesEmptyTransactions(t *testing.T) {
	debits := []*models.DebitEntry{
		models.NewDebitEntry("A", amount("10")),
		models.NewDebitEntry("B", amount("10")),
	}
	credits := []*models.CreditEntry{
		{AccountRef: "A", Amount: amount("10"), Date: "2026-08-01", Time: "09:00", TransactionRef: "TX-1"},
	}

	result, err := NewEngine().Reconcile(registryAB(), debits, credits)
	require.NoError(t, err)

	var expected []string
	for _, u := range result.UserSummaries {
		if !u.HasPayments() {
			expected = append(expected, u.DisplayName())
		}
	}
	assert.Equal(t, expected, result.MissingPayments)
}

func TestReconcile_DebitGrouping(t *testing.T) {
	debits := []*models.DebitEntry{
		models.NewDebitEntry("A", amount("40")),
		models.NewDebitEntry("B", amount("5")),
		models.NewDebitEntry("A", amount("60")),
	}

	result, err := NewEngine().Reconcile(registryAB(), debits, nil)
	require.NoError(t, err)

	require.Len(t, result.UserSummaries, 2)
	assert.Equal(t, "A", result.UserSummaries[0].UserID)
	assert.True(t, result.UserSummaries[0].TotalOwed.Equal(amount("100")))
	assert.True(t, result.UserSummaries[0].Balance.Equal(amount("-100")))
}

func TestReconcile_IntegrityFailures(t *testing.T) {
	tests := []struct {
		name     string
		registry []*models.RegistryEntry
		debits   []*models.DebitEntry
		credits  []*models.CreditEntry
		wantCode errors.ErrorCode
	}{
		{
			name:     "debit for unknown user",
			registry: registryAB(),
			debits:   []*models.DebitEntry{models.NewDebitEntry("Z", amount("10"))},
			wantCode: errors.CodeUnknownDebtor,
		},
		{
			name:     "negative debit",
			registry: registryAB(),
			debits:   []*models.DebitEntry{models.NewDebitEntry("A", amount("-10"))},
			wantCode: errors.CodeNegativeAmount,
		},
		{
			name:     "negative credit",
			registry: registryAB(),
			debits:   []*models.DebitEntry{models.NewDebitEntry("A", amount("10"))},
			credits: []*models.CreditEntry{
				{AccountRef: "A", Amount: amount("-5"), Date: "2026-08-01", Time: "09:00", TransactionRef: "TX-1"},
			},
			wantCode: errors.CodeNegativeAmount,
		},
		{
			name:     "unparsable credit time",
			registry: registryAB(),
			debits:   []*models.DebitEntry{models.NewDebitEntry("A", amount("10"))},
			credits: []*models.CreditEntry{
				{AccountRef: "A", Amount: amount("5"), Date: "2026-08-01", Time: "9pm", TransactionRef: "TX-1"},
			},
			wantCode: errors.CodeInvalidTimestamp,
		},
		{
			name: "duplicate registry user ID",
			registry: []*models.RegistryEntry{
				models.NewRegistryEntry("A", "Amina Farah", ""),
				models.NewRegistryEntry("A", "Someone Else", ""),
			},
			debits:   []*models.DebitEntry{models.NewDebitEntry("A", amount("10"))},
			wantCode: errors.CodeInconsistentData,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := NewEngine().Reconcile(tt.registry, tt.debits, tt.credits)
			require.Error(t, err)
			assert.Nil(t, result, "no partial result on integrity failure")
			assert.True(t, errors.HasCode(err, tt.wantCode), "got %v", err)
		})
	}
}

func TestReconcile_Deterministic(t *testing.T) {
	debits := []*models.DebitEntry{
		models.NewDebitEntry("B", amount("50")),
		models.NewDebitEntry("A", amount("100")),
	}
	credits := []*models.CreditEntry{
		{AccountRef: "A", Amount: amount("70"), Date: "2026-08-01", Time: "20:45", TransactionRef: "TX-1"},
		{AccountRef: "Q", Amount: amount("5"), Date: "2026-08-01", Time: "08:00", TransactionRef: "TX-2"},
	}

	first, err := NewEngine().Reconcile(registryAB(), debits, credits)
	require.NoError(t, err)
	second, err := NewEngine().Reconcile(registryAB(), debits, credits)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, "B", first.UserSummaries[0].UserID, "ledger order preserved")
}
