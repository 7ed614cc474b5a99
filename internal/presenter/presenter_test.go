package presenter

import (
	"testing"

	"financial-audit-service/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func amount(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func summary(id string, owed, sent string, late bool) *models.UserSummary {
	s := &models.UserSummary{
		UserID:    id,
		UserName:  "User " + id,
		TotalOwed: amount(owed),
		TotalSent: amount(sent),
	}
	s.Balance = s.TotalSent.Sub(s.TotalOwed)
	if sent != "0" {
		s.MatchedTransactions = []models.MatchedTransaction{
			{Time: "10:00", Amount: amount(sent), IsLate: late},
		}
	}
	return s
}

func TestPresent_Totals(t *testing.T) {
	result := &models.AuditResult{
		UserSummaries: []*models.UserSummary{
			summary("A", "100", "100", false),
			summary("B", "50", "0", false),
		},
	}

	p := Present(result)

	assert.True(t, p.Totals.TotalOwed.Equal(amount("150")))
	assert.True(t, p.Totals.TotalSent.Equal(amount("100")))
	assert.True(t, p.Totals.NetBalance.Equal(amount("-50")))
}

func TestPresent_LateUsersMoveToEnd(t *testing.T) {
	result := &models.AuditResult{
		UserSummaries: []*models.UserSummary{
			summary("A", "10", "10", true),
			summary("B", "10", "10", false),
			summary("C", "10", "10", true),
			summary("D", "10", "0", false),
			summary("E", "10", "10", false),
		},
	}

	p := Present(result)

	var order []string
	for _, s := range p.Ordered {
		order = append(order, s.UserID)
	}
	assert.Equal(t, []string{"B", "D", "E", "A", "C"}, order)
}

func TestPresent_Idempotent(t *testing.T) {
	result := &models.AuditResult{
		UserSummaries: []*models.UserSummary{
			summary("A", "10", "10", true),
			summary("B", "10", "10", false),
			summary("C", "10", "10", true),
		},
	}

	once := Present(result)
	twice := Present(&models.AuditResult{UserSummaries: once.Ordered})

	var first, second []string
	for _, s := range once.Ordered {
		first = append(first, s.UserID)
	}
	for _, s := range twice.Ordered {
		second = append(second, s.UserID)
	}
	assert.Equal(t, first, second)
}

func TestPresent_DoesNotMutate(t *testing.T) {
	a := summary("A", "100", "40", true)
	result := &models.AuditResult{UserSummaries: []*models.UserSummary{a}}

	p := Present(result)

	require.Len(t, p.Ordered, 1)
	assert.True(t, a.TotalOwed.Equal(amount("100")))
	assert.True(t, a.TotalSent.Equal(amount("40")))
	assert.True(t, a.Balance.Equal(amount("-60")))
	assert.Equal(t, "A", result.UserSummaries[0].UserID, "input order untouched")
}

func TestPresent_Empty(t *testing.T) {
	p := Present(&models.AuditResult{})

	assert.Empty(t, p.Ordered)
	assert.True(t, p.Totals.TotalOwed.IsZero())
	assert.True(t, p.Totals.TotalSent.IsZero())
	assert.True(t, p.Totals.NetBalance.IsZero())
}

func TestStablePartition(t *testing.T) {
	t.Run("preserves relative order", func(t *testing.T) {
		got := StablePartition([]int{1, 2, 3, 4, 5, 6}, func(n int) bool { return n%2 == 0 })
		assert.Equal(t, []int{2, 4, 6, 1, 3, 5}, got)
	})

	t.Run("applied twice equals applied once", func(t *testing.T) {
		even := func(n int) bool { return n%2 == 0 }
		once := StablePartition([]int{5, 2, 9, 4, 7, 6}, even)
		twice := StablePartition(once, even)
		assert.Equal(t, once, twice)
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Empty(t, StablePartition(nil, func(int) bool { return true }))
	})

	t.Run("does not modify input", func(t *testing.T) {
		input := []int{3, 1, 2}
		StablePartition(input, func(n int) bool { return n > 1 })
		assert.Equal(t, []int{3, 1, 2}, input)
	})
}
