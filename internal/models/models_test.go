package models

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClockTime(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    ClockTime
		wantErr bool
	}{
		{"valid morning", "08:15", ClockTime{8, 15}, false},
		{"valid midnight", "00:00", ClockTime{0, 0}, false},
		{"valid end of day", "23:59", ClockTime{23, 59}, false},
		{"cutoff itself", "20:00", ClockTime{20, 0}, false},
		{"whitespace trimmed", " 18:30 ", ClockTime{18, 30}, false},
		{"empty", "", ClockTime{}, true},
		{"missing leading zero", "8:15", ClockTime{}, true},
		{"hour out of range", "24:00", ClockTime{}, true},
		{"minute out of range", "12:60", ClockTime{}, true},
		{"garbage minute", "07:5x", ClockTime{}, true},
		{"no separator", "0815", ClockTime{}, true},
		{"with seconds", "08:15:00", ClockTime{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseClockTime(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClockTime_IsLate(t *testing.T) {
	tests := []struct {
		time string
		late bool
	}{
		{"19:59", false},
		{"20:00", false}, // at the cutoff is on time
		{"20:01", true},
		{"23:59", true},
		{"00:00", false},
	}

	for _, tt := range tests {
		t.Run(tt.time, func(t *testing.T) {
			ct, err := ParseClockTime(tt.time)
			require.NoError(t, err)
			assert.Equal(t, tt.late, ct.IsLate())
		})
	}
}

func TestClockTime_JSONRoundTrip(t *testing.T) {
	ct := ClockTime{Hour: 20, Minute: 30}

	data, err := json.Marshal(ct)
	require.NoError(t, err)
	assert.Equal(t, `"20:30"`, string(data))

	var decoded ClockTime
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, ct, decoded)

	assert.Error(t, json.Unmarshal([]byte(`"25:00"`), &decoded))
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"plain", "100.50", "100.5", false},
		{"currency symbol", "$1,250.00", "1250", false},
		{"negative", "-42.10", "-42.1", false},
		{"empty", "", "", true},
		{"garbage", "abc", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAmount(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestRegistryEntry_Validate(t *testing.T) {
	valid := NewRegistryEntry("U1", "Amina Farah", "+252611111")
	assert.NoError(t, valid.Validate())
	assert.Equal(t, "Amina Farah (U1)", valid.DisplayName())

	assert.Error(t, NewRegistryEntry("", "Amina Farah", "").Validate())
	assert.Error(t, NewRegistryEntry("U1", "  ", "").Validate())
}

func TestDebitEntry_Validate(t *testing.T) {
	assert.NoError(t, NewDebitEntry("U1", decimal.NewFromInt(100)).Validate())
	assert.NoError(t, NewDebitEntry("U1", decimal.Zero).Validate())
	assert.Error(t, NewDebitEntry("", decimal.NewFromInt(1)).Validate())
	assert.Error(t, NewDebitEntry("U1", decimal.NewFromInt(-1)).Validate())
}

func TestCreditEntry_Validate(t *testing.T) {
	valid := NewCreditEntry("ACC-9", decimal.NewFromInt(50), "2026-08-01", "18:00", "TX-1")
	assert.NoError(t, valid.Validate())

	tests := []struct {
		name  string
		entry *CreditEntry
	}{
		{"empty account", NewCreditEntry("", decimal.NewFromInt(50), "2026-08-01", "18:00", "TX-1")},
		{"negative amount", NewCreditEntry("ACC-9", decimal.NewFromInt(-50), "2026-08-01", "18:00", "TX-1")},
		{"empty date", NewCreditEntry("ACC-9", decimal.NewFromInt(50), "", "18:00", "TX-1")},
		{"bad time", NewCreditEntry("ACC-9", decimal.NewFromInt(50), "2026-08-01", "28:00", "TX-1")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.entry.Validate())
		})
	}
}

func TestUserSummary_Helpers(t *testing.T) {
	summary := &UserSummary{UserID: "U1", UserName: "Amina Farah"}
	assert.False(t, summary.HasPayments())
	assert.False(t, summary.HasLatePayment())
	assert.Equal(t, "Amina Farah (U1)", summary.DisplayName())

	summary.MatchedTransactions = append(summary.MatchedTransactions, MatchedTransaction{
		Time: "18:00", Amount: decimal.NewFromInt(10),
	})
	assert.True(t, summary.HasPayments())
	assert.False(t, summary.HasLatePayment())

	summary.MatchedTransactions = append(summary.MatchedTransactions, MatchedTransaction{
		Time: "21:15", Amount: decimal.NewFromInt(5), IsLate: true,
	})
	assert.True(t, summary.HasLatePayment())
}

func TestSumAmounts(t *testing.T) {
	amounts := []decimal.Decimal{
		decimal.RequireFromString("0.1"),
		decimal.RequireFromString("0.2"),
		decimal.RequireFromString("0.3"),
	}
	assert.True(t, SumAmounts(amounts).Equal(decimal.RequireFromString("0.6")))
	assert.True(t, SumAmounts(nil).IsZero())
}
