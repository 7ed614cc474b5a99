package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// RegistryEntry represents one user from the master registry document.
// The registry is the source of truth for which users exist.
type RegistryEntry struct {
	UserID      string `json:"userId"`
	UserName    string `json:"userName"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
}

// NewRegistryEntry creates a new RegistryEntry instance
func NewRegistryEntry(userID, userName, phoneNumber string) *RegistryEntry {
	return &RegistryEntry{
		UserID:      userID,
		UserName:    userName,
		PhoneNumber: phoneNumber,
	}
}

// Validate performs basic validation on the RegistryEntry
func (r *RegistryEntry) Validate() error {
	if strings.TrimSpace(r.UserID) == "" {
		return fmt.Errorf("registry entry user ID cannot be empty")
	}

	if strings.TrimSpace(r.UserName) == "" {
		return fmt.Errorf("registry entry user name cannot be empty")
	}

	return nil
}

// DisplayName returns the stable human-readable identifier used in
// defaulter lists and report rows.
func (r *RegistryEntry) DisplayName() string {
	return fmt.Sprintf("%s (%s)", r.UserName, r.UserID)
}

// DebitEntry represents one amount-owed line from the earnings ledger.
// A user may have multiple debit entries; they are summed during
// reconciliation.
type DebitEntry struct {
	UserID string          `json:"userId"`
	Amount decimal.Decimal `json:"amount"`
}

// NewDebitEntry creates a new DebitEntry instance
func NewDebitEntry(userID string, amount decimal.Decimal) *DebitEntry {
	return &DebitEntry{
		UserID: userID,
		Amount: amount,
	}
}

// Validate performs basic validation on the DebitEntry
func (d *DebitEntry) Validate() error {
	if strings.TrimSpace(d.UserID) == "" {
		return fmt.Errorf("debit entry user ID cannot be empty")
	}

	if d.Amount.IsNegative() {
		return fmt.Errorf("debit entry amount cannot be negative: %s", d.Amount.String())
	}

	return nil
}

// String returns a string representation of the DebitEntry
func (d *DebitEntry) String() string {
	return fmt.Sprintf("DebitEntry{UserID: %s, Amount: %s}", d.UserID, d.Amount.String())
}

// CreditEntry represents one incoming payment line from the bank
// statement. UserID carries the explicit account/user linkage surfaced
// by the extraction adapter; it is empty when the adapter could not link
// the payment, in which case the engine falls back to an exact
// AccountRef to user ID match.
type CreditEntry struct {
	AccountRef     string          `json:"accountRef"`
	UserID         string          `json:"userId,omitempty"`
	Amount         decimal.Decimal `json:"amount"`
	Date           string          `json:"date"`
	Time           string          `json:"time"`
	TransactionRef string          `json:"transactionRef"`
}

// NewCreditEntry creates a new CreditEntry instance
func NewCreditEntry(accountRef string, amount decimal.Decimal, date, timeOfDay, transactionRef string) *CreditEntry {
	return &CreditEntry{
		AccountRef:     accountRef,
		Amount:         amount,
		Date:           date,
		Time:           timeOfDay,
		TransactionRef: transactionRef,
	}
}

// Validate performs basic validation on the CreditEntry
func (c *CreditEntry) Validate() error {
	if strings.TrimSpace(c.AccountRef) == "" {
		return fmt.Errorf("credit entry account reference cannot be empty")
	}

	if c.Amount.IsNegative() {
		return fmt.Errorf("credit entry amount cannot be negative: %s", c.Amount.String())
	}

	if strings.TrimSpace(c.Date) == "" {
		return fmt.Errorf("credit entry date cannot be empty")
	}

	if _, err := ParseClockTime(c.Time); err != nil {
		return fmt.Errorf("credit entry time is invalid: %w", err)
	}

	return nil
}

// String returns a string representation of the CreditEntry
func (c *CreditEntry) String() string {
	return fmt.Sprintf("CreditEntry{Account: %s, Amount: %s, Date: %s, Time: %s, Ref: %s}",
		c.AccountRef, c.Amount.String(), c.Date, c.Time, c.TransactionRef)
}

// MatchedTransaction is a credit entry successfully attributed to a user
type MatchedTransaction struct {
	Date      string          `json:"date"`
	Time      string          `json:"time"`
	Reference string          `json:"reference"`
	Amount    decimal.Decimal `json:"amount"`
	IsLate    bool            `json:"isLate"`
}

// AccountBreakdown aggregates a user's matched credits per source account
type AccountBreakdown struct {
	AccountNumber string          `json:"accountNumber"`
	AmountSent    decimal.Decimal `json:"amountSent"`
}

// UserSummary holds the per-user reconciliation result
type UserSummary struct {
	UserID              string               `json:"userId"`
	UserName            string               `json:"userName"`
	PhoneNumber         string               `json:"phoneNumber,omitempty"`
	TotalOwed           decimal.Decimal      `json:"totalOwed"`
	TotalSent           decimal.Decimal      `json:"totalSent"`
	Balance             decimal.Decimal      `json:"balance"`
	AccountBreakdown    []AccountBreakdown   `json:"accountBreakdown"`
	MatchedTransactions []MatchedTransaction `json:"matchedTransactions"`
}

// HasPayments reports whether at least one credit was attributed to the user
func (u *UserSummary) HasPayments() bool {
	return len(u.MatchedTransactions) > 0
}

// HasLatePayment reports whether any attributed credit arrived after the cutoff
func (u *UserSummary) HasLatePayment() bool {
	for _, tx := range u.MatchedTransactions {
		if tx.IsLate {
			return true
		}
	}
	return false
}

// DisplayName returns the stable human-readable identifier for report rows
func (u *UserSummary) DisplayName() string {
	return fmt.Sprintf("%s (%s)", u.UserName, u.UserID)
}

// UnknownAccount is a credit entry that could not be attributed to any
// registry user, carried forward unchanged.
type UnknownAccount struct {
	AccountNumber  string          `json:"accountNumber"`
	Date           string          `json:"date"`
	Time           string          `json:"time,omitempty"`
	Amount         decimal.Decimal `json:"amount"`
	TransactionRef string          `json:"transactionRef"`
}

// AuditResult is the complete outcome of one reconciliation run
type AuditResult struct {
	UserSummaries   []*UserSummary   `json:"userSummaries"`
	MissingPayments []string         `json:"missingPayments"`
	UnknownAccounts []UnknownAccount `json:"unknownAccounts"`
	SummaryNote     string           `json:"summaryNote"`
}

// ClockTime is a time of day with minute precision, parsed from the
// 24h "HH:mm" format used on bank statements.
type ClockTime struct {
	Hour   int
	Minute int
}

// LateCutoff is the payment deadline. A payment strictly after this
// time of day counts as late; a payment at exactly 20:00 does not.
var LateCutoff = ClockTime{Hour: 20, Minute: 0}

// ParseClockTime parses a strict 24h "HH:mm" time of day
func ParseClockTime(s string) (ClockTime, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return ClockTime{}, fmt.Errorf("time string cannot be empty")
	}

	if len(s) != 5 || s[2] != ':' {
		return ClockTime{}, fmt.Errorf("invalid time format '%s': expected HH:mm", s)
	}

	hour, err := strconv.Atoi(s[:2])
	if err != nil {
		return ClockTime{}, fmt.Errorf("invalid time format '%s': expected HH:mm", s)
	}

	minute, err := strconv.Atoi(s[3:])
	if err != nil {
		return ClockTime{}, fmt.Errorf("invalid time format '%s': expected HH:mm", s)
	}

	if hour < 0 || hour > 23 {
		return ClockTime{}, fmt.Errorf("invalid hour in '%s': must be 00-23", s)
	}

	if minute < 0 || minute > 59 {
		return ClockTime{}, fmt.Errorf("invalid minute in '%s': must be 00-59", s)
	}

	return ClockTime{Hour: hour, Minute: minute}, nil
}

// String returns the canonical "HH:mm" representation
func (t ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// MinutesOfDay returns the number of minutes since midnight
func (t ClockTime) MinutesOfDay() int {
	return t.Hour*60 + t.Minute
}

// After reports whether t is strictly later in the day than other
func (t ClockTime) After(other ClockTime) bool {
	return t.MinutesOfDay() > other.MinutesOfDay()
}

// IsLate reports whether t falls strictly after the payment cutoff
func (t ClockTime) IsLate() bool {
	return t.After(LateCutoff)
}

// MarshalJSON renders the clock time as an "HH:mm" string
func (t ClockTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON parses the clock time from an "HH:mm" string
func (t *ClockTime) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	parsed, err := ParseClockTime(s)
	if err != nil {
		return err
	}

	*t = parsed
	return nil
}

// ParseAmount parses a monetary amount from a string with validation,
// stripping common currency symbols and thousand separators.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, fmt.Errorf("amount string cannot be empty")
	}

	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid decimal format '%s': %w", s, err)
	}

	return d, nil
}

// SumAmounts returns the exact sum of the given amounts
func SumAmounts(amounts []decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}
