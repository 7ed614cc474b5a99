package exporter

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// formatAmount renders an amount with two decimal places and thousands
// separators, e.g. 1234567.8 -> "1,234,567.80". The sign comes from the
// rounded value, so amounts in (-0.005, 0) render "0.00", not "-0.00".
func formatAmount(d decimal.Decimal) string {
	rounded := d.Round(2)
	fixed := rounded.Abs().StringFixed(2)

	parts := strings.SplitN(fixed, ".", 2)
	grouped := groupThousands(parts[0])

	sign := ""
	if rounded.IsNegative() {
		sign = "-"
	}
	return sign + grouped + "." + parts[1]
}

// formatSignedAmount renders an amount with an explicit sign, the
// convention used for balances: "+0.00" for non-negative values.
func formatSignedAmount(d decimal.Decimal) string {
	if d.Round(2).IsNegative() {
		return formatAmount(d)
	}
	return "+" + formatAmount(d)
}

// amountTone maps a displayed value's sign to its tone: negative
// renders red, non-negative green. The sign follows the rounded value
// shown to the reader.
func amountTone(d decimal.Decimal) Tone {
	if d.Round(2).IsNegative() {
		return ToneNegative
	}
	return TonePositive
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}

	var groups []string
	for len(digits) > 3 {
		groups = append([]string{digits[len(digits)-3:]}, groups...)
		digits = digits[:len(digits)-3]
	}
	return digits + "," + strings.Join(groups, ",")
}

// wrapText word-wraps text to the given width, breaking only at spaces.
// Words longer than the width occupy a line of their own.
func wrapText(text string, width int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{""}
	}

	var lines []string
	line := words[0]
	for _, word := range words[1:] {
		if len(line)+1+len(word) > width {
			lines = append(lines, line)
			line = word
			continue
		}
		line += " " + word
	}
	lines = append(lines, line)

	return lines
}

func pageFooter(productLabel string, page, total int) string {
	return fmt.Sprintf("%s - Financial Integrity Report | Page %d of %d", productLabel, page, total)
}
