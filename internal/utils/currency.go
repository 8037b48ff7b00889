package utils

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// DefaultCurrencySymbol is prefixed to formatted prices
const DefaultCurrencySymbol = "₹"

// FormatCurrency renders amount as symbol + thousands-grouped value with two
// decimals, e.g. "₹1,234,567.89".
func FormatCurrency(symbol string, amount float64) string {
	p := message.NewPrinter(language.English)
	return symbol + p.Sprintf("%.2f", amount)
}
