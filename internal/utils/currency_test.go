package utils

import (
	"math"
	"testing"
)

func TestFormatCurrency(t *testing.T) {
	tests := []struct {
		name   string
		symbol string
		amount float64
		want   string
	}{
		{name: "Zero", symbol: "₹", amount: 0, want: "₹0.00"},
		{name: "Below a thousand", symbol: "₹", amount: 999.5, want: "₹999.50"},
		{name: "Thousands", symbol: "₹", amount: 1234.5, want: "₹1,234.50"},
		{name: "Millions", symbol: "₹", amount: 4500000, want: "₹4,500,000.00"},
		{name: "Rounds to two decimals", symbol: "₹", amount: 1234567.891, want: "₹1,234,567.89"},
		{name: "Negative zero drops the sign", symbol: "₹", amount: math.Copysign(0, -1), want: "₹0.00"},
		{name: "Other symbol", symbol: "$", amount: 12000, want: "$12,000.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatCurrency(tt.symbol, tt.amount); got != tt.want {
				t.Errorf("FormatCurrency(%q, %v) = %q, want %q", tt.symbol, tt.amount, got, tt.want)
			}
		})
	}
}
