package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestMonthlyPayment(t *testing.T) {
	tests := []struct {
		name      string
		principal string
		rate      string
		term      int
		want      int64
	}{
		{"personal 12% two years", "10000", "12", 24, 471},
		{"mortgage scenario", "5000000", "0.019", 12, 416710},
		{"approved scenario", "21000000", "3.25", 12, 1780960},
		{"long term", "1000000", "24", 120, 22048},
		{"five years", "100000", "1.9", 60, 1748},
		{"zero rate exact", "1200", "0", 12, 100},
		{"zero rate rounds down", "1000", "0", 3, 333},
		{"zero rate rounds up", "2000", "0", 3, 667},
		{"zero rate half rounds up", "1", "0", 2, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MonthlyPayment(dec(tt.principal), dec(tt.rate), tt.term)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMonthlyPayment_ZeroRateMatchesDivision(t *testing.T) {
	for term := MinLoanTermMonths; term <= MaxLoanTermMonths; term++ {
		principal := decimal.NewFromInt(int64(7919 * term))
		assert.Equal(t, int64(7919), MonthlyPayment(principal, decimal.Zero, term))
	}
}

func TestMonthlyPayment_Deterministic(t *testing.T) {
	first := MonthlyPayment(dec("35000000"), dec("17.5"), 84)
	for range 5 {
		assert.Equal(t, first, MonthlyPayment(dec("35000000"), dec("17.5"), 84))
	}
}

func TestMonthlyPayment_InvalidTerm(t *testing.T) {
	assert.Equal(t, int64(0), MonthlyPayment(dec("1000"), dec("10"), 0))
}

func TestAvailableIndebtedness(t *testing.T) {
	assert.True(t, dec("1500000").Equal(AvailableIndebtedness(dec("2000000"), 500000)))
	assert.True(t, AvailableIndebtedness(dec("2000000"), 2000000).IsZero())
	assert.True(t, AvailableIndebtedness(dec("100"), 5000).IsZero())
	assert.True(t, AvailableIndebtedness(decimal.Zero, 0).IsZero())

	for _, used := range []int64{0, 1, 999, 1000, 1001, 1 << 40} {
		assert.False(t, AvailableIndebtedness(dec("1000"), used).IsNegative())
	}
}
