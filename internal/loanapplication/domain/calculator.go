package domain

import "github.com/shopspring/decimal"

// 中间计算保留的小数位
const calcScale = 30

var (
	hundred = decimal.NewFromInt(100)
	twelve  = decimal.NewFromInt(12)
)

// MonthlyPayment 等额本息月供，年利率为百分数。
// payment = P·i·(1+i)^n / ((1+i)^n − 1)，i = rate/100/12；i 为 0 时取 P/n。
// 仅在最后一步四舍五入到整数。
func MonthlyPayment(principal, annualRatePercent decimal.Decimal, termMonths int) int64 {
	if termMonths <= 0 {
		return 0
	}
	n := decimal.NewFromInt(int64(termMonths))

	i := annualRatePercent.DivRound(hundred, calcScale).DivRound(twelve, calcScale)
	if i.IsZero() {
		return principal.DivRound(n, calcScale).Round(0).IntPart()
	}

	factor := powScaled(decimal.NewFromInt(1).Add(i), termMonths)
	numerator := principal.Mul(i).Mul(factor)
	denominator := factor.Sub(decimal.NewFromInt(1))

	return numerator.DivRound(denominator, calcScale).Round(0).IntPart()
}

// powScaled 平方求幂，每步保留 calcScale 位小数
func powScaled(base decimal.Decimal, exp int) decimal.Decimal {
	result := decimal.NewFromInt(1)
	for exp > 0 {
		if exp&1 == 1 {
			result = result.Mul(base).Round(calcScale)
		}
		base = base.Mul(base).Round(calcScale)
		exp >>= 1
	}
	return result
}

// AvailableIndebtedness 可用负债能力，不低于 0
func AvailableIndebtedness(maxIndebtedness decimal.Decimal, totalApprovedMonthly int64) decimal.Decimal {
	available := maxIndebtedness.Sub(decimal.NewFromInt(totalApprovedMonthly))
	if available.IsNegative() {
		return decimal.Zero
	}
	return available
}
