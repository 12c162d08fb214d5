package domain

import "github.com/shopspring/decimal"

// LoanType 贷款类型参考数据
type LoanType struct {
	Code                string          `json:"code"`
	Name                string          `json:"name"`
	MinimumAmount       decimal.Decimal `json:"minimumAmount"`
	MaximumAmount       decimal.Decimal `json:"maximumAmount"`
	InterestRate        decimal.Decimal `json:"interestRate"`
	AutomaticValidation bool            `json:"automaticValidation"`
}

// AllowsAmount 金额是否在 [MinimumAmount, MaximumAmount] 内
func (t LoanType) AllowsAmount(amount decimal.Decimal) bool {
	return !amount.LessThan(t.MinimumAmount) && !amount.GreaterThan(t.MaximumAmount)
}
