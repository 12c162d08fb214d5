package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Status 申请状态
type Status string

const (
	StatusPendingReview Status = "PENDING_REVIEW"
	StatusApproved      Status = "APPROVED"
	StatusRejected      Status = "REJECTED"
)

// Is 忽略大小写比较
func (s Status) Is(other Status) bool {
	return strings.EqualFold(string(s), string(other))
}

// 期限范围（月）
const (
	MinLoanTermMonths = 1
	MaxLoanTermMonths = 120
)

// LoanApplication 贷款申请，按值传递，状态变更返回新值
type LoanApplication struct {
	ID                          int64           `json:"id"`
	UserID                      int64           `json:"userId,omitempty"`
	Document                    string          `json:"document"`
	Email                       string          `json:"email"`
	Names                       string          `json:"names"`
	Amount                      decimal.Decimal `json:"amount"`
	LoanTermMonths              int             `json:"loanTermMonths"`
	LoanType                    string          `json:"loanType"`
	Status                      Status          `json:"status"`
	BaseSalary                  decimal.Decimal `json:"baseSalary"`
	MaxIndebtedness             decimal.Decimal `json:"maxIndebtedness"`
	CurrentMonthlyPayment       int64           `json:"currentMonthlyPayment"`
	TotalApprovedMonthlyPayment int64           `json:"totalApprovedMonthlyPayment"`
	AvailableIndebtedness       decimal.Decimal `json:"availableIndebtedness"`
	InterestRate                decimal.Decimal `json:"interestRate"`
	CreatedAt                   time.Time       `json:"createdAt"`
	UpdatedAt                   *time.Time      `json:"updatedAt,omitempty"`
	Observations                string          `json:"observations,omitempty"`
}

// WithStatusChange 返回状态、备注与更新时间变更后的副本
func (a LoanApplication) WithStatusChange(status Status, observations string, at time.Time) LoanApplication {
	next := a
	next.Status = status
	next.Observations = observations
	next.UpdatedAt = &at
	return next
}

// WithProfile 返回合并用户基本工资与姓名后的副本
func (a LoanApplication) WithProfile(p UserProfile) LoanApplication {
	next := a
	next.BaseSalary = p.BaseSalary
	next.Names = p.FullName()
	return next
}
