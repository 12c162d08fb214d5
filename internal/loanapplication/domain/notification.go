package domain

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// 通知中的状态文案
const (
	LabelApproved = "APROBADO"
	LabelRejected = "RECHAZADO"
)

// CapacityRequest 自动审批的负债能力校验请求
type CapacityRequest struct {
	ApplicationID                    int64           `json:"applicationId"`
	Email                            string          `json:"email"`
	LoanType                         string          `json:"loanType"`
	Amount                           decimal.Decimal `json:"amount"`
	LoanTermMonths                   int             `json:"loanTermMonths"`
	AnnualInterestRate               decimal.Decimal `json:"annualInterestRate"`
	CustomerID                       string          `json:"customerId"`
	MaxIndebtedness                  decimal.Decimal `json:"maxIndebtedness"`
	CurrentMonthlySalary             decimal.Decimal `json:"currentMonthlySalary"`
	CurrentLoanMonthlyPayment        int64           `json:"currentLoanMonthlyPayment"`
	TotalApprovedLoansMonthlyPayment int64           `json:"totalApprovedLoansMonthlyPayment"`
}

// NewCapacityRequest 由已持久化的申请构造
func NewCapacityRequest(app LoanApplication) CapacityRequest {
	req := CapacityRequest{
		ApplicationID:                    app.ID,
		Email:                            app.Email,
		LoanType:                         app.LoanType,
		Amount:                           app.Amount,
		LoanTermMonths:                   app.LoanTermMonths,
		AnnualInterestRate:               app.InterestRate,
		MaxIndebtedness:                  app.MaxIndebtedness,
		CurrentMonthlySalary:             app.BaseSalary,
		CurrentLoanMonthlyPayment:        app.CurrentMonthlyPayment,
		TotalApprovedLoansMonthlyPayment: app.TotalApprovedMonthlyPayment,
	}
	if app.UserID != 0 {
		req.CustomerID = strconv.FormatInt(app.UserID, 10)
	}
	return req
}

// StatusChangeMessage 状态变更通知；金额、期限、利率仅在批准时非空
type StatusChangeMessage struct {
	FullName           string           `json:"fullName"`
	Status             string           `json:"status"`
	Email              string           `json:"email"`
	Observations       string           `json:"observations"`
	UpdatedAt          time.Time        `json:"updatedAt"`
	Amount             *decimal.Decimal `json:"amount"`
	LoanTermMonths     *int             `json:"loanTermMonths"`
	AnnualInterestRate *decimal.Decimal `json:"annualInterestRate"`
}

// NewStatusChangeMessage 仅对 APPROVED/REJECTED（忽略大小写）生成通知
func NewStatusChangeMessage(app LoanApplication, profile UserProfile) (StatusChangeMessage, bool) {
	var label string
	switch {
	case app.Status.Is(StatusApproved):
		label = LabelApproved
	case app.Status.Is(StatusRejected):
		label = LabelRejected
	default:
		return StatusChangeMessage{}, false
	}

	msg := StatusChangeMessage{
		FullName:     profile.FullName(),
		Status:       label,
		Email:        app.Email,
		Observations: app.Observations,
	}
	if app.UpdatedAt != nil {
		msg.UpdatedAt = *app.UpdatedAt
	}
	if label == LabelApproved {
		amount, rate, term := app.Amount, app.InterestRate, app.LoanTermMonths
		msg.Amount = &amount
		msg.AnnualInterestRate = &rate
		msg.LoanTermMonths = &term
	}
	return msg, true
}
