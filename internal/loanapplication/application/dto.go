package application

import (
	"strings"

	"github.com/shopspring/decimal"
	"github.com/wyfcoding/loanapplication/internal/loanapplication/domain"
)

// CreateLoanApplicationCommand 创建贷款申请
type CreateLoanApplicationCommand struct {
	Email          string
	Amount         decimal.Decimal
	LoanTermMonths int
	LoanType       string
}

// Validate 校验命令格式
func (c CreateLoanApplicationCommand) Validate() error {
	if !validEmail(c.Email) {
		return domain.BadRequest("a valid email is required")
	}
	if strings.TrimSpace(c.LoanType) == "" {
		return domain.BadRequest("loan type is required")
	}
	if !c.Amount.IsPositive() {
		return domain.BadRequest("amount must be greater than zero")
	}
	if !c.Amount.Equal(c.Amount.Truncate(0)) {
		return domain.BadRequest("amount must be an integer value")
	}
	if c.LoanTermMonths < domain.MinLoanTermMonths || c.LoanTermMonths > domain.MaxLoanTermMonths {
		return domain.BadRequest("loan term must be between %d and %d months",
			domain.MinLoanTermMonths, domain.MaxLoanTermMonths)
	}
	return nil
}

// UpdateLoanApplicationCommand 更新申请状态
type UpdateLoanApplicationCommand struct {
	ID           int64
	Email        string
	Status       domain.Status
	Observations string
}

// Validate 校验命令格式
func (c UpdateLoanApplicationCommand) Validate() error {
	if c.ID <= 0 {
		return domain.BadRequest("application id must be positive")
	}
	if !validEmail(c.Email) {
		return domain.BadRequest("a valid email is required")
	}
	if strings.TrimSpace(string(c.Status)) == "" {
		return domain.BadRequest("status is required")
	}
	return nil
}

// ListLoanApplicationsQuery 按状态分页查询
type ListLoanApplicationsQuery struct {
	Page   int
	Size   int
	States []string
}

func validEmail(email string) bool {
	email = strings.TrimSpace(email)
	at := strings.Index(email, "@")
	return at > 0 && at < len(email)-1
}
