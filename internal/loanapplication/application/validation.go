package application

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/wyfcoding/loanapplication/internal/loanapplication/domain"
)

// LoanValidation 创建与更新前的顺序校验，每一步对应一次仓储调用
type LoanValidation struct {
	apps  domain.LoanApplicationRepository
	types domain.LoanTypeRepository
}

// NewLoanValidation 创建校验器
func NewLoanValidation(apps domain.LoanApplicationRepository, types domain.LoanTypeRepository) *LoanValidation {
	return &LoanValidation{apps: apps, types: types}
}

// NoPendingLoan 同一邮箱不能存在待审核申请
func (v *LoanValidation) NoPendingLoan(ctx context.Context, email string) error {
	exists, err := v.apps.ExistsByEmailAndStatus(ctx, email, domain.StatusPendingReview)
	if err != nil {
		return domain.Upstream("check pending application", err)
	}
	if exists {
		return domain.LoanPending(email)
	}
	return nil
}

// LoanTypeExists 贷款类型必须存在
func (v *LoanValidation) LoanTypeExists(ctx context.Context, code string) error {
	exists, err := v.types.ExistsByName(ctx, code)
	if err != nil {
		return domain.Upstream("check loan type", err)
	}
	if !exists {
		return domain.NotFound("loan type %s not found", code)
	}
	return nil
}

// LoanTypeForAmount 返回贷款类型，金额需在其上下限内
func (v *LoanValidation) LoanTypeForAmount(ctx context.Context, code string, amount decimal.Decimal) (domain.LoanType, error) {
	lt, err := v.types.FindByName(ctx, code)
	if err != nil {
		return domain.LoanType{}, domain.Upstream("find loan type", err)
	}
	if lt == nil {
		return domain.LoanType{}, domain.NotFound("loan type %s not found", code)
	}
	if !lt.AllowsAmount(amount) {
		return domain.LoanType{}, domain.BadRequest("amount %s is outside the range [%s, %s] for loan type %s",
			amount, lt.MinimumAmount, lt.MaximumAmount, code)
	}
	return *lt, nil
}

// ExistingLoan 按邮箱与 ID 查找申请
func (v *LoanValidation) ExistingLoan(ctx context.Context, email string, id int64) (domain.LoanApplication, error) {
	app, err := v.apps.FindByEmailAndID(ctx, email, id)
	if err != nil {
		return domain.LoanApplication{}, domain.Upstream("find application", err)
	}
	if app == nil {
		return domain.LoanApplication{}, domain.NotFound("loan application %d not found for %s", id, email)
	}
	return *app, nil
}

// TotalApprovedMonthlyPayment 用户已批准贷款的月供合计
func (v *LoanValidation) TotalApprovedMonthlyPayment(ctx context.Context, userID int64) (int64, error) {
	if userID == 0 {
		return 0, nil
	}
	approved, err := v.apps.FindByUserIDAndStatus(ctx, userID, domain.StatusApproved)
	if err != nil {
		return 0, domain.Upstream("find approved applications", err)
	}
	var total int64
	for _, app := range approved {
		total += app.CurrentMonthlyPayment
	}
	return total, nil
}
