package application

import (
	"context"

	"github.com/wyfcoding/loanapplication/internal/loanapplication/domain"
)

// LoanApplicationService 贷款申请门面，组合命令与查询服务
type LoanApplicationService struct {
	Command *LoanApplicationCommandService
	Query   *LoanApplicationQueryService
}

// NewLoanApplicationService 创建门面服务
func NewLoanApplicationService(command *LoanApplicationCommandService, query *LoanApplicationQueryService) *LoanApplicationService {
	return &LoanApplicationService{Command: command, Query: query}
}

// Create 创建贷款申请
func (s *LoanApplicationService) Create(ctx context.Context, cmd CreateLoanApplicationCommand) (domain.LoanApplication, error) {
	return s.Command.Create(ctx, cmd)
}

// Update 更新申请状态
func (s *LoanApplicationService) Update(ctx context.Context, cmd UpdateLoanApplicationCommand) (domain.LoanApplication, error) {
	return s.Command.Update(ctx, cmd)
}

// List 按状态分页查询
func (s *LoanApplicationService) List(ctx context.Context, q ListLoanApplicationsQuery) (domain.PageResult[domain.LoanApplication], error) {
	return s.Query.List(ctx, q)
}
