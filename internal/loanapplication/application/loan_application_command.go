package application

import (
	"context"
	"strings"

	"github.com/wyfcoding/loanapplication/internal/loanapplication/domain"
	"github.com/wyfcoding/loanapplication/pkg/logger"
)

// Recorder 业务指标记录
type Recorder interface {
	ApplicationCreated(loanType string)
	StatusChanged(status string)
}

type noopRecorder struct{}

func (noopRecorder) ApplicationCreated(string) {}
func (noopRecorder) StatusChanged(string)      {}

// LoanApplicationCommandService 处理贷款申请的创建与状态变更
type LoanApplicationCommandService struct {
	validation *LoanValidation
	apps       domain.LoanApplicationRepository
	users      domain.UserProfileClient
	sender     domain.NotificationSender
	clock      domain.Clock
	recorder   Recorder
}

// NewLoanApplicationCommandService 创建命令服务；recorder 可为 nil
func NewLoanApplicationCommandService(
	apps domain.LoanApplicationRepository,
	types domain.LoanTypeRepository,
	users domain.UserProfileClient,
	sender domain.NotificationSender,
	clock domain.Clock,
	recorder Recorder,
) *LoanApplicationCommandService {
	if recorder == nil {
		recorder = noopRecorder{}
	}
	return &LoanApplicationCommandService{
		validation: NewLoanValidation(apps, types),
		apps:       apps,
		users:      users,
		sender:     sender,
		clock:      clock,
		recorder:   recorder,
	}
}

// Create 校验、计算月供与可用负债能力后持久化；
// 贷款类型开启自动审批时发送负债能力校验请求，发送失败即整体失败
func (s *LoanApplicationCommandService) Create(ctx context.Context, cmd CreateLoanApplicationCommand) (domain.LoanApplication, error) {
	if err := cmd.Validate(); err != nil {
		return domain.LoanApplication{}, err
	}
	email := strings.TrimSpace(cmd.Email)
	loanTypeCode := strings.TrimSpace(cmd.LoanType)

	if err := s.validation.NoPendingLoan(ctx, email); err != nil {
		return domain.LoanApplication{}, err
	}
	if err := s.validation.LoanTypeExists(ctx, loanTypeCode); err != nil {
		return domain.LoanApplication{}, err
	}
	loanType, err := s.validation.LoanTypeForAmount(ctx, loanTypeCode, cmd.Amount)
	if err != nil {
		return domain.LoanApplication{}, err
	}

	profile, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return domain.LoanApplication{}, domain.Upstream("find user profile", err)
	}

	payment := domain.MonthlyPayment(cmd.Amount, loanType.InterestRate, cmd.LoanTermMonths)
	totalApproved, err := s.validation.TotalApprovedMonthlyPayment(ctx, profile.UserID)
	if err != nil {
		return domain.LoanApplication{}, err
	}

	app := domain.LoanApplication{
		UserID:                      profile.UserID,
		Document:                    profile.Document,
		Email:                       email,
		Names:                       profile.FullName(),
		Amount:                      cmd.Amount,
		LoanTermMonths:              cmd.LoanTermMonths,
		LoanType:                    loanType.Code,
		Status:                      domain.StatusPendingReview,
		BaseSalary:                  profile.BaseSalary,
		MaxIndebtedness:             profile.MaxIndebtedness,
		CurrentMonthlyPayment:       payment,
		TotalApprovedMonthlyPayment: totalApproved,
		AvailableIndebtedness:       domain.AvailableIndebtedness(profile.MaxIndebtedness, totalApproved),
		InterestRate:                loanType.InterestRate,
		CreatedAt:                   s.clock.Now(),
	}

	saved, err := s.apps.Save(ctx, app)
	if err != nil {
		return domain.LoanApplication{}, domain.Upstream("save application", err)
	}
	s.recorder.ApplicationCreated(saved.LoanType)
	logger.Info(ctx, "loan application created",
		"application_id", saved.ID,
		"loan_type", saved.LoanType,
		"monthly_payment", saved.CurrentMonthlyPayment,
	)

	if loanType.AutomaticValidation {
		deliveryID, err := s.sender.SendCapacityRequest(ctx, domain.NewCapacityRequest(saved))
		if err != nil {
			logger.Error(ctx, "capacity request not sent", "application_id", saved.ID, "error", err)
			return domain.LoanApplication{}, domain.Upstream("send capacity request", err)
		}
		logger.Info(ctx, "capacity request sent", "application_id", saved.ID, "delivery_id", deliveryID)
	}

	return saved, nil
}

// Update 变更状态与备注；状态未变化时直接返回原记录，不持久化也不通知
func (s *LoanApplicationCommandService) Update(ctx context.Context, cmd UpdateLoanApplicationCommand) (domain.LoanApplication, error) {
	if err := cmd.Validate(); err != nil {
		return domain.LoanApplication{}, err
	}
	email := strings.TrimSpace(cmd.Email)

	existing, err := s.validation.ExistingLoan(ctx, email, cmd.ID)
	if err != nil {
		return domain.LoanApplication{}, err
	}

	profile, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return domain.LoanApplication{}, domain.Upstream("find user profile", err)
	}

	if cmd.Status == existing.Status {
		logger.Debug(ctx, "status unchanged, skipping update", "application_id", existing.ID, "status", existing.Status)
		return existing, nil
	}

	saved, err := s.apps.Save(ctx, existing.WithStatusChange(cmd.Status, cmd.Observations, s.clock.Now()))
	if err != nil {
		return domain.LoanApplication{}, domain.Upstream("save application", err)
	}
	s.recorder.StatusChanged(string(saved.Status))
	logger.Info(ctx, "loan application status changed",
		"application_id", saved.ID,
		"from", existing.Status,
		"to", saved.Status,
	)

	msg, notify := domain.NewStatusChangeMessage(saved, profile)
	if !notify {
		return saved, nil
	}
	deliveryID, err := s.sender.SendStatusChange(ctx, msg)
	if err != nil {
		logger.Error(ctx, "status change notification not sent", "application_id", saved.ID, "error", err)
		return domain.LoanApplication{}, domain.Upstream("send status change", err)
	}
	logger.Info(ctx, "status change notification sent", "application_id", saved.ID, "delivery_id", deliveryID)

	return saved, nil
}
