package consumer

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/wyfcoding/loanapplication/internal/loanapplication/application"
	"github.com/wyfcoding/loanapplication/internal/loanapplication/domain"
	"github.com/wyfcoding/loanapplication/pkg/logger"
	"github.com/wyfcoding/loanapplication/pkg/mq"
)

// Updater 应用状态变更能力
type Updater interface {
	Update(ctx context.Context, cmd application.UpdateLoanApplicationCommand) (domain.LoanApplication, error)
}

// Recorder 决策处理结果指标
type Recorder interface {
	DecisionConsumed(err error)
}

// DecisionMessage 自动负债能力校验的决策结果
type DecisionMessage struct {
	ApplicationID         int64            `json:"applicationId"`
	Email                 string           `json:"email"`
	NewStatus             string           `json:"newStatus"`
	Observations          string           `json:"observations"`
	MaxCapacity           *decimal.Decimal `json:"maxCapacity,omitempty"`
	CurrentMonthlyDebt    *decimal.Decimal `json:"currentMonthlyDebt,omitempty"`
	AvailableCapacity     *decimal.Decimal `json:"availableCapacity,omitempty"`
	NewLoanMonthlyPayment *decimal.Decimal `json:"newLoanMonthlyPayment,omitempty"`
}

// DecisionHandler 将决策消息转换为状态更新
type DecisionHandler struct {
	updater  Updater
	recorder Recorder
}

// NewDecisionHandler 创建处理器；recorder 可为空
func NewDecisionHandler(updater Updater, recorder Recorder) *DecisionHandler {
	return &DecisionHandler{updater: updater, recorder: recorder}
}

// Handle 处理单条消息；返回错误时由消费者转入死信队列
func (h *DecisionHandler) Handle(ctx context.Context, msg *mq.Message) (err error) {
	defer func() {
		if h.recorder != nil {
			h.recorder.DecisionConsumed(err)
		}
	}()

	if id := msg.Headers[mq.HeaderMessageID]; id != "" {
		ctx = logger.ContextWithRequestID(ctx, id)
	}

	var decision DecisionMessage
	if err := msg.UnmarshalPayload(&decision); err != nil {
		logger.Error(ctx, "failed to unmarshal decision message", "offset", msg.Offset, "error", err)
		return fmt.Errorf("decode decision: %w", err)
	}

	logger.Info(ctx, "decision received",
		"application_id", decision.ApplicationID,
		"email", decision.Email,
		"new_status", decision.NewStatus,
	)

	saved, err := h.updater.Update(ctx, application.UpdateLoanApplicationCommand{
		ID:           decision.ApplicationID,
		Email:        strings.TrimSpace(decision.Email),
		Status:       domain.Status(strings.ToUpper(strings.TrimSpace(decision.NewStatus))),
		Observations: decision.Observations,
	})
	if err != nil {
		logger.Error(ctx, "failed to apply decision", "application_id", decision.ApplicationID, "error", err)
		return err
	}

	logger.Info(ctx, "decision applied", "application_id", saved.ID, "status", string(saved.Status))
	return nil
}
