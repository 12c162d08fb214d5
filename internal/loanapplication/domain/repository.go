package domain

import (
	"context"
	"time"
)

// LoanApplicationRepository 贷款申请仓储接口
type LoanApplicationRepository interface {
	// Save 新增或更新，返回带 ID 的持久化结果
	Save(ctx context.Context, app LoanApplication) (LoanApplication, error)
	ExistsByEmailAndStatus(ctx context.Context, email string, status Status) (bool, error)
	// FindByStatuses 按创建时间倒序分页
	FindByStatuses(ctx context.Context, states []string, page, size int) ([]LoanApplication, error)
	CountByStatuses(ctx context.Context, states []string) (int64, error)
	// FindByEmailAndID 未找到时返回 nil
	FindByEmailAndID(ctx context.Context, email string, id int64) (*LoanApplication, error)
	FindByUserIDAndStatus(ctx context.Context, userID int64, status Status) ([]LoanApplication, error)
}

// LoanTypeRepository 贷款类型仓储接口，按 code 查询
type LoanTypeRepository interface {
	ExistsByName(ctx context.Context, code string) (bool, error)
	// FindByName 未找到时返回 nil
	FindByName(ctx context.Context, code string) (*LoanType, error)
}

// StateRepository 状态参考数据
type StateRepository interface {
	ExistsByName(ctx context.Context, name string) (bool, error)
}

// UserProfileClient 身份服务客户端
type UserProfileClient interface {
	FindByEmail(ctx context.Context, email string) (UserProfile, error)
	FindByIDs(ctx context.Context, ids []int64) ([]UserProfile, error)
}

// NotificationSender 下游通知，返回投递 ID
type NotificationSender interface {
	SendCapacityRequest(ctx context.Context, req CapacityRequest) (string, error)
	SendStatusChange(ctx context.Context, msg StatusChangeMessage) (string, error)
}

// Clock 业务时区时钟
type Clock interface {
	Now() time.Time
}
