package mysql

import (
	"context"
	"errors"
	"fmt"

	"github.com/wyfcoding/loanapplication/internal/loanapplication/domain"
	"gorm.io/gorm"
)

// LoanApplicationRepository 基于 GORM 的贷款申请仓储
type LoanApplicationRepository struct {
	db *gorm.DB
}

// NewLoanApplicationRepository 创建仓储
func NewLoanApplicationRepository(db *gorm.DB) *LoanApplicationRepository {
	return &LoanApplicationRepository{db: db}
}

func (r *LoanApplicationRepository) Save(ctx context.Context, app domain.LoanApplication) (domain.LoanApplication, error) {
	m := toLoanApplicationModel(app)

	var err error
	if m.ID == 0 {
		err = r.db.WithContext(ctx).Create(&m).Error
	} else {
		err = r.db.WithContext(ctx).Save(&m).Error
	}
	if err != nil {
		return domain.LoanApplication{}, fmt.Errorf("failed to save loan application: %w", err)
	}
	return m.toDomain(), nil
}

func (r *LoanApplicationRepository) ExistsByEmailAndStatus(ctx context.Context, email string, status domain.Status) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&LoanApplicationModel{}).
		Where("email = ? AND status = ?", email, string(status)).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to count applications by email and status: %w", err)
	}
	return count > 0, nil
}

func (r *LoanApplicationRepository) FindByStatuses(ctx context.Context, states []string, page, size int) ([]domain.LoanApplication, error) {
	var models []LoanApplicationModel
	err := r.db.WithContext(ctx).
		Where("status IN ?", states).
		Order("created_at DESC, id DESC").
		Offset(page * size).
		Limit(size).
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list applications by status: %w", err)
	}
	return toDomainList(models), nil
}

func (r *LoanApplicationRepository) CountByStatuses(ctx context.Context, states []string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&LoanApplicationModel{}).
		Where("status IN ?", states).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count applications by status: %w", err)
	}
	return count, nil
}

func (r *LoanApplicationRepository) FindByEmailAndID(ctx context.Context, email string, id int64) (*domain.LoanApplication, error) {
	var m LoanApplicationModel
	err := r.db.WithContext(ctx).Where("email = ? AND id = ?", email, id).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find application %d: %w", id, err)
	}
	app := m.toDomain()
	return &app, nil
}

func (r *LoanApplicationRepository) FindByUserIDAndStatus(ctx context.Context, userID int64, status domain.Status) ([]domain.LoanApplication, error) {
	var models []LoanApplicationModel
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, string(status)).
		Order("created_at DESC, id DESC").
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list applications of user %d: %w", userID, err)
	}
	return toDomainList(models), nil
}

func toDomainList(models []LoanApplicationModel) []domain.LoanApplication {
	out := make([]domain.LoanApplication, 0, len(models))
	for _, m := range models {
		out = append(out, m.toDomain())
	}
	return out
}
