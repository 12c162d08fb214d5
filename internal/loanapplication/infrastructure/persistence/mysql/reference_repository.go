package mysql

import (
	"context"
	"errors"
	"fmt"

	"github.com/wyfcoding/loanapplication/internal/loanapplication/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LoanTypeRepository 贷款类型仓储，name 即 code
type LoanTypeRepository struct {
	db *gorm.DB
}

func NewLoanTypeRepository(db *gorm.DB) *LoanTypeRepository {
	return &LoanTypeRepository{db: db}
}

func (r *LoanTypeRepository) ExistsByName(ctx context.Context, code string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&LoanTypeModel{}).Where("code = ?", code).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check loan type %s: %w", code, err)
	}
	return count > 0, nil
}

func (r *LoanTypeRepository) FindByName(ctx context.Context, code string) (*domain.LoanType, error) {
	var m LoanTypeModel
	err := r.db.WithContext(ctx).Where("code = ?", code).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find loan type %s: %w", code, err)
	}
	lt := m.toDomain()
	return &lt, nil
}

// StateRepository 申请状态参考数据仓储
type StateRepository struct {
	db *gorm.DB
}

func NewStateRepository(db *gorm.DB) *StateRepository {
	return &StateRepository{db: db}
}

func (r *StateRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&LoanStateModel{}).Where("name = ?", name).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check state %s: %w", name, err)
	}
	return count > 0, nil
}

// AutoMigrate 建表
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&LoanApplicationModel{}, &LoanTypeModel{}, &LoanStateModel{})
}

// SeedStates 写入内置状态，已存在时跳过
func SeedStates(ctx context.Context, db *gorm.DB) error {
	states := []LoanStateModel{
		{Name: string(domain.StatusPendingReview), Description: "Pending review"},
		{Name: string(domain.StatusApproved), Description: "Approved"},
		{Name: string(domain.StatusRejected), Description: "Rejected"},
	}
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}).
		Create(&states).Error
}
