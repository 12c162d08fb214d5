package mysql

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/wyfcoding/loanapplication/internal/loanapplication/domain"
)

// LoanApplicationModel 贷款申请表映射
type LoanApplicationModel struct {
	ID                          int64           `gorm:"column:id;primaryKey;autoIncrement"`
	UserID                      *int64          `gorm:"column:user_id;index"`
	Document                    string          `gorm:"column:document;type:varchar(32)"`
	Email                       string          `gorm:"column:email;type:varchar(255);not null;index:idx_email_status"`
	Names                       string          `gorm:"column:names;type:varchar(255)"`
	Amount                      decimal.Decimal `gorm:"column:amount;type:decimal(20,0);not null"`
	LoanTermMonths              int             `gorm:"column:loan_term_months;not null"`
	LoanType                    string          `gorm:"column:loan_type;type:varchar(50);not null"`
	Status                      string          `gorm:"column:status;type:varchar(30);not null;index:idx_email_status;index"`
	BaseSalary                  decimal.Decimal `gorm:"column:base_salary;type:decimal(20,2);default:0"`
	MaxIndebtedness             decimal.Decimal `gorm:"column:max_indebtedness;type:decimal(20,2);default:0"`
	CurrentMonthlyPayment       int64           `gorm:"column:current_monthly_payment;default:0"`
	TotalApprovedMonthlyPayment int64           `gorm:"column:total_approved_monthly_payment;default:0"`
	AvailableIndebtedness       decimal.Decimal `gorm:"column:available_indebtedness;type:decimal(20,2);default:0"`
	InterestRate                decimal.Decimal `gorm:"column:interest_rate;type:decimal(10,6);not null"`
	CreatedAt                   time.Time       `gorm:"column:created_at;not null;index"`
	UpdatedAt                   *time.Time      `gorm:"column:updated_at;autoUpdateTime:false"`
	Observations                string          `gorm:"column:observations;type:text"`
}

func (LoanApplicationModel) TableName() string { return "loan_applications" }

// LoanTypeModel 贷款类型表映射
type LoanTypeModel struct {
	ID                  int64           `gorm:"column:id;primaryKey;autoIncrement"`
	Code                string          `gorm:"column:code;type:varchar(50);uniqueIndex;not null"`
	Name                string          `gorm:"column:name;type:varchar(100)"`
	MinimumAmount       decimal.Decimal `gorm:"column:minimum_amount;type:decimal(20,0);not null"`
	MaximumAmount       decimal.Decimal `gorm:"column:maximum_amount;type:decimal(20,0);not null"`
	InterestRate        decimal.Decimal `gorm:"column:interest_rate;type:decimal(10,6);not null"`
	AutomaticValidation bool            `gorm:"column:automatic_validation;default:false"`
}

func (LoanTypeModel) TableName() string { return "loan_types" }

// LoanStateModel 申请状态参考表
type LoanStateModel struct {
	ID          int64  `gorm:"column:id;primaryKey;autoIncrement"`
	Name        string `gorm:"column:name;type:varchar(30);uniqueIndex;not null"`
	Description string `gorm:"column:description;type:varchar(255)"`
}

func (LoanStateModel) TableName() string { return "loan_states" }

// --- mapping helpers ---

func toLoanApplicationModel(a domain.LoanApplication) LoanApplicationModel {
	m := LoanApplicationModel{
		ID:                          a.ID,
		Document:                    a.Document,
		Email:                       a.Email,
		Names:                       a.Names,
		Amount:                      a.Amount,
		LoanTermMonths:              a.LoanTermMonths,
		LoanType:                    a.LoanType,
		Status:                      string(a.Status),
		BaseSalary:                  a.BaseSalary,
		MaxIndebtedness:             a.MaxIndebtedness,
		CurrentMonthlyPayment:       a.CurrentMonthlyPayment,
		TotalApprovedMonthlyPayment: a.TotalApprovedMonthlyPayment,
		AvailableIndebtedness:       a.AvailableIndebtedness,
		InterestRate:                a.InterestRate,
		CreatedAt:                   a.CreatedAt,
		UpdatedAt:                   a.UpdatedAt,
		Observations:                a.Observations,
	}
	if a.UserID != 0 {
		uid := a.UserID
		m.UserID = &uid
	}
	return m
}

func (m LoanApplicationModel) toDomain() domain.LoanApplication {
	a := domain.LoanApplication{
		ID:                          m.ID,
		Document:                    m.Document,
		Email:                       m.Email,
		Names:                       m.Names,
		Amount:                      m.Amount,
		LoanTermMonths:              m.LoanTermMonths,
		LoanType:                    m.LoanType,
		Status:                      domain.Status(m.Status),
		BaseSalary:                  m.BaseSalary,
		MaxIndebtedness:             m.MaxIndebtedness,
		CurrentMonthlyPayment:       m.CurrentMonthlyPayment,
		TotalApprovedMonthlyPayment: m.TotalApprovedMonthlyPayment,
		AvailableIndebtedness:       m.AvailableIndebtedness,
		InterestRate:                m.InterestRate,
		CreatedAt:                   m.CreatedAt,
		UpdatedAt:                   m.UpdatedAt,
		Observations:                m.Observations,
	}
	if m.UserID != nil {
		a.UserID = *m.UserID
	}
	return a
}

func (m LoanTypeModel) toDomain() domain.LoanType {
	return domain.LoanType{
		Code:                m.Code,
		Name:                m.Name,
		MinimumAmount:       m.MinimumAmount,
		MaximumAmount:       m.MaximumAmount,
		InterestRate:        m.InterestRate,
		AutomaticValidation: m.AutomaticValidation,
	}
}
