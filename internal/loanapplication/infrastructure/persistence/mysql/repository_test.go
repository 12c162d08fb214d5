package mysql

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wyfcoding/loanapplication/internal/loanapplication/domain"
	pkgdb "github.com/wyfcoding/loanapplication/pkg/db"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	dialector := mysql.New(mysql.Config{Conn: sqlDB, SkipInitializeWithVersion: true})
	db, err := pkgdb.Open(context.Background(), dialector, pkgdb.Config{Driver: "mysql"})
	require.NoError(t, err)
	return db.DB, mock
}

var applicationColumns = []string{
	"id", "user_id", "document", "email", "names", "amount", "loan_term_months", "loan_type",
	"status", "base_salary", "max_indebtedness", "current_monthly_payment",
	"total_approved_monthly_payment", "available_indebtedness", "interest_rate",
	"created_at", "updated_at", "observations",
}

var created = time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC)

func applicationRow(rows *sqlmock.Rows, id int64, userID any, status string) *sqlmock.Rows {
	return rows.AddRow(id, userID, "CC-1", "a@x.com", "Ana Ruiz", "21000000", 12, "HIPOTECARIO",
		status, "5000000", "2000000", 1780960, 0, "2000000", "3.25", created, nil, "")
}

func TestExistsByEmailAndStatus(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewLoanApplicationRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT count(*) FROM `loan_applications` WHERE email = ? AND status = ?")).
		WithArgs("a@x.com", "PENDING_REVIEW").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	exists, err := repo.ExistsByEmailAndStatus(context.Background(), "a@x.com", domain.StatusPendingReview)
	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByStatuses_OrdersNewestFirstWithOffset(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewLoanApplicationRepository(db)

	rows := sqlmock.NewRows(applicationColumns)
	applicationRow(rows, 9, int64(123), "APPROVED")
	applicationRow(rows, 8, nil, "PENDING_REVIEW")

	mock.ExpectQuery(regexp.QuoteMeta("FROM `loan_applications` WHERE status IN (?,?) ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?")).
		WithArgs("APPROVED", "PENDING_REVIEW", 5, 10).
		WillReturnRows(rows)

	apps, err := repo.FindByStatuses(context.Background(), []string{"APPROVED", "PENDING_REVIEW"}, 2, 5)
	require.NoError(t, err)
	require.Len(t, apps, 2)

	assert.Equal(t, int64(9), apps[0].ID)
	assert.Equal(t, int64(123), apps[0].UserID)
	assert.Equal(t, domain.StatusApproved, apps[0].Status)
	assert.True(t, decimal.RequireFromString("21000000").Equal(apps[0].Amount))
	assert.Equal(t, "3.25", apps[0].InterestRate.String())
	assert.Equal(t, int64(0), apps[1].UserID)
	assert.Nil(t, apps[1].UpdatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCountByStatuses(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewLoanApplicationRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT count(*) FROM `loan_applications` WHERE status IN (?)")).
		WithArgs("REJECTED").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(17))

	n, err := repo.CountByStatuses(context.Background(), []string{"REJECTED"})
	require.NoError(t, err)
	assert.Equal(t, int64(17), n)
}

func TestFindByEmailAndID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewLoanApplicationRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `loan_applications` WHERE email = ? AND id = ?")).
		WillReturnRows(applicationRow(sqlmock.NewRows(applicationColumns), 10, int64(123), "PENDING_REVIEW"))

	app, err := repo.FindByEmailAndID(context.Background(), "a@x.com", 10)
	require.NoError(t, err)
	require.NotNil(t, app)
	assert.Equal(t, int64(10), app.ID)
	assert.Equal(t, created, app.CreatedAt)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `loan_applications` WHERE email = ? AND id = ?")).
		WillReturnRows(sqlmock.NewRows(applicationColumns))

	missing, err := repo.FindByEmailAndID(context.Background(), "a@x.com", 11)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestFindByUserIDAndStatus(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewLoanApplicationRepository(db)

	rows := sqlmock.NewRows(applicationColumns)
	applicationRow(rows, 3, int64(123), "APPROVED")
	mock.ExpectQuery(regexp.QuoteMeta("WHERE user_id = ? AND status = ?")).
		WithArgs(int64(123), "APPROVED").
		WillReturnRows(rows)

	apps, err := repo.FindByUserIDAndStatus(context.Background(), 123, domain.StatusApproved)
	require.NoError(t, err)
	require.Len(t, apps, 1)
	assert.Equal(t, int64(1780960), apps[0].CurrentMonthlyPayment)
}

func TestSave_InsertAssignsID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewLoanApplicationRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `loan_applications`")).
		WillReturnResult(sqlmock.NewResult(42, 1))
	mock.ExpectCommit()

	saved, err := repo.Save(context.Background(), domain.LoanApplication{
		UserID:         123,
		Email:          "a@x.com",
		Amount:         decimal.NewFromInt(5000000),
		LoanTermMonths: 12,
		LoanType:       "HIPOTECARIO",
		Status:         domain.StatusPendingReview,
		InterestRate:   decimal.RequireFromString("0.019"),
		CreatedAt:      created,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(42), saved.ID)
	assert.Equal(t, int64(123), saved.UserID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoanTypeRepository(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewLoanTypeRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT count(*) FROM `loan_types` WHERE code = ?")).
		WithArgs("LIBRE_INVERSION").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	exists, err := repo.ExistsByName(context.Background(), "LIBRE_INVERSION")
	require.NoError(t, err)
	assert.False(t, exists)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `loan_types` WHERE code = ?")).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "code", "name", "minimum_amount", "maximum_amount", "interest_rate", "automatic_validation",
		}).AddRow(1, "HIPOTECARIO", "Hipotecario", "1000000", "10000000", "0.019", true))

	lt, err := repo.FindByName(context.Background(), "HIPOTECARIO")
	require.NoError(t, err)
	require.NotNil(t, lt)
	assert.Equal(t, "HIPOTECARIO", lt.Code)
	assert.True(t, lt.AutomaticValidation)
	assert.Equal(t, "10000000", lt.MaximumAmount.String())
}

func TestStateRepository(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewStateRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT count(*) FROM `loan_states` WHERE name = ?")).
		WithArgs("APPROVED").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	ok, err := repo.ExistsByName(context.Background(), "APPROVED")
	require.NoError(t, err)
	assert.True(t, ok)
}
