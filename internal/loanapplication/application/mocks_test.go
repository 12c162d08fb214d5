package application

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/wyfcoding/loanapplication/internal/loanapplication/domain"
)

type mockAppRepo struct{ mock.Mock }

func (m *mockAppRepo) Save(ctx context.Context, app domain.LoanApplication) (domain.LoanApplication, error) {
	args := m.Called(ctx, app)
	if fn, ok := args.Get(0).(func(domain.LoanApplication) domain.LoanApplication); ok {
		return fn(app), args.Error(1)
	}
	return args.Get(0).(domain.LoanApplication), args.Error(1)
}

func (m *mockAppRepo) ExistsByEmailAndStatus(ctx context.Context, email string, status domain.Status) (bool, error) {
	args := m.Called(ctx, email, status)
	return args.Bool(0), args.Error(1)
}

func (m *mockAppRepo) FindByStatuses(ctx context.Context, states []string, page, size int) ([]domain.LoanApplication, error) {
	args := m.Called(ctx, states, page, size)
	items, _ := args.Get(0).([]domain.LoanApplication)
	return items, args.Error(1)
}

func (m *mockAppRepo) CountByStatuses(ctx context.Context, states []string) (int64, error) {
	args := m.Called(ctx, states)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockAppRepo) FindByEmailAndID(ctx context.Context, email string, id int64) (*domain.LoanApplication, error) {
	args := m.Called(ctx, email, id)
	app, _ := args.Get(0).(*domain.LoanApplication)
	return app, args.Error(1)
}

func (m *mockAppRepo) FindByUserIDAndStatus(ctx context.Context, userID int64, status domain.Status) ([]domain.LoanApplication, error) {
	args := m.Called(ctx, userID, status)
	items, _ := args.Get(0).([]domain.LoanApplication)
	return items, args.Error(1)
}

type mockTypeRepo struct{ mock.Mock }

func (m *mockTypeRepo) ExistsByName(ctx context.Context, code string) (bool, error) {
	args := m.Called(ctx, code)
	return args.Bool(0), args.Error(1)
}

func (m *mockTypeRepo) FindByName(ctx context.Context, code string) (*domain.LoanType, error) {
	args := m.Called(ctx, code)
	lt, _ := args.Get(0).(*domain.LoanType)
	return lt, args.Error(1)
}

type mockStateRepo struct{ mock.Mock }

func (m *mockStateRepo) ExistsByName(ctx context.Context, name string) (bool, error) {
	args := m.Called(ctx, name)
	return args.Bool(0), args.Error(1)
}

type mockUsers struct{ mock.Mock }

func (m *mockUsers) FindByEmail(ctx context.Context, email string) (domain.UserProfile, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(domain.UserProfile), args.Error(1)
}

func (m *mockUsers) FindByIDs(ctx context.Context, ids []int64) ([]domain.UserProfile, error) {
	args := m.Called(ctx, ids)
	profiles, _ := args.Get(0).([]domain.UserProfile)
	return profiles, args.Error(1)
}

type mockSender struct{ mock.Mock }

func (m *mockSender) SendCapacityRequest(ctx context.Context, req domain.CapacityRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func (m *mockSender) SendStatusChange(ctx context.Context, msg domain.StatusChangeMessage) (string, error) {
	args := m.Called(ctx, msg)
	return args.String(0), args.Error(1)
}

type fixedClock struct{ at time.Time }

func (c fixedClock) Now() time.Time { return c.at }

type countingRecorder struct {
	created []string
	changed []string
}

func (r *countingRecorder) ApplicationCreated(loanType string) { r.created = append(r.created, loanType) }
func (r *countingRecorder) StatusChanged(status string)        { r.changed = append(r.changed, status) }

var bogota = time.FixedZone("America/Bogota", -5*60*60)

var testNow = time.Date(2025, 6, 15, 9, 30, 0, 0, bogota)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
