package consumer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/wyfcoding/loanapplication/internal/loanapplication/application"
	"github.com/wyfcoding/loanapplication/internal/loanapplication/domain"
	"github.com/wyfcoding/loanapplication/pkg/mq"
)

type mockUpdater struct {
	mock.Mock
}

func (m *mockUpdater) Update(ctx context.Context, cmd application.UpdateLoanApplicationCommand) (domain.LoanApplication, error) {
	args := m.Called(ctx, cmd)
	return args.Get(0).(domain.LoanApplication), args.Error(1)
}

type resultRecorder struct {
	results []error
}

func (r *resultRecorder) DecisionConsumed(err error) {
	r.results = append(r.results, err)
}

func TestHandle_AppliesNormalizedDecision(t *testing.T) {
	updater := &mockUpdater{}
	rec := &resultRecorder{}
	updater.On("Update", mock.Anything, application.UpdateLoanApplicationCommand{
		ID:           10,
		Email:        "a@x.com",
		Status:       domain.StatusApproved,
		Observations: "capacity ok",
	}).Return(domain.LoanApplication{ID: 10, Status: domain.StatusApproved}, nil)

	h := NewDecisionHandler(updater, rec)
	err := h.Handle(context.Background(), &mq.Message{
		Value:   []byte(`{"applicationId":10,"email":" a@x.com ","newStatus":"approved","observations":"capacity ok","availableCapacity":1200000.5}`),
		Headers: map[string]string{mq.HeaderMessageID: "m-1"},
	})

	require.NoError(t, err)
	updater.AssertExpectations(t)
	require.Len(t, rec.results, 1)
	assert.NoError(t, rec.results[0])
}

func TestHandle_InvalidPayload(t *testing.T) {
	updater := &mockUpdater{}
	rec := &resultRecorder{}

	err := NewDecisionHandler(updater, rec).Handle(context.Background(), &mq.Message{Value: []byte("not-json")})

	require.Error(t, err)
	updater.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	require.Len(t, rec.results, 1)
	assert.Error(t, rec.results[0])
}

func TestHandle_UpdateFailurePropagates(t *testing.T) {
	updater := &mockUpdater{}
	updater.On("Update", mock.Anything, mock.Anything).
		Return(domain.LoanApplication{}, domain.NotFound("loan application 10 not found"))

	err := NewDecisionHandler(updater, nil).Handle(context.Background(), &mq.Message{
		Value: []byte(`{"applicationId":10,"email":"a@x.com","newStatus":"REJECTED"}`),
	})

	require.Error(t, err)
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
	assert.False(t, errors.Is(err, context.Canceled))
}
