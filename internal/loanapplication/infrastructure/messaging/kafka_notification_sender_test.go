package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wyfcoding/loanapplication/internal/loanapplication/domain"
)

type published struct {
	topic string
	key   string
	body  []byte
}

type fakePublisher struct {
	sent []published
	err  error
}

func (f *fakePublisher) Publish(_ context.Context, topic, key string, value any) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	body, err := json.Marshal(value)
	if err != nil {
		return "", err
	}
	f.sent = append(f.sent, published{topic: topic, key: key, body: body})
	return "msg-1", nil
}

type recorded struct {
	kind string
	ok   bool
}

type fakeRecorder struct {
	calls []recorded
}

func (r *fakeRecorder) NotificationSent(kind string, err error) {
	r.calls = append(r.calls, recorded{kind: kind, ok: err == nil})
}

func TestSendCapacityRequest(t *testing.T) {
	pub := &fakePublisher{}
	rec := &fakeRecorder{}
	sender := NewKafkaNotificationSender(pub, "loan.capacity", "loan.notifications", rec)

	id, err := sender.SendCapacityRequest(context.Background(), domain.CapacityRequest{
		ApplicationID:  10,
		Email:          "a@x.com",
		Amount:         decimal.NewFromInt(5000000),
		LoanTermMonths: 12,
		CustomerID:     "123",
	})
	require.NoError(t, err)
	assert.Equal(t, "msg-1", id)

	require.Len(t, pub.sent, 1)
	assert.Equal(t, "loan.capacity", pub.sent[0].topic)
	assert.Equal(t, "a@x.com", pub.sent[0].key)

	var body map[string]any
	require.NoError(t, json.Unmarshal(pub.sent[0].body, &body))
	assert.Equal(t, "123", body["customerId"])
	assert.Equal(t, float64(10), body["applicationId"])
	assert.Equal(t, []recorded{{kind: KindCapacityRequest, ok: true}}, rec.calls)
}

func TestSendStatusChange_RejectedHasNullLoanFields(t *testing.T) {
	pub := &fakePublisher{}
	sender := NewKafkaNotificationSender(pub, "loan.capacity", "loan.notifications", nil)

	updated := time.Date(2025, 5, 2, 10, 0, 0, 0, time.UTC)
	msg, ok := domain.NewStatusChangeMessage(domain.LoanApplication{
		Email:        "a@x.com",
		Status:       domain.StatusRejected,
		Observations: "low income",
		UpdatedAt:    &updated,
	}, domain.UserProfile{Name: "Ana", LastName: "Ruiz"})
	require.True(t, ok)

	_, err := sender.SendStatusChange(context.Background(), msg)
	require.NoError(t, err)

	require.Len(t, pub.sent, 1)
	assert.Equal(t, "loan.notifications", pub.sent[0].topic)

	var body map[string]any
	require.NoError(t, json.Unmarshal(pub.sent[0].body, &body))
	assert.Equal(t, "RECHAZADO", body["status"])
	assert.Equal(t, "Ana Ruiz", body["fullName"])
	assert.Nil(t, body["amount"])
	assert.Nil(t, body["loanTermMonths"])
	assert.Nil(t, body["annualInterestRate"])
}

func TestSend_FailureIsUpstreamAndRecorded(t *testing.T) {
	pub := &fakePublisher{err: errors.New("broker down")}
	rec := &fakeRecorder{}
	sender := NewKafkaNotificationSender(pub, "c", "n", rec)

	_, err := sender.SendStatusChange(context.Background(), domain.StatusChangeMessage{Email: "a@x.com"})
	require.Error(t, err)
	assert.Equal(t, domain.KindUpstream, domain.KindOf(err))
	assert.Equal(t, []recorded{{kind: KindStatusChange, ok: false}}, rec.calls)
}
