package messaging

import (
	"context"

	"github.com/wyfcoding/loanapplication/internal/loanapplication/domain"
	"github.com/wyfcoding/loanapplication/pkg/logger"
	"github.com/wyfcoding/loanapplication/pkg/mq"
)

// 通知类型，用作指标标签
const (
	KindCapacityRequest = "capacity_request"
	KindStatusChange    = "status_change"
)

// Recorder 通知发送结果指标
type Recorder interface {
	NotificationSent(kind string, err error)
}

// KafkaNotificationSender 通过 Kafka 投递下游通知，消息以邮箱为 key 保证同一客户有序
type KafkaNotificationSender struct {
	publisher         mq.Publisher
	capacityTopic     string
	notificationTopic string
	recorder          Recorder
}

// NewKafkaNotificationSender 创建发送器；recorder 可为空
func NewKafkaNotificationSender(publisher mq.Publisher, capacityTopic, notificationTopic string, recorder Recorder) *KafkaNotificationSender {
	return &KafkaNotificationSender{
		publisher:         publisher,
		capacityTopic:     capacityTopic,
		notificationTopic: notificationTopic,
		recorder:          recorder,
	}
}

func (s *KafkaNotificationSender) SendCapacityRequest(ctx context.Context, req domain.CapacityRequest) (string, error) {
	id, err := s.publish(ctx, KindCapacityRequest, s.capacityTopic, req.Email, req)
	if err == nil {
		logger.Debug(ctx, "capacity request published", "application_id", req.ApplicationID, "message_id", id)
	}
	return id, err
}

func (s *KafkaNotificationSender) SendStatusChange(ctx context.Context, msg domain.StatusChangeMessage) (string, error) {
	id, err := s.publish(ctx, KindStatusChange, s.notificationTopic, msg.Email, msg)
	if err == nil {
		logger.Debug(ctx, "status change published", "status", msg.Status, "message_id", id)
	}
	return id, err
}

func (s *KafkaNotificationSender) publish(ctx context.Context, kind, topic, key string, payload any) (string, error) {
	id, err := s.publisher.Publish(ctx, topic, key, payload)
	if s.recorder != nil {
		s.recorder.NotificationSent(kind, err)
	}
	if err != nil {
		return "", domain.Upstream("failed to send "+kind, err)
	}
	return id, nil
}
