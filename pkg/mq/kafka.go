// Package mq 提供基于 kafka-go 的生产者、消费者与死信队列
package mq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/wyfcoding/loanapplication/pkg/logger"
)

// HeaderMessageID 消息唯一标识头
const HeaderMessageID = "message-id"

// Config Kafka 配置
type Config struct {
	Brokers        []string
	GroupID        string
	SessionTimeout int
	MaxAttempts    int
	WriteBackoff   int
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer Kafka 生产者
type Producer struct {
	writer messageWriter
}

// NewProducer 创建 Kafka 生产者
func NewProducer(cfg Config) *Producer {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
		Compression:            kafka.Gzip,
		RequiredAcks:           kafka.RequireAll,
		MaxAttempts:            cfg.MaxAttempts,
		WriteBackoffMin:        time.Duration(cfg.WriteBackoff) * time.Millisecond,
		WriteBackoffMax:        time.Duration(cfg.WriteBackoff*10) * time.Millisecond,
	}

	logger.Info(context.Background(), "kafka producer created", "brokers", cfg.Brokers)
	return &Producer{writer: writer}
}

// Publish 以 JSON 发送单条消息，返回写入头部的消息 ID
func (p *Producer) Publish(ctx context.Context, topic, key string, value any) (string, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return "", fmt.Errorf("failed to marshal message: %w", err)
	}

	id := uuid.NewString()
	msg := kafka.Message{
		Topic:   topic,
		Key:     []byte(key),
		Value:   data,
		Headers: []kafka.Header{{Key: HeaderMessageID, Value: []byte(id)}},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		logger.Error(ctx, "failed to send kafka message", "topic", topic, "key", key, "error", err)
		return "", fmt.Errorf("publish to %s: %w", topic, err)
	}

	logger.Debug(ctx, "kafka message sent", "topic", topic, "key", key, "message_id", id)
	return id, nil
}

// Close 关闭生产者
func (p *Producer) Close() error {
	return p.writer.Close()
}

// Message 消费到的 Kafka 消息
type Message struct {
	Topic     string
	Partition int
	Offset    int64
	Key       string
	Value     []byte
	Headers   map[string]string
	Time      time.Time
}

// UnmarshalPayload 将消息值解析为 JSON
func (m *Message) UnmarshalPayload(dest any) error {
	return json.Unmarshal(m.Value, dest)
}

func fromKafka(msg kafka.Message) *Message {
	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	return &Message{
		Topic:     msg.Topic,
		Partition: msg.Partition,
		Offset:    msg.Offset,
		Key:       string(msg.Key),
		Value:     msg.Value,
		Headers:   headers,
		Time:      msg.Time,
	}
}

// Handler 消息处理函数
type Handler func(ctx context.Context, msg *Message) error

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Consumer Kafka 消费者，处理完成后显式提交偏移量
type Consumer struct {
	reader messageReader
	topic  string
	dlq    *DeadLetterQueue
}

// NewConsumer 创建 Kafka 消费者；dlq 为空时失败消息仅记录日志
func NewConsumer(cfg Config, topic string, dlq *DeadLetterQueue) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        cfg.Brokers,
		Topic:          topic,
		GroupID:        cfg.GroupID,
		SessionTimeout: time.Duration(cfg.SessionTimeout) * time.Second,
		StartOffset:    kafka.FirstOffset,
		MaxBytes:       10e6,
	})

	logger.Info(context.Background(), "kafka consumer created",
		"brokers", cfg.Brokers,
		"topic", topic,
		"group_id", cfg.GroupID,
	)
	return &Consumer{reader: reader, topic: topic, dlq: dlq}
}

// Run 循环拉取消息直到 ctx 取消。处理失败的消息转入死信队列后提交；
// 死信写入失败时不提交并返回错误
func (c *Consumer) Run(ctx context.Context, handle Handler) error {
	for {
		raw, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("fetch from %s: %w", c.topic, err)
		}

		msg := fromKafka(raw)
		if herr := handle(ctx, msg); herr != nil {
			logger.Warn(ctx, "message handling failed",
				"topic", msg.Topic,
				"offset", msg.Offset,
				"error", herr,
			)
			if c.dlq != nil {
				if derr := c.dlq.Send(ctx, msg, "handler_failed", herr); derr != nil {
					return errors.Join(herr, derr)
				}
			}
		}

		if err := c.reader.CommitMessages(ctx, raw); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("commit offset %d on %s: %w", raw.Offset, c.topic, err)
		}
	}
}

// Close 关闭消费者
func (c *Consumer) Close() error {
	return c.reader.Close()
}

// Publisher 消息发布能力
type Publisher interface {
	Publish(ctx context.Context, topic, key string, value any) (string, error)
}

// DeadLetterQueue 死信队列
type DeadLetterQueue struct {
	publisher Publisher
	topic     string
}

// NewDeadLetterQueue 创建死信队列
func NewDeadLetterQueue(publisher Publisher, topic string) *DeadLetterQueue {
	return &DeadLetterQueue{publisher: publisher, topic: topic}
}

// DeadLetter 死信载荷
type DeadLetter struct {
	OriginalTopic    string    `json:"original_topic"`
	OriginalKey      string    `json:"original_key"`
	OriginalValue    string    `json:"original_value"`
	OriginalOffset   int64     `json:"original_offset"`
	FailureReason    string    `json:"failure_reason"`
	FailureError     string    `json:"failure_error"`
	FailureTimestamp time.Time `json:"failure_timestamp"`
}

// Send 发送消息到死信队列
func (dlq *DeadLetterQueue) Send(ctx context.Context, original *Message, reason string, cause error) error {
	letter := DeadLetter{
		OriginalTopic:    original.Topic,
		OriginalKey:      original.Key,
		OriginalValue:    string(original.Value),
		OriginalOffset:   original.Offset,
		FailureReason:    reason,
		FailureTimestamp: time.Now(),
	}
	if cause != nil {
		letter.FailureError = cause.Error()
	}

	_, err := dlq.publisher.Publish(ctx, dlq.topic, original.Key, letter)
	return err
}
