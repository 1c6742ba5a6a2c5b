package dispatcher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/talx-hub/coinledger/internal/model"
	"github.com/talx-hub/coinledger/internal/model/notification"
)

type Inbox interface {
	Create(ctx context.Context, n notification.Notification) (notification.Notification, error)
}

// StoreSink puts notifications into the customer's inbox.
type StoreSink struct {
	inbox Inbox
}

func NewStoreSink(inbox Inbox) *StoreSink {
	return &StoreSink{inbox: inbox}
}

func (s *StoreSink) Name() string {
	return "store"
}

func (s *StoreSink) Deliver(ctx context.Context, n notification.Notification) error {
	if _, err := s.inbox.Create(ctx, n); err != nil {
		return fmt.Errorf("failed to store notification: %w", err)
	}
	return nil
}

// WebhookSink POSTs every notification as JSON. Any 2xx status is a success.
type WebhookSink struct {
	client *http.Client
	log    *slog.Logger
	url    string
}

func NewWebhookSink(url string, log *slog.Logger) *WebhookSink {
	return &WebhookSink{
		client: &http.Client{},
		log:    log,
		url:    url,
	}
}

func (s *WebhookSink) Name() string {
	return "webhook"
}

func (s *WebhookSink) Deliver(ctx context.Context, n notification.Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("failed to encode notification: %w", err)
	}

	request, err := http.NewRequestWithContext(
		ctx, http.MethodPost, s.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create the request: %w", err)
	}
	request.Header.Set(model.HeaderContentType, "application/json")

	resp, err := s.client.Do(request)
	if err != nil {
		return fmt.Errorf("failed to send webhook: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			s.log.LogAttrs(ctx, slog.LevelError,
				"failed to close the response body",
				slog.Any(model.KeyLoggerError, closeErr))
		}
	}()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		const maxBody = 512
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxBody))
		return fmt.Errorf("unexpected webhook status: %d\nBody: %s",
			resp.StatusCode, string(body))
	}
	return nil
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaSink publishes notifications keyed by customer id, so one customer's
// notifications stay ordered within a partition.
type KafkaSink struct {
	writer messageWriter
}

func NewKafkaSink(brokers []string, topic string, log *slog.Logger) *KafkaSink {
	const (
		maxAttempts  = 3
		batchTimeout = 10 * time.Millisecond
		ioTimeout    = 10 * time.Second
	)
	return &KafkaSink{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
			MaxAttempts:  maxAttempts,
			BatchTimeout: batchTimeout,
			ReadTimeout:  ioTimeout,
			WriteTimeout: ioTimeout,
			ErrorLogger: kafka.LoggerFunc(func(msg string, args ...any) {
				log.LogAttrs(context.Background(), slog.LevelError,
					fmt.Sprintf(msg, args...),
					slog.String("sink", "kafka"))
			}),
		},
	}
}

func (s *KafkaSink) Name() string {
	return "kafka"
}

func (s *KafkaSink) Deliver(ctx context.Context, n notification.Notification) error {
	value, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("failed to encode notification: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(n.CustomerID),
		Value: value,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(n.Type)},
		},
	}
	if err = s.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish notification: %w", err)
	}
	return nil
}

func (s *KafkaSink) Close() error {
	if err := s.writer.Close(); err != nil {
		return fmt.Errorf("failed to close kafka writer: %w", err)
	}
	return nil
}
