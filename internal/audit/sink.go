package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	"github.com/R3E-Network/solana_layer/internal/logging"
)

// LogSink writes events as structured log lines.
type LogSink struct {
	logger *logging.Logger
}

func NewLogSink(logger *logging.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Write(ctx context.Context, event Event) error {
	fields := logrus.Fields{
		"audit":     true,
		"operation": string(event.Operation),
		"result":    event.Result,
		"timestamp": event.Timestamp.Format(time.RFC3339Nano),
	}
	if event.PublicKey != "" {
		fields["public_key"] = event.PublicKey
	}
	if event.ErrorCode != "" {
		fields["error_code"] = event.ErrorCode
	}
	if event.TraceID != "" {
		fields["trace_id"] = event.TraceID
	}
	if event.UserID != "" {
		fields["user_id"] = event.UserID
	}
	s.logger.WithContext(ctx).WithFields(fields).Info("Audit event")
	return nil
}

// DefaultStreamMaxLen caps the audit stream; trimming is approximate.
const DefaultStreamMaxLen = 100000

type streamClient interface {
	XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd
	Ping(ctx context.Context) *redis.StatusCmd
	Close() error
}

// RedisSink appends events to a Redis stream.
type RedisSink struct {
	client streamClient
	stream string
	maxLen int64
}

// NewRedisSink connects to the Redis server at url (redis:// or rediss://).
func NewRedisSink(url, stream string, maxLen int64) (*RedisSink, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse audit redis url: %w", err)
	}
	return newRedisSink(redis.NewClient(opts), stream, maxLen), nil
}

func newRedisSink(client streamClient, stream string, maxLen int64) *RedisSink {
	if maxLen <= 0 {
		maxLen = DefaultStreamMaxLen
	}
	return &RedisSink{client: client, stream: stream, maxLen: maxLen}
}

func (s *RedisSink) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("audit redis ping: %w", err)
	}
	return nil
}

func (s *RedisSink) Write(ctx context.Context, event Event) error {
	err := s.client.XAdd(ctx, &redis.XAddArgs{
		Stream: s.stream,
		MaxLen: s.maxLen,
		Approx: true,
		Values: map[string]interface{}{
			"timestamp":  event.Timestamp.Format(time.RFC3339Nano),
			"operation":  string(event.Operation),
			"public_key": event.PublicKey,
			"result":     event.Result,
			"error_code": event.ErrorCode,
			"trace_id":   event.TraceID,
			"user_id":    event.UserID,
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("audit xadd %s: %w", s.stream, err)
	}
	return nil
}

func (s *RedisSink) Close() error {
	return s.client.Close()
}
