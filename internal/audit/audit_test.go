package audit

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/R3E-Network/solana_layer/internal/logging"
)

type recordingSink struct {
	calls chan Event
	err   error
}

func (s *recordingSink) Write(_ context.Context, event Event) error {
	s.calls <- event
	return s.err
}

// blockingSink holds the worker until release is closed.
type blockingSink struct {
	release chan struct{}
}

func (s *blockingSink) Write(ctx context.Context, _ Event) error {
	<-s.release
	return nil
}

func TestLogger_WritesAsync(t *testing.T) {
	sink := &recordingSink{calls: make(chan Event, 1)}
	logger := NewLogger(sink, 10, 200*time.Millisecond)
	logger.Start()

	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	if ok := logger.Log(Event{Timestamp: ts, Operation: OpSignMessage, PublicKey: "pk", Result: ResultOK}); !ok {
		t.Fatal("expected enqueue to succeed")
	}

	select {
	case got := <-sink.calls:
		if got.Operation != OpSignMessage || got.PublicKey != "pk" || !got.Timestamp.Equal(ts) {
			t.Fatalf("unexpected audit event: %+v", got)
		}
	case <-time.After(1 * time.Second):
		t.Fatal("timed out waiting for audit write")
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := logger.Stop(stopCtx); err != nil {
		t.Fatalf("Stop: %v", err)
	}
}

func TestLogger_FillsTimestamp(t *testing.T) {
	sink := &recordingSink{calls: make(chan Event, 1)}
	logger := NewLogger(sink, 1, time.Second)
	logger.Start()
	defer logger.Stop(context.Background())

	require.True(t, logger.Log(Event{Operation: OpGenerateKeypair, Result: ResultOK}))
	got := <-sink.calls
	assert.False(t, got.Timestamp.IsZero())
}

func TestNewLogger_DefaultsAndNilSafety(t *testing.T) {
	logger := NewLogger(nil, -1, -1)
	if cap(logger.queue) != DefaultBuffer {
		t.Fatalf("expected default buffer %d, got %d", DefaultBuffer, cap(logger.queue))
	}
	if logger.timeout != DefaultTimeout {
		t.Fatalf("expected default timeout %s, got %s", DefaultTimeout, logger.timeout)
	}

	var nilLogger *Logger
	nilLogger.Start()
	assert.False(t, nilLogger.Log(Event{}))
	assert.NoError(t, nilLogger.Stop(context.Background()))
	assert.Zero(t, nilLogger.Dropped())
	assert.Zero(t, nilLogger.Failed())
}

func TestLogger_DropsWhenFull(t *testing.T) {
	sink := &blockingSink{release: make(chan struct{})}
	logger := NewLogger(sink, 1, time.Second)

	// Not started: the queue holds one event and the next is dropped.
	require.True(t, logger.Log(Event{Operation: OpSendSol}))
	assert.False(t, logger.Log(Event{Operation: OpSendSol}))
	assert.Equal(t, uint64(1), logger.Dropped())

	logger.Start()
	close(sink.release)
	require.NoError(t, logger.Stop(context.Background()))
	assert.False(t, logger.Log(Event{Operation: OpSendSol}), "stopped logger must reject events")
}

func TestLogger_ConcurrentLogDuringStop(t *testing.T) {
	for round := 0; round < 50; round++ {
		logger := NewLogger(nil, 8, time.Second)
		logger.Start()

		var wg sync.WaitGroup
		start := make(chan struct{})
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				<-start
				assert.NotPanics(t, func() {
					for j := 0; j < 100; j++ {
						logger.Log(Event{Operation: OpSignMessage})
					}
				})
			}()
		}

		close(start)
		require.NoError(t, logger.Stop(context.Background()))
		wg.Wait()
		assert.False(t, logger.Log(Event{Operation: OpSignMessage}))
	}
}

func TestLogger_CountsSinkFailures(t *testing.T) {
	sink := &recordingSink{calls: make(chan Event, 2), err: errors.New("down")}
	logger := NewLogger(sink, 2, time.Second)
	logger.Start()

	logger.Log(Event{Operation: OpMintToken})
	logger.Log(Event{Operation: OpMintToken})
	require.NoError(t, logger.Stop(context.Background()))

	assert.Equal(t, uint64(2), logger.Failed())
}

func TestLogger_StopTimeout(t *testing.T) {
	sink := &blockingSink{release: make(chan struct{})}
	defer close(sink.release)
	logger := NewLogger(sink, 1, time.Second)
	logger.Start()
	logger.Log(Event{Operation: OpVerifyMessage})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := logger.Stop(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestLogSink_Write(t *testing.T) {
	var buf bytes.Buffer
	l := logging.New("test", "info", "json")
	l.SetOutput(&buf)

	err := NewLogSink(l).Write(context.Background(), Event{
		Timestamp: time.Now(),
		Operation: OpSignMessage,
		PublicKey: "pk",
		Result:    ResultInvalid,
		ErrorCode: "INVALID_KEY_LENGTH",
		TraceID:   "trace-1",
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, `"operation":"message.sign"`)
	assert.Contains(t, out, `"error_code":"INVALID_KEY_LENGTH"`)
	assert.Contains(t, out, `"trace_id":"trace-1"`)
}

type fakeStream struct {
	mu   sync.Mutex
	args []*redis.XAddArgs
	err  error
}

func (f *fakeStream) XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.args = append(f.args, a)
	return redis.NewStringResult("1-0", f.err)
}

func (f *fakeStream) Ping(ctx context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", f.err)
}

func (f *fakeStream) Close() error { return nil }

func TestRedisSink_Write(t *testing.T) {
	stream := &fakeStream{}
	sink := newRedisSink(stream, "audit", 0)

	require.NoError(t, sink.Ping(context.Background()))
	require.NoError(t, sink.Write(context.Background(), Event{
		Timestamp: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		Operation: OpSendToken,
		PublicKey: "owner",
		Result:    ResultOK,
	}))

	require.Len(t, stream.args, 1)
	args := stream.args[0]
	assert.Equal(t, "audit", args.Stream)
	assert.Equal(t, int64(DefaultStreamMaxLen), args.MaxLen)
	assert.True(t, args.Approx)

	values := args.Values.(map[string]interface{})
	assert.Equal(t, "send.token", values["operation"])
	assert.Equal(t, "owner", values["public_key"])
	assert.Equal(t, "2024-01-02T03:04:05Z", values["timestamp"])
	assert.NotContains(t, values, "secret")
}

func TestRedisSink_Errors(t *testing.T) {
	stream := &fakeStream{err: errors.New("connection refused")}
	sink := newRedisSink(stream, "audit", 10)

	assert.ErrorContains(t, sink.Ping(context.Background()), "connection refused")
	assert.ErrorContains(t, sink.Write(context.Background(), Event{}), "audit xadd audit")

	_, err := NewRedisSink("://bad", "audit", 0)
	assert.Error(t, err)
}
