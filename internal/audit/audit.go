// Package audit records gateway operations on a background goroutine so that
// request handlers never wait on the audit sink.
package audit

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

const (
	DefaultBuffer  = 1024
	DefaultTimeout = 5 * time.Second
)

// Operation names an audited gateway operation.
type Operation string

const (
	OpGenerateKeypair Operation = "keypair.generate"
	OpSignMessage     Operation = "message.sign"
	OpVerifyMessage   Operation = "message.verify"
	OpSendSol         Operation = "send.sol"
	OpCreateToken     Operation = "token.create"
	OpMintToken       Operation = "token.mint"
	OpSendToken       Operation = "send.token"
)

// Outcomes recorded in Event.Result.
const (
	ResultOK       = "ok"
	ResultInvalid  = "invalid"
	ResultRejected = "rejected"
)

// Event is one audit record. It carries public identifiers only; secret keys
// and message bodies are never recorded.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Operation Operation `json:"operation"`
	PublicKey string    `json:"public_key,omitempty"`
	Result    string    `json:"result"`
	ErrorCode string    `json:"error_code,omitempty"`
	TraceID   string    `json:"trace_id,omitempty"`
	UserID    string    `json:"user_id,omitempty"`
}

// Sink persists audit events.
type Sink interface {
	Write(ctx context.Context, event Event) error
}

// Logger queues events for an asynchronous Sink.
type Logger struct {
	sink    Sink
	timeout time.Duration

	// mu orders Log's send against Stop's close of queue.
	mu      sync.RWMutex
	queue   chan Event
	once    sync.Once
	stopped bool
	dropped atomic.Uint64
	failed  atomic.Uint64

	wg sync.WaitGroup
}

func NewLogger(sink Sink, buffer int, timeout time.Duration) *Logger {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Logger{
		sink:    sink,
		timeout: timeout,
		queue:   make(chan Event, buffer),
	}
}

func (l *Logger) Start() {
	if l == nil {
		return
	}
	l.once.Do(func() {
		l.wg.Add(1)
		go l.run()
	})
}

// Stop closes the queue and waits for queued events to drain.
func (l *Logger) Stop(ctx context.Context) error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		return nil
	}
	l.stopped = true
	close(l.queue)
	l.mu.Unlock()

	done := make(chan struct{})
	go func() {
		l.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("audit stop: %w", ctx.Err())
	}
}

func (l *Logger) Dropped() uint64 {
	if l == nil {
		return 0
	}
	return l.dropped.Load()
}

// Failed counts events the sink returned an error for.
func (l *Logger) Failed() uint64 {
	if l == nil {
		return 0
	}
	return l.failed.Load()
}

// Log enqueues an audit record. It never blocks; records may be dropped when
// the queue is full, and are always dropped once Stop has been called.
func (l *Logger) Log(event Event) bool {
	if l == nil {
		return false
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.stopped {
		return false
	}

	select {
	case l.queue <- event:
		return true
	default:
		l.dropped.Add(1)
		return false
	}
}

func (l *Logger) run() {
	defer l.wg.Done()

	for event := range l.queue {
		if l.sink == nil {
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), l.timeout)
		if err := l.sink.Write(ctx, event); err != nil {
			l.failed.Add(1)
		}
		cancel()
	}
}
