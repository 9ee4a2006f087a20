// Package testutil provides common testing utilities and mock implementations.
package testutil

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"time"

	"github.com/R3E-Network/solana_layer/internal/audit"
	"github.com/R3E-Network/solana_layer/internal/logging"
)

// ErrRandomnessExhausted is returned by FailingReader.
var ErrRandomnessExhausted = errors.New("randomness source exhausted")

// FailingReader is an io.Reader that always fails, for exercising a broken
// randomness source.
type FailingReader struct{}

func (FailingReader) Read([]byte) (int, error) {
	return 0, ErrRandomnessExhausted
}

// AuditRecorder is an audit.Sink that keeps every event in memory and
// signals each arrival on a channel.
type AuditRecorder struct {
	mu     sync.Mutex
	events []audit.Event
	notify chan audit.Event
	err    error
}

// NewAuditRecorder creates a recorder that buffers up to capacity
// notifications. Events beyond that are still recorded.
func NewAuditRecorder(capacity int) *AuditRecorder {
	return &AuditRecorder{notify: make(chan audit.Event, capacity)}
}

// FailWith makes subsequent writes return err after recording.
func (r *AuditRecorder) FailWith(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
}

func (r *AuditRecorder) Write(_ context.Context, event audit.Event) error {
	r.mu.Lock()
	r.events = append(r.events, event)
	err := r.err
	r.mu.Unlock()

	select {
	case r.notify <- event:
	default:
	}
	return err
}

// Next waits up to timeout for the next event.
func (r *AuditRecorder) Next(timeout time.Duration) (audit.Event, bool) {
	select {
	case event := <-r.notify:
		return event, true
	case <-time.After(timeout):
		return audit.Event{}, false
	}
}

// Events returns a copy of everything recorded so far.
func (r *AuditRecorder) Events() []audit.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]audit.Event, len(r.events))
	copy(out, r.events)
	return out
}

// NewLogger returns a JSON logger writing into the returned buffer.
func NewLogger(level string) (*logging.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	logger := logging.New("test", level, "json")
	logger.SetOutput(&buf)
	return logger, &buf
}
