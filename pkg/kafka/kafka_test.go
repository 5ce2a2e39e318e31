package kafka

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"restobook/pkg/logger"

	kafkago "github.com/segmentio/kafka-go"
)

type fakeWriter struct {
	mu      sync.Mutex
	written []kafkago.Message
	err     error
	closed  bool
}

func (f *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafkago.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.written = append(f.written, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

// fakeReader serves queued messages, then blocks until ctx ends.
type fakeReader struct {
	mu        sync.Mutex
	queue     []kafkago.Message
	committed []int64
	drained   chan struct{}
}

func newFakeReader(msgs ...kafkago.Message) *fakeReader {
	return &fakeReader{queue: msgs, drained: make(chan struct{})}
}

func (f *fakeReader) FetchMessage(ctx context.Context) (kafkago.Message, error) {
	f.mu.Lock()
	if len(f.queue) > 0 {
		m := f.queue[0]
		f.queue = f.queue[1:]
		f.mu.Unlock()
		return m, nil
	}
	f.mu.Unlock()
	<-ctx.Done()
	return kafkago.Message{}, ctx.Err()
}

func (f *fakeReader) CommitMessages(ctx context.Context, msgs ...kafkago.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range msgs {
		f.committed = append(f.committed, m.Offset)
	}
	if len(f.queue) == 0 {
		select {
		case <-f.drained:
		default:
			close(f.drained)
		}
	}
	return nil
}

func (f *fakeReader) Close() error { return nil }

func buildMessage(t *testing.T, key string) Message {
	t.Helper()
	msg, err := NewMessage().
		WithKey(key).
		WithValue(map[string]string{"id": key}).
		WithEventType("reservation.created").
		WithSource("test").
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return msg
}

func TestMessageBuilder(t *testing.T) {
	msg := buildMessage(t, "r1")

	if msg.GetEventID() == "" || msg.Headers[HeaderTimestamp] == "" {
		t.Errorf("Build should set event id and timestamp: %+v", msg.Headers)
	}
	if msg.GetEventType() != "reservation.created" {
		t.Errorf("event type = %s", msg.GetEventType())
	}

	var decoded map[string]string
	if err := msg.DecodeValue(&decoded); err != nil || decoded["id"] != "r1" {
		t.Errorf("DecodeValue = %v, %v", decoded, err)
	}

	if _, err := NewMessage().WithKey("k").WithValue(make(chan int)).Build(); err == nil {
		t.Error("expected an encoding error")
	}
}

func TestRetryCount(t *testing.T) {
	msg := Message{}
	for i := 0; i < 12; i++ {
		msg.IncrementRetryCount()
	}
	if got := msg.GetRetryCount(); got != 12 {
		t.Errorf("GetRetryCount() = %d, want 12", got)
	}
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorType
	}{
		{"nil", nil, ErrorTypeUnknown},
		{"explicit transient", NewTransientError("calendar", errors.New("x")), ErrorTypeTransient},
		{"explicit permanent wrapped", fmt.Errorf("handle: %w", NewPermanentError("decode", errors.New("x"))), ErrorTypePermanent},
		{"deadline", fmt.Errorf("apply: %w", context.DeadlineExceeded), ErrorTypeTransient},
		{"connection refused", errors.New("dial tcp: Connection Refused"), ErrorTypeTransient},
		{"provider 503", errors.New("calendar create failed with status 503: backend"), ErrorTypeTransient},
		{"provider 403", errors.New("calendar create failed with status 403: forbidden"), ErrorTypePermanent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyError(tt.err); got != tt.want {
				t.Errorf("ClassifyError() = %v, want %v", got, tt.want)
			}
		})
	}

	if ShouldRetry(errors.New("timeout"), 3, 3) {
		t.Error("ShouldRetry must stop at max retries")
	}
}

func TestProducer_Publish(t *testing.T) {
	writer, dlq := &fakeWriter{}, &fakeWriter{}
	p := newProducer(writer, dlq, "reservation-events", logger.NewNop())

	var seen []string
	p.Use(func(ctx context.Context, msg Message, next MessageHandler) error {
		seen = append(seen, msg.Topic)
		return next(ctx, msg)
	})

	if err := p.Publish(context.Background(), buildMessage(t, "r1")); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if len(writer.written) != 1 || string(writer.written[0].Key) != "r1" {
		t.Errorf("written = %+v", writer.written)
	}
	if len(seen) != 1 || seen[0] != "reservation-events" {
		t.Errorf("middleware saw %v", seen)
	}

	if err := p.Publish(context.Background(), Message{Value: []byte("{}")}); !errors.Is(err, ErrEmptyKey) {
		t.Errorf("expected ErrEmptyKey, got %v", err)
	}
	if err := p.Publish(context.Background(), Message{Key: "k"}); !errors.Is(err, ErrEmptyValue) {
		t.Errorf("expected ErrEmptyValue, got %v", err)
	}

	if err := p.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !writer.closed || !dlq.closed {
		t.Error("Close should close both writers")
	}
	if err := p.Publish(context.Background(), buildMessage(t, "r2")); !errors.Is(err, ErrProducerClosed) {
		t.Errorf("expected ErrProducerClosed, got %v", err)
	}
}

func TestProducer_FailureGoesToDLQ(t *testing.T) {
	writer := &fakeWriter{err: errors.New("broker down")}
	dlq := &fakeWriter{}
	p := newProducer(writer, dlq, "reservation-events", logger.NewNop())

	msg := buildMessage(t, "r1")
	if err := p.Publish(context.Background(), msg); err == nil {
		t.Fatal("expected the write error")
	}
	if len(dlq.written) != 1 {
		t.Fatalf("dlq written = %d", len(dlq.written))
	}

	headers := fromKafka(dlq.written[0]).Headers
	if headers[HeaderOriginalTopic] != "reservation-events" || headers[HeaderDLQError] != "broker down" {
		t.Errorf("dlq headers = %+v", headers)
	}
	if _, leaked := msg.Headers[HeaderDLQError]; leaked {
		t.Error("caller's message headers must not be mutated")
	}
}

func TestConsumer_RetriesThenCommits(t *testing.T) {
	reader := newFakeReader(
		kafkago.Message{Offset: 1, Key: []byte("r1"), Value: []byte(`{}`)},
		kafkago.Message{Offset: 2, Key: []byte("r2"), Value: []byte(`{}`)},
	)
	dlq := &fakeWriter{}

	var mu sync.Mutex
	attempts := map[string]int{}
	handler := func(ctx context.Context, msg Message) error {
		mu.Lock()
		defer mu.Unlock()
		attempts[msg.Key]++
		switch msg.Key {
		case "r1":
			if attempts["r1"] < 3 {
				return NewTransientError("calendar", errors.New("503"))
			}
			return nil
		default:
			return NewPermanentError("decode", errors.New("bad payload"))
		}
	}

	c := newConsumer(reader, dlq, "reservation-events", "calendar-sync", 3, handler, logger.NewNop())
	c.backoff = time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Start(ctx) }()

	select {
	case <-reader.drained:
	case <-time.After(2 * time.Second):
		t.Fatal("consumer did not drain the queue")
	}
	cancel()
	<-done

	if err := c.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if attempts["r1"] != 3 {
		t.Errorf("r1 attempts = %d, want 3", attempts["r1"])
	}
	if attempts["r2"] != 1 {
		t.Errorf("permanent failure should not be retried, attempts = %d", attempts["r2"])
	}
	if len(reader.committed) != 2 {
		t.Errorf("committed offsets = %v, want both", reader.committed)
	}
	if len(dlq.written) != 1 || string(dlq.written[0].Key) != "r2" {
		t.Errorf("dlq = %+v", dlq.written)
	}
}
