package kafka

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	mu      sync.Mutex
	written []kafka.Message
	err     error
	closed  bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.written = append(w.written, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func header(m kafka.Message, key string) string {
	for _, h := range m.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func buildMessage(t *testing.T) Message {
	t.Helper()
	msg, err := NewMessage().
		WithKey("tenant-1").
		WithEventType("appointment.reserved").
		WithValue(map[string]string{"id": "a1"}).
		Build()
	require.NoError(t, err)
	return msg
}

func TestPublish(t *testing.T) {
	w := &fakeWriter{}
	p := NewProducerWithWriters(w, nil, "appointments", "")

	require.NoError(t, p.Publish(context.Background(), buildMessage(t)))
	require.Len(t, w.written, 1)
	assert.Equal(t, "tenant-1", string(w.written[0].Key))
	assert.Equal(t, "appointment.reserved", header(w.written[0], HeaderEventType))
	assert.NotEmpty(t, header(w.written[0], HeaderEventID))
}

func TestPublish_RejectsInvalidMessages(t *testing.T) {
	p := NewProducerWithWriters(&fakeWriter{}, nil, "appointments", "")

	assert.ErrorIs(t, p.Publish(context.Background(), Message{Value: []byte("{}")}), ErrEmptyKey)
	assert.ErrorIs(t, p.Publish(context.Background(), Message{Key: "k"}), ErrEmptyValue)
}

func TestPublish_FailureGoesToDLQ(t *testing.T) {
	w := &fakeWriter{err: errors.New("connection refused")}
	dlq := &fakeWriter{}
	p := NewProducerWithWriters(w, dlq, "appointments", "appointments.dlq")

	msg := buildMessage(t)
	err := p.Publish(context.Background(), msg)
	require.Error(t, err)
	assert.Equal(t, ErrorTypeTransient, ClassifyError(err))

	require.Len(t, dlq.written, 1)
	assert.Equal(t, "appointments", header(dlq.written[0], HeaderOriginalTopic))
	assert.Equal(t, "connection refused", header(dlq.written[0], HeaderDLQError))
	assert.NotContains(t, msg.Headers, HeaderDLQError, "caller headers must not be mutated")
}

func TestPublish_MiddlewareOrder(t *testing.T) {
	p := NewProducerWithWriters(&fakeWriter{}, nil, "appointments", "")

	var calls []string
	for _, name := range []string{"first", "second"} {
		name := name
		p.Use(func(ctx context.Context, msg Message, next func(context.Context, Message) error) error {
			calls = append(calls, name)
			assert.Equal(t, "appointments", msg.Topic)
			return next(ctx, msg)
		})
	}

	require.NoError(t, p.Publish(context.Background(), buildMessage(t)))
	assert.Equal(t, []string{"first", "second"}, calls)
}

func TestClose(t *testing.T) {
	w, dlq := &fakeWriter{}, &fakeWriter{}
	p := NewProducerWithWriters(w, dlq, "appointments", "appointments.dlq")

	require.NoError(t, p.Close())
	require.NoError(t, p.Close())
	assert.True(t, w.closed)
	assert.True(t, dlq.closed)
	assert.ErrorIs(t, p.Publish(context.Background(), buildMessage(t)), ErrProducerClosed)
}

func TestBuild_EncodingError(t *testing.T) {
	_, err := NewMessage().WithKey("k").WithValue(make(chan int)).Build()
	assert.ErrorIs(t, err, ErrInvalidMessage)
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		err  error
		want ErrorType
	}{
		{nil, ErrorTypeUnknown},
		{errors.New("dial tcp: i/o timeout"), ErrorTypeTransient},
		{errors.New("Connection Reset by peer"), ErrorTypeTransient},
		{errors.New("unknown topic or partition"), ErrorTypePermanent},
		{ErrEmptyKey, ErrorTypePermanent},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClassifyError(tt.err))
	}
}
