package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"clinicsched/pkg/kafka"
	"clinicsched/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingProducer struct {
	msgs    []kafka.Message
	ctxErrs []error
	err     error
}

func (r *recordingProducer) Publish(ctx context.Context, msg kafka.Message) error {
	r.msgs = append(r.msgs, msg)
	r.ctxErrs = append(r.ctxErrs, ctx.Err())
	return r.err
}

func (r *recordingProducer) Close() error { return nil }

func TestKafkaPublisher_Publish(t *testing.T) {
	prod := &recordingProducer{}
	pub := NewKafkaPublisher(prod, time.Second, logger.Discard())

	evt := New(AppointmentReserved, "tenant-1", map[string]string{"id": "a1"})
	pub.Publish(context.Background(), evt)

	require.Len(t, prod.msgs, 1)
	msg := prod.msgs[0]
	assert.Equal(t, "tenant-1", msg.Key)
	assert.Equal(t, evt.ID, msg.GetEventID())
	assert.Equal(t, AppointmentReserved, msg.GetEventType())

	var decoded Event
	require.NoError(t, msg.DecodeValue(&decoded))
	assert.Equal(t, evt.ID, decoded.ID)
	assert.Equal(t, "tenant-1", decoded.TenantID)
}

func TestKafkaPublisher_SurvivesCancelledRequest(t *testing.T) {
	prod := &recordingProducer{}
	pub := NewKafkaPublisher(prod, time.Second, logger.Discard())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	pub.Publish(ctx, New(BlockedTimeCreated, "tenant-1", nil))

	require.Len(t, prod.ctxErrs, 1)
	assert.NoError(t, prod.ctxErrs[0])
}

func TestKafkaPublisher_ErrorsAreSwallowed(t *testing.T) {
	prod := &recordingProducer{err: errors.New("broker down")}
	pub := NewKafkaPublisher(prod, time.Second, logger.Discard())

	assert.NotPanics(t, func() {
		pub.Publish(context.Background(), New(AppointmentRescheduled, "tenant-1", nil))
	})
	assert.Len(t, prod.msgs, 1)
}

func TestNoopPublisher(t *testing.T) {
	var p Publisher = NoopPublisher{}
	p.Publish(context.Background(), New(AppointmentReserved, "t", nil))
	assert.NoError(t, p.Close())
}
