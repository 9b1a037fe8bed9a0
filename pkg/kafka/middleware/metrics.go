package kafka_middleware

import (
	"context"
	"time"

	"clinicsched/pkg/kafka"
	"clinicsched/pkg/metrics"
)

// MetricsProducerMiddleware reports publish outcomes and latency to the
// service's Prometheus registry.
func MetricsProducerMiddleware() kafka.ProducerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next func(ctx context.Context, msg kafka.Message) error) error {
		start := time.Now()
		err := next(ctx, msg)
		metrics.ObservePublish(msg.Topic, time.Since(start).Seconds(), err)
		return err
	}
}
