package storage

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts and times backend operations per bucket.
type Metrics struct {
	ops      *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics registers the storage collectors with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		ops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lirio",
			Subsystem: "storage",
			Name:      "operations_total",
			Help:      "Bucket loads and saves by outcome.",
		}, []string{"op", "bucket", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "lirio",
			Subsystem: "storage",
			Name:      "operation_duration_seconds",
			Help:      "Latency of bucket loads and saves.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op", "bucket"}),
	}
	if err := reg.Register(m.ops); err != nil {
		return nil, err
	}
	if err := reg.Register(m.duration); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Metrics) observe(op, bucket string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.ops.WithLabelValues(op, bucket, status).Inc()
	m.duration.WithLabelValues(op, bucket).Observe(time.Since(start).Seconds())
}

type instrumented struct {
	next    Backend
	metrics *Metrics
}

// Instrument wraps b so that every Load and Save is recorded in m.
func Instrument(b Backend, m *Metrics) Backend {
	if m == nil {
		return b
	}
	return &instrumented{next: b, metrics: m}
}

func (i *instrumented) Load(ctx context.Context, bucket string) ([]byte, error) {
	start := time.Now()
	payload, err := i.next.Load(ctx, bucket)
	i.metrics.observe("load", bucket, start, err)
	return payload, err
}

func (i *instrumented) Save(ctx context.Context, bucket string, payload []byte) error {
	start := time.Now()
	err := i.next.Save(ctx, bucket, payload)
	i.metrics.observe("save", bucket, start, err)
	return err
}

func (i *instrumented) Close() error { return i.next.Close() }
