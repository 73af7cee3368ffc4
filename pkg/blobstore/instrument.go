package blobstore

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/gezibash/arc-offload/pkg/bloburi"
)

const tracerName = "github.com/gezibash/arc-offload/pkg/blobstore"

// Instrument wraps store so every Put and Get records an OTel span, a
// duration histogram sample and a transferred-bytes counter. The metrics
// register on reg.
func Instrument(store Store, reg prometheus.Registerer) Store {
	is := &instrumentedStore{
		next: store,
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "offload_store_operation_duration_seconds",
			Help:    "Duration of blob store operations in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation", "status"}),
		bytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "offload_store_bytes_total",
			Help: "Payload bytes moved through the blob store",
		}, []string{"operation"}),
	}
	reg.MustRegister(is.duration, is.bytes)
	return is
}

type instrumentedStore struct {
	next     Store
	duration *prometheus.HistogramVec
	bytes    *prometheus.CounterVec
}

func (s *instrumentedStore) Put(ctx context.Context, bucket, key string, data []byte) (bloburi.URI, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "blobstore.put",
		trace.WithAttributes(
			attribute.String("blob.bucket", bucket),
			attribute.String("blob.key", key),
			attribute.Int("blob.size_bytes", len(data)),
		))
	start := time.Now()

	u, err := s.next.Put(ctx, bucket, key, data)

	s.finish(span, start, "put", err)
	if err == nil {
		s.bytes.WithLabelValues("put").Add(float64(len(data)))
	}
	return u, err
}

func (s *instrumentedStore) Get(ctx context.Context, u bloburi.URI) ([]byte, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "blobstore.get",
		trace.WithAttributes(attribute.String("blob.uri", u.String())))
	start := time.Now()

	data, err := s.next.Get(ctx, u)

	s.finish(span, start, "get", err)
	if err == nil {
		s.bytes.WithLabelValues("get").Add(float64(len(data)))
	}
	return data, err
}

func (s *instrumentedStore) Close() error { return s.next.Close() }

func (s *instrumentedStore) finish(span trace.Span, start time.Time, op string, err error) {
	status := "success"
	if err != nil {
		status = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
	s.duration.WithLabelValues(op, status).Observe(time.Since(start).Seconds())
}
