package session

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/frayfs/fray/internal/fray"
)

// NewMetricsMiddleware returns a middleware exposing request metrics. reg
// may be nil to skip registration.
func NewMetricsMiddleware(reg prometheus.Registerer) Middleware {
	mm := &metricsMiddleware{
		total: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "frayfs_requests_total",
			Help: "Total number of filesystem requests handled, by operation and outcome.",
		}, []string{"op", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "frayfs_request_duration_seconds",
			Help:    "Time spent handling filesystem requests.",
			Buckets: prometheus.DefBuckets,
		}, []string{"op"}),
		inflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "frayfs_requests_inflight",
			Help: "Current number of filesystem requests being handled.",
		}),
	}
	if reg != nil {
		reg.MustRegister(mm.total, mm.duration, mm.inflight)
	}
	return mm
}

type metricsMiddleware struct {
	total    *prometheus.CounterVec
	duration *prometheus.HistogramVec
	inflight prometheus.Gauge
}

func (mm *metricsMiddleware) HandleRequest(ctx context.Context, hdr *fray.RequestHeader, req fray.Request, invoker Invoker) (fray.Response, error) {
	mm.inflight.Inc()
	start := time.Now()

	resp, err := invoker(ctx, hdr, req)

	mm.inflight.Dec()
	mm.duration.WithLabelValues(hdr.Op.String()).Observe(time.Since(start).Seconds())

	outcome := "ok"
	if err != nil {
		outcome = errorForResponse(err).Error()
	}
	mm.total.WithLabelValues(hdr.Op.String(), outcome).Inc()

	return resp, err
}
