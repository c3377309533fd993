package observability

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "meet"

var (
	httpBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10}
	dbBuckets   = []float64{0.005, 0.01, 0.02, 0.05, 0.1, 0.2, 0.35, 0.5, 1, 2, 5}
)

// Prom bundles every metric the service exposes. One instance per process,
// registered against the registry the router owns.
type Prom struct {
	RequestsTotal    *prometheus.CounterVec
	RequestsDuration *prometheus.HistogramVec
	InFlight         *prometheus.GaugeVec

	DbQueryDuration *prometheus.HistogramVec
	DbErrorsTotal   *prometheus.CounterVec

	UploadsTotal *prometheus.CounterVec
	UploadBytes  prometheus.Counter
}

func NewProm(reg prometheus.Registerer) *Prom {
	p := &Prom{
		RequestsTotal: prometheus.NewCounterVec(counterOpts("", "http_requests_total",
			"HTTP requests processed."), []string{"method", "route", "status"}),

		RequestsDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   httpBuckets,
		}, []string{"method", "route", "status"}),

		InFlight: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_in_flight_requests",
			Help:      "Requests currently being served.",
		}, []string{"method", "route"}),

		DbQueryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "db",
			Name:      "query_duration_seconds",
			Help:      "Latency per logical store operation.",
			Buckets:   dbBuckets,
		}, []string{"op", "status"}),

		DbErrorsTotal: prometheus.NewCounterVec(counterOpts("db", "errors_total",
			"Store errors by logical op and class."), []string{"op", "class"}),

		// status is ok, rejected or error
		UploadsTotal: prometheus.NewCounterVec(counterOpts("uploads", "total",
			"Image upload outcomes."), []string{"status"}),

		UploadBytes: prometheus.NewCounter(counterOpts("uploads", "bytes_total",
			"Bytes written by accepted uploads.")),
	}

	reg.MustRegister(
		p.RequestsTotal, p.RequestsDuration, p.InFlight,
		p.DbQueryDuration, p.DbErrorsTotal,
		p.UploadsTotal, p.UploadBytes,
	)

	return p
}

func counterOpts(subsystem, name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      name,
		Help:      help,
	}
}

// GinHandleMiddleware records count, latency and in-flight gauge per route
// template. Requests that match no route share one label value so cardinality
// stays bounded.
func (p *Prom) GinHandleMiddleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		route := ctx.FullPath()

		if route == "" {
			route = "unmatched"
		}

		method := ctx.Request.Method

		inFlight := p.InFlight.WithLabelValues(method, route)
		inFlight.Inc()

		start := time.Now()
		ctx.Next()
		elapsed := time.Since(start).Seconds()

		inFlight.Dec()

		status := strconv.Itoa(ctx.Writer.Status())
		p.RequestsTotal.WithLabelValues(method, route, status).Inc()
		p.RequestsDuration.WithLabelValues(method, route, status).Observe(elapsed)
	}
}
