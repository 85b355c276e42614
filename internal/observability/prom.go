package observability

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "webtwist"

var (
	httpBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10}
	dbBuckets   = []float64{0.005, 0.01, 0.02, 0.05, 0.1, 0.2, 0.35, 0.5, 1, 2, 5}
	jobBuckets  = []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60}
)

// Prom holds every collector the API and the worker export.
type Prom struct {
	RequestsTotal    *prometheus.CounterVec
	RequestsDuration *prometheus.HistogramVec
	InFlight         *prometheus.GaugeVec

	AuthFailuresTotal *prometheus.CounterVec

	CacheLookupsTotal *prometheus.CounterVec
	ContactsTotal     *prometheus.CounterVec

	DbQueryDuration *prometheus.HistogramVec
	DbErrorsTotal   *prometheus.CounterVec

	JobDuration  *prometheus.HistogramVec
	JobResults   *prometheus.CounterVec
	JobsInFlight prometheus.Gauge
}

func NewProm(reg prometheus.Registerer) *Prom {
	p := &Prom{
		RequestsTotal:    counterVec("", "http_requests_total", "Total HTTP requests processed.", "method", "route", "status"),
		RequestsDuration: histogramVec("", "http_request_duration_seconds", "HTTP request latency distributions.", httpBuckets, "method", "route", "status"),
		InFlight: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_in_flight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		}, []string{"method", "route"}),

		AuthFailuresTotal: counterVec("auth", "failures_total", "Rejected authentication and authorization attempts by error code.", "code"),

		CacheLookupsTotal: counterVec("blog", "cache_lookups_total", "Public blog response cache lookups by cache and result.", "cache", "result"),
		ContactsTotal:     counterVec("contact", "submissions_total", "Contact form submissions by outcome.", "outcome"),

		DbQueryDuration: histogramVec("db", "query_duration_seconds", "DB operation latency (logical op, not raw SQL).", dbBuckets, "op", "status"),
		DbErrorsTotal:   counterVec("db", "errors_total", "DB errors by logical op and class.", "op", "class"),

		JobDuration: histogramVec("jobs", "duration_seconds", "Job execution duration by type and result.", jobBuckets, "job_type", "result"),
		JobResults:  counterVec("jobs", "results_total", "Job outcomes by type and result.", "job_type", "result"),
		JobsInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "jobs",
			Name:      "in_flight",
			Help:      "Current number of executing jobs (per process).",
		}),
	}

	reg.MustRegister(
		p.RequestsTotal, p.RequestsDuration, p.InFlight,
		p.AuthFailuresTotal,
		p.CacheLookupsTotal, p.ContactsTotal,
		p.DbQueryDuration, p.DbErrorsTotal,
		p.JobDuration, p.JobResults, p.JobsInFlight,
	)

	return p
}

func counterVec(subsystem, name, help string, labels ...string) *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      name,
		Help:      help,
	}, labels)
}

func histogramVec(subsystem, name, help string, buckets []float64, labels ...string) *prometheus.HistogramVec {
	return prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      name,
		Help:      help,
		Buckets:   buckets,
	}, labels)
}

func (p *Prom) GinHandleMiddleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()

		// FullPath is the route template; 404s collapse into one series
		route := ctx.FullPath()
		if route == "" {
			route = "unmatched"
		}

		method := ctx.Request.Method
		inFlight := p.InFlight.WithLabelValues(method, route)
		inFlight.Inc()
		defer inFlight.Dec()

		ctx.Next()

		status := strconv.Itoa(ctx.Writer.Status())
		p.RequestsTotal.WithLabelValues(method, route, status).Inc()
		p.RequestsDuration.WithLabelValues(method, route, status).Observe(time.Since(start).Seconds())
	}
}

// The Observe helpers are nil-safe so handlers can run without a registry in tests.

func (p *Prom) ObserveAuthFailure(code string) {
	if p == nil {
		return
	}
	p.AuthFailuresTotal.WithLabelValues(code).Inc()
}

func (p *Prom) ObserveCache(cache string, hit bool) {
	if p == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	p.CacheLookupsTotal.WithLabelValues(cache, result).Inc()
}

func (p *Prom) ObserveContact(outcome string) {
	if p == nil {
		return
	}
	p.ContactsTotal.WithLabelValues(outcome).Inc()
}

func (p *Prom) ObserveJob(jobType, result string, d time.Duration) {
	if p == nil {
		return
	}
	p.JobResults.WithLabelValues(jobType, result).Inc()
	p.JobDuration.WithLabelValues(jobType, result).Observe(d.Seconds())
}
