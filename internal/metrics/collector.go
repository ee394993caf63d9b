package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

var (
	latencyBuckets = []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60}
	sizeBuckets    = prometheus.ExponentialBuckets(100, 10, 8)
)

type httpMetrics struct {
	requests     *prometheus.CounterVec
	duration     *prometheus.HistogramVec
	requestSize  *prometheus.HistogramVec
	responseSize *prometheus.HistogramVec
}

type taskMetrics struct {
	lookups     *prometheus.CounterVec
	invocations *prometheus.CounterVec
	latency     *prometheus.HistogramVec
	shared      *prometheus.CounterVec
}

// Collector Prometheus 指标，同时实现 tutor.Recorder
type Collector struct {
	http  httpMetrics
	task  taskMetrics
	depUp *prometheus.GaugeVec
}

// NewCollectorWithRegisterer 创建全部指标并注册到 reg；同一 reg 上重复注册会 panic
func NewCollectorWithRegisterer(namespace string, reg prometheus.Registerer, logger *zap.Logger) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	f := promauto.With(reg)
	counter := func(name, help string, labels ...string) *prometheus.CounterVec {
		return f.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: name, Help: help}, labels)
	}
	histogram := func(name, help string, buckets []float64, labels ...string) *prometheus.HistogramVec {
		return f.NewHistogramVec(prometheus.HistogramOpts{Namespace: namespace, Name: name, Help: help, Buckets: buckets}, labels)
	}

	c := &Collector{
		http: httpMetrics{
			requests:     counter("http_requests_total", "HTTP requests by route and status class.", "method", "path", "status"),
			duration:     histogram("http_request_duration_seconds", "HTTP request latency.", prometheus.DefBuckets, "method", "path"),
			requestSize:  histogram("http_request_size_bytes", "HTTP request body size.", sizeBuckets, "method", "path"),
			responseSize: histogram("http_response_size_bytes", "HTTP response body size.", sizeBuckets, "method", "path"),
		},
		task: taskMetrics{
			lookups:     counter("response_cache_lookups_total", "Response cache lookups by result (hit, miss).", "agent", "result"),
			invocations: counter("model_invocations_total", "Model invocations by outcome.", "agent", "outcome"),
			latency:     histogram("model_invocation_duration_seconds", "Model invocation latency.", latencyBuckets, "agent"),
			shared:      counter("shared_invocations_total", "Requests answered by an in-flight invocation for the same key.", "agent"),
		},
		depUp: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dependency_up",
			Help:      "1 when the dependency is reachable.",
		}, []string{"dependency"}),
	}

	logger.Debug("metrics registered", zap.String("namespace", namespace))
	return c
}

// RecordHTTPRequest 记录一次 HTTP 请求
func (c *Collector) RecordHTTPRequest(method, path string, status int, duration time.Duration, requestSize, responseSize int64) {
	c.http.requests.WithLabelValues(method, path, statusClass(status)).Inc()
	c.http.duration.WithLabelValues(method, path).Observe(duration.Seconds())
	c.http.requestSize.WithLabelValues(method, path).Observe(float64(requestSize))
	c.http.responseSize.WithLabelValues(method, path).Observe(float64(responseSize))
}

// RecordCacheLookup 记录缓存查询结果
func (c *Collector) RecordCacheLookup(agent string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	c.task.lookups.WithLabelValues(agent, result).Inc()
}

// RecordInvocation 记录一次模型调用
func (c *Collector) RecordInvocation(agent, outcome string, duration time.Duration) {
	c.task.invocations.WithLabelValues(agent, outcome).Inc()
	c.task.latency.WithLabelValues(agent).Observe(duration.Seconds())
}

// RecordSharedFlight 记录复用进行中调用的请求
func (c *Collector) RecordSharedFlight(agent string) {
	c.task.shared.WithLabelValues(agent).Inc()
}

// SetDependencyUp 记录依赖可达状态
func (c *Collector) SetDependencyUp(dependency string, up bool) {
	g := c.depUp.WithLabelValues(dependency)
	if up {
		g.Set(1)
	} else {
		g.Set(0)
	}
}

// statusClass 按百位归类，429 单独保留
func statusClass(code int) string {
	switch {
	case code == 429:
		return "429"
	case code < 100 || code > 599:
		return "unknown"
	default:
		return strconv.Itoa(code/100) + "xx"
	}
}
