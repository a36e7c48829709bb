package metrics

import (
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"k8s.io/klog/v2"
)

var (
	S3RequestsTotal        *prometheus.CounterVec
	S3RequestDuration      *prometheus.HistogramVec
	ToolInvocationsTotal   *prometheus.CounterVec
	ToolInvocationDuration *prometheus.HistogramVec
)

// InitializeMetrics initializes the metrics with a given prefix and registers them to a registry.
func InitializeMetrics(prefix string, registry prometheus.Registerer) {
	S3RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: prefix,
			Name:      "s3_requests_total",
			Help:      "Total number of S3 requests, categorized by method and status.",
		},
		[]string{"method", "status", "trace_id"},
	)

	S3RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: prefix,
			Name:      "s3_request_duration_seconds",
			Help:      "Duration of S3 requests in seconds, categorized by method and status.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "status", "trace_id"},
	)

	ToolInvocationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: prefix,
			Name:      "tool_invocations_total",
			Help:      "Total number of tool invocations, categorized by tool and outcome.",
		},
		[]string{"tool", "outcome"},
	)

	ToolInvocationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: prefix,
			Name:      "tool_invocation_duration_seconds",
			Help:      "Duration of tool invocations in seconds, categorized by tool.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"tool"},
	)

	registry.MustRegister(S3RequestsTotal, S3RequestDuration, ToolInvocationsTotal, ToolInvocationDuration)

	klog.InfoS("Custom metrics initialized", "prefix", prefix)
}

// RecordToolInvocation records one finished tool invocation. It is a no-op before InitializeMetrics.
func RecordToolInvocation(tool, outcome string, elapsed time.Duration) {
	if ToolInvocationsTotal == nil || ToolInvocationDuration == nil {
		return
	}
	ToolInvocationsTotal.WithLabelValues(tool, outcome).Inc()
	ToolInvocationDuration.WithLabelValues(tool).Observe(elapsed.Seconds())
}

// StartMetricsServerWithRegistry starts an HTTP server for exposing metrics using a custom registry.
func StartMetricsServerWithRegistry(addr string, registry prometheus.Gatherer, metricsPath string) (*http.Server, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.Handle(metricsPath, promhttp.HandlerFor(registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	}))

	srv := &http.Server{
		Handler:           mux,
		Addr:              listener.Addr().String(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		klog.InfoS("Starting Prometheus metrics server", "address", listener.Addr().String())
		if err := srv.Serve(listener); err != nil && err != http.ErrServerClosed {
			klog.ErrorS(err, "Failed to start metrics server")
		}
	}()

	return srv, nil
}
