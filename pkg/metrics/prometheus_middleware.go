package metrics

import (
	"context"

	"github.com/aws/smithy-go/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"
	"k8s.io/klog/v2"
)

const prometheusMiddlewareID = "PrometheusMetrics"

var AttachPrometheusMiddleware = attachPrometheusMiddlewareMetrics

// attachPrometheusMiddlewareMetrics records every SDK call made through the stack.
// Pre-signing runs the same stack without sending, so it is counted too.
func attachPrometheusMiddlewareMetrics(stack *middleware.Stack, requestDuration *prometheus.HistogramVec, requestsTotal *prometheus.CounterVec) error {
	middlewareFunc := middleware.FinalizeMiddlewareFunc(prometheusMiddlewareID, func(
		ctx context.Context, in middleware.FinalizeInput, next middleware.FinalizeHandler,
	) (out middleware.FinalizeOutput, metadata middleware.Metadata, err error) {
		operationName := middleware.GetOperationName(ctx)

		timer := prometheus.NewTimer(prometheus.ObserverFunc(func(duration float64) {
			status := "success"
			if err != nil {
				status = "error"
			}

			traceID := ""
			if span := trace.SpanFromContext(ctx); span.SpanContext().IsValid() {
				traceID = span.SpanContext().TraceID().String()
			}
			requestDuration.WithLabelValues(operationName, status, traceID).Observe(duration)
			requestsTotal.WithLabelValues(operationName, status, traceID).Inc()
		}))
		defer timer.ObserveDuration()

		out, metadata, err = next.HandleFinalize(ctx, in)
		if err != nil {
			klog.ErrorS(err, "AWS SDK operation failed", "operation", operationName)
		}
		return out, metadata, err
	})

	return stack.Finalize.Add(middlewareFunc, middleware.After)
}

// S3APIOption returns a stack mutator recording into the S3 request metrics,
// or nil when metrics have not been initialized.
func S3APIOption() func(*middleware.Stack) error {
	if S3RequestDuration == nil || S3RequestsTotal == nil {
		return nil
	}
	return func(stack *middleware.Stack) error {
		return AttachPrometheusMiddleware(stack, S3RequestDuration, S3RequestsTotal)
	}
}
