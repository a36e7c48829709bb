package metrics_test

import (
	"context"
	"errors"

	"github.com/aws/smithy-go/middleware"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/scality/s3-tool-plugin/pkg/metrics"
)

// chainFinalize builds the finalize chain of stack on top of a terminal handler.
func chainFinalize(stack *middleware.Stack, terminal middleware.FinalizeHandler) middleware.FinalizeHandler {
	handler := terminal
	ids := stack.Finalize.List()
	for i := len(ids) - 1; i >= 0; i-- {
		m, _ := stack.Finalize.Get(ids[i])
		previousHandler := handler
		handler = middleware.FinalizeHandlerFunc(func(ctx context.Context, in middleware.FinalizeInput) (middleware.FinalizeOutput, middleware.Metadata, error) {
			return m.HandleFinalize(ctx, in, previousHandler)
		})
	}
	return handler
}

var _ = Describe("AttachPrometheusMiddleware", func() {
	var (
		stack           *middleware.Stack
		requestDuration *prometheus.HistogramVec
		requestsTotal   *prometheus.CounterVec
	)

	BeforeEach(func() {
		requestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name: "request_duration_seconds",
			Help: "Duration of requests",
		}, []string{"method", "status", "trace_id"})

		requestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "requests_total",
			Help: "Total number of requests",
		}, []string{"method", "status", "trace_id"})

		stack = middleware.NewStack("testStack", nil)
	})

	It("should attach the middleware to the stack", func() {
		err := metrics.AttachPrometheusMiddleware(stack, requestDuration, requestsTotal)
		Expect(err).NotTo(HaveOccurred())

		Expect(stack.Finalize.List()).To(HaveLen(1))
		Expect(stack.Finalize.List()[0]).To(Equal("PrometheusMetrics"))
	})

	It("should count successful calls", func(ctx SpecContext) {
		Expect(metrics.AttachPrometheusMiddleware(stack, requestDuration, requestsTotal)).To(Succeed())

		terminal := middleware.FinalizeHandlerFunc(func(ctx context.Context, in middleware.FinalizeInput) (middleware.FinalizeOutput, middleware.Metadata, error) {
			return middleware.FinalizeOutput{}, middleware.Metadata{}, nil
		})

		_, _, err := chainFinalize(stack, terminal).HandleFinalize(ctx, middleware.FinalizeInput{})
		Expect(err).NotTo(HaveOccurred())
		Expect(testutil.ToFloat64(requestsTotal.WithLabelValues("", "success", ""))).To(Equal(1.0))
		Expect(testutil.CollectAndCount(requestDuration)).To(Equal(1))
	})

	It("should record metrics with error status when next handler fails", func(ctx SpecContext) {
		Expect(metrics.AttachPrometheusMiddleware(stack, requestDuration, requestsTotal)).To(Succeed())

		failingHandler := middleware.FinalizeHandlerFunc(func(ctx context.Context, in middleware.FinalizeInput) (middleware.FinalizeOutput, middleware.Metadata, error) {
			return middleware.FinalizeOutput{}, middleware.Metadata{}, errors.New("simulated error")
		})

		_, _, err := chainFinalize(stack, failingHandler).HandleFinalize(ctx, middleware.FinalizeInput{})
		Expect(err).To(MatchError("simulated error"))
		Expect(testutil.ToFloat64(requestsTotal.WithLabelValues("", "error", ""))).To(Equal(1.0))
		Expect(testutil.ToFloat64(requestsTotal.WithLabelValues("", "success", ""))).To(Equal(0.0))
	})
})

var _ = Describe("S3APIOption", func() {
	It("should attach the S3 metrics once initialized", func() {
		metrics.InitializeMetrics("s3_option_test", prometheus.NewRegistry())

		option := metrics.S3APIOption()
		Expect(option).NotTo(BeNil())

		stack := middleware.NewStack("testStack", nil)
		Expect(option(stack)).To(Succeed())
		Expect(stack.Finalize.List()).To(ContainElement("PrometheusMetrics"))
	})
})
