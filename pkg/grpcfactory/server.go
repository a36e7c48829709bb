package grpcfactory

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"

	grpcprom "github.com/grpc-ecosystem/go-grpc-middleware/providers/prometheus"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/scality/s3-tool-plugin/pkg/api"
	"github.com/scality/s3-tool-plugin/pkg/constants"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
	"k8s.io/klog/v2"
)

// PluginServer represents the gRPC server exposing the tool service to the host.
type PluginServer struct {
	address    string
	toolServer api.ToolServiceServer
	listenOpts []grpc.ServerOption
}

// NewPluginServer creates a server for toolServer listening on a unix socket address.
func NewPluginServer(address string, toolServer api.ToolServiceServer, listenOpts []grpc.ServerOption) (*PluginServer, error) {
	if toolServer == nil {
		return nil, errors.New("Tool server cannot be nil")
	}
	return &PluginServer{
		address:    address,
		toolServer: toolServer,
		listenOpts: listenOpts,
	}, nil
}

// NewDefaultPluginServer creates a server accepting and sending messages up to maxMessageSize bytes.
// maxMessageSize <= 0 sizes messages for the default blob limit.
func NewDefaultPluginServer(address string, toolServer api.ToolServiceServer, maxMessageSize int) (*PluginServer, error) {
	size := messageSize(maxMessageSize)
	return NewPluginServer(address, toolServer, []grpc.ServerOption{
		grpc.MaxRecvMsgSize(size),
		grpc.MaxSendMsgSize(size),
	})
}

func messageSize(maxMessageSize int) int {
	if maxMessageSize <= 0 {
		return api.MessageSizeLimit(constants.DefaultMaxBlobSize)
	}
	return maxMessageSize
}

// Run starts the gRPC server and handles incoming requests.
func (s *PluginServer) Run(ctx context.Context, registry prometheus.Registerer) error {
	// Set up Prometheus metrics with handling time histograms.
	srvMetrics := grpcprom.NewServerMetrics(
		grpcprom.WithServerHandlingTimeHistogram(
			grpcprom.WithHistogramBuckets([]float64{0.001, 0.01, 0.1, 0.3, 0.6, 1, 3, 6, 9, 20, 30, 60, 90, 120}),
		),
	)

	exemplarFromContext := func(ctx context.Context) prometheus.Labels {
		if span := trace.SpanContextFromContext(ctx); span.IsSampled() {
			return prometheus.Labels{"traceID": span.TraceID().String()}
		}
		return nil
	}

	if err := registry.Register(srvMetrics); err != nil {
		klog.ErrorS(err, "Failed to register gRPC metrics")
		return fmt.Errorf("failed to register gRPC metrics: %w", err)
	}

	addr, err := url.Parse(s.address)
	if err != nil {
		klog.ErrorS(err, "Invalid server address")
		return err
	}
	if addr.Scheme != "unix" {
		err := fmt.Errorf("unsupported scheme: expected 'unix', found '%s'", addr.Scheme)
		klog.ErrorS(err, "Invalid address scheme")
		return err
	}

	if err := os.MkdirAll(filepath.Dir(addr.Path), 0o750); err != nil {
		klog.ErrorS(err, "Failed to create socket directory", "path", addr.Path)
		return fmt.Errorf("failed to create socket directory: %w", err)
	}

	listenConfig := net.ListenConfig{}
	listener, err := listenConfig.Listen(ctx, "unix", addr.Path)
	if err != nil {
		klog.ErrorS(err, "Failed to start listener")
		return fmt.Errorf("failed to start listener: %w", err)
	}
	defer func() {
		klog.Info("Closing listener...")
		if closeErr := listener.Close(); closeErr != nil && !errors.Is(closeErr, net.ErrClosed) {
			klog.ErrorS(closeErr, "Failed to close listener")
		}
	}()

	otelHandler := otelgrpc.NewServerHandler()

	s.listenOpts = append(s.listenOpts,
		grpc.StatsHandler(otelHandler),
		grpc.ChainUnaryInterceptor(
			srvMetrics.UnaryServerInterceptor(grpcprom.WithExemplarFromContext(exemplarFromContext)),
			func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp any, err error) {
				traceID := trace.SpanContextFromContext(ctx).TraceID().String()
				klog.V(3).InfoS("Handling gRPC unary request", "method", info.FullMethod, "traceID", traceID)
				resp, err = handler(ctx, req)
				if err != nil {
					klog.ErrorS(err, "Error handling gRPC unary request", "method", info.FullMethod, "traceID", traceID)
				}
				return resp, err
			},
		),
		grpc.ChainStreamInterceptor(
			srvMetrics.StreamServerInterceptor(grpcprom.WithExemplarFromContext(exemplarFromContext)),
			func(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
				traceID := trace.SpanContextFromContext(ss.Context()).TraceID().String()
				klog.V(3).InfoS("Handling gRPC stream request", "method", info.FullMethod, "traceID", traceID)
				err := handler(srv, ss)
				if err != nil {
					klog.ErrorS(err, "Error handling gRPC stream request", "method", info.FullMethod, "traceID", traceID)
				}
				return err
			},
		),
	)

	server := grpc.NewServer(s.listenOpts...)
	api.RegisterToolServiceServer(server, s.toolServer)

	srvMetrics.InitializeMetrics(server)

	errChan := make(chan error, 1)
	go func() {
		errChan <- server.Serve(listener)
	}()
	select {
	case <-ctx.Done():
		klog.Info("Context canceled, stopping gRPC server...")
		server.GracefulStop()
		return ctx.Err()
	case err := <-errChan:
		klog.ErrorS(err, "gRPC server exited with error")
		return err
	}
}
