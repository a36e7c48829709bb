/*
Copyright 2024 Scality, Inc.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package main

import (
	"context"
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/scality/s3-tool-plugin/pkg/api"
	"github.com/scality/s3-tool-plugin/pkg/constants"
	"github.com/scality/s3-tool-plugin/pkg/grpcfactory"
	"github.com/scality/s3-tool-plugin/pkg/metrics"
	"github.com/scality/s3-tool-plugin/pkg/plugin"
	"github.com/scality/s3-tool-plugin/pkg/tools"
	"github.com/scality/s3-tool-plugin/pkg/tracing"
	"k8s.io/klog/v2"
)

const (
	defaultPluginAddress  = "unix:///var/run/s3-tool-plugin/plugin.sock"
	defaultPluginName     = "s3-tool-plugin"
	defaultMetricsPath    = "/metrics"
	defaultMetricsPrefix  = "s3_tool_plugin"
	defaultMetricsAddress = ":8080"
)

var (
	pluginAddress  = flag.String("plugin-address", defaultPluginAddress, "plugin address for the socket file, default: unix:///var/run/s3-tool-plugin/plugin.sock")
	pluginName     = flag.String("plugin-name", defaultPluginName, "name reported to the host runtime, default: s3-tool-plugin")
	metricsAddress = flag.String("metrics-address", defaultMetricsAddress, "The address to expose Prometheus metrics, default: :8080")
	metricsPath    = flag.String("metrics-path", defaultMetricsPath, "path for the metrics endpoint, default: /metrics")
	metricsPrefix  = flag.String("metrics-prefix", defaultMetricsPrefix, "prefix for the metrics, default: s3_tool_plugin")
	maxBlobSize    = flag.Int64("max-blob-size", constants.DefaultMaxBlobSize, "largest object returned as a file attachment, in bytes")
	maxMessageSize = flag.Int("max-message-size", 0, "largest gRPC message exchanged with the host, in bytes; 0 derives it from max-blob-size")
	s3Debug        = flag.Bool("s3-debug", false, "log every S3 request and response")
	otelExporter   = flag.String("otel-exporter", tracing.ExporterNone, "trace exporter: none, stdout or otlp")
	otelEndpoint   = flag.String("otel-endpoint", "", "OTLP/HTTP endpoint URL, defaults to the OTEL_EXPORTER_OTLP_* environment")
)

func init() {
	klog.InitFlags(nil)
	if err := flag.Set("logtostderr", "true"); err != nil {
		klog.Exitf("Failed to set logtostderr flag: %v", err)
	}
	flag.Parse()

	if !strings.HasPrefix(*metricsPath, "/") {
		*metricsPath = "/" + *metricsPath
	}

	klog.InfoS("S3 tool plugin startup configuration",
		"pluginAddress", *pluginAddress,
		"pluginName", *pluginName,
		"metricsPath", *metricsPath,
		"metricsPrefix", *metricsPrefix,
		"metricsAddress", *metricsAddress,
		"maxBlobSize", *maxBlobSize,
		"maxMessageSize", *maxMessageSize,
		"s3Debug", *s3Debug,
		"otelExporter", *otelExporter,
	)
}

func run(ctx context.Context) error {
	shutdownTracing, err := tracing.InitTracerProvider(ctx, tracing.Options{
		Exporter:    *otelExporter,
		Endpoint:    *otelEndpoint,
		ServiceName: *pluginName,
		Version:     plugin.Version,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}

	registry := prometheus.NewRegistry()
	metrics.InitializeMetrics(*metricsPrefix, registry)

	metricsServer, err := metrics.StartMetricsServerWithRegistry(*metricsAddress, registry, *metricsPath)
	if err != nil {
		return fmt.Errorf("failed to start metrics server: %w", err)
	}

	toolServer, err := plugin.CreatePlugin(ctx, *pluginName, tools.Config{
		MaxBlobSize: *maxBlobSize,
		Debug:       *s3Debug,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize S3 tool plugin: %w", err)
	}

	messageLimit := *maxMessageSize
	if messageLimit <= 0 {
		messageLimit = api.MessageSizeLimit(*maxBlobSize)
	}
	server, err := grpcfactory.NewDefaultPluginServer(*pluginAddress, toolServer, messageLimit)
	if err != nil {
		return fmt.Errorf("failed to start the plugin server: %w", err)
	}

	err = server.Run(ctx, registry)
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if shutdownErr := metricsServer.Shutdown(shutdownCtx); shutdownErr != nil {
		klog.ErrorS(shutdownErr, "Failed to gracefully shutdown metrics server")
	}
	if shutdownErr := shutdownTracing(shutdownCtx); shutdownErr != nil {
		klog.ErrorS(shutdownErr, "Failed to flush traces")
	}

	return err
}
