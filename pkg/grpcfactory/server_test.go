package grpcfactory_test

import (
	"context"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/scality/s3-tool-plugin/pkg/api"
	"github.com/scality/s3-tool-plugin/pkg/grpcfactory"
)

var _ = Describe("gRPC Factory Server", Ordered, func() {
	var (
		address    string
		toolServer api.ToolServiceServer
		server     *grpcfactory.PluginServer
		registry   *prometheus.Registry
	)

	BeforeEach(func() {
		address = generateUniqueAddress()
		toolServer = stubToolServer{}
		registry = prometheus.NewRegistry()
	})

	AfterEach(func() {
		socketPath := strings.TrimPrefix(address, "unix://")
		if err := os.Remove(socketPath); err != nil && !os.IsNotExist(err) {
			fmt.Printf("Warning: failed to remove socket file %s: %v\n", socketPath, err)
		}
	})

	Describe("NewPluginServer", func() {
		It("should initialize a server with valid arguments", func() {
			server, err := grpcfactory.NewPluginServer(address, toolServer, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(server).NotTo(BeNil())
		})

		It("should return an error if the tool server is nil", func() {
			server, err := grpcfactory.NewDefaultPluginServer(address, nil, 0)
			Expect(err).To(HaveOccurred())
			Expect(server).To(BeNil())
			Expect(err.Error()).To(ContainSubstring("Tool server cannot be nil"))
		})
	})

	Describe("Run", func() {
		It("should start the server and stop when the context is canceled", func(ctx SpecContext) {
			var err error
			server, err = grpcfactory.NewDefaultPluginServer(address, toolServer, 0)
			Expect(err).NotTo(HaveOccurred())

			runCtx, cancel := context.WithCancel(ctx)
			runErrChan := make(chan error, 1)
			go func() {
				defer GinkgoRecover()
				runErrChan <- server.Run(runCtx, registry)
			}()

			socketPath := strings.TrimPrefix(address, "unix://")
			Eventually(func() error {
				_, err := os.Stat(socketPath)
				return err
			}).WithTimeout(time.Second).Should(Succeed())

			cancel()
			Expect(<-runErrChan).To(MatchError(context.Canceled))
		}, SpecTimeout(3*time.Second))

		It("should register gRPC server metrics", func(ctx SpecContext) {
			server, err := grpcfactory.NewDefaultPluginServer(address, toolServer, 0)
			Expect(err).NotTo(HaveOccurred())

			runCtx, cancel := context.WithCancel(ctx)
			done := make(chan error, 1)
			go func() {
				done <- server.Run(runCtx, registry)
			}()

			Eventually(func() bool {
				families, err := registry.Gather()
				if err != nil {
					return false
				}
				for _, family := range families {
					if family.GetName() == "grpc_server_started_total" {
						return true
					}
				}
				return false
			}).WithTimeout(time.Second).Should(BeTrue())

			cancel()
			<-done
		}, SpecTimeout(3*time.Second))

		It("should return an error when reusing the same address", func(ctx SpecContext) {
			socketPath := strings.TrimPrefix(address, "unix://")
			listener, err := net.Listen("unix", socketPath)
			Expect(err).NotTo(HaveOccurred())
			defer listener.Close()

			server, err = grpcfactory.NewPluginServer(address, toolServer, nil)
			Expect(err).NotTo(HaveOccurred())

			err = server.Run(ctx, registry)
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("address already in use"))
		}, SpecTimeout(1*time.Second))

		It("should return an error for unsupported address schemes", func(ctx SpecContext) {
			server, err := grpcfactory.NewPluginServer("http://invalid-scheme-address", toolServer, nil)
			Expect(err).NotTo(HaveOccurred())

			err = server.Run(ctx, prometheus.NewRegistry())
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("unsupported scheme: expected 'unix'"))
		}, SpecTimeout(1*time.Second))

		It("should fail when metrics are already registered", func(ctx SpecContext) {
			first, err := grpcfactory.NewPluginServer("http://invalid", toolServer, nil)
			Expect(err).NotTo(HaveOccurred())
			_ = first.Run(ctx, registry)

			second, err := grpcfactory.NewPluginServer(address, toolServer, nil)
			Expect(err).NotTo(HaveOccurred())
			err = second.Run(ctx, registry)
			Expect(err).To(MatchError(ContainSubstring("failed to register gRPC metrics")))
		}, SpecTimeout(1*time.Second))
	})
})
