package grpcfactory_test

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/scality/s3-tool-plugin/pkg/api"
	"github.com/scality/s3-tool-plugin/pkg/grpcfactory"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
)

var _ = Describe("gRPC Factory Client", func() {
	var (
		address string
		cancel  context.CancelFunc
		done    chan error
	)

	BeforeEach(func() {
		address = generateUniqueAddress()
		server, err := grpcfactory.NewDefaultPluginServer(address, stubToolServer{}, 0)
		Expect(err).NotTo(HaveOccurred())

		var runCtx context.Context
		runCtx, cancel = context.WithCancel(context.Background())
		done = make(chan error, 1)
		go func() {
			done <- server.Run(runCtx, prometheus.NewRegistry())
		}()

		socketPath := strings.TrimPrefix(address, "unix://")
		Eventually(func() error {
			_, err := os.Stat(socketPath)
			return err
		}).WithTimeout(2 * time.Second).Should(Succeed())
	})

	AfterEach(func() {
		cancel()
		Eventually(done).WithTimeout(2 * time.Second).Should(Receive())
		_ = os.Remove(strings.TrimPrefix(address, "unix://"))
	})

	Describe("Initialization", func() {
		It("should initialize a client with explicit dial options", func() {
			dialOpts := []grpc.DialOption{
				grpc.WithTransportCredentials(insecure.NewCredentials()),
			}
			client, err := grpcfactory.NewPluginClient(address, dialOpts, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(client).NotTo(BeNil())
			Expect(client.ToolServiceClient).NotTo(BeNil())
			Expect(client.Address()).To(Equal(address))
			Expect(client.Close()).To(Succeed())
		})

		It("should fail if the address scheme is invalid", func() {
			client, err := grpcfactory.NewDefaultPluginClient("http://localhost", false, 0)
			Expect(err).To(HaveOccurred())
			Expect(client).To(BeNil())
			Expect(err.Error()).To(ContainSubstring("unsupported scheme"))
		})
	})

	for _, debug := range []bool{false, true} {
		Context(fmt.Sprintf("with debug=%t", debug), func() {
			var client *grpcfactory.PluginClient

			BeforeEach(func() {
				var err error
				client, err = grpcfactory.NewDefaultPluginClient(address, debug, 0)
				Expect(err).NotTo(HaveOccurred())
				DeferCleanup(client.Close)
			})

			It("should fetch plugin info", func(ctx SpecContext) {
				resp, err := client.GetPluginInfo(ctx, &api.GetPluginInfoRequest{})
				Expect(err).NotTo(HaveOccurred())
				Expect(resp.Name).To(Equal("stub"))
				Expect(resp.Tools).To(ConsistOf(api.ToolInfo{Name: "echo", Description: "echoes its parameters"}))
			}, SpecTimeout(5*time.Second))

			It("should surface unimplemented methods as status errors", func(ctx SpecContext) {
				_, err := client.ValidateCredentials(ctx, &api.ValidateCredentialsRequest{Credentials: map[string]string{"S3_SECRET_KEY": "s"}})
				Expect(status.Code(err)).To(Equal(codes.Unimplemented))
			}, SpecTimeout(5*time.Second))

			It("should receive every streamed message in order", func(ctx SpecContext) {
				messages, err := client.Invoke(ctx, &api.InvokeToolRequest{
					Tool:       "echo",
					Parameters: map[string]any{"s3_key": "a/b"},
					Files:      map[string][]byte{"payload.bin": {0x00, 0xff}},
				})
				Expect(err).NotTo(HaveOccurred())
				Expect(messages).To(HaveLen(3))
				Expect(messages[0].Text).To(Equal("tool=echo"))
				Expect(messages[1].Type).To(Equal(api.MessageTypeBlob))
				Expect(messages[1].Blob).To(Equal([]byte{0x00, 0xff}))
				Expect(messages[1].Meta.FileName).To(Equal("payload.bin"))
				Expect(messages[2].Text).To(Equal("key=a/b"))
			}, SpecTimeout(5*time.Second))
		})
	}
})
