package grpcfactory_test

import (
	"context"
	"errors"
	"io"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/scality/s3-tool-plugin/pkg/api"
	"github.com/scality/s3-tool-plugin/pkg/grpcfactory"
	"google.golang.org/grpc"
)

// fakeClientStream replays a fixed list of messages.
type fakeClientStream struct {
	grpc.ClientStream
	pending []*api.Message
	sent    []any
}

func (f *fakeClientStream) SendMsg(m any) error {
	f.sent = append(f.sent, m)
	return nil
}

func (f *fakeClientStream) RecvMsg(m any) error {
	if len(f.pending) == 0 {
		return io.EOF
	}
	*(m.(*api.Message)) = *f.pending[0]
	f.pending = f.pending[1:]
	return nil
}

var _ = Describe("gRPC Factory Interceptors", func() {
	var (
		ctx        context.Context
		method     string
		req, reply interface{}
		cc         *grpc.ClientConn
	)

	BeforeEach(func() {
		ctx = context.Background()
		method = "TestMethod"
		req = "test request"
		reply = "test reply"
		cc = &grpc.ClientConn{}
	})

	Context("ApiLogger", func() {
		It("should log request and response successfully", func() {
			invoker := func(ctx context.Context, method string, req, reply interface{}, cc *grpc.ClientConn, opts ...grpc.CallOption) error {
				time.Sleep(10 * time.Millisecond)
				return nil
			}

			err := grpcfactory.ApiLogger(ctx, method, req, reply, cc, invoker)
			Expect(err).NotTo(HaveOccurred())
		})

		It("should handle invocation error and log it", func() {
			invoker := func(ctx context.Context, method string, req, reply interface{}, cc *grpc.ClientConn, opts ...grpc.CallOption) error {
				return errors.New("invocation failed")
			}

			err := grpcfactory.ApiLogger(ctx, method, req, reply, cc, invoker)
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(Equal("invocation failed"))
		})

		It("should pass the original request to the invoker", func() {
			credsReq := &api.ValidateCredentialsRequest{Credentials: map[string]string{"S3_SECRET_KEY": "secret"}}
			var seen any
			invoker := func(ctx context.Context, method string, req, reply interface{}, cc *grpc.ClientConn, opts ...grpc.CallOption) error {
				seen = req
				return nil
			}

			Expect(grpcfactory.ApiLogger(ctx, api.ValidateCredentialsMethod, credsReq, &api.ValidateCredentialsResponse{}, cc, invoker)).To(Succeed())
			Expect(seen).To(BeIdenticalTo(credsReq))
			Expect(credsReq.Credentials).To(HaveKeyWithValue("S3_SECRET_KEY", "secret"))
		})
	})

	Context("StreamApiLogger", func() {
		It("should relay sent and received messages", func() {
			fake := &fakeClientStream{pending: []*api.Message{api.NewTextMessage("one"), api.NewTextMessage("two")}}
			streamer := func(ctx context.Context, desc *grpc.StreamDesc, cc *grpc.ClientConn, method string, opts ...grpc.CallOption) (grpc.ClientStream, error) {
				return fake, nil
			}

			stream, err := grpcfactory.StreamApiLogger(ctx, &grpc.StreamDesc{ServerStreams: true}, cc, api.InvokeToolMethod, streamer)
			Expect(err).NotTo(HaveOccurred())

			toolReq := &api.InvokeToolRequest{Tool: "echo", Credentials: map[string]string{"S3_ACCESS_KEY": "a"}}
			Expect(stream.SendMsg(toolReq)).To(Succeed())
			Expect(fake.sent).To(ConsistOf(BeIdenticalTo(toolReq)))

			var texts []string
			for {
				msg := &api.Message{}
				err := stream.RecvMsg(msg)
				if errors.Is(err, io.EOF) {
					break
				}
				Expect(err).NotTo(HaveOccurred())
				texts = append(texts, msg.Text)
			}
			Expect(texts).To(Equal([]string{"one", "two"}))
		})

		It("should return open failures", func() {
			streamer := func(ctx context.Context, desc *grpc.StreamDesc, cc *grpc.ClientConn, method string, opts ...grpc.CallOption) (grpc.ClientStream, error) {
				return nil, errors.New("connection refused")
			}
			stream, err := grpcfactory.StreamApiLogger(ctx, &grpc.StreamDesc{}, cc, api.InvokeToolMethod, streamer)
			Expect(err).To(MatchError("connection refused"))
			Expect(stream).To(BeNil())
		})
	})
})
