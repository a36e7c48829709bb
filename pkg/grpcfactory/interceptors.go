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

package grpcfactory

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"time"

	"github.com/scality/s3-tool-plugin/pkg/api"
	"google.golang.org/grpc"
	"k8s.io/klog/v2"
)

func ApiLogger(
	ctx context.Context,
	method string,
	req, reply interface{},
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	// Log the request
	if jsonReq, err := json.MarshalIndent(redact(req), "", " "); err == nil {
		klog.InfoS("Request", "api", method, "req", string(jsonReq))
	} else {
		klog.ErrorS(err, "Failed to marshal request", "api", method)
	}

	start := time.Now()
	err := invoker(ctx, method, req, reply, cc, opts...)
	elapsed := time.Since(start)

	// Log the response or error
	if err != nil {
		klog.ErrorS(err, "API call failed", "api", method, "elapsed", elapsed)
	} else if jsonResp, err := json.MarshalIndent(reply, "", " "); err == nil {
		klog.InfoS("Response", "api", method, "elapsed", elapsed, "resp", string(jsonResp))
	} else {
		klog.ErrorS(err, "Failed to marshal response", "api", method)
	}

	return err
}

// StreamApiLogger logs the request of a streaming call and a summary of what it received.
func StreamApiLogger(
	ctx context.Context,
	desc *grpc.StreamDesc,
	cc *grpc.ClientConn,
	method string,
	streamer grpc.Streamer,
	opts ...grpc.CallOption,
) (grpc.ClientStream, error) {
	stream, err := streamer(ctx, desc, cc, method, opts...)
	if err != nil {
		klog.ErrorS(err, "API stream failed to open", "api", method)
		return nil, err
	}
	return &loggingClientStream{ClientStream: stream, method: method, start: time.Now()}, nil
}

type loggingClientStream struct {
	grpc.ClientStream
	method   string
	start    time.Time
	received int
}

func (s *loggingClientStream) SendMsg(m any) error {
	if jsonReq, err := json.MarshalIndent(redact(m), "", " "); err == nil {
		klog.InfoS("Request", "api", s.method, "req", string(jsonReq))
	}
	return s.ClientStream.SendMsg(m)
}

func (s *loggingClientStream) RecvMsg(m any) error {
	err := s.ClientStream.RecvMsg(m)
	switch {
	case err == nil:
		s.received++
		if msg, ok := m.(*api.Message); ok {
			klog.V(4).InfoS("Stream message", "api", s.method, "type", msg.Type, "index", s.received)
		}
	case errors.Is(err, io.EOF):
		klog.InfoS("Stream completed", "api", s.method, "messages", s.received, "elapsed", time.Since(s.start))
	default:
		klog.ErrorS(err, "API stream failed", "api", s.method, "messages", s.received, "elapsed", time.Since(s.start))
	}
	return err
}

// redact hides credentials and large payloads before a request is logged.
func redact(req any) any {
	switch r := req.(type) {
	case *api.ValidateCredentialsRequest:
		return r.Redacted()
	case *api.InvokeToolRequest:
		return r.Redacted()
	default:
		return req
	}
}
