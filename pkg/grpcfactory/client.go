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
	"errors"
	"fmt"
	"io"
	"net/url"

	"github.com/scality/s3-tool-plugin/pkg/api"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

var _ api.ToolServiceClient = &PluginClient{}

// PluginClient is the host side of the tool service.
type PluginClient struct {
	address string
	conn    *grpc.ClientConn
	api.ToolServiceClient
}

// NewPluginClient creates a client for a unix socket address. No connection is made until the first call.
func NewPluginClient(address string, dialOpts []grpc.DialOption, interceptors []grpc.UnaryClientInterceptor) (*PluginClient, error) {
	addr, err := url.Parse(address)
	if err != nil {
		return nil, err
	}
	if addr.Scheme != "unix" {
		return nil, fmt.Errorf("unsupported scheme: expected 'unix', found '%s'", addr.Scheme)
	}

	if len(interceptors) > 0 {
		dialOpts = append(dialOpts, grpc.WithChainUnaryInterceptor(interceptors...))
	}

	conn, err := grpc.NewClient(address, dialOpts...)
	if err != nil {
		return nil, err
	}
	return &PluginClient{
		address:           address,
		conn:              conn,
		ToolServiceClient: api.NewToolServiceClient(conn),
	}, nil
}

// NewDefaultPluginClient creates a client with insecure local transport. Debug logs every call.
// maxMessageSize bounds both directions; <= 0 sizes messages for the default blob limit.
func NewDefaultPluginClient(address string, debug bool, maxMessageSize int) (*PluginClient, error) {
	size := messageSize(maxMessageSize)
	dialOpts := []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(
			grpc.MaxCallRecvMsgSize(size),
			grpc.MaxCallSendMsgSize(size),
		),
	}
	var interceptors []grpc.UnaryClientInterceptor
	if debug {
		interceptors = append(interceptors, ApiLogger)
		dialOpts = append(dialOpts, grpc.WithChainStreamInterceptor(StreamApiLogger))
	}
	return NewPluginClient(address, dialOpts, interceptors)
}

// Invoke runs a tool and collects its whole message stream.
func (c *PluginClient) Invoke(ctx context.Context, req *api.InvokeToolRequest) ([]*api.Message, error) {
	stream, err := c.InvokeTool(ctx, req)
	if err != nil {
		return nil, err
	}

	var messages []*api.Message
	for {
		msg, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return messages, nil
		}
		if err != nil {
			return messages, err
		}
		messages = append(messages, msg)
	}
}

func (c *PluginClient) Address() string {
	return c.address
}

func (c *PluginClient) Close() error {
	return c.conn.Close()
}
