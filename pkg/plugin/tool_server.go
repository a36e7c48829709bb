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

package plugin

import (
	"context"
	"fmt"
	"time"

	"github.com/scality/s3-tool-plugin/pkg/api"
	"github.com/scality/s3-tool-plugin/pkg/constants"
	"github.com/scality/s3-tool-plugin/pkg/metrics"
	"github.com/scality/s3-tool-plugin/pkg/osperrors"
	"github.com/scality/s3-tool-plugin/pkg/tools"
	"github.com/scality/s3-tool-plugin/pkg/util"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"k8s.io/klog/v2"
)

const (
	outcomeSuccess = "success"
	outcomeError   = "error"
)

type ToolServer struct {
	*IdentityServer
	Validator *CredentialValidator
	tools     map[string]tools.Tool
}

var _ api.ToolServiceServer = &ToolServer{}

func InitToolServer(pluginName string, cfg tools.Config) (*ToolServer, error) {
	klog.V(3).InfoS("Initializing ToolServer", "pluginName", pluginName)

	registered := tools.DefaultTools(cfg)
	identity, err := InitIdentityServer(pluginName, registered)
	if err != nil {
		return nil, err
	}

	byName := make(map[string]tools.Tool, len(registered))
	for _, tool := range registered {
		if _, exists := byName[tool.Name]; exists {
			return nil, fmt.Errorf("duplicate tool name %q", tool.Name)
		}
		byName[tool.Name] = tool
	}

	klog.V(3).InfoS("Successfully initialized ToolServer", "pluginName", pluginName)
	return &ToolServer{
		IdentityServer: identity,
		Validator:      &CredentialValidator{Debug: cfg.Debug},
		tools:          byName,
	}, nil
}

// ValidateCredentials validates a credential set supplied by the host.
func (s *ToolServer) ValidateCredentials(ctx context.Context,
	req *api.ValidateCredentialsRequest) (*api.ValidateCredentialsResponse, error) {

	creds := util.CredentialSet(req.Credentials)
	bucketName := creds.Get(constants.CredBucket, constants.CredBucketLegacy)
	start := time.Now()

	if err := s.Validator.Validate(ctx, creds); err != nil {
		metrics.RecordToolInvocation(constants.ActionValidateCredentials, outcomeError, time.Since(start))
		return nil, osperrors.TranslateS3Error(constants.ActionValidateCredentials, bucketName, err)
	}

	metrics.RecordToolInvocation(constants.ActionValidateCredentials, outcomeSuccess, time.Since(start))
	return &api.ValidateCredentialsResponse{Valid: true}, nil
}

// InvokeTool runs one tool and streams its messages in order.
// Tool failures are part of the message stream; only transport failures are returned.
func (s *ToolServer) InvokeTool(req *api.InvokeToolRequest, stream api.InvokeToolServer) error {
	tool, ok := s.tools[req.Tool]
	if !ok {
		klog.ErrorS(nil, "Unknown tool requested", "tool", req.Tool)
		return status.Errorf(codes.NotFound, "unknown tool %q", req.Tool)
	}

	klog.V(constants.LvlInfo).InfoS("Invoking tool", "tool", req.Tool)
	start := time.Now()

	inv := tools.Invocation{
		Credentials: util.CredentialSet(req.Credentials),
		Parameters:  tools.Parameters(req.Arguments()),
	}
	if err := tool.Run(stream.Context(), inv, stream); err != nil {
		metrics.RecordToolInvocation(req.Tool, outcomeError, time.Since(start))
		klog.ErrorS(err, "Failed to deliver tool output", "tool", req.Tool)
		return status.Errorf(codes.Unavailable, "failed to deliver output of %s: %v", req.Tool, err)
	}

	metrics.RecordToolInvocation(req.Tool, outcomeSuccess, time.Since(start))
	klog.V(constants.LvlInfo).InfoS("Tool completed", "tool", req.Tool, "elapsed", time.Since(start))
	return nil
}
