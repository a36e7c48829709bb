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

	"github.com/scality/s3-tool-plugin/pkg/api"
	"github.com/scality/s3-tool-plugin/pkg/tools"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"k8s.io/klog/v2"
)

// Version is set at build time.
var Version = "dev"

type IdentityServer struct {
	name  string
	tools []api.ToolInfo
}

func InitIdentityServer(pluginName string, registered []tools.Tool) (*IdentityServer, error) {
	if pluginName == "" {
		return nil, fmt.Errorf("plugin name must not be empty")
	}

	infos := make([]api.ToolInfo, 0, len(registered))
	for _, tool := range registered {
		infos = append(infos, api.ToolInfo{Name: tool.Name, Description: tool.Description})
	}
	return &IdentityServer{
		name:  pluginName,
		tools: infos,
	}, nil
}

func (id *IdentityServer) GetPluginInfo(ctx context.Context,
	req *api.GetPluginInfoRequest) (*api.GetPluginInfoResponse, error) {

	if id.name == "" {
		klog.ErrorS(fmt.Errorf("plugin name cannot be empty"), "invalid argument")
		return nil, status.Error(codes.InvalidArgument, "Plugin name is empty")
	}

	return &api.GetPluginInfoResponse{
		Name:    id.name,
		Version: Version,
		Tools:   id.tools,
	}, nil
}
