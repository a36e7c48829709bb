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

	"github.com/scality/s3-tool-plugin/pkg/api"
	"github.com/scality/s3-tool-plugin/pkg/tools"
	"k8s.io/klog/v2"
)

// CreatePlugin initializes the tool service served to the host runtime
func CreatePlugin(ctx context.Context, pluginName string, cfg tools.Config) (api.ToolServiceServer, error) {
	server, err := InitToolServer(pluginName, cfg)
	if err != nil {
		klog.ErrorS(err, "Tool server initialization failed", "pluginName", pluginName)
		return nil, err
	}

	klog.V(3).InfoS("Plugin created", "pluginName", pluginName, "tools", len(server.tools))
	return server, nil
}
