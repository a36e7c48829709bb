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

	s3client "github.com/scality/s3-tool-plugin/pkg/clients/s3"
	"github.com/scality/s3-tool-plugin/pkg/constants"
	"github.com/scality/s3-tool-plugin/pkg/osperrors"
	"github.com/scality/s3-tool-plugin/pkg/util"
	"k8s.io/klog/v2"
)

// helper initialized as a variable for testing
var InitializeClient = initializeS3Client

func initializeS3Client(ctx context.Context, params util.StorageClientParameters) (*s3client.S3Client, error) {
	return s3client.InitS3Client(ctx, params)
}

// CredentialValidator checks a credential set against its bucket.
type CredentialValidator struct {
	Debug bool
}

// Validate checks required keys, then probes the bucket with HeadBucket.
// Every failure is a *osperrors.CredentialValidationError wrapping the cause.
func (v *CredentialValidator) Validate(ctx context.Context, creds util.CredentialSet) error {
	params := util.FetchParameters(creds)
	if err := params.Validate(); err != nil {
		klog.ErrorS(err, "Credential set is incomplete")
		return &osperrors.CredentialValidationError{Err: err}
	}
	params.Debug = v.Debug

	client, err := InitializeClient(ctx, *params)
	if err != nil {
		klog.ErrorS(err, "Failed to initialize S3 client", "endpoint", params.Endpoint)
		return &osperrors.CredentialValidationError{Err: err}
	}
	defer func() {
		if closeErr := client.Close(); closeErr != nil {
			klog.ErrorS(closeErr, "Failed to close S3 session")
		}
	}()

	if err := client.HeadBucket(ctx, params.Bucket); err != nil {
		klog.ErrorS(err, "Bucket probe failed", "endpoint", params.Endpoint, "bucket", params.Bucket)
		return &osperrors.CredentialValidationError{Err: err}
	}

	klog.V(constants.LvlInfo).InfoS("Credentials validated",
		"endpoint", params.Endpoint,
		"bucket", params.Bucket,
		"customCA", len(params.CABundle) > 0)
	return nil
}
