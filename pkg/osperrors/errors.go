// Package osperrors provides error types and translation for Object Storage Provider (OSP) errors.
// OSP refers to S3-compatible storage systems that implement AWS-style APIs.
// Tool operations render these errors as text messages; the credential validation RPC maps
// them to gRPC status codes so the host can tell bad input from bad credentials.
package osperrors

import (
	"errors"
	"fmt"

	smithy "github.com/aws/smithy-go"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"k8s.io/klog/v2"
)

// ObjectStorageProviderError represents metadata for object storage provider error mapping
type ObjectStorageProviderError struct {
	GRPCCode         codes.Code
	LogMessage       string
	ClientMessageTpl string // Template for client-facing error messages with %s placeholder for resource name
}

// TranslateObjectStorageProviderError translates object storage provider errors to gRPC status errors.
// Configuration errors become InvalidArgument. Errors implementing smithy.APIError are looked up
// in errorTable; anything else is Internal. The status message always embeds the original cause.
func TranslateObjectStorageProviderError(action, resourceName, provider string, err error, errorTable map[string]ObjectStorageProviderError) error {
	if err == nil {
		return nil
	}

	var cfgErr *ConfigurationError
	if errors.As(err, &cfgErr) {
		klog.ErrorS(err, "Invalid configuration", "action", action, "key", cfgErr.Key)
		return status.Error(codes.InvalidArgument, err.Error())
	}

	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		klog.ErrorS(err, "Unhandled error", "action", action, "resourceName", resourceName, "provider", provider)
		return status.Error(codes.Internal, err.Error())
	}

	errorCode := apiErr.ErrorCode()
	meta, ok := errorTable[errorCode]
	if !ok {
		klog.ErrorS(err, "Unrecognized error code",
			"action", action,
			"resourceName", resourceName,
			"provider", provider,
			"errorCode", errorCode)
		return status.Error(codes.Internal, err.Error())
	}

	klog.ErrorS(err, meta.LogMessage,
		"resourceName", resourceName,
		"action", action,
		"errorCode", errorCode)

	if meta.ClientMessageTpl != "" {
		return status.Errorf(meta.GRPCCode, "%s: %v", fmt.Sprintf(meta.ClientMessageTpl, resourceName), err)
	}
	return status.Error(meta.GRPCCode, err.Error())
}
