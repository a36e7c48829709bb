package osperrors

import (
	"google.golang.org/grpc/codes"
)

// S3ErrorTable maps S3 error codes seen while probing a bucket to gRPC codes and message templates.
// Error codes match those returned by AWS SDK's smithy.APIError.ErrorCode().
// HeadBucket has no response body, so S3-compatible stores often report bare HTTP
// reasons ("Forbidden", "NotFound", "BadRequest") instead of the documented codes.
var S3ErrorTable = map[string]ObjectStorageProviderError{
	// NotFound: bucket does not exist
	"NoSuchBucket": {
		GRPCCode:         codes.NotFound,
		LogMessage:       "Bucket does not exist",
		ClientMessageTpl: "bucket %s not found",
	},
	"NotFound": {
		GRPCCode:         codes.NotFound,
		LogMessage:       "Bucket not found",
		ClientMessageTpl: "bucket %s not found",
	},

	// InvalidArgument: client specified invalid argument
	"InvalidBucketName": {
		GRPCCode:         codes.InvalidArgument,
		LogMessage:       "Invalid bucket name",
		ClientMessageTpl: "invalid bucket name: %s",
	},
	"BadRequest": {
		GRPCCode:         codes.InvalidArgument,
		LogMessage:       "Bad request",
		ClientMessageTpl: "invalid request for bucket %s",
	},
	"AuthorizationHeaderMalformed": {
		GRPCCode:         codes.InvalidArgument,
		LogMessage:       "Authorization header malformed, check the region",
		ClientMessageTpl: "malformed authorization for bucket %s",
	},

	// PermissionDenied: caller lacks permission
	"AccessDenied": {
		GRPCCode:         codes.PermissionDenied,
		LogMessage:       "Access denied",
		ClientMessageTpl: "permission denied for bucket %s",
	},
	"Forbidden": {
		GRPCCode:         codes.PermissionDenied,
		LogMessage:       "Forbidden",
		ClientMessageTpl: "permission denied for bucket %s",
	},

	// Unauthenticated: invalid authentication credentials
	"InvalidAccessKeyId": {
		GRPCCode:         codes.Unauthenticated,
		LogMessage:       "Invalid access key",
		ClientMessageTpl: "invalid authentication credentials for bucket %s",
	},
	"SignatureDoesNotMatch": {
		GRPCCode:         codes.Unauthenticated,
		LogMessage:       "Request signature does not match",
		ClientMessageTpl: "authentication signature mismatch for bucket %s",
	},

	// DeadlineExceeded: operation expired
	"RequestTimeout": {
		GRPCCode:         codes.DeadlineExceeded,
		LogMessage:       "Request timeout",
		ClientMessageTpl: "operation timed out for bucket %s",
	},

	// Unavailable: service temporarily unavailable
	"ServiceUnavailable": {
		GRPCCode:         codes.Unavailable,
		LogMessage:       "Service temporarily unavailable",
		ClientMessageTpl: "service temporarily unavailable for bucket %s",
	},

	// ResourceExhausted: resource quota exceeded
	"Throttled": {
		GRPCCode:         codes.ResourceExhausted,
		LogMessage:       "Request throttled - rate limit exceeded",
		ClientMessageTpl: "request throttled for bucket %s",
	},
	"SlowDown": {
		GRPCCode:         codes.ResourceExhausted,
		LogMessage:       "Request rate too high",
		ClientMessageTpl: "request throttled for bucket %s",
	},
}

// TranslateS3Error translates AWS S3 errors to gRPC status errors
func TranslateS3Error(action, bucketName string, err error) error {
	return TranslateObjectStorageProviderError(action, bucketName, "S3", err, S3ErrorTable)
}
