package constants

// Log level constants for structured logging, starting from 1
// 0 is default if no level is provided
// Guidelines: https://github.com/kubernetes/community/blob/master/contributors/devel/sig-instrumentation/logging.md#what-method-to-use
const (
	LvlDefault = iota + 1 // 1 - General configuration, routine logs
	LvlInfo               // 2 - Steady-state operations, tool invocations, system state changes
	LvlEvent              // 3 - Extended changes, additional system details
	LvlDebug              // 4 - Debug-level logs, tricky logic areas
	LvlTrace              // 5 - Trace-level logs, detailed troubleshooting context
)

// Action constants for error translation context and metrics labels.
// Tool actions match the tool names registered with the host runtime.
const (
	ActionValidateCredentials = "ValidateCredentials"
	ActionDownloadBase64      = "s3_download_base64"
	ActionDownloadFile        = "s3_download_file"
	ActionUploadBase64        = "s3_upload_base64"
	ActionUploadFile          = "s3_upload_file"
)

// Credential keys supplied by the host runtime.
const (
	CredEndpoint     = "S3_ENDPOINT"
	CredAccessKey    = "S3_ACCESS_KEY"
	CredSecretKey    = "S3_SECRET_KEY"
	CredBucket       = "BUCKET_NAME"
	CredBucketLegacy = "S3_BUCKET"
	CredCABundle     = "S3_CA_BUNDLE"
	CredPublicURL    = "S3_PUBLIC_URL"
	CredRegion       = "S3_REGION"
)

// Tool parameter keys, with the legacy aliases accepted for each.
const (
	ParamKey             = "s3_key"
	ParamKeyAlias        = "filename"
	ParamPresign         = "generate_presigned_url"
	ParamPresignAlias    = "generate_presign_url"
	ParamExpiration      = "presigned_expiration"
	ParamExpirationAlias = "presign_expiry"
	ParamPayloadBase64   = "file_base64"
	ParamPayloadFile     = "file"
	PayloadContentField  = "content"
)

// Transfer defaults
const (
	DefaultDownloadName    = "downloaded"
	DefaultContentType     = "application/octet-stream"
	DefaultExpirationSecs  = 3600
	LargeObjectThreshold   = 5 * 1024 * 1024
	DefaultMaxBlobSize     = 30 * 1024 * 1024
	FallbackBase64MaxChars = 1024 * 1024
	DefaultRetryAttempts   = 3
)
