package osperrors

import (
	"fmt"
)

// Operation names used to render transfer failures.
const (
	OpDownload = "download"
	OpUpload   = "upload"
)

// ConfigurationError reports a missing credential or tool parameter.
// It is always detected before any network call.
type ConfigurationError struct {
	Key     string
	Message string
}

func (e *ConfigurationError) Error() string {
	return e.Message
}

// NewMissingCredentialError returns a ConfigurationError naming a credential key.
func NewMissingCredentialError(key string) *ConfigurationError {
	return &ConfigurationError{Key: key, Message: "Missing required credential: " + key}
}

// NewMissingParameterError returns a ConfigurationError naming a tool parameter.
func NewMissingParameterError(key string) *ConfigurationError {
	return &ConfigurationError{Key: key, Message: "Missing required parameter: " + key}
}

// TransferError reports a failed object read or write.
type TransferError struct {
	Op     string
	Bucket string
	Key    string
	Err    error
}

func (e *TransferError) Error() string {
	switch e.Op {
	case OpUpload:
		return fmt.Sprintf("Upload failed: %v", e.Err)
	default:
		return fmt.Sprintf("Failed to download object: %v", e.Err)
	}
}

func (e *TransferError) Unwrap() error {
	return e.Err
}

// PresignError reports a pre-signed URL failure after a successful transfer.
type PresignError struct {
	Key string
	Err error
}

func (e *PresignError) Error() string {
	return fmt.Sprintf("Failed to generate presigned URL: %v", e.Err)
}

func (e *PresignError) Unwrap() error {
	return e.Err
}

// EncodingFallbackError reports that a file attachment could not be built.
// It is recovered locally and never returned to the host.
type EncodingFallbackError struct {
	Key string
	Err error
}

func (e *EncodingFallbackError) Error() string {
	return fmt.Sprintf("Downloaded but failed to create file message: %v", e.Err)
}

func (e *EncodingFallbackError) Unwrap() error {
	return e.Err
}

// CredentialValidationError is returned by credential validation.
type CredentialValidationError struct {
	Err error
}

func (e *CredentialValidationError) Error() string {
	return fmt.Sprintf("credential validation failed: %v", e.Err)
}

func (e *CredentialValidationError) Unwrap() error {
	return e.Err
}
