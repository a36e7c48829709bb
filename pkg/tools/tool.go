// Package tools implements the object transfer tools exposed to the host runtime.
package tools

import (
	"context"
	"time"

	"github.com/scality/s3-tool-plugin/pkg/api"
	s3client "github.com/scality/s3-tool-plugin/pkg/clients/s3"
	"github.com/scality/s3-tool-plugin/pkg/constants"
	"github.com/scality/s3-tool-plugin/pkg/osperrors"
	"github.com/scality/s3-tool-plugin/pkg/util"
	"k8s.io/klog/v2"
)

// Sink receives the output messages of one invocation, in order.
// An error from Send aborts the invocation.
type Sink interface {
	Send(*api.Message) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(*api.Message) error

func (f SinkFunc) Send(m *api.Message) error {
	return f(m)
}

// Session is the part of an S3 session the tools rely on.
type Session interface {
	GetObject(ctx context.Context, bucketName, key string) (*s3client.Object, error)
	PutObject(ctx context.Context, bucketName, key string, data []byte, contentType string) error
	PresignGetObject(ctx context.Context, bucketName, key string, expires time.Duration) (string, error)
	Close() error
}

var _ Session = (*s3client.S3Client)(nil)

// SessionFactory opens a session for one invocation.
type SessionFactory func(ctx context.Context, params util.StorageClientParameters) (Session, error)

// NewS3Session opens a session through the S3 client package.
func NewS3Session(ctx context.Context, params util.StorageClientParameters) (Session, error) {
	client, err := s3client.InitS3Client(ctx, params)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// Config holds process-wide tool settings.
type Config struct {
	// MaxBlobSize bounds file attachments; larger objects use the text fallback.
	MaxBlobSize int64
	// Debug enables SDK request logging.
	Debug      bool
	NewSession SessionFactory
}

func (c Config) maxBlobSize() int64 {
	if c.MaxBlobSize <= 0 {
		return constants.DefaultMaxBlobSize
	}
	return c.MaxBlobSize
}

func (c Config) openSession(ctx context.Context, params util.StorageClientParameters) (Session, error) {
	params.Debug = c.Debug
	if c.NewSession == nil {
		return NewS3Session(ctx, params)
	}
	return c.NewSession(ctx, params)
}

// Invocation is one tool call.
type Invocation struct {
	Credentials util.CredentialSet
	Parameters  Parameters
}

// Handler runs a tool and pushes its messages to sink.
type Handler func(ctx context.Context, inv Invocation, sink Sink) error

// Tool is a named operation registered with the host.
type Tool struct {
	Name        string
	Description string
	Run         Handler
}

// DefaultTools returns the four transfer tools bound to cfg.
func DefaultTools(cfg Config) []Tool {
	return []Tool{
		{
			Name:        constants.ActionDownloadBase64,
			Description: "Download an object and return its content as base64 text, optionally with a pre-signed URL.",
			Run: func(ctx context.Context, inv Invocation, sink Sink) error {
				return Download(ctx, cfg, DownloadOptions{Name: constants.ActionDownloadBase64, Output: OutputBase64, Verbose: true}, inv, sink)
			},
		},
		{
			Name:        constants.ActionDownloadFile,
			Description: "Download an object and return it as a file attachment, optionally with a pre-signed URL.",
			Run: func(ctx context.Context, inv Invocation, sink Sink) error {
				return Download(ctx, cfg, DownloadOptions{Name: constants.ActionDownloadFile, Output: OutputFile, HandleEmpty: true}, inv, sink)
			},
		},
		{
			Name:        constants.ActionUploadBase64,
			Description: "Upload base64 encoded content to an object, optionally returning a pre-signed URL.",
			Run: func(ctx context.Context, inv Invocation, sink Sink) error {
				return Upload(ctx, cfg, UploadOptions{Name: constants.ActionUploadBase64, PayloadParam: constants.ParamPayloadBase64}, inv, sink)
			},
		},
		{
			Name:        constants.ActionUploadFile,
			Description: "Upload a file to an object, optionally returning a pre-signed URL.",
			Run: func(ctx context.Context, inv Invocation, sink Sink) error {
				return Upload(ctx, cfg, UploadOptions{Name: constants.ActionUploadFile, PayloadParam: constants.ParamPayloadFile}, inv, sink)
			},
		},
	}
}

func sendText(sink Sink, text string) error {
	return sink.Send(api.NewTextMessage(text))
}

func sendError(sink Sink, err error) error {
	return sendText(sink, err.Error())
}

// presign emits the pre-signed URL message, or the failure message. It is attempted once.
func presign(ctx context.Context, session Session, bucket, key string, expires time.Duration, sink Sink) error {
	url, err := session.PresignGetObject(ctx, bucket, key, expires)
	if err != nil {
		klog.ErrorS(err, "Failed to generate presigned URL", "bucket", bucket, "key", key)
		return sendError(sink, &osperrors.PresignError{Key: key, Err: err})
	}
	return sendText(sink, "Presigned URL: "+url)
}
