package tools

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/scality/s3-tool-plugin/pkg/api"
	s3client "github.com/scality/s3-tool-plugin/pkg/clients/s3"
	"github.com/scality/s3-tool-plugin/pkg/constants"
	"github.com/scality/s3-tool-plugin/pkg/osperrors"
	"github.com/scality/s3-tool-plugin/pkg/util"
	"k8s.io/klog/v2"
)

// OutputMode selects how a downloaded object is returned.
type OutputMode int

const (
	OutputBase64 OutputMode = iota
	OutputFile
)

// DownloadOptions parameterizes Download for each registered tool.
type DownloadOptions struct {
	Name   string
	Output OutputMode
	// Verbose emits a progress line before base64 content.
	Verbose bool
	// HandleEmpty reports zero-byte objects as text instead of an empty attachment.
	HandleEmpty bool
}

// Download fetches one object and emits it as base64 text or a file attachment,
// followed by a pre-signed URL when requested.
func Download(ctx context.Context, cfg Config, opts DownloadOptions, inv Invocation, sink Sink) error {
	key, ok := inv.Parameters.ResolveKey()
	if !ok {
		return sendError(sink, missingKeyError())
	}

	params := util.FetchParameters(inv.Credentials)
	if err := params.Validate(); err != nil {
		return sendError(sink, err)
	}

	klog.V(constants.LvlInfo).InfoS("Downloading object", "tool", opts.Name, "bucket", params.Bucket, "key", key)

	session, err := cfg.openSession(ctx, *params)
	if err != nil {
		klog.ErrorS(err, "Failed to open S3 session", "tool", opts.Name, "endpoint", params.Endpoint)
		return sendError(sink, &osperrors.TransferError{Op: osperrors.OpDownload, Bucket: params.Bucket, Key: key, Err: err})
	}
	defer closeSession(session)

	obj, err := session.GetObject(ctx, params.Bucket, key)
	if err != nil {
		klog.ErrorS(err, "Failed to download object", "tool", opts.Name, "bucket", params.Bucket, "key", key)
		return sendError(sink, &osperrors.TransferError{Op: osperrors.OpDownload, Bucket: params.Bucket, Key: key, Err: err})
	}

	switch opts.Output {
	case OutputFile:
		err = emitFile(cfg, opts, params, obj, sink)
	default:
		err = emitBase64(opts, obj, sink)
	}
	if err != nil {
		return err
	}

	if inv.Parameters.PresignRequested() {
		return presign(ctx, session, params.Bucket, key, inv.Parameters.Expiration(), sink)
	}
	return nil
}

func emitBase64(opts DownloadOptions, obj *s3client.Object, sink Sink) error {
	if opts.Verbose {
		if err := sendText(sink, fmt.Sprintf("Downloaded object '%s' (%d bytes). Encoding to base64...", obj.Key, obj.Size)); err != nil {
			return err
		}
	}
	if obj.Size > constants.LargeObjectThreshold {
		if err := sendText(sink, "Warning: object larger than 5MB; base64 output may be very long."); err != nil {
			return err
		}
	}
	return sendText(sink, base64.StdEncoding.EncodeToString(obj.Data))
}

func emitFile(cfg Config, opts DownloadOptions, params *util.StorageClientParameters, obj *s3client.Object, sink Sink) error {
	if obj.Size == 0 && opts.HandleEmpty {
		return sendText(sink, fmt.Sprintf("Object '%s' is empty (0 bytes); no file attachment was created.", obj.Key))
	}

	msg, err := api.NewBlobMessage(obj.Data, fileNameFromKey(obj.Key), obj.ContentType, cfg.maxBlobSize())
	if err == nil {
		return sink.Send(msg)
	}

	fallback := &osperrors.EncodingFallbackError{Key: obj.Key, Err: err}
	klog.V(constants.LvlInfo).InfoS("Using text fallback for file attachment", "key", obj.Key, "reason", err.Error())

	if params.PublicURL != "" {
		return sendText(sink, strings.TrimRight(params.PublicURL, "/")+"/"+obj.Key)
	}
	return emitBase64Fallback(fallback, obj, sink)
}

func emitBase64Fallback(fallback *osperrors.EncodingFallbackError, obj *s3client.Object, sink Sink) error {
	if err := sendError(sink, fallback); err != nil {
		return err
	}

	encoded := base64.StdEncoding.EncodeToString(obj.Data)
	total := len(encoded)
	if total <= constants.FallbackBase64MaxChars {
		return sendText(sink, encoded)
	}
	if err := sendText(sink, encoded[:constants.FallbackBase64MaxChars]); err != nil {
		return err
	}
	return sendText(sink, fmt.Sprintf("Note: base64 output truncated to %d of %d characters.", constants.FallbackBase64MaxChars, total))
}

// fileNameFromKey returns the last path segment of key.
func fileNameFromKey(key string) string {
	name := key[strings.LastIndex(key, "/")+1:]
	if name == "" {
		return constants.DefaultDownloadName
	}
	return name
}

func missingKeyError() error {
	return osperrors.NewMissingParameterError(constants.ParamKey + " or " + constants.ParamKeyAlias)
}

func closeSession(session Session) {
	if err := session.Close(); err != nil {
		klog.ErrorS(err, "Failed to close S3 session")
	}
}
