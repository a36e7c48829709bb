package tools

import (
	"context"
	"fmt"

	"github.com/gabriel-vasile/mimetype"
	"github.com/scality/s3-tool-plugin/pkg/constants"
	"github.com/scality/s3-tool-plugin/pkg/osperrors"
	"github.com/scality/s3-tool-plugin/pkg/util"
	"k8s.io/klog/v2"
)

// UploadOptions parameterizes Upload for each registered tool.
type UploadOptions struct {
	Name string
	// PayloadParam is the parameter carrying the object body.
	PayloadParam string
}

// Upload writes one payload to an object in a single put, followed by a
// pre-signed URL when requested. A failed put never attempts pre-signing.
func Upload(ctx context.Context, cfg Config, opts UploadOptions, inv Invocation, sink Sink) error {
	key, ok := inv.Parameters.ResolveKey()
	if !ok {
		return sendError(sink, missingKeyError())
	}

	params := util.FetchParameters(inv.Credentials)
	if err := params.Validate(); err != nil {
		return sendError(sink, err)
	}

	payload, err := ResolvePayload(opts.PayloadParam, inv.Parameters[opts.PayloadParam])
	if err != nil {
		return sendError(sink, err)
	}
	contentType := mimetype.Detect(payload.Data).String()

	klog.V(constants.LvlInfo).InfoS("Uploading object",
		"tool", opts.Name,
		"bucket", params.Bucket,
		"key", key,
		"payload", payload.Kind.String(),
		"size", len(payload.Data),
		"contentType", contentType)

	session, err := cfg.openSession(ctx, *params)
	if err != nil {
		klog.ErrorS(err, "Failed to open S3 session", "tool", opts.Name, "endpoint", params.Endpoint)
		return sendError(sink, &osperrors.TransferError{Op: osperrors.OpUpload, Bucket: params.Bucket, Key: key, Err: err})
	}
	defer closeSession(session)

	if err := session.PutObject(ctx, params.Bucket, key, payload.Data, contentType); err != nil {
		klog.ErrorS(err, "Failed to upload object", "tool", opts.Name, "bucket", params.Bucket, "key", key)
		return sendError(sink, &osperrors.TransferError{Op: osperrors.OpUpload, Bucket: params.Bucket, Key: key, Err: err})
	}

	if err := sendText(sink, fmt.Sprintf("File uploaded successfully to s3://%s/%s", params.Bucket, key)); err != nil {
		return err
	}

	if inv.Parameters.PresignRequested() {
		return presign(ctx, session, params.Bucket, key, inv.Parameters.Expiration(), sink)
	}
	return nil
}
