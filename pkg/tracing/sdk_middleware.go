package tracing

import (
	"context"

	awsmiddleware "github.com/aws/aws-sdk-go-v2/aws/middleware"
	"github.com/aws/smithy-go/middleware"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"k8s.io/klog/v2"
)

const spanAnnotationMiddlewareID = "S3SpanAnnotation"

// AttachSpanAnnotationMiddleware adds the S3 request ID and call status to the span
// started for each SDK operation. Calls without a recording span are untouched.
func AttachSpanAnnotationMiddleware(stack *middleware.Stack) error {
	finalizeMiddleware := middleware.FinalizeMiddlewareFunc(spanAnnotationMiddlewareID, func(
		ctx context.Context, in middleware.FinalizeInput, next middleware.FinalizeHandler,
	) (out middleware.FinalizeOutput, metadata middleware.Metadata, err error) {
		out, metadata, err = next.HandleFinalize(ctx, in)

		span := trace.SpanFromContext(ctx)
		if !span.IsRecording() {
			return out, metadata, err
		}

		operationName := middleware.GetOperationName(ctx)
		span.SetAttributes(
			attribute.String("rpc.method", operationName),
			attribute.String("rpc.service", "S3"),
		)

		requestID, _ := awsmiddleware.GetRequestIDMetadata(metadata)
		if requestID != "" {
			span.SetAttributes(attribute.String("aws.request_id", requestID))
		}

		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "AWS operation failed")
			klog.V(4).InfoS("Annotated failed SDK span", "operation", operationName, "requestID", requestID)
		} else {
			span.SetStatus(codes.Ok, "")
		}
		return out, metadata, err
	})

	return stack.Finalize.Add(finalizeMiddleware, middleware.After)
}
