package mock

import (
	"context"
	"io"
	"strings"

	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// MockS3Client simulates the behavior of an S3 client for testing.
type MockS3Client struct {
	HeadBucketFunc func(ctx context.Context, input *s3.HeadBucketInput, opts ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
	GetObjectFunc  func(ctx context.Context, input *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObjectFunc  func(ctx context.Context, input *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// HeadBucket executes the mock HeadBucketFunc if defined, otherwise returns a default response.
func (m *MockS3Client) HeadBucket(ctx context.Context, input *s3.HeadBucketInput, opts ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	if m.HeadBucketFunc != nil {
		return m.HeadBucketFunc(ctx, input, opts...)
	}
	return &s3.HeadBucketOutput{}, nil
}

// GetObject executes the mock GetObjectFunc if defined, otherwise returns an empty object.
func (m *MockS3Client) GetObject(ctx context.Context, input *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	if m.GetObjectFunc != nil {
		return m.GetObjectFunc(ctx, input, opts...)
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(""))}, nil
}

// PutObject executes the mock PutObjectFunc if defined, otherwise returns a default response.
func (m *MockS3Client) PutObject(ctx context.Context, input *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if m.PutObjectFunc != nil {
		return m.PutObjectFunc(ctx, input, opts...)
	}
	return &s3.PutObjectOutput{}, nil
}

// MockPresigner simulates the S3 pre-sign client for testing.
type MockPresigner struct {
	PresignGetObjectFunc func(ctx context.Context, input *s3.GetObjectInput, opts ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// PresignGetObject executes the mock PresignGetObjectFunc if defined, otherwise returns a fixed URL.
func (m *MockPresigner) PresignGetObject(ctx context.Context, input *s3.GetObjectInput, opts ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
	if m.PresignGetObjectFunc != nil {
		return m.PresignGetObjectFunc(ctx, input, opts...)
	}
	return &v4.PresignedHTTPRequest{
		URL:    "https://s3.mock.endpoint/" + *input.Bucket + "/" + *input.Key + "?X-Amz-Signature=mock",
		Method: "GET",
	}, nil
}
