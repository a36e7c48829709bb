package s3client

import (
	"bytes"
	"context"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go/logging"
	"github.com/scality/s3-tool-plugin/pkg/constants"
	"github.com/scality/s3-tool-plugin/pkg/metrics"
	"github.com/scality/s3-tool-plugin/pkg/tracing"
	"github.com/scality/s3-tool-plugin/pkg/util"
	"go.opentelemetry.io/contrib/instrumentation/github.com/aws/aws-sdk-go-v2/otelaws"
	"k8s.io/klog/v2"
)

type S3API interface {
	HeadBucket(ctx context.Context, input *s3.HeadBucketInput, opts ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
	GetObject(ctx context.Context, input *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, input *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type PresignAPI interface {
	PresignGetObject(ctx context.Context, input *s3.GetObjectInput, opts ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

var (
	_ S3API      = (*s3.Client)(nil)
	_ PresignAPI = (*s3.PresignClient)(nil)
)

var errPresignerMissing = errors.New("pre-signing is not configured for this session")

// Object is the outcome of one object read.
type Object struct {
	Key         string
	Data        []byte
	ContentType string
	Size        int64
}

// S3Client is a session bound to one endpoint and credential pair for a single invocation.
// Close must be called when the invocation ends.
type S3Client struct {
	S3Service S3API
	Presigner PresignAPI

	httpClient   *http.Client
	caBundlePath string
	closeOnce    sync.Once
	closeErr     error
}

var LoadAWSConfig = config.LoadDefaultConfig

var InitS3Client = func(ctx context.Context, params util.StorageClientParameters) (*S3Client, error) {
	var logger logging.Logger
	if params.Debug {
		logger = logging.NewStandardLogger(os.Stdout)
	} else {
		logger = nil
	}

	client := &S3Client{
		httpClient: &http.Client{
			Timeout: util.DefaultRequestTimeout,
		},
	}

	if isHTTPS(params.Endpoint) {
		client.httpClient.Transport = util.ConfigureTLSTransport(client.loadTrustAnchor(params.CABundle))
	}

	retryMaxAttempts := params.RetryMaxAttempts
	if retryMaxAttempts <= 0 {
		retryMaxAttempts = constants.DefaultRetryAttempts
	}

	awsCfg, err := LoadAWSConfig(ctx,
		config.WithRegion(params.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(params.AccessKeyID, params.SecretAccessKey, "")),
		config.WithHTTPClient(client.httpClient),
		config.WithRetryMaxAttempts(retryMaxAttempts),
		config.WithLogger(logger),
	)
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	otelaws.AppendMiddlewares(&awsCfg.APIOptions)
	awsCfg.APIOptions = append(awsCfg.APIOptions, tracing.AttachSpanAnnotationMiddleware)
	if option := metrics.S3APIOption(); option != nil {
		awsCfg.APIOptions = append(awsCfg.APIOptions, option)
	}

	s3Client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = true
		o.BaseEndpoint = aws.String(params.Endpoint)
	})

	client.S3Service = s3Client
	client.Presigner = s3.NewPresignClient(s3Client)

	klog.V(constants.LvlEvent).InfoS("S3 session initialized",
		"endpoint", params.Endpoint,
		"region", params.Region,
		"customCA", client.caBundlePath != "",
		"retryMaxAttempts", retryMaxAttempts)
	return client, nil
}

// loadTrustAnchor materializes the CA bundle as a session-owned file and loads it.
// Any failure falls back to the system trust store; verification stays on.
func (client *S3Client) loadTrustAnchor(caBundle []byte) *x509.CertPool {
	if len(caBundle) == 0 {
		return nil
	}

	path, err := util.WriteCABundle(caBundle)
	if err != nil {
		klog.ErrorS(err, "Failed to write CA bundle, using default certificate verification")
		return nil
	}
	client.caBundlePath = path

	pool, err := util.LoadCABundle(path)
	if err != nil {
		klog.ErrorS(err, "Failed to load CA bundle, using default certificate verification")
		return nil
	}
	return pool
}

// CABundlePath returns the session's CA bundle file, empty when none was written.
func (client *S3Client) CABundlePath() string {
	return client.caBundlePath
}

// Close releases the session: the CA bundle file is deleted and idle connections are dropped.
// It is safe to call more than once.
func (client *S3Client) Close() error {
	client.closeOnce.Do(func() {
		if client.httpClient != nil {
			client.httpClient.CloseIdleConnections()
		}
		client.closeErr = util.RemoveCABundle(client.caBundlePath)
		if client.closeErr != nil {
			klog.ErrorS(client.closeErr, "Failed to remove CA bundle file", "path", client.caBundlePath)
		}
	})
	return client.closeErr
}

// isHTTPS reports whether endpoint uses the https scheme, in any letter case.
func isHTTPS(endpoint string) bool {
	u, err := url.Parse(endpoint)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Scheme, "https")
}

// HeadBucket probes the bucket with the least privileged request available.
func (client *S3Client) HeadBucket(ctx context.Context, bucketName string) error {
	_, err := client.S3Service.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: &bucketName})
	return err
}

// GetObject reads a whole object into memory.
func (client *S3Client) GetObject(ctx context.Context, bucketName, key string) (*Object, error) {
	out, err := client.S3Service.GetObject(ctx, &s3.GetObjectInput{
		Bucket: &bucketName,
		Key:    &key,
	})
	if err != nil {
		return nil, err
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read object body: %w", err)
	}

	contentType := aws.ToString(out.ContentType)
	if contentType == "" {
		contentType = constants.DefaultContentType
	}

	klog.V(constants.LvlInfo).InfoS("Downloaded S3 object", "bucket", bucketName, "key", key, "size", len(data))
	return &Object{
		Key:         key,
		Data:        data,
		ContentType: contentType,
		Size:        int64(len(data)),
	}, nil
}

// PutObject writes data to key in a single request.
func (client *S3Client) PutObject(ctx context.Context, bucketName, key string, data []byte, contentType string) error {
	input := &s3.PutObjectInput{
		Bucket:        &bucketName,
		Key:           &key,
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
	}
	if contentType != "" {
		input.ContentType = &contentType
	}

	if _, err := client.S3Service.PutObject(ctx, input); err != nil {
		return err
	}
	klog.V(constants.LvlInfo).InfoS("Uploaded S3 object", "bucket", bucketName, "key", key, "size", len(data))
	return nil
}

// PresignGetObject returns a GET URL for key valid for expires.
func (client *S3Client) PresignGetObject(ctx context.Context, bucketName, key string, expires time.Duration) (string, error) {
	if client.Presigner == nil {
		return "", errPresignerMissing
	}
	req, err := client.Presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: &bucketName,
		Key:    &key,
	}, s3.WithPresignExpires(expires))
	if err != nil {
		return "", err
	}
	return req.URL, nil
}
