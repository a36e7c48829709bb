package util

import (
	"crypto/tls"
	"crypto/x509"
	"net/http"
	"strings"
	"time"

	"github.com/scality/s3-tool-plugin/pkg/constants"
	"github.com/scality/s3-tool-plugin/pkg/osperrors"
)

// Constants for storage client configuration
const (
	DefaultRegion         = "us-east-1"
	DefaultRequestTimeout = 2 * time.Minute
)

// CredentialSet is the credential mapping supplied by the host for one invocation.
type CredentialSet map[string]string

// Get returns the first non-empty value among keys.
func (c CredentialSet) Get(keys ...string) string {
	for _, key := range keys {
		if value := strings.TrimSpace(c[key]); value != "" {
			return value
		}
	}
	return ""
}

// StorageClientParameters holds configuration for one S3 session.
type StorageClientParameters struct {
	AccessKeyID      string
	SecretAccessKey  string
	Endpoint         string
	Region           string
	Bucket           string
	CABundle         []byte // Optional PEM trust anchors
	PublicURL        string // Optional base for fallback links
	RetryMaxAttempts int
	Debug            bool // Optional field for SDK request logging
}

// NewStorageClientParameters initializes default storage client parameters.
func NewStorageClientParameters() *StorageClientParameters {
	return &StorageClientParameters{
		Region:           DefaultRegion,
		RetryMaxAttempts: constants.DefaultRetryAttempts,
		Debug:            false,
	}
}

// FetchParameters maps a host credential set onto storage client parameters.
// It performs no validation; call Validate before opening a session.
func FetchParameters(creds CredentialSet) *StorageClientParameters {
	params := NewStorageClientParameters()
	params.Endpoint = creds.Get(constants.CredEndpoint)
	params.AccessKeyID = creds.Get(constants.CredAccessKey)
	params.SecretAccessKey = creds.Get(constants.CredSecretKey)
	params.Bucket = creds.Get(constants.CredBucket, constants.CredBucketLegacy)
	params.PublicURL = creds.Get(constants.CredPublicURL)
	if region := creds.Get(constants.CredRegion); region != "" {
		params.Region = region
	}
	if caBundle := creds.Get(constants.CredCABundle); caBundle != "" {
		params.CABundle = []byte(caBundle)
	}
	return params
}

// Validate checks that all required fields are set, in the order the host documents them.
func (p *StorageClientParameters) Validate() error {
	if p.Endpoint == "" {
		return osperrors.NewMissingCredentialError(constants.CredEndpoint)
	}
	if p.AccessKeyID == "" {
		return osperrors.NewMissingCredentialError(constants.CredAccessKey)
	}
	if p.SecretAccessKey == "" {
		return osperrors.NewMissingCredentialError(constants.CredSecretKey)
	}
	if p.Bucket == "" {
		return &osperrors.ConfigurationError{
			Key:     constants.CredBucket,
			Message: "Missing bucket credential: " + constants.CredBucket + " or " + constants.CredBucketLegacy,
		}
	}
	return nil
}

// ConfigureTLSTransport returns a transport that always verifies server certificates.
// A nil pool means the system trust store.
func ConfigureTLSTransport(rootCAs *x509.CertPool) *http.Transport {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = &tls.Config{
		MinVersion: tls.VersionTLS12,
		RootCAs:    rootCAs,
	}
	return transport
}
