package util

import (
	"crypto/x509"
	"errors"
	"fmt"
	"os"
)

const caBundlePattern = "s3-tool-plugin-ca-*.pem"

// CreateTempFile is a variable so tests can simulate an unwritable temp directory.
var CreateTempFile = os.CreateTemp

var errNoCertificates = errors.New("no PEM certificates found in CA bundle")

// WriteCABundle writes PEM text to a private temporary file and returns its path.
// The caller owns the file and must remove it when the session ends.
func WriteCABundle(pem []byte) (string, error) {
	file, err := CreateTempFile("", caBundlePattern)
	if err != nil {
		return "", fmt.Errorf("failed to create CA bundle file: %w", err)
	}
	path := file.Name()

	if _, err := file.Write(pem); err != nil {
		_ = file.Close()
		_ = os.Remove(path)
		return "", fmt.Errorf("failed to write CA bundle file: %w", err)
	}
	if err := file.Close(); err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("failed to close CA bundle file: %w", err)
	}
	return path, nil
}

// LoadCABundle builds a certificate pool from a PEM file.
func LoadCABundle(path string) (*x509.CertPool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read CA bundle file: %w", err)
	}
	pool := x509.NewCertPool()
	if ok := pool.AppendCertsFromPEM(data); !ok {
		return nil, errNoCertificates
	}
	return pool, nil
}

// RemoveCABundle deletes a CA bundle file. A missing file is not an error.
func RemoveCABundle(path string) error {
	if path == "" {
		return nil
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove CA bundle file: %w", err)
	}
	return nil
}
