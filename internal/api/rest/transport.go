package rest

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/dtroode/imagestudio/internal/api/rest/middleware"
	"github.com/dtroode/imagestudio/internal/config"
	"github.com/dtroode/imagestudio/internal/logger"
)

// NewTLSConfig builds the client TLS configuration.
// An empty caFile keeps the system roots.
func NewTLSConfig(caFile string, insecureSkipVerify bool) (*tls.Config, error) {
	tlsConfig := &tls.Config{
		MinVersion:         tls.VersionTLS12,
		InsecureSkipVerify: insecureSkipVerify, //nolint:gosec // opt-in for development backends
	}

	if caFile == "" {
		return tlsConfig, nil
	}

	pem, err := os.ReadFile(caFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read CA certificate: %w", err)
	}

	pool, err := x509.SystemCertPool()
	if err != nil || pool == nil {
		pool = x509.NewCertPool()
	}
	if !pool.AppendCertsFromPEM(pem) {
		return nil, errors.New("failed to parse CA certificate: no PEM certificates found")
	}
	tlsConfig.RootCAs = pool

	return tlsConfig, nil
}

// NewHTTPClient builds the HTTP client used for API calls: TLS settings,
// request logging and the overall request timeout.
func NewHTTPClient(cfg config.API, logger *logger.Logger) (*http.Client, error) {
	tlsConfig, err := NewTLSConfig(cfg.CACertFile, cfg.InsecureSkipVerify)
	if err != nil {
		return nil, err
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = tlsConfig

	return &http.Client{
		Transport: middleware.NewLogging(transport, logger),
		Timeout:   cfg.Timeout,
	}, nil
}
