package middleware

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/imagestudio/internal/logger"
)

// Logging is an http.RoundTripper that tags outgoing API requests with a
// request id and logs their results.
type Logging struct {
	next   http.RoundTripper
	logger *logger.Logger
}

// NewLogging wraps next. A nil next means http.DefaultTransport.
func NewLogging(next http.RoundTripper, logger *logger.Logger) *Logging {
	if next == nil {
		next = http.DefaultTransport
	}
	return &Logging{next: next, logger: logger}
}

// RoundTrip logs method, path, duration and status for each request.
func (l *Logging) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()

	requestID, ok := RequestIDFromContext(req.Context())
	if !ok {
		requestID = uuid.New()
	}

	req = req.Clone(req.Context())
	if req.Header.Get(RequestIDHeader) == "" {
		req.Header.Set(RequestIDHeader, requestID.String())
	}

	l.logger.Debug("API request started",
		"method", req.Method,
		"path", req.URL.Path,
		"request_id", req.Header.Get(RequestIDHeader))

	resp, err := l.next.RoundTrip(req)

	duration := time.Since(start)

	if err != nil {
		l.logger.Error("API request failed",
			"method", req.Method,
			"path", req.URL.Path,
			"request_id", req.Header.Get(RequestIDHeader),
			"duration_ms", duration.Milliseconds(),
			"error", err.Error())
		return nil, err
	}

	l.logger.Debug("API request completed",
		"method", req.Method,
		"path", req.URL.Path,
		"request_id", req.Header.Get(RequestIDHeader),
		"duration_ms", duration.Milliseconds(),
		"status", resp.StatusCode)

	return resp, nil
}
