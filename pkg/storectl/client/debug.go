package client

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// loggingTransport logs every request with a short correlation ID so
// verbose output can be matched to server-side logs.
type loggingTransport struct {
	base http.RoundTripper
	log  *zap.Logger
}

func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	id := uuid.NewString()[:8]
	start := time.Now()
	t.log.Debug("request",
		zap.String("id", id),
		zap.String("method", req.Method),
		zap.String("url", req.URL.Redacted()),
	)
	resp, err := t.base.RoundTrip(req)
	if err != nil {
		t.log.Debug("request failed",
			zap.String("id", id),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err),
		)
		return nil, err
	}
	t.log.Debug("response",
		zap.String("id", id),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)
	return resp, nil
}
