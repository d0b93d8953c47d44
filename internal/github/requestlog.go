package github

import (
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"prstats/pkg/logger"
)

// RequestLog appends one line per outgoing API request to a file.
// Only the method and URL are recorded, never response bodies.
type RequestLog struct {
	mu   sync.Mutex
	file *os.File
}

// OpenRequestLog opens (or creates) the request log file for appending.
func OpenRequestLog(path string) (*RequestLog, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open request log %s: %w", path, err)
	}
	return &RequestLog{file: file}, nil
}

// Record writes a single request line.
func (l *RequestLog) Record(method, url string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.file, "%s %s %s\n", time.Now().UTC().Format(time.RFC3339), method, url)
}

// Close closes the underlying file.
func (l *RequestLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.file.Close()
}

// loggingTransport records every request before delegating to the
// wrapped round tripper.
type loggingTransport struct {
	next       http.RoundTripper
	requestLog *RequestLog
}

func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.requestLog != nil {
		t.requestLog.Record(req.Method, req.URL.String())
	}
	logger.WithField("url", req.URL.String()).Debugf("%s %s", req.Method, req.URL)
	return t.next.RoundTrip(req)
}
