package logbus

import "time"

// Record captures the outcome of a single served request. Exactly one
// Record is published per processed request, including 404 fallbacks and
// 500 error paths.
type Record struct {
	// Timestamp is the request start time, RFC3339 in UTC.
	Timestamp string `json:"timestamp"`

	// Method is the HTTP method as seen on the wire.
	Method string `json:"method"`

	// Path is the full virtual path as seen by the client.
	Path string `json:"path"`

	// StatusCode is the response status.
	StatusCode uint16 `json:"status_code"`

	// ResponseSize is the number of body bytes written, nil when not
	// determinable.
	ResponseSize *uint64 `json:"response_size"`

	// ResponseTimeMs is wall time from accept to response flush.
	ResponseTimeMs uint64 `json:"response_time_ms"`
}

// NewRecord builds a Record with the timestamp formatted from start.
func NewRecord(start time.Time, method, path string, status uint16, size *uint64, elapsed time.Duration) *Record {
	ms := elapsed.Milliseconds()
	if ms < 0 {
		ms = 0
	}
	return &Record{
		Timestamp:      start.UTC().Format(time.RFC3339),
		Method:         method,
		Path:           path,
		StatusCode:     status,
		ResponseSize:   size,
		ResponseTimeMs: uint64(ms),
	}
}
