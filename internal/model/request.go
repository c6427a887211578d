package model

import (
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// RequestRecord is the log record written for every request that reaches the
// echo endpoint. Body is nil for methods that carry no payload and non-nil
// (possibly empty) for POST.
type RequestRecord struct {
	ID         uuid.UUID         `json:"id"`
	Timestamp  time.Time         `json:"timestamp"`
	Method     string            `json:"method"`
	Path       string            `json:"path"`
	Query      string            `json:"query,omitempty"`
	RemoteAddr string            `json:"remote_addr,omitempty"`
	Headers    map[string]string `json:"headers"`
	Body       *string           `json:"body,omitempty"`
}

// NewRequestRecord snapshots method, path and headers of r. The body is left
// unset; callers that read it attach it with SetBody.
func NewRequestRecord(r *http.Request, now time.Time) RequestRecord {
	return RequestRecord{
		ID:         uuid.New(),
		Timestamp:  now.UTC(),
		Method:     r.Method,
		Path:       r.URL.Path,
		Query:      r.URL.RawQuery,
		RemoteAddr: r.RemoteAddr,
		Headers:    HeaderSnapshot(r),
	}
}

// SetBody stores body verbatim.
func (r *RequestRecord) SetBody(body []byte) {
	s := string(body)
	r.Body = &s
}

// HeaderNames returns the header names in ascending order.
func (r RequestRecord) HeaderNames() []string {
	names := make([]string, 0, len(r.Headers))
	for name := range r.Headers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HeaderSnapshot flattens the request headers into name→value pairs.
// net/http lifts Host and Transfer-Encoding out of r.Header; both are put back
// so the snapshot holds everything the client sent.
func HeaderSnapshot(r *http.Request) map[string]string {
	out := make(map[string]string, len(r.Header)+2)
	for name, values := range r.Header {
		out[http.CanonicalHeaderKey(name)] = strings.Join(values, ", ")
	}
	if r.Host != "" {
		if _, ok := out["Host"]; !ok {
			out["Host"] = r.Host
		}
	}
	if len(r.TransferEncoding) > 0 {
		if _, ok := out["Transfer-Encoding"]; !ok {
			out["Transfer-Encoding"] = strings.Join(r.TransferEncoding, ", ")
		}
	}
	return out
}
