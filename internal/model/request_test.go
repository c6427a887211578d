package model

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRequestRecord_SnapshotsRequest(t *testing.T) {
	req := httptest.NewRequest("POST", "http://example.test/?a=1", strings.NewReader("x"))
	req.Header.Set("content-type", "application/json")
	req.Header.Add("X-Trace", "one")
	req.Header.Add("X-Trace", "two")

	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.FixedZone("x", 3600))
	rec := NewRequestRecord(req, now)

	assert.Equal(t, "POST", rec.Method)
	assert.Equal(t, "/", rec.Path)
	assert.Equal(t, "a=1", rec.Query)
	assert.Equal(t, now.UTC(), rec.Timestamp)
	assert.Nil(t, rec.Body)
	assert.Equal(t, "application/json", rec.Headers["Content-Type"])
	assert.Equal(t, "one, two", rec.Headers["X-Trace"])
	assert.Equal(t, "example.test", rec.Headers["Host"])
	assert.Equal(t, []string{"Content-Type", "Host", "X-Trace"}, rec.HeaderNames())
}

func TestSetBody_EmptyBodyIsPresent(t *testing.T) {
	var rec RequestRecord
	rec.SetBody(nil)
	require.NotNil(t, rec.Body)
	assert.Equal(t, "", *rec.Body)
}

func TestHeaderSnapshot_RestoresTransferEncoding(t *testing.T) {
	req := httptest.NewRequest("POST", "/", nil)
	req.TransferEncoding = []string{"chunked"}
	h := HeaderSnapshot(req)
	assert.Equal(t, "chunked", h["Transfer-Encoding"])
}
