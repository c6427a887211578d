package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dushyant25398/Persistent-Systems/internal/model"
)

type memBuffer struct {
	mu      sync.Mutex
	records []model.RequestRecord
}

func (b *memBuffer) Insert(rec model.RequestRecord) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.records = append(b.records, rec)
}

func (b *memBuffer) Last() model.RequestRecord {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.records[len(b.records)-1]
}

// syncBuffer is a bytes.Buffer safe for concurrent log writes.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (s *syncBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Write(p)
}

func (s *syncBuffer) lines(t *testing.T) []map[string]any {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(s.buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &m))
		out = append(out, m)
	}
	return out
}

func newEcho(h *EchoHandler) *echo.Echo {
	e := echo.New()
	e.GET("/", h.Home)
	e.POST("/", h.Home)
	return e
}

func TestHome_GetWithoutHeaders(t *testing.T) {
	logs := &syncBuffer{}
	buf := &memBuffer{}
	h := &EchoHandler{Logger: zerolog.New(logs), Buffer: buf}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	newEcho(h).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message": "Hello from Flask!"}`, rec.Body.String())

	lines := logs.lines(t)
	require.Len(t, lines, 1)
	assert.Equal(t, "incoming request", lines[0]["message"])
	assert.Equal(t, "GET", lines[0]["method"])
	assert.Equal(t, "/", lines[0]["path"])
	assert.NotContains(t, lines[0], "body")
	assert.Nil(t, buf.Last().Body)
}

func TestHome_PostLogsHeadersAndBody(t *testing.T) {
	logs := &syncBuffer{}
	buf := &memBuffer{}
	h := &EchoHandler{Logger: zerolog.New(logs), Buffer: buf}

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"test":"data"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-Source", "loadgen")
	rec := httptest.NewRecorder()
	newEcho(h).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message": "Hello from Flask!"}`, rec.Body.String())

	lines := logs.lines(t)
	require.Len(t, lines, 1)
	assert.Equal(t, "POST", lines[0]["method"])
	assert.Equal(t, `{"test":"data"}`, lines[0]["body"])

	headers, ok := lines[0]["headers"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "application/json", headers["Content-Type"])
	assert.Equal(t, "loadgen", headers["X-Request-Source"])
	assert.Equal(t, "example.com", headers["Host"])

	got := buf.Last()
	require.NotNil(t, got.Body)
	assert.Equal(t, `{"test":"data"}`, *got.Body)
}

func TestHome_LogsEveryHeader(t *testing.T) {
	logs := &syncBuffer{}
	h := &EchoHandler{Logger: zerolog.New(logs)}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sent := map[string]string{
		"accept":          "*/*",
		"User-Agent":      "curl/8.5.0",
		"X-Forwarded-For": "10.0.0.1",
		"x-custom-thing":  "v",
	}
	for k, v := range sent {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	newEcho(h).ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	headers := logs.lines(t)[0]["headers"].(map[string]any)
	for k, v := range sent {
		assert.Equal(t, v, headers[http.CanonicalHeaderKey(k)], k)
	}
}

func TestHome_PostEmptyBody(t *testing.T) {
	logs := &syncBuffer{}
	h := &EchoHandler{Logger: zerolog.New(logs)}

	req := httptest.NewRequest(http.MethodPost, "/", http.NoBody)
	rec := httptest.NewRecorder()
	newEcho(h).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	lines := logs.lines(t)
	require.Len(t, lines, 1)
	body, present := lines[0]["body"]
	require.True(t, present)
	assert.Equal(t, "", body)
}

func TestHome_BodyIsNotInterpreted(t *testing.T) {
	payloads := []string{
		`{"unterminated":`,
		"plain text with\nnewlines",
		"ünïcödé ✓",
		strings.Repeat("x", 64*1024),
	}
	for _, p := range payloads {
		logs := &syncBuffer{}
		h := &EchoHandler{Logger: zerolog.New(logs)}

		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(p))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		newEcho(h).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, p, logs.lines(t)[0]["body"])
	}
}

func TestHome_ConcurrentPostsDoNotMix(t *testing.T) {
	logs := &syncBuffer{}
	buf := &memBuffer{}
	h := &EchoHandler{Logger: zerolog.New(logs), Buffer: buf}
	e := newEcho(h)

	const n = 32
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			body := strings.Repeat(string(rune('a'+i%26)), 100+i)
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
			req.Header.Set("X-Seq", body[:1])
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusOK, rec.Code)
		}(i)
	}
	wg.Wait()

	lines := logs.lines(t)
	require.Len(t, lines, n)
	for _, line := range lines {
		body := line["body"].(string)
		seq := line["headers"].(map[string]any)["X-Seq"].(string)
		assert.Equal(t, body[:1], seq)
		assert.Equal(t, strings.Repeat(body[:1], len(body)), body)
	}
	assert.Len(t, buf.records, n)
}

func TestHome_BodyLimitRejects(t *testing.T) {
	logs := &syncBuffer{}
	buf := &memBuffer{}
	h := &EchoHandler{Logger: zerolog.New(logs), Buffer: buf}
	e := echo.New()
	e.Use(middleware.BodyLimit("1K"))
	e.POST("/", h.Home)

	// no Content-Length, so the limit trips while reading
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(strings.Repeat("x", 4096)))
	req.ContentLength = -1
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Empty(t, buf.records)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("connection reset") }

func TestHome_ReadErrorIsAServerError(t *testing.T) {
	h := &EchoHandler{Logger: zerolog.Nop()}
	req := httptest.NewRequest(http.MethodPost, "/", failingReader{})
	rec := httptest.NewRecorder()
	newEcho(h).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHome_UsesClock(t *testing.T) {
	at := time.Date(2026, 5, 6, 7, 8, 9, 0, time.UTC)
	buf := &memBuffer{}
	h := &EchoHandler{Logger: zerolog.Nop(), Buffer: buf, Now: func() time.Time { return at }}

	rec := httptest.NewRecorder()
	newEcho(h).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/?trace=1", nil))

	got := buf.Last()
	assert.Equal(t, at, got.Timestamp)
	assert.Equal(t, "trace=1", got.Query)
}
