package response

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newContext(path string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestMessage(t *testing.T) {
	c, rec := newContext("/")
	require.NoError(t, Message(c, http.StatusOK, "hi"))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"hi"}`, rec.Body.String())
}

func TestOK_Envelope(t *testing.T) {
	c, rec := newContext("/records/recent")
	require.NoError(t, OK(c, map[string]int{"n": 1}, ""))
	assert.JSONEq(t, `{"data":{"n":1},"status":200,"path":"/records/recent"}`, rec.Body.String())
}

func TestErrorHelpers(t *testing.T) {
	tests := []struct {
		name   string
		send   func(echo.Context) error
		status int
	}{
		{"bad request", func(c echo.Context) error { return BadRequest(c, "m", "e") }, http.StatusBadRequest},
		{"not found", func(c echo.Context) error { return NotFound(c, "m", "e") }, http.StatusNotFound},
		{"internal", func(c echo.Context) error { return InternalError(c, "m", "e") }, http.StatusInternalServerError},
		{"unavailable", func(c echo.Context) error { return Unavailable(c, "m", "e") }, http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := newContext("/x")
			require.NoError(t, tt.send(c))
			assert.Equal(t, tt.status, rec.Code)
			assert.Contains(t, rec.Body.String(), `"path":"/x"`)
		})
	}
}
