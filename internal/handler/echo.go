package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/dushyant25398/Persistent-Systems/internal/model"
	"github.com/dushyant25398/Persistent-Systems/internal/response"
)

// HelloMessage is the fixed acknowledgment body.
const HelloMessage = "Hello from Flask!"

// RecordBuffer receives every record after it has been logged.
type RecordBuffer interface {
	Insert(model.RequestRecord)
}

// EchoHandler logs each request it receives and acknowledges it. It holds no
// state between requests.
type EchoHandler struct {
	Logger zerolog.Logger
	Buffer RecordBuffer
	Now    func() time.Time
}

// Home serves GET / and POST /.
func (h *EchoHandler) Home(c echo.Context) error {
	req := c.Request()
	rec := model.NewRequestRecord(req, h.now())

	if req.Method == http.MethodPost {
		body, err := io.ReadAll(req.Body)
		if err != nil {
			h.Logger.Warn().Err(err).
				Str("record_id", rec.ID.String()).
				Str("method", rec.Method).
				Str("path", rec.Path).
				Msg("request body unreadable")
			return bodyError(err)
		}
		rec.SetBody(body)
	}

	h.log(rec)
	if h.Buffer != nil {
		h.Buffer.Insert(rec)
	}
	return response.Message(c, http.StatusOK, HelloMessage)
}

func (h *EchoHandler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

func (h *EchoHandler) log(rec model.RequestRecord) {
	headers := zerolog.Dict()
	for _, name := range rec.HeaderNames() {
		headers.Str(name, rec.Headers[name])
	}

	ev := h.Logger.Info().
		Str("record_id", rec.ID.String()).
		Time("received_at", rec.Timestamp).
		Str("method", rec.Method).
		Str("path", rec.Path)
	if rec.Query != "" {
		ev = ev.Str("query", rec.Query)
	}
	ev = ev.Str("remote_addr", rec.RemoteAddr).Dict("headers", headers)
	if rec.Body != nil {
		ev = ev.Str("body", *rec.Body)
	}
	ev.Msg("incoming request")
}

// bodyError keeps limiter rejections as HTTP errors; anything else becomes a 500.
func bodyError(err error) error {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he
	}
	var mbe *http.MaxBytesError
	if errors.As(err, &mbe) {
		return echo.ErrStatusRequestEntityTooLarge
	}
	return fmt.Errorf("read request body: %w", err)
}
