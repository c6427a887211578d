package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/dushyant25398/Persistent-Systems/internal/infrastructure/sinks"
	"github.com/dushyant25398/Persistent-Systems/internal/model"
	"github.com/dushyant25398/Persistent-Systems/internal/response"
)

// RecentSource returns the most recent records, newest first.
type RecentSource interface {
	Recent() []model.RequestRecord
}

// AdminHandler serves the probe and inspection endpoints of the admin listener.
// Archive is nil when no configured sink can be browsed.
type AdminHandler struct {
	Recent  RecentSource
	Status  func() model.ArchiveStatus
	Archive sinks.ArchiveBrowser
	Ready   func(ctx context.Context) error
}

// Healthz answers liveness probes (GET /healthz).
func (h *AdminHandler) Healthz(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// Readyz answers readiness probes (GET /readyz).
func (h *AdminHandler) Readyz(c echo.Context) error {
	if h.Ready != nil {
		if err := h.Ready(c.Request().Context()); err != nil {
			return response.Unavailable(c, "not ready", err.Error())
		}
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ready"})
}

// RecentRecords returns the in-memory record window (GET /records/recent).
func (h *AdminHandler) RecentRecords(c echo.Context) error {
	return response.OK(c, map[string]any{"records": h.Recent.Recent()}, "")
}

// ArchiveStatus reports batcher progress (GET /records/status).
func (h *AdminHandler) ArchiveStatus(c echo.Context) error {
	var st model.ArchiveStatus
	if h.Status != nil {
		st = h.Status()
	}
	return response.OK(c, st, "")
}

// ListArchive lists archived batch objects (GET /archive/objects).
func (h *AdminHandler) ListArchive(c echo.Context) error {
	if h.Archive == nil {
		return response.OK(c, map[string]any{"objects": []any{}}, "archive not configured")
	}
	list, err := h.Archive.ListObjects(c.Request().Context(), c.QueryParam("prefix"))
	if err != nil {
		return response.InternalError(c, "list archive failed", err.Error())
	}
	return response.OK(c, map[string]any{"objects": list}, "")
}

// ArchiveContent returns the records of one archived batch (GET /archive/objects/content).
func (h *AdminHandler) ArchiveContent(c echo.Context) error {
	if h.Archive == nil {
		return response.NotFound(c, "archive not configured", "no browsable archive sink")
	}
	key := c.QueryParam("key")
	if key == "" {
		return response.BadRequest(c, "missing key", "query param key is required")
	}
	records, err := h.Archive.GetObjectRecords(c.Request().Context(), key)
	if err != nil {
		return response.InternalError(c, "read archive object failed", err.Error())
	}
	return response.OK(c, map[string]any{"records": records, "key": key}, "")
}
