package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/dushyant25398/Persistent-Systems/internal/handler"
)

// route is one entry of a listener's routing table.
type route struct {
	method  string
	path    string
	handler echo.HandlerFunc
}

// echoRoutes is the complete public surface. HEAD answers like GET with the
// body suppressed. Anything else falls through to the router's 404/405 handling.
func echoRoutes(h *handler.EchoHandler) []route {
	return []route{
		{http.MethodGet, "/", h.Home},
		{http.MethodHead, "/", h.Home},
		{http.MethodPost, "/", h.Home},
	}
}

func adminRoutes(h *handler.AdminHandler, tail http.HandlerFunc) []route {
	return []route{
		{http.MethodGet, "/healthz", h.Healthz},
		{http.MethodGet, "/readyz", h.Readyz},
		{http.MethodGet, "/records/recent", h.RecentRecords},
		{http.MethodGet, "/records/status", h.ArchiveStatus},
		{http.MethodGet, "/records/tail", echo.WrapHandler(tail)},
		{http.MethodGet, "/archive/objects", h.ListArchive},
		{http.MethodGet, "/archive/objects/content", h.ArchiveContent},
	}
}

func register(e *echo.Echo, routes []route) {
	for _, r := range routes {
		e.Add(r.method, r.path, r.handler)
	}
}
