package handler

import (
	"fmt"
	"net/http"

	"github.com/deppfellow/payhost/internal/server"
	"github.com/deppfellow/payhost/static"
	"github.com/labstack/echo/v4"
)

// OpenAPIHandler serves the API docs UI. The page loads its JS from a CDN
// and reads /static/openapi.json.
type OpenAPIHandler struct {
	Handler
}

// NewOpenAPIHandler constructs an OpenAPIHandler.
func NewOpenAPIHandler(s *server.Server) *OpenAPIHandler {
	return &OpenAPIHandler{
		Handler: NewHandler(s),
	}
}

// ServeOpenAPIUI serves the embedded openapi.html without caching.
func (h *OpenAPIHandler) ServeOpenAPIUI(c echo.Context) error {
	templateBytes, err := static.Files.ReadFile(static.OpenAPIUI)

	c.Response().Header().Set("Cache-Control", "no-cache")

	if err != nil {
		return fmt.Errorf("failed to read OpenAPI UI template: %w", err)
	}

	if err := c.HTMLBlob(http.StatusOK, templateBytes); err != nil {
		return fmt.Errorf("failed to write HTML response: %w", err)
	}

	return nil
}
