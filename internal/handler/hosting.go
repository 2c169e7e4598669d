package handler

import (
	"github.com/deppfellow/payhost/internal/model/hosting"
	"github.com/deppfellow/payhost/internal/server"
	"github.com/deppfellow/payhost/internal/service"
	"github.com/labstack/echo/v4"
)

type HostingHandler struct {
	Handler
	hosting *service.HostingService
}

func NewHostingHandler(s *server.Server, hostingService *service.HostingService) *HostingHandler {
	return &HostingHandler{
		Handler: NewHandler(s),
		hosting: hostingService,
	}
}

// CreateApp handles POST /heroku/create-app.
func (h *HostingHandler) CreateApp() echo.HandlerFunc {
	return Handle(h.Handler,
		func(c echo.Context, req *hosting.CreateAppRequest) (*hosting.CreateAppResponse, error) {
			return h.hosting.CreateApp(c.Request().Context(), req)
		},
		func() *hosting.CreateAppRequest { return &hosting.CreateAppRequest{} },
	)
}

// DeployApp handles POST /heroku/deploy-app.
func (h *HostingHandler) DeployApp() echo.HandlerFunc {
	return HandleMessage(h.Handler,
		func(c echo.Context, req *hosting.DeployAppRequest) (string, error) {
			if err := h.hosting.DeployApp(c.Request().Context(), req); err != nil {
				return "", err
			}
			return hosting.DeploymentInitiated, nil
		},
		func() *hosting.DeployAppRequest { return &hosting.DeployAppRequest{} },
	)
}

// AppStatus handles GET /heroku/app-status/:appId.
func (h *HostingHandler) AppStatus() echo.HandlerFunc {
	return Handle(h.Handler,
		func(c echo.Context, req *hosting.AppStatusRequest) (*hosting.AppStatusResponse, error) {
			return h.hosting.AppStatus(c.Request().Context(), req)
		},
		func() *hosting.AppStatusRequest { return &hosting.AppStatusRequest{} },
	)
}

// ToggleApp handles POST /heroku/toggle-app.
func (h *HostingHandler) ToggleApp() echo.HandlerFunc {
	return HandleMessage(h.Handler,
		func(c echo.Context, req *hosting.ToggleAppRequest) (string, error) {
			return h.hosting.ToggleApp(c.Request().Context(), req)
		},
		func() *hosting.ToggleAppRequest { return &hosting.ToggleAppRequest{} },
	)
}
