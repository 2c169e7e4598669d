package service

import (
	"context"

	"github.com/deppfellow/payhost/internal/errs"
	"github.com/deppfellow/payhost/internal/lib/heroku"
	"github.com/deppfellow/payhost/internal/lib/identity"
	"github.com/deppfellow/payhost/internal/model/hosting"
	"github.com/deppfellow/payhost/internal/server"
	"github.com/rs/zerolog"
)

const (
	createAppFailedMessage = "Failed to create Heroku app"
	deployFailedMessage    = "Failed to deploy to Heroku"
	appStatusFailedMessage = "Failed to get app status"
	toggleFailedMessage    = "Failed to toggle app"
)

type HostingService struct {
	server *server.Server
	client *heroku.Client
}

func NewHostingService(s *server.Server, client *heroku.Client) *HostingService {
	return &HostingService{
		server: s,
		client: client,
	}
}

func (h *HostingService) CreateApp(ctx context.Context, req *hosting.CreateAppRequest) (*hosting.CreateAppResponse, error) {
	app, err := h.client.CreateApp(ctx, req.AppName)
	if err != nil {
		return nil, errs.NewUpstreamError(createAppFailedMessage, err)
	}

	zerolog.Ctx(ctx).Info().
		Str("app_id", app.ID).
		Str("app_name", app.Name).
		Str("user_id", identity.SubjectFromContext(ctx)).
		Msg("heroku app created")

	return &hosting.CreateAppResponse{AppID: app.ID}, nil
}

// DeployApp stages a source slot and points it at the repository URL.
// Only initiation is confirmed; the build itself runs on Heroku.
func (h *HostingService) DeployApp(ctx context.Context, req *hosting.DeployAppRequest) error {
	source, err := h.client.CreateSource(ctx, req.AppID)
	if err != nil {
		return errs.NewUpstreamError(deployFailedMessage, err)
	}

	if err := h.client.UploadSource(ctx, source.SourceBlob.PutURL, req.GithubURL); err != nil {
		return errs.NewUpstreamError(deployFailedMessage, err)
	}

	zerolog.Ctx(ctx).Info().
		Str("app_id", req.AppID).
		Str("user_id", identity.SubjectFromContext(ctx)).
		Msg("deployment initiated")

	return nil
}

func (h *HostingService) AppStatus(ctx context.Context, req *hosting.AppStatusRequest) (*hosting.AppStatusResponse, error) {
	app, err := h.client.GetApp(ctx, req.AppID)
	if err != nil {
		return nil, errs.NewUpstreamError(appStatusFailedMessage, err)
	}

	running := heroku.IsRunning(app.Status)

	zerolog.Ctx(ctx).Info().
		Str("app_id", req.AppID).
		Str("status", app.Status).
		Bool("is_running", running).
		Str("user_id", identity.SubjectFromContext(ctx)).
		Msg("fetched app status")

	return &hosting.AppStatusResponse{IsRunning: running}, nil
}

func (h *HostingService) ToggleApp(ctx context.Context, req *hosting.ToggleAppRequest) (string, error) {
	err := h.client.ScaleFormation(ctx, req.AppID, heroku.FormationUpdate{
		Type:     heroku.WebProcess,
		Quantity: req.Quantity(),
	})
	if err != nil {
		return "", errs.NewUpstreamError(toggleFailedMessage, err)
	}

	zerolog.Ctx(ctx).Info().
		Str("app_id", req.AppID).
		Int("quantity", req.Quantity()).
		Str("user_id", identity.SubjectFromContext(ctx)).
		Msg("app toggled")

	return req.Message(), nil
}
