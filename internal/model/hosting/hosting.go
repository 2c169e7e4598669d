// Package hosting holds the request and response shapes of the Heroku endpoints.
package hosting

import (
	"github.com/deppfellow/payhost/internal/validation"
)

const (
	DeploymentInitiated = "Deployment initiated"
	AppEnabled          = "App enabled"
	AppDisabled         = "App disabled"
)

type CreateAppRequest struct {
	AppName string `json:"appName" validate:"required"`
}

func (r *CreateAppRequest) Validate() error {
	return validation.Struct(r)
}

type CreateAppResponse struct {
	AppID string `json:"appId"`
}

type DeployAppRequest struct {
	AppID     string `json:"appId" validate:"required"`
	GithubURL string `json:"githubUrl" validate:"required,url"`
}

func (r *DeployAppRequest) Validate() error {
	return validation.Struct(r)
}

// AppStatusRequest carries the :appId path parameter.
type AppStatusRequest struct {
	AppID string `param:"appId" validate:"required"`
}

func (r *AppStatusRequest) Validate() error {
	return validation.Struct(r)
}

type AppStatusResponse struct {
	IsRunning bool `json:"isRunning"`
}

// ToggleAppRequest scales the app's web process up (enable) or down.
// Enable is a pointer so that an explicit false is distinguishable from a missing field.
type ToggleAppRequest struct {
	AppID  string `json:"appId" validate:"required"`
	Enable *bool  `json:"enable" validate:"required"`
}

func (r *ToggleAppRequest) Validate() error {
	return validation.Struct(r)
}

// Quantity is the web dyno count the toggle asks for.
func (r *ToggleAppRequest) Quantity() int {
	if r.Enable != nil && *r.Enable {
		return 1
	}
	return 0
}

// Message is the success message for the toggle.
func (r *ToggleAppRequest) Message() string {
	if r.Quantity() == 1 {
		return AppEnabled
	}
	return AppDisabled
}
