// Package heroku wraps the handful of Heroku Platform API v3 calls used to
// manage hosted applications.
package heroku

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/deppfellow/payhost/internal/lib/upstream"
	"github.com/pkg/errors"
)

const (
	// ProviderName labels Heroku calls in logs and metrics.
	ProviderName = "heroku"

	acceptHeader = "application/vnd.heroku+json; version=3"

	// StatusRunning is the only app status reported as running.
	StatusRunning = "running"

	// WebProcess is the process type scaled by ScaleFormation callers.
	WebProcess = "web"
)

// App is the subset of the app entity this service reads.
type App struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Status string `json:"status"`
	WebURL string `json:"web_url"`
}

// SourceBlob is a pair of signed URLs for staging source code.
type SourceBlob struct {
	GetURL string `json:"get_url"`
	PutURL string `json:"put_url"`
}

// Source is the response of POST /apps/{app}/sources.
type Source struct {
	SourceBlob SourceBlob `json:"source_blob"`
}

// FormationUpdate sets the dyno count of one process type.
type FormationUpdate struct {
	Type     string `json:"type"`
	Quantity int    `json:"quantity"`
}

type formationBatch struct {
	Updates []FormationUpdate `json:"updates"`
}

// Client is a bearer-token client for api.heroku.com.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewClient builds a Client. httpClient may be nil, in which case an
// instrumented client with the given timeout is created.
func NewClient(baseURL, apiKey string, timeout time.Duration, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = upstream.NewHTTPClient(ProviderName, timeout)
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    httpClient,
	}
}

func (c *Client) headers() http.Header {
	h := http.Header{}
	h.Set("Authorization", "Bearer "+c.apiKey)
	h.Set("Accept", acceptHeader)
	return h
}

func (c *Client) appURL(appID string, parts ...string) string {
	u := c.baseURL + "/apps/" + url.PathEscape(appID)
	for _, p := range parts {
		u += "/" + p
	}
	return u
}

// CreateApp creates an app named name.
func (c *Client) CreateApp(ctx context.Context, name string) (*App, error) {
	var app App

	err := upstream.Do(ctx, c.http, upstream.Request{
		Provider:  ProviderName,
		Operation: "create_app",
		Method:    http.MethodPost,
		URL:       c.baseURL + "/apps",
		Header:    c.headers(),
		Body:      map[string]string{"name": name},
	}, &app)
	if err != nil {
		return nil, err
	}

	return &app, nil
}

// CreateSource requests a source slot for appID.
func (c *Client) CreateSource(ctx context.Context, appID string) (*Source, error) {
	var source Source

	err := upstream.Do(ctx, c.http, upstream.Request{
		Provider:  ProviderName,
		Operation: "create_source",
		Method:    http.MethodPost,
		URL:       c.appURL(appID, "sources"),
		Header:    c.headers(),
		Body:      struct{}{},
	}, &source)
	if err != nil {
		return nil, err
	}

	if source.SourceBlob.PutURL == "" {
		return nil, errors.New("heroku create_source: response has no put_url")
	}

	return &source, nil
}

// UploadSource points the staged source at sourceURL.
// The put URL is pre-signed, so no credentials are sent.
func (c *Client) UploadSource(ctx context.Context, putURL, sourceURL string) error {
	return upstream.Do(ctx, c.http, upstream.Request{
		Provider:  ProviderName,
		Operation: "upload_source",
		Method:    http.MethodPut,
		URL:       putURL,
		Body:      map[string]string{"url": sourceURL},
	}, nil)
}

// GetApp fetches appID.
func (c *Client) GetApp(ctx context.Context, appID string) (*App, error) {
	var app App

	err := upstream.Do(ctx, c.http, upstream.Request{
		Provider:  ProviderName,
		Operation: "get_app",
		Method:    http.MethodGet,
		URL:       c.appURL(appID),
		Header:    c.headers(),
	}, &app)
	if err != nil {
		return nil, err
	}

	return &app, nil
}

// ScaleFormation applies updates to appID's formation in one batch call.
func (c *Client) ScaleFormation(ctx context.Context, appID string, updates ...FormationUpdate) error {
	return upstream.Do(ctx, c.http, upstream.Request{
		Provider:  ProviderName,
		Operation: "scale_formation",
		Method:    http.MethodPatch,
		URL:       c.appURL(appID, "formation"),
		Header:    c.headers(),
		Body:      formationBatch{Updates: updates},
	}, nil)
}

// IsRunning reports whether status is the running sentinel. Any other value,
// including states this code does not know about, is not running.
func IsRunning(status string) bool {
	return status == StatusRunning
}
