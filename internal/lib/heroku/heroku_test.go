package heroku

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/deppfellow/payhost/internal/lib/upstream"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertPlatformHeaders(t *testing.T, r *http.Request) {
	t.Helper()
	assert.Equal(t, "Bearer heroku-key", r.Header.Get("Authorization"))
	assert.Equal(t, "application/vnd.heroku+json; version=3", r.Header.Get("Accept"))
}

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, "heroku-key", 5*time.Second, nil)
}

func TestCreateApp(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/apps", r.URL.Path)
		assertPlatformHeaders(t, r)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "my-app", body["name"])

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"01234567-89ab-cdef-0123-456789abcdef","name":"my-app"}`))
	}))

	app, err := client.CreateApp(context.Background(), "my-app")
	require.NoError(t, err)
	assert.Equal(t, "01234567-89ab-cdef-0123-456789abcdef", app.ID)
}

func TestCreateAndUploadSource(t *testing.T) {
	var uploaded map[string]string

	mux := http.NewServeMux()
	var putURL string
	mux.HandleFunc("POST /apps/{app}/sources", func(w http.ResponseWriter, r *http.Request) {
		assertPlatformHeaders(t, r)
		assert.Equal(t, "app-1", r.PathValue("app"))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"source_blob": map[string]string{"get_url": "https://get.example/1", "put_url": putURL},
		})
	})
	mux.HandleFunc("PUT /upload/1", func(w http.ResponseWriter, r *http.Request) {
		// Pre-signed URL: the platform token must not leak here.
		assert.Empty(t, r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&uploaded))
		w.WriteHeader(http.StatusOK)
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()
	putURL = srv.URL + "/upload/1"

	client := NewClient(srv.URL, "heroku-key", 5*time.Second, nil)

	source, err := client.CreateSource(context.Background(), "app-1")
	require.NoError(t, err)
	assert.Equal(t, putURL, source.SourceBlob.PutURL)

	require.NoError(t, client.UploadSource(context.Background(), source.SourceBlob.PutURL, "https://github.com/acme/site"))
	assert.Equal(t, "https://github.com/acme/site", uploaded["url"])
}

func TestCreateSourceWithoutPutURL(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"source_blob":{}}`))
	}))

	_, err := client.CreateSource(context.Background(), "app-1")
	require.Error(t, err)
}

func TestGetAppEscapesID(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/apps/a%2Fb", r.URL.EscapedPath())
		_, _ = w.Write([]byte(`{"id":"x","status":"running"}`))
	}))

	app, err := client.GetApp(context.Background(), "a/b")
	require.NoError(t, err)
	assert.True(t, IsRunning(app.Status))
}

func TestScaleFormation(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/apps/app-1/formation", r.URL.Path)
		assertPlatformHeaders(t, r)

		var body formationBatch
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Len(t, body.Updates, 1)
		assert.Equal(t, FormationUpdate{Type: "web", Quantity: 0}, body.Updates[0])

		_, _ = w.Write([]byte(`[{"type":"web","quantity":0}]`))
	}))

	require.NoError(t, client.ScaleFormation(context.Background(), "app-1", FormationUpdate{Type: WebProcess, Quantity: 0}))
}

func TestProviderError(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"id":"not_found","message":"Couldn't find that app."}`))
	}))

	_, err := client.GetApp(context.Background(), "missing")

	var upstreamErr *upstream.Error
	require.True(t, errors.As(err, &upstreamErr))
	assert.Equal(t, http.StatusNotFound, upstreamErr.StatusCode)
	assert.Equal(t, "get_app", upstreamErr.Operation)
}

func TestIsRunning(t *testing.T) {
	for _, status := range []string{"idle", "crashed", "starting", "Running", "running ", "", "some-new-state"} {
		assert.False(t, IsRunning(status), status)
	}
	assert.True(t, IsRunning("running"))
}
