package router

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/deppfellow/payhost/internal/config"
	"github.com/deppfellow/payhost/internal/handler"
	"github.com/deppfellow/payhost/internal/lib/identity"
	"github.com/deppfellow/payhost/internal/lib/razorpay"
	"github.com/deppfellow/payhost/internal/middleware"
	"github.com/deppfellow/payhost/internal/server"
	"github.com/deppfellow/payhost/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	validToken   = "good-token"
	testKeyID    = "rzp_test_key"
	testSecret   = "rzp_test_secret"
	testSubject  = "user_123"
	testGithub   = "https://github.com/acme/site"
	testHerokuID = "app-1"
)

type fakeVerifier struct {
	calls atomic.Int32
}

func (f *fakeVerifier) Name() string { return "fake" }

func (f *fakeVerifier) Verify(_ context.Context, token string) (*identity.Identity, error) {
	f.calls.Add(1)
	if token == validToken {
		return &identity.Identity{Subject: testSubject, Provider: "fake"}, nil
	}
	return nil, identity.ErrInvalidToken
}

// fakeRazorpay records order requests and echoes them back as created orders.
type fakeRazorpay struct {
	mu     sync.Mutex
	orders     []razorpay.OrderRequest
	requestIDs []string
	fail       atomic.Bool
}

func (f *fakeRazorpay) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if f.fail.Load() {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":"BAD_REQUEST_ERROR","description":"secret provider detail"}}`))
		return
	}

	var req razorpay.OrderRequest
	_ = json.NewDecoder(r.Body).Decode(&req)

	f.mu.Lock()
	f.orders = append(f.orders, req)
	f.requestIDs = append(f.requestIDs, r.Header.Get(middleware.RequestIDHeader))
	f.mu.Unlock()

	_ = json.NewEncoder(w).Encode(map[string]any{
		"id":       "order_Abc123",
		"amount":   req.Amount,
		"currency": req.Currency,
		"receipt":  req.Receipt,
		"status":   "created",
	})
}

func (f *fakeRazorpay) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.orders)
}

// fakeHeroku implements the Platform API calls used by the hosting endpoints.
type fakeHeroku struct {
	mu        sync.Mutex
	status    string
	fail      atomic.Bool
	uploaded  string
	formation []map[string]any
	srv       *httptest.Server
}

func (f *fakeHeroku) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /apps", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		_ = json.NewEncoder(w).Encode(map[string]string{"id": testHerokuID, "name": body["name"]})
	})
	mux.HandleFunc("POST /apps/{app}/sources", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"source_blob": map[string]string{
				"get_url": f.srv.URL + "/blob/get",
				"put_url": f.srv.URL + "/blob/put",
			},
		})
	})
	mux.HandleFunc("PUT /blob/put", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.mu.Lock()
		f.uploaded = body["url"]
		f.mu.Unlock()
	})
	mux.HandleFunc("GET /apps/{app}", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		status := f.status
		f.mu.Unlock()
		_ = json.NewEncoder(w).Encode(map[string]string{"id": r.PathValue("app"), "status": status})
	})
	mux.HandleFunc("PATCH /apps/{app}/formation", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Updates []map[string]any `json:"updates"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.mu.Lock()
		f.formation = body.Updates
		f.mu.Unlock()
		_ = json.NewEncoder(w).Encode(body.Updates)
	})

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if f.fail.Load() {
			w.WriteHeader(http.StatusUnprocessableEntity)
			_, _ = w.Write([]byte(`{"id":"invalid_params","message":"secret provider detail"}`))
			return
		}
		mux.ServeHTTP(w, r)
	})
}

type testApp struct {
	e        *echo.Echo
	verifier *fakeVerifier
	razorpay *fakeRazorpay
	heroku   *fakeHeroku
}

func newTestApp(t *testing.T, mutate ...func(*config.Config)) *testApp {
	t.Helper()

	rz := &fakeRazorpay{}
	rzSrv := httptest.NewServer(rz)
	t.Cleanup(rzSrv.Close)

	hk := &fakeHeroku{status: "running"}
	hk.srv = httptest.NewServer(hk.handler())
	t.Cleanup(hk.srv.Close)

	cfg := config.Defaults()
	cfg.Primary.Env = "test"
	cfg.Auth.SecretKey = "sk_test"
	cfg.Razorpay.KeyID = testKeyID
	cfg.Razorpay.KeySecret = testSecret
	cfg.Razorpay.BaseURL = rzSrv.URL
	cfg.Heroku.APIKey = "heroku-key"
	cfg.Heroku.BaseURL = hk.srv.URL
	for _, m := range mutate {
		m(cfg)
	}

	logger := zerolog.Nop()
	srv, err := server.New(cfg, &logger, nil)
	require.NoError(t, err)

	services, err := service.NewServices(srv)
	require.NoError(t, err)

	verifier := &fakeVerifier{}
	services.Auth = service.NewAuthServiceWithVerifier(srv, verifier)

	e := NewRouter(handler.NewHandlers(srv, services), middleware.NewMiddlewares(srv, services))

	return &testApp{e: e, verifier: verifier, razorpay: rz, heroku: hk}
}

type envelope struct {
	Success bool           `json:"success"`
	Data    map[string]any `json:"data"`
	Message string         `json:"message"`
	Error   string         `json:"error"`
}

func (a *testApp) do(t *testing.T, method, path, body, token string) (int, envelope) {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)

	var env envelope
	if strings.HasPrefix(rec.Header().Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	}

	return rec.Code, env
}

var protectedRoutes = []struct {
	method string
	path   string
	body   string
}{
	{http.MethodPost, "/create-razorpay-order", `{"amount":500}`},
	{http.MethodPost, "/verify-razorpay-payment", `{"razorpay_order_id":"o","razorpay_payment_id":"p","razorpay_signature":"s"}`},
	{http.MethodPost, "/heroku/create-app", `{"appName":"my-app"}`},
	{http.MethodPost, "/heroku/deploy-app", `{"appId":"app-1","githubUrl":"https://github.com/acme/site"}`},
	{http.MethodGet, "/heroku/app-status/app-1", ``},
	{http.MethodPost, "/heroku/toggle-app", `{"appId":"app-1","enable":true}`},
	{http.MethodGet, "/does-not-exist", ``},
	{http.MethodDelete, "/create-razorpay-order", ``},
}

func TestAuthGate(t *testing.T) {
	app := newTestApp(t)

	for _, route := range protectedRoutes {
		t.Run(route.method+" "+route.path, func(t *testing.T) {
			status, env := app.do(t, route.method, route.path, route.body, "")
			assert.Equal(t, http.StatusUnauthorized, status)
			assert.False(t, env.Success)
			assert.Equal(t, middleware.NoTokenMessage, env.Error)

			status, env = app.do(t, route.method, route.path, route.body, "expired-token")
			assert.Equal(t, http.StatusUnauthorized, status)
			assert.Equal(t, middleware.InvalidTokenMessage, env.Error)
		})
	}

	assert.Zero(t, app.razorpay.calls(), "no provider call without a valid token")
}

func TestAuthGateRejectsMalformedHeader(t *testing.T) {
	app := newTestApp(t)

	for _, header := range []string{"Basic dXNlcjpwYXNz", "Bearer", "Bearer   ", "bearer good-token", validToken} {
		req := httptest.NewRequest(http.MethodGet, "/heroku/app-status/app-1", nil)
		req.Header.Set(echo.HeaderAuthorization, header)
		rec := httptest.NewRecorder()
		app.e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code, header)
		assert.Contains(t, rec.Body.String(), middleware.NoTokenMessage, header)
	}

	assert.Zero(t, app.verifier.calls.Load(), "verifier must not be called for malformed headers")
}

func TestUnknownRouteWithToken(t *testing.T) {
	app := newTestApp(t)

	status, env := app.do(t, http.MethodGet, "/does-not-exist", "", validToken)

	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, envelope{Success: false, Error: "Route not found"}, env)
}

func TestCreateOrder(t *testing.T) {
	app := newTestApp(t)

	status, env := app.do(t, http.MethodPost, "/create-razorpay-order", `{"amount":500}`, validToken)

	require.Equal(t, http.StatusOK, status)
	assert.True(t, env.Success)
	assert.Equal(t, "order_Abc123", env.Data["orderId"])
	assert.Equal(t, float64(50000), env.Data["amount"])
	assert.Equal(t, "INR", env.Data["currency"])
	assert.Equal(t, testKeyID, env.Data["keyId"])

	require.Equal(t, 1, app.razorpay.calls())
	sent := app.razorpay.orders[0]
	assert.Equal(t, int64(50000), sent.Amount)
	assert.Equal(t, "INR", sent.Currency)
	assert.Regexp(t, `^receipt_\d{13}$`, sent.Receipt)
}

func TestCreateOrderCurrencyAndDecimals(t *testing.T) {
	app := newTestApp(t)

	status, env := app.do(t, http.MethodPost, "/create-razorpay-order", `{"amount":12.34,"currency":"usd"}`, validToken)

	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(1234), env.Data["amount"])
	assert.Equal(t, "USD", env.Data["currency"])
}

func TestCreateOrderRejectsBadAmounts(t *testing.T) {
	app := newTestApp(t)

	tests := []struct {
		body string
		want string
	}{
		{`{}`, "Missing required field: amount"},
		{`{"amount":null}`, "Missing required field: amount"},
		{`{"amount":0}`, "Amount must be greater than 0"},
		{`{"amount":-100}`, "Amount must be greater than 0"},
		{`{"amount":-0.01}`, "Amount must be greater than 0"},
		{`{"amount":1.001}`, "Amount must have at most 2 decimal places"},
		{`{"amount":184467440737095521.16}`, "Amount is too large"},
		{`{"amount":92233720368547758.08}`, "Amount is too large"},
		{`{"amount":"lots"}`, "Invalid request body"},
		{`{"amount":`, "Invalid request body"},
	}

	for _, tt := range tests {
		t.Run(tt.body, func(t *testing.T) {
			status, env := app.do(t, http.MethodPost, "/create-razorpay-order", tt.body, validToken)
			assert.Equal(t, http.StatusBadRequest, status)
			assert.Equal(t, envelope{Success: false, Error: tt.want}, env)
		})
	}

	assert.Zero(t, app.razorpay.calls())
}

func TestCreateOrderLargestAmount(t *testing.T) {
	app := newTestApp(t)

	status, env := app.do(t, http.MethodPost, "/create-razorpay-order", `{"amount":92233720368547758.07}`, validToken)

	require.Equal(t, http.StatusOK, status, env.Error)
	require.Equal(t, 1, app.razorpay.calls())
	assert.Equal(t, int64(math.MaxInt64), app.razorpay.orders[0].Amount)
}

func TestCreateOrderProviderFailure(t *testing.T) {
	app := newTestApp(t)
	app.razorpay.fail.Store(true)

	status, env := app.do(t, http.MethodPost, "/create-razorpay-order", `{"amount":500}`, validToken)

	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, envelope{Success: false, Error: "Failed to create Razorpay order"}, env)
}

func TestPaymentsDisabled(t *testing.T) {
	app := newTestApp(t, func(cfg *config.Config) {
		cfg.Razorpay.KeySecret = ""
	})

	for _, route := range protectedRoutes[:2] {
		t.Run(route.path, func(t *testing.T) {
			status, env := app.do(t, route.method, route.path, route.body, validToken)
			assert.Equal(t, http.StatusServiceUnavailable, status)
			assert.Equal(t, envelope{Success: false, Error: "API not added"}, env)

			// Even an invalid body gets 503: the gate runs before validation.
			status, _ = app.do(t, route.method, route.path, `{}`, validToken)
			assert.Equal(t, http.StatusServiceUnavailable, status)

			// Auth still comes first.
			status, _ = app.do(t, route.method, route.path, route.body, "")
			assert.Equal(t, http.StatusUnauthorized, status)
		})
	}

	assert.Zero(t, app.razorpay.calls(), "no outbound payment call when disabled")
}

func TestVerifyPayment(t *testing.T) {
	app := newTestApp(t)

	good := razorpay.Signature("order_1", "pay_1", testSecret)
	body := func(sig string) string {
		return `{"razorpay_order_id":"order_1","razorpay_payment_id":"pay_1","razorpay_signature":"` + sig + `"}`
	}

	t.Run("matching signature", func(t *testing.T) {
		status, env := app.do(t, http.MethodPost, "/verify-razorpay-payment", body(good), validToken)
		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, envelope{Success: true, Message: "Payment verified successfully"}, env)
	})

	t.Run("mismatched signature is a 400, not a 401", func(t *testing.T) {
		bad := razorpay.Signature("order_1", "pay_1", "some-other-secret")
		status, env := app.do(t, http.MethodPost, "/verify-razorpay-payment", body(bad), validToken)
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, envelope{Success: false, Error: "Payment verification failed"}, env)
	})

	t.Run("missing field", func(t *testing.T) {
		status, env := app.do(t, http.MethodPost, "/verify-razorpay-payment",
			`{"razorpay_order_id":"order_1","razorpay_payment_id":"pay_1"}`, validToken)
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "Missing required field: razorpay_signature", env.Error)
	})
}

func TestCreateApp(t *testing.T) {
	app := newTestApp(t)

	status, env := app.do(t, http.MethodPost, "/heroku/create-app", `{"appName":"my-app"}`, validToken)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, testHerokuID, env.Data["appId"])

	status, env = app.do(t, http.MethodPost, "/heroku/create-app", `{"appName":""}`, validToken)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Missing required field: appName", env.Error)
}

func TestDeployApp(t *testing.T) {
	app := newTestApp(t)

	status, env := app.do(t, http.MethodPost, "/heroku/deploy-app",
		`{"appId":"app-1","githubUrl":"`+testGithub+`"}`, validToken)

	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, envelope{Success: true, Message: "Deployment initiated"}, env)
	app.heroku.mu.Lock()
	assert.Equal(t, testGithub, app.heroku.uploaded)
	app.heroku.mu.Unlock()

	status, env = app.do(t, http.MethodPost, "/heroku/deploy-app", `{"appId":"app-1"}`, validToken)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Missing required field: githubUrl", env.Error)
}

func TestAppStatus(t *testing.T) {
	app := newTestApp(t)

	tests := []struct {
		status  string
		running bool
	}{
		{"running", true},
		{"idle", false},
		{"crashed", false},
		{"Running", false},
		{"some-future-state", false},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			app.heroku.mu.Lock()
			app.heroku.status = tt.status
			app.heroku.mu.Unlock()

			code, env := app.do(t, http.MethodGet, "/heroku/app-status/app-1", "", validToken)
			require.Equal(t, http.StatusOK, code)
			assert.True(t, env.Success)
			assert.Equal(t, map[string]any{"isRunning": tt.running}, env.Data)
		})
	}
}

func TestToggleApp(t *testing.T) {
	app := newTestApp(t)

	tests := []struct {
		body     string
		quantity float64
		message  string
	}{
		{`{"appId":"app-1","enable":true}`, 1, "App enabled"},
		{`{"appId":"app-1","enable":false}`, 0, "App disabled"},
	}

	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			status, env := app.do(t, http.MethodPost, "/heroku/toggle-app", tt.body, validToken)
			require.Equal(t, http.StatusOK, status)
			assert.Equal(t, envelope{Success: true, Message: tt.message}, env)

			app.heroku.mu.Lock()
			formation := app.heroku.formation
			app.heroku.mu.Unlock()

			require.Len(t, formation, 1)
			assert.Equal(t, "web", formation[0]["type"])
			assert.Equal(t, tt.quantity, formation[0]["quantity"])
		})
	}

	status, env := app.do(t, http.MethodPost, "/heroku/toggle-app", `{"appId":"app-1"}`, validToken)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Missing required field: enable", env.Error)
}

func TestHostingProviderFailures(t *testing.T) {
	app := newTestApp(t)
	app.heroku.fail.Store(true)

	tests := []struct {
		method, path, body, want string
	}{
		{http.MethodPost, "/heroku/create-app", `{"appName":"my-app"}`, "Failed to create Heroku app"},
		{http.MethodPost, "/heroku/deploy-app", `{"appId":"app-1","githubUrl":"https://github.com/acme/site"}`, "Failed to deploy to Heroku"},
		{http.MethodGet, "/heroku/app-status/app-1", ``, "Failed to get app status"},
		{http.MethodPost, "/heroku/toggle-app", `{"appId":"app-1","enable":true}`, "Failed to toggle app"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			status, env := app.do(t, tt.method, tt.path, tt.body, validToken)
			assert.Equal(t, http.StatusInternalServerError, status)
			assert.Equal(t, envelope{Success: false, Error: tt.want}, env)
		})
	}
}

func TestPanicIsEnveloped(t *testing.T) {
	app := newTestApp(t)
	app.e.GET("/boom", func(c echo.Context) error {
		panic("unexpected")
	})

	status, env := app.do(t, http.MethodGet, "/boom", "", validToken)

	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, envelope{Success: false, Error: "Internal server error"}, env)
}

func TestSystemRoutesNeedNoToken(t *testing.T) {
	app := newTestApp(t, func(cfg *config.Config) {
		cfg.Razorpay.KeyID = ""
	})

	status, env := app.do(t, http.MethodGet, "/status", "", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "degraded", env.Data["status"])

	for _, path := range []string{"/docs", "/static/openapi.json", "/metrics"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		app.e.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}

func TestRequestIDIsEchoed(t *testing.T) {
	app := newTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	req.Header.Set(middleware.RequestIDHeader, "req-42")
	rec := httptest.NewRecorder()
	app.e.ServeHTTP(rec, req)

	assert.Equal(t, "req-42", rec.Header().Get(middleware.RequestIDHeader))
}

func TestRequestIDReachesProvider(t *testing.T) {
	app := newTestApp(t)

	req := httptest.NewRequest(http.MethodPost, "/create-razorpay-order", strings.NewReader(`{"amount":10}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+validToken)
	req.Header.Set(middleware.RequestIDHeader, "req-from-client")
	rec := httptest.NewRecorder()
	app.e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 1, app.razorpay.calls())
	assert.Equal(t, []string{"req-from-client"}, app.razorpay.requestIDs)
}

func TestOversizedRequestIDIsReplaced(t *testing.T) {
	app := newTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	req.Header.Set(middleware.RequestIDHeader, strings.Repeat("x", 500))
	rec := httptest.NewRecorder()
	app.e.ServeHTTP(rec, req)

	got := rec.Header().Get(middleware.RequestIDHeader)
	assert.NotEmpty(t, got)
	assert.Len(t, got, 36)
}
