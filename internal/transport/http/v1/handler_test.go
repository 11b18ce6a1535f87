package v1

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/acsgmao/mcp/internal/adapter/agentclient"
	"github.com/acsgmao/mcp/internal/adapter/callback"
	"github.com/acsgmao/mcp/internal/config"
	"github.com/acsgmao/mcp/internal/dispatch"
	"github.com/acsgmao/mcp/internal/registry"
	"github.com/acsgmao/mcp/internal/service"
	"github.com/acsgmao/mcp/internal/store"
	"github.com/acsgmao/mcp/policy"
)

const testWebhookSecret = "hook-secret"

type testEnv struct {
	echo  *echo.Echo
	svc   *service.Service
	reg   *registry.Registry
	store store.Store
	cfg   *config.Config
}

// newTestEnv assembles the full stack against an in-memory audit store. The
// callback notifier stays disabled unless mutate sets a URL.
func newTestEnv(t *testing.T, mutate func(*config.Config)) *testEnv {
	t.Helper()

	cfg := &config.Config{
		WebhookAPIKey:       testWebhookSecret,
		WebhookRateLimit:    1000,
		WebhookRateBurst:    1000,
		AnalysisCapability:  "incident_analysis",
		AgentTimeout:        2 * time.Second,
		ForwardTimeout:      2 * time.Second,
		ForwardMaxAttempts:  2,
		ForwardBackoff:      5 * time.Millisecond,
		CallbackTimeout:     time.Second,
		CallbackMaxAttempts: 1,
		CallbackBackoff:     time.Millisecond,
	}
	if mutate != nil {
		mutate(cfg)
	}

	st, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "audit.db"))
	if err != nil {
		t.Fatalf("failed to open audit store: %v", err)
	}

	engine, err := policy.NewEngine(context.Background(), policy.DefaultPolicy)
	if err != nil {
		t.Fatalf("failed to prepare policy: %v", err)
	}

	reg := registry.New()
	disp := dispatch.New(reg, agentclient.NewClient(), cfg.AgentTimeout)
	notifier := callback.NewClient(cfg.CallbackURL, cfg.CallbackAPIKey, cfg.CallbackTimeout, cfg.CallbackBackoff, cfg.CallbackMaxAttempts)
	svc := service.New(reg, disp, st, notifier, engine, cfg)

	e := echo.New()
	NewHandler(svc).RegisterRoutes(e)

	t.Cleanup(func() {
		svc.Drain()
		_ = st.Close()
	})

	return &testEnv{echo: e, svc: svc, reg: reg, store: st, cfg: cfg}
}

// do runs one request through the router and returns the recorder.
func (env *testEnv) do(method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	env.echo.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(http.MethodGet, "/health", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "MCP is running") {
		t.Fatalf("unexpected health body: %s", rec.Body.String())
	}
}
