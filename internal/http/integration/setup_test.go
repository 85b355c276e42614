package integration_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/geocoder89/webtwist/internal/auth"
	"github.com/geocoder89/webtwist/internal/captcha"
	"github.com/geocoder89/webtwist/internal/client"
	"github.com/geocoder89/webtwist/internal/config"
	"github.com/geocoder89/webtwist/internal/db"
	apphttp "github.com/geocoder89/webtwist/internal/http"
	"github.com/geocoder89/webtwist/internal/http/handlers"
	"github.com/geocoder89/webtwist/internal/jobs"
	"github.com/geocoder89/webtwist/internal/notifications"
	"github.com/geocoder89/webtwist/internal/observability"
	"github.com/geocoder89/webtwist/internal/repo/memory"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	adminEmail    = "admin@example.com"
	adminPassword = "admin-pass-123"
	captchaCode   = "3333"
)

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type recordingNotifier struct {
	mu     sync.Mutex
	alerts []notifications.ContactAlert
}

func (n *recordingNotifier) SendContactAlert(_ context.Context, a notifications.ContactAlert) error {
	n.mu.Lock()
	n.alerts = append(n.alerts, a)
	n.mu.Unlock()
	return nil
}

func (n *recordingNotifier) sent() []notifications.ContactAlert {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notifications.ContactAlert(nil), n.alerts...)
}

type fixedDigits byte

func (b fixedDigits) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = byte(b)
	}
	return len(p), nil
}

type testApp struct {
	srv      *httptest.Server
	client   *client.Client
	accounts *memory.AccountsRepo
	tokens   *auth.Manager
	clock    *clock
	notifier *recordingNotifier
	prom     *observability.Prom
}

func testConfig() config.Config {
	return config.Config{
		Env:                "test",
		JWTSecret:          "integration-secret",
		JWTTTLHours:        1,
		AdminEmail:         adminEmail,
		AdminPassword:      adminPassword,
		AllowSignup:        true,
		CORSOrigins:        []string{"http://localhost:5173"},
		RateLimitPerMinute: 100,
		MaxBodyBytes:       1 << 20,
	}
}

func newTestApp(t *testing.T, mutate func(*config.Config)) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := testConfig()
	if mutate != nil {
		mutate(&cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("config: %v", err)
	}

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	reg := prometheus.NewRegistry()
	prom := observability.NewProm(reg)

	clk := &clock{t: time.Now().UTC()}
	accounts := memory.NewAccountsRepo()
	tokens := auth.NewManager(cfg.JWTSecret, cfg.TokenTTL()).WithClock(clk.now)

	if _, err := db.EnsureAdminUser(context.Background(), accounts, cfg); err != nil {
		t.Fatalf("seed admin: %v", err)
	}

	notifier := &recordingNotifier{}
	protected := notifications.NewProtectedNotifier(notifier, notifications.ProtectedNotifierConfig{})

	router := apphttp.NewRouter(apphttp.Deps{
		Config:   cfg,
		Log:      log,
		Prom:     prom,
		Gatherer: reg,
		Auth:     auth.NewService(accounts, tokens),
		Blogs:    memory.NewBlogsRepo(),
		About:    memory.NewAboutRepo(),
		Contacts: memory.NewContactsRepo(),
		Captcha:  captcha.NewService(captcha.NewMemoryStore(), captcha.DefaultTTL).WithRand(fixedDigits(3)),
		Enqueuer: jobs.InlineEnqueuer{Handle: func(ctx context.Context, p jobs.ContactNotificationPayload) error {
			return protected.SendContactAlert(ctx, p.Alert())
		}},
		Checks: map[string]handlers.Check{
			"store": func(context.Context) error { return nil },
		},
	})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return &testApp{
		srv:      srv,
		client:   client.New(srv.URL),
		accounts: accounts,
		tokens:   tokens,
		clock:    clk,
		notifier: notifier,
		prom:     prom,
	}
}

func (a *testApp) adminSession(t *testing.T) client.Session {
	t.Helper()
	s, err := a.client.Login(context.Background(), adminEmail, adminPassword)
	if err != nil {
		t.Fatalf("admin login: %v", err)
	}
	return s
}

func (a *testApp) get(t *testing.T, path string, headers ...string) *http.Response {
	t.Helper()
	return a.send(t, http.MethodGet, path, "", headers...)
}

func (a *testApp) send(t *testing.T, method, path, body string, headers ...string) *http.Response {
	t.Helper()

	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, a.srv.URL+path, rdr)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	resp, err := a.srv.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}
