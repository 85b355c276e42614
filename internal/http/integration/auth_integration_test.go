package integration_test

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/geocoder89/webtwist/internal/auth"
	"github.com/geocoder89/webtwist/internal/client"
	"github.com/geocoder89/webtwist/internal/config"
	"github.com/geocoder89/webtwist/internal/domain/account"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func errorCodeOf(t *testing.T, resp *http.Response) string {
	t.Helper()

	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return body.Error.Code
}

func TestAuth_SignupLoginVerify(t *testing.T) {
	app := newTestApp(t, nil)
	ctx := context.Background()

	signed, err := app.client.Signup(ctx, "Writer@Example.com", "secret1")
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if signed.User.Email != "writer@example.com" || signed.User.Role != account.RoleAdmin {
		t.Fatalf("unexpected user %+v", signed.User)
	}

	logged, err := app.client.Login(ctx, "writer@example.com", "secret1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if logged.User.ID != signed.User.ID {
		t.Fatalf("login resolved %s, signup created %s", logged.User.ID, signed.User.ID)
	}

	user, err := app.client.Verify(ctx, logged)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if user.ID != signed.User.ID {
		t.Fatalf("verify resolved %s", user.ID)
	}

	wantTTL := time.Hour
	if got := logged.ExpiresAt.Sub(app.clock.now()); got < wantTTL-time.Second || got > wantTTL+time.Second {
		t.Fatalf("expected ~1h ttl, got %s", got)
	}
}

func TestAuth_RejectedCredentials(t *testing.T) {
	app := newTestApp(t, nil)
	ctx := context.Background()

	if _, err := app.client.Signup(ctx, "ADMIN@example.com", "another1"); !client.IsCode(err, "duplicate_email") {
		t.Fatalf("expected duplicate_email, got %v", err)
	}

	_, wrongPassword := app.client.Login(ctx, adminEmail, "not-the-password")
	_, unknownEmail := app.client.Login(ctx, "ghost@example.com", "whatever1")

	for _, err := range []error{wrongPassword, unknownEmail} {
		if !client.IsCode(err, "invalid_credentials") {
			t.Fatalf("expected invalid_credentials, got %v", err)
		}
	}
	if wrongPassword.Error() != unknownEmail.Error() {
		t.Fatalf("unknown email must look like a wrong password: %q vs %q", wrongPassword, unknownEmail)
	}

	if _, err := app.client.Signup(ctx, "short@example.com", "12345"); !client.IsCode(err, "invalid_request") {
		t.Fatalf("expected invalid_request for short password, got %v", err)
	}
}

func TestAuth_PasswordLimitIsInBytes(t *testing.T) {
	app := newTestApp(t, nil)
	ctx := context.Background()

	fits := strings.Repeat("é", 36)
	if _, err := app.client.Signup(ctx, "multi@example.com", fits); err != nil {
		t.Fatalf("signup with 72-byte password: %v", err)
	}
	if _, err := app.client.Login(ctx, "multi@example.com", fits); err != nil {
		t.Fatalf("login with 72-byte password: %v", err)
	}

	if _, err := app.client.Signup(ctx, "long@example.com", strings.Repeat("é", 40)); !client.IsCode(err, "invalid_request") {
		t.Fatalf("expected invalid_request for 80-byte password, got %v", err)
	}
}

func TestAuth_SignupDisabled(t *testing.T) {
	app := newTestApp(t, func(c *config.Config) { c.AllowSignup = false })

	_, err := app.client.Signup(context.Background(), "new@example.com", "secret1")
	if !client.IsCode(err, "signup_disabled") {
		t.Fatalf("expected signup_disabled, got %v", err)
	}

	// the seeded admin still logs in
	app.adminSession(t)
}

func TestAuth_VerifierRejections(t *testing.T) {
	app := newTestApp(t, nil)
	admin := app.adminSession(t)

	foreign, err := auth.NewManager("some-other-secret", time.Hour).Issue(account.Account{ID: admin.User.ID, Role: account.RoleAdmin})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	tests := []struct {
		name   string
		header string
		code   string
	}{
		{name: "missing", header: "", code: "missing_token"},
		{name: "wrong_scheme", header: "Token " + admin.Token, code: "missing_token"},
		{name: "empty_bearer", header: "Bearer ", code: "missing_token"},
		{name: "garbage", header: "Bearer not.a.jwt", code: "invalid_token"},
		{name: "tampered", header: "Bearer " + tamper(admin.Token), code: "invalid_token"},
		{name: "foreign_secret", header: "Bearer " + foreign.Value, code: "invalid_token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var headers []string
			if tt.header != "" {
				headers = []string{"Authorization", tt.header}
			}
			resp := app.get(t, "/api/auth/verify", headers...)

			if resp.StatusCode != http.StatusUnauthorized {
				t.Fatalf("status %d, want 401", resp.StatusCode)
			}
			if got := errorCodeOf(t, resp); got != tt.code {
				t.Fatalf("code %q, want %q", got, tt.code)
			}
		})
	}

	if got := testutil.ToFloat64(app.prom.AuthFailuresTotal.WithLabelValues("invalid_token")); got != 3 {
		t.Fatalf("expected 3 invalid_token failures recorded, got %v", got)
	}
}

// tamper flips one character in the middle of the signature segment.
func tamper(token string) string {
	i := strings.LastIndex(token, ".") + 10
	b := []byte(token)
	if b[i] == 'A' {
		b[i] = 'B'
	} else {
		b[i] = 'A'
	}
	return string(b)
}

func TestAuth_ExpiredToken(t *testing.T) {
	app := newTestApp(t, nil)
	admin := app.adminSession(t)

	app.clock.advance(time.Hour - time.Second)
	if _, err := app.client.Verify(context.Background(), admin); err != nil {
		t.Fatalf("token should still be valid just before expiry: %v", err)
	}

	app.clock.advance(2 * time.Second)
	_, err := app.client.Verify(context.Background(), admin)
	if !client.IsCode(err, "token_expired") {
		t.Fatalf("expected token_expired, got %v", err)
	}

	// a fresh login works again
	if _, err := app.client.Verify(context.Background(), app.adminSession(t)); err != nil {
		t.Fatalf("fresh session rejected: %v", err)
	}
}

func TestAuth_DeletedAccountLosesAccess(t *testing.T) {
	app := newTestApp(t, nil)
	ctx := context.Background()

	s, err := app.client.Signup(ctx, "temp@example.com", "secret1")
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if err := app.accounts.Delete(ctx, s.User.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if _, err := app.client.Verify(ctx, s); !client.IsCode(err, "account_not_found") {
		t.Fatalf("expected account_not_found, got %v", err)
	}
}

func TestAdminRoutes_RoleGate(t *testing.T) {
	app := newTestApp(t, nil)
	ctx := context.Background()

	viewer, err := app.accounts.Create(ctx, "viewer@example.com", "unused-hash", account.Role("viewer"))
	if err != nil {
		t.Fatalf("create viewer: %v", err)
	}
	tok, err := app.tokens.Issue(viewer)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	viewerSession := client.Session{Token: tok.Value, ExpiresAt: tok.ExpiresAt}

	// the verifier alone accepts any valid identity
	if _, err := app.client.Verify(ctx, viewerSession); err != nil {
		t.Fatalf("viewer verify: %v", err)
	}

	if _, err := app.client.AdminListBlogs(ctx, viewerSession); !client.IsCode(err, "forbidden") {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if err := app.client.UpdateAbout(ctx, viewerSession, "nope"); !client.IsCode(err, "forbidden") {
		t.Fatalf("expected forbidden on about, got %v", err)
	}

	for _, path := range []string{"/api/blog/admin/all", "/api/contact"} {
		resp := app.get(t, path)
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("%s without token: status %d", path, resp.StatusCode)
		}
	}

	if _, err := app.client.AdminListBlogs(ctx, app.adminSession(t)); err != nil {
		t.Fatalf("admin listing: %v", err)
	}

	if got := testutil.ToFloat64(app.prom.AuthFailuresTotal.WithLabelValues("forbidden")); got != 2 {
		t.Fatalf("expected 2 forbidden failures, got %v", got)
	}
}

func TestAuth_LoginIsRateLimited(t *testing.T) {
	app := newTestApp(t, func(c *config.Config) { c.RateLimitPerMinute = 2 })
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := app.client.Login(ctx, adminEmail, "wrong-password"); !client.IsCode(err, "invalid_credentials") {
			t.Fatalf("attempt %d: %v", i, err)
		}
	}

	_, err := app.client.Login(ctx, adminEmail, adminPassword)
	if !client.IsCode(err, "rate_limited") {
		t.Fatalf("expected rate_limited, got %v", err)
	}
}
