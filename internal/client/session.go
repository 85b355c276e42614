package client

import (
	"context"
	"net/http"
	"time"

	"github.com/geocoder89/webtwist/internal/domain/account"
)

type User struct {
	ID    string       `json:"id"`
	Email string       `json:"email"`
	Role  account.Role `json:"role"`
}

// Session is the credential returned by Login and Signup. Callers hold it and
// pass it to every protected call; the client itself keeps no auth state.
type Session struct {
	Token     string
	ExpiresAt time.Time
	User      User
}

func (s Session) Valid() bool {
	return s.Token != "" && (s.ExpiresAt.IsZero() || time.Now().Before(s.ExpiresAt))
}

func (s Session) IsAdmin() bool {
	return s.User.Role == account.RoleAdmin
}

func (s Session) authorization() string {
	return "Bearer " + s.Token
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      User      `json:"user"`
}

func (c *Client) Signup(ctx context.Context, email, password string) (Session, error) {
	return c.authenticate(ctx, "/api/auth/signup", email, password)
}

func (c *Client) Login(ctx context.Context, email, password string) (Session, error) {
	return c.authenticate(ctx, "/api/auth/login", email, password)
}

func (c *Client) authenticate(ctx context.Context, path, email, password string) (Session, error) {
	var resp authResponse
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   path,
		body:   credentials{Email: email, Password: password},
	}, &resp)
	if err != nil {
		return Session{}, err
	}

	return Session{Token: resp.Token, ExpiresAt: resp.ExpiresAt, User: resp.User}, nil
}

// Verify asks the server whether s is still accepted and returns who it belongs to.
func (c *Client) Verify(ctx context.Context, s Session) (User, error) {
	var resp struct {
		User User `json:"user"`
	}
	if err := c.do(ctx, request{method: http.MethodGet, path: "/api/auth/verify", session: &s}, &resp); err != nil {
		return User{}, err
	}
	return resp.User, nil
}
