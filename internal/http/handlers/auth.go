package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/geocoder89/webtwist/internal/auth"
	"github.com/geocoder89/webtwist/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

type AuthService interface {
	Signup(ctx context.Context, email, password string) (auth.Result, error)
	Login(ctx context.Context, email, password string) (auth.Result, error)
}

type AuthHandler struct {
	svc         AuthService
	allowSignup bool
	failures    middlewares.FailureObserver
	log         *slog.Logger
}

func NewAuthHandler(svc AuthService, allowSignup bool, failures middlewares.FailureObserver, log *slog.Logger) *AuthHandler {
	if log == nil {
		log = slog.Default()
	}
	return &AuthHandler{svc: svc, allowSignup: allowSignup, failures: failures, log: log}
}

type CredentialsRequest struct {
	Email    string `json:"email" binding:"required,email,max=254"`
	Password string `json:"password" binding:"required,min=6,pwbytes"`
}

// LoginRequest does not enforce length rules; a wrong password is just wrong.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,max=254"`
	Password string `json:"password" binding:"required,pwbytes"`
}

type AuthResponse struct {
	Success   bool          `json:"success"`
	Message   string        `json:"message"`
	Token     string        `json:"token"`
	ExpiresAt time.Time     `json:"expiresAt"`
	User      auth.Identity `json:"user"`
}

func (h *AuthHandler) SignUp(ctx *gin.Context) {
	if !h.allowSignup {
		RespondForbidden(ctx, "signup_disabled", "Sign up is disabled")
		return
	}

	var req CredentialsRequest
	if !BindJSON(ctx, &req) {
		return
	}

	res, err := h.svc.Signup(ctx.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrDuplicateEmail) {
			h.observe("duplicate_email")
			RespondConflict(ctx, "duplicate_email", "An account with this email already exists")
			return
		}
		h.log.ErrorContext(ctx.Request.Context(), "signup failed", "err", err)
		RespondInternal(ctx, "Could not create account")
		return
	}

	h.log.InfoContext(ctx.Request.Context(), "account created", "account_id", res.Account.ID)
	ctx.JSON(http.StatusOK, newAuthResponse("Account created successfully", res))
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var req LoginRequest
	if !BindJSON(ctx, &req) {
		return
	}

	res, err := h.svc.Login(ctx.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			h.observe("invalid_credentials")
			RespondUnauthorized(ctx, "invalid_credentials", "Invalid email or password")
			return
		}
		h.log.ErrorContext(ctx.Request.Context(), "login failed", "err", err)
		RespondInternal(ctx, "Could not log in")
		return
	}

	ctx.JSON(http.StatusOK, newAuthResponse("Logged in successfully", res))
}

// Verify runs behind RequireAuth; reaching it means the token is good.
func (h *AuthHandler) Verify(ctx *gin.Context) {
	id, ok := middlewares.IdentityFromContext(ctx)
	if !ok {
		RespondUnauthorized(ctx, "missing_token", "Missing or malformed Authorization header")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"user":    id,
	})
}

func (h *AuthHandler) observe(code string) {
	if h.failures != nil {
		h.failures.ObserveAuthFailure(code)
	}
}

func newAuthResponse(message string, res auth.Result) AuthResponse {
	return AuthResponse{
		Success:   true,
		Message:   message,
		Token:     res.Token.Value,
		ExpiresAt: res.Token.ExpiresAt,
		User: auth.Identity{
			AccountID: res.Account.ID,
			Email:     res.Account.Email,
			Role:      res.Account.Role,
		},
	}
}
