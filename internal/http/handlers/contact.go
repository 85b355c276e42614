package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/geocoder89/webtwist/internal/captcha"
	"github.com/geocoder89/webtwist/internal/domain/contact"
	"github.com/geocoder89/webtwist/internal/jobs"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ContactsRepo interface {
	Create(ctx context.Context, m contact.Message) error
	List(ctx context.Context) ([]contact.Message, error)
	UpdateMessage(ctx context.Context, id, message string) (contact.Message, error)
	Delete(ctx context.Context, id string) error
}

type CaptchaService interface {
	New(ctx context.Context) (captcha.Challenge, error)
	Verify(ctx context.Context, id, answer string) error
}

type ContactHandler struct {
	repo     ContactsRepo
	captcha  CaptchaService
	enqueuer jobs.Enqueuer
	metrics  ContentMetrics
	now      func() time.Time
	log      *slog.Logger
}

func NewContactHandler(repo ContactsRepo, captcha CaptchaService, enqueuer jobs.Enqueuer, log *slog.Logger) *ContactHandler {
	if log == nil {
		log = slog.Default()
	}
	return &ContactHandler{
		repo:     repo,
		captcha:  captcha,
		enqueuer: enqueuer,
		metrics:  noMetrics{},
		now:      time.Now,
		log:      log,
	}
}

func (h *ContactHandler) WithMetrics(m ContentMetrics) *ContactHandler {
	if m != nil {
		h.metrics = m
	}
	return h
}

func (h *ContactHandler) Captcha(ctx *gin.Context) {
	ch, err := h.captcha.New(ctx.Request.Context())
	if err != nil {
		h.log.ErrorContext(ctx.Request.Context(), "captcha create failed", "err", err)
		RespondInternal(ctx, "Could not create captcha")
		return
	}

	ctx.Header("Cache-Control", "no-store")
	ctx.JSON(http.StatusOK, ch)
}

func (h *ContactHandler) Create(ctx *gin.Context) {
	var req contact.CreateRequest
	if !BindJSON(ctx, &req) {
		return
	}

	rctx := ctx.Request.Context()

	if err := h.captcha.Verify(rctx, req.CaptchaID, strings.TrimSpace(req.CaptchaAnswer)); err != nil {
		if errors.Is(err, captcha.ErrMismatch) {
			h.metrics.ObserveContact("captcha_rejected")
			RespondError(ctx, http.StatusBadRequest, "captcha_mismatch", "Captcha answer is incorrect or expired", nil)
			return
		}
		h.log.ErrorContext(rctx, "captcha verify failed", "err", err)
		RespondInternal(ctx, "Could not verify captcha")
		return
	}

	now := h.now().UTC()
	msg := contact.Message{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(req.Name),
		Email:     strings.TrimSpace(req.Email),
		Message:   req.Message,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := h.repo.Create(rctx, msg); err != nil {
		h.log.ErrorContext(rctx, "create contact failed", "err", err)
		RespondInternal(ctx, "Could not save message")
		return
	}

	// the message is already stored; a failed notification must not fail the request
	if h.enqueuer != nil {
		err := h.enqueuer.EnqueueContactNotification(rctx, jobs.ContactNotificationPayload{
			MessageID:   msg.ID,
			Name:        msg.Name,
			Email:       msg.Email,
			Message:     msg.Message,
			SubmittedAt: now,
			RequestID:   requestIDFrom(ctx),
		})
		if err != nil {
			h.metrics.ObserveContact("notify_failed")
			h.log.WarnContext(rctx, "contact notification not queued", "message_id", msg.ID, "err", err)
		}
	}

	h.metrics.ObserveContact("accepted")
	ctx.JSON(http.StatusCreated, msg)
}

func (h *ContactHandler) List(ctx *gin.Context) {
	msgs, err := h.repo.List(ctx.Request.Context())
	if err != nil {
		h.log.ErrorContext(ctx.Request.Context(), "list contacts failed", "err", err)
		RespondInternal(ctx, "Could not list messages")
		return
	}
	if msgs == nil {
		msgs = []contact.Message{}
	}

	ctx.JSON(http.StatusOK, msgs)
}

func (h *ContactHandler) Update(ctx *gin.Context) {
	var req contact.UpdateRequest
	if !BindJSON(ctx, &req) {
		return
	}

	id := ctx.Param("id")
	msg, err := h.repo.UpdateMessage(ctx.Request.Context(), id, req.Message)
	if err != nil {
		if errors.Is(err, contact.ErrNotFound) {
			RespondNotFound(ctx, "Message not found")
			return
		}
		h.log.ErrorContext(ctx.Request.Context(), "update contact failed", "message_id", id, "err", err)
		RespondInternal(ctx, "Could not update message")
		return
	}

	ctx.JSON(http.StatusOK, msg)
}

func (h *ContactHandler) Delete(ctx *gin.Context) {
	id := ctx.Param("id")

	if err := h.repo.Delete(ctx.Request.Context(), id); err != nil {
		if errors.Is(err, contact.ErrNotFound) {
			RespondNotFound(ctx, "Message not found")
			return
		}
		h.log.ErrorContext(ctx.Request.Context(), "delete contact failed", "message_id", id, "err", err)
		RespondInternal(ctx, "Could not delete message")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Message deleted successfully"})
}
