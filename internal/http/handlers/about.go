package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/geocoder89/webtwist/internal/domain/about"
	"github.com/gin-gonic/gin"
)

type AboutRepo interface {
	Get(ctx context.Context) (about.Page, error)
	Upsert(ctx context.Context, content string) (about.Page, error)
}

type AboutHandler struct {
	repo AboutRepo
	log  *slog.Logger
}

func NewAboutHandler(repo AboutRepo, log *slog.Logger) *AboutHandler {
	if log == nil {
		log = slog.Default()
	}
	return &AboutHandler{repo: repo, log: log}
}

func (h *AboutHandler) Get(ctx *gin.Context) {
	page, err := h.repo.Get(ctx.Request.Context())
	if err != nil {
		if errors.Is(err, about.ErrNotFound) {
			// the site renders an empty section rather than an error page
			ctx.JSON(http.StatusNotFound, gin.H{"content": ""})
			return
		}
		h.log.ErrorContext(ctx.Request.Context(), "get about failed", "err", err)
		RespondInternal(ctx, "Could not fetch about content")
		return
	}

	ctx.JSON(http.StatusOK, page)
}

func (h *AboutHandler) Update(ctx *gin.Context) {
	var req about.UpdateRequest
	if !BindJSON(ctx, &req) {
		return
	}

	if _, err := h.repo.Upsert(ctx.Request.Context(), req.Content); err != nil {
		h.log.ErrorContext(ctx.Request.Context(), "update about failed", "err", err)
		RespondInternal(ctx, "Could not update about content")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Updated successfully"})
}
