package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/geocoder89/webtwist/internal/media"
	"github.com/gin-gonic/gin"
)

type CoverPresigner interface {
	PresignCoverUpload(ctx context.Context, contentType string) (media.Upload, error)
}

type UploadsHandler struct {
	presigner CoverPresigner
	log       *slog.Logger
}

// NewUploadsHandler accepts a nil presigner; the endpoint then answers 503.
func NewUploadsHandler(presigner CoverPresigner, log *slog.Logger) *UploadsHandler {
	if log == nil {
		log = slog.Default()
	}
	return &UploadsHandler{presigner: presigner, log: log}
}

type UploadRequest struct {
	ContentType string `json:"contentType" binding:"required,oneof=image/jpeg image/png image/webp image/gif"`
}

func (h *UploadsHandler) PresignCover(ctx *gin.Context) {
	if h.presigner == nil {
		RespondServiceUnavailable(ctx, "Object storage is not configured")
		return
	}

	var req UploadRequest
	if !BindJSON(ctx, &req) {
		return
	}

	up, err := h.presigner.PresignCoverUpload(ctx.Request.Context(), req.ContentType)
	if err != nil {
		if errors.Is(err, media.ErrUnsupportedContentType) {
			RespondBadRequest(ctx, "Unsupported content type", nil)
			return
		}
		h.log.ErrorContext(ctx.Request.Context(), "presign upload failed", "err", err)
		RespondInternal(ctx, "Could not prepare upload")
		return
	}

	ctx.JSON(http.StatusOK, up)
}
