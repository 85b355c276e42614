package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/geocoder89/webtwist/internal/cache"
	"github.com/geocoder89/webtwist/internal/domain/blog"
	"github.com/geocoder89/webtwist/internal/utils"
	"github.com/gin-gonic/gin"
)

const (
	publicCacheTTL = 30 * time.Second
	maxCachedPages = 256
	maxSearchLen   = 100
	// one past the longest storable tag, so a cut value still matches nothing
	maxTagQueryLen = 41
	slugAttempts   = 3
)

type BlogsRepo interface {
	Create(ctx context.Context, p blog.Post) error
	SlugExists(ctx context.Context, slug, excludeID string) (bool, error)
	List(ctx context.Context, f blog.ListFilter) ([]blog.Post, int, error)
	Featured(ctx context.Context, limit int) ([]blog.Post, error)
	ListAll(ctx context.Context) ([]blog.Post, error)
	GetByID(ctx context.Context, id string) (blog.Post, error)
	ViewBySlug(ctx context.Context, slug string) (blog.Post, error)
	Update(ctx context.Context, p blog.Post) (blog.Post, error)
	TogglePublished(ctx context.Context, id string) (blog.Post, error)
	ToggleFeatured(ctx context.Context, id string) (blog.Post, error)
	Delete(ctx context.Context, id string) error
}

// ContentMetrics records public cache effectiveness and contact form outcomes.
type ContentMetrics interface {
	ObserveCache(cache string, hit bool)
	ObserveContact(outcome string)
}

type noMetrics struct{}

func (noMetrics) ObserveCache(string, bool) {}
func (noMetrics) ObserveContact(string) {}

type BlogsHandler struct {
	repo     BlogsRepo
	pages    *cache.Cache[blog.Page]
	featured *cache.Cache[[]blog.Post]
	metrics  ContentMetrics
	now      func() time.Time
	log      *slog.Logger
}

func NewBlogsHandler(repo BlogsRepo, log *slog.Logger) *BlogsHandler {
	if log == nil {
		log = slog.Default()
	}
	return &BlogsHandler{
		repo:     repo,
		pages:    cache.New[blog.Page](publicCacheTTL, maxCachedPages),
		featured: cache.New[[]blog.Post](publicCacheTTL, 1),
		metrics:  noMetrics{},
		now:      time.Now,
		log:      log,
	}
}

func (h *BlogsHandler) WithMetrics(m ContentMetrics) *BlogsHandler {
	if m != nil {
		h.metrics = m
	}
	return h
}

func (h *BlogsHandler) List(ctx *gin.Context) {
	filter := parseListFilter(ctx)
	key := utils.BuildBlogListCacheKey(filter)

	gen := h.pages.Generation()
	page, ok := h.pages.Get(key)
	h.metrics.ObserveCache("list", ok)
	if ok {
		RespondJSONWithETag(ctx, http.StatusOK, page, publicCacheTTL)
		return
	}

	posts, total, err := h.repo.List(ctx.Request.Context(), filter)
	if err != nil {
		h.log.ErrorContext(ctx.Request.Context(), "list blogs failed", "err", err)
		RespondInternal(ctx, "Could not list blog posts")
		return
	}

	page = blog.NewPage(posts, total, filter)
	h.pages.SetIfCurrent(gen, key, page)

	RespondJSONWithETag(ctx, http.StatusOK, page, publicCacheTTL)
}

func (h *BlogsHandler) Featured(ctx *gin.Context) {
	gen := h.featured.Generation()
	posts, ok := h.featured.Get(utils.FeaturedBlogsCacheKey)
	h.metrics.ObserveCache("featured", ok)
	if ok {
		RespondJSONWithETag(ctx, http.StatusOK, posts, publicCacheTTL)
		return
	}

	posts, err := h.repo.Featured(ctx.Request.Context(), blog.FeaturedLimit)
	if err != nil {
		h.log.ErrorContext(ctx.Request.Context(), "featured blogs failed", "err", err)
		RespondInternal(ctx, "Could not list featured posts")
		return
	}
	if posts == nil {
		posts = []blog.Post{}
	}

	h.featured.SetIfCurrent(gen, utils.FeaturedBlogsCacheKey, posts)
	RespondJSONWithETag(ctx, http.StatusOK, posts, publicCacheTTL)
}

// GetBySlug counts a view on every hit, so it is never cached.
func (h *BlogsHandler) GetBySlug(ctx *gin.Context) {
	post, err := h.repo.ViewBySlug(ctx.Request.Context(), ctx.Param("slug"))
	if err != nil {
		if errors.Is(err, blog.ErrNotFound) {
			RespondNotFound(ctx, "Blog post not found")
			return
		}
		h.log.ErrorContext(ctx.Request.Context(), "get blog failed", "err", err)
		RespondInternal(ctx, "Could not fetch blog post")
		return
	}

	ctx.JSON(http.StatusOK, post)
}

func (h *BlogsHandler) ListAll(ctx *gin.Context) {
	posts, err := h.repo.ListAll(ctx.Request.Context())
	if err != nil {
		h.log.ErrorContext(ctx.Request.Context(), "list all blogs failed", "err", err)
		RespondInternal(ctx, "Could not list blog posts")
		return
	}
	if posts == nil {
		posts = []blog.Post{}
	}

	ctx.JSON(http.StatusOK, posts)
}

func (h *BlogsHandler) Create(ctx *gin.Context) {
	var req blog.CreatePostRequest
	if !BindJSON(ctx, &req) {
		return
	}

	rctx := ctx.Request.Context()
	now := h.now().UTC()

	var (
		post blog.Post
		err  error
	)
	// a concurrent insert can grab the slug between the check and the write
	for attempt := 0; attempt < slugAttempts; attempt++ {
		var slug string
		slug, err = blog.UniqueSlug(rctx, h.repo, req.Title, "", now)
		if err != nil {
			break
		}

		post = blog.NewFromCreateRequest(req, slug, now)
		err = h.repo.Create(rctx, post)
		if !errors.Is(err, blog.ErrSlugTaken) {
			break
		}
	}

	if err != nil {
		h.log.ErrorContext(rctx, "create blog failed", "err", err)
		RespondInternal(ctx, "Could not create blog post")
		return
	}

	h.invalidate()
	h.log.InfoContext(rctx, "blog created", "blog_id", post.ID, "slug", post.Slug)
	ctx.JSON(http.StatusCreated, post)
}

func (h *BlogsHandler) Update(ctx *gin.Context) {
	var req blog.UpdatePostRequest
	if !BindJSON(ctx, &req) {
		return
	}

	rctx := ctx.Request.Context()
	id := ctx.Param("id")

	var (
		updated blog.Post
		err     error
	)
	for attempt := 0; attempt < slugAttempts; attempt++ {
		updated, err = h.applyUpdate(rctx, id, req)
		if !errors.Is(err, blog.ErrSlugTaken) {
			break
		}
	}

	if err != nil {
		if errors.Is(err, blog.ErrNotFound) {
			RespondNotFound(ctx, "Blog post not found")
			return
		}
		h.log.ErrorContext(rctx, "update blog failed", "blog_id", id, "err", err)
		RespondInternal(ctx, "Could not update blog post")
		return
	}

	h.invalidate()
	ctx.JSON(http.StatusOK, updated)
}

func (h *BlogsHandler) applyUpdate(ctx context.Context, id string, req blog.UpdatePostRequest) (blog.Post, error) {
	post, err := h.repo.GetByID(ctx, id)
	if err != nil {
		return blog.Post{}, err
	}

	titleChanged := req.Title != nil && strings.TrimSpace(*req.Title) != post.Title
	post.Apply(req)
	post.Title = strings.TrimSpace(post.Title)

	if titleChanged {
		slug, err := blog.UniqueSlug(ctx, h.repo, post.Title, post.ID, h.now().UTC())
		if err != nil {
			return blog.Post{}, err
		}
		post.Slug = slug
	}

	return h.repo.Update(ctx, post)
}

func (h *BlogsHandler) Delete(ctx *gin.Context) {
	id := ctx.Param("id")

	if err := h.repo.Delete(ctx.Request.Context(), id); err != nil {
		if errors.Is(err, blog.ErrNotFound) {
			RespondNotFound(ctx, "Blog post not found")
			return
		}
		h.log.ErrorContext(ctx.Request.Context(), "delete blog failed", "blog_id", id, "err", err)
		RespondInternal(ctx, "Could not delete blog post")
		return
	}

	h.invalidate()
	ctx.JSON(http.StatusOK, gin.H{"message": "Blog post deleted successfully"})
}

func (h *BlogsHandler) TogglePublished(ctx *gin.Context) {
	h.toggle(ctx, h.repo.TogglePublished)
}

func (h *BlogsHandler) ToggleFeatured(ctx *gin.Context) {
	h.toggle(ctx, h.repo.ToggleFeatured)
}

func (h *BlogsHandler) toggle(ctx *gin.Context, flip func(context.Context, string) (blog.Post, error)) {
	id := ctx.Param("id")

	post, err := flip(ctx.Request.Context(), id)
	if err != nil {
		if errors.Is(err, blog.ErrNotFound) {
			RespondNotFound(ctx, "Blog post not found")
			return
		}
		h.log.ErrorContext(ctx.Request.Context(), "toggle blog failed", "blog_id", id, "err", err)
		RespondInternal(ctx, "Could not update blog post")
		return
	}

	h.invalidate()
	ctx.JSON(http.StatusOK, post)
}

func (h *BlogsHandler) invalidate() {
	h.pages.Clear()
	h.featured.Clear()
}

func parseListFilter(ctx *gin.Context) blog.ListFilter {
	f := blog.ListFilter{
		Page:  queryInt(ctx, "page", 1),
		Limit: queryInt(ctx, "limit", blog.DefaultPageSize),
	}

	if f.Page < 1 {
		f.Page = 1
	}
	// pages past MaxPage are empty anyway; clamping keeps the offset small
	if f.Page > blog.MaxPage {
		f.Page = blog.MaxPage
	}
	if f.Limit < 1 {
		f.Limit = blog.DefaultPageSize
	}
	if f.Limit > blog.MaxPageSize {
		f.Limit = blog.MaxPageSize
	}

	if s := truncateRunes(strings.TrimSpace(ctx.Query("search")), maxSearchLen); s != "" {
		f.Search = &s
	}
	if t := truncateRunes(strings.TrimSpace(ctx.Query("tag")), maxTagQueryLen); t != "" {
		f.Tag = &t
	}
	return f
}

func queryInt(ctx *gin.Context, key string, fallback int) int {
	raw := ctx.Query(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
