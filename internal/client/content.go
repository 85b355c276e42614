package client

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/geocoder89/webtwist/internal/captcha"
	"github.com/geocoder89/webtwist/internal/domain/about"
	"github.com/geocoder89/webtwist/internal/domain/blog"
	"github.com/geocoder89/webtwist/internal/domain/contact"
	"github.com/geocoder89/webtwist/internal/media"
)

type ListQuery struct {
	Page   int
	Limit  int
	Search string
	Tag    string
}

func (q ListQuery) values() url.Values {
	v := url.Values{}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	if q.Tag != "" {
		v.Set("tag", q.Tag)
	}
	return v
}

type messageResponse struct {
	Message string `json:"message"`
}

// blog, public

func (c *Client) ListBlogs(ctx context.Context, q ListQuery) (blog.Page, error) {
	var page blog.Page
	err := c.do(ctx, request{method: http.MethodGet, path: "/api/blog", query: q.values()}, &page)
	return page, err
}

func (c *Client) FeaturedBlogs(ctx context.Context) ([]blog.Post, error) {
	var posts []blog.Post
	err := c.do(ctx, request{method: http.MethodGet, path: "/api/blog/featured"}, &posts)
	return posts, err
}

func (c *Client) GetBlog(ctx context.Context, slug string) (blog.Post, error) {
	var post blog.Post
	err := c.do(ctx, request{method: http.MethodGet, path: "/api/blog/" + url.PathEscape(slug)}, &post)
	return post, err
}

// blog, admin

func (c *Client) AdminListBlogs(ctx context.Context, s Session) ([]blog.Post, error) {
	var posts []blog.Post
	err := c.do(ctx, request{method: http.MethodGet, path: "/api/blog/admin/all", session: &s}, &posts)
	return posts, err
}

func (c *Client) CreateBlog(ctx context.Context, s Session, req blog.CreatePostRequest) (blog.Post, error) {
	var post blog.Post
	err := c.do(ctx, request{method: http.MethodPost, path: "/api/blog/admin", body: req, session: &s}, &post)
	return post, err
}

func (c *Client) UpdateBlog(ctx context.Context, s Session, id string, req blog.UpdatePostRequest) (blog.Post, error) {
	var post blog.Post
	err := c.do(ctx, request{method: http.MethodPut, path: "/api/blog/admin/" + url.PathEscape(id), body: req, session: &s}, &post)
	return post, err
}

func (c *Client) DeleteBlog(ctx context.Context, s Session, id string) error {
	return c.do(ctx, request{method: http.MethodDelete, path: "/api/blog/admin/" + url.PathEscape(id), session: &s}, nil)
}

func (c *Client) TogglePublished(ctx context.Context, s Session, id string) (blog.Post, error) {
	var post blog.Post
	err := c.do(ctx, request{method: http.MethodPatch, path: "/api/blog/admin/" + url.PathEscape(id) + "/publish", session: &s}, &post)
	return post, err
}

func (c *Client) ToggleFeatured(ctx context.Context, s Session, id string) (blog.Post, error) {
	var post blog.Post
	err := c.do(ctx, request{method: http.MethodPatch, path: "/api/blog/admin/" + url.PathEscape(id) + "/featured", session: &s}, &post)
	return post, err
}

func (c *Client) PresignCover(ctx context.Context, s Session, contentType string) (media.Upload, error) {
	var up media.Upload
	body := map[string]string{"contentType": contentType}
	err := c.do(ctx, request{method: http.MethodPost, path: "/api/blog/admin/uploads", body: body, session: &s}, &up)
	return up, err
}

// about

// GetAbout returns about.ErrNotFound when nothing has been written yet.
func (c *Client) GetAbout(ctx context.Context) (about.Page, error) {
	var page about.Page
	err := c.do(ctx, request{method: http.MethodGet, path: "/api/about"}, &page)

	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
		return about.Page{}, about.ErrNotFound
	}
	return page, err
}

func (c *Client) UpdateAbout(ctx context.Context, s Session, content string) error {
	var resp messageResponse
	return c.do(ctx, request{method: http.MethodPut, path: "/api/about", body: about.UpdateRequest{Content: content}, session: &s}, &resp)
}

// contact

func (c *Client) Captcha(ctx context.Context) (captcha.Challenge, error) {
	var ch captcha.Challenge
	err := c.do(ctx, request{method: http.MethodGet, path: "/api/contact/captcha"}, &ch)
	return ch, err
}

func (c *Client) SubmitContact(ctx context.Context, req contact.CreateRequest) (contact.Message, error) {
	var msg contact.Message
	err := c.do(ctx, request{method: http.MethodPost, path: "/api/contact", body: req}, &msg)
	return msg, err
}

func (c *Client) ListContacts(ctx context.Context, s Session) ([]contact.Message, error) {
	var msgs []contact.Message
	err := c.do(ctx, request{method: http.MethodGet, path: "/api/contact", session: &s}, &msgs)
	return msgs, err
}

func (c *Client) UpdateContact(ctx context.Context, s Session, id, message string) (contact.Message, error) {
	var msg contact.Message
	body := contact.UpdateRequest{Message: message}
	err := c.do(ctx, request{method: http.MethodPut, path: "/api/contact/" + url.PathEscape(id), body: body, session: &s}, &msg)
	return msg, err
}

func (c *Client) DeleteContact(ctx context.Context, s Session, id string) error {
	return c.do(ctx, request{method: http.MethodDelete, path: "/api/contact/" + url.PathEscape(id), session: &s}, nil)
}
