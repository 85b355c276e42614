package blog

import (
	"errors"
	"time"
)

var (
	ErrNotFound  = errors.New("blog post not found")
	ErrSlugTaken = errors.New("slug already taken")
)

const (
	DefaultAuthor   = "Admin"
	DefaultPageSize = 6
	MaxPageSize     = 50
	MaxPage         = 100_000 // keeps Offset far from overflow
	FeaturedLimit   = 3
)

type Post struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content,omitempty"` // left empty by listings
	Author    string    `json:"author"`
	Excerpt   string    `json:"excerpt"`
	Image     string    `json:"image"`
	Tags      []string  `json:"tags"`
	Published bool      `json:"published"`
	Featured  bool      `json:"featured"`
	Views     int       `json:"views"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type CreatePostRequest struct {
	Title     string   `json:"title" binding:"required,min=1,max=200"`
	Content   string   `json:"content" binding:"required"`
	Author    string   `json:"author" binding:"omitempty,max=120"`
	Excerpt   string   `json:"excerpt" binding:"required,max=500"`
	Image     string   `json:"image" binding:"omitempty,max=2048"`
	Tags      []string `json:"tags" binding:"omitempty,max=20,dive,min=1,max=40"`
	Published *bool    `json:"published"`
	Featured  *bool    `json:"featured"`
}

// UpdatePostRequest is a partial update: nil fields keep their stored value.
type UpdatePostRequest struct {
	Title     *string   `json:"title" binding:"omitempty,min=1,max=200"`
	Content   *string   `json:"content" binding:"omitempty,min=1"`
	Author    *string   `json:"author" binding:"omitempty,max=120"`
	Excerpt   *string   `json:"excerpt" binding:"omitempty,min=1,max=500"`
	Image     *string   `json:"image" binding:"omitempty,max=2048"`
	Tags      *[]string `json:"tags" binding:"omitempty,max=20,dive,min=1,max=40"`
	Published *bool     `json:"published"`
	Featured  *bool     `json:"featured"`
}

// with pointers if optional, it will be nil
type ListFilter struct {
	Search *string
	Tag    *string
	Page   int
	Limit  int
}

func (f ListFilter) Offset() int {
	if f.Page < 1 || f.Limit < 1 {
		return 0
	}
	return (min(f.Page, MaxPage) - 1) * min(f.Limit, MaxPageSize)
}

type Page struct {
	Blogs       []Post `json:"blogs"`
	TotalPages  int    `json:"totalPages"`
	CurrentPage int    `json:"currentPage"`
	Total       int    `json:"total"`
}

func NewPage(posts []Post, total int, filter ListFilter) Page {
	pages := 0
	if filter.Limit > 0 {
		pages = (total + filter.Limit - 1) / filter.Limit
	}

	if posts == nil {
		posts = []Post{}
	}

	return Page{
		Blogs:       posts,
		TotalPages:  pages,
		CurrentPage: filter.Page,
		Total:       total,
	}
}

// Apply copies the non-nil fields of req onto p. The slug is not touched here.
func (p *Post) Apply(req UpdatePostRequest) {
	if req.Title != nil {
		p.Title = *req.Title
	}
	if req.Content != nil {
		p.Content = *req.Content
	}
	if req.Author != nil {
		p.Author = authorOrDefault(*req.Author)
	}
	if req.Excerpt != nil {
		p.Excerpt = *req.Excerpt
	}
	if req.Image != nil {
		p.Image = *req.Image
	}
	if req.Tags != nil {
		p.Tags = normalizeTags(*req.Tags)
	}
	if req.Published != nil {
		p.Published = *req.Published
	}
	if req.Featured != nil {
		p.Featured = *req.Featured
	}
}
