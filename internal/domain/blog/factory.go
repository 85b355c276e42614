package blog

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

func NewFromCreateRequest(req CreatePostRequest, slug string, now time.Time) Post {
	published := true
	if req.Published != nil {
		published = *req.Published
	}

	featured := false
	if req.Featured != nil {
		featured = *req.Featured
	}

	return Post{
		ID:        uuid.NewString(),
		Title:     strings.TrimSpace(req.Title),
		Content:   req.Content,
		Author:    authorOrDefault(req.Author),
		Excerpt:   req.Excerpt,
		Image:     req.Image,
		Tags:      normalizeTags(req.Tags),
		Published: published,
		Featured:  featured,
		Slug:      slug,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

func authorOrDefault(author string) string {
	if author = strings.TrimSpace(author); author == "" {
		return DefaultAuthor
	}
	return author
}
