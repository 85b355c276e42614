package utils

import (
	"strconv"
	"strings"

	"github.com/geocoder89/webtwist/internal/domain/blog"
)

const FeaturedBlogsCacheKey = "blogs:featured:v1"

func BuildBlogListCacheKey(f blog.ListFilter) string {
	s := ""
	if f.Search != nil {
		s = strings.ToLower(strings.TrimSpace(*f.Search))
	}
	t := ""
	if f.Tag != nil {
		t = strings.TrimSpace(*f.Tag)
	}

	return "blogs:list:v1:page=" + strconv.Itoa(f.Page) +
		":limit=" + strconv.Itoa(f.Limit) +
		":search=" + strconv.Quote(s) +
		":tag=" + strconv.Quote(t)
}
