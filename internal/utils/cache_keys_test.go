package utils

import (
	"testing"

	"github.com/geocoder89/webtwist/internal/domain/blog"
)

func TestBuildBlogListCacheKey(t *testing.T) {
	search := "  Go  "
	lower := "go"
	tag := "a:b"

	tests := []struct {
		name  string
		a, b  blog.ListFilter
		equal bool
	}{
		{"search_case_and_space", blog.ListFilter{Search: &search, Page: 1, Limit: 6}, blog.ListFilter{Search: &lower, Page: 1, Limit: 6}, true},
		{"different_page", blog.ListFilter{Page: 1, Limit: 6}, blog.ListFilter{Page: 2, Limit: 6}, false},
		{"tag_vs_none", blog.ListFilter{Tag: &tag, Page: 1, Limit: 6}, blog.ListFilter{Page: 1, Limit: 6}, false},
		{"search_vs_tag", blog.ListFilter{Search: &lower, Page: 1, Limit: 6}, blog.ListFilter{Tag: &lower, Page: 1, Limit: 6}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildBlogListCacheKey(tt.a) == BuildBlogListCacheKey(tt.b)
			if got != tt.equal {
				t.Fatalf("keys equal=%v, want %v (%q vs %q)", got, tt.equal, BuildBlogListCacheKey(tt.a), BuildBlogListCacheKey(tt.b))
			}
		})
	}
}
