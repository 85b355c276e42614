package blog

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// maxSlugSuffix bounds the "-N" probing before falling back to a timestamp suffix.
const maxSlugSuffix = 1000

var (
	// RE2's \s is ASCII only; \p{Zs} adds no-break and other Unicode spaces
	nonSlugChars = regexp.MustCompile(`[^a-z0-9\s\p{Zs}\x{2028}\x{2029}\x{FEFF}]`)
	whitespace   = regexp.MustCompile(`[\s\p{Zs}\x{2028}\x{2029}\x{FEFF}]+`)
	dashRuns     = regexp.MustCompile(`-+`)
)

// SlugChecker reports whether a slug is used by any post other than excludeID.
type SlugChecker interface {
	SlugExists(ctx context.Context, slug, excludeID string) (bool, error)
}

// Slugify turns a title into its base slug. Accented letters are folded to
// ASCII first, everything that is not a letter, digit or whitespace is dropped
// and whitespace becomes single dashes. Titles that leave nothing behind get
// a "blog-<unix millis>" slug.
func Slugify(title string, now time.Time) string {
	s := strings.ToLower(foldAccents(title))
	s = nonSlugChars.ReplaceAllString(s, "")
	s = whitespace.ReplaceAllString(s, "-")
	s = dashRuns.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")

	if s == "" {
		s = "blog-" + strconv.FormatInt(now.UnixMilli(), 10)
	}
	return s
}

// UniqueSlug slugifies title and appends -1, -2, ... until checker reports
// the candidate as free. excludeID lets a post keep its own slug on update.
func UniqueSlug(ctx context.Context, checker SlugChecker, title, excludeID string, now time.Time) (string, error) {
	base := Slugify(title, now)
	candidate := base

	for i := 1; i <= maxSlugSuffix; i++ {
		taken, err := checker.SlugExists(ctx, candidate, excludeID)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = base + "-" + strconv.Itoa(i)
	}

	return base + "-" + strconv.FormatInt(now.UnixMilli(), 10), nil
}

func foldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
