package catalog

import "strings"

// DefaultImageBase is the CDN folder relative image paths resolve against.
const DefaultImageBase = "http://image.marketing.rodanandfields.com/lib/fe9113737767047572/m/1/"

// ImageResolver turns image field values into absolute URLs.
type ImageResolver struct {
	base string
}

// NewImageResolver creates a resolver. An empty base selects DefaultImageBase.
func NewImageResolver(base string) ImageResolver {
	if base == "" {
		base = DefaultImageBase
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return ImageResolver{base: base}
}

// Base returns the CDN base URL.
func (r ImageResolver) Base() string {
	return r.base
}

// Resolve leaves absolute http(s) URLs untouched and prefixes anything else
// with the base after dropping leading slashes. Blank values, including
// whitespace-only ones, stay empty rather than pointing at the bare base.
func (r ImageResolver) Resolve(url string) string {
	url = strings.TrimSpace(url)
	if url == "" {
		return ""
	}
	if strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://") {
		return url
	}
	return r.base + strings.TrimLeft(url, "/")
}
