// Package linkheader formats preload directives for the Link response
// header as understood by HTTP/2-push and 103 Early Hints front ends.
package linkheader

import (
	"strings"

	resourceset "github.com/warmlink/warmlink/pkg/resource-set"
)

// asHints maps a URL extension to the preload "as" attribute.
var asHints = map[string]string{
	"js":    "script",
	"css":   "style",
	"png":   "image",
	"jpg":   "image",
	"jpeg":  "image",
	"webp":  "image",
	"svg":   "image",
	"gif":   "image",
	"ttf":   "font",
	"woff":  "font",
	"woff2": "font",
}

// Format composes the Link header value for the given resources.
// One directive is emitted per resource, in slice order. A non-empty
// nonce is attached to every directive, and `nopush` is appended to
// every directive unless push is enabled.
//
// Format is pure: equal inputs always yield the same string, which the
// route cache relies on for its equality checks. Malformed URLs are
// skipped rather than aborting the whole header.
func Format(resources []resourceset.Resource, nonce string, push bool) string {
	var b strings.Builder
	for _, res := range resources {
		if !valid(res.URL) {
			continue
		}
		if b.Len() > 0 {
			b.WriteString(", ")
		}
		b.WriteString("<")
		b.WriteString(res.URL)
		b.WriteString(">; rel=preload; crossorigin")
		as := res.As
		if as == "" {
			as = AsHint(res.URL)
		}
		if as != "" {
			b.WriteString("; as=")
			b.WriteString(as)
		}
		if nonce != "" {
			b.WriteString("; nonce=")
			b.WriteString(nonce)
		}
		if !push {
			b.WriteString("; nopush")
		}
	}
	return b.String()
}

// AsHint derives the preload type hint from the URL extension.
// Version query strings (e.g. "app.js?v=2") are stripped first.
// It returns the empty string for unknown extensions.
func AsHint(url string) string {
	url, _, _ = strings.Cut(url, "?")
	dot := strings.LastIndexByte(url, '.')
	if dot < 0 {
		return ""
	}
	return asHints[strings.ToLower(url[dot+1:])]
}

// valid reports whether the URL can be embedded in a Link directive.
// Angle brackets, commas and whitespace would corrupt the header.
func valid(url string) bool {
	if url == "" {
		return false
	}
	for i := 0; i < len(url); i++ {
		switch c := url[i]; {
		case c <= ' ' || c == 0x7f:
			return false
		case c == '<' || c == '>' || c == ',':
			return false
		}
	}
	return true
}
