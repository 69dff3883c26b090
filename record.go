package warmlink

import (
	"context"

	resourceset "github.com/warmlink/warmlink/pkg/resource-set"
)

type contextKey int

const (
	listKey contextKey = iota
	nonceKey
)

func withList(ctx context.Context, l *resourceset.List) context.Context {
	return context.WithValue(ctx, listKey, l)
}

func listFrom(ctx context.Context) *resourceset.List {
	l, _ := ctx.Value(listKey).(*resourceset.List)
	return l
}

// Record registers a resource referenced while rendering the response
// the context belongs to. The as hint may be empty, in which case it is
// derived from the URL extension when the header is formatted.
//
// Record is a no-op on requests the middleware is not tracking, so
// rendering code can call it unconditionally.
func Record(ctx context.Context, url, as string) {
	if l := listFrom(ctx); l != nil {
		l.Record(url, as)
	}
}

// Asset records url as a preload resource and returns the URL to embed
// in the page, appending a ?v= cache-busting suffix when a version is
// given. It is meant for use from templates:
//
//	<link rel="stylesheet" href="{{ .Asset "/static/css/base.css" }}">
func Asset(ctx context.Context, url string, version ...string) string {
	if len(version) > 0 && version[0] != "" {
		url = url + "?v=" + version[0]
	}
	Record(ctx, url, "")
	return url
}

// WithNonce attaches the per-request CSP nonce to the context, to be
// picked up by the default NonceFunc. Call it from the middleware that
// generates the nonce, before warmlink runs.
func WithNonce(ctx context.Context, nonce string) context.Context {
	return context.WithValue(ctx, nonceKey, nonce)
}

// NonceFromContext returns the CSP nonce attached with WithNonce, or
// the empty string if there is none.
func NonceFromContext(ctx context.Context) string {
	nonce, _ := ctx.Value(nonceKey).(string)
	return nonce
}
