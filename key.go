package warmlink

import (
	"net/http"
	"path"

	"github.com/go-chi/chi/v5"
)

// Key returns the route cache key for a request.
//
// When a chi route pattern has been matched by the time Key runs (e.g.
// the middleware is mounted inside a chi route group), all requests for
// /articles/{id} share one warm-up state. Otherwise the cleaned URL
// path is used. Keys are method-independent.
func Key(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	p := r.URL.Path
	if p == "" {
		return "/"
	}
	return path.Clean(p)
}
