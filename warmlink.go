// Package warmlink is an HTTP middleware that learns which static
// resources each route references while rendering and, once a route is
// warm, sends the matching preload headers to the client before the
// response body is generated.
//
// Every route goes through a three-phase warm-up: off (nothing known),
// late (header attached after generation) and early (header flushed
// before generation). The phase is reported in the X-Preload-Status
// response header.
package warmlink

import (
	"net/http"
	"strings"

	"github.com/warmlink/warmlink/cache"
	linkheader "github.com/warmlink/warmlink/pkg/link-header"
	resourceset "github.com/warmlink/warmlink/pkg/resource-set"
	respbuf "github.com/warmlink/warmlink/pkg/response-writer-buffer"
	presend "github.com/warmlink/warmlink/pkg/response-writer-presend"

	"github.com/rs/zerolog"
)

type Config struct {
	// Storage for route warm-up state.
	// The in-memory provider is used if nil.
	Cache cache.Provider
	// Logger to use. A console logger is used if nil.
	Logger *zerolog.Logger
	// Disable preload headers entirely.
	// Requests pass through untouched.
	DisablePreloadHeaders bool
	// Disable presending of cached headers.
	// Routes then never advance past the late phase.
	DisablePresend bool
	// Emit directives without the nopush qualifier, allowing an
	// HTTP/2-push capable front end to push the resources.
	EnableServerPush bool
	// Optional function computing the cache key for a request.
	// Defaults to Key.
	KeyFunc func(*http.Request) string
	// Optional function returning the per-request CSP nonce.
	// Defaults to NonceFromContext.
	NonceFunc func(*http.Request) string
}

type Warmlink struct {
	cache    cache.Provider
	log      zerolog.Logger
	disabled bool
	presend  bool
	push     bool
	key      func(*http.Request) string
	nonce    func(*http.Request) string
}

// New initializes a warmlink instance from the given configuration.
func New(config Config) *Warmlink {
	// use console logger if not specified in config
	var logger zerolog.Logger
	if config.Logger == nil {
		logger = zerolog.New(zerolog.NewConsoleWriter())
	} else {
		logger = *config.Logger
	}

	wl := &Warmlink{
		cache:    config.Cache,
		log:      logger,
		disabled: config.DisablePreloadHeaders,
		presend:  !config.DisablePresend,
		push:     config.EnableServerPush,
		key:      config.KeyFunc,
		nonce:    config.NonceFunc,
	}
	if wl.cache == nil {
		wl.cache = cache.NewMemoryCache()
	}
	if wl.key == nil {
		wl.key = Key
	}
	if wl.nonce == nil {
		wl.nonce = func(r *http.Request) string {
			return NonceFromContext(r.Context())
		}
	}
	return wl
}

// Middleware wraps next with preload header handling.
func (wl *Warmlink) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if wl.disabled || !acceptsHTML(r) {
			next.ServeHTTP(w, r)
			return
		}

		key := wl.key(r)
		list := resourceset.New()
		r = r.WithContext(withList(r.Context(), list))
		nonce := wl.nonce(r)

		entry, found := wl.cache.Get(key)
		if found && wl.presend && entry.Header != "" {
			wl.serveEarly(w, r, next, key, list, nonce, entry)
			return
		}
		wl.serveLate(w, r, next, key, list, nonce, entry, found)
	})
}

// serveEarly flushes the cached header before running the handler.
// The status is committed as 200 text/html; routes only become warm by
// serving html, so a warm route that suddenly serves something else
// gets a mismatched early response once and stops updating the cache.
func (wl *Warmlink) serveEarly(w http.ResponseWriter, r *http.Request, next http.Handler,
	key string, list *resourceset.List, nonce string, entry cache.Entry) {
	pw := presend.New(w)
	h := pw.Header()
	h.Set(LinkHeader, entry.Header)
	h.Set(StatusHeader, cache.PhaseEarly.String())
	if h.Get("Content-Type") == "" {
		h.Set("Content-Type", htmlContentType)
	}
	if err := pw.SendHeaders(http.StatusOK); err != nil {
		wl.log.Debug().Err(err).Str("key", key).Msg("Headers committed without flush")
	}

	next.ServeHTTP(pw, r)

	// headers for this response are long gone; reconcile the cache for
	// the next request only
	value := linkheader.Format(list.Snapshot(), nonce, wl.push)
	if pageLike(pw.ContentType()) {
		wl.upsert(key, entry, true, value)
	}
	wl.logRequest(r, key, cache.PhaseEarly, list.Len(), value != entry.Header)
}

// serveLate buffers the response, attaches the freshly computed header
// after generation and seeds the cache for the route.
func (wl *Warmlink) serveLate(w http.ResponseWriter, r *http.Request, next http.Handler,
	key string, list *resourceset.List, nonce string, entry cache.Entry, found bool) {
	buf := respbuf.New()
	next.ServeHTTP(buf, r)

	phase := cache.PhaseOff
	if pageLike(buf.ContentType()) {
		value := linkheader.Format(list.Snapshot(), nonce, wl.push)
		if value != "" {
			buf.Header().Set(LinkHeader, value)
			phase = cache.PhaseLate
			wl.upsert(key, entry, found, value)
		}
		buf.Header().Set(StatusHeader, phase.String())
		wl.logRequest(r, key, phase, list.Len(), false)
	}

	if _, err := buf.Replay(w); err != nil {
		wl.log.Error().Err(err).Msg("Could not write response body to client")
	}
}

// upsert advances the route's warm-up state and stores it.
// Cache failures degrade to "no preload header next time" and are never
// surfaced to the response.
func (wl *Warmlink) upsert(key string, prev cache.Entry, found bool, value string) {
	next := wl.advance(prev, found, value)
	if found && next == prev {
		return
	}
	if err := wl.cache.Put(key, next); err != nil {
		wl.log.Error().Err(err).Str("key", key).Msg("Could not update route cache")
	}
}

// advance implements the warm-up transition, evaluated once per
// participating request after its resource list is finalized:
//
//	no entry                     -> late, seed value
//	late, value unchanged        -> early (if presending is enabled)
//	late, value changed          -> late, new value
//	early                        -> early, new value if changed
//
// An empty computed value never overwrites a stored one.
func (wl *Warmlink) advance(prev cache.Entry, found bool, value string) cache.Entry {
	switch {
	case !found:
		return cache.Entry{Header: value, Phase: cache.PhaseLate}
	case prev.Phase == cache.PhaseEarly:
		if value != "" && value != prev.Header {
			return cache.Entry{Header: value, Phase: cache.PhaseEarly}
		}
		return prev
	default:
		if value != "" && value != prev.Header {
			return cache.Entry{Header: value, Phase: cache.PhaseLate}
		}
		if wl.presend {
			return cache.Entry{Header: prev.Header, Phase: cache.PhaseEarly}
		}
		return prev
	}
}

func (wl *Warmlink) logRequest(r *http.Request, key string, phase cache.Phase, resources int, stale bool) {
	wl.log.Debug().
		Str("method", r.Method).
		Str("key", key).
		Str("phase", phase.String()).
		Int("resources", resources).
		Bool("stale", stale).
		Msg("Sending response to client")
}

// acceptsHTML reports whether the request is for a page, i.e. whether
// the client accepts text/html.
func acceptsHTML(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}

// pageLike reports whether the response content type participates in
// preload warm-up.
func pageLike(contentType string) bool {
	mediaType, _, _ := strings.Cut(contentType, ";")
	return strings.TrimSpace(mediaType) == "text/html"
}
