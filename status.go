package warmlink

const (
	// LinkHeader carries the preload directives.
	LinkHeader = "Link"
	// StatusHeader reports the serving phase (off, late or early) of
	// the response it is attached to.
	StatusHeader = "X-Preload-Status"
)

// htmlContentType is committed on early responses, which flush their
// headers before the handler has a chance to set a content type.
const htmlContentType = "text/html; charset=utf-8"
