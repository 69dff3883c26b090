// Package presend provides a response writer that can commit and flush
// response headers before the handler producing the body has run.
package presend

import (
	"errors"
	"net/http"
)

// ErrNotFlushable is returned by SendHeaders when the underlying writer
// does not implement http.Flusher. The headers are still committed, but
// they may sit in the server's buffer until the first body write.
var ErrNotFlushable = errors.New("presend: underlying response writer is not flushable")

// HeaderSender is a response writer whose header section can be sent
// separately from, and strictly before, the body.
type HeaderSender interface {
	http.ResponseWriter
	// SendHeaders commits the current headers with the given status
	// code and flushes them to the transport. All header bytes reach
	// the transport before any subsequent body bytes.
	SendHeaders(status int) error
}

// Writer wraps an http.ResponseWriter with header presending.
//
// Until SendHeaders is called it behaves like the wrapped writer.
// Afterwards the header map is detached: the handler can keep mutating
// it (and those values remain readable, e.g. for a Content-Type check)
// but nothing reaches the wire, and WriteHeader calls are recorded
// instead of forwarded.
type Writer struct {
	rw          http.ResponseWriter
	header      http.Header
	sent        bool
	innerStatus int
}

var _ HeaderSender = (*Writer)(nil)

func New(rw http.ResponseWriter) *Writer {
	return &Writer{
		rw:     rw,
		header: rw.Header(),
	}
}

// Implementation of http.ResponseWriter
func (w *Writer) Header() http.Header {
	return w.header
}

// Implementation of http.ResponseWriter
func (w *Writer) WriteHeader(statusCode int) {
	if w.sent {
		// headers are on the wire already, just remember the intent
		w.innerStatus = statusCode
		return
	}
	w.sent = true
	w.rw.WriteHeader(statusCode)
	w.detach()
}

// Implementation of http.ResponseWriter
func (w *Writer) Write(b []byte) (int, error) {
	return w.rw.Write(b)
}

// SendHeaders implements HeaderSender.
func (w *Writer) SendHeaders(status int) error {
	if w.sent {
		return nil
	}
	w.sent = true
	w.rw.WriteHeader(status)
	w.detach()
	f, ok := w.rw.(http.Flusher)
	if !ok {
		return ErrNotFlushable
	}
	f.Flush()
	return nil
}

// Flush implements http.Flusher.
func (w *Writer) Flush() {
	if f, ok := w.rw.(http.Flusher); ok {
		f.Flush()
	}
}

// Sent reports whether the headers have been committed.
func (w *Writer) Sent() bool {
	return w.sent
}

// InnerStatus returns the status code the handler tried to write after
// the headers were already sent, or 0 if it never did.
func (w *Writer) InnerStatus() int {
	return w.innerStatus
}

// ContentType returns the Content-Type as the handler last left it,
// whether or not that value made it to the wire.
func (w *Writer) ContentType() string {
	return w.header.Get("Content-Type")
}

// detach swaps the live header map for a private copy, so that later
// mutations cannot race the transport.
func (w *Writer) detach() {
	detached := make(http.Header, len(w.header))
	for k, vv := range w.header {
		detached[k] = append([]string(nil), vv...)
	}
	w.header = detached
}
