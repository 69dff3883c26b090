// Package respbuf provides a response writer that records a whole
// response so headers can still be changed after the handler returns.
package respbuf

import (
	"bytes"
	"net/http"
)

// Writer is an http.ResponseWriter that buffers the response instead of
// writing it anywhere. Call Replay to emit the recorded response, plus
// any headers set in the meantime, onto a real writer.
type Writer struct {
	b           bytes.Buffer
	header      http.Header
	status      int
	wroteHeader bool
}

func New() *Writer {
	return &Writer{
		header: http.Header{},
	}
}

// Implementation of http.ResponseWriter
func (w *Writer) Header() http.Header {
	return w.header
}

// Implementation of http.ResponseWriter
func (w *Writer) WriteHeader(statusCode int) {
	if w.wroteHeader {
		return
	}
	w.wroteHeader = true
	w.status = statusCode
}

// Implementation of http.ResponseWriter
func (w *Writer) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	return w.b.Write(b)
}

// Flush implements http.Flusher as a no-op. A buffered response cannot
// stream; the data reaches the client only on Replay.
func (w *Writer) Flush() {}

// StatusCode returns the recorded status code, or 200 if the handler
// never set one explicitly but wrote a body.
func (w *Writer) StatusCode() int {
	if !w.wroteHeader {
		return http.StatusOK
	}
	return w.status
}

// ContentType returns the recorded Content-Type header.
func (w *Writer) ContentType() string {
	return w.header.Get("Content-Type")
}

// Replay writes the recorded response to rw: headers first, then the
// status code, then the buffered body.
func (w *Writer) Replay(rw http.ResponseWriter) (int, error) {
	dst := rw.Header()
	for k, vv := range w.header {
		for _, v := range vv {
			dst.Add(k, v)
		}
	}
	rw.WriteHeader(w.StatusCode())
	return rw.Write(w.b.Bytes())
}
